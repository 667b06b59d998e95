package cache

import "errors"

// ErrNotReady is returned by readers before the first successful rebuild.
var ErrNotReady = errors.New("cache: snapshot not ready")
