package respond

import (
	"regexp"
)

var (
	// OAuth material that must never reach logs or clients
	bearerTokenPattern  = regexp.MustCompile(`Bearer [a-zA-Z0-9._~+/-]+=*`)
	clientSecretPattern = regexp.MustCompile(`client_secret=[^&\s]+`)
	refreshTokenPattern = regexp.MustCompile(`refresh_token=[^&\s]+`)

	// Database passwords inside DSNs
	dbPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")
	msg = clientSecretPattern.ReplaceAllString(msg, "client_secret=****")
	msg = refreshTokenPattern.ReplaceAllString(msg, "refresh_token=****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
