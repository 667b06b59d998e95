package respond

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, 200, map[string]string{"hello": "world"})

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestSafeError_ValidationErrorPassedThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeError(rec, 400, errors.New("year is invalid"))

	assert.Equal(t, 400, rec.Code)
	assert.JSONEq(t, `{"error":"year is invalid"}`, rec.Body.String())
}

func TestSafeError_InternalErrorMasked(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeError(rec, 500, errors.New("pq: connection refused at postgres://app:hunter2@db:5432"))

	assert.Equal(t, 500, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestSafeError_5xxNeverLeaks(t *testing.T) {
	rec := httptest.NewRecorder()
	// Contains a "safe" word but the status forces masking.
	SafeError(rec, 502, errors.New("upstream returned invalid payload"))

	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bearer token",
			in:   "request failed: Authorization: Bearer BQDWkmx8z91",
			want: "request failed: Authorization: Bearer ****",
		},
		{
			name: "client secret in form body",
			in:   "post form grant_type=refresh_token&client_secret=abc123xyz failed",
			want: "post form grant_type=refresh_token&client_secret=**** failed",
		},
		{
			name: "refresh token in form body",
			in:   "refresh_token=AQCsecret99 rejected",
			want: "refresh_token=**** rejected",
		},
		{
			name: "database password",
			in:   "dial postgres://app:hunter2@db:5432/app",
			want: "dial postgres://app:****@db:5432/app",
		},
		{
			name: "plain message untouched",
			in:   "year is invalid",
			want: "year is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeError(errors.New(tt.in)))
		})
	}
}
