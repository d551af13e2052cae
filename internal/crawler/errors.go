package crawler

import (
	"errors"
	"fmt"
)

// CaptchaDetectedError reports a challenge page served instead of results.
type CaptchaDetectedError struct {
	URL         string
	CaptchaType string
}

func (e *CaptchaDetectedError) Error() string {
	return fmt.Sprintf("captcha detected (%s) at %s", e.CaptchaType, e.URL)
}

// NetworkError covers timeouts, transport failures and retryable HTTP
// statuses. StatusCode is nil when no response was received.
type NetworkError struct {
	URL        string
	StatusCode *int
	Attempts   int
	Err        error
}

func (e *NetworkError) Error() string {
	msg := "network error fetching " + e.URL
	if e.StatusCode != nil {
		msg += fmt.Sprintf(": status %d", *e.StatusCode)
	}
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a captcha or network failure.
func IsRetryable(err error) bool {
	var captcha *CaptchaDetectedError
	var network *NetworkError
	return errors.As(err, &captcha) || errors.As(err, &network)
}
