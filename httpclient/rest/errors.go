package rest

import (
	"errors"

	"github.com/kbukum/yagpt/httpclient"
)

// Convenience re-exports so REST callers need not import httpclient
// for error checks.

func IsClientError(err error) bool { return httpclient.IsClientError(err) }

func IsServerError(err error) bool { return httpclient.IsServerError(err) }

func IsTimeout(err error) bool { return httpclient.IsTimeout(err) }

func IsCanceled(err error) bool { return httpclient.IsCanceled(err) }

// IsDecode checks if the error is a *DecodeError.
func IsDecode(err error) bool {
	var d *DecodeError
	return errors.As(err, &d)
}
