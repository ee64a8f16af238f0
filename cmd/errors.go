package cmd

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/marcus/taskops/internal/apiclient"
	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/session"
	"github.com/marcus/taskops/internal/validate"
	"github.com/spf13/cobra"
)

// shownError marks an error that was already printed (as JSON) so Execute
// does not print it again.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// errorCode maps err to a structured output code
func errorCode(err error) string {
	var verr *validate.ValidationError
	var urlErr *url.Error
	var netErr net.Error

	switch {
	case errors.Is(err, session.ErrNotLoggedIn), errors.Is(err, session.ErrExpired):
		return output.ErrCodeNotLoggedIn
	case errors.Is(err, apiclient.ErrNotFound):
		return output.ErrCodeNotFound
	case errors.As(err, &verr), errors.Is(err, apiclient.ErrValidation):
		return output.ErrCodeInvalidInput
	case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, apiclient.ErrInvalidCredentials),
		errors.Is(err, apiclient.ErrInactiveUser):
		return output.ErrCodeUnauthorized
	case errors.Is(err, apiclient.ErrForbidden):
		return output.ErrCodeForbidden
	case errors.Is(err, apiclient.ErrEmailTaken):
		return output.ErrCodeConflict
	case errors.Is(err, apiclient.ErrServer):
		return output.ErrCodeServerError
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &urlErr), errors.As(err, &netErr):
		return output.ErrCodeNetworkError
	default:
		return output.ErrCodeFailed
	}
}

// fail renders err as a JSON error object when --json is set. The returned
// error still makes the command exit non-zero.
func fail(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		output.JSONError(errorCode(err), err.Error())
		return &shownError{err: err}
	}
	return err
}
