package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/internal/auth"
	"github.com/gana36/billbeam/internal/middleware"
	"github.com/gana36/billbeam/internal/session"
	"github.com/gana36/billbeam/internal/storage"
)

var (
	errSignInRequired = errors.New("sign in to use saved receipts and groups")
	errNotYourSession = errors.New("session belongs to another user")
)

// toConnectError maps domain and storage errors to Connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errNotYourSession):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNoReceipt),
		errors.Is(err, session.ErrNoPeople):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrEmptyName), errors.Is(err, session.ErrUnknownSplitMode):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, errSignInRequired):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// requireUser returns the caller's user ID or an Unauthenticated error.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errSignInRequired)
	}
	return userID, nil
}
