package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shutterbook/simulator/internal/types"
)

// toStatus maps domain errors to gRPC status codes.
// Configuration and rule errors map to INVALID_ARGUMENT.
// Missing drafts and categories map to NOT_FOUND.
// Context timeouts map to DEADLINE_EXCEEDED.
// Anything else is a store failure and maps to UNAVAILABLE.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, types.ErrConfiguration),
		errors.Is(err, types.ErrInvalidRule),
		errors.Is(err, types.ErrAmbiguousRule),
		errors.Is(err, types.ErrInvalidSection),
		errors.Is(err, types.ErrInvalidProductType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, types.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
