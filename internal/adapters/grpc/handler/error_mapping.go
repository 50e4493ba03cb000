package handler

import (
	"errors"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, orgchart.ErrInvalidID),
		errors.Is(err, orgchart.ErrMalformedDocument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, orgchart.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())
	case orgchart.IsLoadError(err):
		return status.Error(codes.Unavailable, err.Error())
	case orgchart.IsSaveError(err):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
