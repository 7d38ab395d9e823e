// Package handler implements the AppointmentService gRPC API on top of the
// identity gateway and the appointment repository.
package handler

import (
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/identity"
	"clinic-admin/internal/pb"
)

type Handler struct {
	pb.UnimplementedAppointmentServiceServer
	gw   *identity.Gateway
	repo *appointment.Repository
	log  logrus.FieldLogger
}

func New(gw *identity.Gateway, repo *appointment.Repository, log logrus.FieldLogger) *Handler {
	return &Handler{gw: gw, repo: repo, log: log.WithField("component", "grpc")}
}

// statusErr maps domain errors onto gRPC codes.
func (h *Handler) statusErr(err error) error {
	var ve *appointment.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, appointment.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, identity.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, "email already in use")
	case errors.Is(err, identity.ErrWeakPassword), errors.Is(err, identity.ErrInvalidEmail):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, appointment.ErrStoreUnavailable), errors.Is(err, identity.ErrGatewayUnavailable):
		return status.Error(codes.Unavailable, "service unavailable")
	}
	h.log.WithError(err).Error("unexpected error")
	return status.Error(codes.Internal, "internal error")
}
