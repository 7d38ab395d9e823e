package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/middleware"
	"clinic-admin/internal/model"
	"clinic-admin/internal/pb"
)

func (h *Handler) ListAppointments(ctx context.Context, _ *pb.Empty) (*pb.AppointmentList, error) {
	list, err := h.repo.FetchAll(ctx, middleware.UserID(ctx))
	if err != nil {
		return nil, h.statusErr(err)
	}
	out := make([]*pb.Appointment, len(list))
	for i := range list {
		out[i] = toProto(&list[i])
	}
	return &pb.AppointmentList{Appointments: out}, nil
}

func (h *Handler) GetAppointment(ctx context.Context, req *pb.AppointmentID) (*pb.AppointmentReply, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	a, err := h.owned(ctx, req.Id)
	if err != nil {
		return nil, h.statusErr(err)
	}
	return &pb.AppointmentReply{Appointment: toProto(a)}, nil
}

func (h *Handler) CreateAppointment(ctx context.Context, req *pb.AppointmentInput) (*pb.AppointmentReply, error) {
	if req.Id != "" {
		return nil, status.Error(codes.InvalidArgument, "id must be empty on create")
	}
	id, err := h.repo.Create(ctx, middleware.UserID(ctx), draft(req))
	if err != nil {
		return nil, h.statusErr(err)
	}
	a, err := h.repo.Get(ctx, id)
	if err != nil {
		return nil, h.statusErr(err)
	}
	return &pb.AppointmentReply{Appointment: toProto(a)}, nil
}

func (h *Handler) UpdateAppointment(ctx context.Context, req *pb.AppointmentInput) (*pb.AppointmentReply, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if _, err := h.owned(ctx, req.Id); err != nil {
		return nil, h.statusErr(err)
	}
	if err := h.repo.Update(ctx, req.Id, draft(req)); err != nil {
		return nil, h.statusErr(err)
	}
	a, err := h.repo.Get(ctx, req.Id)
	if err != nil {
		return nil, h.statusErr(err)
	}
	return &pb.AppointmentReply{Appointment: toProto(a)}, nil
}

// DeleteAppointment succeeds when the record is already gone.
func (h *Handler) DeleteAppointment(ctx context.Context, req *pb.AppointmentID) (*pb.Empty, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if _, err := h.owned(ctx, req.Id); err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			return &pb.Empty{}, nil
		}
		return nil, h.statusErr(err)
	}
	if err := h.repo.Delete(ctx, req.Id); err != nil && !errors.Is(err, appointment.ErrNotFound) {
		return nil, h.statusErr(err)
	}
	return &pb.Empty{}, nil
}

// owned loads id for the caller. Someone else's record reads as not found
// to hide its existence.
func (h *Handler) owned(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := h.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != middleware.UserID(ctx) {
		return nil, appointment.ErrNotFound
	}
	return a, nil
}

func draft(req *pb.AppointmentInput) model.Draft {
	return model.Draft{
		Date:        req.Date,
		Time:        req.Time,
		PatientName: req.PatientName,
		Status:      model.Status(req.Status),
	}
}

func toProto(a *model.Appointment) *pb.Appointment {
	p := &pb.Appointment{
		Id:          a.ID,
		OwnerId:     a.OwnerID,
		Date:        a.Date,
		Time:        a.Time,
		PatientName: a.PatientName,
		Status:      string(a.Status),
	}
	if !a.CreatedAt.IsZero() {
		p.CreatedAt = timestamppb.New(a.CreatedAt)
	}
	if !a.UpdatedAt.IsZero() {
		p.UpdatedAt = timestamppb.New(a.UpdatedAt)
	}
	return p
}
