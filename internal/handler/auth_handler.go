package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-admin/internal/identity"
	"clinic-admin/internal/middleware"
	"clinic-admin/internal/pb"
)

func (h *Handler) SignUp(ctx context.Context, req *pb.Credentials) (*pb.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}
	id, err := h.gw.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, h.statusErr(err)
	}
	return authResponse(id), nil
}

func (h *Handler) SignIn(ctx context.Context, req *pb.Credentials) (*pb.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}
	id, err := h.gw.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, h.statusErr(err)
	}
	return authResponse(id), nil
}

// SignOut revokes the caller's refresh tokens. Access tokens stay valid
// until they expire.
func (h *Handler) SignOut(ctx context.Context, _ *pb.Empty) (*pb.Empty, error) {
	if err := h.gw.SignOut(ctx, middleware.UserID(ctx)); err != nil {
		return nil, h.statusErr(err)
	}
	return &pb.Empty{}, nil
}

func authResponse(id *identity.Identity) *pb.AuthResponse {
	return &pb.AuthResponse{
		UserId:       id.UserID,
		Email:        id.Email,
		AccessToken:  id.AccessToken,
		RefreshToken: id.RefreshToken,
	}
}
