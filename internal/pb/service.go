package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "clinic.v1.AppointmentService"

// Full method names, as interceptors see them.
const (
	MethodSignUp            = "/" + ServiceName + "/SignUp"
	MethodSignIn            = "/" + ServiceName + "/SignIn"
	MethodSignOut           = "/" + ServiceName + "/SignOut"
	MethodListAppointments  = "/" + ServiceName + "/ListAppointments"
	MethodGetAppointment    = "/" + ServiceName + "/GetAppointment"
	MethodCreateAppointment = "/" + ServiceName + "/CreateAppointment"
	MethodUpdateAppointment = "/" + ServiceName + "/UpdateAppointment"
	MethodDeleteAppointment = "/" + ServiceName + "/DeleteAppointment"
)

// PublicMethods need no bearer token.
var PublicMethods = []string{MethodSignUp, MethodSignIn}

type AppointmentServiceServer interface {
	SignUp(context.Context, *Credentials) (*AuthResponse, error)
	SignIn(context.Context, *Credentials) (*AuthResponse, error)
	SignOut(context.Context, *Empty) (*Empty, error)
	ListAppointments(context.Context, *Empty) (*AppointmentList, error)
	GetAppointment(context.Context, *AppointmentID) (*AppointmentReply, error)
	CreateAppointment(context.Context, *AppointmentInput) (*AppointmentReply, error)
	UpdateAppointment(context.Context, *AppointmentInput) (*AppointmentReply, error)
	DeleteAppointment(context.Context, *AppointmentID) (*Empty, error)
}

// UnimplementedAppointmentServiceServer can be embedded for forward
// compatibility.
type UnimplementedAppointmentServiceServer struct{}

func (UnimplementedAppointmentServiceServer) SignUp(context.Context, *Credentials) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedAppointmentServiceServer) SignIn(context.Context, *Credentials) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedAppointmentServiceServer) SignOut(context.Context, *Empty) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedAppointmentServiceServer) ListAppointments(context.Context, *Empty) (*AppointmentList, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAppointments not implemented")
}
func (UnimplementedAppointmentServiceServer) GetAppointment(context.Context, *AppointmentID) (*AppointmentReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAppointment not implemented")
}
func (UnimplementedAppointmentServiceServer) CreateAppointment(context.Context, *AppointmentInput) (*AppointmentReply, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateAppointment not implemented")
}
func (UnimplementedAppointmentServiceServer) UpdateAppointment(context.Context, *AppointmentInput) (*AppointmentReply, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateAppointment not implemented")
}
func (UnimplementedAppointmentServiceServer) DeleteAppointment(context.Context, *AppointmentID) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteAppointment not implemented")
}

func RegisterAppointmentServiceServer(s grpc.ServiceRegistrar, srv AppointmentServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServerCodec makes a server decode requests with Codec.
func ServerCodec() grpc.ServerOption { return grpc.ForceServerCodec(Codec{}) }

// unary adapts a typed service method to a grpc.MethodDesc handler.
func unary[Req any, PReq interface {
	*Req
	Message
}, Resp Message](full string, call func(AppointmentServiceServer, context.Context, PReq) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(AppointmentServiceServer)
		if ic == nil {
			out, err := call(s, ctx, in)
			return out, err
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			out, err := call(s, ctx, req.(PReq))
			return out, err
		})
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AppointmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unary(MethodSignUp, AppointmentServiceServer.SignUp)},
		{MethodName: "SignIn", Handler: unary(MethodSignIn, AppointmentServiceServer.SignIn)},
		{MethodName: "SignOut", Handler: unary(MethodSignOut, AppointmentServiceServer.SignOut)},
		{MethodName: "ListAppointments", Handler: unary(MethodListAppointments, AppointmentServiceServer.ListAppointments)},
		{MethodName: "GetAppointment", Handler: unary(MethodGetAppointment, AppointmentServiceServer.GetAppointment)},
		{MethodName: "CreateAppointment", Handler: unary(MethodCreateAppointment, AppointmentServiceServer.CreateAppointment)},
		{MethodName: "UpdateAppointment", Handler: unary(MethodUpdateAppointment, AppointmentServiceServer.UpdateAppointment)},
		{MethodName: "DeleteAppointment", Handler: unary(MethodDeleteAppointment, AppointmentServiceServer.DeleteAppointment)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinic/v1/appointment.proto",
}

// AppointmentServiceClient is a thin typed client over a connection.
type AppointmentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAppointmentServiceClient(cc grpc.ClientConnInterface) *AppointmentServiceClient {
	return &AppointmentServiceClient{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in Message, opts []grpc.CallOption) (PResp, error) {
	out := PResp(new(Resp))
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentServiceClient) SignUp(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *AppointmentServiceClient) SignIn(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *AppointmentServiceClient) SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *AppointmentServiceClient) ListAppointments(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AppointmentList, error) {
	return invoke[AppointmentList](ctx, c.cc, MethodListAppointments, in, opts)
}

func (c *AppointmentServiceClient) GetAppointment(ctx context.Context, in *AppointmentID, opts ...grpc.CallOption) (*AppointmentReply, error) {
	return invoke[AppointmentReply](ctx, c.cc, MethodGetAppointment, in, opts)
}

func (c *AppointmentServiceClient) CreateAppointment(ctx context.Context, in *AppointmentInput, opts ...grpc.CallOption) (*AppointmentReply, error) {
	return invoke[AppointmentReply](ctx, c.cc, MethodCreateAppointment, in, opts)
}

func (c *AppointmentServiceClient) UpdateAppointment(ctx context.Context, in *AppointmentInput, opts ...grpc.CallOption) (*AppointmentReply, error) {
	return invoke[AppointmentReply](ctx, c.cc, MethodUpdateAppointment, in, opts)
}

func (c *AppointmentServiceClient) DeleteAppointment(ctx context.Context, in *AppointmentID, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteAppointment, in, opts)
}
