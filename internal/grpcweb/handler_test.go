package grpcweb_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/grpc"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/grpcweb"
	"clinic-admin/internal/handler"
	"clinic-admin/internal/identity"
	"clinic-admin/internal/logging"
	"clinic-admin/internal/middleware"
	"clinic-admin/internal/pb"
	"clinic-admin/internal/store"
)

// bridge starts a loopback gRPC server and returns a grpc-web front for it.
func bridge(t *testing.T) *httptest.Server {
	t.Helper()
	rl := middleware.NewRateLimiter(100, 100)
	t.Cleanup(rl.Stop)
	ts := httptest.NewServer(bridgeHandler(t, rl))
	t.Cleanup(ts.Close)
	return ts
}

func bridgeHandler(t *testing.T, rl *middleware.RateLimiter) http.Handler {
	t.Helper()
	log := logging.Discard()

	st, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(st.Close)
	gw := identity.NewGateway(st, "test-secret", log)

	srv := grpc.NewServer(
		pb.ServerCodec(),
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl, pb.PublicMethods...),
			middleware.Auth(gw, pb.PublicMethods...),
		),
	)
	pb.RegisterAppointmentServiceServer(srv, handler.New(gw, appointment.NewRepository(st, log), log))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	b, err := grpcweb.New(lis.Addr().String(), log)
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b.Handler()
}

func frame(msg pb.Message) []byte {
	data := msg.MarshalWire()
	out := make([]byte, 5+len(data))
	binary.BigEndian.PutUint32(out[1:5], uint32(len(data)))
	copy(out[5:], data)
	return out
}

// call posts one framed message and splits the reply into payload and trailer.
func call(t *testing.T, ts *httptest.Server, method, token string, msg pb.Message) (payload []byte, trailer string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, ts.URL+method, bytes.NewReader(frame(msg)))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for len(body) >= 5 {
		n := int(binary.BigEndian.Uint32(body[1:5]))
		if body[0]&0x80 != 0 {
			trailer = string(body[5 : 5+n])
		} else {
			payload = body[5 : 5+n]
		}
		body = body[5+n:]
	}
	return payload, trailer
}

func TestBridgeSignUpAndList(t *testing.T) {
	ts := bridge(t)

	payload, trailer := call(t, ts, pb.MethodSignUp, "", &pb.Credentials{Email: "web@clinic.test", Password: "secret1"})
	if !strings.Contains(trailer, "grpc-status:0") {
		t.Fatalf("sign up trailer = %q", trailer)
	}
	var auth pb.AuthResponse
	if err := auth.UnmarshalWire(payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if auth.AccessToken == "" || auth.Email != "web@clinic.test" {
		t.Fatalf("unexpected auth response %+v", auth)
	}

	_, trailer = call(t, ts, pb.MethodCreateAppointment, auth.AccessToken, &pb.AppointmentInput{
		Date: "2024-05-01", Time: "09:00", PatientName: "Jane Doe",
	})
	if !strings.Contains(trailer, "grpc-status:0") {
		t.Fatalf("create trailer = %q", trailer)
	}

	payload, trailer = call(t, ts, pb.MethodListAppointments, auth.AccessToken, &pb.Empty{})
	if !strings.Contains(trailer, "grpc-status:0") {
		t.Fatalf("list trailer = %q", trailer)
	}
	var list pb.AppointmentList
	if err := list.UnmarshalWire(payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Appointments) != 1 || list.Appointments[0].PatientName != "Jane Doe" {
		t.Fatalf("unexpected list %+v", list.Appointments)
	}
}

func TestBridgeRequiresToken(t *testing.T) {
	ts := bridge(t)
	_, trailer := call(t, ts, pb.MethodListAppointments, "", &pb.Empty{})
	if !strings.Contains(trailer, "grpc-status:16") {
		t.Fatalf("expected Unauthenticated, got %q", trailer)
	}
}

func TestBridgeRejectsNonGRPCWeb(t *testing.T) {
	ts := bridge(t)

	resp, err := http.Post(ts.URL+pb.MethodSignIn, "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+pb.MethodSignIn, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestBridgeShortBody(t *testing.T) {
	ts := bridge(t)
	req, _ := http.NewRequest(http.MethodPost, ts.URL+pb.MethodSignIn, bytes.NewReader([]byte{0, 0}))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "grpc-status:3") {
		t.Fatalf("expected InvalidArgument trailer, got %q", body)
	}
}

func TestBridgeLimitsPerBrowser(t *testing.T) {
	rl := middleware.NewRateLimiter(0.0001, 1)
	t.Cleanup(rl.Stop)
	h := bridgeHandler(t, rl)

	signIn := func(remote string) string {
		body := frame(&pb.Credentials{Email: "nobody@clinic.test", Password: "secret1"})
		req := httptest.NewRequest(http.MethodPost, pb.MethodSignIn, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/grpc-web+proto")
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Body.String()
	}

	// each browser spends its own single token
	for _, remote := range []string{"203.0.113.1:4000", "203.0.113.2:4000", "203.0.113.3:4000"} {
		if got := signIn(remote); !strings.Contains(got, "grpc-status:16") {
			t.Fatalf("%s: expected Unauthenticated, got %q", remote, got)
		}
	}
	if got := signIn("203.0.113.1:4001"); !strings.Contains(got, "grpc-status:8") {
		t.Fatalf("expected ResourceExhausted on repeat, got %q", got)
	}
}
