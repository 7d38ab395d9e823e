package handler_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/handler"
	"clinic-admin/internal/identity"
	"clinic-admin/internal/logging"
	"clinic-admin/internal/middleware"
	"clinic-admin/internal/pb"
	"clinic-admin/internal/store"
)

const secret = "test-secret"

func setup(t *testing.T) *handler.Handler {
	t.Helper()
	st, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "grpc.db"))
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(st.Close)
	return newHandler(st)
}

// setupPostgres runs against a real database when DATABASE_URL is set.
func setupPostgres(t *testing.T) *handler.Handler {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	if err := store.MigratePostgres(dbURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)
	return newHandler(store.NewPostgres(pool))
}

func newHandler(st store.Store) *handler.Handler {
	log := logging.Discard()
	return handler.New(
		identity.NewGateway(st, secret, log),
		appointment.NewRepository(st, log),
		log,
	)
}

func authedCtx(uid string) context.Context {
	return middleware.WithUserID(context.Background(), uid)
}

func registerUser(t *testing.T, h *handler.Handler) (userID, email string) {
	t.Helper()
	email = fmt.Sprintf("test-%s@clinic.test", uuid.New().String()[:8])
	rr, err := h.SignUp(context.Background(), &pb.Credentials{Email: email, Password: "testpass123"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	return rr.UserId, email
}

func createAppointment(t *testing.T, h *handler.Handler, ctx context.Context, name string) *pb.Appointment {
	t.Helper()
	cr, err := h.CreateAppointment(ctx, &pb.AppointmentInput{
		Date:        "2024-05-01",
		Time:        "09:00",
		PatientName: name,
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return cr.Appointment
}

func code(err error) codes.Code {
	s, _ := status.FromError(err)
	return s.Code()
}

// ----- auth tests -----

func TestSignUp(t *testing.T) {
	h := setup(t)

	rr, err := h.SignUp(context.Background(), &pb.Credentials{Email: "new@clinic.test", Password: "testpass123"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if rr.UserId == "" {
		t.Fatal("empty user id")
	}
	if rr.AccessToken == "" || rr.RefreshToken == "" {
		t.Fatal("missing tokens")
	}
}

func TestSignUpValidation(t *testing.T) {
	h := setup(t)

	tests := []struct {
		name string
		req  *pb.Credentials
	}{
		{"empty email", &pb.Credentials{Email: "", Password: "testpass123"}},
		{"empty password", &pb.Credentials{Email: "a@clinic.test", Password: ""}},
		{"short password", &pb.Credentials{Email: "a@clinic.test", Password: "short"}},
		{"bad email", &pb.Credentials{Email: "clinic.test", Password: "testpass123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.SignUp(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if c := code(err); c != codes.InvalidArgument {
				t.Errorf("expected InvalidArgument, got %v", c)
			}
		})
	}
}

func TestSignUpDuplicate(t *testing.T) {
	h := setup(t)
	_, email := registerUser(t, h)

	_, err := h.SignUp(context.Background(), &pb.Credentials{Email: email, Password: "testpass123"})
	if err == nil {
		t.Fatal("expected error for duplicate email")
	}
	if c := code(err); c != codes.AlreadyExists {
		t.Errorf("expected AlreadyExists, got %v", c)
	}
}

func TestSignIn(t *testing.T) {
	h := setup(t)
	uid, email := registerUser(t, h)

	lr, err := h.SignIn(context.Background(), &pb.Credentials{Email: email, Password: "testpass123"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if lr.UserId != uid {
		t.Errorf("user id: got %s, want %s", lr.UserId, uid)
	}
	if lr.Email != email {
		t.Errorf("email: got %s", lr.Email)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	h := setup(t)
	_, email := registerUser(t, h)

	_, err := h.SignIn(context.Background(), &pb.Credentials{Email: email, Password: "wrongpassword"})
	if c := code(err); c != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", c)
	}
}

func TestSignInNonexistentUser(t *testing.T) {
	h := setup(t)

	_, err := h.SignIn(context.Background(), &pb.Credentials{Email: "nobody@clinic.test", Password: "testpass123"})
	if c := code(err); c != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", c)
	}
}

func TestSignOut(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)

	if _, err := h.SignOut(authedCtx(uid), &pb.Empty{}); err != nil {
		t.Fatalf("sign out: %v", err)
	}
}

// ----- appointment CRUD -----

func TestCreateAppointment(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	a := createAppointment(t, h, ctx, "Jane Doe")
	if a.Id == "" {
		t.Fatal("empty id")
	}
	if a.OwnerId != uid {
		t.Errorf("owner: got %s, want %s", a.OwnerId, uid)
	}
	if a.PatientName != "Jane Doe" {
		t.Errorf("patient: got %s", a.PatientName)
	}
	if a.Status != "scheduled" {
		t.Errorf("status: got %s", a.Status)
	}
	if a.CreatedAt == nil {
		t.Error("missing created_at")
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	tests := []struct {
		name string
		req  *pb.AppointmentInput
	}{
		{"empty patient", &pb.AppointmentInput{Date: "2024-05-01", Time: "09:00"}},
		{"missing date", &pb.AppointmentInput{Time: "09:00", PatientName: "X"}},
		{"bad time", &pb.AppointmentInput{Date: "2024-05-01", Time: "9am", PatientName: "X"}},
		{"bad status", &pb.AppointmentInput{Date: "2024-05-01", Time: "09:00", PatientName: "X", Status: "pending"}},
		{"id on create", &pb.AppointmentInput{Id: "x", Date: "2024-05-01", Time: "09:00", PatientName: "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.CreateAppointment(ctx, tt.req)
			if c := code(err); c != codes.InvalidArgument {
				t.Errorf("expected InvalidArgument, got %v", c)
			}
		})
	}

	lr, err := h.ListAppointments(ctx, &pb.Empty{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lr.Appointments) != 0 {
		t.Errorf("invalid input was written: %d records", len(lr.Appointments))
	}
}

func TestGetAppointment(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	appt := createAppointment(t, h, ctx, "Jane Doe")

	gr, err := h.GetAppointment(ctx, &pb.AppointmentID{Id: appt.Id})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gr.Appointment.PatientName != appt.PatientName {
		t.Errorf("patient mismatch: %s vs %s", gr.Appointment.PatientName, appt.PatientName)
	}
}

func TestGetAppointmentNotFound(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)

	_, err := h.GetAppointment(authedCtx(uid), &pb.AppointmentID{Id: uuid.New().String()})
	if c := code(err); c != codes.NotFound {
		t.Errorf("expected NotFound, got %v", c)
	}
}

func TestListAppointmentsOrdered(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	for _, in := range []*pb.AppointmentInput{
		{Date: "2024-05-02", Time: "08:00", PatientName: "second"},
		{Date: "2024-05-01", Time: "09:00", PatientName: "first"},
	} {
		if _, err := h.CreateAppointment(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	lr, err := h.ListAppointments(ctx, &pb.Empty{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lr.Appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(lr.Appointments))
	}
	if lr.Appointments[0].PatientName != "first" {
		t.Errorf("order: got %s first", lr.Appointments[0].PatientName)
	}
}

func TestUpdateAppointment(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	appt := createAppointment(t, h, ctx, "Jane Doe")

	ur, err := h.UpdateAppointment(ctx, &pb.AppointmentInput{
		Id:          appt.Id,
		Date:        "2024-06-01",
		Time:        "15:30",
		PatientName: "Jane Roe",
		Status:      "completed",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := ur.Appointment
	if got.Id != appt.Id || got.OwnerId != uid {
		t.Errorf("identity changed: %s/%s", got.Id, got.OwnerId)
	}
	if got.Date != "2024-06-01" || got.Time != "15:30" || got.PatientName != "Jane Roe" || got.Status != "completed" {
		t.Errorf("fields not replaced: %+v", got)
	}
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)

	_, err := h.UpdateAppointment(authedCtx(uid), &pb.AppointmentInput{
		Id: uuid.New().String(), Date: "2024-06-01", Time: "15:30", PatientName: "X",
	})
	if c := code(err); c != codes.NotFound {
		t.Errorf("expected NotFound, got %v", c)
	}
}

func TestDeleteAppointment(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	appt := createAppointment(t, h, ctx, "Jane Doe")

	if _, err := h.DeleteAppointment(ctx, &pb.AppointmentID{Id: appt.Id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := h.GetAppointment(ctx, &pb.AppointmentID{Id: appt.Id})
	if c := code(err); c != codes.NotFound {
		t.Errorf("expected NotFound after delete, got %v", c)
	}

	// deleting again is fine
	if _, err := h.DeleteAppointment(ctx, &pb.AppointmentID{Id: appt.Id}); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

// ----- ownership -----

func TestOwnershipGet(t *testing.T) {
	h := setup(t)
	uid1, _ := registerUser(t, h)
	uid2, _ := registerUser(t, h)

	appt := createAppointment(t, h, authedCtx(uid1), "Private")

	_, err := h.GetAppointment(authedCtx(uid2), &pb.AppointmentID{Id: appt.Id})
	if c := code(err); c != codes.NotFound {
		t.Errorf("expected NotFound for other user's appointment, got %v", c)
	}
}

func TestOwnershipUpdateDelete(t *testing.T) {
	h := setup(t)
	uid1, _ := registerUser(t, h)
	uid2, _ := registerUser(t, h)

	appt := createAppointment(t, h, authedCtx(uid1), "Private")

	_, err := h.UpdateAppointment(authedCtx(uid2), &pb.AppointmentInput{
		Id: appt.Id, Date: "2024-06-01", Time: "10:00", PatientName: "Hijack",
	})
	if c := code(err); c != codes.NotFound {
		t.Errorf("expected NotFound on foreign update, got %v", c)
	}

	if _, err := h.DeleteAppointment(authedCtx(uid2), &pb.AppointmentID{Id: appt.Id}); err != nil {
		t.Fatalf("foreign delete: %v", err)
	}
	gr, err := h.GetAppointment(authedCtx(uid1), &pb.AppointmentID{Id: appt.Id})
	if err != nil {
		t.Fatalf("record vanished after foreign delete: %v", err)
	}
	if gr.Appointment.PatientName != "Private" {
		t.Errorf("record modified: %s", gr.Appointment.PatientName)
	}
}

func TestOwnershipList(t *testing.T) {
	h := setup(t)
	uid1, _ := registerUser(t, h)
	uid2, _ := registerUser(t, h)

	createAppointment(t, h, authedCtx(uid1), "One")
	createAppointment(t, h, authedCtx(uid2), "Two")

	lr, err := h.ListAppointments(authedCtx(uid2), &pb.Empty{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, a := range lr.Appointments {
		if a.OwnerId != uid2 {
			t.Errorf("user2 sees appointment owned by %s", a.OwnerId)
		}
	}
	if len(lr.Appointments) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(lr.Appointments))
	}
}

func TestConcurrentCreates(t *testing.T) {
	h := setup(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.CreateAppointment(ctx, &pb.AppointmentInput{
				Date: "2024-05-01", Time: fmt.Sprintf("%02d:00", 8+i), PatientName: fmt.Sprintf("p%d", i),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("create: %v", err)
		}
	}

	lr, err := h.ListAppointments(ctx, &pb.Empty{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lr.Appointments) != 10 {
		t.Errorf("expected 10 appointments, got %d", len(lr.Appointments))
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	h := setupPostgres(t)
	uid, _ := registerUser(t, h)
	ctx := authedCtx(uid)

	appt := createAppointment(t, h, ctx, "Jane Doe")
	gr, err := h.GetAppointment(ctx, &pb.AppointmentID{Id: appt.Id})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gr.Appointment.Time != "09:00" {
		t.Errorf("time: got %s", gr.Appointment.Time)
	}
}
