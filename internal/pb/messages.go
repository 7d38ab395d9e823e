package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Appointment mirrors clinic.v1.Appointment.
//
//	1 id, 2 owner_id, 3 date, 4 time, 5 patient_name, 6 status,
//	7 created_at, 8 updated_at
type Appointment struct {
	Id          string
	OwnerId     string
	Date        string
	Time        string
	PatientName string
	Status      string
	CreatedAt   *timestamppb.Timestamp
	UpdatedAt   *timestamppb.Timestamp
}

func (a *Appointment) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, a.Id)
	out = appendString(out, 2, a.OwnerId)
	out = appendString(out, 3, a.Date)
	out = appendString(out, 4, a.Time)
	out = appendString(out, 5, a.PatientName)
	out = appendString(out, 6, a.Status)
	out = appendTimestamp(out, 7, a.CreatedAt)
	out = appendTimestamp(out, 8, a.UpdatedAt)
	return out
}

func (a *Appointment) UnmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &a.Id)
		case 2:
			return consumeString(typ, b, &a.OwnerId)
		case 3:
			return consumeString(typ, b, &a.Date)
		case 4:
			return consumeString(typ, b, &a.Time)
		case 5:
			return consumeString(typ, b, &a.PatientName)
		case 6:
			return consumeString(typ, b, &a.Status)
		case 7:
			return consumeTimestamp(typ, b, &a.CreatedAt)
		case 8:
			return consumeTimestamp(typ, b, &a.UpdatedAt)
		}
		return 0
	})
}

// Credentials is the body of SignUp and SignIn.
//
//	1 email, 2 password
type Credentials struct {
	Email    string
	Password string
}

func (c *Credentials) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, c.Email)
	out = appendString(out, 2, c.Password)
	return out
}

func (c *Credentials) UnmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &c.Email)
		case 2:
			return consumeString(typ, b, &c.Password)
		}
		return 0
	})
}

// AuthResponse carries a fresh identity.
//
//	1 user_id, 2 email, 3 access_token, 4 refresh_token
type AuthResponse struct {
	UserId       string
	Email        string
	AccessToken  string
	RefreshToken string
}

func (r *AuthResponse) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, r.UserId)
	out = appendString(out, 2, r.Email)
	out = appendString(out, 3, r.AccessToken)
	out = appendString(out, 4, r.RefreshToken)
	return out
}

func (r *AuthResponse) UnmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &r.UserId)
		case 2:
			return consumeString(typ, b, &r.Email)
		case 3:
			return consumeString(typ, b, &r.AccessToken)
		case 4:
			return consumeString(typ, b, &r.RefreshToken)
		}
		return 0
	})
}

// Empty has no fields. It serves SignOut, ListAppointments requests and
// delete replies.
type Empty struct{}

func (*Empty) MarshalWire() []byte { return nil }

func (*Empty) UnmarshalWire(b []byte) error {
	return walk(b, func(protowire.Number, protowire.Type, []byte) int { return 0 })
}

// AppointmentID addresses one record.
//
//	1 id
type AppointmentID struct {
	Id string
}

func (r *AppointmentID) MarshalWire() []byte { return appendString(nil, 1, r.Id) }

func (r *AppointmentID) UnmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return consumeString(typ, b, &r.Id)
		}
		return 0
	})
}

// AppointmentInput creates a record, or updates one when Id is set.
//
//	1 id, 2 date, 3 time, 4 patient_name, 5 status
type AppointmentInput struct {
	Id          string
	Date        string
	Time        string
	PatientName string
	Status      string
}

func (r *AppointmentInput) MarshalWire() []byte {
	var out []byte
	out = appendString(out, 1, r.Id)
	out = appendString(out, 2, r.Date)
	out = appendString(out, 3, r.Time)
	out = appendString(out, 4, r.PatientName)
	out = appendString(out, 5, r.Status)
	return out
}

func (r *AppointmentInput) UnmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &r.Id)
		case 2:
			return consumeString(typ, b, &r.Date)
		case 3:
			return consumeString(typ, b, &r.Time)
		case 4:
			return consumeString(typ, b, &r.PatientName)
		case 5:
			return consumeString(typ, b, &r.Status)
		}
		return 0
	})
}

// AppointmentReply wraps a single record.
//
//	1 appointment
type AppointmentReply struct {
	Appointment *Appointment
}

func (r *AppointmentReply) MarshalWire() []byte {
	if r.Appointment == nil {
		return nil
	}
	return appendMessage(nil, 1, r.Appointment)
}

func (r *AppointmentReply) UnmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		r.Appointment = &Appointment{}
		return consumeMessage(typ, b, r.Appointment)
	})
}

// AppointmentList is the ListAppointments reply.
//
//	1 appointments (repeated)
type AppointmentList struct {
	Appointments []*Appointment
}

func (r *AppointmentList) MarshalWire() []byte {
	var out []byte
	for _, a := range r.Appointments {
		out = appendMessage(out, 1, a)
	}
	return out
}

func (r *AppointmentList) UnmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		a := &Appointment{}
		n := consumeMessage(typ, b, a)
		if n > 0 {
			r.Appointments = append(r.Appointments, a)
		}
		return n
	})
}
