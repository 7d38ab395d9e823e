package model

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusScheduled, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is the stored document. Date is YYYY-MM-DD, Time is HH:MM.
type Appointment struct {
	ID          string
	OwnerID     string
	Date        string
	Time        string
	PatientName string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Draft holds the user-editable fields of an appointment.
type Draft struct {
	Date        string
	Time        string
	PatientName string
	Status      Status
}

func (a *Appointment) Draft() Draft {
	return Draft{Date: a.Date, Time: a.Time, PatientName: a.PatientName, Status: a.Status}
}

// LegacyAppointment is the older document shape with capitalised keys and
// no status.
type LegacyAppointment struct {
	Name string `json:"Name"`
	Date string `json:"Date"`
	Time string `json:"Time"`
}

func (l LegacyAppointment) Draft() Draft {
	return Draft{Date: l.Date, Time: l.Time, PatientName: l.Name, Status: StatusScheduled}
}
