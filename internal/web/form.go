package web

import (
	"net/url"
	"strings"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/model"
)

type IntentKind int

const (
	IntentSubmit IntentKind = iota + 1
	IntentCancel
)

// Intent is what the form asks its owner to do. An empty ID on a submit
// means create.
type Intent struct {
	Kind  IntentKind
	ID    string
	Draft model.Draft
}

// Form is the appointment editor. It only checks that required fields are
// present; the repository does the real validation.
type Form struct {
	ID          string
	Date        string
	Time        string
	PatientName string
	Status      model.Status
	Errors      map[string]string
}

func NewForm() *Form {
	f := &Form{}
	f.Load(nil)
	return f
}

// Load fills the form from a, or resets it when a is nil.
func (f *Form) Load(a *model.Appointment) {
	f.Errors = nil
	if a == nil {
		f.ID, f.Date, f.Time, f.PatientName = "", "", "", ""
		f.Status = model.StatusScheduled
		return
	}
	f.ID = a.ID
	f.Date = a.Date
	f.Time = a.Time
	f.PatientName = a.PatientName
	f.Status = a.Status
}

// Bind copies posted values into the form.
func (f *Form) Bind(v url.Values) {
	f.ID = strings.TrimSpace(v.Get("id"))
	f.Date = v.Get("date")
	f.Time = v.Get("time")
	f.PatientName = v.Get("patientName")
	f.Status = model.Status(v.Get("status"))
}

func (f *Form) Draft() model.Draft {
	return model.Draft{Date: f.Date, Time: f.Time, PatientName: f.PatientName, Status: f.Status}
}

// Editing reports whether the form targets an existing record.
func (f *Form) Editing() bool { return f.ID != "" }

// Submit returns a submit intent, or a validation error naming the first
// missing field. Errors holds every missing field.
func (f *Form) Submit() (Intent, error) {
	f.Errors = nil
	var first error
	for _, field := range []struct {
		name, value string
	}{
		{"date", f.Date},
		{"time", f.Time},
		{"patientName", f.PatientName},
		{"status", string(f.Status)},
	} {
		if strings.TrimSpace(field.value) != "" {
			continue
		}
		if f.Errors == nil {
			f.Errors = map[string]string{}
		}
		f.Errors[field.name] = "required"
		if first == nil {
			first = &appointment.ValidationError{Field: field.name, Reason: "is required"}
		}
	}
	if first != nil {
		return Intent{}, first
	}
	return Intent{Kind: IntentSubmit, ID: f.ID, Draft: f.Draft()}, nil
}

// Cancel discards edits.
func (f *Form) Cancel() Intent {
	id := f.ID
	f.Load(nil)
	return Intent{Kind: IntentCancel, ID: id}
}

// StatusOptions feeds the status select.
func (f *Form) StatusOptions() []model.Status { return model.Statuses }
