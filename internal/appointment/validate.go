package appointment

import (
	"strings"
	"time"

	"clinic-admin/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Normalize checks d and returns it in canonical form: trimmed patient name,
// HH:MM time, and scheduled status when none is given.
func Normalize(d model.Draft) (model.Draft, error) {
	d.PatientName = strings.TrimSpace(d.PatientName)
	if d.PatientName == "" {
		return d, &ValidationError{Field: "patientName", Reason: "is required"}
	}

	d.Date = strings.TrimSpace(d.Date)
	if d.Date == "" {
		return d, &ValidationError{Field: "date", Reason: "is required"}
	}
	if _, err := time.Parse(dateLayout, d.Date); err != nil {
		return d, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	d.Time = strings.TrimSpace(d.Time)
	if d.Time == "" {
		return d, &ValidationError{Field: "time", Reason: "is required"}
	}
	t, err := time.Parse(timeLayout, d.Time)
	if err != nil {
		// browsers send seconds when a step is set
		if t, err = time.Parse("15:04:05", d.Time); err != nil {
			return d, &ValidationError{Field: "time", Reason: "must be HH:MM"}
		}
	}
	d.Time = t.Format(timeLayout)

	if d.Status == "" {
		d.Status = model.StatusScheduled
	}
	if !d.Status.Valid() {
		return d, &ValidationError{Field: "status", Reason: "must be scheduled, completed or cancelled"}
	}
	return d, nil
}
