package web

import (
	"io"
	"time"

	"github.com/emersion/go-ical"

	"clinic-admin/internal/model"
)

const (
	prodID       = "-//clinic-admin//appointments//EN"
	slotDuration = 30 * time.Minute
)

// WriteCalendar encodes appointments as a VCALENDAR. Start times are
// floating local times since the records carry no zone.
func WriteCalendar(w io.Writer, list []model.Appointment) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	stamp := time.Now().UTC()
	for i := range list {
		ev, err := toEvent(&list[i], stamp)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, ev)
	}
	return ical.NewEncoder(w).Encode(cal)
}

func toEvent(a *model.Appointment, stamp time.Time) (*ical.Component, error) {
	start, err := time.Parse("2006-01-02 15:04", a.Date+" "+a.Time)
	if err != nil {
		return nil, err
	}
	ev := ical.NewComponent(ical.CompEvent)
	ev.Props.SetText(ical.PropUID, a.ID)
	ev.Props.SetText(ical.PropSummary, a.PatientName)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ev.Props.Set(floating(ical.PropDateTimeStart, start))
	ev.Props.Set(floating(ical.PropDateTimeEnd, start.Add(slotDuration)))
	ev.Props.SetText(ical.PropStatus, eventStatus(a.Status))
	return ev, nil
}

// floating writes a DATE-TIME with neither TZID nor a trailing Z.
func floating(name string, t time.Time) *ical.Prop {
	return &ical.Prop{Name: name, Params: ical.Params{}, Value: t.Format("20060102T150405")}
}

func eventStatus(s model.Status) string {
	if s == model.StatusCancelled {
		return "CANCELLED"
	}
	return "CONFIRMED"
}
