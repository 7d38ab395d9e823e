// Package appointment mediates between the UI layers and the record store for
// the appointments collection. Every read and write is scoped by the owner id
// handed in by the caller's session.
package appointment

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"clinic-admin/internal/metrics"
	"clinic-admin/internal/model"
	"clinic-admin/internal/store"
)

type Repository struct {
	records store.Appointments
	log     logrus.FieldLogger
}

func NewRepository(records store.Appointments, log logrus.FieldLogger) *Repository {
	return &Repository{records: records, log: log.WithField("component", "appointments")}
}

// FetchAll returns the owner's appointments ordered by date, then time. An
// empty ownerID yields an empty list without querying the store.
func (r *Repository) FetchAll(ctx context.Context, ownerID string) ([]model.Appointment, error) {
	if ownerID == "" {
		return []model.Appointment{}, nil
	}
	list, err := r.records.AppointmentsWhere(ctx, store.FieldOwnerID, ownerID)
	if err != nil {
		return nil, r.done("fetch", r.storeErr("fetch", err))
	}
	if list == nil {
		list = []model.Appointment{}
	}
	slices.SortStableFunc(list, func(a, b model.Appointment) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Time, b.Time)
	})
	return list, r.done("fetch", nil)
}

func (r *Repository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, r.done("get", ErrNotFound)
	}
	a, err := r.records.GetAppointment(ctx, id)
	if err != nil {
		return nil, r.done("get", r.storeErr("get", err))
	}
	return a, r.done("get", nil)
}

// Create validates d before any store call and returns the new record's id.
func (r *Repository) Create(ctx context.Context, ownerID string, d model.Draft) (string, error) {
	if ownerID == "" {
		return "", r.done("create", &ValidationError{Field: "ownerId", Reason: "is required"})
	}
	d, err := Normalize(d)
	if err != nil {
		return "", r.done("create", err)
	}

	id, err := r.records.InsertAppointment(ctx, &model.Appointment{
		OwnerID:     ownerID,
		Date:        d.Date,
		Time:        d.Time,
		PatientName: d.PatientName,
		Status:      d.Status,
	})
	if err != nil {
		return "", r.done("create", r.storeErr("create", err))
	}
	r.log.WithFields(logrus.Fields{"id": id, "owner": ownerID}).Debug("appointment created")
	return id, r.done("create", nil)
}

// Update replaces every editable field of the record. The id and owner are
// left untouched.
func (r *Repository) Update(ctx context.Context, id string, d model.Draft) error {
	if id == "" {
		return r.done("update", ErrNotFound)
	}
	d, err := Normalize(d)
	if err != nil {
		return r.done("update", err)
	}
	if err := r.records.UpdateAppointment(ctx, id, d); err != nil {
		return r.done("update", r.storeErr("update", err))
	}
	r.log.WithField("id", id).Debug("appointment updated")
	return r.done("update", nil)
}

// Delete removes the record. ErrNotFound means it was already gone; callers
// treat that as success.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.records.DeleteAppointment(ctx, id); err != nil {
		return r.done("delete", r.storeErr("delete", err))
	}
	r.log.WithField("id", id).Debug("appointment deleted")
	return r.done("delete", nil)
}

func (r *Repository) storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	r.log.WithError(err).WithField("op", op).Warn("record store call failed")
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func (r *Repository) done(op string, err error) error {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrValidation):
		result = "invalid"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	default:
		result = "unavailable"
	}
	metrics.RepositoryOp(op, result)
	return err
}
