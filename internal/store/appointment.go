package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clinic-admin/internal/model"
)

const appointmentCols = `id, owner_id, date, time, patient_name, status, created_at, updated_at`

func (s *Postgres) InsertAppointment(ctx context.Context, a *model.Appointment) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments (id, owner_id, date, time, patient_name, status)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		id, a.OwnerID, a.Date, a.Time, a.PatientName, string(a.Status),
	)
	if err != nil {
		return "", pgErr(err)
	}
	return id, nil
}

func (s *Postgres) UpdateAppointment(ctx context.Context, id string, d model.Draft) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments
		 SET date=$1, time=$2, patient_name=$3, status=$4, updated_at=NOW()
		 WHERE id=$5`,
		d.Date, d.Time, d.PatientName, string(d.Status), id,
	)
	if err != nil {
		return pgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteAppointment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return pgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, pgErr(err)
	}
	return a, nil
}

func (s *Postgres) AppointmentsWhere(ctx context.Context, field Field, value string) ([]model.Appointment, error) {
	col, err := field.column()
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE `+col+` = $1 ORDER BY date, time`, value)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	var st string
	err := row.Scan(&a.ID, &a.OwnerID, &a.Date, &a.Time, &a.PatientName, &st, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = model.Status(st)
	return a, nil
}
