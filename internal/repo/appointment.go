package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clinic-api/internal/model"
)

// AppointmentRepo persists appointments.
type AppointmentRepo struct {
	db DB
}

// NewAppointmentRepo creates an AppointmentRepo.
func NewAppointmentRepo(db DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

const appointmentColumns = `id, appointment_number, doctor_id, schedule_id,
	patient_name, phone, appointment_date, coalesce(symptoms, ''), status,
	coalesce(notes, ''), created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.AppointmentNumber, &a.DoctorID, &a.ScheduleID,
		&a.PatientName, &a.Phone, &a.AppointmentDate, &a.Symptoms, &a.Status,
		&a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID returns the appointment or nil when absent.
func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Create inserts an appointment and returns it with generated fields.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO appointments (appointment_number, doctor_id, schedule_id,
			patient_name, phone, appointment_date, symptoms, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, nullif($7, ''), $8, nullif($9, ''))
		RETURNING `+appointmentColumns,
		a.AppointmentNumber, a.DoctorID, a.ScheduleID, a.PatientName, a.Phone,
		a.AppointmentDate, a.Symptoms, a.Status, a.Notes)
	return scanAppointment(row)
}

// Update applies the given columns and returns the stored appointment, or
// nil when it does not exist.
func (r *AppointmentRepo) Update(ctx context.Context, id int64, upd map[string]any) (*model.Appointment, error) {
	set := `updated_at = now()`
	args := []any{id}
	for _, col := range []string{"schedule_id", "patient_name", "phone",
		"appointment_date", "symptoms", "status", "notes"} {
		if v, ok := upd[col]; ok {
			args = append(args, v)
			set += fmt.Sprintf(", %s = $%d", col, len(args))
		}
	}

	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`UPDATE appointments SET `+set+` WHERE id = $1 RETURNING `+appointmentColumns, args...)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// ListByDoctor returns a doctor's appointments, newest first.
func (r *AppointmentRepo) ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	return r.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE doctor_id = $1 ORDER BY appointment_date DESC`, doctorID)
}

// ListByPhone returns a patient's appointments, newest first.
func (r *AppointmentRepo) ListByPhone(ctx context.Context, phone string) ([]model.Appointment, error) {
	return r.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE phone = $1 ORDER BY appointment_date DESC`, phone)
}

func (r *AppointmentRepo) list(ctx context.Context, sql string, args ...any) ([]model.Appointment, error) {
	rows, err := r.db.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
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

// CompletePast marks confirmed appointments whose date has passed as
// completed. Returns how many rows changed. Used by the maintenance job.
func (r *AppointmentRepo) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.GetQuerier(ctx).Exec(ctx, `
		UPDATE appointments SET status = 'completed', updated_at = now()
		WHERE status = 'confirmed' AND appointment_date < $1`,
		before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
