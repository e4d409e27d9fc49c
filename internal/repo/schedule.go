package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clinic-api/internal/model"
)

// ScheduleRepo persists schedules and owns the capacity counter moves.
type ScheduleRepo struct {
	db DB
}

// NewScheduleRepo creates a ScheduleRepo.
func NewScheduleRepo(db DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

const scheduleColumns = `id, doctor_id, date, start_time, end_time,
	max_patients, current_patients, is_available, created_at, updated_at`

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(&s.ID, &s.DoctorID, &s.Date, &s.StartTime, &s.EndTime,
		&s.MaxPatients, &s.CurrentPatients, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID returns the schedule or nil when absent.
func (r *ScheduleRepo) GetByID(ctx context.Context, id int64) (*model.Schedule, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// GetByDoctorAndDate returns the schedule for one doctor/day or nil.
func (r *ScheduleRepo) GetByDoctorAndDate(ctx context.Context, doctorID int64, date model.Date) (*model.Schedule, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE doctor_id = $1 AND date = $2`,
		doctorID, date)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// ListByDoctor returns the doctor's schedules for the next `days` days.
func (r *ScheduleRepo) ListByDoctor(ctx context.Context, doctorID int64, days int) ([]model.Schedule, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := r.db.GetQuerier(ctx).Query(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE doctor_id = $1 AND date >= current_date AND date < current_date + $2::int
		 ORDER BY date`,
		doctorID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Create inserts a schedule with a zero current_patients counter.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) (*model.Schedule, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO schedules (doctor_id, date, start_time, end_time, max_patients)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+scheduleColumns,
		s.DoctorID, s.Date, s.StartTime, s.EndTime, s.MaxPatients)
	return scanSchedule(row)
}

// Update applies the given columns and returns the stored schedule, or nil
// when the schedule does not exist.
func (r *ScheduleRepo) Update(ctx context.Context, id int64, upd map[string]any) (*model.Schedule, error) {
	set := `updated_at = now()`
	args := []any{id}
	for _, col := range []string{"date", "start_time", "end_time", "max_patients", "is_available"} {
		if v, ok := upd[col]; ok {
			args = append(args, v)
			set += fmt.Sprintf(", %s = $%d", col, len(args))
		}
	}

	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`UPDATE schedules SET `+set+` WHERE id = $1 RETURNING `+scheduleColumns, args...)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// Delete removes a schedule. Returns false when it does not exist.
func (r *ScheduleRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.GetQuerier(ctx).Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Book increments current_patients if capacity remains. The conditional
// update makes the database the serialization point for concurrent
// bookings: when two requests race past the availability check, the loser's
// update matches zero rows here and the caller reports a conflict. Returns
// the updated schedule or nil when the slot was full or unavailable.
func (r *ScheduleRepo) Book(ctx context.Context, id int64) (*model.Schedule, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx, `
		UPDATE schedules
		SET current_patients = current_patients + 1, updated_at = now()
		WHERE id = $1 AND is_available AND current_patients < max_patients
		RETURNING `+scheduleColumns, id)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// Release decrements current_patients, guarded so the counter can never go
// below zero. Returns the updated schedule or nil when there was nothing to
// release.
func (r *ScheduleRepo) Release(ctx context.Context, id int64) (*model.Schedule, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx, `
		UPDATE schedules
		SET current_patients = current_patients - 1, updated_at = now()
		WHERE id = $1 AND current_patients > 0
		RETURNING `+scheduleColumns, id)
	s, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// CountAppointments counts live appointments referencing a schedule.
func (r *ScheduleRepo) CountAppointments(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.GetQuerier(ctx).QueryRow(ctx, `
		SELECT count(*) FROM appointments
		WHERE schedule_id = $1 AND status IN ('pending', 'confirmed')`,
		id).Scan(&n)
	return n, err
}

// ClosePast marks schedules older than the given day unavailable and
// returns how many rows changed. Used by the maintenance job.
func (r *ScheduleRepo) ClosePast(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.GetQuerier(ctx).Exec(ctx, `
		UPDATE schedules SET is_available = false, updated_at = now()
		WHERE is_available AND date < $1`,
		before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
