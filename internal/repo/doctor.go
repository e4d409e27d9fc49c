package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clinic-api/internal/model"
)

// DoctorRepo persists doctors.
type DoctorRepo struct {
	db DB
}

// NewDoctorRepo creates a DoctorRepo.
func NewDoctorRepo(db DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

const doctorColumns = `id, name, department, title, specialty, available,
	coalesce(phone, ''), coalesce(email, ''), coalesce(years_experience, 0),
	coalesce(introduction, ''), coalesce(avatar_path, ''), created_at, updated_at`

func scanDoctor(row pgx.Row) (*model.Doctor, error) {
	var d model.Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Department, &d.Title, &d.Specialty, &d.Available,
		&d.Phone, &d.Email, &d.YearsExperience, &d.Introduction, &d.AvatarPath,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID returns the doctor or nil when absent.
func (r *DoctorRepo) GetByID(ctx context.Context, id int64) (*model.Doctor, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	d, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// ListFilter narrows List results.
type ListFilter struct {
	Department string
	Available  *bool
	Limit      int
	Offset     int
}

// List returns doctors matching the filter plus the unlimited total count.
func (r *DoctorRepo) List(ctx context.Context, f ListFilter) ([]model.Doctor, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	where := ` WHERE 1=1`
	args := []any{}
	if f.Department != "" {
		args = append(args, f.Department)
		where += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if f.Available != nil {
		args = append(args, *f.Available)
		where += fmt.Sprintf(" AND available = $%d", len(args))
	}

	q := r.db.GetQuerier(ctx)

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM doctors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := q.Query(ctx,
		`SELECT `+doctorColumns+` FROM doctors`+where+
			fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// Create inserts a doctor and returns it with generated fields filled.
func (r *DoctorRepo) Create(ctx context.Context, d *model.Doctor) (*model.Doctor, error) {
	row := r.db.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO doctors (name, department, title, specialty, available,
			phone, email, years_experience, introduction)
		VALUES ($1, $2, $3, $4, $5, nullif($6, ''), nullif($7, ''), nullif($8, 0), nullif($9, ''))
		RETURNING `+doctorColumns,
		d.Name, d.Department, d.Title, d.Specialty, d.Available,
		d.Phone, d.Email, d.YearsExperience, d.Introduction)
	return scanDoctor(row)
}

// Update applies non-zero fields of upd and returns the stored doctor, or
// nil when the doctor does not exist.
func (r *DoctorRepo) Update(ctx context.Context, id int64, upd map[string]any) (*model.Doctor, error) {
	set := `updated_at = now()`
	args := []any{id}
	for _, col := range []string{"name", "department", "title", "specialty", "available",
		"phone", "email", "years_experience", "introduction", "avatar_path"} {
		if v, ok := upd[col]; ok {
			args = append(args, v)
			set += fmt.Sprintf(", %s = $%d", col, len(args))
		}
	}

	row := r.db.GetQuerier(ctx).QueryRow(ctx,
		`UPDATE doctors SET `+set+` WHERE id = $1 RETURNING `+doctorColumns, args...)
	d, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// Delete removes a doctor. Returns false when the doctor does not exist.
func (r *DoctorRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.GetQuerier(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountFutureAppointments counts live (pending/confirmed) appointments of a
// doctor from now on. Used to refuse deleting a doctor people are booked with.
func (r *DoctorRepo) CountFutureAppointments(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.GetQuerier(ctx).QueryRow(ctx, `
		SELECT count(*) FROM appointments
		WHERE doctor_id = $1 AND status IN ('pending', 'confirmed') AND appointment_date >= now()`,
		id).Scan(&n)
	return n, err
}
