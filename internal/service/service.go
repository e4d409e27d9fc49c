// Package service implements the business rules. Services run every
// multi-write operation inside one unit of work and report rule violations
// as shared.Error values returned up the stack; nothing is logged here.
package service

import (
	"context"
	"io"
	"time"

	"clinic-api/internal/model"
	"clinic-api/internal/repo"
)

// TxManager runs a function inside one transactional unit of work.
// *pg.TxRunner implements it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DoctorStore is the doctor persistence surface the services consume.
type DoctorStore interface {
	GetByID(ctx context.Context, id int64) (*model.Doctor, error)
	List(ctx context.Context, f repo.ListFilter) ([]model.Doctor, int, error)
	Create(ctx context.Context, d *model.Doctor) (*model.Doctor, error)
	Update(ctx context.Context, id int64, upd map[string]any) (*model.Doctor, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountFutureAppointments(ctx context.Context, id int64) (int, error)
}

// ScheduleStore is the schedule persistence surface.
type ScheduleStore interface {
	GetByID(ctx context.Context, id int64) (*model.Schedule, error)
	GetByDoctorAndDate(ctx context.Context, doctorID int64, date model.Date) (*model.Schedule, error)
	ListByDoctor(ctx context.Context, doctorID int64, days int) ([]model.Schedule, error)
	Create(ctx context.Context, s *model.Schedule) (*model.Schedule, error)
	Update(ctx context.Context, id int64, upd map[string]any) (*model.Schedule, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Book(ctx context.Context, id int64) (*model.Schedule, error)
	Release(ctx context.Context, id int64) (*model.Schedule, error)
	CountAppointments(ctx context.Context, id int64) (int, error)
	ClosePast(ctx context.Context, before time.Time) (int64, error)
}

// AppointmentStore is the appointment persistence surface.
type AppointmentStore interface {
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error)
	Update(ctx context.Context, id int64, upd map[string]any) (*model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error)
	ListByPhone(ctx context.Context, phone string) ([]model.Appointment, error)
	CompletePast(ctx context.Context, before time.Time) (int64, error)
}

// UserStore is the account persistence surface.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, u *model.User) (*model.User, error)
}

// Notifier delivers booking confirmations out of band. Implementations must
// never fail the booking: delivery errors stay inside the notifier.
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, appt model.Appointment, doctor model.Doctor)
}

// FileStore saves an uploaded byte stream under a category and returns the
// stored relative path.
type FileStore interface {
	Save(ctx context.Context, category, filename string, r io.Reader) (string, error)
}
