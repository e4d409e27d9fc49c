package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"clinic-api/internal/model"
	"clinic-api/internal/repo"
)

// fakeTx runs the callback directly, outside any database. Returning the
// callback error unchanged mirrors the rollback path: nothing half-done is
// observed by the caller.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type mockDoctorStore struct{ mock.Mock }

func (m *mockDoctorStore) GetByID(ctx context.Context, id int64) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*model.Doctor)
	return d, args.Error(1)
}

func (m *mockDoctorStore) List(ctx context.Context, f repo.ListFilter) ([]model.Doctor, int, error) {
	args := m.Called(ctx, f)
	ds, _ := args.Get(0).([]model.Doctor)
	return ds, args.Int(1), args.Error(2)
}

func (m *mockDoctorStore) Create(ctx context.Context, d *model.Doctor) (*model.Doctor, error) {
	args := m.Called(ctx, d)
	out, _ := args.Get(0).(*model.Doctor)
	return out, args.Error(1)
}

func (m *mockDoctorStore) Update(ctx context.Context, id int64, upd map[string]any) (*model.Doctor, error) {
	args := m.Called(ctx, id, upd)
	out, _ := args.Get(0).(*model.Doctor)
	return out, args.Error(1)
}

func (m *mockDoctorStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockDoctorStore) CountFutureAppointments(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type mockScheduleStore struct{ mock.Mock }

func (m *mockScheduleStore) GetByID(ctx context.Context, id int64) (*model.Schedule, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Schedule)
	return s, args.Error(1)
}

func (m *mockScheduleStore) GetByDoctorAndDate(ctx context.Context, doctorID int64, date model.Date) (*model.Schedule, error) {
	args := m.Called(ctx, doctorID, date)
	s, _ := args.Get(0).(*model.Schedule)
	return s, args.Error(1)
}

func (m *mockScheduleStore) ListByDoctor(ctx context.Context, doctorID int64, days int) ([]model.Schedule, error) {
	args := m.Called(ctx, doctorID, days)
	ss, _ := args.Get(0).([]model.Schedule)
	return ss, args.Error(1)
}

func (m *mockScheduleStore) Create(ctx context.Context, s *model.Schedule) (*model.Schedule, error) {
	args := m.Called(ctx, s)
	out, _ := args.Get(0).(*model.Schedule)
	return out, args.Error(1)
}

func (m *mockScheduleStore) Update(ctx context.Context, id int64, upd map[string]any) (*model.Schedule, error) {
	args := m.Called(ctx, id, upd)
	out, _ := args.Get(0).(*model.Schedule)
	return out, args.Error(1)
}

func (m *mockScheduleStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockScheduleStore) Book(ctx context.Context, id int64) (*model.Schedule, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Schedule)
	return s, args.Error(1)
}

func (m *mockScheduleStore) Release(ctx context.Context, id int64) (*model.Schedule, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Schedule)
	return s, args.Error(1)
}

func (m *mockScheduleStore) CountAppointments(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockScheduleStore) ClosePast(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockAppointmentStore struct{ mock.Mock }

func (m *mockAppointmentStore) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *mockAppointmentStore) Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(*model.Appointment)
	return out, args.Error(1)
}

func (m *mockAppointmentStore) Update(ctx context.Context, id int64, upd map[string]any) (*model.Appointment, error) {
	args := m.Called(ctx, id, upd)
	out, _ := args.Get(0).(*model.Appointment)
	return out, args.Error(1)
}

func (m *mockAppointmentStore) ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	args := m.Called(ctx, doctorID)
	as, _ := args.Get(0).([]model.Appointment)
	return as, args.Error(1)
}

func (m *mockAppointmentStore) ListByPhone(ctx context.Context, phone string) ([]model.Appointment, error) {
	args := m.Called(ctx, phone)
	as, _ := args.Get(0).([]model.Appointment)
	return as, args.Error(1)
}

func (m *mockAppointmentStore) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	out, _ := args.Get(0).(*model.User)
	return out, args.Error(1)
}

type mockFileStore struct{ mock.Mock }

func (m *mockFileStore) Save(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, category, filename, r)
	return args.String(0), args.Error(1)
}

type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) Issue(int64) (string, error) { return s.token, s.err }
