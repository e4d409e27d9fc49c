package service

import (
	"context"
	"time"

	"clinic-api/internal/model"
	"clinic-api/internal/shared"
)

// Availability is the result of a slot availability check.
type Availability struct {
	Available       bool   `json:"available"`
	Reason          string `json:"reason,omitempty"`
	AvailableSlots  int    `json:"available_slots,omitempty"`
	MaxPatients     int    `json:"max_patients,omitempty"`
	CurrentPatients int    `json:"current_patients"`
}

// ScheduleInput carries the fields for creating a schedule.
type ScheduleInput struct {
	DoctorID    int64
	Date        model.Date
	StartTime   string
	EndTime     string
	MaxPatients int
}

// ScheduleUpdate carries the optional fields for updating a schedule.
type ScheduleUpdate struct {
	StartTime   *string
	EndTime     *string
	MaxPatients *int
	IsAvailable *bool
}

// ScheduleService manages schedules and the capacity invariant over them.
// A slot moves only between two states: available (current < max) and full
// (current == max); booking and releasing are the only transitions, and
// both happen inside the caller's unit of work together with the
// appointment row they account for.
type ScheduleService struct {
	tx        TxManager
	doctors   DoctorStore
	schedules ScheduleStore
	now       func() time.Time
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(tx TxManager, doctors DoctorStore, schedules ScheduleStore) *ScheduleService {
	return &ScheduleService{tx: tx, doctors: doctors, schedules: schedules, now: time.Now}
}

// ListByDoctor returns a doctor's upcoming schedules.
func (s *ScheduleService) ListByDoctor(ctx context.Context, doctorID int64, days int) ([]model.Schedule, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, shared.Errorf(shared.BusinessError, "doctor not found")
	}
	return s.schedules.ListByDoctor(ctx, doctorID, days)
}

// CheckAvailability reports whether a doctor/date slot can take one more
// booking. It runs against the caller's context, so inside a unit of work
// it reads through the same transaction that will book the slot.
func (s *ScheduleService) CheckAvailability(ctx context.Context, doctorID int64, date model.Date) (Availability, error) {
	schedule, err := s.schedules.GetByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return Availability{}, err
	}

	if schedule == nil || !schedule.IsAvailable {
		return Availability{Available: false, Reason: "no schedule on that date"}, nil
	}
	if schedule.Full() {
		return Availability{
			Available:       false,
			Reason:          "fully booked",
			MaxPatients:     schedule.MaxPatients,
			CurrentPatients: schedule.CurrentPatients,
		}, nil
	}
	return Availability{
		Available:       true,
		AvailableSlots:  schedule.AvailableSlots(),
		MaxPatients:     schedule.MaxPatients,
		CurrentPatients: schedule.CurrentPatients,
	}, nil
}

// Create adds a schedule for a future date.
func (s *ScheduleService) Create(ctx context.Context, in ScheduleInput) (*model.Schedule, error) {
	if in.MaxPatients <= 0 {
		return nil, shared.Errorf(shared.ParameterOutOfRange, "max_patients must be positive")
	}
	if !in.Date.After(model.NewDate(s.now()).Time) {
		return nil, shared.Errorf(shared.BusinessError, "schedule date must be in the future")
	}

	var created *model.Schedule
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doctor, err := s.doctors.GetByID(ctx, in.DoctorID)
		if err != nil {
			return err
		}
		if doctor == nil {
			return shared.Errorf(shared.BusinessError, "doctor not found")
		}

		existing, err := s.schedules.GetByDoctorAndDate(ctx, in.DoctorID, in.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.Errorf(shared.ResourceAlreadyExists, "schedule already exists for that date")
		}

		created, err = s.schedules.Create(ctx, &model.Schedule{
			DoctorID:    in.DoctorID,
			Date:        in.Date,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			MaxPatients: in.MaxPatients,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update changes schedule fields. Capacity may not drop below the bookings
// already taken, or committed states would violate the counter invariant.
func (s *ScheduleService) Update(ctx context.Context, id int64, in ScheduleUpdate) (*model.Schedule, error) {
	upd := map[string]any{}
	if in.StartTime != nil {
		upd["start_time"] = *in.StartTime
	}
	if in.EndTime != nil {
		upd["end_time"] = *in.EndTime
	}
	if in.MaxPatients != nil {
		if *in.MaxPatients <= 0 {
			return nil, shared.Errorf(shared.ParameterOutOfRange, "max_patients must be positive")
		}
		upd["max_patients"] = *in.MaxPatients
	}
	if in.IsAvailable != nil {
		upd["is_available"] = *in.IsAvailable
	}
	if len(upd) == 0 {
		return nil, shared.Errorf(shared.ParameterError, "nothing to update")
	}

	var updated *model.Schedule
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.schedules.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return shared.Errorf(shared.NotFound, "schedule not found")
		}
		if in.MaxPatients != nil && *in.MaxPatients < existing.CurrentPatients {
			return shared.Errorf(shared.BusinessError,
				"max_patients cannot drop below the %d bookings already taken", existing.CurrentPatients)
		}

		updated, err = s.schedules.Update(ctx, id, upd)
		if err != nil {
			return err
		}
		if updated == nil {
			return shared.Errorf(shared.NotFound, "schedule not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a schedule nobody is booked into.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.schedules.CountAppointments(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.Errorf(shared.BusinessError, "schedule has %d active appointments", n)
		}

		ok, err := s.schedules.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return shared.Errorf(shared.NotFound, "schedule not found")
		}
		return nil
	})
}
