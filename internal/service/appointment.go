package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-api/internal/model"
	"clinic-api/internal/shared"
)

// AppointmentInput carries the fields for booking an appointment.
type AppointmentInput struct {
	DoctorID    int64
	PatientName string
	Phone       string
	Date        model.DateTime
	Symptoms    string
}

// AppointmentUpdate carries the optional fields for updating an appointment.
type AppointmentUpdate struct {
	PatientName *string
	Phone       *string
	Date        *model.DateTime
	Symptoms    *string
	Notes       *string
}

// AppointmentService books, reschedules and cancels appointments. Every
// write pairs the appointment row with the slot counter move inside one
// unit of work, so the counter can never diverge from the live bookings it
// counts, even when the transaction fails halfway.
type AppointmentService struct {
	tx           TxManager
	doctors      DoctorStore
	schedules    ScheduleStore
	appointments AppointmentStore
	availability *ScheduleService
	notifier     Notifier // optional
	now          func() time.Time
}

// NewAppointmentService creates an AppointmentService. notifier may be nil.
func NewAppointmentService(
	tx TxManager,
	doctors DoctorStore,
	schedules ScheduleStore,
	appointments AppointmentStore,
	availability *ScheduleService,
	notifier Notifier,
) *AppointmentService {
	return &AppointmentService{
		tx:           tx,
		doctors:      doctors,
		schedules:    schedules,
		appointments: appointments,
		availability: availability,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Create books an appointment. The availability check and the slot booking
// run in the same unit of work; when a concurrent booking takes the last
// slot between the two, the conditional update misses and the caller gets a
// conflict instead of an overbooked schedule.
func (s *AppointmentService) Create(ctx context.Context, in AppointmentInput) (*model.Appointment, error) {
	if strings.TrimSpace(in.PatientName) == "" {
		return nil, shared.Errorf(shared.MissingParameter, "patient name must not be empty")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, shared.Errorf(shared.MissingParameter, "phone must not be empty")
	}
	if in.Date.Before(s.now()) {
		return nil, shared.Errorf(shared.BusinessError, "cannot book a date in the past")
	}

	var (
		created *model.Appointment
		doctor  *model.Doctor
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		doctor, err = s.doctors.GetByID(ctx, in.DoctorID)
		if err != nil {
			return err
		}
		if doctor == nil {
			return shared.Errorf(shared.BusinessError, "doctor not found")
		}
		if !doctor.Available {
			return shared.Errorf(shared.BusinessError, "doctor is not taking appointments")
		}

		date := model.NewDate(in.Date.Time)
		avail, err := s.availability.CheckAvailability(ctx, in.DoctorID, date)
		if err != nil {
			return err
		}
		if !avail.Available {
			return shared.Errorf(shared.BusinessError, "%s", avail.Reason)
		}

		schedule, err := s.schedules.GetByDoctorAndDate(ctx, in.DoctorID, date)
		if err != nil {
			return err
		}
		if schedule == nil {
			return shared.Errorf(shared.BusinessError, "no schedule on that date")
		}

		booked, err := s.schedules.Book(ctx, schedule.ID)
		if err != nil {
			return err
		}
		if booked == nil {
			// Lost the race after the availability check passed.
			return shared.Errorf(shared.ResourceConflict, "slot became full")
		}

		created, err = s.appointments.Create(ctx, &model.Appointment{
			AppointmentNumber: newAppointmentNumber(),
			DoctorID:          in.DoctorID,
			ScheduleID:        schedule.ID,
			PatientName:       in.PatientName,
			Phone:             in.Phone,
			AppointmentDate:   in.Date,
			Symptoms:          in.Symptoms,
			Status:            model.StatusConfirmed,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		// After the commit; a notification failure cannot unwind the booking.
		go s.notifier.AppointmentConfirmed(context.WithoutCancel(ctx), *created, *doctor)
	}
	return created, nil
}

// Get returns one appointment.
func (s *AppointmentService) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, shared.Errorf(shared.NotFound, "appointment not found")
	}
	return a, nil
}

// ListByDoctor returns a doctor's appointments.
func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, shared.Errorf(shared.BusinessError, "doctor not found")
	}
	return s.appointments.ListByDoctor(ctx, doctorID)
}

// ListByPhone returns a patient's appointments.
func (s *AppointmentService) ListByPhone(ctx context.Context, phone string) ([]model.Appointment, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, shared.Errorf(shared.MissingParameter, "phone must not be empty")
	}
	return s.appointments.ListByPhone(ctx, phone)
}

// Update changes appointment fields. Moving the date re-checks availability
// and moves the slot counters of both schedules in the same unit of work.
func (s *AppointmentService) Update(ctx context.Context, id int64, in AppointmentUpdate) (*model.Appointment, error) {
	upd := map[string]any{}
	if in.PatientName != nil {
		upd["patient_name"] = *in.PatientName
	}
	if in.Phone != nil {
		upd["phone"] = *in.Phone
	}
	if in.Symptoms != nil {
		upd["symptoms"] = *in.Symptoms
	}
	if in.Notes != nil {
		upd["notes"] = *in.Notes
	}
	if in.Date == nil && len(upd) == 0 {
		return nil, shared.Errorf(shared.ParameterError, "nothing to update")
	}
	if in.Date != nil && in.Date.Before(s.now()) {
		return nil, shared.Errorf(shared.BusinessError, "cannot book a date in the past")
	}

	var updated *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return shared.Errorf(shared.NotFound, "appointment not found")
		}
		if existing.Status == model.StatusCancelled || existing.Status == model.StatusCompleted {
			return shared.Errorf(shared.BusinessError, "appointment is %s and cannot change", existing.Status)
		}

		if in.Date != nil {
			newDate := model.NewDate(in.Date.Time)
			oldDate := model.NewDate(existing.AppointmentDate.Time)
			if !newDate.Equal(oldDate) {
				avail, err := s.availability.CheckAvailability(ctx, existing.DoctorID, newDate)
				if err != nil {
					return err
				}
				if !avail.Available {
					return shared.Errorf(shared.BusinessError, "%s", avail.Reason)
				}

				target, err := s.schedules.GetByDoctorAndDate(ctx, existing.DoctorID, newDate)
				if err != nil {
					return err
				}
				if target == nil {
					return shared.Errorf(shared.BusinessError, "no schedule on that date")
				}

				booked, err := s.schedules.Book(ctx, target.ID)
				if err != nil {
					return err
				}
				if booked == nil {
					return shared.Errorf(shared.ResourceConflict, "slot became full")
				}
				if _, err := s.schedules.Release(ctx, existing.ScheduleID); err != nil {
					return err
				}
				upd["schedule_id"] = target.ID
			}
			upd["appointment_date"] = *in.Date
		}

		updated, err = s.appointments.Update(ctx, id, upd)
		if err != nil {
			return err
		}
		if updated == nil {
			return shared.Errorf(shared.NotFound, "appointment not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel cancels an appointment and releases its slot in the same unit of
// work.
func (s *AppointmentService) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	var cancelled *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return shared.Errorf(shared.NotFound, "appointment not found")
		}
		switch existing.Status {
		case model.StatusCancelled:
			return shared.Errorf(shared.BusinessError, "appointment is already cancelled")
		case model.StatusCompleted:
			return shared.Errorf(shared.BusinessError, "a completed appointment cannot be cancelled")
		}

		if _, err := s.schedules.Release(ctx, existing.ScheduleID); err != nil {
			return err
		}

		cancelled, err = s.appointments.Update(ctx, id, map[string]any{
			"status": model.StatusCancelled,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// newAppointmentNumber returns a short unique booking reference.
func newAppointmentNumber() string {
	return "AP-" + strings.ToUpper(uuid.NewString()[:8])
}
