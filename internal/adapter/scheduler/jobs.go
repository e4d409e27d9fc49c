package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// MaintenanceStore is the persistence surface the maintenance jobs drive.
type MaintenanceStore interface {
	CompletePastAppointments(ctx context.Context, before time.Time) (int64, error)
	ClosePastSchedules(ctx context.Context, before time.Time) (int64, error)
}

// JobSpecs carries the cron expressions for the maintenance jobs. Empty
// specs disable the job.
type JobSpecs struct {
	CompleteAppointments string
	CloseSchedules       string
}

// RegisterJobs wires the nightly maintenance: confirmed appointments whose
// time has passed become completed, and past schedules stop taking
// bookings.
func RegisterJobs(s *Scheduler, store MaintenanceStore, specs JobSpecs, log *slog.Logger) error {
	if specs.CompleteAppointments != "" {
		err := s.Add(specs.CompleteAppointments, func(ctx context.Context) error {
			n, err := store.CompletePastAppointments(ctx, time.Now())
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("completed past appointments", "count", n)
			}
			return nil
		}, Options{Name: "complete_appointments", Timeout: 5 * time.Minute})
		if err != nil {
			return err
		}
	}

	if specs.CloseSchedules != "" {
		err := s.Add(specs.CloseSchedules, func(ctx context.Context) error {
			n, err := store.ClosePastSchedules(ctx, time.Now())
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("closed past schedules", "count", n)
			}
			return nil
		}, Options{Name: "close_schedules", Timeout: 5 * time.Minute})
		if err != nil {
			return err
		}
	}
	return nil
}
