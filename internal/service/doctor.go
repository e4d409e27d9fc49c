package service

import (
	"context"
	"io"
	"strings"

	"clinic-api/internal/model"
	"clinic-api/internal/repo"
	"clinic-api/internal/shared"
)

// DoctorInput carries the fields for creating a doctor.
type DoctorInput struct {
	Name            string
	Department      string
	Title           string
	Specialty       string
	Available       bool
	Phone           string
	Email           string
	YearsExperience int
	Introduction    string
}

// DoctorUpdate carries the optional fields for updating a doctor.
type DoctorUpdate struct {
	Name            *string
	Department      *string
	Title           *string
	Specialty       *string
	Available       *bool
	Phone           *string
	Email           *string
	YearsExperience *int
	Introduction    *string
}

// DoctorService manages the doctor directory.
type DoctorService struct {
	tx      TxManager
	doctors DoctorStore
	files   FileStore // optional
}

// NewDoctorService creates a DoctorService. files may be nil when avatar
// upload is disabled.
func NewDoctorService(tx TxManager, doctors DoctorStore, files FileStore) *DoctorService {
	return &DoctorService{tx: tx, doctors: doctors, files: files}
}

// Get returns one doctor.
func (s *DoctorService) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, shared.Errorf(shared.NotFound, "doctor not found")
	}
	return d, nil
}

// List returns doctors matching the filter and the total match count.
func (s *DoctorService) List(ctx context.Context, f repo.ListFilter) ([]model.Doctor, int, error) {
	return s.doctors.List(ctx, f)
}

// Create adds a doctor.
func (s *DoctorService) Create(ctx context.Context, in DoctorInput) (*model.Doctor, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, shared.Errorf(shared.MissingParameter, "name must not be empty")
	}

	var created *model.Doctor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.doctors.Create(ctx, &model.Doctor{
			Name:            in.Name,
			Department:      in.Department,
			Title:           in.Title,
			Specialty:       in.Specialty,
			Available:       in.Available,
			Phone:           in.Phone,
			Email:           in.Email,
			YearsExperience: in.YearsExperience,
			Introduction:    in.Introduction,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update changes doctor fields.
func (s *DoctorService) Update(ctx context.Context, id int64, in DoctorUpdate) (*model.Doctor, error) {
	upd := map[string]any{}
	if in.Name != nil {
		upd["name"] = *in.Name
	}
	if in.Department != nil {
		upd["department"] = *in.Department
	}
	if in.Title != nil {
		upd["title"] = *in.Title
	}
	if in.Specialty != nil {
		upd["specialty"] = *in.Specialty
	}
	if in.Available != nil {
		upd["available"] = *in.Available
	}
	if in.Phone != nil {
		upd["phone"] = *in.Phone
	}
	if in.Email != nil {
		upd["email"] = *in.Email
	}
	if in.YearsExperience != nil {
		upd["years_experience"] = *in.YearsExperience
	}
	if in.Introduction != nil {
		upd["introduction"] = *in.Introduction
	}
	if len(upd) == 0 {
		return nil, shared.Errorf(shared.ParameterError, "nothing to update")
	}

	var updated *model.Doctor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.doctors.Update(ctx, id, upd)
		if err != nil {
			return err
		}
		if updated == nil {
			return shared.Errorf(shared.NotFound, "doctor not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a doctor nobody holds a future appointment with.
func (s *DoctorService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.doctors.CountFutureAppointments(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.Errorf(shared.BusinessError, "doctor has %d upcoming appointments", n)
		}

		ok, err := s.doctors.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return shared.Errorf(shared.NotFound, "doctor not found")
		}
		return nil
	})
}

// SetAvatar stores an uploaded avatar through the file-store collaborator
// and records the returned relative path on the doctor.
func (s *DoctorService) SetAvatar(ctx context.Context, id int64, filename string, r io.Reader) (*model.Doctor, error) {
	if s.files == nil {
		return nil, shared.Errorf(shared.ServiceUnavailable, "file upload is not configured")
	}

	path, err := s.files.Save(ctx, "avatars", filename, r)
	if err != nil {
		return nil, shared.E(shared.ExternalServiceError).WithCause(err)
	}

	var updated *model.Doctor
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.doctors.Update(ctx, id, map[string]any{"avatar_path": path})
		if err != nil {
			return err
		}
		if updated == nil {
			return shared.Errorf(shared.NotFound, "doctor not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
