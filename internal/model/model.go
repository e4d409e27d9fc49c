// Package model defines the persisted entities and their wire
// representation. All structs serialize to flat key/value JSON objects;
// datetimes render as fixed-format strings via DateTime and Date.
package model

// AppointmentStatus enumerates the appointment lifecycle.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Doctor is a bookable practitioner.
type Doctor struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Department      string   `json:"department"`
	Title           string   `json:"title"`
	Specialty       string   `json:"specialty"`
	Available       bool     `json:"available"`
	Phone           string   `json:"phone,omitempty"`
	Email           string   `json:"email,omitempty"`
	YearsExperience int      `json:"years_experience,omitempty"`
	Introduction    string   `json:"introduction,omitempty"`
	AvatarPath      string   `json:"avatar_path,omitempty"`
	CreatedAt       DateTime `json:"created_at"`
	UpdatedAt       DateTime `json:"updated_at"`
}

// Schedule is a doctor/date capacity slot. CurrentPatients is owned by the
// database: it only moves through conditional updates inside the same
// transaction as the appointment row, so at every committed state
// 0 <= CurrentPatients <= MaxPatients.
type Schedule struct {
	ID              int64    `json:"id"`
	DoctorID        int64    `json:"doctor_id"`
	Date            Date     `json:"date"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	MaxPatients     int      `json:"max_patients"`
	CurrentPatients int      `json:"current_patients"`
	IsAvailable     bool     `json:"is_available"`
	CreatedAt       DateTime `json:"created_at"`
	UpdatedAt       DateTime `json:"updated_at"`
}

// AvailableSlots is derived from the two counters, never stored.
func (s Schedule) AvailableSlots() int {
	return s.MaxPatients - s.CurrentPatients
}

// Full reports whether the slot has reached capacity.
func (s Schedule) Full() bool {
	return s.CurrentPatients >= s.MaxPatients
}

// Appointment is one booked visit. Patient identity is carried denormalized
// as name + phone.
type Appointment struct {
	ID                int64             `json:"id"`
	AppointmentNumber string            `json:"appointment_number"`
	DoctorID          int64             `json:"doctor_id"`
	ScheduleID        int64             `json:"schedule_id"`
	PatientName       string            `json:"patient_name"`
	Phone             string            `json:"phone"`
	AppointmentDate   DateTime          `json:"appointment_date"`
	Symptoms          string            `json:"symptoms,omitempty"`
	Status            AppointmentStatus `json:"status"`
	Notes             string            `json:"notes,omitempty"`
	CreatedAt         DateTime          `json:"created_at"`
	UpdatedAt         DateTime          `json:"updated_at"`
}

// User is an API account.
type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Nickname     string   `json:"nickname,omitempty"`
	Email        string   `json:"email,omitempty"`
	Disabled     bool     `json:"disabled"`
	CreatedAt    DateTime `json:"created_at"`
	UpdatedAt    DateTime `json:"updated_at"`
}
