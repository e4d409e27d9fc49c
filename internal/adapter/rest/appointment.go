package rest

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/model"
	"clinic-api/internal/service"
	"clinic-api/internal/shared"
)

type createAppointmentRequest struct {
	DoctorID    int64  `json:"doctor_id" binding:"required,gt=0"`
	PatientName string `json:"patient_name" binding:"required,min=1,max=100"`
	Phone       string `json:"phone" binding:"required,min=5,max=30"`
	Date        string `json:"appointment_date" binding:"required"`
	Symptoms    string `json:"symptoms" binding:"max=2000"`
}

type updateAppointmentRequest struct {
	PatientName *string `json:"patient_name" binding:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,min=5,max=30"`
	Date        *string `json:"appointment_date"`
	Symptoms    *string `json:"symptoms" binding:"omitempty,max=2000"`
	Notes       *string `json:"notes" binding:"omitempty,max=2000"`
}

func (h *Handlers) createAppointment(c *gin.Context) (any, error) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	when, err := parseDateTime(req.Date)
	if err != nil {
		return nil, err
	}
	return h.appointments.Create(c.Request.Context(), service.AppointmentInput{
		DoctorID:    req.DoctorID,
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Date:        when,
		Symptoms:    req.Symptoms,
	})
}

func (h *Handlers) getAppointment(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.appointments.Get(c.Request.Context(), id)
}

func (h *Handlers) listAppointmentsByPhone(c *gin.Context) (any, error) {
	return h.appointments.ListByPhone(c.Request.Context(), c.Query("phone"))
}

func (h *Handlers) listDoctorAppointments(c *gin.Context) (any, error) {
	doctorID, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.appointments.ListByDoctor(c.Request.Context(), doctorID)
}

func (h *Handlers) updateAppointment(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}

	upd := service.AppointmentUpdate{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Symptoms:    req.Symptoms,
		Notes:       req.Notes,
	}
	if req.Date != nil {
		when, err := parseDateTime(*req.Date)
		if err != nil {
			return nil, err
		}
		upd.Date = &when
	}
	return h.appointments.Update(c.Request.Context(), id, upd)
}

func (h *Handlers) cancelAppointment(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.appointments.Cancel(c.Request.Context(), id)
}

// parseDateTime accepts the wire datetime format and, for convenience, a
// bare date meaning the start of that day.
func parseDateTime(raw string) (model.DateTime, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return model.NewDateTime(t), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return model.NewDateTime(t), nil
	}
	return model.DateTime{}, shared.Errorf(shared.InvalidParameterFormat,
		"appointment_date must look like 2006-01-02 15:04:05")
}
