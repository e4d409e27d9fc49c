package rest

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/model"
	"clinic-api/internal/service"
	"clinic-api/internal/shared"
)

type createScheduleRequest struct {
	DoctorID    int64  `json:"doctor_id" binding:"required,gt=0"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime     string `json:"end_time" binding:"required,datetime=15:04"`
	MaxPatients int    `json:"max_patients" binding:"required,gt=0"`
}

type updateScheduleRequest struct {
	StartTime   *string `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime     *string `json:"end_time" binding:"omitempty,datetime=15:04"`
	MaxPatients *int    `json:"max_patients" binding:"omitempty,gt=0"`
	IsAvailable *bool   `json:"is_available"`
}

func (h *Handlers) listDoctorSchedules(c *gin.Context) (any, error) {
	doctorID, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	days, err := queryInt(c, "days", 7)
	if err != nil {
		return nil, err
	}
	if days < 1 || days > 90 {
		return nil, shared.Errorf(shared.ParameterOutOfRange, "days must be in 1..90")
	}
	return h.schedules.ListByDoctor(c.Request.Context(), doctorID, days)
}

func (h *Handlers) checkAvailability(c *gin.Context) (any, error) {
	doctorID, err := queryInt(c, "doctor_id", 0)
	if err != nil {
		return nil, err
	}
	if doctorID <= 0 {
		return nil, shared.Errorf(shared.MissingParameter, "doctor_id is required")
	}
	date, err := parseDateQuery(c.Query("date"))
	if err != nil {
		return nil, err
	}
	return h.schedules.CheckAvailability(c.Request.Context(), int64(doctorID), date)
}

func (h *Handlers) createSchedule(c *gin.Context) (any, error) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}

	date, err := parseDateQuery(req.Date)
	if err != nil {
		return nil, err
	}
	return h.schedules.Create(c.Request.Context(), service.ScheduleInput{
		DoctorID:    req.DoctorID,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxPatients: req.MaxPatients,
	})
}

func (h *Handlers) updateSchedule(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return h.schedules.Update(c.Request.Context(), id, service.ScheduleUpdate{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxPatients: req.MaxPatients,
		IsAvailable: req.IsAvailable,
	})
}

func (h *Handlers) deleteSchedule(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		return nil, err
	}
	return nil, nil
}

// parseDateQuery parses a calendar date in the wire format.
func parseDateQuery(raw string) (model.Date, error) {
	if raw == "" {
		return model.Date{}, shared.Errorf(shared.MissingParameter, "date is required")
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return model.Date{}, shared.Errorf(shared.InvalidParameterFormat, "date must look like 2006-01-02")
	}
	return model.NewDate(t), nil
}
