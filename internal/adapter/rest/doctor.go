package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/repo"
	"clinic-api/internal/service"
	"clinic-api/internal/shared"
)

type createDoctorRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Department      string `json:"department" binding:"required,min=1,max=100"`
	Title           string `json:"title" binding:"max=100"`
	Specialty       string `json:"specialty" binding:"max=200"`
	Available       *bool  `json:"available"`
	Phone           string `json:"phone" binding:"max=30"`
	Email           string `json:"email" binding:"omitempty,email"`
	YearsExperience int    `json:"years_experience" binding:"gte=0"`
	Introduction    string `json:"introduction"`
}

type updateDoctorRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	Department      *string `json:"department" binding:"omitempty,min=1,max=100"`
	Title           *string `json:"title" binding:"omitempty,max=100"`
	Specialty       *string `json:"specialty" binding:"omitempty,max=200"`
	Available       *bool   `json:"available"`
	Phone           *string `json:"phone" binding:"omitempty,max=30"`
	Email           *string `json:"email" binding:"omitempty,email"`
	YearsExperience *int    `json:"years_experience" binding:"omitempty,gte=0"`
	Introduction    *string `json:"introduction"`
}

type pageData struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (h *Handlers) listDoctors(c *gin.Context) (any, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return nil, err
	}
	pageSize, err := queryInt(c, "page_size", 20)
	if err != nil {
		return nil, err
	}
	if page < 1 || pageSize < 1 || pageSize > 100 {
		return nil, shared.Errorf(shared.ParameterOutOfRange, "page must be >= 1 and page_size in 1..100")
	}

	filter := repo.ListFilter{
		Department: c.Query("department"),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if raw := c.Query("available"); raw != "" {
		avail, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		filter.Available = &avail
	}

	doctors, total, err := h.doctors.List(c.Request.Context(), filter)
	if err != nil {
		return nil, err
	}
	return pageData{Items: doctors, Total: total, Page: page, PageSize: pageSize}, nil
}

func (h *Handlers) getDoctor(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.doctors.Get(c.Request.Context(), id)
}

func (h *Handlers) createDoctor(c *gin.Context) (any, error) {
	var req createDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return h.doctors.Create(c.Request.Context(), service.DoctorInput{
		Name:            req.Name,
		Department:      req.Department,
		Title:           req.Title,
		Specialty:       req.Specialty,
		Available:       available,
		Phone:           req.Phone,
		Email:           req.Email,
		YearsExperience: req.YearsExperience,
		Introduction:    req.Introduction,
	})
}

func (h *Handlers) updateDoctor(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	var req updateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}

	return h.doctors.Update(c.Request.Context(), id, service.DoctorUpdate{
		Name:            req.Name,
		Department:      req.Department,
		Title:           req.Title,
		Specialty:       req.Specialty,
		Available:       req.Available,
		Phone:           req.Phone,
		Email:           req.Email,
		YearsExperience: req.YearsExperience,
		Introduction:    req.Introduction,
	})
}

func (h *Handlers) deleteDoctor(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	if err := h.doctors.Delete(c.Request.Context(), id); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *Handlers) uploadDoctorAvatar(c *gin.Context) (any, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, shared.Errorf(shared.MissingParameter, "file part is required")
	}
	f, err := header.Open()
	if err != nil {
		return nil, shared.E(shared.ParameterError).WithCause(err)
	}
	defer f.Close()

	return h.doctors.SetAvatar(c.Request.Context(), id, header.Filename, f)
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return n, nil
}
