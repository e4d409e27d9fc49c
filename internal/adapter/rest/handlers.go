package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/service"
)

// Handlers binds the HTTP surface to the services.
type Handlers struct {
	doctors      *service.DoctorService
	schedules    *service.ScheduleService
	appointments *service.AppointmentService
	users        *service.UserService
	errs         *ErrorRouter
}

// NewHandlers creates the handler set.
func NewHandlers(
	doctors *service.DoctorService,
	schedules *service.ScheduleService,
	appointments *service.AppointmentService,
	users *service.UserService,
	errs *ErrorRouter,
) *Handlers {
	return &Handlers{
		doctors:      doctors,
		schedules:    schedules,
		appointments: appointments,
		users:        users,
		errs:         errs,
	}
}

// wrap adapts a result-returning handler to gin. A returned error goes
// through the error router; a result goes out in the success envelope. This
// keeps every endpoint on the same two exits.
func (h *Handlers) wrap(fn func(c *gin.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := fn(c)
		if err != nil {
			h.errs.Respond(c, err)
			return
		}
		OK(c, result)
	}
}

// pathID parses the named int64 path parameter. A garbage value surfaces
// as a strconv error, which the router maps to the format-error kind.
func pathID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
