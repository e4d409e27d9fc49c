package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterOptions carries the collaborators the route table needs.
type RouterOptions struct {
	Handlers *Handlers
	Errors   *ErrorRouter
	Verifier TokenVerifier
	Logger   *slog.Logger
	// Health reports storage reachability; nil means always healthy.
	Health func(ctx context.Context) error
	Debug  bool
}

// NewRouter builds the gin engine with the full route table. Reads are
// public; writes sit behind bearer auth, except booking and cancelling,
// which patients do without an account.
func NewRouter(opts RouterOptions) *gin.Engine {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(opts.Logger))
	r.Use(Recover(opts.Errors))

	r.NoRoute(func(c *gin.Context) {
		opts.Errors.Respond(c, &HTTPError{Status: http.StatusNotFound})
	})
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		opts.Errors.Respond(c, &HTTPError{Status: http.StatusMethodNotAllowed})
	})

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := opts.Handlers
	auth := RequireAuth(opts.Verifier, opts.Errors)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users/register", h.wrap(h.register))
		v1.POST("/users/login", h.wrap(h.login))
		v1.GET("/users/me", auth, h.wrap(h.me))

		v1.GET("/doctors", h.wrap(h.listDoctors))
		v1.GET("/doctors/:id", h.wrap(h.getDoctor))
		v1.POST("/doctors", auth, h.wrap(h.createDoctor))
		v1.PUT("/doctors/:id", auth, h.wrap(h.updateDoctor))
		v1.DELETE("/doctors/:id", auth, h.wrap(h.deleteDoctor))
		v1.POST("/doctors/:id/avatar", auth, h.wrap(h.uploadDoctorAvatar))

		v1.GET("/doctors/:id/schedules", h.wrap(h.listDoctorSchedules))
		v1.GET("/doctors/:id/appointments", auth, h.wrap(h.listDoctorAppointments))

		v1.GET("/schedules/availability", h.wrap(h.checkAvailability))
		v1.POST("/schedules", auth, h.wrap(h.createSchedule))
		v1.PUT("/schedules/:id", auth, h.wrap(h.updateSchedule))
		v1.DELETE("/schedules/:id", auth, h.wrap(h.deleteSchedule))

		v1.POST("/appointments", h.wrap(h.createAppointment))
		v1.GET("/appointments", h.wrap(h.listAppointmentsByPhone))
		v1.GET("/appointments/:id", h.wrap(h.getAppointment))
		v1.PUT("/appointments/:id", h.wrap(h.updateAppointment))
		v1.POST("/appointments/:id/cancel", h.wrap(h.cancelAppointment))
	}

	return r
}
