package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/authctx"
	"github.com/kbukum/clinic/auth/session"
	"github.com/kbukum/clinic/authz"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/notify"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/resilience"
	mw "github.com/kbukum/clinic/server/middleware"
)

// Sessions is the session side of the API. *session.Manager implements it.
type Sessions interface {
	Login(ctx context.Context, email, password string) (session.Credential, error)
	Resolve(ctx context.Context, token string) (auth.Principal, error)
	Revoke(ctx context.Context, token string) error
}

// Options tune handler behavior.
type Options struct {
	// AllowUnownedCreate lets a patient book for another patient id and a
	// doctor prescribe under another doctor id.
	AllowUnownedCreate bool

	// LoginLimiter throttles POST /login per client IP. Nil disables it.
	LoginLimiter *resilience.KeyedRateLimiter
}

// Handler serves the clinic routes.
type Handler struct {
	sessions Sessions
	guard    *authz.Guard
	repo     *records.Repository
	notifier notify.Notifier
	opts     Options
	log      *logger.Logger
}

// New creates the handler. A nil notifier discards events.
func New(sessions Sessions, guard *authz.Guard, repo *records.Repository, notifier notify.Notifier, opts Options, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger.Nop())
	}
	return &Handler{
		sessions: sessions,
		guard:    guard,
		repo:     repo,
		notifier: notifier,
		opts:     opts,
		log:      log.WithComponent("api"),
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	authn := mw.Authenticate(h.sessions)
	can := func(resource string, action authz.Action) gin.HandlerFunc {
		return mw.RequirePermission(h.guard, authz.Permission(resource, action))
	}

	login := []gin.HandlerFunc{h.login}
	if h.opts.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{mw.RateLimit(h.opts.LoginLimiter)}, login...)
	}
	r.POST("/login", login...)
	r.POST("/logout", mw.OptionalAuth(h.sessions), h.logout)
	r.GET("/me", authn, h.me)

	r.POST("/register/patient", h.registerPatient)
	r.POST("/register/doctor", h.registerDoctor)
	r.PUT("/patient/:id", authn, h.updatePatient)
	r.DELETE("/patient/:id", authn, h.deletePatient)
	r.PUT("/doctor/:id", authn, h.updateDoctor)
	r.DELETE("/doctor/:id", authn, h.deleteDoctor)
	r.GET("/doctors", authn, can("doctor", "list"), h.listDoctors)

	r.GET("/appointments/patient", authn, h.listPatientAppointments)
	r.GET("/appointments/doctor", authn, h.listDoctorAppointments)
	r.GET("/appointments/:id", authn, can("appointment", authz.ActionRead), h.getAppointment)
	r.GET("/appointment/:id", authn, can("appointment", authz.ActionRead), h.getAppointment)
	r.POST("/appointments", authn, can("appointment", authz.ActionCreate), h.createAppointment)
	r.PUT("/appointments/:id", authn, can("appointment", authz.ActionUpdate), h.updateAppointment)
	r.DELETE("/appointments/:id", authn, can("appointment", authz.ActionDelete), h.deleteAppointment)

	r.GET("/prescriptions/patient", authn, h.listPatientPrescriptions)
	r.GET("/prescriptions/doctor", authn, h.listDoctorPrescriptions)
	r.GET("/prescriptions/:id", authn, can("prescription", authz.ActionRead), h.getPrescription)
	r.GET("/prescription/:id", authn, can("prescription", authz.ActionRead), h.getPrescription)
	r.POST("/prescriptions", authn, can("prescription", authz.ActionCreate), h.createPrescription)
	r.PUT("/prescriptions/:id", authn, can("prescription", authz.ActionUpdate), h.updatePrescription)
	r.DELETE("/prescriptions/:id", authn, can("prescription", authz.ActionDelete), h.deletePrescription)

	r.GET("/medications", authn, can("medication", "list"), h.listMedications)
	r.POST("/medications", authn, can("medication", authz.ActionCreate), h.createMedication)
}

// principal returns the principal stored by the Authenticate middleware.
func principal(c *gin.Context) auth.Principal {
	p, _ := authctx.Principal(c.Request.Context())
	return p
}
