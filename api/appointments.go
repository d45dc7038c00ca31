package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/authz"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/server"
)

const appointmentResource = "appointment"

func (h *Handler) listPatientAppointments(c *gin.Context) {
	patient, err := h.guard.RequirePatient(principal(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	out, err := h.repo.ListAppointmentsByPatient(c.Request.Context(), patient.ID(), listParams(c, records.AppointmentQuery))
	if err != nil {
		fail(c, err, appointmentResource)
		return
	}
	server.RespondPage(c, out)
}

func (h *Handler) listDoctorAppointments(c *gin.Context) {
	doctor, err := h.guard.RequireDoctor(principal(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	out, err := h.repo.ListAppointmentsByDoctor(c.Request.Context(), doctor.ID(), listParams(c, records.AppointmentQuery))
	if err != nil {
		fail(c, err, appointmentResource)
		return
	}
	server.RespondPage(c, out)
}

// accessAppointment parses :id and checks ownership for action. It has
// answered the request when ok is false.
func (h *Handler) accessAppointment(c *gin.Context, action authz.Action) (int64, bool) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err, "")
		return 0, false
	}
	if _, err := h.guard.Access(c.Request.Context(), principal(c), authz.ResourceAppointment, id, action); err != nil {
		failResource(c, err, appointmentResource)
		return 0, false
	}
	return id, true
}

func (h *Handler) getAppointment(c *gin.Context) {
	id, ok := h.accessAppointment(c, authz.ActionRead)
	if !ok {
		return
	}
	a, err := h.repo.GetAppointment(c.Request.Context(), id)
	if err != nil {
		fail(c, err, appointmentResource)
		return
	}
	server.RespondOK(c, a)
}

func (h *Handler) createAppointment(c *gin.Context) {
	patient, err := h.guard.RequirePatient(principal(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	var req appointmentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "")
		return
	}
	if !h.opts.AllowUnownedCreate {
		if err := h.guard.AuthorizeSelf(patient.Principal(), auth.RolePatient, req.PatientID); err != nil {
			fail(c, err, "")
			return
		}
	}

	ctx := c.Request.Context()
	a := records.Appointment{PatientID: req.PatientID, DoctorID: req.DoctorID, Date: parseDate(req.Date)}
	if err := h.repo.CreateAppointment(ctx, &a); err != nil {
		fail(c, err, "patient or doctor")
		return
	}
	h.log.WithContext(ctx).Info("appointment created", logger.Fields("id", a.ID, logger.FieldPrincipal, patient.Principal().Ref().String()))
	h.notifier.AppointmentCreated(ctx, a)
	server.RespondCreated(c, a)
}

func (h *Handler) updateAppointment(c *gin.Context) {
	id, ok := h.accessAppointment(c, authz.ActionUpdate)
	if !ok {
		return
	}
	var req appointmentUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "")
		return
	}
	date := parseDate(req.Date)
	a, err := h.repo.UpdateAppointment(c.Request.Context(), id, records.AppointmentUpdate{Date: &date})
	if err != nil {
		fail(c, err, appointmentResource)
		return
	}
	server.RespondOK(c, a)
}

func (h *Handler) deleteAppointment(c *gin.Context) {
	id, ok := h.accessAppointment(c, authz.ActionDelete)
	if !ok {
		return
	}
	if err := h.repo.DeleteAppointment(c.Request.Context(), id); err != nil {
		fail(c, err, appointmentResource)
		return
	}
	server.RespondNoContent(c)
}
