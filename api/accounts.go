package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/server"
)

func (h *Handler) registerPatient(c *gin.Context) {
	var req registerPatientRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "patient")
		return
	}
	p := req.model()
	if err := h.repo.RegisterPatient(c.Request.Context(), p, req.Password); err != nil {
		fail(c, err, "patient")
		return
	}
	server.RespondCreated(c, p)
}

func (h *Handler) registerDoctor(c *gin.Context) {
	var req registerDoctorRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "doctor")
		return
	}
	d := req.model()
	if err := h.repo.RegisterDoctor(c.Request.Context(), d, req.Password); err != nil {
		fail(c, err, "doctor")
		return
	}
	server.RespondCreated(c, d)
}

// selfID parses :id and checks that it is the caller's own account of role.
// A mismatch is 403 rather than 404: account ids are not secret, the
// account simply is not the caller's.
func (h *Handler) selfID(c *gin.Context, role auth.Role) (int64, bool) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err, "")
		return 0, false
	}
	if err := h.guard.AuthorizeSelf(principal(c), role, id); err != nil {
		fail(c, err, "")
		return 0, false
	}
	return id, true
}

func (h *Handler) updatePatient(c *gin.Context) {
	id, ok := h.selfID(c, auth.RolePatient)
	if !ok {
		return
	}
	var req updatePatientRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "patient")
		return
	}
	p, err := h.repo.UpdatePatient(c.Request.Context(), id, req.update())
	if err != nil {
		fail(c, err, "patient")
		return
	}
	server.RespondOK(c, p)
}

func (h *Handler) deletePatient(c *gin.Context) {
	id, ok := h.selfID(c, auth.RolePatient)
	if !ok {
		return
	}
	if err := h.repo.DeletePatient(c.Request.Context(), id); err != nil {
		fail(c, err, "patient")
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) updateDoctor(c *gin.Context) {
	id, ok := h.selfID(c, auth.RoleDoctor)
	if !ok {
		return
	}
	var req updateDoctorRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "doctor")
		return
	}
	d, err := h.repo.UpdateDoctor(c.Request.Context(), id, req.update())
	if err != nil {
		fail(c, err, "doctor")
		return
	}
	server.RespondOK(c, d)
}

func (h *Handler) deleteDoctor(c *gin.Context) {
	id, ok := h.selfID(c, auth.RoleDoctor)
	if !ok {
		return
	}
	if err := h.repo.DeleteDoctor(c.Request.Context(), id); err != nil {
		fail(c, err, "doctor")
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) listDoctors(c *gin.Context) {
	doctors, err := h.repo.ListDoctors(c.Request.Context(), listParams(c, records.DoctorQuery))
	if err != nil {
		fail(c, err, "doctor")
		return
	}
	server.RespondPage(c, doctors)
}
