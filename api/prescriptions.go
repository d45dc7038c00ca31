package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/authz"
	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/server"
)

const prescriptionResource = "prescription"

func (h *Handler) listPatientPrescriptions(c *gin.Context) {
	patient, err := h.guard.RequirePatient(principal(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	out, err := h.repo.ListPrescriptionsByPatient(c.Request.Context(), patient.ID(), listParams(c, records.PrescriptionQuery))
	if err != nil {
		fail(c, err, prescriptionResource)
		return
	}
	server.RespondPage(c, out)
}

func (h *Handler) listDoctorPrescriptions(c *gin.Context) {
	doctor, err := h.guard.RequireDoctor(principal(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	out, err := h.repo.ListPrescriptionsByDoctor(c.Request.Context(), doctor.ID(), listParams(c, records.PrescriptionQuery))
	if err != nil {
		fail(c, err, prescriptionResource)
		return
	}
	server.RespondPage(c, out)
}

func (h *Handler) accessPrescription(c *gin.Context, action authz.Action) (int64, bool) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err, "")
		return 0, false
	}
	if _, err := h.guard.Access(c.Request.Context(), principal(c), authz.ResourcePrescription, id, action); err != nil {
		failResource(c, err, prescriptionResource)
		return 0, false
	}
	return id, true
}

func (h *Handler) getPrescription(c *gin.Context) {
	id, ok := h.accessPrescription(c, authz.ActionRead)
	if !ok {
		return
	}
	p, err := h.repo.GetPrescription(c.Request.Context(), id)
	if err != nil {
		fail(c, err, prescriptionResource)
		return
	}
	server.RespondOK(c, p)
}

func (h *Handler) createPrescription(c *gin.Context) {
	doctor, err := h.guard.RequireDoctor(principal(c))
	if err != nil {
		fail(c, err, "")
		return
	}
	var req prescriptionRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "")
		return
	}
	if !h.opts.AllowUnownedCreate {
		if err := h.guard.AuthorizeSelf(doctor.Principal(), auth.RoleDoctor, req.DoctorID); err != nil {
			fail(c, err, "")
			return
		}
	}

	ctx := c.Request.Context()
	p := records.Prescription{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		MedicationID: req.MedicationID,
		Date:         parseDate(req.Date),
	}
	if err := h.repo.CreatePrescription(ctx, &p); err != nil {
		fail(c, err, "patient, doctor or medication")
		return
	}
	h.log.WithContext(ctx).Info("prescription created", logger.Fields("id", p.ID, logger.FieldPrincipal, doctor.Principal().Ref().String()))
	h.notifier.PrescriptionCreated(ctx, p)
	server.RespondCreated(c, p)
}

func (h *Handler) updatePrescription(c *gin.Context) {
	id, ok := h.accessPrescription(c, authz.ActionUpdate)
	if !ok {
		return
	}
	var req prescriptionUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "")
		return
	}
	if req.MedicationID == nil && req.Date == nil {
		fail(c, apperrors.InvalidInput("", "nothing to update"), "")
		return
	}
	u := records.PrescriptionUpdate{MedicationID: req.MedicationID}
	if req.Date != nil {
		d := parseDate(*req.Date)
		u.Date = &d
	}
	p, err := h.repo.UpdatePrescription(c.Request.Context(), id, u)
	if err != nil {
		fail(c, err, "prescription or medication")
		return
	}
	server.RespondOK(c, p)
}

func (h *Handler) deletePrescription(c *gin.Context) {
	id, ok := h.accessPrescription(c, authz.ActionDelete)
	if !ok {
		return
	}
	if err := h.repo.DeletePrescription(c.Request.Context(), id); err != nil {
		fail(c, err, prescriptionResource)
		return
	}
	server.RespondNoContent(c)
}
