package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/server"
)

func (h *Handler) listMedications(c *gin.Context) {
	out, err := h.repo.ListMedications(c.Request.Context(), listParams(c, records.MedicationQuery))
	if err != nil {
		fail(c, err, "medication")
		return
	}
	server.RespondPage(c, out)
}

func (h *Handler) createMedication(c *gin.Context) {
	var req medicationRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err, "")
		return
	}
	m := records.Medication{Name: req.Name, Dosage: req.Dosage}
	if err := h.repo.CreateMedication(c.Request.Context(), &m); err != nil {
		fail(c, err, "medication")
		return
	}
	server.RespondCreated(c, m)
}
