package notify

import (
	"context"

	"github.com/kbukum/clinic/records"
)

// Event types.
const (
	TypeAppointmentCreated  = "appointment.created"
	TypePrescriptionCreated = "prescription.created"
)

// Source is stamped on every event envelope.
const Source = "clinic-api"

// Notifier receives domain events. Implementations never fail the caller.
type Notifier interface {
	AppointmentCreated(ctx context.Context, a records.Appointment)
	PrescriptionCreated(ctx context.Context, p records.Prescription)
}

// AppointmentCreated is the payload of an appointment.created event.
type AppointmentCreated struct {
	AppointmentID   int64        `json:"appointment_id"`
	PatientID       int64        `json:"patient_id"`
	DoctorID        int64        `json:"doctor_id"`
	AppointmentDate records.Date `json:"appointment_date"`
}

// PrescriptionCreated is the payload of a prescription.created event.
type PrescriptionCreated struct {
	PrescriptionID   int64        `json:"prescription_id"`
	PatientID        int64        `json:"patient_id"`
	DoctorID         int64        `json:"doctor_id"`
	MedicationID     int64        `json:"medication_id"`
	PrescriptionDate records.Date `json:"prescription_date"`
}

func appointmentPayload(a records.Appointment) AppointmentCreated {
	return AppointmentCreated{
		AppointmentID:   a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		AppointmentDate: a.Date,
	}
}

func prescriptionPayload(p records.Prescription) PrescriptionCreated {
	return PrescriptionCreated{
		PrescriptionID:   p.ID,
		PatientID:        p.PatientID,
		DoctorID:         p.DoctorID,
		MedicationID:     p.MedicationID,
		PrescriptionDate: p.Date,
	}
}
