package notify

import (
	"context"

	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/records"
)

// LogNotifier writes events to the log. It is used when Kafka is disabled.
type LogNotifier struct {
	log *logger.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("notify")}
}

func (n *LogNotifier) AppointmentCreated(ctx context.Context, a records.Appointment) {
	n.log.WithContext(ctx).Info("event", logger.Fields(
		"type", TypeAppointmentCreated,
		"appointment_id", a.ID,
		"patient_id", a.PatientID,
		"doctor_id", a.DoctorID,
	))
}

func (n *LogNotifier) PrescriptionCreated(ctx context.Context, p records.Prescription) {
	n.log.WithContext(ctx).Info("event", logger.Fields(
		"type", TypePrescriptionCreated,
		"prescription_id", p.ID,
		"patient_id", p.PatientID,
		"doctor_id", p.DoctorID,
		"medication_id", p.MedicationID,
	))
}
