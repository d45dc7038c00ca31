package records

import (
	"context"

	"gorm.io/gorm"

	"github.com/kbukum/clinic/database/query"
)

// PrescriptionUpdate holds the fields of a prescription that may change.
type PrescriptionUpdate struct {
	MedicationID *int64
	Date         *Date
}

// CreatePrescription stores p. Patient, doctor and medication must exist.
func (r *Repository) CreatePrescription(ctx context.Context, p *Prescription) error {
	p.ID = 0
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := requireExists(ctx, tx, &Patient{}, "patient", p.PatientID); err != nil {
			return err
		}
		if err := requireExists(ctx, tx, &Doctor{}, "doctor", p.DoctorID); err != nil {
			return err
		}
		if err := requireExists(ctx, tx, &Medication{}, "medication", p.MedicationID); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

// GetPrescription loads a prescription by id.
func (r *Repository) GetPrescription(ctx context.Context, id int64) (*Prescription, error) {
	var m Prescription
	if err := r.db.WithContext(ctx).Take(&m, id).Error; err != nil {
		return nil, mutationError(err, "prescription", id)
	}
	return &m, nil
}

// PrescriptionQuery is what the prescription lists may filter and sort on.
var PrescriptionQuery = query.Config{
	AllowedSortFields: []string{"id", "date"},
	AllowedFilters:    []string{"date", "medication_id"},
	FieldAliases:      map[string]string{"date": "prescription_date"},
	DefaultSort:       "id",
}

// ListPrescriptionsByPatient returns a page of the patient's prescriptions.
func (r *Repository) ListPrescriptionsByPatient(ctx context.Context, patientID int64, p query.Params) (*query.Result[Prescription], error) {
	return listOwned[Prescription](r.db.WithContext(ctx), &Prescription{}, "patient_id", patientID, p, PrescriptionQuery)
}

// ListPrescriptionsByDoctor returns a page of the doctor's prescriptions.
func (r *Repository) ListPrescriptionsByDoctor(ctx context.Context, doctorID int64, p query.Params) (*query.Result[Prescription], error) {
	return listOwned[Prescription](r.db.WithContext(ctx), &Prescription{}, "doctor_id", doctorID, p, PrescriptionQuery)
}

// UpdatePrescription applies u to prescription id. A new medication must
// exist.
func (r *Repository) UpdatePrescription(ctx context.Context, id int64, u PrescriptionUpdate) (*Prescription, error) {
	var m Prescription
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Take(&m, id).Error; err != nil {
			return err
		}
		if u.MedicationID != nil {
			if err := requireExists(ctx, tx, &Medication{}, "medication", *u.MedicationID); err != nil {
				return err
			}
			m.MedicationID = *u.MedicationID
		}
		if u.Date != nil {
			m.Date = *u.Date
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, mutationError(err, "prescription", id)
	}
	return &m, nil
}

// DeletePrescription removes prescription id.
func (r *Repository) DeletePrescription(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db.WithContext(ctx), &Prescription{}, "prescription", id)
}
