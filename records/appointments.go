package records

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/clinic/database/query"
)

// AppointmentUpdate holds the fields of an appointment that may change.
// The owning patient and doctor are fixed at creation.
type AppointmentUpdate struct {
	Date *Date
}

// CreateAppointment stores a. Patient and doctor must exist.
func (r *Repository) CreateAppointment(ctx context.Context, a *Appointment) error {
	a.ID = 0
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := requireExists(ctx, tx, &Patient{}, "patient", a.PatientID); err != nil {
			return err
		}
		if err := requireExists(ctx, tx, &Doctor{}, "doctor", a.DoctorID); err != nil {
			return err
		}
		return tx.Create(a).Error
	})
}

// GetAppointment loads an appointment by id.
func (r *Repository) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	var m Appointment
	if err := r.db.WithContext(ctx).Take(&m, id).Error; err != nil {
		return nil, mutationError(err, "appointment", id)
	}
	return &m, nil
}

// AppointmentQuery is what the appointment lists may filter and sort on.
var AppointmentQuery = query.Config{
	AllowedSortFields: []string{"id", "date"},
	AllowedFilters:    []string{"date"},
	FieldAliases:      map[string]string{"date": "appointment_date"},
	DefaultSort:       "id",
}

// ListAppointmentsByPatient returns a page of the patient's appointments.
func (r *Repository) ListAppointmentsByPatient(ctx context.Context, patientID int64, p query.Params) (*query.Result[Appointment], error) {
	return listOwned[Appointment](r.db.WithContext(ctx), &Appointment{}, "patient_id", patientID, p, AppointmentQuery)
}

// ListAppointmentsByDoctor returns a page of the doctor's appointments.
func (r *Repository) ListAppointmentsByDoctor(ctx context.Context, doctorID int64, p query.Params) (*query.Result[Appointment], error) {
	return listOwned[Appointment](r.db.WithContext(ctx), &Appointment{}, "doctor_id", doctorID, p, AppointmentQuery)
}

// UpdateAppointment applies u to appointment id.
func (r *Repository) UpdateAppointment(ctx context.Context, id int64, u AppointmentUpdate) (*Appointment, error) {
	var m Appointment
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Take(&m, id).Error; err != nil {
			return err
		}
		if u.Date != nil {
			m.Date = *u.Date
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, mutationError(err, "appointment", id)
	}
	return &m, nil
}

// DeleteAppointment removes appointment id.
func (r *Repository) DeleteAppointment(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db.WithContext(ctx), &Appointment{}, "appointment", id)
}

// listOwned pages the rows of model whose owner column equals id.
func listOwned[T any](db *gorm.DB, model interface{}, column string, id int64, p query.Params, cfg query.Config) (*query.Result[T], error) {
	return listPage[T](db.Model(model).Where(column+" = ?", id), p, cfg, "by "+column)
}

func listPage[T any](db *gorm.DB, p query.Params, cfg query.Config, what string) (*query.Result[T], error) {
	res, err := query.ApplyToGorm[T](db, p, cfg)
	if err != nil {
		return nil, fmt.Errorf("records: list %s: %w", what, err)
	}
	return res, nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, what string, id int64) error {
	res := db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return fmt.Errorf("records: delete %s %d: %w", what, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(what, id)
	}
	return nil
}

func requireExists(ctx context.Context, tx *gorm.DB, model interface{}, what string, id int64) error {
	ok, err := exists(ctx, tx, model, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(what, id)
	}
	return nil
}
