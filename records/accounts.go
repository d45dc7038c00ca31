package records

import (
	"context"

	"gorm.io/gorm"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/database"
	"github.com/kbukum/clinic/database/query"
	"github.com/kbukum/clinic/logger"
)

// PatientUpdate holds the fields to change. Nil fields are left alone.
type PatientUpdate struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *Date
	Gender      *string
	Email       *string
	Password    *string
	Phone       *string
}

// DoctorUpdate holds the fields to change. Nil fields are left alone.
type DoctorUpdate struct {
	FirstName *string
	LastName  *string
	Specialty *string
	Email     *string
	Password  *string
	Phone     *string
}

// RegisterPatient stores p with a hash of plain. The email must not be
// registered to any patient or doctor.
func (r *Repository) RegisterPatient(ctx context.Context, p *Patient, plain string) error {
	hash, err := r.hasher.Hash(plain)
	if err != nil {
		return err
	}
	p.ID = 0
	p.Email = NormalizeEmail(p.Email)
	p.PasswordHash = hash

	err = r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := r.ensureEmailFree(ctx, tx, p.Email, auth.Ref{}); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
	if err != nil {
		return registerError(err)
	}
	r.log.WithContext(ctx).Info("patient registered", logger.Fields(logger.FieldPrincipal, p.Principal().Ref().String()))
	return nil
}

// RegisterDoctor stores d with a hash of plain. The email must not be
// registered to any patient or doctor.
func (r *Repository) RegisterDoctor(ctx context.Context, d *Doctor, plain string) error {
	hash, err := r.hasher.Hash(plain)
	if err != nil {
		return err
	}
	d.ID = 0
	d.Email = NormalizeEmail(d.Email)
	d.PasswordHash = hash

	err = r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := r.ensureEmailFree(ctx, tx, d.Email, auth.Ref{}); err != nil {
			return err
		}
		return tx.Create(d).Error
	})
	if err != nil {
		return registerError(err)
	}
	r.log.WithContext(ctx).Info("doctor registered", logger.Fields(logger.FieldPrincipal, d.Principal().Ref().String()))
	return nil
}

// UpdatePatient applies u to patient id. A new password is re-hashed.
func (r *Repository) UpdatePatient(ctx context.Context, id int64, u PatientUpdate) (*Patient, error) {
	hash, err := r.hashOptional(u.Password)
	if err != nil {
		return nil, err
	}

	var m Patient
	err = r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Take(&m, id).Error; err != nil {
			return err
		}
		if u.Email != nil {
			email := NormalizeEmail(*u.Email)
			if err := r.ensureEmailFree(ctx, tx, email, m.Principal().Ref()); err != nil {
				return err
			}
			m.Email = email
		}
		setIf(&m.FirstName, u.FirstName)
		setIf(&m.LastName, u.LastName)
		setIf(&m.Gender, u.Gender)
		setIf(&m.Phone, u.Phone)
		if u.DateOfBirth != nil {
			m.DateOfBirth = *u.DateOfBirth
		}
		if hash != "" {
			m.PasswordHash = hash
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, mutationError(err, "patient", id)
	}
	return &m, nil
}

// UpdateDoctor applies u to doctor id. A new password is re-hashed.
func (r *Repository) UpdateDoctor(ctx context.Context, id int64, u DoctorUpdate) (*Doctor, error) {
	hash, err := r.hashOptional(u.Password)
	if err != nil {
		return nil, err
	}

	var m Doctor
	err = r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Take(&m, id).Error; err != nil {
			return err
		}
		if u.Email != nil {
			email := NormalizeEmail(*u.Email)
			if err := r.ensureEmailFree(ctx, tx, email, m.Principal().Ref()); err != nil {
				return err
			}
			m.Email = email
		}
		setIf(&m.FirstName, u.FirstName)
		setIf(&m.LastName, u.LastName)
		setIf(&m.Specialty, u.Specialty)
		setIf(&m.Phone, u.Phone)
		if hash != "" {
			m.PasswordHash = hash
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, mutationError(err, "doctor", id)
	}
	return &m, nil
}

// DeletePatient removes the patient with their appointments and
// prescriptions. Their sessions stay in the store and fail at resolve time.
func (r *Repository) DeletePatient(ctx context.Context, id int64) error {
	return r.deleteAccount(ctx, &Patient{}, "patient_id", "patient", id)
}

// DeleteDoctor removes the doctor with their appointments and
// prescriptions.
func (r *Repository) DeleteDoctor(ctx context.Context, id int64) error {
	return r.deleteAccount(ctx, &Doctor{}, "doctor_id", "doctor", id)
}

func (r *Repository) deleteAccount(ctx context.Context, model interface{}, column, what string, id int64) error {
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where(column+" = ?", id).Delete(&Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where(column+" = ?", id).Delete(&Prescription{}).Error; err != nil {
			return err
		}
		res := tx.Delete(model, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return mutationError(err, what, id)
	}
	r.log.WithContext(ctx).Info(what+" deleted", logger.Fields("id", id))
	return nil
}

// GetPatient loads a patient by id.
func (r *Repository) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	var m Patient
	if err := r.db.WithContext(ctx).Take(&m, id).Error; err != nil {
		return nil, mutationError(err, "patient", id)
	}
	return &m, nil
}

// GetDoctor loads a doctor by id.
func (r *Repository) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	var m Doctor
	if err := r.db.WithContext(ctx).Take(&m, id).Error; err != nil {
		return nil, mutationError(err, "doctor", id)
	}
	return &m, nil
}

// DoctorQuery is what GET /doctors may search, filter and sort on.
var DoctorQuery = query.Config{
	SearchFields:      []string{"first_name", "last_name", "specialty"},
	AllowedSortFields: []string{"id", "last_name", "specialty"},
	AllowedFilters:    []string{"specialty"},
	DefaultSort:       "id",
}

// ListDoctors returns a page of doctors.
func (r *Repository) ListDoctors(ctx context.Context, p query.Params) (*query.Result[Doctor], error) {
	return listPage[Doctor](r.db.WithContext(ctx).Model(&Doctor{}), p, DoctorQuery, "doctors")
}

// ensureEmailFree fails with ErrEmailTaken when email belongs to an account
// other than self.
func (r *Repository) ensureEmailFree(ctx context.Context, tx *gorm.DB, email string, self auth.Ref) error {
	p, found, err := r.findByEmail(ctx, tx, email)
	if err != nil {
		return err
	}
	if found && p.Ref() != self {
		return ErrEmailTaken
	}
	return nil
}

func (r *Repository) hashOptional(plain *string) (string, error) {
	if plain == nil {
		return "", nil
	}
	return r.hasher.Hash(*plain)
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// registerError maps a unique index violation, which can only come from a
// concurrent registration, to ErrEmailTaken.
func registerError(err error) error {
	if database.IsDuplicateError(err) {
		return ErrEmailTaken
	}
	return err
}

func mutationError(err error, what string, id int64) error {
	switch {
	case database.IsNotFoundError(err):
		return notFound(what, id)
	case database.IsDuplicateError(err):
		return ErrEmailTaken
	default:
		return err
	}
}
