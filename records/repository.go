package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/password"
	"github.com/kbukum/clinic/authz"
	"github.com/kbukum/clinic/database"
	"github.com/kbukum/clinic/logger"
)

var (
	_ auth.Authenticator   = (*Repository)(nil)
	_ auth.PrincipalLoader = (*Repository)(nil)
	_ authz.OwnerLoader    = (*Repository)(nil)
)

// Repository is the GORM-backed store for all clinic records.
type Repository struct {
	db     *database.DB
	hasher password.Hasher
	log    *logger.Logger

	// dummyHash is verified against when an email is unknown so that a
	// miss costs as much as a wrong password.
	dummyHash string
}

// NewRepository creates a repository. hasher hashes new passwords and
// verifies logins.
func NewRepository(db *database.DB, hasher password.Hasher, log *logger.Logger) (*Repository, error) {
	if log == nil {
		log = logger.Nop()
	}
	dummy, err := hasher.Hash("clinic-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("records: prepare dummy hash: %w", err)
	}
	return &Repository{db: db, hasher: hasher, log: log.WithComponent("records"), dummyHash: dummy}, nil
}

// NormalizeEmail is the stored and compared form of an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate looks the email up among patients, then doctors, and checks
// the password. Unknown email and wrong password are both (zero, false, nil).
func (r *Repository) Authenticate(ctx context.Context, email, plain string) (auth.Principal, bool, error) {
	p, found, err := r.findByEmail(ctx, r.db.WithContext(ctx), NormalizeEmail(email))
	if err != nil {
		return auth.Principal{}, false, err
	}
	if !found {
		r.hasher.Verify(plain, r.dummyHash)
		return auth.Principal{}, false, nil
	}
	if !r.hasher.Verify(plain, p.PasswordHash) {
		return auth.Principal{}, false, nil
	}
	return p, true, nil
}

func (r *Repository) findByEmail(ctx context.Context, tx *gorm.DB, email string) (auth.Principal, bool, error) {
	if email == "" {
		return auth.Principal{}, false, nil
	}
	var patient Patient
	err := tx.WithContext(ctx).Where("email = ?", email).Take(&patient).Error
	if err == nil {
		return patient.Principal(), true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Principal{}, false, fmt.Errorf("records: find patient by email: %w", err)
	}

	var doctor Doctor
	err = tx.WithContext(ctx).Where("email = ?", email).Take(&doctor).Error
	if err == nil {
		return doctor.Principal(), true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Principal{}, false, fmt.Errorf("records: find doctor by email: %w", err)
	}
	return auth.Principal{}, false, nil
}

// LoadPrincipal loads the live account behind ref.
func (r *Repository) LoadPrincipal(ctx context.Context, ref auth.Ref) (auth.Principal, bool, error) {
	db := r.db.WithContext(ctx)
	var err error
	var p auth.Principal
	switch ref.Role {
	case auth.RolePatient:
		var m Patient
		if err = db.Take(&m, ref.ID).Error; err == nil {
			p = m.Principal()
		}
	case auth.RoleDoctor:
		var m Doctor
		if err = db.Take(&m, ref.ID).Error; err == nil {
			p = m.Principal()
		}
	default:
		return auth.Principal{}, false, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Principal{}, false, nil
	}
	if err != nil {
		return auth.Principal{}, false, fmt.Errorf("records: load %s: %w", ref, err)
	}
	return p, true, nil
}

// LoadOwners returns the owning patient and doctor of an appointment or
// prescription.
func (r *Repository) LoadOwners(ctx context.Context, rt authz.ResourceType, id int64) (authz.Owners, bool, error) {
	var model interface{}
	switch rt {
	case authz.ResourceAppointment:
		model = &Appointment{}
	case authz.ResourcePrescription:
		model = &Prescription{}
	default:
		return authz.Owners{}, false, nil
	}

	var owners struct {
		PatientID int64
		DoctorID  int64
	}
	err := r.db.WithContext(ctx).Model(model).
		Select("patient_id", "doctor_id").
		Where("id = ?", id).
		Take(&owners).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authz.Owners{}, false, nil
	}
	if err != nil {
		return authz.Owners{}, false, fmt.Errorf("records: load %s %d owners: %w", rt, id, err)
	}
	return authz.Owners{PatientID: owners.PatientID, DoctorID: owners.DoctorID}, true, nil
}

// exists reports whether a row of model with id exists.
func exists(ctx context.Context, tx *gorm.DB, model interface{}, id int64) (bool, error) {
	var n int64
	if err := tx.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}
