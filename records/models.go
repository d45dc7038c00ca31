package records

import (
	"time"

	"github.com/kbukum/clinic/auth"
)

// Patient is a patient account.
type Patient struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	DateOfBirth  Date      `gorm:"type:date" json:"date_of_birth"`
	Gender       string    `gorm:"size:1" json:"gender"`
	Email        string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Phone        string    `gorm:"size:15" json:"phone"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Principal returns the patient as an authenticated identity.
func (p *Patient) Principal() auth.Principal {
	return auth.Principal{ID: p.ID, Role: auth.RolePatient, Email: p.Email, PasswordHash: p.PasswordHash}
}

// Doctor is a doctor account.
type Doctor struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Specialty    string    `gorm:"size:100" json:"specialty"`
	Email        string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Phone        string    `gorm:"size:15" json:"phone"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Principal returns the doctor as an authenticated identity.
func (d *Doctor) Principal() auth.Principal {
	return auth.Principal{ID: d.ID, Role: auth.RoleDoctor, Email: d.Email, PasswordHash: d.PasswordHash}
}

// Medication is an entry of the medication catalogue.
type Medication struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:100;not null" json:"name"`
	Dosage string `gorm:"size:100" json:"dosage"`
}

// Appointment links a patient and a doctor on a date.
type Appointment struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	PatientID int64 `gorm:"not null;index" json:"patient_id"`
	DoctorID  int64 `gorm:"not null;index" json:"doctor_id"`
	Date      Date  `gorm:"column:appointment_date;type:date" json:"appointment_date"`
}

// Prescription is a medication prescribed by a doctor to a patient.
type Prescription struct {
	ID           int64 `gorm:"primaryKey" json:"id"`
	PatientID    int64 `gorm:"not null;index" json:"patient_id"`
	DoctorID     int64 `gorm:"not null;index" json:"doctor_id"`
	MedicationID int64 `gorm:"not null;index" json:"medication_id"`
	Date         Date  `gorm:"column:prescription_date;type:date" json:"prescription_date"`
}

// Models lists every model for migration, parents first.
func Models() []interface{} {
	return []interface{}{&Patient{}, &Doctor{}, &Medication{}, &Appointment{}, &Prescription{}}
}
