package api

import (
	"github.com/kbukum/clinic/records"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPatientRequest struct {
	FirstName   string `json:"first_name" validate:"required,notblank,max=100"`
	LastName    string `json:"last_name" validate:"required,notblank,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"required,date"`
	Gender      string `json:"gender" validate:"required,oneof=M F O"`
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Phone       string `json:"phone" validate:"omitempty,max=15"`
}

func (r registerPatientRequest) model() *records.Patient {
	return &records.Patient{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: parseDate(r.DateOfBirth),
		Gender:      r.Gender,
		Email:       r.Email,
		Phone:       r.Phone,
	}
}

type registerDoctorRequest struct {
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,max=100"`
	Specialty string `json:"specialty" validate:"required,notblank,max=100"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Phone     string `json:"phone" validate:"omitempty,max=15"`
}

func (r registerDoctorRequest) model() *records.Doctor {
	return &records.Doctor{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Specialty: r.Specialty,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

type updatePatientRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,notblank,max=100"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,date"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=M F O"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=72"`
	Phone       *string `json:"phone" validate:"omitempty,max=15"`
}

func (r updatePatientRequest) update() records.PatientUpdate {
	u := records.PatientUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Gender:    r.Gender,
		Email:     r.Email,
		Password:  r.Password,
		Phone:     r.Phone,
	}
	if r.DateOfBirth != nil {
		dob := parseDate(*r.DateOfBirth)
		u.DateOfBirth = &dob
	}
	return u
}

type updateDoctorRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,notblank,max=100"`
	Specialty *string `json:"specialty" validate:"omitempty,notblank,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=100"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	Phone     *string `json:"phone" validate:"omitempty,max=15"`
}

func (r updateDoctorRequest) update() records.DoctorUpdate {
	return records.DoctorUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Specialty: r.Specialty,
		Email:     r.Email,
		Password:  r.Password,
		Phone:     r.Phone,
	}
}

type appointmentRequest struct {
	PatientID int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID  int64  `json:"doctor_id" validate:"required,gt=0"`
	Date      string `json:"appointment_date" validate:"required,date"`
}

type appointmentUpdateRequest struct {
	Date string `json:"appointment_date" validate:"required,date"`
}

type prescriptionRequest struct {
	PatientID    int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID     int64  `json:"doctor_id" validate:"required,gt=0"`
	MedicationID int64  `json:"medication_id" validate:"required,gt=0"`
	Date         string `json:"prescription_date" validate:"required,date"`
}

type prescriptionUpdateRequest struct {
	MedicationID *int64  `json:"medication_id" validate:"omitempty,gt=0"`
	Date         *string `json:"prescription_date" validate:"omitempty,date"`
}

type medicationRequest struct {
	Name   string `json:"name" validate:"required,notblank,max=100"`
	Dosage string `json:"dosage" validate:"omitempty,max=100"`
}

// parseDate parses a date already checked by the "date" tag.
func parseDate(s string) records.Date {
	d, _ := records.ParseDate(s)
	return d
}
