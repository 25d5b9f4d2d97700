package models

import "time"

// MedicalReport is a donor screening outcome attached to donation history.
type MedicalReport struct {
	ID            string    `db:"id" json:"id"`
	DonorID       string    `db:"donor_id" json:"donorId"`
	HospitalID    string    `db:"hospital_id" json:"hospitalId,omitempty"`
	Eligible      bool      `db:"eligible" json:"eligible"`
	Hemoglobin    float64   `db:"hemoglobin" json:"hemoglobin"`
	BloodPressure string    `db:"blood_pressure" json:"bloodPressure"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	ReportDate    time.Time `db:"report_date" json:"reportDate"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
