package models

import "time"

// Donation status values observed in history records. The status column is
// free text in practice; these are the canonical writers.
const (
	DonationStatusSuccess = "Success"
	DonationStatusFailed  = "Failed"
	DonationStatusPending = "Pending"
)

// DonationHistoryRecord is an immutable donation event. Foreign references are
// loosely typed strings that may be absent or non-canonical; joins against
// them must go through EntityRef validation first.
type DonationHistoryRecord struct {
	ID           string     `db:"id" json:"id"`
	DonorID      string     `db:"donor_id" json:"donorId"`
	HospitalID   string     `db:"hospital_id" json:"hospitalId,omitempty"`
	RequestID    string     `db:"request_id" json:"requestId,omitempty"`
	ReportID     string     `db:"report_id" json:"reportId,omitempty"`
	DonationDate *time.Time `db:"donation_date" json:"donationDate"`
	DonatedUnits *int       `db:"donated_units" json:"donatedUnits"`
	DonationType string     `db:"donation_type" json:"donationType"`
	Status       string     `db:"status" json:"status"`
	Remarks      string     `db:"remarks" json:"remarks,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// DonationFilter constrains history queries. Date bounds are inclusive on
// both ends when both are given.
type DonationFilter struct {
	DonorID      string
	HospitalID   string
	RequestID    string
	ReportID     string
	Status       string
	DonationType string
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	Size         int
}
