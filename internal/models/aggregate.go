package models

import "time"

// AggregateUser is the projected user slice of an aggregate row. Only the
// allowlisted fields below ever leave the join; raw documents do not.
type AggregateUser struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BloodGroup string `json:"bloodGroup"`
}

// AggregateHospital is the projected hospital slice of an aggregate row.
type AggregateHospital struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// AggregateRequest is the projected donation request slice.
type AggregateRequest struct {
	PatientName     string        `json:"patientName"`
	BloodGroup      string        `json:"bloodGroup"`
	BloodUnitsCount int           `json:"bloodUnitsCount"`
	Status          RequestStatus `json:"status"`
	RequestDate     time.Time     `json:"requestDate"`
}

// AggregateReport is the projected medical report slice.
type AggregateReport struct {
	Eligible   bool      `json:"eligible"`
	ReportDate time.Time `json:"reportDate"`
}

// AggregateView is a read-time joined projection of a donation history record
// with its related entities. Missing relations yield nil sub-objects; the row
// itself is never dropped.
type AggregateView struct {
	ID           string             `json:"id"`
	DonorID      string             `json:"donorId"`
	DonationDate *time.Time         `json:"donationDate"`
	DonatedUnits int                `json:"donatedUnits"`
	DonationType string             `json:"donationType"`
	Status       string             `json:"status"`
	Remarks      string             `json:"remarks,omitempty"`
	User         *AggregateUser     `json:"user"`
	Hospital     *AggregateHospital `json:"hospital"`
	Request      *AggregateRequest  `json:"request"`
	Report       *AggregateReport   `json:"report"`
}

// TypeUnits is one per-row byType summary entry.
type TypeUnits struct {
	DonationType string `json:"donationType"`
	Units        int    `json:"units"`
}

// StatusEntry is one per-row byStatus summary entry.
type StatusEntry struct {
	Status     string `json:"status"`
	DonationID string `json:"donationId"`
}

// AggregateSummary is computed over the same filtered record set as the rows.
type AggregateSummary struct {
	TotalDonations int           `json:"totalDonations"`
	TotalUnits     int           `json:"totalUnits"`
	ByType         []TypeUnits   `json:"byType"`
	ByStatus       []StatusEntry `json:"byStatus"`
}

// CompletedRequestStats accompanies geo request listings filtered to
// COMPLETED status.
type CompletedRequestStats struct {
	TotalDonations  int `json:"totalDonations"`
	TotalUnits      int `json:"totalUnits"`
	UniqueHospitals int `json:"uniqueHospitals"`
	EligibleReports int `json:"eligibleReports"`
}
