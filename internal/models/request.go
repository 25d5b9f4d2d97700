package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RequestStatus captures lifecycle states for donation requests. Stored
// canonicalized uppercase.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusApproved   RequestStatus = "APPROVED"
	RequestStatusRejected   RequestStatus = "REJECTED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusClosed     RequestStatus = "CLOSED"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
)

// ParseRequestStatus canonicalizes raw input to uppercase and reports whether
// it names a known state.
func ParseRequestStatus(raw string) (RequestStatus, bool) {
	status := RequestStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected,
		RequestStatusInProgress, RequestStatusClosed, RequestStatusCompleted:
		return status, true
	}
	return status, false
}

// Terminal reports whether no further transitions leave this state.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusRejected, RequestStatusClosed, RequestStatusCompleted:
		return true
	}
	return false
}

// Volunteer is a donor's offer to fulfil a specific request.
type Volunteer struct {
	DonorID              string     `json:"donorId"`
	DonorName            string     `json:"donorName"`
	Contact              string     `json:"contact"`
	ExpectedDonationTime *time.Time `json:"expectedDonationTime"`
	Message              string     `json:"message,omitempty"`
	VolunteeredAt        time.Time  `json:"volunteeredAt"`
}

// VolunteerList stores the ordered volunteer entries as a JSONB column.
type VolunteerList []Volunteer

// Value implements driver.Valuer.
func (v VolunteerList) Value() (driver.Value, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *VolunteerList) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	var data []byte
	switch raw := src.(type) {
	case []byte:
		data = raw
	case string:
		data = []byte(raw)
	default:
		return fmt.Errorf("unsupported volunteer list source %T", src)
	}
	if len(data) == 0 {
		*v = nil
		return nil
	}
	return json.Unmarshal(data, v)
}

// DonationRequest is a hospital-issued need for blood units. Hospital display
// fields are snapshotted at creation time so later hospital edits do not
// rewrite historical requests.
type DonationRequest struct {
	ID               string        `db:"id" json:"id"`
	HospitalID       string        `db:"hospital_id" json:"hospitalId"`
	HospitalName     string        `db:"hospital_name" json:"hospitalName"`
	HospitalAddress  string        `db:"hospital_address" json:"hospitalAddress"`
	HospitalPhone    string        `db:"hospital_phone" json:"hospitalPhone"`
	HospitalLocation string        `db:"hospital_location" json:"hospitalLocation"`
	PatientName      string        `db:"patient_name" json:"patientName"`
	BloodGroup       string        `db:"blood_group" json:"bloodGroup"`
	BloodUnitsCount  int           `db:"blood_units_count" json:"bloodUnitsCount"`
	Priority         string        `db:"priority" json:"priority"`
	RequestDate      time.Time     `db:"request_date" json:"requestDate"`
	RequiredDate     *time.Time    `db:"required_date" json:"requiredDate,omitempty"`
	Location         string        `db:"location" json:"location"`
	Status           RequestStatus `db:"status" json:"status"`
	Approved         bool          `db:"approved" json:"approved"`
	AvailableDonors  int           `db:"available_donors" json:"availableDonors"`
	Volunteers       VolunteerList `db:"volunteers" json:"volunteers"`
	FulfilledBy      *string       `db:"fulfilled_by" json:"fulfilledBy,omitempty"`
	FulfilledAt      *time.Time    `db:"fulfilled_at" json:"fulfilledAt,omitempty"`
	ClosedAt         *time.Time    `db:"closed_at" json:"closedAt,omitempty"`
	ClosedReason     *string       `db:"closed_reason" json:"closedReason,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updatedAt"`
}

// RequestFilter constrains donation request listings.
type RequestFilter struct {
	HospitalID string
	Status     RequestStatus
	BloodGroup string
	Priority   string
	Page       int
	Size       int
}
