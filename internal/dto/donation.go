package dto

// CreateDonationPayload records a donation attempt or completion.
type CreateDonationPayload struct {
	DonorID      string `json:"donorId" validate:"required"`
	HospitalID   string `json:"hospitalId"`
	RequestID    string `json:"requestId"`
	ReportID     string `json:"reportId"`
	DonationDate string `json:"donationDate" validate:"required"`
	DonatedUnits *int   `json:"donatedUnits"`
	DonationType string `json:"donationType"`
	Status       string `json:"status"`
	Remarks      string `json:"remarks"`
}

// UpdateDonationPatch carries admin corrections to a history record.
type UpdateDonationPatch struct {
	HospitalID   *string `json:"hospitalId"`
	RequestID    *string `json:"requestId"`
	ReportID     *string `json:"reportId"`
	DonationDate *string `json:"donationDate"`
	DonatedUnits *int    `json:"donatedUnits"`
	DonationType *string `json:"donationType"`
	Status       *string `json:"status"`
	Remarks      *string `json:"remarks"`
}
