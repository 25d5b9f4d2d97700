package dto

// CreateRequestPayload is the inbound shape for opening a donation request.
type CreateRequestPayload struct {
	HospitalID      string `json:"hospitalId" validate:"required"`
	PatientName     string `json:"patientName"`
	BloodGroup      string `json:"bloodGroup" validate:"required"`
	BloodUnitsCount int    `json:"bloodUnitsCount" validate:"required,gt=0"`
	Priority        string `json:"priority" validate:"required"`
	RequiredDate    string `json:"requiredDate"`
	Location        string `json:"location"`
	Status          string `json:"status"`
}

// UpdateRequestPatch carries the mutable request fields. Nil means "leave
// unchanged"; the service merges the patch onto a freshly loaded snapshot.
type UpdateRequestPatch struct {
	PatientName     *string `json:"patientName"`
	BloodGroup      *string `json:"bloodGroup"`
	BloodUnitsCount *int    `json:"bloodUnitsCount"`
	Priority        *string `json:"priority"`
	RequiredDate    *string `json:"requiredDate"`
	Location        *string `json:"location"`
	Status          *string `json:"status"`
	FulfilledBy     *string `json:"fulfilledBy"`
	ClosedReason    *string `json:"closedReason"`
}

// VolunteerPayload is a donor's offer against a specific request.
type VolunteerPayload struct {
	DonorID              string `json:"donorId"`
	DonorName            string `json:"donorName" validate:"required"`
	Contact              string `json:"contact" validate:"required"`
	ExpectedDonationTime string `json:"expectedDonationTime"`
	Message              string `json:"message"`
}
