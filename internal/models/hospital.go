package models

import "time"

// Hospital is a registered blood bank or clinic issuing donation requests.
type Hospital struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	Location  string    `db:"location" json:"location"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NearbyHospital pairs a hospital id with its distance from a search origin.
type NearbyHospital struct {
	HospitalID     string  `db:"hospital_id" json:"hospitalId"`
	DistanceMeters float64 `db:"distance_meters" json:"distanceMeters"`
}
