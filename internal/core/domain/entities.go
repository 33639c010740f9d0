package domain

import (
	"time"
)

// RoleDonor is the only role the matching engine considers.
const RoleDonor = "donor"

// BloodTypes is the set of ABO/Rh types accepted at registration.
// Matching uses strict equality on these values.
var BloodTypes = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// Donor represents a registered user with the donor role.
// Location is nil when geocoding failed at registration; such donors are
// excluded from matching until their address resolves.
type Donor struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Password     string     `json:"-"`
	Role         string     `json:"role"`
	Address      string     `json:"address,omitempty"`
	BloodType    string     `json:"blood_type"`
	Location     *GeoPoint  `json:"location,omitempty"`
	LastDonation *time.Time `json:"last_donation,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Hospital represents a care facility that can raise blood alerts.
// Unlike donors, a hospital location is mandatory.
type Hospital struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  GeoPoint  `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertRequest is a transient per-call request for matching donors.
// RadiusKm is a pointer so an explicit zero (yielding an empty result)
// stays distinguishable from an omitted field (yielding the default).
type AlertRequest struct {
	HospitalID int64    `json:"hospital_id"`
	BloodType  string   `json:"blood_type"`
	RadiusKm   *float64 `json:"radius_km,omitempty"`
}

// DonorMatch pairs a donor with its computed distance and suitability score.
type DonorMatch struct {
	Donor      Donor   `json:"donor"`
	DistanceKm float64 `json:"distance_km"`
	Score      float64 `json:"score"`
}

// AlertResult is the ordered, truncated shortlist produced for one request.
// Invariants: every DistanceKm <= the requested radius, matches are sorted by
// score desc / distance asc / donor id asc, len(TopMatches) <= the configured
// cap, and TotalMatched counts matches before truncation.
type AlertResult struct {
	Hospital        Hospital     `json:"hospital"`
	BloodTypeNeeded string       `json:"blood_type_needed"`
	RadiusKm        float64      `json:"radius_km"`
	TotalMatched    int          `json:"total_matched"`
	TopMatches      []DonorMatch `json:"top_matches"`
}

// AlertEvent is published to the message broker when an alert resolves
// successfully, and drives the notification workflow.
type AlertEvent struct {
	AlertID      string       `json:"alert_id"`
	HospitalID   int64        `json:"hospital_id"`
	HospitalName string       `json:"hospital_name"`
	BloodType    string       `json:"blood_type"`
	RadiusKm     float64      `json:"radius_km"`
	TotalMatched int          `json:"total_matched"`
	Matches      []AlertMatch `json:"matches"`
	CreatedAt    time.Time    `json:"created_at"`
}

// AlertMatch is the contact-free projection of a match carried in events.
type AlertMatch struct {
	DonorID    int64   `json:"donor_id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
}
