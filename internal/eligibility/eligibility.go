// Package eligibility computes whether a donor may currently donate based on
// the cooldown elapsed since their last successful donation.
package eligibility

import (
	"time"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

// Named cooldown presets. The two windows are intentionally distinct: history
// views and the "eligible" notification audience use the short window, the
// public donor listing uses the long one. Callers pick explicitly.
const (
	HistoryCooldownDays = 30
	DonorCooldownDays   = 180
)

// Status is the computed eligibility state.
type Status string

const (
	StatusEligible   Status = "eligible"
	StatusIneligible Status = "ineligible"
)

// Result is derived fresh on every query; it is never persisted.
type Result struct {
	Status           Status     `json:"status"`
	LastDonationDate *time.Time `json:"lastDonationDate,omitempty"`
	LastStatus       string     `json:"lastStatus,omitempty"`
}

// Eligibility day math runs against a fixed civil timezone rather than UTC or
// server-local time, so results do not flip around midnight across deployment
// regions.
var calendarZone = time.FixedZone("IST", 5*3600+1800)

// Compute derives a donor's eligibility from their donation history at the
// given reference time. Only records with an exact "Success" status and a
// non-null donation date count. A donor with no such record is eligible by
// default. The boundary is inclusive: exactly cooldownDays since the last
// success is eligible.
//
// Pure function; safe for concurrent and repeated calls.
func Compute(records []models.DonationHistoryRecord, asOf time.Time, cooldownDays int) Result {
	var last *models.DonationHistoryRecord
	for i := range records {
		rec := &records[i]
		if rec.Status != models.DonationStatusSuccess || rec.DonationDate == nil {
			continue
		}
		// Ties resolve to the later record in input order, keeping the
		// selection deterministic for identical inputs.
		if last == nil || !rec.DonationDate.Before(*last.DonationDate) {
			last = rec
		}
	}

	if last == nil {
		return Result{Status: StatusEligible}
	}

	result := Result{
		LastDonationDate: last.DonationDate,
		LastStatus:       last.Status,
	}
	if daysBetween(*last.DonationDate, asOf) >= cooldownDays {
		result.Status = StatusEligible
	} else {
		result.Status = StatusIneligible
	}
	return result
}

// daysBetween counts whole civil days between two instants after projecting
// both onto the pinned calendar zone.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.In(calendarZone).Date()
	ty, tm, td := to.In(calendarZone).Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}
