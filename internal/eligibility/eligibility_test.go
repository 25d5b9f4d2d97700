package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

func dateptr(t time.Time) *time.Time {
	return &t
}

func successRecord(id string, donated time.Time) models.DonationHistoryRecord {
	return models.DonationHistoryRecord{
		ID:           id,
		DonorID:      "donor-1",
		DonationDate: dateptr(donated),
		Status:       models.DonationStatusSuccess,
	}
}

func TestComputeNoSuccessHistoryIsEligible(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	result := Compute(nil, asOf, HistoryCooldownDays)
	require.Equal(t, StatusEligible, result.Status)
	assert.Nil(t, result.LastDonationDate)

	records := []models.DonationHistoryRecord{
		{ID: "d1", Status: models.DonationStatusFailed, DonationDate: dateptr(asOf.AddDate(0, 0, -1))},
		{ID: "d2", Status: models.DonationStatusPending, DonationDate: dateptr(asOf.AddDate(0, 0, -2))},
		{ID: "d3", Status: models.DonationStatusSuccess, DonationDate: nil},
	}
	result = Compute(records, asOf, HistoryCooldownDays)
	assert.Equal(t, StatusEligible, result.Status)
}

func TestComputeCooldownBoundaryInclusive(t *testing.T) {
	donated := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	records := []models.DonationHistoryRecord{successRecord("d1", donated)}

	onBoundary := Compute(records, donated.AddDate(0, 0, 30), HistoryCooldownDays)
	assert.Equal(t, StatusEligible, onBoundary.Status)

	dayBefore := Compute(records, donated.AddDate(0, 0, 29), HistoryCooldownDays)
	assert.Equal(t, StatusIneligible, dayBefore.Status)
	require.NotNil(t, dayBefore.LastDonationDate)
	assert.True(t, dayBefore.LastDonationDate.Equal(donated))
	assert.Equal(t, models.DonationStatusSuccess, dayBefore.LastStatus)
}

func TestComputeStatusMatchIsExact(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []models.DonationHistoryRecord{
		{ID: "d1", Status: "success", DonationDate: dateptr(asOf.AddDate(0, 0, -5))},
		{ID: "d2", Status: "SUCCESS", DonationDate: dateptr(asOf.AddDate(0, 0, -5))},
	}

	result := Compute(records, asOf, HistoryCooldownDays)
	assert.Equal(t, StatusEligible, result.Status)
	assert.Nil(t, result.LastDonationDate)
}

func TestComputePicksLatestSuccess(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := asOf.AddDate(0, 0, -200)
	newer := asOf.AddDate(0, 0, -10)
	records := []models.DonationHistoryRecord{
		successRecord("d1", newer),
		successRecord("d2", older),
	}

	result := Compute(records, asOf, HistoryCooldownDays)
	assert.Equal(t, StatusIneligible, result.Status)
	require.NotNil(t, result.LastDonationDate)
	assert.True(t, result.LastDonationDate.Equal(newer))
}

func TestComputeDeterministicOnRepeatedCalls(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tied := asOf.AddDate(0, 0, -15)
	records := []models.DonationHistoryRecord{
		successRecord("d1", tied),
		successRecord("d2", tied),
		successRecord("d3", asOf.AddDate(0, 0, -40)),
	}

	first := Compute(records, asOf, HistoryCooldownDays)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compute(records, asOf, HistoryCooldownDays))
	}
}

func TestComputeDonorListingPreset(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []models.DonationHistoryRecord{
		successRecord("d1", asOf.AddDate(0, 0, -90)),
	}

	// 90 days ago: past the 30-day window but inside the 180-day one.
	assert.Equal(t, StatusEligible, Compute(records, asOf, HistoryCooldownDays).Status)
	assert.Equal(t, StatusIneligible, Compute(records, asOf, DonorCooldownDays).Status)
}

func TestComputeCivilDayBoundaryPinnedToIST(t *testing.T) {
	// 20:00 UTC is already the next civil day in IST (+05:30). The day diff
	// must follow IST wall-clock dates, not UTC ones.
	donated := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	records := []models.DonationHistoryRecord{successRecord("d1", donated)}

	asOf := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
	result := Compute(records, asOf, HistoryCooldownDays)
	assert.Equal(t, StatusEligible, result.Status)

	asOf = time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	result = Compute(records, asOf, HistoryCooldownDays)
	assert.Equal(t, StatusIneligible, result.Status)
}
