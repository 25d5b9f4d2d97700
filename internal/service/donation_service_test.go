package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
)

type donationStoreStub struct {
	byID    map[string]*models.DonationHistoryRecord
	created []*models.DonationHistoryRecord
}

func newDonationStoreStub() *donationStoreStub {
	return &donationStoreStub{byID: map[string]*models.DonationHistoryRecord{}}
}

func (s *donationStoreStub) Create(_ context.Context, record *models.DonationHistoryRecord) error {
	if record.ID == "" {
		record.ID = "don-1"
	}
	clone := *record
	s.byID[record.ID] = &clone
	s.created = append(s.created, record)
	return nil
}

func (s *donationStoreStub) FindByID(_ context.Context, id string) (*models.DonationHistoryRecord, error) {
	record, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *record
	return &clone, nil
}

func (s *donationStoreStub) List(_ context.Context, _ models.DonationFilter) ([]models.DonationHistoryRecord, int, error) {
	var out []models.DonationHistoryRecord
	for _, record := range s.byID {
		out = append(out, *record)
	}
	return out, len(out), nil
}

func (s *donationStoreStub) ListByDonor(_ context.Context, donorID string) ([]models.DonationHistoryRecord, error) {
	var out []models.DonationHistoryRecord
	for _, record := range s.byID {
		if record.DonorID == donorID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (s *donationStoreStub) Update(_ context.Context, record *models.DonationHistoryRecord) error {
	clone := *record
	s.byID[record.ID] = &clone
	return nil
}

func (s *donationStoreStub) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	return nil
}

func TestDonationServiceCreateRequiresParseableDate(t *testing.T) {
	store := newDonationStoreStub()
	svc := NewDonationService(store, nil, nil, nil, 30)

	_, err := svc.Create(context.Background(), dto.CreateDonationPayload{
		DonorID:      "donor-1",
		DonationDate: "next tuesday",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.created)
}

func TestDonationServiceDeleteMissingRecord(t *testing.T) {
	store := newDonationStoreStub()
	svc := NewDonationService(store, nil, nil, nil, 30)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDonationServiceMutationsInvalidateAggregates(t *testing.T) {
	store := newDonationStoreStub()
	recorder := &cacheRecorderStub{}
	svc := NewDonationService(store, NewCacheService(recorder, nil, time.Minute, nil, true), nil, nil, 30)

	record, err := svc.Create(context.Background(), dto.CreateDonationPayload{
		DonorID:      "donor-1",
		DonationDate: "2024-02-01",
	})
	require.NoError(t, err)

	remarks := "verified"
	_, err = svc.Update(context.Background(), record.ID, dto.UpdateDonationPatch{Remarks: &remarks})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), record.ID))

	assert.Equal(t, []string{
		"aggregate:history:*",
		"aggregate:history:*",
		"aggregate:history:*",
	}, recorder.invalidated)
}
