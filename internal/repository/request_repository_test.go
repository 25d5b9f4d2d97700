package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

func TestRequestRepositoryUpdateWithStatusGuardConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE donation_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	request := &models.DonationRequest{
		ID:         "req-1",
		Status:     models.RequestStatusApproved,
		Volunteers: models.VolunteerList{},
	}
	err := repo.UpdateWithStatusGuard(context.Background(), request, models.RequestStatusPending)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateWithStatusGuardSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE donation_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	request := &models.DonationRequest{
		ID:         "req-1",
		Status:     models.RequestStatusInProgress,
		Volunteers: models.VolunteerList{{DonorID: "donor-1", VolunteeredAt: time.Now()}},
	}
	require.NoError(t, repo.UpdateWithStatusGuard(context.Background(), request, models.RequestStatusApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM donation_requests")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryNearbyHospitals(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	rows := sqlmock.NewRows([]string{"hospital_id", "distance_meters"}).
		AddRow("hosp-1", 420.5).
		AddRow("hosp-2", 1800.0)

	mock.ExpectQuery(regexp.QuoteMeta("FROM hospitals")).
		WithArgs(12.9, 77.6, 5000.0).
		WillReturnRows(rows)

	hospitals, err := repo.NearbyHospitals(context.Background(), 12.9, 77.6, 5000)
	require.NoError(t, err)
	require.Len(t, hospitals, 2)
	require.Equal(t, "hosp-1", hospitals[0].HospitalID)
	require.InDelta(t, 420.5, hospitals[0].DistanceMeters, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}
