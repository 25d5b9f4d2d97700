package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	"github.com/lifelink-dev/bloodlink-api/pkg/jobs"
	"github.com/lifelink-dev/bloodlink-api/pkg/notify"
)

type userDirectoryStub struct {
	users []models.User
}

func (s *userDirectoryStub) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userDirectoryStub) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *userDirectoryStub) ListAll(_ context.Context) ([]models.User, error) {
	return s.users, nil
}

type audienceHistoryStub struct {
	records []models.DonationHistoryRecord
}

func (s *audienceHistoryStub) ListAll(_ context.Context) ([]models.DonationHistoryRecord, error) {
	return s.records, nil
}

type notificationStoreStub struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (s *notificationStoreStub) Create(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, notification)
	return nil
}

func (s *notificationStoreStub) ListByUser(_ context.Context, userID string, _ int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.created {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *notificationStoreStub) MarkRead(_ context.Context, _, _ string) error {
	return nil
}

func (s *notificationStoreStub) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type transportStub struct {
	mu      sync.Mutex
	sent    []notify.Message
	failFor string
}

func (t *transportStub) Send(_ context.Context, msg notify.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failFor != "" && msg.Recipient == t.failFor {
		return fmt.Errorf("delivery refused for %s", msg.Recipient)
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *transportStub) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

func notificationFixture() (*NotificationService, *userDirectoryStub, *notificationStoreStub, *transportStub, *transportStub) {
	users := &userDirectoryStub{users: []models.User{
		{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin},
		{ID: "donor-1", Email: "asha@example.com", Phone: "555-0101", Role: models.RoleDonor},
		{ID: "donor-2", Email: "ravi@example.com", Phone: "555-0102", Role: models.RoleDonor},
	}}
	recent := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	history := &audienceHistoryStub{records: []models.DonationHistoryRecord{
		{ID: "don-1", DonorID: "donor-2", DonationDate: &recent, Status: models.DonationStatusSuccess},
	}}
	store := &notificationStoreStub{}
	email := &transportStub{}
	sms := &transportStub{}

	svc := NewNotificationService(users, history, store, map[models.NotificationChannel]notify.Transport{
		models.ChannelEmail: email,
		models.ChannelSMS:   sms,
	}, nil, nil, nil, 30, jobs.QueueConfig{})
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, users, store, email, sms
}

func TestResolveAudienceSelectors(t *testing.T) {
	svc, _, _, _, _ := notificationFixture()
	ctx := context.Background()

	all, err := svc.ResolveAudience(ctx, models.AudienceAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	donors, err := svc.ResolveAudience(ctx, models.AudienceDonors)
	require.NoError(t, err)
	assert.Len(t, donors, 2)

	// donor-2 donated nine days ago and is inside the 30 day window
	eligible, err := svc.ResolveAudience(ctx, models.AudienceEligible)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "donor-1", eligible[0].ID)

	single, err := svc.ResolveAudience(ctx, "donor-2")
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "donor-2", single[0].ID)

	none, err := svc.ResolveAudience(ctx, "no-such-user")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBroadcastRecordsPerRecipientOutcomes(t *testing.T) {
	svc, _, store, email, _ := notificationFixture()
	email.failFor = "asha@example.com"

	outcomes, err := svc.Broadcast(context.Background(), dto.BroadcastRequest{
		Audience: models.AudienceDonors,
		Title:    "Urgent need",
		Message:  "O+ units required at City General",
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byUser := map[string]models.DispatchOutcome{}
	for _, outcome := range outcomes {
		byUser[outcome.UserID] = outcome
	}
	assert.False(t, byUser["donor-1"].Delivered)
	assert.NotEmpty(t, byUser["donor-1"].Error)
	assert.True(t, byUser["donor-2"].Delivered)

	// only the delivered message is stored
	require.Len(t, store.created, 1)
	assert.Equal(t, "donor-2", store.created[0].UserID)
	assert.Equal(t, models.ChannelEmail, store.created[0].Channel)
}

func TestBroadcastSMSUsesPhoneRecipient(t *testing.T) {
	svc, _, _, email, sms := notificationFixture()

	_, err := svc.Broadcast(context.Background(), dto.BroadcastRequest{
		Audience: "donor-1",
		Channel:  string(models.ChannelSMS),
		Title:    "Reminder",
		Message:  "You are eligible to donate again",
	})
	require.NoError(t, err)

	assert.Empty(t, email.sent)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "555-0101", sms.sent[0].Recipient)
}

func TestBroadcastRejectsUnknownChannel(t *testing.T) {
	svc, _, _, _, _ := notificationFixture()

	_, err := svc.Broadcast(context.Background(), dto.BroadcastRequest{
		Audience: models.AudienceAll,
		Channel:  "PIGEON",
		Title:    "Hello",
		Message:  "World",
	})
	require.Error(t, err)
}

func TestBroadcastAsyncEnqueuesPerRecipient(t *testing.T) {
	svc, _, store, email, _ := notificationFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	ack, err := svc.BroadcastAsync(ctx, dto.BroadcastRequest{
		Audience: models.AudienceDonors,
		Title:    "Camp this weekend",
		Message:  "Donation camp at City General",
		Async:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Enqueued)

	require.Eventually(t, func() bool {
		return email.sentCount() == 2 && store.createdCount() == 2
	}, 2*time.Second, 10*time.Millisecond)
}
