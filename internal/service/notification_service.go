package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/eligibility"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
	"github.com/lifelink-dev/bloodlink-api/pkg/jobs"
	"github.com/lifelink-dev/bloodlink-api/pkg/notify"
)

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
}

type audienceHistoryReader interface {
	ListAll(ctx context.Context) ([]models.DonationHistoryRecord, error)
}

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationJob struct {
	User    models.User
	Channel models.NotificationChannel
	Title   string
	Message string
}

// NotificationService resolves broadcast audiences and dispatches messages
// over the configured transports. Synchronous broadcasts report per-recipient
// outcomes; asynchronous ones enqueue one delivery job per recipient.
type NotificationService struct {
	users        userDirectory
	donations    audienceHistoryReader
	store        notificationStore
	transports   map[models.NotificationChannel]notify.Transport
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	queue        *jobs.Queue
	cooldownDays int
	now          func() time.Time
}

// NewNotificationService constructs the service and its delivery queue. The
// queue is idle until Start is called.
func NewNotificationService(
	users userDirectory,
	donations audienceHistoryReader,
	store notificationStore,
	transports map[models.NotificationChannel]notify.Transport,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cooldownDays int,
	queueCfg jobs.QueueConfig,
) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cooldownDays <= 0 {
		cooldownDays = eligibility.HistoryCooldownDays
	}
	svc := &NotificationService{
		users:        users,
		donations:    donations,
		store:        store,
		transports:   transports,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cooldownDays: cooldownDays,
		now:          time.Now,
	}
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	svc.queue = jobs.NewQueue("notifications", svc.handleJob, queueCfg)
	return svc
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// ResolveAudience expands an audience selector into concrete users.
//
// Selectors: "all" targets every active user, "donors" every donor account,
// "eligible" every donor currently clear of the short cooldown window. Any
// other value is tried as a literal user id. Unresolvable selectors yield an
// empty audience, never an error.
func (s *NotificationService) ResolveAudience(ctx context.Context, selector string) ([]models.User, error) {
	switch selector {
	case models.AudienceAll:
		users, err := s.users.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve audience")
		}
		return users, nil
	case models.AudienceDonors:
		donors, err := s.users.ListByRole(ctx, models.RoleDonor)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve audience")
		}
		return donors, nil
	case models.AudienceEligible:
		return s.resolveEligibleDonors(ctx)
	default:
		user, err := s.users.FindByID(ctx, selector)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve audience")
		}
		return []models.User{*user}, nil
	}
}

func (s *NotificationService) resolveEligibleDonors(ctx context.Context) ([]models.User, error) {
	donors, err := s.users.ListByRole(ctx, models.RoleDonor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve audience")
	}
	history, err := s.donations.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation history")
	}
	byDonor := make(map[string][]models.DonationHistoryRecord)
	for _, rec := range history {
		byDonor[rec.DonorID] = append(byDonor[rec.DonorID], rec)
	}

	asOf := s.now().UTC()
	eligible := make([]models.User, 0, len(donors))
	for _, donor := range donors {
		result := eligibility.Compute(byDonor[donor.ID], asOf, s.cooldownDays)
		if result.Status == eligibility.StatusEligible {
			eligible = append(eligible, donor)
		}
	}
	return eligible, nil
}

// Broadcast delivers the message to the resolved audience synchronously and
// returns one outcome per recipient. A failed delivery records its error and
// moves on; the batch never aborts.
func (s *NotificationService) Broadcast(ctx context.Context, req dto.BroadcastRequest) ([]models.DispatchOutcome, error) {
	channel, err := s.validateBroadcast(req)
	if err != nil {
		return nil, err
	}
	audience, err := s.ResolveAudience(ctx, req.Audience)
	if err != nil {
		return nil, err
	}

	outcomes := make([]models.DispatchOutcome, 0, len(audience))
	for _, user := range audience {
		outcomes = append(outcomes, s.deliver(ctx, user, channel, req.Title, req.Message))
	}
	return outcomes, nil
}

// BroadcastAsync resolves the audience, enqueues one delivery job per
// recipient, and returns immediately with the enqueued count.
func (s *NotificationService) BroadcastAsync(ctx context.Context, req dto.BroadcastRequest) (*dto.BroadcastEnqueued, error) {
	channel, err := s.validateBroadcast(req)
	if err != nil {
		return nil, err
	}
	audience, err := s.ResolveAudience(ctx, req.Audience)
	if err != nil {
		return nil, err
	}

	enqueued := 0
	for _, user := range audience {
		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: "notification.delivery",
			Payload: notificationJob{
				User:    user,
				Channel: channel,
				Title:   req.Title,
				Message: req.Message,
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue notification",
				zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		enqueued++
	}
	return &dto.BroadcastEnqueued{Audience: req.Audience, Enqueued: enqueued}, nil
}

// Feed returns a user's stored notifications, newest first.
func (s *NotificationService) Feed(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load notifications")
	}
	return notifications, nil
}

// MarkRead stamps one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.store.MarkRead(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to mark notification read")
	}
	return nil
}

func (s *NotificationService) validateBroadcast(req dto.BroadcastRequest) (models.NotificationChannel, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "audience, title, and message are required")
	}
	channel := models.NotificationChannel(req.Channel)
	if channel == "" {
		channel = models.ChannelEmail
	}
	if _, ok := s.transports[channel]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported notification channel: "+req.Channel)
	}
	return channel, nil
}

// deliver sends one message and persists the stored copy on success.
func (s *NotificationService) deliver(ctx context.Context, user models.User, channel models.NotificationChannel, title, message string) models.DispatchOutcome {
	outcome := models.DispatchOutcome{UserID: user.ID, Channel: string(channel)}

	recipient := user.Email
	if channel == models.ChannelSMS {
		recipient = user.Phone
	}

	err := s.transports[channel].Send(ctx, notify.Message{
		Recipient: recipient,
		Title:     title,
		Body:      message,
	})
	if s.metrics != nil {
		s.metrics.RecordNotificationDelivery(string(channel), err == nil)
	}
	if err != nil {
		outcome.Error = err.Error()
		s.logger.Warn("notification delivery failed",
			zap.String("user_id", user.ID),
			zap.String("channel", string(channel)),
			zap.Error(err))
		return outcome
	}

	outcome.Delivered = true
	stored := &models.Notification{
		UserID:    user.ID,
		Channel:   channel,
		Title:     title,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, stored); err != nil {
		s.logger.Warn("failed to persist notification",
			zap.String("user_id", user.ID), zap.Error(err))
	}
	return outcome
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(notificationJob)
	if !ok {
		s.logger.Error("unexpected notification job payload", zap.String("job_id", job.ID))
		return nil
	}
	outcome := s.deliver(ctx, payload.User, payload.Channel, payload.Title, payload.Message)
	if !outcome.Delivered {
		return errors.New(outcome.Error)
	}
	return nil
}
