package booking

import (
	"context"
	"time"

	"counselbook/config"
	"counselbook/database"
	recordsRepo "counselbook/database/repository/records"
	sessionRepo "counselbook/database/repository/session"
	timeslotRepo "counselbook/database/repository/timeslot"
	"counselbook/models"
	"counselbook/services/events"
	"counselbook/services/notification"
	"counselbook/services/payment"
	"counselbook/services/tasks"
	"counselbook/utils"

	"go.uber.org/zap"
)

// BookingService covers a student's journey from emotions to a completed session.
type BookingService interface {
	StartSession(ctx context.Context, id models.Identity, emotions []string) (*models.BookingSession, error)
	AddDescription(ctx context.Context, id models.Identity, sessionID, text string) (*models.BookingSession, error)
	GetSession(ctx context.Context, id models.Identity, sessionID string) (*models.BookingSession, error)
	ListStudentSessions(ctx context.Context, id models.Identity) ([]models.BookingSession, error)

	ListOpenSlots(ctx context.Context, q models.SlotQuery) ([]models.SlotGroup, error)
	Book(ctx context.Context, id models.Identity, sessionID, slotID string) (*models.BookingSession, error)

	CreateOrder(ctx context.Context, id models.Identity, sessionID string) (*models.OrderResponse, error)
	VerifyPayment(ctx context.Context, id models.Identity, sessionID string, req models.VerifyPaymentRequest) (*models.BookingSession, error)

	Join(ctx context.Context, id models.Identity, sessionID string) (*models.JoinResponse, error)
	Complete(ctx context.Context, id models.Identity, sessionID string) (*models.BookingSession, error)

	ListStudentBookings(ctx context.Context, id models.Identity) (*models.BookingList, error)
	ListCounselorSessions(ctx context.Context, id models.Identity, from, to time.Time) ([]models.CounselorSession, error)
	ListAbandoned(ctx context.Context, id models.Identity, olderThan time.Duration) ([]models.BookingSession, error)
}

// CounselorLookup resolves the counselor behind a slot.
type CounselorLookup interface {
	GetByID(ctx context.Context, id string) (*models.Counselor, error)
}

// StudentProfiles records the display fields of students who start sessions.
type StudentProfiles interface {
	Upsert(ctx context.Context, s models.Student) error
}

// Settings are the booking rules taken from configuration.
type Settings struct {
	FeeAmount       int64
	FeeCurrency     string
	PaymentKeyID    string
	DefaultTimezone string
	JoinWindow      time.Duration
	ReminderLead    time.Duration
}

func SettingsFromConfig(cfg config.Config) Settings {
	window := time.Duration(cfg.JoinWindowMinutes) * time.Minute
	return Settings{
		FeeAmount:       cfg.SessionFeeAmount,
		FeeCurrency:     cfg.SessionFeeCurrency,
		PaymentKeyID:    cfg.PaymentKeyID,
		DefaultTimezone: cfg.DefaultTimezone,
		JoinWindow:      window,
		ReminderLead:    window,
	}
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Sessions   sessionRepo.SessionRepository
	Slots      timeslotRepo.TimeSlotRepository
	Records    recordsRepo.BookingRecordRepository
	Counselors CounselorLookup
	Students   StudentProfiles
	Tx         database.TransactionManager

	Gateway   payment.Gateway
	Notifier  notification.NotificationService
	Reminders tasks.ReminderScheduler
	SlotFeed  events.SlotFeed
	Lifecycle events.LifecyclePublisher
	Metrics   *utils.BookingMetrics
	Logger    *zap.Logger

	Settings Settings
	Now      func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
