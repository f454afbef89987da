package counselor

import (
	"context"
	"time"

	"counselbook/config"
	availabilityRepo "counselbook/database/repository/availability"
	counselorRepo "counselbook/database/repository/counselor"
	timeslotRepo "counselbook/database/repository/timeslot"
	"counselbook/models"
	"counselbook/services/events"
	"counselbook/utils"

	"go.uber.org/zap"
)

// CounselorService publishes availability and manages counselor profiles.
type CounselorService interface {
	Publish(ctx context.Context, id models.Identity, date string, desiredTimes []string) (*models.PublishResult, error)
	GetAvailability(ctx context.Context, counselorID, fromDate, toDate string) ([]models.AvailabilityWindow, error)
	UpdateProfile(ctx context.Context, id models.Identity, update models.CounselorProfileUpdate) (*models.Counselor, error)
}

// Rules bound what a counselor may publish.
type Rules struct {
	MaxTimesPerDay     int
	GranularityMinutes int
	DefaultTimezone    string
}

func RulesFromConfig(cfg config.Config) Rules {
	return Rules{
		MaxTimesPerDay:     cfg.MaxTimesPerDay,
		GranularityMinutes: cfg.SlotGranularityMinutes,
		DefaultTimezone:    cfg.DefaultTimezone,
	}
}

// DefaultCounselorService implements CounselorService.
type DefaultCounselorService struct {
	Slots        timeslotRepo.TimeSlotRepository
	Availability availabilityRepo.AvailabilityRepository
	Counselors   counselorRepo.CounselorRepository
	SlotFeed     events.SlotFeed
	Metrics      *utils.BookingMetrics
	Logger       *zap.Logger
	Rules        Rules
	Now          func() time.Time
}

func (s *DefaultCounselorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultCounselorService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
