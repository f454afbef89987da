package booking

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	sessionRepo "counselbook/database/repository/session"
	"counselbook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxDescriptionLen = 1000

func (s *DefaultBookingService) StartSession(ctx context.Context, id models.Identity, emotions []string) (*models.BookingSession, error) {
	if id.Role != models.RoleStudent {
		return nil, ErrForbidden
	}
	if !id.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	selected := dedupeEmotions(emotions)
	if len(selected) == 0 {
		return nil, withDetail(ErrInvalidInput, "select at least one emotion")
	}

	now := s.now()
	sess := models.BookingSession{
		ID:     uuid.New().String(),
		Status: models.StatusEmotionsSelected,
		Student: models.StudentRef{
			UID:      id.UID,
			Email:    id.Email,
			Username: displayName(id),
		},
		Emotions:  selected,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.Students != nil {
		profile := models.Student{ID: id.UID, Username: sess.Student.Username, Email: id.Email}
		if err := s.Students.Upsert(ctx, profile); err != nil {
			s.log().Warn("failed to record student profile", zap.String("uid", id.UID), zap.Error(err))
		}
	}

	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.emitLifecycle(sess)
	return &sess, nil
}

func dedupeEmotions(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.TrimSpace(e)
		key := strings.ToLower(e)
		if e == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func displayName(id models.Identity) string {
	if id.Username != "" {
		return id.Username
	}
	if at := strings.IndexByte(id.Email, '@'); at > 0 {
		return id.Email[:at]
	}
	return id.UID
}

func (s *DefaultBookingService) AddDescription(ctx context.Context, id models.Identity, sessionID, text string) (*models.BookingSession, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > maxDescriptionLen {
		return nil, withDetail(ErrInvalidInput, "description must be 1 to %d characters", maxDescriptionLen)
	}

	sess, err := s.loadOwned(ctx, id, sessionID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sess.Status, models.StatusDescriptionAdded) {
		return nil, withDetail(ErrInvalidTransition, "cannot describe a session in %s", sess.Status)
	}

	if err := s.Sessions.SetDescription(ctx, sessionID, sourcesOf(models.StatusDescriptionAdded), text); err != nil {
		if errors.Is(err, sessionRepo.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	sess.Description = &text
	sess.Status = models.StatusDescriptionAdded
	sess.UpdatedAt = s.now()
	return sess, nil
}

// GetSession is visible to the owning student, the booked counselor and admins.
func (s *DefaultBookingService) GetSession(ctx context.Context, id models.Identity, sessionID string) (*models.BookingSession, error) {
	sess, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	switch {
	case id.IsAdmin():
	case sess.Student.UID == id.UID:
	case id.Role == models.RoleCounselor && sess.SelectedSlot != nil && sess.SelectedSlot.CounselorID == id.UID:
	default:
		return nil, ErrForbidden
	}
	return sess, nil
}

func (s *DefaultBookingService) ListStudentSessions(ctx context.Context, id models.Identity) ([]models.BookingSession, error) {
	if id.Role != models.RoleStudent {
		return nil, ErrForbidden
	}
	return s.Sessions.ListByStudent(ctx, id.UID, nil)
}

// loadOwned fetches a session the caller owns as a student.
func (s *DefaultBookingService) loadOwned(ctx context.Context, id models.Identity, sessionID string) (*models.BookingSession, error) {
	sess, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if sess.Student.UID != id.UID {
		return nil, ErrForbidden
	}
	return sess, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, sessionRepo.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	return err
}
