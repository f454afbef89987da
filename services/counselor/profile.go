package counselor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	counselorRepo "counselbook/database/repository/counselor"
	"counselbook/models"

	"go.uber.org/zap"
)

// UpdateProfile edits the caller's own profile. Profiles are created at onboarding;
// a missing profile or one without username and email is reported as not found.
func (s *DefaultCounselorService) UpdateProfile(ctx context.Context, id models.Identity, update models.CounselorProfileUpdate) (*models.Counselor, error) {
	if id.Role != models.RoleCounselor {
		return nil, ErrForbidden
	}

	current, err := s.Counselors.GetByID(ctx, id.UID)
	if err != nil {
		if errors.Is(err, counselorRepo.ErrCounselorNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if current.Username == "" || current.Email == "" {
		return nil, ErrProfileNotFound
	}

	if err := normalizeUpdate(&update); err != nil {
		return nil, err
	}

	updated, err := s.Counselors.UpdateProfile(ctx, id.UID, update)
	if err != nil {
		if errors.Is(err, counselorRepo.ErrCounselorNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	s.log().Info("counselor profile updated", zap.String("counselorId", id.UID))
	return updated, nil
}

func normalizeUpdate(u *models.CounselorProfileUpdate) error {
	if u.Username != nil {
		v := strings.TrimSpace(*u.Username)
		if v == "" {
			return fmt.Errorf("%w: username cannot be empty", ErrInvalidProfile)
		}
		u.Username = &v
	}
	if u.Initials != nil {
		v := strings.ToUpper(strings.TrimSpace(*u.Initials))
		u.Initials = &v
	}
	if u.MeetingLink != nil {
		v := strings.TrimSpace(*u.MeetingLink)
		if v != "" && !validMeetingLink(v) {
			return fmt.Errorf("%w: meeting link must be an absolute http(s) URL", ErrInvalidProfile)
		}
		u.MeetingLink = &v
	}
	if u.Timezone != nil {
		v := strings.TrimSpace(*u.Timezone)
		if _, err := time.LoadLocation(v); v != "" && err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidProfile, v)
		}
		u.Timezone = &v
	}
	return nil
}

func validMeetingLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
