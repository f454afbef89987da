package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"counselbook/models"
)

var (
	ErrEmptyToken  = errors.New("device token is required")
	ErrUnknownRole  = errors.New("role cannot register devices")
)

// TokenStore persists a push token for one kind of account.
type TokenStore interface {
	SetFCMToken(ctx context.Context, id, token string) error
}

// DeviceService registers FCM tokens for students and counselors.
type DeviceService interface {
	RegisterDeviceToken(ctx context.Context, id models.Identity, token string) error
}

type DefaultDeviceService struct {
	Students   TokenStore
	Counselors TokenStore
}

func NewDefaultDeviceService(students, counselors TokenStore) *DefaultDeviceService {
	return &DefaultDeviceService{Students: students, Counselors: counselors}
}

func (s *DefaultDeviceService) RegisterDeviceToken(ctx context.Context, id models.Identity, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	var store TokenStore
	switch id.Role {
	case models.RoleStudent:
		store = s.Students
	case models.RoleCounselor:
		store = s.Counselors
	default:
		return ErrUnknownRole
	}
	if err := store.SetFCMToken(ctx, id.UID, token); err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}
