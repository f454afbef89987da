package notification

import (
	"context"
	"errors"
	"fmt"

	counselorRepo "counselbook/database/repository/counselor"
	userRepo "counselbook/database/repository/user"
	"counselbook/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

var ErrNoDeviceToken = errors.New("no device token registered")

// NotificationService sends push notifications to students and counselors.
type NotificationService interface {
	Notify(ctx context.Context, target, userID, title, body string, data map[string]string) error
}

// Sender is the subset of the FCM client used for delivery.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users      userRepo.UserRepository
	Counselors counselorRepo.CounselorRepository
	FCM        Sender
	Logger     *zap.Logger
}

func NewDefaultNotificationService(
	users userRepo.UserRepository,
	counselors counselorRepo.CounselorRepository,
	fcm Sender,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if users == nil || counselors == nil || fcm == nil {
		return nil, fmt.Errorf("notification service initialization error: repositories or sender is nil")
	}
	return &DefaultNotificationService{
		Users:      users,
		Counselors: counselors,
		FCM:        fcm,
		Logger:     logger,
	}, nil
}

// Notify looks up the recipient's FCM token and sends a push.
func (s *DefaultNotificationService) Notify(
	ctx context.Context,
	target, userID, title, body string,
	data map[string]string,
) error {
	token, err := s.tokenFor(ctx, target, userID)
	if err != nil {
		return fmt.Errorf("Notify: %s %s: %w", target, userID, err)
	}

	payload := make(map[string]string, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	if _, ok := payload["role"]; !ok {
		payload["role"] = target
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.FCM.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("Notify: failed to send FCM message: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Debug("push sent", zap.String("target", target), zap.String("userId", userID), zap.String("messageId", id))
	}
	return nil
}

func (s *DefaultNotificationService) tokenFor(ctx context.Context, target, userID string) (string, error) {
	var token string
	switch target {
	case models.TargetCounselor:
		c, err := s.Counselors.GetByID(ctx, userID)
		if err != nil {
			return "", err
		}
		token = c.FCMToken
	case models.TargetStudent:
		u, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			return "", err
		}
		token = u.FCMToken
	default:
		return "", fmt.Errorf("unknown notification target %q", target)
	}
	if token == "" {
		return "", ErrNoDeviceToken
	}
	return token, nil
}
