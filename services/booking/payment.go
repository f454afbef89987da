package booking

import (
	"context"
	"errors"

	sessionRepo "counselbook/database/repository/session"
	"counselbook/models"
	"counselbook/services/payment"

	"go.uber.org/zap"
)

// CreateOrder opens a gateway order for the session fee. A pending session may re-create its order.
func (s *DefaultBookingService) CreateOrder(ctx context.Context, id models.Identity, sessionID string) (*models.OrderResponse, error) {
	sess, err := s.loadOwned(ctx, id, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status.IsPaid() {
		return nil, ErrAlreadyPaid
	}
	if !CanTransition(sess.Status, models.StatusPaymentPending) || sess.SessionTimestamp == nil {
		return nil, withDetail(ErrInvalidTransition, "cannot pay for a session in %s", sess.Status)
	}
	if !sess.SessionTimestamp.After(s.now()) {
		return nil, ErrSessionExpired
	}

	amount, currency := s.Settings.FeeAmount, s.Settings.FeeCurrency
	orderID, err := s.Gateway.CreateOrder(ctx, amount, currency, sessionID)
	if err != nil {
		s.log().Error("gateway order creation failed", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, ErrGatewayUnavailable
	}

	order := models.PaymentOrder{
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		CreatedBy: id.UID,
		Status:    "created",
	}
	if err := s.Sessions.SetOrder(ctx, sessionID, sourcesOf(models.StatusPaymentPending), order); err != nil {
		if !errors.Is(err, sessionRepo.ErrStatusConflict) {
			return nil, err
		}
		current, err := s.Sessions.GetByID(ctx, sessionID)
		if err == nil && current.Status.IsPaid() {
			return nil, ErrAlreadyPaid
		}
		return nil, ErrInvalidTransition
	}

	sess.PaymentOrder = &order
	sess.Status = models.StatusPaymentPending
	s.emitLifecycle(*sess)
	return &models.OrderResponse{
		OrderID:  orderID,
		Amount:   amount,
		Currency: currency,
		KeyID:    s.Settings.PaymentKeyID,
	}, nil
}

// VerifyPayment checks the gateway callback and moves the session to PAID.
// Repeated or concurrent calls for a paid session succeed without repeating side effects.
func (s *DefaultBookingService) VerifyPayment(ctx context.Context, id models.Identity, sessionID string, req models.VerifyPaymentRequest) (*models.BookingSession, error) {
	sess, err := s.loadOwned(ctx, id, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status.IsPaid() {
		s.Metrics.ObserveVerification("already_paid")
		s.ensureReminder(ctx, sess)
		return sess, nil
	}
	if sess.Status != models.StatusPaymentPending {
		return nil, withDetail(ErrInvalidTransition, "no payment pending for session in %s", sess.Status)
	}

	order := sess.PaymentOrder
	if order == nil || order.OrderID != req.OrderID || order.CreatedBy != id.UID {
		s.Metrics.ObserveVerification("order_mismatch")
		s.log().Warn("payment order mismatch",
			zap.String("sessionId", sessionID),
			zap.String("caller", id.UID),
			zap.String("suppliedOrderId", req.OrderID),
		)
		return nil, ErrOrderMismatch
	}
	err = s.Gateway.Confirm(ctx, payment.Confirmation{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Receipt:   sessionID,
	})
	if errors.Is(err, payment.ErrNotConfirmed) {
		s.Metrics.ObserveVerification("invalid_signature")
		s.log().Warn("payment confirmation rejected",
			zap.String("sessionId", sessionID),
			zap.String("orderId", req.OrderID),
			zap.String("paymentId", req.PaymentID),
			zap.Error(err),
		)
		return nil, ErrInvalidSignature
	}
	if err != nil {
		s.Metrics.ObserveVerification("gateway_error")
		s.log().Error("payment confirmation failed", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, ErrGatewayUnavailable
	}

	now := s.now()
	conf := models.PaymentConfirmation{PaymentID: req.PaymentID, VerifiedAt: now}
	if err := s.Sessions.MarkPaid(ctx, sessionID, req.OrderID, conf); err != nil {
		if !errors.Is(err, sessionRepo.ErrStatusConflict) {
			return nil, err
		}
		current, err := s.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if current.Status.IsPaid() {
			s.Metrics.ObserveVerification("already_paid")
			return current, nil
		}
		return nil, withDetail(ErrInvalidTransition, "session moved to %s", current.Status)
	}

	sess.Status = models.StatusPaid
	sess.PaymentID = req.PaymentID
	sess.PaymentVerifiedAt = &now
	sess.PaymentOrder.Status = "paid"
	s.Metrics.ObserveVerification("paid")
	s.log().Info("payment verified", zap.String("sessionId", sessionID), zap.String("paymentId", req.PaymentID))

	s.onPaid(ctx, sess)
	return sess, nil
}

// onPaid runs the side effects owned by the verify call that won the PAID transition.
func (s *DefaultBookingService) onPaid(ctx context.Context, sess *models.BookingSession) {
	s.syncRecord(ctx, *sess)

	slot := sess.SelectedSlot
	when := ""
	if slot != nil {
		when = slot.Date + " " + slot.Time
	}
	data := map[string]string{"type": "session_booked", "sessionId": sess.ID}
	if slot != nil {
		s.notifyAsync(models.PushMessage{
			Target: models.TargetCounselor,
			UserID: slot.CounselorID,
			Title:  "New session booked",
			Body:   sess.Student.Username + " booked a session with you on " + when,
			Data:   data,
		})
	}
	s.notifyAsync(models.PushMessage{
		Target: models.TargetStudent,
		UserID: sess.Student.UID,
		Title:  "Your session is confirmed",
		Body:   "Payment received. Your session is on " + when,
		Data:   data,
	})

	s.ensureReminder(ctx, sess)
	s.emitLifecycle(*sess)
}
