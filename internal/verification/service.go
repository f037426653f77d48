// Package verification runs the WhatsApp phone verification flow: a
// short-lived code is sent to the number, and a matching reply verifies
// the user and records the phone mapping.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	"io.winapps.microjournal/internal/identity"
	"io.winapps.microjournal/internal/messaging"
	accountmodels "io.winapps.microjournal/internal/models/account"
	"io.winapps.microjournal/internal/store"
)

const codeTTL = 10 * time.Minute

type Service struct {
	codes     store.VerificationStore
	users     store.UserStore
	resolver  *identity.Resolver
	transport messaging.Transport
	logger    *zap.SugaredLogger
}

func NewService(codes store.VerificationStore, users store.UserStore, resolver *identity.Resolver, transport messaging.Transport, logger *zap.SugaredLogger) *Service {
	return &Service{codes: codes, users: users, resolver: resolver, transport: transport, logger: logger}
}

// Start issues a new verification code for the given user and number and
// sends it over WhatsApp. The provider's message id is returned as the
// verification id.
func (s *Service) Start(ctx context.Context, userUID, phone string) (string, error) {
	phone = identity.NormalizePhone(phone)
	if phone == "" {
		return "", faults.New(faults.KindValidation, "phone number is required")
	}

	code, err := generateCode()
	if err != nil {
		return "", faults.Wrap(faults.KindPermanent, "generate verification code", err)
	}

	vc := &accountmodels.VerificationCode{
		ID:          uuid.New().String(),
		UserUID:     userUID,
		PhoneNumber: phone,
		Code:        code,
		ExpiresAt:   time.Now().Add(codeTTL),
	}
	if err := s.codes.Create(ctx, vc); err != nil {
		return "", err
	}

	body := fmt.Sprintf("Your MicroJournal verification code is: %s. It will expire in 10 minutes.", code)
	messageID, err := s.transport.Send(ctx, phone, body, messaging.ChannelWhatsApp)
	if err != nil {
		return "", err
	}

	s.logger.Infow("whatsapp verification started", "user_uid", userUID, "message_id", messageID)
	return messageID, nil
}

// Complete consumes the code, marks the user verified, and records the
// phone mapping. An unknown or expired code is a validation failure.
func (s *Service) Complete(ctx context.Context, userUID, phone, code string) error {
	phone = identity.NormalizePhone(phone)
	if phone == "" || code == "" {
		return faults.New(faults.KindValidation, "phone number and code are required")
	}

	vc, err := s.codes.Consume(ctx, phone, code, time.Now())
	if faults.IsNotFound(err) {
		return faults.New(faults.KindValidation, "invalid or expired verification code")
	}
	if err != nil {
		return err
	}
	if vc.UserUID != userUID {
		// The code was issued to someone else's verification attempt.
		return faults.New(faults.KindValidation, "invalid or expired verification code")
	}

	if err := s.users.SetPhoneVerified(ctx, userUID, phone); err != nil {
		return err
	}
	if err := s.resolver.Associate(ctx, phone, userUID); err != nil {
		return err
	}

	s.logger.Infow("whatsapp verification completed", "user_uid", userUID)
	return nil
}

func generateCode() (string, error) {
	// 6 digits, 100000-999999, from a crypto source.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
