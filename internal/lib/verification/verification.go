package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"whisperbox/internal/models"
)

const emailSubject = "WhisperBox | Verify your account"

type Publisher interface {
	SendEmail(ctx context.Context, job models.EmailJob) error
}

// NewCode returns a 6-digit decimal code, zero-padded.
func NewCode() (string, error) {
	const op = "verification.NewCode"

	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendVerificationEmail publishes the code for out-of-band delivery.
// A publish failure is returned to the caller: the signup response must
// report it even though the user record is already persisted.
func SendVerificationEmail(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	email, username, code string,
) error {
	const op = "verification.SendVerificationEmail"

	job := models.EmailJob{
		To:       email,
		Username: username,
		Code:     code,
		Subject:  emailSubject,
	}

	if err := pub.SendEmail(ctx, job); err != nil {
		log.Error("failed to publish verification email", slog.Any("err", err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
