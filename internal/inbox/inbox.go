package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "whisperbox/internal/lib/logger"
	"whisperbox/internal/models"
	"whisperbox/internal/storage"

	"github.com/google/uuid"
)

var ErrNotAccepting = errors.New("user is not accepting messages")

type Inbox struct {
	log   *slog.Logger
	store MessageStore
}

type MessageStore interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	AppendMessage(ctx context.Context, userID int64, msg models.Message) error
	MessagesByUser(ctx context.Context, userID int64) ([]models.Message, error)
	SetAccepting(ctx context.Context, userID int64, accepting bool) error
}

func New(log *slog.Logger, store MessageStore) *Inbox {
	return &Inbox{
		log:   log,
		store: store,
	}
}

// Send appends an anonymous message to the target's inbox. No sender
// identity is recorded. A non-accepting target is a rejection, never a
// silent accept.
func (i *Inbox) Send(ctx context.Context, username, content string) error {
	const op = "inbox.Send"

	log := i.log.With(slog.String("op", op))

	user, err := i.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("target user not found")
			return storage.ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsAccepting {
		log.Info("target user is not accepting messages")
		return ErrNotAccepting
	}

	msg := models.Message{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := i.store.AppendMessage(ctx, user.ID, msg); err != nil {
		log.Error("failed to append message", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Messages returns the user's inbox, newest first.
func (i *Inbox) Messages(ctx context.Context, userID int64) ([]models.Message, error) {
	const op = "inbox.Messages"

	messages, err := i.store.MessagesByUser(ctx, userID)
	if err != nil {
		i.log.Error("failed to load messages", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return messages, nil
}

// SetAccepting persists the accept-flag and returns the new value.
func (i *Inbox) SetAccepting(ctx context.Context, userID int64, accepting bool) (bool, error) {
	const op = "inbox.SetAccepting"

	if err := i.store.SetAccepting(ctx, userID, accepting); err != nil {
		i.log.Error("failed to update accept-flag", slog.String("op", op), sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return accepting, nil
}

// Accepting reads the live accept-flag from storage rather than trusting
// the stale snapshot in the session token.
func (i *Inbox) Accepting(ctx context.Context, userID int64) (bool, error) {
	const op = "inbox.Accepting"

	user, err := i.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, storage.ErrUserNotFound
		}

		i.log.Error("failed to get user", slog.String("op", op), sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return user.IsAccepting, nil
}
