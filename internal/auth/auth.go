package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"whisperbox/internal/lib/jwt"
	sl "whisperbox/internal/lib/logger"
	"whisperbox/internal/lib/verification"
	"whisperbox/internal/models"
	"whisperbox/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("incorrect verification code")
	ErrTooManyAttempts    = errors.New("too many verification attempts")
)

type Auth struct {
	log           *slog.Logger
	usrSaver      UserSaver
	usrProvider   UserProvider
	limiter       AttemptLimiter
	publisher     verification.Publisher
	codeTTL       time.Duration
	sessionTTL    time.Duration
	sessionSecret string
	maxAttempts   int64
	attemptWindow time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, email, username string, passHash []byte, code string, expiry time.Time) (uid int64, err error)
	ResetUnverified(ctx context.Context, userID int64, passHash []byte, code string, expiry time.Time) error
	SetVerified(ctx context.Context, userID int64) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByIdentifier(ctx context.Context, identifier string) (models.User, error)
	HasVerifiedUsername(ctx context.Context, username string) (bool, error)
}

type AttemptLimiter interface {
	RegisterAttempt(ctx context.Context, username string, window time.Duration) (int64, error)
	ClearAttempts(ctx context.Context, username string) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	limiter AttemptLimiter,
	publisher verification.Publisher,
	codeTTL time.Duration,
	sessionTTL time.Duration,
	sessionSecret string,
	maxAttempts int64,
	attemptWindow time.Duration,
) *Auth {
	return &Auth{
		log:           log,
		usrSaver:      userSaver,
		usrProvider:   userProvider,
		limiter:       limiter,
		publisher:     publisher,
		codeTTL:       codeTTL,
		sessionTTL:    sessionTTL,
		sessionSecret: sessionSecret,
		maxAttempts:   maxAttempts,
		attemptWindow: attemptWindow,
	}
}

// Signup registers a new user or re-issues the verification code for an
// unverified email, then hands the code to the mail queue.
//
// The existence check and the write are separate statements, so two
// concurrent signups for the same email can race; the unique index on
// email makes the loser fail with ErrEmailTaken instead of duplicating
// the record.
func (a *Auth) Signup(ctx context.Context, username, email, password string) error {
	const op = "auth.Signup"

	log := a.log.With(slog.String("op", op))

	taken, err := a.usrProvider.HasVerifiedUsername(ctx, username)
	if err != nil {
		log.Error("failed to check username", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		log.Info("username taken by a verified user")
		return ErrUsernameTaken
	}

	code, err := verification.NewCode()
	if err != nil {
		log.Error("failed to generate verification code", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	expiry := time.Now().Add(a.codeTTL)

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	existing, err := a.usrProvider.UserByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		log.Info("email belongs to a verified user")
		return ErrEmailRegistered

	case err == nil:
		// Unverified re-signup: overwrite in place, same record identity.
		if err := a.usrSaver.ResetUnverified(ctx, existing.ID, passHash, code, expiry); err != nil {
			log.Error("failed to reset unverified user", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

	case errors.Is(err, storage.ErrUserNotFound):
		if _, err := a.usrSaver.SaveUser(ctx, email, username, passHash, code, expiry); err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				log.Warn("lost signup race for email")
				return ErrEmailRegistered
			}

			log.Error("failed to save user", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

	default:
		log.Error("failed to get user by email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := verification.SendVerificationEmail(ctx, log, a.publisher, email, username, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user signed up, verification code sent")

	return nil
}

// VerifyCode checks the submitted code: not found, then expired, then
// mismatch, then success. Only actual code comparisons count toward the
// per-username attempt window, so posts for nonexistent or expired
// accounts cannot lock a username out.
func (a *Auth) VerifyCode(ctx context.Context, username, code string) error {
	const op = "auth.VerifyCode"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return storage.ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if !time.Now().Before(user.VerifyCodeExpiry) {
		log.Info("verification code expired")
		return ErrCodeExpired
	}

	attempts, err := a.limiter.RegisterAttempt(ctx, username, a.attemptWindow)
	if err != nil {
		log.Error("failed to register verification attempt", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if attempts > a.maxAttempts {
		log.Warn("verification attempts exceeded", slog.Int64("attempts", attempts))
		return ErrTooManyAttempts
	}

	if user.VerifyCode != code {
		log.Info("verification code mismatch")
		return ErrCodeMismatch
	}

	if err := a.usrSaver.SetVerified(ctx, user.ID); err != nil {
		log.Error("failed to mark user as verified", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.limiter.ClearAttempts(ctx, username); err != nil {
		log.Warn("failed to clear verification attempts", sl.Err(err))
	}

	log.Info("user verified", slog.Int64("uid", user.ID))

	return nil
}

// Login checks the identifier/password pair and mints a session token.
// Unverified accounts are rejected before the password is compared.
func (a *Auth) Login(ctx context.Context, identifier, password string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", storage.ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsVerified {
		return "", ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", ErrInvalidCredentials
	}

	token, err := jwt.NewToken(user, a.sessionTTL, a.sessionSecret)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return token, nil
}

// UsernameAvailable reports whether a verified user already owns the
// username. Format validation happens at the handler boundary.
func (a *Auth) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	const op = "auth.UsernameAvailable"

	taken, err := a.usrProvider.HasVerifiedUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return !taken, nil
}
