package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whisperbox/internal/config"
	"whisperbox/internal/models"
	"whisperbox/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(
	ctx context.Context,
	email, username string,
	passHash []byte,
	code string,
	expiry time.Time,
) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, username, password_hash, verify_code, verify_code_expiry)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, email, username, string(passHash), code, expiry).Scan(&id)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return 0, storage.ErrEmailTaken
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

// ResetUnverified overwrites the credential and verification state of an
// unverified user in place, preserving record identity.
func (r *PostgresRepo) ResetUnverified(
	ctx context.Context,
	userID int64,
	passHash []byte,
	code string,
	expiry time.Time,
) error {
	const op = "storage.postgres.ResetUnverified"

	query := `
		UPDATE users
		SET password_hash = $1, verify_code = $2, verify_code_expiry = $3
		WHERE id = $4 AND is_verified = FALSE;
	`

	_, err := r.pool.Exec(ctx, query, string(passHash), code, expiry, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := userSelect + `WHERE email = $1;`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	query := userSelect + `WHERE username = $1;`

	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

// UserByIdentifier resolves a login identifier against email or username.
func (r *PostgresRepo) UserByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	query := userSelect + `WHERE email = $1 OR username = $1;`

	return r.scanUser(r.pool.QueryRow(ctx, query, identifier))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := userSelect + `WHERE id = $1;`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepo) HasVerifiedUsername(ctx context.Context, username string) (bool, error) {
	const op = "storage.postgres.HasVerifiedUsername"

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND is_verified = TRUE);`

	var exists bool

	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *PostgresRepo) SetVerified(ctx context.Context, userID int64) error {
	query := `UPDATE users SET is_verified = TRUE WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, userID)

	return err
}

func (r *PostgresRepo) SetAccepting(ctx context.Context, userID int64, accepting bool) error {
	query := `UPDATE users SET is_accepting = $1 WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, accepting, userID)

	return err
}

func (r *PostgresRepo) AppendMessage(ctx context.Context, userID int64, msg models.Message) error {
	const op = "storage.postgres.AppendMessage"

	query := `
		INSERT INTO messages (id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4);
	`

	_, err := r.pool.Exec(ctx, query, msg.ID, userID, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MessagesByUser returns the user's messages newest-first.
func (r *PostgresRepo) MessagesByUser(ctx context.Context, userID int64) ([]models.Message, error) {
	const op = "storage.postgres.MessagesByUser"

	query := `
		SELECT id, content, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var messages []models.Message

	for rows.Next() {
		var m models.Message

		if err := rows.Scan(&m.ID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return messages, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

const userSelect = `
	SELECT id, email, username, password_hash, verify_code, verify_code_expiry, is_verified, is_accepting
	FROM users
`

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PassHash,
		&u.VerifyCode,
		&u.VerifyCodeExpiry,
		&u.IsVerified,
		&u.IsAccepting,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

// * dsn формирует конфигурацию базы данных.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
