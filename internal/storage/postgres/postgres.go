package postgres

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"todosome/internal/domain/models"
	"todosome/internal/lib/extensions"
	"todosome/internal/storage"
)

const (
	uniqueViolation    = "23505"
	emailUniqueKeyName = "users_email_key"
)

// Private config for using inside postgres storage and open connections
type config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Path     string
}

// Init initialize config instance, explicit storage path wins over DB_* variables
func (c *config) Init(storagePath string) {
	c.Path = storagePath
	c.Host = extensions.GetEnv("DB_HOST", "localhost")
	c.Port = extensions.GetEnv("DB_PORT", "5432")
	c.Username = extensions.GetEnv("DB_USER", "postgres")
	c.Password = extensions.GetEnv("DB_PASS", "postgres")
	c.Database = extensions.GetEnv("DB_NAME", "todosome")
}

// Storage instance for processing sql queries
type Storage struct {
	conf   config
	dbPool *pgxpool.Pool
}

// New initialize an instance of storage db context and checks that database is reachable
func New(ctx context.Context, storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	conf := config{}
	conf.Init(storagePath)
	dbPool, err := pgxpool.New(ctx, getConnString(conf))
	if err != nil {
		return nil, fmt.Errorf("%s: error connecting to database: %w", op, err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("%s: database is unreachable: %w", op, err)
	}

	return &Storage{conf: conf, dbPool: dbPool}, nil
}

// CloseStorage ends database pool connection
func (s *Storage) CloseStorage() {
	s.dbPool.Close()
}

// Ping checks database connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.dbPool.Ping(ctx)
}

// getConnString Constructing database connection string
func getConnString(conf config) string {
	if conf.Path != "" {
		return conf.Path
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", conf.Username, conf.Password, conf.Host, conf.Port, conf.Database)
}

const userColumns = "id, email, pass_hash, is_verified, COALESCE(verification_token, ''), created_at"

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PassHash,
		&user.IsEmailVerified,
		&user.VerificationToken,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// SaveUser saves unverified user in data table 'users'
// Uniqueness of email is guaranteed by the table constraint, not by a preceding lookup
func (s *Storage) SaveUser(ctx context.Context, email string, passHash []byte, verificationToken string) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	user := models.User{
		ID:                uuid.New().String(),
		Email:             email,
		PassHash:          passHash,
		VerificationToken: verificationToken,
	}
	err := s.dbPool.QueryRow(
		ctx,
		"INSERT INTO users(id, email, pass_hash, is_verified, verification_token) VALUES($1, $2, $3, FALSE, $4) RETURNING created_at",
		user.ID,
		user.Email,
		user.PassHash,
		user.VerificationToken,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgxError *pgconn.PgError
		if errors.As(err, &pgxError) {
			if pgxError.Code == uniqueViolation && pgxError.ConstraintName == emailUniqueKeyName {
				return models.User{}, storage.ErrUserExists
			}
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UserByID searches user in database by his ID
func (s *Storage) UserByID(ctx context.Context, userID string) (models.User, error) {
	row := s.dbPool.QueryRow(
		ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		userID,
	)
	return scanUser(row)
}

// User gets user from db by specified his email
func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	row := s.dbPool.QueryRow(
		ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		email,
	)
	return scanUser(row)
}

// UserByVerificationToken gets unverified user owning the token
func (s *Storage) UserByVerificationToken(ctx context.Context, token string) (models.User, error) {
	row := s.dbPool.QueryRow(
		ctx,
		"SELECT "+userColumns+" FROM users WHERE verification_token = $1",
		token,
	)
	return scanUser(row)
}

// Profile returns public user's data
func (s *Storage) Profile(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := s.dbPool.QueryRow(
		ctx,
		"SELECT id, email FROM users WHERE id = $1",
		userID,
	).Scan(&profile.ID, &profile.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, storage.ErrUserNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}

// MarkVerified confirms user's email and clears verification token
// Returns false when user was already verified (or absent), nothing changes then
func (s *Storage) MarkVerified(ctx context.Context, userID string) (bool, error) {
	const op = "storage.postgres.MarkVerified"

	tag, err := s.dbPool.Exec(
		ctx,
		"UPDATE users SET is_verified = TRUE, verification_token = NULL WHERE id = $1 AND is_verified = FALSE",
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteUser removes user and his tasks
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	const op = "storage.postgres.DeleteUser"

	tag, err := s.dbPool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}
