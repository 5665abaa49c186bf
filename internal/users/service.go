// Package users provides account management: signup, login, and the
// subscription-state mutations driven by payment events.
package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/rolohq/rolo/internal/db"
)

// Errors returned by account operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Service provides account management backed by Postgres.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a users service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "users")),
	}
}

const userColumns = `id, email, name, password_hash, subscription_status,
	stripe_customer_id, stripe_subscription_id, created_at`

// Signup creates an account with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, error) {
	if s.pool == nil {
		return User{}, errors.New("users pool not configured")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || strings.TrimSpace(req.Password) == "" {
		return User{}, errors.New("email, name, and password are required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, subscription_status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, name, string(hashed), StatusNone)
	user, _, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return user, nil
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	if s.pool == nil {
		return User{}, errors.New("users pool not configured")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return User{}, ErrInvalidCredentials
	}
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, hash, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	if s.pool == nil {
		return User{}, errors.New("users pool not configured")
	}
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return User{}, err
	}
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, pgID)
	user, _, err := scanUser(row)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ActivateSubscription records a completed first checkout: provider customer
// and subscription identifiers plus an active status. Setting the same values
// twice is a no-op, which is what makes duplicate webhook delivery safe.
func (s *Service) ActivateSubscription(ctx context.Context, userID, customerID, subscriptionID string) error {
	if s.pool == nil {
		return errors.New("users pool not configured")
	}
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE users
		SET subscription_status = $2, stripe_customer_id = $3, stripe_subscription_id = $4,
			updated_at = now()
		WHERE id = $1`,
		pgID, StatusActive, customerID, subscriptionID)
	return err
}

// SetStatusBySubscription sets the subscription status of the user holding the
// given provider subscription id. Matching no user is not an error; the event
// simply has no local effect.
func (s *Service) SetStatusBySubscription(ctx context.Context, subscriptionID, status string) error {
	if s.pool == nil {
		return errors.New("users pool not configured")
	}
	if strings.TrimSpace(subscriptionID) == "" {
		return nil
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET subscription_status = $2, updated_at = now()
		WHERE stripe_subscription_id = $1`,
		subscriptionID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug("subscription event matched no user",
			slog.String("subscription_id", subscriptionID), slog.String("status", status))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, string, error) {
	var (
		id           pgtype.UUID
		passwordHash string
		customerID   pgtype.Text
		subID        pgtype.Text
		createdAt    pgtype.Timestamptz
		user         User
	)
	err := row.Scan(&id, &user.Email, &user.Name, &passwordHash, &user.SubscriptionStatus,
		&customerID, &subID, &createdAt)
	if err != nil {
		return User{}, "", err
	}
	user.ID = db.UUIDToString(id)
	user.StripeCustomerID = db.TextToString(customerID)
	user.StripeSubscriptionID = db.TextToString(subID)
	user.CreatedAt = db.TimeFromPg(createdAt)
	return user, passwordHash, nil
}
