package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messego/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const uniqueViolation = "23505"

// UserRepository abstracts user persistence and the contact directory.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetSummary(ctx context.Context, userID int) (models.UserSummary, error)
	List(ctx context.Context, viewerID int, search string, limit, offset int, excludeSelf bool) ([]models.Contact, int, error)
	MessageStats(ctx context.Context, userID int) (sent int, received int, err error)
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create stores a new user. Email uniqueness is enforced by the store and
// reported as ErrEmailTaken instead of a driver error.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)
         RETURNING id, name, email, password_hash, created_at`,
		name, email, passwordHash).StructScan(&user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by canonical (lower-cased) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetSummary fetches the public view of a user.
func (r *UserRepo) GetSummary(ctx context.Context, userID int) (models.UserSummary, error) {
	var summary models.UserSummary
	err := r.db.GetContext(ctx, &summary,
		`SELECT id, name, email FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserSummary{}, ErrUserNotFound
	}
	return summary, err
}

// List returns directory entries matching the search term, with the total
// count for pagination. Matching is a case-insensitive substring match on
// name or email; the viewer is excluded unless excludeSelf is false.
func (r *UserRepo) List(ctx context.Context, viewerID int, search string, limit, offset int, excludeSelf bool) ([]models.Contact, int, error) {
	where := "WHERE TRUE"
	args := []interface{}{}

	if excludeSelf {
		args = append(args, viewerID)
		where += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users "+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT id, name, email, created_at FROM users %s ORDER BY name ASC, email ASC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	var contacts []models.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// MessageStats counts live messages sent and received by a user.
func (r *UserRepo) MessageStats(ctx context.Context, userID int) (int, int, error) {
	var stats struct {
		Sent     int `db:"sent"`
		Received int `db:"received"`
	}
	err := r.db.GetContext(ctx, &stats,
		`SELECT
            COUNT(*) FILTER (WHERE from_id=$1) AS sent,
            COUNT(*) FILTER (WHERE to_id=$1) AS received
         FROM messages WHERE deleted_at IS NULL AND (from_id=$1 OR to_id=$1)`, userID)
	if err != nil {
		return 0, 0, err
	}
	return stats.Sent, stats.Received, nil
}
