package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unimatch/unimatch-backend/internal/model"
)

// UserRepository reads student profiles maintained by the external account
// system; the core only needs the test scores for match evaluation.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns the user, or nil (no error) when the id is unknown.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT user_id, name, email, gpa, sat_score, act_score FROM users WHERE user_id = $1`
	u := &model.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.GPA, &u.SATScore, &u.ACTScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, gpa, sat_score, act_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id`
	return r.db.QueryRow(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.GPA, user.SATScore, user.ACTScore,
	).Scan(&user.ID)
}
