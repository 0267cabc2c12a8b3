package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"pawfectBack/internal/models"
)

type UserRepository struct {
	DB   *sql.DB
	once sync.Once
	err  error
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) ensureSchema(ctx context.Context) error {
	r.once.Do(func() {
		const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id INT NOT NULL AUTO_INCREMENT,
  name VARCHAR(255) NOT NULL DEFAULT '',
  email VARCHAR(255) NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  role VARCHAR(32) NOT NULL DEFAULT 'user',
  refresh_token VARCHAR(128) NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
		_, r.err = r.DB.ExecContext(ctx, ddl)
	})
	return r.err
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (int, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		user.Name, user.Email, user.Password, user.Role,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, models.ErrDuplicateEmail
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return models.User{}, err
	}
	var user models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return models.User{}, err
	}
	var user models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) SaveRefreshToken(ctx context.Context, userID int, token string) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = ? WHERE id = ?`, token, userID,
	)
	return err
}
