// Package users manages accounts and credential verification.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUser      = errors.New("email or username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	UserType  string    `json:"user_type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	UserType string `json:"user_type" validate:"required,oneof=EMPLOYEE CAFE_OWNER SUPER_ADMIN"`
}

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const userColumns = `id, email, username, full_name, user_type, is_active, created_at`

// InsertUser registers an account with a bcrypt-hashed password.
func (c *Conf) InsertUser(ctx context.Context, nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	var existing int64
	err = c.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = $1 OR username = $2`, nu.Email, nu.Username).Scan(&existing)
	if err == nil {
		return User{}, ErrDuplicateUser
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("failed to query users: %w", err)
	}

	var user User
	query := `
		INSERT INTO users (email, username, hashed_password, full_name, user_type, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW())
		RETURNING ` + userColumns
	err = c.db.QueryRowContext(ctx, query, nu.Email, nu.Username, string(hash), nu.FullName, nu.UserType).
		Scan(&user.ID, &user.Email, &user.Username, &user.FullName,
			&user.UserType, &user.IsActive, &user.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// Authenticate verifies a username/password pair for an active account.
func (c *Conf) Authenticate(ctx context.Context, username, password string) (User, error) {
	var (
		user User
		hash string
	)
	query := `SELECT ` + userColumns + `, hashed_password FROM users WHERE username = $1 AND is_active = TRUE`
	err := c.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Email, &user.Username, &user.FullName,
			&user.UserType, &user.IsActive, &user.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (c *Conf) GetByID(ctx context.Context, id int64) (User, error) {
	var user User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := c.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.Username, &user.FullName,
			&user.UserType, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}
