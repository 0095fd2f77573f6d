package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// CreateUser inserts the record and relies on the unique indexes as the
// authoritative duplicate check: a pre-read cannot close the window between
// check and write, so a 23505 at insert time is mapped to a field-specific
// duplicate error.
func (s *Store) CreateUser(ctx context.Context, user User) (User, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (employee_id, username, password_hash, name, email, department, position)
    VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''))
    RETURNING id, created_at
  `, user.EmployeeID, user.Username, user.PasswordHash, user.Name, user.Email, user.Department, user.Position).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if dup := mapDuplicate(err); dup != nil {
			return User{}, dup
		}
		return User{}, err
	}
	return user, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, username, password_hash, name, COALESCE(email, ''), department, COALESCE(position, ''), created_at
    FROM users
    WHERE username = $1
  `, username).Scan(&user.ID, &user.EmployeeID, &user.Username, &user.PasswordHash, &user.Name, &user.Email, &user.Department, &user.Position, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, username, password_hash, name, COALESCE(email, ''), department, COALESCE(position, ''), created_at
    FROM users
    ORDER BY created_at, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.EmployeeID, &user.Username, &user.PasswordHash, &user.Name, &user.Email, &user.Department, &user.Position, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) LastGeneratedEmployeeID(ctx context.Context) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id
    FROM users
    WHERE employee_id ~ '^EMP-GEN-[0-9]+$'
    ORDER BY created_at DESC, id DESC
    LIMIT 1
  `).Scan(&employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return employeeID, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2", hash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_employee_id_key":
		return ErrDuplicateEmployeeID
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	}
	return ErrDuplicateIdentity
}
