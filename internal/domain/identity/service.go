package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// allocationAttempts bounds the retry loop when concurrent signups race for
// the same generated employee id.
const allocationAttempts = 5

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Register(ctx context.Context, input NewUser) (Profile, error) {
	hash, err := PrepareCredential(input.Password)
	if err != nil {
		return Profile{}, err
	}
	created, err := s.store.CreateUser(ctx, User{
		EmployeeID:   input.EmployeeID,
		Username:     input.Username,
		PasswordHash: hash,
		Name:         input.Name,
		Email:        input.Email,
		Department:   input.Department,
		Position:     input.Position,
	})
	if err != nil {
		return Profile{}, err
	}
	return created.Profile(), nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (Profile, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return Profile{}, ErrInvalidCredentials
	}
	return user.Profile(), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]Profile, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}
	return profiles, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	hash, err := PrepareCredential(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, userID, hash)
}

// RequestAccess self-provisions an account for a company email address. The
// employee id comes from the EMP-GEN series; if a concurrent signup takes the
// candidate id first, the unique index rejects the insert and allocation is
// retried with the next number.
func (s *Service) RequestAccess(ctx context.Context, req AccessRequest, allowedDomain, tempPassword string) (Credentials, Profile, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.HasSuffix(email, "@"+strings.ToLower(allowedDomain)) {
		return Credentials{}, Profile{}, ErrEmailDomainNotAllowed
	}

	department := req.Department
	if department == "" {
		department = "general"
	}

	hash, err := PrepareCredential(tempPassword)
	if err != nil {
		return Credentials{}, Profile{}, err
	}

	var lastErr error
	for attempt := 0; attempt < allocationAttempts; attempt++ {
		last, err := s.store.LastGeneratedEmployeeID(ctx)
		if err != nil {
			return Credentials{}, Profile{}, err
		}
		employeeID := NextEmployeeID(last)

		created, err := s.store.CreateUser(ctx, User{
			EmployeeID:   employeeID,
			Username:     req.Username,
			PasswordHash: hash,
			Name:         req.Name,
			Email:        email,
			Department:   department,
			Position:     "Employee",
		})
		if errors.Is(err, ErrDuplicateEmployeeID) {
			lastErr = err
			continue
		}
		if err != nil {
			return Credentials{}, Profile{}, err
		}

		credentials := Credentials{
			EmployeeID:   created.EmployeeID,
			Username:     created.Username,
			TempPassword: tempPassword,
			Email:        created.Email,
		}
		return credentials, created.Profile(), nil
	}
	return Credentials{}, Profile{}, fmt.Errorf("employee id allocation exhausted after %d attempts: %w", allocationAttempts, lastErr)
}
