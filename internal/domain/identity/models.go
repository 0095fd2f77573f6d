package identity

import "time"

type User struct {
	ID           int64
	EmployeeID   string
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Department   string
	Position     string
	CreatedAt    time.Time
}

// Profile is the externally visible user shape. It carries no hash field, so
// no serialization path can expose credentials.
type Profile struct {
	ID         int64     `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department"`
	Position   string    `json:"position,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Position:   u.Position,
		CreatedAt:  u.CreatedAt,
	}
}

type NewUser struct {
	EmployeeID string
	Username   string
	Password   string
	Name       string
	Email      string
	Department string
	Position   string
}

type AccessRequest struct {
	Email      string
	Username   string
	Name       string
	Department string
}

// Credentials is returned once from RequestAccess so the caller can hand the
// temporary password to the new employee.
type Credentials struct {
	EmployeeID   string `json:"employeeId"`
	Username     string `json:"username"`
	TempPassword string `json:"tempPassword"`
	Email        string `json:"email"`
}
