package domain

import "time"

// User is an employee, technician or administrator of the help desk.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Department   string
	IsActive     bool
	CreatedAt    time.Time
}

// Actor returns the access identity of the user.
func (u *User) Actor() Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Role: u.Role}
}
