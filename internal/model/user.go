package model

import "time"

// Professor permissions embedded in JWT claims.
const (
	PermissionSessionsRead  = "sessions:read"
	PermissionSessionsWrite = "sessions:write"
	PermissionGradingsWrite = "gradings:write"
	PermissionGradingsSign  = "gradings:sign"
	PermissionBanksWrite    = "banks:write"
)

// AllProfessorPermissions is granted by cmd/create-professor.
var AllProfessorPermissions = []string{
	PermissionSessionsRead,
	PermissionSessionsWrite,
	PermissionGradingsWrite,
	PermissionGradingsSign,
	PermissionBanksWrite,
}

// Professor is a grading-side user, scoped to one or more groups.
type Professor struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Groups       []string  `json:"groups"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
}

// Student is an exam-taking user. Answers and gradings key on Email.
type Student struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is shared by professor and student login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
