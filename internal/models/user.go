package models

import "github.com/golang-jwt/jwt/v5"

// UserRole is the role claim of an access token. Tokens are issued by the
// identity service; this API only verifies them.
type UserRole string

const (
	// RoleAdmin and RoleCoordinator may regenerate a term's timetable.
	RoleAdmin       UserRole = "ADMIN"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleInstructor  UserRole = "INSTRUCTOR"
	RoleStudent     UserRole = "STUDENT"
)

// JWTClaims is the access token payload.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}
