// Defines shared service dependencies for handlers.

package handlers

import (
	"github.com/studylenses/studylenses/internal/github"
	"github.com/studylenses/studylenses/internal/session"
)

// Services holds all service dependencies for handlers.
type Services struct {
	Session *session.Session
	GitHub  *github.Client
}

// Config holds configuration values needed by handlers.
type Config struct {
	JWTSecret []byte
	// InstructorPasswordHash is the bcrypt hash checked at login. Empty
	// disables the instructor endpoints.
	InstructorPasswordHash string
	Version                string
	// MaxRequestBodyBytes caps request bodies; 0 means no cap.
	MaxRequestBodyBytes int64
}
