// Handles instructor authentication.

package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/studylenses/studylenses/internal/server/dto"
	"github.com/studylenses/studylenses/internal/server/reqctx"
)

const tokenExpiration = 24 * time.Hour

// InstructorSubject is the JWT subject claim for the single instructor role.
const InstructorSubject = "instructor"

// AuthHandler handles instructor login. There is exactly one instructor,
// identified by a password whose bcrypt hash lives in the server config; no
// user store is involved.
type AuthHandler struct {
	jwtSecret    []byte
	passwordHash string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(jwtSecret []byte, passwordHash string) *AuthHandler {
	return &AuthHandler{jwtSecret: jwtSecret, passwordHash: passwordHash}
}

// Login checks the instructor password and returns a bearer token.
func (h *AuthHandler) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if h.passwordHash == "" || len(h.jwtSecret) == 0 {
		return nil, dto.Unauthorized().WithDetail("reason", "instructor login not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		slog.WarnContext(ctx, "Failed instructor login", "ip", reqctx.ClientIP(ctx))
		return nil, dto.Unauthorized()
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": InstructorSubject,
		"iat": now.Unix(),
		"exp": now.Add(tokenExpiration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return nil, dto.Internal("failed to sign token")
	}
	slog.InfoContext(ctx, "Instructor logged in", "ip", reqctx.ClientIP(ctx))
	return &dto.LoginResponse{
		Token:     signed,
		ExpiresIn: int(tokenExpiration.Seconds()),
	}, nil
}
