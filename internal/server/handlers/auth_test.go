package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/studylenses/studylenses/internal/server/dto"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	secret := []byte("test-secret")
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("not configured", func(t *testing.T) {
		h := NewAuthHandler(secret, "")
		_, err := h.Login(ctx, &dto.LoginRequest{Password: "hunter2"})
		var ews dto.ErrorWithStatus
		if !errors.As(err, &ews) || ews.StatusCode() != 401 {
			t.Fatalf("err = %v, want 401", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		h := NewAuthHandler(secret, string(hash))
		if _, err := h.Login(ctx, &dto.LoginRequest{Password: "wrong"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("issues verifiable token", func(t *testing.T) {
		h := NewAuthHandler(secret, string(hash))
		resp, err := h.Login(ctx, &dto.LoginRequest{Password: "hunter2"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if resp.ExpiresIn != 86400 {
			t.Errorf("ExpiresIn = %d", resp.ExpiresIn)
		}
		token, err := jwt.Parse(resp.Token, func(tok *jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("token invalid: %v", err)
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub != InstructorSubject {
			t.Errorf("sub = %q, %v", sub, err)
		}
	})
}

func TestSchema(t *testing.T) {
	h := NewSchemaHandler()
	resp, err := h.Schema(context.Background(), &dto.EmptyRequest{})
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if resp.Tree == nil || resp.File == nil || resp.Config == nil || resp.Load == nil {
		t.Error("all payload schemas should be present")
	}
}
