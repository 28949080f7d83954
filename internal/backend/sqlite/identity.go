package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"psyplanner/internal/backend"
	"psyplanner/internal/model"
)

const (
	secretFileName = "secret"
	tokenFileName  = "session.jwt"
	tokenTTL       = 30 * 24 * time.Hour
	minPasswordLen = 6
)

type sessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SignIn verifies credentials and persists a fresh session token. Credential
// failures come back as *backend.AuthError so the message can be shown
// verbatim.
func (s *Store) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = normalizeEmail(email)

	var u model.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password_hash FROM users WHERE email = ?", email,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.NewAuthError(backend.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, backend.NewAuthError(backend.ErrInvalidCredentials)
	}

	return s.openSession(ctx, &u)
}

// SignUp creates an account and signs it in.
func (s *Store) SignUp(ctx context.Context, email, password, displayName string) (*model.Session, error) {
	email = normalizeEmail(email)

	if len(password) < minPasswordLen {
		return nil, backend.NewAuthError(backend.ErrWeakPassword)
	}

	var exists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM users WHERE email = ?", email,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return nil, backend.NewAuthError(backend.ErrEmailExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.openSession(ctx, &u)
}

// SignOut revokes the persisted session, if any.
func (s *Store) SignOut(ctx context.Context) error {
	token, err := s.readToken()
	if err != nil || token == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return os.Remove(s.tokenPath())
}

// Current restores the persisted session. Expired, tampered, or revoked
// tokens are treated as "no session" and cleaned up rather than reported.
func (s *Store) Current(ctx context.Context) (*model.Session, error) {
	token, err := s.readToken()
	if err != nil || token == "" {
		return nil, nil
	}

	claims, err := s.parseToken(token)
	if err != nil {
		_ = os.Remove(s.tokenPath())
		return nil, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM auth_sessions WHERE token = ? AND expires_at > ?",
		token, time.Now().UTC().Format(time.RFC3339),
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if count == 0 {
		_ = os.Remove(s.tokenPath())
		return nil, nil
	}

	return &model.Session{UserID: claims.UserID, Email: claims.Email}, nil
}

func (s *Store) openSession(ctx context.Context, u *model.User) (*model.Session, error) {
	now := time.Now().UTC()
	claims := &sessionClaims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	secret, err := s.signingSecret()
	if err != nil {
		return nil, err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO auth_sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
		token, u.ID, now.Format(time.RFC3339), now.Add(tokenTTL).Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := os.WriteFile(s.tokenPath(), []byte(token), 0o600); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	return &model.Session{UserID: u.ID, Email: u.Email}, nil
}

func (s *Store) parseToken(token string) (*sessionClaims, error) {
	secret, err := s.signingSecret()
	if err != nil {
		return nil, err
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// signingSecret reads the per-install HMAC secret, generating it on first use.
func (s *Store) signingSecret() ([]byte, error) {
	path := filepath.Join(s.dir, secretFileName)
	if b, err := os.ReadFile(path); err == nil && len(b) > 0 {
		return b, nil
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := []byte(hex.EncodeToString(raw))
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("persist secret: %w", err)
	}
	return secret, nil
}

func (s *Store) tokenPath() string { return filepath.Join(s.dir, tokenFileName) }

func (s *Store) readToken() (string, error) {
	b, err := os.ReadFile(s.tokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
