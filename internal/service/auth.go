package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdmdelivery/pawn-service/internal/middleware"
	"github.com/jdmdelivery/pawn-service/internal/models"
	"github.com/jdmdelivery/pawn-service/internal/repository"
	"github.com/jdmdelivery/pawn-service/internal/utils/email"
)

const resetTokenTTL = time.Hour

// resetBaseURL picks the address embedded in reset links: the configured
// public URL when set, otherwise the header-derived fallback.
func resetBaseURL(configured, fallback string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	return strings.TrimRight(fallback, "/")
}

// Login authenticates a user and returns a JWT token plus the account.
func (s *Service) Login(username, password string) (string, *models.User, error) {
	user, err := s.repo.FindUserByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := &middleware.Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return tokenString, user, nil
}

// CreateUser registers a new staff account with a hashed password.
func (s *Service) CreateUser(name, username, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	if name == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: name, username and password are required", ErrValidation)
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		role = models.RoleStaff
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Username: username,
		PassHash: string(hashedPassword),
		Role:     role,
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s (%s)", user.Username, user.Role)
	return user, nil
}

// ListUsers returns all staff accounts.
func (s *Service) ListUsers() ([]*models.User, error) {
	return s.repo.ListUsers()
}

// DeleteUser removes a staff account. The caller cannot delete themselves.
func (s *Service) DeleteUser(callerID, id int64) error {
	if callerID == id {
		return fmt.Errorf("%w: cannot delete own account", ErrValidation)
	}
	if err := s.repo.DeleteUser(id); err != nil {
		return err
	}
	s.log.Infof("User %d deleted", id)
	return nil
}

// VerifyCallerPassword re-checks the caller's own password. Destructive
// operations require it in addition to a valid token.
func (s *Service) VerifyCallerPassword(callerID int64, password string) error {
	user, err := s.repo.FindUserByID(callerID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// RecoverPasswords mints an hour-long reset token per user and mails the
// links to the configured recovery address. The configured public base URL
// wins over the caller-supplied fallback, which is derived from request
// headers and therefore forgeable.
func (s *Service) RecoverPasswords(fallbackBaseURL string) error {
	if s.config.RecoveryEmail == "" {
		return fmt.Errorf("%w: no recovery email configured", ErrValidation)
	}

	baseURL := resetBaseURL(s.config.PublicBaseURL, fallbackBaseURL)

	users, err := s.repo.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return repository.ErrNotFound
	}

	_ = s.repo.PurgeExpiredResets(time.Now())

	links := make([]email.ResetLink, 0, len(users))
	for _, u := range users {
		reset := &models.PasswordReset{
			Token:     uuid.NewString(),
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(resetTokenTTL),
			CreatedAt: time.Now(),
		}
		if err := s.repo.CreatePasswordReset(reset); err != nil {
			return err
		}
		links = append(links, email.ResetLink{
			Username: u.Username,
			URL: fmt.Sprintf("%s/reset-password?token=%s&user=%d",
				baseURL, reset.Token, u.ID),
		})
	}

	if err := s.mailer.SendPasswordRecovery(s.config.RecoveryEmail, links); err != nil {
		return err
	}
	s.log.Infof("Recovery links sent for %d user(s)", len(links))
	return nil
}

// ResetPassword consumes a recovery token and sets a new password.
func (s *Service) ResetPassword(token string, userID int64, newPassword string) error {
	if len(newPassword) < 4 {
		return fmt.Errorf("%w: password too short", ErrValidation)
	}

	reset, err := s.repo.FindPasswordReset(token, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if time.Now().After(reset.ExpiresAt) {
		_ = s.repo.DeletePasswordReset(token)
		return ErrTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(userID, string(hashedPassword)); err != nil {
		return err
	}
	if err := s.repo.DeletePasswordReset(token); err != nil {
		return err
	}

	s.log.Infof("Password reset for user %d", userID)
	return nil
}
