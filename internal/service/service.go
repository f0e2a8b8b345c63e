package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/jdmdelivery/pawn-service/internal/config"
	"github.com/jdmdelivery/pawn-service/internal/repository"
	"github.com/jdmdelivery/pawn-service/internal/utils/email"
)

// Storage sentinels re-exported so callers map every business error off
// one package.
var (
	ErrNotFound          = repository.ErrNotFound
	ErrPrincipalExceeded = repository.ErrPrincipalExceeded
)

var (
	// ErrInvalidAmount is returned when a money value is missing, negative or not finite.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrLoanNotActive is returned when a money operation targets a non-active loan.
	ErrLoanNotActive = errors.New("loan is not active")

	// ErrForbidden is returned when the caller lacks the role for an operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrTokenInvalid is returned for unknown or expired password reset tokens.
	ErrTokenInvalid = errors.New("reset token is invalid or expired")
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	mailer *email.Sender
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, mailer *email.Sender) *Service {
	return &Service{repo: repo, log: log, config: cfg, mailer: mailer}
}
