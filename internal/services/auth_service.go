package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/catalogapi/internal/metrics"
	"github.com/example/catalogapi/internal/models"
	"github.com/example/catalogapi/internal/utils"
)

// TokenTTL is the lifetime of an issued bearer token.
const TokenTTL = 4 * time.Hour

// AuthService registers users, checks credentials and issues and verifies
// bearer tokens. The secret both peppers password hashes and signs tokens.
type AuthService struct {
	users   UserRepository
	secret  string
	log     *zap.Logger
	metrics *metrics.Metrics

	// dummyHash is compared against for unknown emails so that a miss costs
	// the same bcrypt work as a wrong password.
	dummyHash string
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserRepository, secret string, log *zap.Logger, m *metrics.Metrics) (*AuthService, error) {
	dummy, err := utils.HashPassword(uuid.NewString(), secret)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:     users,
		secret:    secret,
		log:       log,
		metrics:   m,
		dummyHash: dummy,
	}, nil
}

// Register validates the identity and stores a new user. Email is checked for
// uniqueness before mobile; both checks and the insert share one transaction.
func (s *AuthService) Register(ctx context.Context, in RegistrationInput) (uuid.UUID, error) {
	identity, err := ValidateRegistration(in)
	if err != nil {
		s.metrics.AuthEvent("register", false)
		return uuid.Nil, err
	}

	hash, err := utils.HashPassword(identity.Password, s.secret)
	if err != nil {
		s.log.Error("hash password", zap.Error(err))
		return uuid.Nil, upstream(err)
	}

	user := &models.User{
		Name:     identity.Name,
		Email:    identity.Email,
		Mobile:   identity.Mobile,
		Password: hash,
	}

	err = s.users.Transaction(ctx, func(repo UserRepository) error {
		exists, err := repo.EmailExists(ctx, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}

		exists, err = repo.MobileExists(ctx, user.Mobile)
		if err != nil {
			return err
		}
		if exists {
			return ErrMobileExists
		}

		return repo.Create(ctx, user)
	})
	if err != nil {
		s.metrics.AuthEvent("register", false)
		return uuid.Nil, wrapStoreError(s.log, "register user", err)
	}

	s.metrics.AuthEvent("register", true)
	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user.ID, nil
}

// Authenticate checks email and password and returns a signed token valid for
// TokenTTL. Unknown email and wrong password fail identically.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	if err := validateLogin(email, password); err != nil {
		s.metrics.AuthEvent("login", false)
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.AuthEvent("login", false)
		return "", wrapStoreError(s.log, "find user", err)
	}

	if user == nil {
		utils.CheckPassword(s.dummyHash, password, s.secret)
		s.metrics.AuthEvent("login", false)
		return "", ErrInvalidCredentials
	}

	if !utils.CheckPassword(user.Password, password, s.secret) {
		s.metrics.AuthEvent("login", false)
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.secret, user.ID, TokenTTL)
	if err != nil {
		s.log.Error("sign token", zap.Error(err))
		return "", upstream(err)
	}

	s.metrics.AuthEvent("login", true)
	return token, nil
}

// VerifyToken returns the user id carried by a bearer token.
func (s *AuthService) VerifyToken(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrMissingToken
	}

	userID, err := utils.ParseToken(s.secret, token)
	if err != nil {
		s.log.Debug("token rejected", zap.Error(err))
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}

// wrapStoreError passes service errors through and wraps anything else as
// an upstream failure, logging the cause.
func wrapStoreError(log *zap.Logger, op string, err error) error {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	log.Error(op, zap.Error(err))
	return upstream(err)
}
