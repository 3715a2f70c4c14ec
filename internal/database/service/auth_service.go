package service

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/saleswise/backend-go/internal/config"
	"github.com/saleswise/backend-go/internal/database/models"
	"github.com/saleswise/backend-go/internal/database/repository"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(email, password string) (*models.User, string, error)
	Login(email, password string) (*models.User, string, error)
	ChangePassword(callerID uint, targetEmail, newPassword string) error
	ValidateToken(tokenString string) (*models.User, error)
	EnsureStaffUser(email, password string) error
}

// TokenClaims is the payload of an access token.
// The registered ID (jti) must equal the auth token stored on the user.
type TokenClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: cfg.JWTSecret,
		cfg:       cfg,
		logger:    logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}

	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return nil, "", ErrEmailAlreadyExists
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		if !errors.Is(err, ErrPasswordTooLong) {
			s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		}
		return nil, "", err
	}

	tokenID := uuid.NewString()
	user := &models.User{
		Email:     email,
		Password:  hashedPassword,
		AuthToken: &tokenID,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			// Lost a race with a concurrent registration
			s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
			return nil, "", ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return nil, "", err
	}

	token, err := s.signToken(user.ID, tokenID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to sign token", "error", err)
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) Login(email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, "", ErrInvalidCredentials
	}

	// Rotate: the previous token stops validating once the new id is stored
	tokenID := uuid.NewString()
	user.AuthToken = &tokenID
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("❌ [AuthService] Failed to rotate token", "error", err)
		return nil, "", err
	}

	token, err := s.signToken(user.ID, tokenID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to sign token", "error", err)
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) ChangePassword(callerID uint, targetEmail, newPassword string) error {
	s.logger.Info("🔑 [AuthService] Password change attempt", "caller_id", callerID, "target", targetEmail)

	caller, err := s.userRepo.FindByID(callerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrForbidden
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return err
	}

	if !caller.IsStaff {
		s.logger.Warn("⚠️ [AuthService] Non-staff user attempted password change", "caller_id", callerID)
		return ErrForbidden
	}

	target, err := s.userRepo.FindByEmail(normalizeEmail(targetEmail))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] Password change target not found", "target", targetEmail)
			return repository.ErrUserNotFound
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return err
	}

	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		if !errors.Is(err, ErrPasswordTooLong) {
			s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		}
		return err
	}

	// A reset signs the target out of every session
	target.Password = hashedPassword
	target.AuthToken = nil
	if err := s.userRepo.Update(target); err != nil {
		s.logger.Error("❌ [AuthService] Failed to update password", "error", err)
		return err
	}

	s.logger.Info("✅ [AuthService] Password changed", "user_id", target.ID, "caller_id", callerID)
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*models.User, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByAuthToken(claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if user.ID != claims.UserID {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// EnsureStaffUser creates the bootstrap staff account, or promotes it if it already exists
func (s *authService) EnsureStaffUser(email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	if user != nil {
		if user.IsStaff {
			return nil
		}
		user.IsStaff = true
		if err := s.userRepo.Update(user); err != nil {
			return err
		}
		s.logger.Info("👑 [AuthService] Promoted user to staff", "user_id", user.ID)
		return nil
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	user = &models.User{
		Email:    email,
		Password: hashedPassword,
		IsStaff:  true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	s.logger.Info("👑 [AuthService] Created staff user", "user_id", user.ID)
	return nil
}

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

func hashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *authService) signToken(userID uint, tokenID string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.TokenExpiration) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("only staff users can change passwords")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)
