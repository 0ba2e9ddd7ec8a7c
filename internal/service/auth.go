package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/uangku/uangku/internal/limiter"
	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCodeExpired        = errors.New("verification code has expired")
	ErrPasswordRequired   = errors.New("password confirmation required")
)

// VerificationMailer queues account notifications for out-of-band delivery.
// Implementations must not block.
type VerificationMailer interface {
	QueueVerificationCode(email, name, code string)
	QueueWelcome(email, name string)
}

type AuthService struct {
	userRepository  repository.UserRepository
	codeRepository  repository.VerificationCodeRepository
	mailer          VerificationMailer
	registerLimiter *limiter.Limiter
	resendLimiter   *limiter.Limiter
	jwtSecret       string
	isProduction    bool
	jwtExpiry       time.Duration
	codeExpiry      time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	codeRepository repository.VerificationCodeRepository,
	mailer VerificationMailer,
	registerLimiter *limiter.Limiter,
	resendLimiter *limiter.Limiter,
	jwtSecret string,
	isProduction bool,
	jwtExpiry time.Duration,
	codeExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:  userRepository,
		codeRepository:  codeRepository,
		mailer:          mailer,
		registerLimiter: registerLimiter,
		resendLimiter:   resendLimiter,
		jwtSecret:       jwtSecret,
		isProduction:    isProduction,
		jwtExpiry:       jwtExpiry,
		codeExpiry:      codeExpiry,
	}
}

// Register creates a local-credential account. The throttle is keyed purely
// by client IP, not by email: repeated registrations from one address are
// blocked for the decay window even for different emails. Users behind
// shared NAT can be collaterally blocked; that is the accepted tradeoff.
func (s *AuthService) Register(ctx context.Context, name, email, password, clientIP string) (*model.User, error) {
	throttleKey := "register:" + clientIP

	err := s.registerLimiter.Check(ctx, throttleKey)
	if err != nil {
		return nil, err
	}

	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	fields := map[string]string{}
	if err := validation.ValidateName(name); err != nil {
		fields["name"] = err.Error()
	}
	if err := validation.ValidateEmail(email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: &hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, newValidationError("email", "email already in use")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.sendVerificationCode(user)
	if err != nil {
		// Account exists; the user can request a resend
		slog.Warn("failed to issue verification code", "error", err, "user_id", user.ID)
	}

	// Counted once, only after a successful registration
	err = s.registerLimiter.Hit(ctx, throttleKey)
	if err != nil {
		slog.Warn("failed to record registration attempt", "error", err, "key", throttleKey)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		// Google-only account
		return nil, ErrInvalidCredentials
	}

	err = s.ComparePassword(password, *user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueVerificationCode replaces any live code for the user with a fresh
// uniformly random 6-digit code expiring after the configured window.
func (s *AuthService) IssueVerificationCode(user *model.User) (*model.VerificationCode, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	vc := &model.VerificationCode{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.codeExpiry),
		CreatedAt: time.Now(),
	}

	err = s.codeRepository.Replace(vc)
	if err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	return vc, nil
}

// VerifyEmailCode consumes a submitted code. An already-verified user
// short-circuits to success before any code is touched. An expired code is
// deleted as a side effect so a stale code cannot be retried.
func (s *AuthService) VerifyEmailCode(user *model.User, submitted string) error {
	if user.IsVerified() {
		return nil
	}

	vc, err := s.codeRepository.ByUserAndCode(user.ID, submitted)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return repository.ErrCodeNotFound
		}
		return fmt.Errorf("failed to look up code: %w", err)
	}

	if vc.IsExpired() {
		err = s.codeRepository.Delete(vc.ID)
		if err != nil {
			slog.Warn("failed to delete expired code", "error", err, "user_id", user.ID)
		}
		return ErrCodeExpired
	}

	// The caller's user usually comes off the request context with the
	// password hash stripped, and Update persists every column. Write a
	// fresh copy so the stored hash survives.
	fresh, err := s.userRepository.ByID(user.ID)
	if err != nil {
		return fmt.Errorf("failed to reload user: %w", err)
	}

	now := time.Now()
	fresh.EmailVerifiedAt = &now
	err = s.userRepository.Update(fresh)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	user.EmailVerifiedAt = &now

	s.mailer.QueueWelcome(user.Email, user.Name)

	err = s.codeRepository.DeleteByUser(user.ID)
	if err != nil {
		slog.Warn("failed to delete consumed code", "error", err, "user_id", user.ID)
	}

	slog.Info("email verified", "user_id", user.ID)
	return nil
}

// ResendVerificationCode reissues and redispatches a code, throttled per
// user to prevent notification spam.
func (s *AuthService) ResendVerificationCode(ctx context.Context, user *model.User) error {
	if user.IsVerified() {
		return nil
	}

	err := s.resendLimiter.Allow(ctx, "resend:"+user.ID)
	if err != nil {
		return err
	}

	return s.sendVerificationCode(user)
}

func (s *AuthService) sendVerificationCode(user *model.User) error {
	vc, err := s.IssueVerificationCode(user)
	if err != nil {
		return err
	}

	s.mailer.QueueVerificationCode(user.Email, user.Name, vc.Code)
	return nil
}

// generateCode draws a uniformly random 6-digit code (000000-999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) JWTExpiry() time.Duration {
	return s.jwtExpiry
}
