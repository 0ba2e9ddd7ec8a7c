package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/validation"
)

type UserService struct {
	userRepository repository.UserRepository
	codeRepository repository.VerificationCodeRepository
	authService    *AuthService
	mailer         VerificationMailer
}

func NewUserService(
	userRepository repository.UserRepository,
	codeRepository repository.VerificationCodeRepository,
	authService *AuthService,
	mailer VerificationMailer,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		codeRepository: codeRepository,
		authService:    authService,
		mailer:         mailer,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

func (s *UserService) Count() (int, error) {
	return s.userRepository.Count()
}

// UpdateProfile changes name and email. Changing the email clears the
// verification timestamp and issues a fresh code to the new address; this is
// the only path that ever resets verification.
func (s *UserService) UpdateProfile(userID, name, email string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	fields := map[string]string{}
	if err := validation.ValidateName(name); err != nil {
		fields["name"] = err.Error()
	}
	if err := validation.ValidateEmail(email); err != nil {
		fields["email"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	emailChanged := email != user.Email
	if emailChanged {
		existing, err := s.userRepository.ByEmail(email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil {
			return nil, newValidationError("email", "email already in use")
		}

		user.Email = email
		user.EmailVerifiedAt = nil
	}
	user.Name = name

	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if emailChanged {
		vc, err := s.authService.IssueVerificationCode(user)
		if err != nil {
			slog.Warn("failed to issue verification code after email change", "error", err, "user_id", user.ID)
		} else {
			s.mailer.QueueVerificationCode(user.Email, user.Name, vc.Code)
		}
		slog.Info("email changed, verification reset", "user_id", user.ID)
	}

	return user, nil
}

// ChangePassword sets a new password. Accounts that already have one must
// present the current password; Google-only accounts may set one directly.
func (s *UserService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.HasPassword() {
		err = s.authService.ComparePassword(currentPassword, *user.PasswordHash)
		if err != nil {
			return newValidationError("current_password", "current password is incorrect")
		}
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return newValidationError("password", err.Error())
	}

	hashed, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &hashed
	err = s.userRepository.Update(user)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}

// DeleteAccount removes the user and, via foreign keys, all owned categories
// and transactions. Local-credential accounts must confirm with their
// password.
func (s *UserService) DeleteAccount(userID, password string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.HasPassword() {
		err = s.authService.ComparePassword(password, *user.PasswordHash)
		if err != nil {
			return newValidationError("password", "password is incorrect")
		}
	}

	err = s.userRepository.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}
