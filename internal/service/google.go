package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
)

// GoogleIdentity is the confirmed identity returned by Google after a
// completed OAuth handshake.
type GoogleIdentity struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// AuthenticateGoogle reconciles a Google identity with the local user table:
//
//   - already linked by google_id: authenticate, no mutation
//   - same email registered locally: link the Google id and avatar, trust the
//     provider's email confirmation as verification
//   - no match: create a passwordless, pre-verified account
//
// Matching by email lets a user who registered locally claim Google sign-in
// later without creating a duplicate account.
func (s *AuthService) AuthenticateGoogle(identity GoogleIdentity) (*model.User, error) {
	user, err := s.userRepository.ByGoogleID(identity.ID)
	if err == nil {
		slog.Info("user authenticated via google", "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up google id: %w", err)
	}

	user, err = s.userRepository.ByEmail(identity.Email)
	if err == nil {
		// Link the Google identity to the existing local account
		user.GoogleID = &identity.ID
		if identity.AvatarURL != "" {
			user.AvatarURL = &identity.AvatarURL
		}
		if !user.IsVerified() {
			now := time.Now()
			user.EmailVerifiedAt = &now
		}

		err = s.userRepository.Update(user)
		if err != nil {
			return nil, fmt.Errorf("failed to link google account: %w", err)
		}

		slog.Info("google account linked", "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	now := time.Now()
	user = &model.User{
		ID:              uuid.New().String(),
		Name:            identity.Name,
		Email:           identity.Email,
		GoogleID:        &identity.ID,
		EmailVerifiedAt: &now, // Google has verified the email
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if identity.AvatarURL != "" {
		user.AvatarURL = &identity.AvatarURL
	}

	err = s.userRepository.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new google user created", "user_id", user.ID, "email", user.Email)
	return user, nil
}
