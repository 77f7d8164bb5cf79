package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages user profiles and payout destinations.
type Service struct {
	repo Repository
}

// NewService creates a new profile service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures signup data.
type RegisterInput struct {
	Phone      string
	PIN        string
	ReferredBy string
}

// Register creates a user and stores a hashed PIN. The referral link is set
// once at signup and never mutated afterwards.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if len(input.PIN) < 4 {
		return User{}, errors.New("PIN must be at least 4 digits")
	}

	if _, err := s.repo.FindUserByPhone(ctx, input.Phone); err == nil {
		return User{}, ErrPhoneTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	if input.ReferredBy != "" {
		if _, err := s.repo.FindUserByID(ctx, input.ReferredBy); err != nil {
			if errors.Is(err, ErrNotFound) {
				return User{}, ErrReferrerNotFound
			}
			return User{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:         uuid.NewString(),
		Phone:      input.Phone,
		PINHash:    hash,
		ReferredBy: input.ReferredBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// Referrer returns the id of the user's referrer, or empty if none.
func (s *Service) Referrer(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.ReferredBy, nil
}

// AddDestination validates and stores a payout destination.
func (s *Service) AddDestination(ctx context.Context, dest PayoutDestination) (PayoutDestination, error) {
	if _, err := s.repo.FindUserByID(ctx, dest.UserID); err != nil {
		return PayoutDestination{}, err
	}
	if !dest.Valid() {
		return PayoutDestination{}, ErrInvalidDestination
	}

	dest.ID = uuid.NewString()
	dest.CreatedAt = time.Now().UTC()
	if err := s.repo.AddDestination(ctx, dest); err != nil {
		return PayoutDestination{}, err
	}
	return dest, nil
}

// Destination fetches a payout destination.
func (s *Service) Destination(ctx context.Context, id string) (PayoutDestination, error) {
	return s.repo.GetDestination(ctx, id)
}

// Destinations lists the user's payout destinations.
func (s *Service) Destinations(ctx context.Context, userID string) ([]PayoutDestination, error) {
	return s.repo.ListDestinations(ctx, userID)
}
