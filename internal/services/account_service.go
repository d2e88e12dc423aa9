package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store"
)

// AccountService handles registration, login and profile management. New
// accounts always start in Good standing and are never created as Admin or
// Moderator through the public endpoint.
type AccountService struct {
	store store.Store
}

func NewAccountService(s store.Store) *AccountService {
	return &AccountService{store: s}
}

func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.Users().FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:             uuid.New().String(),
		Username:       username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          email,
		Status:         models.StatusGood,
		AccountType:    req.AccountType,
		Public:         false,
		PasswordHash:   string(hash),
		AccountCreated: time.Now().UTC(),
	}
	if err := s.store.Users().Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	user, err := s.store.Users().FindByUsername(ctx, strings.ToLower(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	set := map[string]string{}
	if req.FirstName != nil {
		set["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		set["last_name"] = *req.LastName
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		// Make sure a different user is not already using the email address.
		if existing, err := s.store.Users().FindByEmail(ctx, email); err == nil && existing.ID != userID {
			return nil, ErrEmailExists
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		set["email"] = email
	}

	if err := s.store.Users().UpdateProfile(ctx, userID, set); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, userID)
}

func (s *AccountService) UpdateSettings(ctx context.Context, userID string, public bool) error {
	err := s.store.Users().UpdatePublic(ctx, userID, public)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *AccountService) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.Users().UpdatePassword(ctx, userID, string(hash))
}
