package service

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/mansoorceksport/platepal/internal/domain"
)

// ErrEmailLinked is returned when a Firebase login presents an email that
// already belongs to a different Firebase identity.
var ErrEmailLinked = errors.New("email already linked to a different account")

// FirebaseAuthClient is the slice of the Firebase Admin SDK the app needs
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService exchanges Firebase ID tokens for app accounts
type AuthService struct {
	userRepo   domain.UserRepository
	authClient FirebaseAuthClient
}

func NewAuthService(userRepo domain.UserRepository, authClient FirebaseAuthClient) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

// LoginResult is the account behind a verified Firebase token
type LoginResult struct {
	User      *domain.User
	IsNewUser bool
}

// LoginOrRegister verifies the Firebase token and returns the matching
// account. Lookup is by Firebase UID, then by email for accounts created
// before the identity was linked, and finally a new account is created.
func (s *AuthService) LoginOrRegister(ctx context.Context, firebaseToken string) (*LoginResult, error) {
	token, err := s.authClient.VerifyIDToken(ctx, firebaseToken)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email claim", domain.ErrInvalidInput)
	}
	name, _ := token.Claims["name"].(string)
	if name == "" {
		name = email
	}

	user, err := s.userRepo.GetByFirebaseUID(ctx, token.UID)
	if err == nil {
		return &LoginResult{User: user}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.FirebaseUID != "" && user.FirebaseUID != token.UID {
			return nil, ErrEmailLinked
		}
		if err := s.userRepo.UpdateFirebaseUID(ctx, user.ID, token.UID); err != nil {
			return nil, fmt.Errorf("failed to link firebase account: %w", err)
		}
		user.FirebaseUID = token.UID
		return &LoginResult{User: user}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	user = &domain.User{
		FirebaseUID: token.UID,
		Email:       email,
		Name:        name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &LoginResult{User: user, IsNewUser: true}, nil
}
