package auth

import (
	"context"
	"errors"

	"todo-api/internal/models"
	"todo-api/internal/store"
)

var (
	// ErrAuthenticationFailed is returned for both unknown usernames and
	// wrong passwords, so login responses cannot enumerate users.
	ErrAuthenticationFailed = errors.New("auth: incorrect username or password")
	ErrUnauthorized         = errors.New("auth: unauthorized")
)

// dummyHash keeps a bcrypt comparison in the unknown-user login path so the
// two failure modes take comparable time.
var dummyHash = func() string {
	h, err := HashPassword("placeholder")
	if err != nil {
		panic(err)
	}
	return h
}()

// Authenticator turns credentials into tokens and tokens back into users.
type Authenticator struct {
	users  store.UserStore
	tokens *TokenService
}

func NewAuthenticator(users store.UserStore, tokens *TokenService) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// Login verifies the credentials and issues a bearer token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			CheckPassword(password, dummyHash)
			return "", ErrAuthenticationFailed
		}
		return "", err
	}
	if !CheckPassword(password, user.HashedPassword) {
		return "", ErrAuthenticationFailed
	}
	return a.tokens.Issue(user.Username)
}

// Resolve maps a bearer token back to its user. Invalid or expired tokens
// and subjects that no longer exist all come back as ErrUnauthorized.
func (a *Authenticator) Resolve(ctx context.Context, tokenString string) (*models.User, error) {
	subject, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := a.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}
