package service

import (
	"sync"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/pkg/token"
)

// Credentials are the secrets the simulated device accepts.
type Credentials struct {
	// Token is the shared secret carried by every API request.
	Token string

	// Username and Password are checked by the /auth endpoint.
	Username string
	Password string
}

// AuthService checks request credentials. Credentials can be swapped at
// runtime when the configuration is reloaded.
type AuthService struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewAuthService creates an AuthService.
func NewAuthService(creds Credentials) *AuthService {
	return &AuthService{creds: creds}
}

// Verify checks the shared-secret credential of a request.
func (a *AuthService) Verify(credential string) error {
	a.mu.RLock()
	want := a.creds.Token
	a.mu.RUnlock()

	if credential == "" || !token.Equal(credential, want) {
		return domain.ErrUnauthorized
	}
	return nil
}

// Login checks a username/password pair.
func (a *AuthService) Login(username, password string) error {
	a.mu.RLock()
	creds := a.creds
	a.mu.RUnlock()

	userOK := token.Equal(username, creds.Username)
	passOK := token.Equal(password, creds.Password)
	if !userOK || !passOK {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// SetCredentials replaces the accepted credentials.
func (a *AuthService) SetCredentials(creds Credentials) {
	a.mu.Lock()
	a.creds = creds
	a.mu.Unlock()
}
