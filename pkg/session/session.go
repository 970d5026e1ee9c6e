package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/db"
	"github.com/rs/zerolog/log"
)

const defaultName = "User"

var (
	// ErrUnauthenticated means there is no usable credential; the caller should go to the entry view.
	ErrUnauthenticated   = errors.New("session: unauthenticated")
	ErrMissingCredential = errors.New("session: username and password are required")
)

// Store is the slot store holding the credential.
type Store interface {
	Get(key string) (string, bool)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Credentials is the bearer-token slot. It satisfies api.TokenSource.
type Credentials struct {
	store Store
}

func NewCredentials(store Store) *Credentials {
	return &Credentials{store: store}
}

// Token returns the stored bearer token.
func (c *Credentials) Token() (string, bool) {
	token, ok := c.store.Get(db.SlotToken)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}

	return token, true
}

func (c *Credentials) Save(ctx context.Context, token string) error {
	return c.store.Set(ctx, db.SlotToken, token)
}

func (c *Credentials) Clear(ctx context.Context) error {
	return c.store.Remove(ctx, db.SlotToken)
}

// Session is the result of a successful Check.
type Session struct {
	Username string
	Token    string
}

// Guard decides whether a view may be entered.
type Guard struct {
	creds *Credentials
}

func NewGuard(creds *Credentials) *Guard {
	return &Guard{creds: creds}
}

// Check reads the stored credential and decodes it without verifying the signature; the
// server verifies it on every request. A malformed credential is discarded.
func (g *Guard) Check(ctx context.Context) (Session, error) {
	token, ok := g.creds.Token()
	if !ok {
		return Session{}, ErrUnauthenticated
	}

	name, err := DisplayName(token)
	if err != nil {
		log.Warn().Err(err).Msg("discarding malformed credential")

		if clearErr := g.creds.Clear(ctx); clearErr != nil {
			log.Error().Err(clearErr).Msg("error removing credential")
		}

		return Session{}, ErrUnauthenticated
	}

	return Session{Username: name, Token: token}, nil
}

// DisplayName decodes token and returns its username claim, falling back to sub and
// then to "User".
func DisplayName(token string) (string, error) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("error decoding token: %w", err)
	}

	for _, key := range []string{"username", "sub"} {
		if name, ok := claims[key].(string); ok && name != "" {
			return name, nil
		}
	}

	return defaultName, nil
}

// AccountClient is the part of the API used to obtain credentials.
type AccountClient interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (string, error)
}

// Authenticator logs users in and out.
type Authenticator struct {
	client AccountClient
	creds  *Credentials
}

func NewAuthenticator(client AccountClient, creds *Credentials) *Authenticator {
	return &Authenticator{client: client, creds: creds}
}

// Login obtains a token and stores it in the credential slot.
func (a *Authenticator) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingCredential
	}

	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := a.creds.Save(ctx, token); err != nil {
		return fmt.Errorf("error storing credential: %w", err)
	}

	log.Info().Str("username", username).Msg("logged in")

	return nil
}

// Register creates an account. It does not log the user in.
func (a *Authenticator) Register(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", ErrMissingCredential
	}

	return a.client.Register(ctx, username, password)
}

// Logout discards the stored credential.
func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.creds.Clear(ctx); err != nil {
		return fmt.Errorf("error removing credential: %w", err)
	}

	log.Info().Msg("logged out")

	return nil
}

// Reason turns a Login or Register error into a message for the user: the server's
// detail when there is one.
func Reason(err error) string {
	if errors.Is(err, ErrMissingCredential) {
		return "Username and password are required."
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}

		if apiErr.StatusCode != 0 {
			return "Failed to " + apiErr.Op + "."
		}
	}

	return "Something went wrong. Please try again."
}
