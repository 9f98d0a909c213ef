package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/movein/movein-api/config"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProfile is the subset of Google's userinfo response we keep.
type GoogleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleProvider performs the OAuth dance with Google.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	// Profile exchanges code for a token and fetches the user's profile.
	Profile(ctx context.Context, code string) (*GoogleProfile, error)
}

type googleOAuth struct {
	cfg *oauth2.Config
}

func newGoogleOAuth(cfg config.GoogleConfig) *googleOAuth {
	return &googleOAuth{cfg: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       []string{"email", "profile"},
	}}
}

func (g *googleOAuth) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

func (g *googleOAuth) Profile(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	client := g.cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API returned status %d", resp.StatusCode)
	}

	var p GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode Google user response: %w", err)
	}
	if p.ID == "" || p.Email == "" {
		return nil, errors.New("google profile is missing id or email")
	}
	return &p, nil
}

// GoogleAuth logs users in with their Google account.
type GoogleAuth struct {
	provider GoogleProvider
	users    repository.UserStore
	tokens   *TokenIssuer
}

// NewGoogleAuth returns nil when Google credentials are not configured.
func NewGoogleAuth(cfg config.GoogleConfig, store *repository.Store, tokens *TokenIssuer) *GoogleAuth {
	if !cfg.Enabled() {
		return nil
	}
	return NewGoogleAuthWithProvider(newGoogleOAuth(cfg), store, tokens)
}

func NewGoogleAuthWithProvider(p GoogleProvider, store *repository.Store, tokens *TokenIssuer) *GoogleAuth {
	return &GoogleAuth{provider: p, users: store.Users, tokens: tokens}
}

func (g *GoogleAuth) AuthURL(state string) string {
	return g.provider.AuthCodeURL(state)
}

// Callback completes the login and issues a token pair.
func (g *GoogleAuth) Callback(ctx context.Context, code string) (*AuthResult, error) {
	profile, err := g.provider.Profile(ctx, code)
	if err != nil {
		return nil, err
	}
	user, err := g.findOrCreate(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	pair, err := g.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// findOrCreate looks the user up by Google id, then links by email, then
// creates a new password-less account.
func (g *GoogleAuth) findOrCreate(ctx context.Context, p *GoogleProfile) (*models.User, error) {
	user, err := g.users.ByGoogleID(ctx, p.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	email := normalizeEmail(p.Email)
	user, err = g.users.ByEmail(ctx, email)
	switch {
	case err == nil:
		user.GoogleID = &p.ID
		if user.Avatar == nil && p.Picture != "" {
			user.Avatar = &p.Picture
		}
		if err := g.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	username, err := g.uniqueUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Email:    email,
		Username: username,
		GoogleID: &p.ID,
		Avatar:   emptyToNil(p.Picture),
	}
	if err := g.users.Create(ctx, user); err != nil {
		return nil, err
	}
	signupsTotal.WithLabelValues("google").Inc()
	return user, nil
}

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_.]+`)

// uniqueUsername derives a username from the email's local part, appending a
// counter until it is free.
func (g *GoogleAuth) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := usernameUnsafe.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(base) < 3 {
		base = "user" + base
	}
	candidate := base
	for i := 1; ; i++ {
		_, err := g.users.ByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = base + strconv.Itoa(i)
	}
}
