package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
)

var (
	ErrGoogleDisabled  = errors.New("google sign-in is not configured")
	ErrInvalidState    = errors.New("invalid oauth state")
	ErrUnverifiedEmail = errors.New("google account email is not verified")
	ErrGoogleExchange  = errors.New("google token exchange failed")
)

// GoogleEndpoint is Google's OAuth 2.0 authorization server.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and UserInfoURL override Google's, for tests.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// GoogleUser is the subset of the OpenID userinfo response used for sign-in.
type GoogleUser struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleAuthenticator signs users in with their Google account.
type GoogleAuthenticator struct {
	oauth       *oauth2.Config
	userInfoURL string
	jwt         *JWTManager
	storage     UserStorage
}

// NewGoogleAuthenticator returns nil when no client ID is configured.
func NewGoogleAuthenticator(cfg GoogleConfig, jwtManager *JWTManager, storage UserStorage) *GoogleAuthenticator {
	if cfg.ClientID == "" {
		return nil
	}
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = GoogleEndpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	return &GoogleAuthenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		jwt:         jwtManager,
		storage:     storage,
	}
}

// AuthURL returns the consent page URL and the state value the callback must echo.
func (g *GoogleAuthenticator) AuthURL() (string, string, error) {
	if g == nil {
		return "", "", ErrGoogleDisabled
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}
	state, err := g.jwt.GenerateState(hex.EncodeToString(nonce))
	if err != nil {
		return "", "", err
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// Login exchanges the authorization code and returns the matching user, creating
// or linking an account on first sign-in.
func (g *GoogleAuthenticator) Login(ctx context.Context, code, state string) (*models.User, error) {
	if g == nil {
		return nil, ErrGoogleDisabled
	}
	if err := g.jwt.ValidateState(state); err != nil {
		return nil, ErrInvalidState
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleExchange, err)
	}
	info, err := g.fetchUser(ctx, token)
	if err != nil {
		return nil, err
	}

	return g.resolveUser(ctx, info)
}

func (g *GoogleAuthenticator) fetchUser(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	resp, err := g.oauth.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get google user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("failed to get google user: status %d: %s", resp.StatusCode, body)
	}

	var info GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google user: %w", err)
	}
	if info.Subject == "" {
		return nil, errors.New("google user has no subject")
	}
	return &info, nil
}

func (g *GoogleAuthenticator) resolveUser(ctx context.Context, info *GoogleUser) (*models.User, error) {
	user, err := g.storage.GetUserByGoogleSubject(ctx, info.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if !info.EmailVerified {
		return nil, ErrUnverifiedEmail
	}
	email := NormalizeEmail(info.Email)

	// An existing password account with the same address is linked.
	user, err = g.storage.GetUserByEmail(ctx, email)
	if err == nil {
		if err := g.storage.LinkGoogleSubject(ctx, user.ID, info.Subject); err != nil {
			return nil, err
		}
		user.GoogleSubject = info.Subject
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	name := info.Name
	if name == "" {
		name = email
	}
	user = models.NewUser(email, name, "")
	user.GoogleSubject = info.Subject
	if err := g.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
