package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/internal/auth"
	"github.com/gana36/billbeam/internal/middleware"
	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/pkg/api"
	"github.com/gana36/billbeam/pkg/api/apiconnect"
)

var _ apiconnect.AuthServiceHandler = (*AuthService)(nil)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	google        *auth.GoogleAuthenticator // nil when Google sign-in is not configured
	jwtManager    *auth.JWTManager
	users         auth.UserStorage
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, google *auth.GoogleAuthenticator, jwtManager *auth.JWTManager, users auth.UserStorage, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		google:        google,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// signedIn issues a token for user and builds the response.
func (s *AuthService) signedIn(user *models.User) (*connect.Response[api.AuthResponse], error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.AuthResponse{
		User:  toAPIUser(user),
		Token: token,
	}), nil
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if strings.TrimSpace(req.Msg.Email) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidEmail)
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		default:
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return s.signedIn(user)
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return s.signedIn(user)
}

// GoogleAuthURL starts the Google redirect.
func (s *AuthService) GoogleAuthURL(ctx context.Context, req *connect.Request[api.GoogleAuthURLRequest]) (*connect.Response[api.GoogleAuthURLResponse], error) {
	url, state, err := s.google.AuthURL()
	if err != nil {
		if errors.Is(err, auth.ErrGoogleDisabled) {
			return nil, connect.NewError(connect.CodeUnimplemented, err)
		}
		s.logger.Error("Failed to build Google auth URL", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.GoogleAuthURLResponse{URL: url, State: state}), nil
}

// GoogleLogin completes the Google redirect and signs the user in.
func (s *AuthService) GoogleLogin(ctx context.Context, req *connect.Request[api.GoogleLoginRequest]) (*connect.Response[api.AuthResponse], error) {
	user, err := s.google.Login(ctx, req.Msg.Code, req.Msg.State)
	if err != nil {
		s.logger.Warn("Google login failed", "error", err)
		switch {
		case errors.Is(err, auth.ErrGoogleDisabled):
			return nil, connect.NewError(connect.CodeUnimplemented, err)
		case errors.Is(err, auth.ErrInvalidState):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		case errors.Is(err, auth.ErrUnverifiedEmail), errors.Is(err, auth.ErrGoogleExchange):
			return nil, connect.NewError(connect.CodeUnauthenticated, err)
		default:
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	s.logger.Info("User logged in with Google", "user_id", user.ID, "email", user.Email)
	return s.signedIn(user)
}

// GetCurrentUser returns the currently authenticated user's information.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		// Token outlived its account.
		s.logger.Warn("GetCurrentUser failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}
