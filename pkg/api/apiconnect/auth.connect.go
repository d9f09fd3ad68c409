package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "billbeam.v1.AuthService"

// Procedure paths, used for routing and in interceptors via Spec().Procedure.
const (
	AuthServiceRegisterProcedure       = "/billbeam.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/billbeam.v1.AuthService/Login"
	AuthServiceGoogleAuthURLProcedure  = "/billbeam.v1.AuthService/GoogleAuthURL"
	AuthServiceGoogleLoginProcedure    = "/billbeam.v1.AuthService/GoogleLogin"
	AuthServiceGetCurrentUserProcedure = "/billbeam.v1.AuthService/GetCurrentUser"
)

// AuthServiceHandler is implemented by the server.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
	GoogleAuthURL(context.Context, *connect.Request[api.GoogleAuthURLRequest]) (*connect.Response[api.GoogleAuthURLResponse], error)
	GoogleLogin(context.Context, *connect.Request[api.GoogleLoginRequest]) (*connect.Response[api.AuthResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGoogleAuthURLProcedure, connect.NewUnaryHandler(AuthServiceGoogleAuthURLProcedure, svc.GoogleAuthURL, opts...))
	mux.Handle(AuthServiceGoogleLoginProcedure, connect.NewUnaryHandler(AuthServiceGoogleLoginProcedure, svc.GoogleLogin, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for the AuthService service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
	GoogleAuthURL(context.Context, *connect.Request[api.GoogleAuthURLRequest]) (*connect.Response[api.GoogleAuthURLResponse], error)
	GoogleLogin(context.Context, *connect.Request[api.GoogleLoginRequest]) (*connect.Response[api.AuthResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceClient constructs a client for the AuthService service. baseURL is the
// server root, e.g. "http://localhost:8080".
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientWithJSON(opts)
	return &authServiceClient{
		register: connect.NewClient[api.RegisterRequest, api.AuthResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login: connect.NewClient[api.LoginRequest, api.AuthResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		googleAuthURL: connect.NewClient[api.GoogleAuthURLRequest, api.GoogleAuthURLResponse](httpClient, baseURL+AuthServiceGoogleAuthURLProcedure, opts...),
		googleLogin: connect.NewClient[api.GoogleLoginRequest, api.AuthResponse](httpClient, baseURL+AuthServiceGoogleLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.AuthResponse]
	login          *connect.Client[api.LoginRequest, api.AuthResponse]
	googleAuthURL  *connect.Client[api.GoogleAuthURLRequest, api.GoogleAuthURLResponse]
	googleLogin    *connect.Client[api.GoogleLoginRequest, api.AuthResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GoogleAuthURL(ctx context.Context, req *connect.Request[api.GoogleAuthURLRequest]) (*connect.Response[api.GoogleAuthURLResponse], error) {
	return c.googleAuthURL.CallUnary(ctx, req)
}

func (c *authServiceClient) GoogleLogin(ctx context.Context, req *connect.Request[api.GoogleLoginRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.googleLogin.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
