package api

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed-in user and a bearer token.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GoogleAuthURLRequest struct{}

type GoogleAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// GoogleLoginRequest completes the redirect with the code and state Google returned.
type GoogleLoginRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}
