package dto

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RefreshTokenResponse represents the response for a successful token refresh.
type RefreshTokenResponse struct {
	Token string `json:"token"`
}

// RegisterResponse is returned after the first signup step.
type RegisterResponse struct {
	User            UserResponse `json:"user"`
	CodeSent        bool         `json:"codeSent"`
	CodeExpirySecs  int          `json:"codeExpirySecs"`
	ResendAfterSecs int          `json:"resendAfterSecs"`
}
