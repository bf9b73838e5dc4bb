package dto

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login. Submitted form-encoded.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// MessageResponse acknowledges a state-changing request.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ProfileUser is the identity slice returned on /profile.
type ProfileUser struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// ProfileResponse is the payload of the protected profile route.
type ProfileResponse struct {
	Message string      `json:"message"`
	User    ProfileUser `json:"user"`
}
