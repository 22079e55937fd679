package account

import "errors"

// StorageKey is the key the account list is persisted under.
const StorageKey = "users"

// MinPasswordLength is the shortest password SignUp accepts, in characters.
const MinPasswordLength = 6

// Account is a locally registered user. Email is the unique identity.
type Account struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest carries the signup form.
type SignUpRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const (
	MsgSignedUp = "Account created successfully! Redirecting to sign in..."
	MsgSignedIn = "Signed in successfully!"
)

// UserMessage returns the text shown to the user for a signup or signin error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match!"
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 6 characters long!"
	case errors.Is(err, ErrEmailExists):
		return "Email already exists!"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password!"
	case err == nil:
		return ""
	default:
		return "Something went wrong, please try again."
	}
}
