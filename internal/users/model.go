package users

import "time"

// Sign-in providers.
const (
	ProviderGoogle   = "google"
	ProviderPassword = "password"
)

// User is an account that owns resumes. Google users are keyed
// "google:{sub}", password users "password:{uuid}".
type User struct {
	ID           string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PhotoURL     string    `json:"photoURL"`
	Provider     string    `json:"provider"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
