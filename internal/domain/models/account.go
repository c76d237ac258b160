// internal/domain/models/account.go
package models

// RoleManager is the only role allowed to sign in to this application.
const RoleManager = "gestor"

// Account is the user returned by the backend on login.
type Account struct {
	ID    ID     `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// LoginResult is the backend login response.
type LoginResult struct {
	AccessToken string   `json:"access_token"`
	User        *Account `json:"user"`
}
