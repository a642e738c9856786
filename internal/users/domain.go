package users

import "time"

// User is an account as exposed by the API. The password hash never leaves
// the repository.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account is the input for creating a user. Password is plaintext.
// Roles defaults to USER when empty.
type Account struct {
	Name     string
	Username string
	Email    string
	Password string
	Roles    []string
}

// Changes is a partial update. Nil fields are left untouched; a nil Roles
// keeps the current role set.
type Changes struct {
	Name     *string
	Username *string
	Email    *string
	Password *string
	Roles    []string
}

// Record is what the repository writes for a new user.
type Record struct {
	Name         string
	Username     string
	Email        string
	PasswordHash string
}

// Fields is what the repository writes on update.
type Fields struct {
	Name         *string
	Username     *string
	Email        *string
	PasswordHash *string
}
