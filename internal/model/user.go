// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. They are similar to classes in
// other languages but without inheritance: Go favours composition.
package model

// User represents a registered user account.
//
// Users are created once by registration and never updated or deleted.
// Username and Email are each unique across the directory (exact,
// case-sensitive match).
//
// WHY `json:"password"` FOR THE HASH?
// The data file layout predates this server: existing users.json files store
// the bcrypt hash under "password". Keeping the key lets those files load
// unchanged. The field never leaves the server: handlers only ever return
// the ID and email.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"` // bcrypt hash, never plaintext
}
