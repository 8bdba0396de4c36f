// Package domain contains core concepts of the chat client.
// This file defines User entities.
// No runtime, network, or UI logic should be added here.
package domain

import "strings"

// User is owned by the server. The client only reads it.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email,omitempty"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
}

// Initials returns the first two letters of the username, upper-cased.
func (u User) Initials() string {
	r := []rune(u.Username)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// Matches reports whether the username or the email contains term, ignoring case.
func (u User) Matches(term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(u.Username), term) {
		return true
	}
	return u.Email != nil && strings.Contains(strings.ToLower(*u.Email), term)
}
