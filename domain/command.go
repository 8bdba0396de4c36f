package domain

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthPayload is returned by both login and signup.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserTyping struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type UserStatus struct {
	UserID   string     `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *Timestamp `json:"lastSeen,omitempty"`
}
