package auth

import "github.com/golang-jwt/jwt/v5"

// Session identifies the logged-in user. It is the payload carried by the
// session cookie.
type Session struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Claims is the signed session token payload.
type Claims struct {
	Session
	jwt.RegisteredClaims
}
