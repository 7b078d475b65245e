package model

import "github.com/golang-jwt/jwt/v5"

// LoginMode selects how the login form was submitted
type LoginMode string

const (
	LoginModeLogin  LoginMode = "login"
	LoginModeSignup LoginMode = "signup"
	LoginModeDemo   LoginMode = "demo" // one-click demo account
)

// SessionClaims are JWT claims binding a token to one client session
type SessionClaims struct {
	ClientID     string           `json:"clientId"`
	Email        string           `json:"email"`
	Organization string           `json:"organization"`
	OrgType      OrganizationType `json:"orgType"`
	jwt.RegisteredClaims
}

// Org returns the organization context carried by the token
func (c *SessionClaims) Org() OrganizationContext {
	return OrganizationContext{
		Email:        c.Email,
		Organization: c.Organization,
		OrgType:      c.OrgType,
	}
}

// LoginRequest is the login or signup form
type LoginRequest struct {
	Mode         LoginMode        `json:"mode"`
	Email        string           `json:"email"`
	Organization string           `json:"organization,omitempty"` // signup only
	OrgType      OrganizationType `json:"orgType,omitempty"`      // signup only
	Password     string           `json:"password"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token        string              `json:"token"`
	ClientID     string              `json:"clientId"`
	Organization OrganizationContext `json:"organization"`
}
