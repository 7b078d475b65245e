package service

import (
	"errors"
	"maturitymap/internal/config"
	"maturitymap/internal/model"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid login")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Demo account used by the one-click login
const (
	DemoEmail        = "demouser@google.com"
	DemoOrganization = "Demo Organization"
	DefaultOrgName   = "My Org"
)

// LoginError carries the message shown on the login form
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return ErrInvalidCredentials
}

// AuthService turns login forms into organization contexts and session
// tokens. There is no account store: any complete form is accepted.
type AuthService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		now:       time.Now,
	}
}

// Login validates the form for its mode and returns a token bound to clientID
func (s *AuthService) Login(clientID string, req model.LoginRequest) (*model.LoginResponse, error) {
	org, err := ResolveOrganization(req)
	if err != nil {
		return nil, err
	}

	token, err := s.issue(clientID, org)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:        token,
		ClientID:     clientID,
		Organization: org,
	}, nil
}

// ResolveOrganization applies the login form rules without issuing a token
func ResolveOrganization(req model.LoginRequest) (model.OrganizationContext, error) {
	email := strings.TrimSpace(req.Email)
	organization := strings.TrimSpace(req.Organization)
	orgType := req.OrgType
	if !orgType.IsValid() {
		orgType = model.OrganizationTypes()[0]
	}

	switch req.Mode {
	case model.LoginModeSignup:
		if email == "" || organization == "" || req.OrgType == "" || req.Password == "" {
			return model.OrganizationContext{}, &LoginError{Message: "Please fill out all fields to sign up."}
		}
		if !req.OrgType.IsValid() {
			return model.OrganizationContext{}, &LoginError{Message: "Please select a valid organization type."}
		}
	case model.LoginModeDemo:
		email = DemoEmail
		organization = DemoOrganization
	case model.LoginModeLogin, "":
		if email == "" || req.Password == "" {
			return model.OrganizationContext{}, &LoginError{Message: "Please enter your email and password to log in."}
		}
		if organization == "" {
			organization = organizationFromEmail(email)
		}
	default:
		return model.OrganizationContext{}, &LoginError{Message: "Unknown login mode."}
	}

	return model.OrganizationContext{
		Email:        email,
		Organization: organization,
		OrgType:      orgType,
	}, nil
}

// organizationFromEmail uses the first label of the email domain
func organizationFromEmail(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return DefaultOrgName
	}
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return DefaultOrgName
	}
	return label
}

func (s *AuthService) issue(clientID string, org model.OrganizationContext) (string, error) {
	now := s.now()
	claims := &model.SessionClaims{
		ClientID:     clientID,
		Email:        org.Email,
		Organization: org.Organization,
		OrgType:      org.OrgType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  clientID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a session JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid || claims.ClientID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
