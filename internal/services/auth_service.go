package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"clothshop/internal/models"
	"clothshop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = &AuthError{Message: "invalid credentials"}

// IdentityVerifier maps credentials to a shopper identity.
type IdentityVerifier interface {
	Verify(username, password string) (string, bool)
}

// DemoUsers is the built-in demo account table.
func DemoUsers() map[string]string {
	return map[string]string{
		"student": "password123",
		"varsh":   "pass@123",
	}
}

// MockIdentityVerifier checks credentials against an in-memory table of bcrypt hashes.
type MockIdentityVerifier struct {
	hashes map[string][]byte
}

// NewMockIdentityVerifier hashes the given plaintext passwords.
func NewMockIdentityVerifier(users map[string]string) (*MockIdentityVerifier, error) {
	hashes := make(map[string][]byte, len(users))
	for username, password := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
		}
		hashes[username] = hash
	}
	return &MockIdentityVerifier{hashes: hashes}, nil
}

// Verify implements IdentityVerifier.
func (v *MockIdentityVerifier) Verify(username, password string) (string, bool) {
	hash, ok := v.hashes[username]
	if !ok {
		return "", false
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", false
	}
	return username, true
}

// RepositoryIdentityVerifier checks credentials against a UserRepository.
type RepositoryIdentityVerifier struct {
	repo repositories.UserRepository
}

// NewRepositoryIdentityVerifier creates a verifier backed by repo.
func NewRepositoryIdentityVerifier(repo repositories.UserRepository) *RepositoryIdentityVerifier {
	return &RepositoryIdentityVerifier{repo: repo}
}

// Verify implements IdentityVerifier.
func (v *RepositoryIdentityVerifier) Verify(username, password string) (string, bool) {
	user, err := v.repo.GetByUsername(username)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			zap.S().Errorf("Error looking up user %s: %v", username, err)
		}
		return "", false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", false
	}
	return user.Username, true
}

// SeedUsers stores users with hashed passwords when repo is empty.
func SeedUsers(repo repositories.UserRepository, users map[string]string) error {
	n, err := repo.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for username, password := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", username, err)
		}
		if err := repo.Create(&models.User{Username: username, Password: string(hash)}); err != nil {
			return err
		}
		zap.S().Infof("Seeded user: %s", username)
	}
	return nil
}

// AuthService handles shopper and admin authentication and bearer tokens.
type AuthService struct {
	users     IdentityVerifier
	adminUser string
	adminPass string
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users IdentityVerifier, adminUser, adminPass, secret string) *AuthService {
	return &AuthService{
		users:     users,
		adminUser: adminUser,
		adminPass: adminPass,
		jwtSecret: []byte(secret),
		tokenTTL:  24 * time.Hour,
	}
}

// LoginUser returns the shopper identity for valid credentials.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	identity, ok := s.users.Verify(username, password)
	if !ok {
		return "", errInvalidCredentials
	}
	return identity, nil
}

// LoginAdmin checks the admin credentials.
func (s *AuthService) LoginAdmin(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPass)) == 1
	if !userOK || !passOK {
		return &AuthError{Message: "invalid admin credentials"}
	}
	return nil
}

// IssueToken signs a bearer token for username. Admin tokens carry admin=true.
func (s *AuthService) IssueToken(username string, admin bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"admin":    admin,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a bearer token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &AuthError{Message: fmt.Sprintf("invalid token: %v", err)}
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, &AuthError{Message: "invalid token"}
}
