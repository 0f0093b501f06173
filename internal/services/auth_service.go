package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prudhvinik1/mobilerp/internal/erpnext"
	"github.com/prudhvinik1/mobilerp/internal/models"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
	"github.com/prudhvinik1/mobilerp/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService authenticates against the remote ERP first and falls back to
// the local credential check when the remote is unreachable.
type AuthService struct {
	users     repositories.UserRepository
	gateway   Gateway
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(users repositories.UserRepository, gateway Gateway, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		gateway:   gateway,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type LoginResponse struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Login validates credentials remotely when possible. A remote rejection is
// final; only an unreachable remote falls through to the local check. The
// first successful remote login provisions the local user record.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	profile, err := s.gateway.Login(ctx, username, password)
	switch {
	case err == nil:
		user, err := s.provisionUser(ctx, username, password, profile)
		if err != nil {
			return nil, err
		}
		return s.buildResponse(user)
	case errors.Is(err, erpnext.ErrRemoteAuth):
		return nil, ErrInvalidCredentials
	default:
		// Remote unreachable or misbehaving: check local credentials.
		user, err := s.users.GetByUsername(ctx, username)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if !utils.CheckPassword(user.PasswordHash, password) {
			return nil, ErrInvalidCredentials
		}
		return s.buildResponse(user)
	}
}

func (s *AuthService) provisionUser(ctx context.Context, username, password string, profile *erpnext.Profile) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &models.User{
		Username:       username,
		PasswordHash:   hash,
		FullName:       profile.FullName,
		Email:          profile.Email,
		AvatarInitials: avatarInitials(profile.FullName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) buildResponse(user *models.User) (*LoginResponse, error) {
	expiresAt := time.Now().Add(s.jwtExpiry)
	token, err := s.generateToken(user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) generateToken(userID uuid.UUID, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyToken parses a session token and returns the user it was issued to.
func (s *AuthService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func avatarInitials(fullName string) string {
	var initials strings.Builder
	for _, part := range strings.Fields(fullName) {
		initials.WriteString(strings.ToUpper(string([]rune(part)[0])))
	}
	return initials.String()
}
