package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"pawfectBack/internal/models"
	"pawfectBack/internal/repositories"
)

const accessTokenTTL = 24 * time.Hour

type UserService struct {
	UserRepo   *repositories.UserRepository
	SigningKey string
}

func NewUserService(repo *repositories.UserRepository, signingKey string) (*UserService, error) {
	if strings.TrimSpace(signingKey) == "" {
		return nil, errors.New("user service: signing key is required")
	}
	return &UserService{UserRepo: repo, SigningKey: signingKey}, nil
}

func (s *UserService) SignUp(ctx context.Context, name, email, password string) (int, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return 0, errors.New("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.UserRepo.CreateUser(ctx, models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hash),
		Role:     "user",
	})
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (models.Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.Tokens{}, models.ErrInvalidCredentials
		}
		return models.Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		UserID: user.ID,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(accessTokenTTL).Unix(),
		},
	})
	accessToken, err := token.SignedString([]byte(s.SigningKey))
	if err != nil {
		return models.Tokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	if err := s.UserRepo.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return models.Tokens{}, fmt.Errorf("save refresh token: %w", err)
	}

	return models.Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", b), nil
}
