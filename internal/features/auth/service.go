package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/internal/utils/jwt"
)

// RegisterInput carries a new account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// LoginInput carries credentials.
type LoginInput struct {
	Username string
	Password string
}

// AuthResponse pairs the user with a fresh token pair.
type AuthResponse struct {
	User   *user.User    `json:"user"`
	Tokens jwt.TokenPair `json:"tokens"`
}

// TokenConfig holds signing secrets and lifetimes.
type TokenConfig struct {
	JWTSecret          string
	JWTRefreshSecret   string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// Register creates an account and signs it in.
func Register(db *gorm.DB, input RegisterInput, cfg TokenConfig) (*AuthResponse, error) {
	newUser, err := user.Create(db, user.CreateInput{
		Username:  input.Username,
		Password:  input.Password,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		return nil, err
	}

	pair, err := issue(db, newUser.ID, cfg)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: &newUser, Tokens: pair}, nil
}

// Login checks credentials and returns a new token pair.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*AuthResponse, error) {
	usr, err := user.GetByUsername(db, input.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	if !usr.Active {
		return nil, ErrInactiveAccount
	}

	pair, err := issue(db, usr.ID, cfg)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: &usr, Tokens: pair}, nil
}

// RefreshAccessToken rotates the pair. Only the most recently issued refresh
// token is accepted.
func RefreshAccessToken(db *gorm.DB, refreshToken string, cfg TokenConfig) (*jwt.TokenPair, error) {
	claims, err := jwt.VerifyToken(refreshToken, cfg.JWTRefreshSecret, jwt.KindRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if usr.RefreshToken == nil || *usr.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	if !usr.Active {
		return nil, ErrInactiveAccount
	}

	pair, err := issue(db, usr.ID, cfg)
	if err != nil {
		return nil, err
	}

	return &pair, nil
}

// Logout forgets the stored refresh token.
func Logout(db *gorm.DB, userID uuid.UUID) error {
	return user.SetRefreshToken(db, userID, nil)
}

func issue(db *gorm.DB, userID uuid.UUID, cfg TokenConfig) (jwt.TokenPair, error) {
	pair, err := jwt.GeneratePair(userID, cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	if err != nil {
		return jwt.TokenPair{}, err
	}

	if err := user.SetRefreshToken(db, userID, &pair.RefreshToken); err != nil {
		return jwt.TokenPair{}, err
	}

	return pair, nil
}
