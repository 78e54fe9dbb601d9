package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/database"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/pkg/auth"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string
	Username string
	Email    string
	Password string
}

type LoginRequest struct {
	Login    string
	Password string
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
}

type AuthService struct {
	db        *database.Database
	jwt       *auth.JWTManager
	blacklist auth.Blacklist
	log       *logrus.Logger
}

func NewAuthService(db *database.Database, jwt *auth.JWTManager, blacklist auth.Blacklist, log *logrus.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, blacklist: blacklist, log: log}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := db.EmailTaken(email)
	if err != nil {
		return nil, storageErr(err, "")
	}
	if taken {
		return nil, Conflict("Email is already registered")
	}
	taken, err = db.UsernameTaken(req.Username)
	if err != nil {
		return nil, storageErr(err, "")
	}
	if taken {
		return nil, Conflict("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internal("failed to hash password", err)
	}
	hashed := string(hash)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Username
	}
	user := &models.User{
		Name:         name,
		Username:     req.Username,
		Email:        email,
		PasswordHash: &hashed,
		Role:         models.RoleUser,
	}
	if err := db.SaveUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Email or username is already taken")
		}
		return nil, storageErr(err, "")
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	db := s.db.WithContext(ctx)

	user, err := db.FindUserByLogin(strings.TrimSpace(req.Login))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, storageErr(err, "")
	}
	if user.PasswordHash == nil {
		return nil, Unauthorized("This account signs in through Discord")
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return nil, Unauthorized("Invalid credentials")
	}

	if err := db.UpdateLastSeen(user.ID); err != nil {
		s.log.WithField("user_id", user.ID).WithError(err).Warn("failed to update last seen")
	}
	return s.issue(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwt.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, Unauthorized("Invalid refresh token")
	}
	if revoked, err := s.blacklist.IsRevoked(ctx, refreshToken); err != nil || revoked {
		return nil, Unauthorized("Refresh token has been revoked")
	}

	user, err := s.ValidateClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	// Single use: the old refresh token is burned once a new pair is issued.
	if err := s.blacklist.Revoke(ctx, refreshToken, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.log.WithField("user_id", user.ID).WithError(err).Warn("failed to revoke refresh token")
	}
	return s.issue(user)
}

// Logout revokes the access token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	exp, err := s.jwt.Expiry(accessToken)
	if err != nil {
		return Unauthorized("Invalid token")
	}
	if err := s.blacklist.Revoke(ctx, accessToken, time.Until(exp)); err != nil {
		return Internal("failed to revoke token", err)
	}
	return nil
}

// ValidateToken resolves an access token to its user.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwt.Verify(token)
	if err != nil {
		return nil, Unauthorized("Invalid token")
	}
	return s.ValidateClaims(ctx, claims)
}

func (s *AuthService) ValidateClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, Unauthorized("Invalid token subject")
	}
	user, err := s.db.WithContext(ctx).GetUser(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorized("User no longer exists")
	}
	if err != nil {
		return nil, storageErr(err, "")
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	access, err := s.jwt.Generate(user.ID.String(), user.Username, string(user.Role))
	if err != nil {
		return nil, Internal("failed to sign access token", err)
	}
	refresh, err := s.jwt.GenerateRefresh(user.ID.String(), user.Username, string(user.Role))
	if err != nil {
		return nil, Internal("failed to sign refresh token", err)
	}
	return &AuthResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessTTL().Seconds()),
	}, nil
}
