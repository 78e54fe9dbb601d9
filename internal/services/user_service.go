package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/Faisd405/ayomabar-be/internal/database"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DiscordIdentity is the caller as seen by the chat surface.
type DiscordIdentity struct {
	ID            string
	Username      string
	Discriminator string
	Avatar        *string
}

type UpdateProfileInput struct {
	Name   *string
	Avatar *string
	Bio    *string
}

type UserService struct {
	db  *database.Database
	log *logrus.Logger
}

func NewUserService(db *database.Database, log *logrus.Logger) *UserService {
	return &UserService{db: db, log: log}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.db.WithContext(ctx).GetUser(id)
	if err != nil {
		return nil, storageErr(err, "User not found")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, BadRequest("Name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}

	db := s.db.WithContext(ctx)
	if err := db.UpdateUserFields(id, fields); err != nil {
		return nil, storageErr(err, "User not found")
	}
	return s.GetUser(ctx, id)
}

// FindOrCreateByDiscord resolves a chat identity to a user, creating the
// account and its link on first sight.
func (s *UserService) FindOrCreateByDiscord(ctx context.Context, id DiscordIdentity) (*models.User, error) {
	if id.ID == "" {
		return nil, BadRequest("Discord identity is missing")
	}

	db := s.db.WithContext(ctx)
	user, err := db.FindUserBySocialite(models.ProviderDiscord, id.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr(err, "")
	}

	username, err := s.availableUsername(db, id.Username, id.Discriminator)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		Name:     id.Username,
		Username: username,
		Email:    fmt.Sprintf("discord_%s@ayomabar.local", id.ID),
		Avatar:   id.Avatar,
		Role:     models.RoleUser,
	}
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := tx.SaveUser(user); err != nil {
			return err
		}
		return tx.SaveSocialite(&models.UserSocialite{
			UserID:     user.ID,
			Provider:   models.ProviderDiscord,
			ProviderID: id.ID,
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with another interaction from the same account.
		if existing, lookupErr := db.FindUserBySocialite(models.ProviderDiscord, id.ID); lookupErr == nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, storageErr(err, "")
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "discord_user": id.ID}).Info("user created from discord")
	return user, nil
}

func (s *UserService) availableUsername(db *database.Database, raw, discriminator string) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		candidate := discordUsername(raw, discriminator)
		if attempt > 0 {
			candidate = discordUsername(raw, "")
		}
		taken, err := db.UsernameTaken(candidate)
		if err != nil {
			return "", storageErr(err, "")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", Conflict("Could not allocate a username for this account")
}

// discordUsername lowercases, strips everything but letters and digits, caps
// the base at 20 runes and adds the discriminator or a random 4-digit suffix.
func discordUsername(raw, discriminator string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(raw) {
		if n == 20 {
			break
		}
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			n++
		}
	}
	base := b.String()
	if base == "" {
		base = "player"
	}

	if discriminator != "" && discriminator != "0" {
		return base + "_" + discriminator
	}
	return fmt.Sprintf("%s_%04d", base, rand.Intn(10000))
}
