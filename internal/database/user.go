package database

import (
	"errors"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (d *Database) SaveUser(user *models.User) error {
	return d.db.Create(user).Error
}

func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	user := models.User{}
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByLogin matches either the username or the email.
func (d *Database) FindUserByLogin(login string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("username = ? OR email = ?", login, login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) UsernameTaken(username string) (bool, error) {
	var count int64
	err := d.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (d *Database) EmailTaken(email string) (bool, error) {
	var count int64
	err := d.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateUserFields applies a partial update; only keys present in fields are written.
func (d *Database) UpdateUserFields(id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := d.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *Database) UpdateLastSeen(id uuid.UUID) error {
	return d.db.Model(&models.User{}).Where("id = ?", id).Update("last_seen_at", time.Now()).Error
}

// FindUserBySocialite returns the user linked to an external identity, or
// gorm.ErrRecordNotFound.
func (d *Database) FindUserBySocialite(provider, providerID string) (*models.User, error) {
	var link models.UserSocialite
	err := d.db.Preload("User").
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	if link.User.ID == uuid.Nil {
		return nil, errors.New("socialite link has no user")
	}
	return &link.User, nil
}

func (d *Database) SaveSocialite(link *models.UserSocialite) error {
	return d.db.Create(link).Error
}
