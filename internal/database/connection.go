package database

import (
	"errors"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(dsn string, log *logrus.Logger) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return NewDatabase(db), nil
}

// legacyRoomColumns renames columns left behind by the players-based room
// shape. Each statement is a no-op once the rename has happened.
var legacyRoomColumns = []string{
	`DO $$
BEGIN
	IF EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'min_players')
		AND NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'min_slot') THEN
		ALTER TABLE rooms RENAME COLUMN min_players TO min_slot;
	END IF;
END $$;`,
	`DO $$
BEGIN
	IF EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'max_players')
		AND NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'max_slot') THEN
		ALTER TABLE rooms RENAME COLUMN max_players TO max_slot;
	END IF;
END $$;`,
	`DO $$
BEGIN
	IF EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'rank_min' AND data_type = 'uuid')
		AND NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'rank_min_id') THEN
		ALTER TABLE rooms RENAME COLUMN rank_min TO rank_min_id;
	END IF;
END $$;`,
	`DO $$
BEGIN
	IF EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'rank_max' AND data_type = 'uuid')
		AND NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'rooms' AND column_name = 'rank_max_id') THEN
		ALTER TABLE rooms RENAME COLUMN rank_max TO rank_max_id;
	END IF;
END $$;`,
}

func (d *Database) Migrate() error {
	if d.isPostgres() {
		for _, stmt := range legacyRoomColumns {
			if err := d.db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}

	return d.db.AutoMigrate(
		&models.User{},
		&models.UserSocialite{},
		&models.Game{},
		&models.GameRank{},
		&models.Room{},
		&models.RoomRequest{},
		&models.PlayerReport{},
	)
}
