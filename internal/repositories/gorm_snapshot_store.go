package repositories

import (
	"fmt"

	"usermgmt/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// userRecord is the table row for one user. Position keeps the index order across reloads.
type userRecord struct {
	ID                    string  `gorm:"primaryKey;type:varchar(36)"`
	Position              int     `gorm:"not null;index"`
	FullName              string  `gorm:"type:varchar(100);not null"`
	Email                 string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	PhoneNumber           *string `gorm:"type:varchar(16)"`
	Username              *string `gorm:"type:varchar(30)"`
	DateOfBirth           *string `gorm:"type:varchar(10)"`
	Gender                *string `gorm:"type:varchar(6)"`
	Country               *string `gorm:"type:varchar(100)"`
	City                  *string `gorm:"type:varchar(100)"`
	AcceptMarketingEmails bool    `gorm:"not null;default:false"`
}

func (userRecord) TableName() string { return "user_records" }

func toRecord(u models.User, pos int) userRecord {
	return userRecord{
		ID:                    u.ID,
		Position:              pos,
		FullName:              u.FullName,
		Email:                 u.Email,
		PhoneNumber:           u.PhoneNumber,
		Username:              u.Username,
		DateOfBirth:           u.DateOfBirth,
		Gender:                u.Gender,
		Country:               u.Country,
		City:                  u.City,
		AcceptMarketingEmails: u.AcceptMarketingEmails,
	}
}

func (r userRecord) toUser() models.User {
	return models.User{
		ID:                    r.ID,
		FullName:              r.FullName,
		Email:                 r.Email,
		PhoneNumber:           r.PhoneNumber,
		Username:              r.Username,
		DateOfBirth:           r.DateOfBirth,
		Gender:                r.Gender,
		Country:               r.Country,
		City:                  r.City,
		AcceptMarketingEmails: r.AcceptMarketingEmails,
	}
}

// OpenGORM connects to the database for the given driver ("sqlite" or "postgres").
func OpenGORM(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// GORMSnapshotStore keeps the record set in a SQL table. Every Save replaces the table
// contents inside one transaction, so a failed save leaves the previous snapshot in place.
type GORMSnapshotStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGORMSnapshotStore creates a new instance of GORMSnapshotStore.
func NewGORMSnapshotStore(db *gorm.DB, logger *zap.Logger) *GORMSnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GORMSnapshotStore{db: db, logger: logger}
}

// Load creates the table when missing and reads every row in stored order.
func (s *GORMSnapshotStore) Load() (*UserIndex, error) {
	if err := s.db.AutoMigrate(&userRecord{}); err != nil {
		return nil, &models.StorageError{Op: "load", Err: fmt.Errorf("create user_records table: %w", err)}
	}

	var rows []userRecord
	if err := s.db.Order("position").Find(&rows).Error; err != nil {
		return nil, &models.StorageError{Op: "load", Err: fmt.Errorf("read user_records: %w", err)}
	}

	ix := NewUserIndex()
	for _, row := range rows {
		ix.Put(row.toUser())
	}
	s.logger.Info("snapshot loaded", zap.String("table", userRecord{}.TableName()), zap.Int("users", ix.Len()))
	return ix, nil
}

// Save replaces all rows with the contents of ix.
func (s *GORMSnapshotStore) Save(ix *UserIndex) error {
	users := ix.All()
	rows := make([]userRecord, 0, len(users))
	for i, u := range users {
		rows = append(rows, toRecord(u, i))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&userRecord{}).Error; err != nil {
			return fmt.Errorf("clear user_records: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert user_records: %w", err)
		}
		return nil
	})
	if err != nil {
		return &models.StorageError{Op: "save", Err: err}
	}
	s.logger.Debug("snapshot saved", zap.Int("users", len(rows)))
	return nil
}

// Close releases the underlying connection pool.
func (s *GORMSnapshotStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
