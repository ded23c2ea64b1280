package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountModel is the relational mapping of a credential record.
type AccountModel struct {
	AccountID      string `gorm:"primaryKey;size:255"`
	PasswordHash   string `gorm:"size:512;not null"`
	FailedAttempts int    `gorm:"not null;default:0"`
	Locked         bool   `gorm:"not null;default:false"`
	LockedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName describes the tablename operation and its observable behavior.
func (AccountModel) TableName() string {
	return "credential_records"
}

// Gorm is an AccountStore backed by a relational database through gorm.
// Update runs inside a transaction with a FOR UPDATE row lock, which
// serializes concurrent read-modify-write sequences per account row.
type Gorm struct {
	db *gorm.DB
}

// NewGorm creates a gorm-backed store and migrates the credential table.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&AccountModel{}); err != nil {
		return nil, fmt.Errorf("migrate credential_records: %w", err)
	}
	return &Gorm{db: db}, nil
}

func toModel(rec *Record) *AccountModel {
	return &AccountModel{
		AccountID:      rec.AccountID,
		PasswordHash:   rec.PasswordHash,
		FailedAttempts: rec.FailedAttempts,
		Locked:         rec.Locked,
		LockedAt:       rec.LockedAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func fromModel(m *AccountModel) *Record {
	return &Record{
		AccountID:      m.AccountID,
		PasswordHash:   m.PasswordHash,
		FailedAttempts: m.FailedAttempts,
		Locked:         m.Locked,
		LockedAt:       m.LockedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// Get describes the get operation and its observable behavior.
func (g *Gorm) Get(ctx context.Context, accountID string) (*Record, error) {
	var m AccountModel
	err := g.db.WithContext(ctx).First(&m, "account_id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fromModel(&m), nil
}

// Put describes the put operation and its observable behavior.
func (g *Gorm) Put(ctx context.Context, rec *Record) error {
	err := g.db.WithContext(ctx).Save(toModel(rec)).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// PutIfAbsent describes the putifabsent operation and its observable behavior.
func (g *Gorm) PutIfAbsent(ctx context.Context, rec *Record) (bool, error) {
	res := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(toModel(rec))
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Update applies fn under a FOR UPDATE row lock.
func (g *Gorm) Update(ctx context.Context, accountID string, fn UpdateFunc) (*Record, error) {
	var out *Record
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m AccountModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "account_id = ?", accountID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		next, err := fn(fromModel(&m))
		if err != nil {
			return err
		}

		if err := tx.Save(toModel(next)).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out.Clone(), nil
}
