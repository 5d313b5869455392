// Package gormstore runs the supplier store on any dialect gorm supports.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/odyssey-erp/suppliers-api/internal/shared"
	"github.com/odyssey-erp/suppliers-api/internal/suppliers"
)

type record struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	CompanyName string    `gorm:"column:company_name;size:255;not null"`
	ContactName string    `gorm:"column:contact_name;size:255;not null"`
	Phone       string    `gorm:"column:phone;size:50;not null;default:''"`
	Email       string    `gorm:"column:email;size:255;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (record) TableName() string { return suppliers.TableName }

func (r record) supplier() suppliers.Supplier {
	return suppliers.Supplier{
		ID:          r.ID,
		CompanyName: r.CompanyName,
		ContactName: r.ContactName,
		Phone:       r.Phone,
		Email:       r.Email,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Store implements suppliers.Store with gorm.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ suppliers.Store = (*Store)(nil)

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate creates the suppliers table when it does not exist.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("gormstore: migrate: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]suppliers.Supplier, error) {
	var rows []record
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: list: %w", err)
	}
	out := make([]suppliers.Supplier, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.supplier())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (suppliers.Supplier, error) {
	var r record
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return suppliers.Supplier{}, shared.ErrNotFound
	}
	if err != nil {
		return suppliers.Supplier{}, fmt.Errorf("gormstore: get %d: %w", id, err)
	}
	return r.supplier(), nil
}

func (s *Store) Create(ctx context.Context, in suppliers.Input) (int64, error) {
	in = in.Sanitized()
	r := record{
		CompanyName: in.CompanyName,
		ContactName: in.ContactName,
		Phone:       in.Phone,
		Email:       in.Email,
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return 0, fmt.Errorf("gormstore: create: %w", err)
	}
	return r.ID, nil
}

// Update writes all four editable fields, including empty ones.
func (s *Store) Update(ctx context.Context, id int64, in suppliers.Input) error {
	in = in.Sanitized()
	err := s.db.WithContext(ctx).
		Model(&record{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"company_name": in.CompanyName,
			"contact_name": in.ContactName,
			"phone":        in.Phone,
			"email":        in.Email,
			"updated_at":   s.now(),
		}).Error
	if err != nil {
		return fmt.Errorf("gormstore: update %d: %w", id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&record{}).Error; err != nil {
		return fmt.Errorf("gormstore: delete %d: %w", id, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&record{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("gormstore: exists %d: %w", id, err)
	}
	return n > 0, nil
}
