package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/odyssey-erp/suppliers-api/internal/platform/db"
	"github.com/odyssey-erp/suppliers-api/internal/shared"
	"github.com/odyssey-erp/suppliers-api/internal/suppliers"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	gdb   *gorm.DB
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	gdb, err := db.OpenGorm(s.ctx, db.DriverSQLite, ":memory:", 1)
	s.Require().NoError(err)
	s.Require().NoError(Migrate(s.ctx, gdb))
	s.gdb = gdb
	s.store = New(gdb)
}

func (s *StoreSuite) TearDownTest() {
	sqlDB, err := s.gdb.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func (s *StoreSuite) TestEmptyListIsNonNil() {
	items, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(items)
	s.Empty(items)
}

func (s *StoreSuite) TestCreateThenGet() {
	id, err := s.store.Create(s.ctx, suppliers.Input{CompanyName: "<b>Acme</b>", ContactName: "Jo & Co"})
	s.Require().NoError(err)
	s.Positive(id)

	got, err := s.store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(id, got.ID)
	s.Equal("Acme", got.CompanyName)
	s.Equal("Jo &amp; Co", got.ContactName)
	s.Equal("", got.Phone)
	s.Equal("", got.Email)
	s.False(got.CreatedAt.IsZero())
}

func (s *StoreSuite) TestGetMissingIsNotFound() {
	_, err := s.store.Get(s.ctx, 404)
	s.ErrorIs(err, shared.ErrNotFound)
}

func (s *StoreSuite) TestListNewestFirst() {
	first, err := s.store.Create(s.ctx, suppliers.Input{CompanyName: "First", ContactName: "A"})
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, suppliers.Input{CompanyName: "Second", ContactName: "B"})
	s.Require().NoError(err)

	items, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(second, items[0].ID)
	s.Equal(first, items[1].ID)
}

func (s *StoreSuite) TestUpdateOverwritesEveryField() {
	id, err := s.store.Create(s.ctx, suppliers.Input{CompanyName: "A", ContactName: "B", Phone: "1", Email: "a@b.c"})
	s.Require().NoError(err)
	s.store.now = func() time.Time { return time.Now().Add(time.Hour) }

	s.Require().NoError(s.store.Update(s.ctx, id, suppliers.Input{CompanyName: "A2"}))

	got, err := s.store.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("A2", got.CompanyName)
	s.Equal("", got.ContactName)
	s.Equal("", got.Phone)
	s.Equal("", got.Email)
	s.True(got.UpdatedAt.After(got.CreatedAt))
}

func (s *StoreSuite) TestDeleteAndExists() {
	id, err := s.store.Create(s.ctx, suppliers.Input{CompanyName: "A", ContactName: "B"})
	s.Require().NoError(err)

	exists, err := s.store.Exists(s.ctx, id)
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.store.Delete(s.ctx, id))

	exists, err = s.store.Exists(s.ctx, id)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.store.Delete(s.ctx, id))
}

func TestRecordTableName(t *testing.T) {
	assert.Equal(t, suppliers.TableName, record{}.TableName())
}

func TestStoreSatisfiesInterface(t *testing.T) {
	var store suppliers.Store = New(nil)
	require.NotNil(t, store)
}
