package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for driving error paths the in-memory
// database cannot produce.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestSelectParts_QueryErrorIsWrapped(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `part`.*").
		WillReturnError(errors.New("server has gone away"))

	repo := NewRepository(db, zap.NewNop())
	_, err := repo.SelectParts(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select parts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectParts_CategoryLoadError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `part_category`.*").
		WillReturnError(errors.New("table locked"))

	repo := NewRepository(db, zap.NewNop())
	_, err := repo.SelectParts(context.Background(), []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load categories")
}

func TestResolveTargetLocation_QueryErrorIsNotMaskedAsUnusable(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `stock_location`.*").
		WillReturnError(errors.New("connection reset"))

	repo := NewRepository(db, zap.NewNop())
	_, err := repo.ResolveTargetLocation(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocationNotUsable)
	assert.Contains(t, err.Error(), "failed to load location")
}
