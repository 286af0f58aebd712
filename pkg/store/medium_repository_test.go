package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.CollectionBlob{}))
	return db
}

func TestGormMediumRoundTrip(t *testing.T) {
	ctx := context.Background()
	medium := NewGormMedium(openTestDB(t), 0)

	_, ok, err := medium.Get(ctx, "items")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, medium.Set(ctx, "items", []byte(`{"schema_version":1,"records":[]}`), 1))
	require.NoError(t, medium.Set(ctx, "items", []byte(`{"schema_version":1,"records":[{"id":"a"}]}`), 1))

	blob, ok, err := medium.Get(ctx, "items")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"schema_version":1,"records":[{"id":"a"}]}`, string(blob))

	names, err := medium.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"items"}, names)
}

func TestGormMediumQuota(t *testing.T) {
	ctx := context.Background()
	items := NewCollection[item](NewRecordStore(NewGormMedium(openTestDB(t), 96)), "items")

	require.NoError(t, items.Append(ctx, item{ID: "a"}))
	err := items.Append(ctx, item{ID: strings.Repeat("z", 100)})
	require.ErrorIs(t, err, domain.ErrStorageFull)
	assert.Len(t, items.Load(ctx), 1)
}
