package models_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/anonto42/quartfeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestAutoMigrate_TablesAndIndexes(t *testing.T) {
	db := openDB(t)
	require.NoError(t, models.AutoMigrate(db, models.FeedModels...))
	require.NoError(t, models.AutoMigrate(db, models.CounterModels...))

	m := db.Migrator()
	assert.True(t, m.HasTable("user"))
	assert.True(t, m.HasTable("relationship"))
	assert.True(t, m.HasTable("counter"))
	assert.True(t, m.HasIndex(&models.Relationship{}, "idx_relationship_fm_to"))
	assert.True(t, m.HasColumn(&models.Relationship{}, "fm_user_id"))
	assert.True(t, m.HasColumn(&models.Relationship{}, "to_user_id"))
}

func TestAutoMigrate_UniqueConstraints(t *testing.T) {
	db := openDB(t)
	require.NoError(t, models.AutoMigrate(db, models.FeedModels...))

	a := &models.User{Username: "alice", Password: "hash"}
	b := &models.User{Username: "bob", Password: "hash"}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)

	assert.Error(t, db.Create(&models.User{Username: "alice", Password: "x"}).Error)

	require.NoError(t, db.Create(&models.Relationship{FmUserID: a.ID, ToUserID: b.ID}).Error)
	assert.Error(t, db.Create(&models.Relationship{FmUserID: a.ID, ToUserID: b.ID}).Error)
	assert.NoError(t, db.Create(&models.Relationship{FmUserID: b.ID, ToUserID: a.ID}).Error)
}

func TestToCompactList(t *testing.T) {
	users := []models.User{{ID: 1, Username: "a", Password: "x"}, {ID: 2, Username: "b"}}
	assert.Equal(t, []models.UserCompact{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}}, models.ToCompactList(users))
}
