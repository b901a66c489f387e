package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 内存SQLite数据库
// 单连接：每个:memory:连接都是独立的数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedBook(t *testing.T, db *gorm.DB, title string) uint {
	t.Helper()
	model := &BookModel{Title: title}
	require.NoError(t, db.Create(model).Error)
	return model.ID
}

func seedReview(t *testing.T, db *gorm.DB, bookID uint, rating int, at time.Time) uint {
	t.Helper()
	model := &ReviewModel{
		BookID:    bookID,
		Review:    "review",
		Rating:    rating,
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	}
	require.NoError(t, db.Create(model).Error)
	return model.ID
}
