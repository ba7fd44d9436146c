package seed

import (
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestFactory_CreateUser(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.Username)
	assert.NotEmpty(t, user.Email)
	assert.NotEqual(t, DemoPassword, user.Password, "password must be hashed by default")
}

func TestFactory_CreateUser_Overrides(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	user, err := f.CreateUser(func(u *models.User) {
		u.Username = "fixedname"
	})
	require.NoError(t, err)
	assert.Equal(t, "fixedname", user.Username)
	assert.Equal(t, DemoPassword, user.Password)
}

func TestFactory_DryRun(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{DryRun: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID, "dry run still assigns synthetic IDs")

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count, "dry run must not write")
}

func TestSeeder_Run(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, Options{NumUsers: 5, NumPosts: 10, SkipBcrypt: true})

	require.NoError(t, s.Run())

	var users, posts int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Post{}).Count(&posts)
	assert.EqualValues(t, 5, users)
	assert.EqualValues(t, 10, posts)

	// Every like points at a real target of its kind.
	var likes []models.Like
	require.NoError(t, db.Find(&likes).Error)
	for _, like := range likes {
		switch like.TargetKind {
		case models.LikeTargetPost:
			var n int64
			db.Model(&models.Post{}).Where("id = ?", like.TargetID).Count(&n)
			assert.EqualValues(t, 1, n)
		case models.LikeTargetComment:
			var n int64
			db.Model(&models.Comment{}).Where("id = ?", like.TargetID).Count(&n)
			assert.EqualValues(t, 1, n)
		default:
			t.Fatalf("unexpected target kind %q", like.TargetKind)
		}
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, Options{NumUsers: 3, NumPosts: 5, SkipBcrypt: true})
	require.NoError(t, s.Run())

	require.NoError(t, s.ClearAll())

	for _, model := range []any{
		&models.Like{}, &models.UserTag{}, &models.Comment{}, &models.Post{}, &models.User{},
	} {
		var count int64
		db.Model(model).Count(&count)
		assert.Zero(t, count, "%T rows must be gone", model)
	}
}
