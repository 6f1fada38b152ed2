package users

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/backend-template/internal/auth"
	"github.com/mrlokans/backend-template/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func newUser(username string) *entities.User {
	return &entities.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "$2a$04$fakehashfortesting",
	}
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("testuser")
	require.NoError(t, repo.Create(user))

	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", stored.Username)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRepository_Create_DuplicateUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newUser("testuser")))

	err := repo.Create(newUser("testuser"))
	assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
}

func TestRepository_GetByUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := newUser("testuser")
	require.NoError(t, repo.Create(created))

	user, err := repo.GetByUsername("testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.GetByUsername("nosuchuser")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(uuid.NewString())
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newUser("alice")))
	require.NoError(t, repo.Create(newUser("bob")))

	users, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRepository_UpdatePassword(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("testuser")
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.UpdatePassword(user.ID, "$2a$04$newhash"))

	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$04$newhash", stored.PasswordHash)

	err = repo.UpdatePassword(uuid.NewString(), "$2a$04$newhash")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("testuser")
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.Delete(user.ID))

	_, err := repo.GetByID(user.ID)
	assert.ErrorIs(t, err, auth.ErrNotFound)

	err = repo.Delete(user.ID)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}
