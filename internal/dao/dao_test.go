package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{
		Type:        "sqlite",
		Path:        filepath.Join(t.TempDir(), "db.sqlite3"),
		AutoMigrate: true,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db, true, nil)
}

func TestNoteRepository_CreateAndLookup(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Note{
		ID:        "0b6a3b8e-7c7d-4d3e-9f57-3d0b8e6c1a11",
		Namespace: "ns-1",
		ShortID:   "Sk3x9aZ",
		Alias:     "team",
		OwnerID:   "owner-1",
		Content:   "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionPublic, created.Permission)
	assert.False(t, created.CreatedAt.IsZero())

	for _, lookup := range []func() (*domain.Note, error){
		func() (*domain.Note, error) { return repo.GetByID(ctx, created.ID) },
		func() (*domain.Note, error) { return repo.GetByShortID(ctx, "Sk3x9aZ") },
		func() (*domain.Note, error) { return repo.GetByAlias(ctx, "team") },
		func() (*domain.Note, error) { return repo.GetByNamespace(ctx, "ns-1") },
	} {
		n, err := lookup()
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, created.ID, n.ID)
		assert.Equal(t, "owner-1", n.OwnerID)
	}

	missing, err := repo.GetByAlias(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.GetByAlias(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNoteRepository_AnonymousNotesWithoutAlias(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := repo.Create(ctx, &domain.Note{ID: id, Namespace: "ns-" + id, ShortID: "sid-" + id})
		require.NoError(t, err, "notes without alias must not collide on the alias index")
	}
	n, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "", n.Alias)
	assert.False(t, n.HasOwner())
}

func TestNoteRepository_Updates(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	ctx := context.Background()

	n, err := repo.Create(ctx, &domain.Note{ID: "n1", Namespace: "ns", ShortID: "sid", OwnerID: "u1"})
	require.NoError(t, err)

	n.Content = "# Title"
	n.Title = "Title"
	n.Tags = "a,b"
	n.LastChangeAt = time.Time{}
	require.NoError(t, repo.UpdateContent(ctx, n))
	require.NoError(t, repo.UpdateFilePath(ctx, n.ID, "team/a.md"))
	require.NoError(t, repo.IncrementViewCount(ctx, n.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, n.ID))

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Title", got.Content)
	assert.Equal(t, "Title", got.Title)
	assert.Equal(t, "a,b", got.Tags)
	assert.Equal(t, "team/a.md", got.FilePath)
	assert.Equal(t, int64(2), got.ViewCount)
	assert.False(t, got.LastChangeAt.IsZero())

	owned, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestRevisionRepository(t *testing.T) {
	repo := NewRevisionRepository(newTestDao(t))
	ctx := context.Background()

	latest, err := repo.Latest(ctx, "n1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	var prev *domain.Revision
	for i, ms := range []int64{1000, 2000, 3000, 4000} {
		rev := &domain.Revision{NoteID: "n1", Content: "v", Length: i, CreatedAtMs: ms}
		if prev != nil {
			prev.Patch = "p"
			prev.Content = ""
		}
		require.NoError(t, repo.Append(ctx, prev, rev))
		assert.NotZero(t, rev.ID)
		prev = rev
	}

	list, err := repo.ListNewestFirst(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, int64(4000), list[0].CreatedAtMs)
	assert.Equal(t, "v", list[0].Content)
	assert.Equal(t, "", list[1].Content)

	at, err := repo.AtOrBefore(ctx, "n1", 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), at.CreatedAtMs)

	at, err = repo.AtOrBefore(ctx, "n1", 999)
	require.NoError(t, err)
	assert.Nil(t, at)

	since, err := repo.ListSince(ctx, "n1", 2000)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, int64(4000), since[0].CreatedAtMs)

	n, err := repo.PruneKeepNewest(ctx, 2, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = repo.ListNewestFirst(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3000), list[1].CreatedAtMs)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDao(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{ID: "u1", Email: "a@example.com", AccessToken: "tok"})
	require.NoError(t, err)

	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok", u.AccessToken)

	u, err = repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u, err = repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNewDBEngine_UnsupportedType(t *testing.T) {
	_, err := NewDBEngineWithConfig(DatabaseConfig{Type: "oracle"}, nil)
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	assert.Equal(t, "u:p@tcp(h:3306)/db?charset=utf8mb4&parseTime=true&loc=Local",
		DatabaseConfig{Type: "mysql", UserName: "u", Password: "p", Host: "h:3306", Name: "db", ParseTime: true}.dsn())
	assert.Equal(t, "host=h user=u password=p dbname=db port=5432 sslmode=disable",
		DatabaseConfig{Type: "postgres", UserName: "u", Password: "p", Host: "h", Name: "db"}.dsn())
}
