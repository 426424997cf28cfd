package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/repository/firestore"
	"github.com/secmon-lab/iract/pkg/repository/memory"
	"github.com/secmon-lab/iract/pkg/repository/postgres"
)

func runTemplateRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns increasing IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Template().Create(ctx, &model.Template{Name: "Spring", URL: "https://example.com/spring"})
		gt.NoError(t, err).Required()
		second, err := repo.Template().Create(ctx, &model.Template{Name: "Summer", URL: "https://example.com/summer"})
		gt.NoError(t, err).Required()

		gt.Number(t, first.ID).Greater(0)
		gt.Number(t, second.ID).Greater(first.ID)
		gt.Value(t, first.Name).Equal("Spring")
		gt.Value(t, first.URL).Equal("https://example.com/spring")
		gt.Bool(t, first.CreatedAt.IsZero()).False()
		gt.Bool(t, first.UpdatedAt.IsZero()).False()
	})

	t.Run("Get retrieves existing template", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Template().Create(ctx, &model.Template{Name: "Autumn", URL: "https://example.com/autumn"})
		gt.NoError(t, err).Required()

		got, err := repo.Template().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.Name).Equal(created.Name)
		gt.Value(t, got.URL).Equal(created.URL)
	})

	t.Run("Get returns ErrNotFound for missing template", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Template().Get(context.Background(), 987654)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("List orders by name and by id", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		list, err := repo.Template().List(ctx, model.TemplateOrderName)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)

		c, err := repo.Template().Create(ctx, &model.Template{Name: "cherry", URL: "https://c"})
		gt.NoError(t, err).Required()
		a, err := repo.Template().Create(ctx, &model.Template{Name: "apple", URL: "https://a"})
		gt.NoError(t, err).Required()
		b, err := repo.Template().Create(ctx, &model.Template{Name: "banana", URL: "https://b"})
		gt.NoError(t, err).Required()

		byName, err := repo.Template().List(ctx, model.TemplateOrderName)
		gt.NoError(t, err).Required()
		gt.Array(t, byName).Length(3).Required()
		gt.Value(t, byName[0].ID).Equal(a.ID)
		gt.Value(t, byName[1].ID).Equal(b.ID)
		gt.Value(t, byName[2].ID).Equal(c.ID)

		byID, err := repo.Template().List(ctx, model.TemplateOrderID)
		gt.NoError(t, err).Required()
		gt.Array(t, byID).Length(3).Required()
		gt.Value(t, byID[0].ID).Equal(c.ID)
		gt.Value(t, byID[1].ID).Equal(a.ID)
		gt.Value(t, byID[2].ID).Equal(b.ID)
	})

	t.Run("Update modifies existing template", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Template().Create(ctx, &model.Template{Name: "Original", URL: "https://original"})
		gt.NoError(t, err).Required()

		time.Sleep(10 * time.Millisecond)

		updated, err := repo.Template().Update(ctx, &model.Template{ID: created.ID, Name: "Renamed", URL: "https://renamed"})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.ID).Equal(created.ID)
		gt.Value(t, updated.Name).Equal("Renamed")
		gt.Value(t, updated.URL).Equal("https://renamed")
		gt.Bool(t, updated.UpdatedAt.After(created.UpdatedAt)).True()

		got, err := repo.Template().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Renamed")
	})

	t.Run("Update returns ErrNotFound for missing template", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Template().Update(context.Background(), &model.Template{ID: 987654, Name: "x", URL: "https://x"})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Delete removes existing template", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Template().Create(ctx, &model.Template{Name: "Doomed", URL: "https://doomed"})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Template().Delete(ctx, created.ID)).Required()

		_, err = repo.Template().Get(ctx, created.ID)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Delete returns ErrNotFound and keeps other rows", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		kept, err := repo.Template().Create(ctx, &model.Template{Name: "Kept", URL: "https://kept"})
		gt.NoError(t, err).Required()

		err = repo.Template().Delete(ctx, 987654)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()

		list, err := repo.Template().List(ctx, model.TemplateOrderID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].ID).Equal(kept.ID)
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	table := fmt.Sprintf("test_templates_%d", time.Now().UnixNano())
	repo, err := postgres.New(ctx, dsn, postgres.WithTableName(table))
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate(ctx)).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.DropTable(context.Background()))
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMemoryTemplateRepository(t *testing.T) {
	runTemplateRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreTemplateRepository(t *testing.T) {
	runTemplateRepositoryTest(t, newFirestoreRepository)
}

func TestPostgresTemplateRepository(t *testing.T) {
	runTemplateRepositoryTest(t, newPostgresRepository)
}
