package articles_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/goliatone/go-newsroom/pkg/testsupport"
	"github.com/google/uuid"
)

type repoFactory func(t *testing.T) articles.Repository

func repositories() map[string]repoFactory {
	return map[string]repoFactory{
		"memory": func(t *testing.T) articles.Repository {
			return articles.NewMemoryRepository()
		},
		"bun": func(t *testing.T) articles.Repository {
			db := testsupport.NewBunDB(t)
			if err := articles.CreateSchema(context.Background(), db); err != nil {
				t.Fatalf("create schema: %v", err)
			}
			return articles.NewBunRepository(db)
		},
	}
}

func newRecord(slug string, at time.Time) *articles.Article {
	return &articles.Article{
		ID:             uuid.New(),
		Slug:           slug,
		Title:          slug,
		Status:         articles.StatusDraft,
		Stage:          domain.StageDraft,
		StageUpdatedAt: at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func TestRepositoryContract(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, factory := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			first, err := repo.Create(ctx, newRecord("alpha", base))
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, err := repo.Create(ctx, newRecord("beta", base.Add(time.Minute))); err != nil {
				t.Fatalf("create beta: %v", err)
			}
			if _, err := repo.Create(ctx, newRecord("alpha", base)); !errors.Is(err, articles.ErrSlugExists) {
				t.Fatalf("expected ErrSlugExists, got %v", err)
			}

			got, err := repo.GetBySlug(ctx, "alpha")
			if err != nil || got.ID != first.ID {
				t.Fatalf("get by slug: %v %+v", err, got)
			}

			list, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].Slug != "alpha" || list[1].Slug != "beta" {
				t.Fatalf("expected [alpha beta], got %+v", list)
			}

			state, err := repo.GetState(ctx, first.ID)
			if err != nil {
				t.Fatalf("get state: %v", err)
			}
			if state.Stage != domain.StageDraft || state.Locked || !state.StageUpdatedAt.Equal(base) {
				t.Fatalf("unexpected initial state %+v", state)
			}

			_, err = repo.GetState(ctx, uuid.New())
			var notFound *interfaces.NotFoundError
			if !errors.As(err, &notFound) || !errors.Is(err, interfaces.ErrNotFound) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
		})
	}
}

func TestRepositoryCompareAndSet(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, factory := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			record, err := repo.Create(ctx, newRecord("gamma", base))
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			next := base.Add(time.Hour)
			ok, err := repo.CompareAndSetStage(ctx, record.ID, domain.StageDraft, domain.StageScheduled, next)
			if err != nil || !ok {
				t.Fatalf("expected swap, got ok=%v err=%v", ok, err)
			}

			ok, err = repo.CompareAndSetStage(ctx, record.ID, domain.StageDraft, domain.StageCopyEdit, next)
			if err != nil || ok {
				t.Fatalf("expected stale swap to fail quietly, got ok=%v err=%v", ok, err)
			}

			stored, err := repo.GetByID(ctx, record.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if stored.Stage != domain.StageScheduled || stored.Status != articles.StatusScheduled {
				t.Fatalf("unexpected stored record %+v", stored)
			}
			if !stored.StageUpdatedAt.Equal(next) {
				t.Fatalf("expected stage_updated_at %s, got %s", next, stored.StageUpdatedAt)
			}

			if _, err := repo.CompareAndSetStage(ctx, uuid.New(), domain.StageDraft, domain.StageCopyEdit, next); !errors.Is(err, interfaces.ErrNotFound) {
				t.Fatalf("expected not found for missing article, got %v", err)
			}
		})
	}
}

func TestRepositoryLockAndDelete(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, factory := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			record, err := repo.Create(ctx, newRecord("delta", base))
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			for i := 0; i < 2; i++ {
				if err := repo.SetLocked(ctx, record.ID, true); err != nil {
					t.Fatalf("lock %d: %v", i, err)
				}
			}
			state, _ := repo.GetState(ctx, record.ID)
			if !state.Locked {
				t.Fatal("expected article to be locked")
			}
			if err := repo.SetLocked(ctx, uuid.New(), true); !errors.Is(err, interfaces.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}

			states, err := repo.ListStates(ctx)
			if err != nil || len(states) != 1 || states[0].ArticleID != record.ID {
				t.Fatalf("unexpected states %+v (%v)", states, err)
			}

			if err := repo.Delete(ctx, record.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repo.GetByID(ctx, record.ID); !errors.Is(err, interfaces.ErrNotFound) {
				t.Fatalf("expected deleted article to be gone, got %v", err)
			}
			if err := repo.Delete(ctx, record.ID); !errors.Is(err, interfaces.ErrNotFound) {
				t.Fatalf("expected not found on second delete, got %v", err)
			}
		})
	}
}

func TestRepositoryCompareAndSetRefusesLockedArticle(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, factory := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			record, err := repo.Create(ctx, newRecord("epsilon", base))
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := repo.SetLocked(ctx, record.ID, true); err != nil {
				t.Fatalf("lock: %v", err)
			}

			next := base.Add(time.Hour)
			ok, err := repo.CompareAndSetStage(ctx, record.ID, domain.StageDraft, domain.StageCopyEdit, next)
			if err != nil || ok {
				t.Fatalf("expected locked swap to fail quietly, got ok=%v err=%v", ok, err)
			}
			state, _ := repo.GetState(ctx, record.ID)
			if state.Stage != domain.StageDraft || !state.StageUpdatedAt.Equal(base) {
				t.Fatalf("expected untouched Draft, got %+v", state)
			}

			if err := repo.SetLocked(ctx, record.ID, false); err != nil {
				t.Fatalf("unlock: %v", err)
			}
			ok, err = repo.CompareAndSetStage(ctx, record.ID, domain.StageDraft, domain.StageCopyEdit, next)
			if err != nil || !ok {
				t.Fatalf("expected swap after unlock, got ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestRepositoryCompareAndSetTreatsBlankStageAsDraft(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, factory := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			legacy := newRecord("zeta", base)
			legacy.Stage = ""
			record, err := repo.Create(ctx, legacy)
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			state, _ := repo.GetState(ctx, record.ID)
			if state.Stage != domain.StageDraft {
				t.Fatalf("expected blank stage to read as Draft, got %q", state.Stage)
			}
			ok, err := repo.CompareAndSetStage(ctx, record.ID, domain.StageDraft, domain.StageCopyEdit, base.Add(time.Minute))
			if err != nil || !ok {
				t.Fatalf("expected blank stage to move like Draft, got ok=%v err=%v", ok, err)
			}
			if state, _ := repo.GetState(ctx, record.ID); state.Stage != domain.StageCopyEdit {
				t.Fatalf("expected CopyEdit, got %q", state.Stage)
			}
		})
	}
}
