package workflowcmd_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/audit"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/commands/workflowcmd"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/google/uuid"
)

func setup(t *testing.T) (*workflow.Engine, *audit.MemoryLog, uuid.UUID) {
	t.Helper()
	repo := articles.NewMemoryRepository()
	log := audit.NewMemoryLog()
	created := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	article, err := articles.NewService(repo, articles.WithClock(func() time.Time { return created })).
		Create(context.Background(), articles.CreateArticleRequest{Title: "Port strike ends"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	return workflow.NewEngine(repo, log), log, article.ID
}

func TestTransitionHandlerAppliesAction(t *testing.T) {
	engine, _, id := setup(t)
	handler := workflowcmd.NewTransitionHandler(engine, nil)

	result, err := handler.Transition(context.Background(), workflowcmd.RequestTransitionCommand{
		ArticleID: id,
		Action:    " toReview ",
		ActorID:   "ed-1",
		ActorRole: "Editor",
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !result.Accepted || result.NewStage != domain.StageCopyEdit {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTransitionHandlerPassesRejectionsThrough(t *testing.T) {
	engine, log, id := setup(t)
	handler := workflowcmd.NewTransitionHandler(engine, nil)

	err := handler.Execute(context.Background(), workflowcmd.RequestTransitionCommand{
		ArticleID: id,
		Action:    workflow.ActionPublish,
		ActorID:   "ed-1",
		ActorRole: "editor",
	})
	if workflow.ReasonOf(err) != workflow.ReasonInvalidTransition {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected workflow category to survive, got %v", err)
	}

	err = handler.Execute(context.Background(), workflowcmd.RequestTransitionCommand{
		ArticleID: id,
		Action:    workflow.ActionToReview,
		ActorID:   "x",
		ActorRole: "visitor",
	})
	if workflow.ReasonOf(err) != workflow.ReasonUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if log.Count(id) != 2 {
		t.Fatalf("expected both rejections to be audited, got %d", log.Count(id))
	}
}

func TestTransitionHandlerValidation(t *testing.T) {
	engine, _, _ := setup(t)
	handler := workflowcmd.NewTransitionHandler(engine, nil)

	err := handler.Execute(context.Background(), workflowcmd.RequestTransitionCommand{Action: workflow.ActionToReview})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLockHandler(t *testing.T) {
	engine, _, id := setup(t)
	handler := workflowcmd.NewLockHandler(engine, nil, commands.WithTimeout[workflowcmd.SetLockCommand](time.Second))

	state, err := handler.SetLocked(context.Background(), workflowcmd.SetLockCommand{
		ArticleID: id,
		Locked:    true,
		ActorID:   "ad-1",
		ActorRole: "admin",
	})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !state.Locked {
		t.Fatal("expected locked state")
	}

	err = handler.Execute(context.Background(), workflowcmd.SetLockCommand{
		ArticleID: id,
		ActorID:   "ed-1",
		ActorRole: "editor",
	})
	if workflow.ReasonOf(err) != workflow.ReasonForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	if got := handler.CLIOptions().Path; len(got) != 2 || got[1] != "lock" {
		t.Fatalf("unexpected CLI path %v", got)
	}
}

func TestTransitionHandlerReportsThroughTelemetry(t *testing.T) {
	engine, _, id := setup(t)
	var infos []commands.TelemetryInfo
	handler := workflowcmd.NewTransitionHandler(engine, nil,
		commands.WithTelemetry[workflowcmd.RequestTransitionCommand](func(_ context.Context, _ workflowcmd.RequestTransitionCommand, info commands.TelemetryInfo) {
			infos = append(infos, info)
		}),
	)

	result, err := handler.Transition(context.Background(), workflowcmd.RequestTransitionCommand{
		ArticleID: id,
		Action:    workflow.ActionPublish,
		ActorID:   "ed-1",
		ActorRole: "editor",
	})
	if workflow.ReasonOf(err) != workflow.ReasonInvalidTransition {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	if result == nil || result.Accepted || result.FromStage != domain.StageDraft {
		t.Fatalf("expected rejected result alongside the error, got %+v", result)
	}

	if len(infos) != 1 {
		t.Fatalf("expected one telemetry call, got %d", len(infos))
	}
	info := infos[0]
	if info.Status != commands.TelemetryStatusFailed || info.Operation != "workflow.transition" {
		t.Fatalf("unexpected telemetry %+v", info)
	}
	if info.Fields["article_id"] != id.String() || info.Fields["action"] != workflow.ActionPublish || info.Fields["actor_role"] != "editor" {
		t.Fatalf("expected article fields, got %v", info.Fields)
	}
}
