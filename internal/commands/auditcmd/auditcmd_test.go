package auditcmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/audit"
	"github.com/goliatone/go-newsroom/internal/commands/auditcmd"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/google/uuid"
)

type env struct {
	repo   *articles.MemoryRepository
	log    *audit.MemoryLog
	engine *workflow.Engine
	id     uuid.UUID
}

func setup(t *testing.T) env {
	t.Helper()
	repo := articles.NewMemoryRepository()
	log := audit.NewMemoryLog()
	created := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	article, err := articles.NewService(repo, articles.WithClock(func() time.Time { return created })).
		Create(context.Background(), articles.CreateArticleRequest{Title: "Flood warning"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	return env{repo: repo, log: log, engine: workflow.NewEngine(repo, log), id: article.ID}
}

func TestExportWritesJSONLines(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	editor := &domain.Actor{ID: "ed-1", Role: domain.RoleEditor}
	_, _ = e.engine.RequestTransition(ctx, e.id, workflow.ActionToReview, editor)
	_, _ = e.engine.RequestTransition(ctx, e.id, workflow.ActionPublish, editor)
	_, _ = e.engine.RequestTransition(ctx, e.id, workflow.ActionToLegal, editor)

	var buf bytes.Buffer
	handler := auditcmd.NewExportAuditHandler(e.engine, &buf, nil)
	limit := 2
	if err := handler.Execute(ctx, auditcmd.ExportAuditCommand{ArticleID: e.id, MaxRecords: &limit}); err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d: %q", len(lines), buf.String())
	}
	var newest domain.WorkflowEvent
	if err := json.Unmarshal([]byte(lines[0]), &newest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if newest.Action != workflow.ActionToLegal || !newest.Accepted {
		t.Fatalf("expected newest toLegal event, got %+v", newest)
	}
	var rejected domain.WorkflowEvent
	if err := json.Unmarshal([]byte(lines[1]), &rejected); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rejected.Accepted || rejected.ToStage != nil || rejected.Reason != string(workflow.ReasonInvalidTransition) {
		t.Fatalf("unexpected rejected event %+v", rejected)
	}
}

func TestExportValidation(t *testing.T) {
	e := setup(t)
	handler := auditcmd.NewExportAuditHandler(e.engine, &bytes.Buffer{}, nil)
	negative := -1

	for _, msg := range []auditcmd.ExportAuditCommand{{}, {ArticleID: e.id, MaxRecords: &negative}} {
		if err := handler.Execute(context.Background(), msg); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error for %+v, got %v", msg, err)
		}
	}
}

type observer struct {
	drifts int
	err    error
	calls  int
}

func (o *observer) ObserveReconcile(drifts int, err error) {
	o.calls++
	o.drifts = drifts
	o.err = err
}

func TestReconcileHandlerReportsDrift(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	editor := &domain.Actor{ID: "ed-1", Role: domain.RoleEditor}

	e.log.Fail(errors.New("audit down"))
	_, _ = e.engine.RequestTransition(ctx, e.id, workflow.ActionToReview, editor)
	e.log.Fail(nil)

	obs := &observer{}
	handler := auditcmd.NewReconcileHandler(workflow.NewReconciler(e.repo, e.log), nil,
		auditcmd.ReconcileWithObserver(obs),
		auditcmd.ReconcileWithCronExpression("@every 1h"),
	)

	report, err := handler.Reconcile(ctx, auditcmd.ReconcileCommand{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report.Drifts) != 1 || report.Drifts[0].Stage != domain.StageCopyEdit {
		t.Fatalf("expected CopyEdit drift, got %+v", report.Drifts)
	}
	if obs.calls != 1 || obs.drifts != 1 || obs.err != nil {
		t.Fatalf("unexpected observer state %+v", obs)
	}
	if handler.CronOptions().Expression != "@every 1h" {
		t.Fatalf("expected cron override, got %q", handler.CronOptions().Expression)
	}
	if err := handler.CronHandler()(); err != nil {
		t.Fatalf("cron handler: %v", err)
	}
	if obs.calls != 2 {
		t.Fatalf("expected cron run to be observed, got %d calls", obs.calls)
	}
}

type failingReconciler struct{}

func (failingReconciler) Run(context.Context) (*workflow.ReconcileReport, error) {
	return nil, errors.New("store offline")
}

func TestReconcileHandlerFailure(t *testing.T) {
	obs := &observer{}
	handler := auditcmd.NewReconcileHandler(failingReconciler{}, nil, auditcmd.ReconcileWithObserver(obs))
	err := handler.Execute(context.Background(), auditcmd.ReconcileCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command error, got %v", err)
	}
	if obs.err == nil {
		t.Fatal("expected observer to see the failure")
	}
}
