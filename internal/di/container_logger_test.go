package di_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/commands/workflowcmd"
	"github.com/goliatone/go-newsroom/internal/di"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/runtimeconfig"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
)

func TestContainerLogsConfiguration(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Metrics = true

	rec := newRecordingProvider()

	if _, err := di.NewContainer(cfg, di.WithLoggerProvider(rec)); err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	entry := rec.find("container.configured")
	if entry == nil {
		t.Fatalf("expected container.configured log entry, got %#v", rec.entries)
	}
	if got := entry.fields["storage"]; got != "memory" {
		t.Fatalf("expected storage field to be memory, got %v", got)
	}
	if got := entry.fields["metrics"]; got != true {
		t.Fatalf("expected metrics field to be true, got %v", got)
	}
	if got := entry.fields["module"]; got != "newsroom.di" {
		t.Fatalf("expected module field to be newsroom.di, got %v", got)
	}
}

func TestContainerEngineLogsThroughWorkflowModule(t *testing.T) {
	rec := newRecordingProvider()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithLoggerProvider(rec))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	ctx := context.Background()
	article, err := container.ArticleService().Create(ctx, articles.CreateArticleRequest{
		Title:     "Logged",
		CreatedBy: domain.Actor{ID: "r-1", Role: domain.RoleReporter},
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if _, err := container.Engine().RequestTransition(ctx, article.ID, "toReview", &domain.Actor{ID: "e-1", Role: domain.RoleEditor}); err != nil {
		t.Fatalf("transition: %v", err)
	}

	entry := rec.find("workflow.transition.accepted")
	if entry == nil {
		t.Fatalf("expected workflow.transition.accepted entry, got %#v", rec.entries)
	}
	if got := entry.fields["module"]; got != "newsroom.workflow" {
		t.Fatalf("expected module newsroom.workflow, got %v", got)
	}
}

type recordingProvider struct {
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{entries: []recordedEntry{}}
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{
		provider: p,
		fields: map[string]any{
			"logger": name,
		},
	}
}

func (p *recordingProvider) record(entry recordedEntry) {
	p.entries = append(p.entries, entry)
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	for i := range p.entries {
		if p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	fields   map[string]any
}

var _ interfaces.Logger = (*recordingLogger)(nil)

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args...) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for key, value := range l.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &recordingLogger{
		provider: l.provider,
		fields:   merged,
	}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return &recordingLogger{
		provider: l.provider,
		fields:   cloneFields(l.fields),
	}
}

func (l *recordingLogger) log(level, msg string, args ...any) {
	fields := cloneFields(l.fields)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			break
		}
		key, _ := args[i].(string)
		if key == "" {
			continue
		}
		fields[key] = args[i+1]
	}
	l.provider.record(recordedEntry{
		level:  level,
		msg:    msg,
		fields: fields,
	})
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func TestContainerWarnsWhenHeaderResolverActive(t *testing.T) {
	rec := newRecordingProvider()
	if _, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithLoggerProvider(rec)); err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	entry := rec.find("container.auth.header_resolver")
	if entry == nil || entry.level != "WARN" {
		t.Fatalf("expected header resolver warning, got %#v", rec.entries)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.Secret = "newsroom-secret"
	rec = newRecordingProvider()
	if _, err := di.NewContainer(cfg, di.WithLoggerProvider(rec)); err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if entry := rec.find("container.auth.header_resolver"); entry != nil {
		t.Fatalf("expected no warning with auth enabled, got %#v", entry)
	}
}

func TestContainerCommandHandlersEmitTelemetry(t *testing.T) {
	rec := newRecordingProvider()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithLoggerProvider(rec))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	ctx := context.Background()
	article, err := container.ArticleService().Create(ctx, articles.CreateArticleRequest{
		Title:     "Telemetry",
		CreatedBy: domain.Actor{ID: "r-1", Role: domain.RoleReporter},
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	if _, err := container.LockHandler().SetLocked(ctx, workflowcmd.SetLockCommand{
		ArticleID: article.ID,
		Locked:    true,
		ActorID:   "e-1",
		ActorRole: "editor",
	}); err == nil {
		t.Fatal("expected editor lock to be forbidden")
	}

	entry := rec.find("command.execute.rejected")
	if entry == nil || entry.level != "WARN" {
		t.Fatalf("expected rejected command entry, got %#v", rec.entries)
	}
	if entry.fields["article_id"] != article.ID.String() || entry.fields["operation"] != "workflow.lock" {
		t.Fatalf("expected article and operation fields, got %v", entry.fields)
	}
}
