package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-newsroom/internal/actors"
	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/audit"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/commands/auditcmd"
	"github.com/goliatone/go-newsroom/internal/commands/workflowcmd"
	"github.com/goliatone/go-newsroom/internal/comments"
	adminhttp "github.com/goliatone/go-newsroom/internal/http"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/internal/logging/gologger"
	"github.com/goliatone/go-newsroom/internal/metrics"
	"github.com/goliatone/go-newsroom/internal/runtimeconfig"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	clock          func() time.Time

	bunDB  *bun.DB
	ownsDB bool

	natsConn  *nats.Conn
	eventSink interfaces.EventSink

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	articleRepo  articles.Repository
	durableLog   interfaces.AuditLog
	auditLog     interfaces.AuditLog
	commentStore comments.Store

	rules      *workflow.RuleSet
	engine     *workflow.Engine
	articleSvc articles.Service
	commentSvc *comments.Service
	reconciler *workflow.Reconciler
	resolver   actors.RequestResolver
	jwt        *actors.JWTResolver

	transitionHandler *workflowcmd.TransitionHandler
	lockHandler       *workflowcmd.LockHandler
	reconcileHandler  *auditcmd.ReconcileHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging section.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithArticleRepository overrides the article store.
func WithArticleRepository(repo articles.Repository) Option {
	return func(c *Container) {
		c.articleRepo = repo
	}
}

// WithAuditLog overrides the durable audit log.
func WithAuditLog(log interfaces.AuditLog) Option {
	return func(c *Container) {
		c.durableLog = log
	}
}

// WithEventSink supplies the event sink used when the events feature is on,
// instead of dialing NATS.
func WithEventSink(sink interfaces.EventSink) Option {
	return func(c *Container) {
		c.eventSink = sink
	}
}

// WithRegistry sets the prometheus registry used when metrics are enabled.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// WithClock overrides the time source of the engine and the services.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewContainer validates cfg and builds every service it enables.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureEvents(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureMetrics()
	if err := c.configureWorkflow(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureActors(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureCommands()

	c.logger.Info("container.configured",
		"storage", normalize(cfg.Storage.Provider),
		"driver", normalize(cfg.Storage.Driver),
		"events", cfg.Features.Events,
		"metrics", cfg.Features.Metrics,
		"comments", cfg.Features.Comments,
		"auth", cfg.Auth.Enabled,
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil && c.Config.Features.Logger && normalize(c.Config.Logging.Provider) == "gologger" {
		logCfg := c.Config.Logging
		provider, err := gologger.FromRuntime(logCfg.Level, logCfg.Format, logCfg.AddSource, logCfg.Focus)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "newsroom.di")
	return nil
}

func (c *Container) configureStorage() error {
	if normalize(c.Config.Storage.Provider) == "bun" && c.bunDB == nil {
		db, err := OpenDatabase(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	if c.bunDB != nil {
		if err := EnsureSchema(context.Background(), c.bunDB); err != nil {
			return err
		}
	}

	if c.articleRepo == nil {
		if c.bunDB != nil {
			c.articleRepo = articles.NewBunRepository(c.bunDB)
		} else {
			c.articleRepo = articles.NewMemoryRepository()
		}
	}
	if c.durableLog == nil {
		if c.bunDB != nil {
			c.durableLog = audit.NewBunLog(c.bunDB)
		} else {
			c.durableLog = audit.NewMemoryLog()
		}
	}
	if c.Config.Features.Comments {
		if c.bunDB != nil {
			c.commentStore = comments.NewBunStore(c.bunDB)
		} else {
			c.commentStore = comments.NewMemoryStore()
		}
	}
	return nil
}

func (c *Container) configureEvents() error {
	if !c.Config.Features.Events {
		c.auditLog = c.durableLog
		return nil
	}
	if c.eventSink == nil {
		conn, err := audit.ConnectNATS(c.Config.Events.URL)
		if err != nil {
			return err
		}
		c.natsConn = conn
		c.eventSink = audit.NewNATSSink(conn, c.Config.Events.SubjectPrefix)
	}
	c.auditLog = audit.NewFanout(c.durableLog,
		audit.WithSink(c.eventSink),
		audit.WithFanoutLogger(logging.AuditLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureMetrics() {
	if !c.Config.Features.Metrics {
		return
	}
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
	}
	c.metrics = metrics.New(c.registry)
}

func (c *Container) configureWorkflow() error {
	rules, err := workflow.CompileRules(c.Config.Workflow.Transitions)
	if err != nil {
		return err
	}
	c.rules = rules

	engineOpts := []workflow.Option{
		workflow.WithRules(rules),
		workflow.WithClock(c.clock),
		workflow.WithEventLimits(c.Config.Workflow.DefaultEventLimit, c.Config.Workflow.MaxEventLimit),
		workflow.WithLogger(logging.WorkflowLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		engineOpts = append(engineOpts, workflow.WithObserver(c.metrics))
	}
	c.engine = workflow.NewEngine(c.articleRepo, c.auditLog, engineOpts...)

	c.articleSvc = articles.NewService(c.articleRepo,
		articles.WithAuditLog(c.auditLog),
		articles.WithClock(c.clock),
		articles.WithLogger(logging.ArticlesLogger(c.loggerProvider)),
	)

	if c.commentStore != nil {
		c.commentSvc = comments.NewService(c.commentStore, comments.WithClock(c.clock))
	}

	c.reconciler = workflow.NewReconciler(c.articleRepo, c.durableLog,
		workflow.WithReconcileLogger(logging.AuditLogger(c.loggerProvider)),
		workflow.WithReconcileClock(c.clock),
	)
	return nil
}

func (c *Container) configureActors() error {
	if !c.Config.Auth.Enabled {
		c.resolver = actors.HeaderResolver{}
		c.logger.Warn("container.auth.header_resolver",
			"address", c.Config.HTTP.Address,
			"detail", "actor identity and role are taken from request headers without verification; enable auth for shared deployments",
		)
		return nil
	}
	resolver, err := actors.NewJWTResolver(actors.JWTConfig{
		Secret:   c.Config.Auth.Secret,
		Issuer:   c.Config.Auth.Issuer,
		Audience: c.Config.Auth.Audience,
		Leeway:   c.Config.Auth.Leeway,
	})
	if err != nil {
		return err
	}
	c.jwt = resolver
	c.resolver = resolver
	return nil
}

func (c *Container) configureCommands() {
	logger := logging.CommandsLogger(c.loggerProvider)
	c.transitionHandler = workflowcmd.NewTransitionHandler(c.engine, logger,
		commands.WithTelemetry(commands.DefaultTelemetry[workflowcmd.RequestTransitionCommand](logger)),
	)
	c.lockHandler = workflowcmd.NewLockHandler(c.engine, logger,
		commands.WithTelemetry(commands.DefaultTelemetry[workflowcmd.SetLockCommand](logger)),
	)

	reconcileOpts := []auditcmd.ReconcileHandlerOption{
		auditcmd.ReconcileWithHandlerOptions(
			commands.WithTelemetry(commands.DefaultTelemetry[auditcmd.ReconcileCommand](logger)),
		),
	}
	if spec := strings.TrimSpace(c.Config.Commands.ReconcileCron); spec != "" {
		reconcileOpts = append(reconcileOpts, auditcmd.ReconcileWithCronExpression(spec))
	}
	if c.metrics != nil {
		reconcileOpts = append(reconcileOpts, auditcmd.ReconcileWithObserver(c.metrics))
	}
	c.reconcileHandler = auditcmd.NewReconcileHandler(c.reconciler, logger, reconcileOpts...)
}

// Close releases the NATS connection and any database the container opened.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.natsConn != nil {
		if err := c.natsConn.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("di: drain nats: %w", err))
		}
		c.natsConn = nil
	}
	if c.ownsDB && c.bunDB != nil {
		if err := c.bunDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("di: close database: %w", err))
		}
		c.bunDB = nil
	}
	return errors.Join(errs...)
}

// HTTPHandler returns the admin API, and the metrics endpoint when enabled,
// behind the actor middleware.
func (c *Container) HTTPHandler() (http.Handler, error) {
	mux := http.NewServeMux()

	apiOpts := []adminhttp.AdminOption{
		adminhttp.WithBasePath(c.Config.HTTP.BasePath),
		adminhttp.WithWorkflowService(c.engine),
		adminhttp.WithArticleService(c.articleSvc),
		adminhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.commentSvc != nil {
		apiOpts = append(apiOpts, adminhttp.WithCommentService(c.commentSvc))
	}
	if err := adminhttp.NewAdminAPI(apiOpts...).Register(mux); err != nil {
		return nil, err
	}

	if c.metrics != nil {
		path := strings.TrimSpace(c.Config.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, c.metrics.Handler())
	}

	return actors.Middleware(c.resolver, logging.HTTPLogger(c.loggerProvider))(mux), nil
}

// ExportHandler builds an audit export handler writing to out.
func (c *Container) ExportHandler(out io.Writer) *auditcmd.ExportAuditHandler {
	logger := logging.CommandsLogger(c.loggerProvider)
	return auditcmd.NewExportAuditHandler(c.engine, out, logger,
		commands.WithTelemetry(commands.DefaultTelemetry[auditcmd.ExportAuditCommand](logger)),
	)
}

// LoggerProvider exposes the configured logger provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns the container's own module logger.
func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

// DB exposes the bun handle, nil for memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// Rules returns the compiled transition rules.
func (c *Container) Rules() *workflow.RuleSet {
	return c.rules
}

// Engine returns the workflow engine.
func (c *Container) Engine() *workflow.Engine {
	return c.engine
}

// ArticleService returns the article service.
func (c *Container) ArticleService() articles.Service {
	return c.articleSvc
}

// ArticleRepository exposes the configured article store.
func (c *Container) ArticleRepository() articles.Repository {
	return c.articleRepo
}

// AuditLog returns the audit log the engine appends to.
func (c *Container) AuditLog() interfaces.AuditLog {
	return c.auditLog
}

// CommentService returns the comment service, nil when comments are disabled.
func (c *Container) CommentService() *comments.Service {
	return c.commentSvc
}

// Reconciler returns the audit reconciler.
func (c *Container) Reconciler() *workflow.Reconciler {
	return c.reconciler
}

// Metrics returns the prometheus instruments, nil when metrics are disabled.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Resolver returns the request actor resolver.
func (c *Container) Resolver() actors.RequestResolver {
	return c.resolver
}

// TokenIssuer returns the JWT resolver, nil when auth is disabled.
func (c *Container) TokenIssuer() *actors.JWTResolver {
	return c.jwt
}

// TransitionHandler returns the transition command handler.
func (c *Container) TransitionHandler() *workflowcmd.TransitionHandler {
	return c.transitionHandler
}

// LockHandler returns the lock command handler.
func (c *Container) LockHandler() *workflowcmd.LockHandler {
	return c.lockHandler
}

// ReconcileHandler returns the reconcile command handler.
func (c *Container) ReconcileHandler() *auditcmd.ReconcileHandler {
	return c.reconcileHandler
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
