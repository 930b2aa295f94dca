package app

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/mindmap/internal/archive"
	"github.com/dmitrijs2005/mindmap/internal/autosave"
	"github.com/dmitrijs2005/mindmap/internal/config"
	"github.com/dmitrijs2005/mindmap/internal/dbx"
	"github.com/dmitrijs2005/mindmap/internal/delivery"
	"github.com/dmitrijs2005/mindmap/internal/generate"
	"github.com/dmitrijs2005/mindmap/internal/graph"
	"github.com/dmitrijs2005/mindmap/internal/logging"
	"github.com/dmitrijs2005/mindmap/internal/repositories/repomanager"
	"github.com/dmitrijs2005/mindmap/internal/services"
	"github.com/dmitrijs2005/mindmap/internal/session"
)

type App struct {
	config *config.Config
	db     *sql.DB
	logger logging.Logger

	accounts  *services.AccountService
	documents *services.DocumentService
	sessions  *session.Store
	sender    delivery.Sender
	generator generate.Generator

	editor      *graph.Editor
	autosave    *autosave.Coordinator
	unsubscribe func()

	ownerID string
	email   string

	reader *bufio.Reader
	out    io.Writer
}

type deps struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	archiver  services.SnapshotArchiver
	sender    delivery.Sender
	generator generate.Generator
	in        io.Reader
	out       io.Writer
}

// NewApp opens the database, applies migrations and builds every service.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	dialect, err := dbx.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, dialect, cfg.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	repos := repomanager.NewSQLRepositoryManager(dialect)
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var archiver services.SnapshotArchiver
	s3a, err := archive.NewS3Archiver(ctx, cfg.S3)
	if err != nil {
		logger.Warn(ctx, "snapshot archive disabled", "error", err)
	} else if s3a != nil {
		archiver = s3a
	}

	return newApp(cfg, logger, deps{
		db:        db,
		repos:     repos,
		archiver:  archiver,
		sender:    delivery.New(cfg.SMTP, cfg.OtpLifetime, logger),
		generator: generate.NewGeminiClient(cfg.GenAI, nil),
		in:        os.Stdin,
		out:       os.Stdout,
	}), nil
}

func newApp(cfg *config.Config, logger logging.Logger, d deps) *App {
	a := &App{
		config:    cfg,
		db:        d.db,
		logger:    logger,
		accounts:  services.NewAccountService(d.db, d.repos, logger),
		documents: services.NewDocumentService(d.db, d.repos, d.archiver, logger),
		sessions:  session.NewStore(d.db, d.repos, cfg.Session.Secret, cfg.Session.TTL),
		sender:    d.sender,
		generator: d.generator,
		editor:    graph.NewEditor(),
		reader:    bufio.NewReader(d.in),
		out:       d.out,
	}
	a.autosave = autosave.New(a.editor, a.documents, cfg.AutoSaveDelay, cfg.OperationTimeout, logger)
	a.unsubscribe = a.editor.Subscribe(a.autosave.Observe)
	return a
}

// Run restores a remembered session, runs the REPL and closes the app.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

// Root prints the banner and blocks in the REPL until exit or EOF.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to Mindmap (type 'help' for commands)")
	a.restoreSession(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close flushes pending edits and releases the database. The final save
// runs even when ctx is already cancelled, bounded by the operation timeout.
func (a *App) Close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if a.isLoggedIn() {
		ctx, cancel := a.opContext(ctx)
		if err := a.autosave.Close(ctx); err != nil {
			a.logger.Error(ctx, "final save failed", "error", err)
		}
		cancel()
	}
	a.unsubscribe()
	if err := a.db.Close(); err != nil {
		a.logger.Warn(ctx, "closing database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.ownerID != ""
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	s := a.email
	if title := a.editor.Title(); title != "" {
		s += " | " + title
	}
	if a.autosave.Pending() {
		s += " *"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.OperationTimeout)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
