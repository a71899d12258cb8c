package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/todo-manager/internal/config"
	"github.com/roach88/todo-manager/internal/ops"
	"github.com/roach88/todo-manager/internal/render"
	"github.com/roach88/todo-manager/internal/store"
)

// session is what a command works with: configuration, an open store, the
// operators over it and the output side.
type session struct {
	cfg    *config.Config
	repo   *store.Repository
	ops    *ops.Operators
	view   *render.Renderer
	out    *OutputFormatter
	in     io.Reader
	logger *slog.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Prompts and logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func (o *RootOptions) openSession(cmd *cobra.Command, out *OutputFormatter) (*session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := o.logger(cmd)
	for _, f := range cfg.Files {
		out.VerboseLog("Read configuration from %s", f)
	}

	repo, err := config.OpenRepository(cfg, logger, o.StoreOptions...)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:  cfg,
		repo: repo,
		ops:  ops.New(repo, logger),
		view: render.New(render.Options{
			AllowColor: cfg.View.AllowColor,
			DateFormat: cfg.View.DateFormat,
			Location:   time.Local,
		}),
		out:    out,
		in:     o.input(),
		logger: logger,
	}, nil
}

func (s *session) close() {
	if err := s.repo.Close(); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
}

// run opens a session, calls fn and reports any error through the
// formatter.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	out := o.formatter(cmd)
	s, err := o.openSession(cmd, out)
	if err != nil {
		return out.Fail(err)
	}
	defer s.close()

	if err := fn(cmd.Context(), s); err != nil {
		return out.Fail(err)
	}
	return nil
}
