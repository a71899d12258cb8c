package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/todo-manager/internal/config"
	"github.com/roach88/todo-manager/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigFile  string
	StorageType string
	StoragePath string
	NoColor     bool

	// HomeDir and WorkDir locate the configuration files; empty means the
	// user's home and the current directory.
	HomeDir string
	WorkDir string
	// In answers confirmation prompts; nil means os.Stdin.
	In io.Reader
	// StoreOptions are passed to the repository (tests inject ids and clocks).
	StoreOptions []store.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the todo-manager CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{})
}

// NewRootCommandWith creates the root command around opts.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo-manager",
		Short: "todo-manager - tasks, boards and flows from the terminal",
		Long: `Manage tasks on boards. Every board follows a flow: an ordered list of
steps a task moves through.

Entities are selected by regular expressions matched against their id first
and their name second.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "read this configuration file after the global and project ones")
	flags.StringVar(&opts.StorageType, "storage-type", "", "storage backend (yaml|sqlite)")
	flags.StringVar(&opts.StoragePath, "storage-path", "", "storage directory")
	flags.BoolVar(&opts.NoColor, "no-color", false, "raw output without colors")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// Execute runs cmd and returns the process exit code. Errors already
// reported by a command are not printed again.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag and argument errors from cobra.
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitCommandError
	}
	if exitErr.Err == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", exitErr.Message)
	}
	return GetExitCode(err)
}

func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		HomeDir: o.HomeDir,
		WorkDir: o.WorkDir,
		File:    o.ConfigFile,
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	if o.NoColor {
		cfg.View.AllowColor = false
	}
	return cfg, nil
}

func (o *RootOptions) input() io.Reader {
	if o.In != nil {
		return o.In
	}
	return os.Stdin
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
