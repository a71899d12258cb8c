package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/todo-manager/internal/edition"
	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/render"
)

// CreateOptions holds flags for the create commands.
type CreateOptions struct {
	*RootOptions
	Name        string
	Description string
	Board       string
	Step        string

	// flow only
	File    string
	Steps   []string
	Default string
}

// NewCreateCommand creates the create command and its subcommands.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"new", "add", "c"},
		Short:   "Create tasks, boards and flows",
	}
	cmd.AddCommand(newCreateTaskCommand(&CreateOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newCreateBoardCommand(&CreateOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newCreateFlowCommand(&CreateOptions{RootOptions: rootOpts}))
	return cmd
}

func newCreateTaskCommand(opts *CreateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task [task-id]",
		Aliases: []string{"t"},
		Short:   "Create a task",
		Long: `Create a task, optionally attached to a board.

When --board is given without --step the task goes to the default step of
the board's flow.

Example:
  todo-manager create task -n "Write release notes"
  todo-manager create task notes -n "Write release notes" -b sprint -s todo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return createTask(ctx, s, opts, optionalID(args))
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "task name (required)")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&opts.Board, "board", "b", "", "attach the task to this board")
	cmd.Flags().StringVarP(&opts.Step, "step", "s", "", "step of the board to attach the task to")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func createTask(ctx context.Context, s *session, opts *CreateOptions, id entity.ID) error {
	if opts.Step != "" && opts.Board == "" {
		return entity.NewInvalidInputError("--step needs --board")
	}

	var board *entity.Board
	if opts.Board != "" {
		var err error
		if board, err = s.ops.Boards.GetOrFailByRegExp(ctx, opts.Board); err != nil {
			return err
		}
		// Resolve the step before anything is written.
		if _, err := s.ops.Boards.StepFor(board, opts.Step); err != nil {
			return err
		}
	}

	task, err := s.ops.Tasks.Create(id, opts.Name, opts.Description)
	if err != nil {
		return err
	}
	if task, err = s.ops.Tasks.Save(ctx, task); err != nil {
		return err
	}
	if board != nil {
		if _, err = s.ops.Boards.Attach(ctx, task, board, opts.Step); err != nil {
			return err
		}
	}

	row, err := render.NewTaskRow(ctx, s.ops.Tasks, task)
	if err != nil {
		return err
	}
	return s.out.Show(task.ID.String(), render.NewTaskView(row))
}

func newCreateBoardCommand(opts *CreateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board <flow> [board-id]",
		Aliases: []string{"b"},
		Short:   "Create a board following <flow>",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				flow, err := s.ops.Flows.GetOrFailByRegExp(ctx, args[0])
				if err != nil {
					return err
				}
				board, err := s.ops.Boards.Create(optionalID(args[1:]), opts.Name, opts.Description, flow)
				if err != nil {
					return err
				}
				if board, err = s.ops.Boards.Save(ctx, board); err != nil {
					return err
				}
				return s.out.Show(board.ID.String(), render.NewBoardView(board))
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "board name (required)")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "board description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCreateFlowCommand(opts *CreateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flow [flow-id]",
		Aliases: []string{"f"},
		Short:   "Create a flow",
		Long: `Create a flow from an edition document or from flags.

The edition document (YAML, "-" reads stdin) may only add steps:

  name: development
  default: todo
  steps:
    - {action: add, name: todo}
    - {action: add, name: doing, color: yellow}
    - {action: add, name: done, color: green}

Example:
  todo-manager create flow -f flow.yml
  todo-manager create flow -n development --step todo --step doing --step done --default todo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return createFlow(ctx, s, opts, optionalID(args))
			})
		},
	}
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "edition document to create the flow from (- for stdin)")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "flow name")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "flow description")
	cmd.Flags().StringArrayVar(&opts.Steps, "step", nil, "add a step (repeatable, in order)")
	cmd.Flags().StringVar(&opts.Default, "default", "", "name of the default step")
	cmd.MarkFlagsMutuallyExclusive("file", "name")
	cmd.MarkFlagsOneRequired("file", "name")
	return cmd
}

func createFlow(ctx context.Context, s *session, opts *CreateOptions, id entity.ID) error {
	var ed *edition.FlowEdition
	if opts.File != "" {
		data, err := readInput(opts.File, s.in)
		if err != nil {
			return err
		}
		if ed, err = edition.Parse(data); err != nil {
			return err
		}
	} else {
		ed = edition.FromStepNames(opts.Name, opts.Steps, opts.Default)
		if opts.Description != "" {
			desc := entity.NormalizeText(opts.Description)
			ed.Description = &desc
		}
	}

	res, err := s.ops.Flows.CreateFromEdition(ctx, id, ed)
	if err != nil {
		return err
	}
	return s.out.Show(res.Flow.ID.String(), render.NewFlowView(res.Flow))
}

func optionalID(args []string) entity.ID {
	if len(args) == 0 {
		return ""
	}
	return entity.ID(args[0])
}

// readInput reads a file, or in when path is "-".
func readInput(path string, in io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, entity.NewInvalidInputError("read " + path + ": " + err.Error())
	}
	return data, nil
}
