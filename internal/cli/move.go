package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/ops"
	"github.com/roach88/todo-manager/internal/render"
)

// MoveOptions holds flags for the move command.
type MoveOptions struct {
	*RootOptions
	Board  string
	Step   string
	Orphan bool
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "move",
		Aliases: []string{"mv"},
		Short:   "Move tasks between boards and steps",
	}
	cmd.AddCommand(newMoveTaskCommand(&MoveOptions{RootOptions: rootOpts}))
	return cmd
}

func newMoveTaskCommand(opts *MoveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task <task>...",
		Aliases: []string{"t"},
		Short:   "Move tasks to a board and/or step",
		Long: `Move one or more tasks. Every selector must match at least one task.

With --board the tasks go to that board, on --step or on the default step of
its flow. With only --step the tasks stay on their boards; all of them must
follow the same flow. --orphan detaches the tasks from their boards.

Prints the ids of the selected tasks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return moveTasks(ctx, s, opts, args)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Board, "board", "b", "", "target board")
	cmd.Flags().StringVarP(&opts.Step, "step", "s", "", "target step")
	cmd.Flags().BoolVarP(&opts.Orphan, "orphan", "o", false, "detach the tasks from their boards")
	cmd.MarkFlagsMutuallyExclusive("orphan", "board")
	cmd.MarkFlagsMutuallyExclusive("orphan", "step")
	cmd.MarkFlagsOneRequired("orphan", "board", "step")
	return cmd
}

func moveTasks(ctx context.Context, s *session, opts *MoveOptions, selectors []string) error {
	collection, err := s.ops.Tasks.GetCollectionBySelectors(ctx, selectors)
	if err != nil {
		return err
	}
	tasks := collection.Values()

	if opts.Orphan {
		// Tasks already without a board are left alone but still reported.
		if _, err := s.ops.OrphanTasks(ctx, tasks); err != nil {
			return err
		}
	} else {
		target := ops.MoveTarget{StepExpr: opts.Step}
		if opts.Board != "" {
			if target.Board, err = s.ops.Boards.GetOrFailByRegExp(ctx, opts.Board); err != nil {
				return err
			}
		}
		if _, err := s.ops.MoveTasks(ctx, tasks, target); err != nil {
			return err
		}
	}

	ids := make([]entity.ID, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return s.out.Show(render.IDList(ids), ids)
}
