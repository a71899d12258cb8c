package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/ops"
	"github.com/roach88/todo-manager/internal/render"
)

// RemoveOptions holds flags for the remove commands.
type RemoveOptions struct {
	*RootOptions
	Confirm   bool
	Recursive bool
	Boards    bool
}

// RemoveResponse is the JSON payload of the remove commands.
type RemoveResponse struct {
	Removed   []entity.ID `json:"removed"`
	Orphaned  []entity.ID `json:"orphaned"`
	Cancelled bool        `json:"cancelled,omitempty"`
}

// NewRemoveCommand creates the remove command and its subcommands.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"delete", "rm"},
		Short:   "Remove tasks, boards and flows",
	}
	cmd.AddCommand(newRemoveTaskCommand(&RemoveOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newRemoveBoardCommand(&RemoveOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newRemoveFlowCommand(&RemoveOptions{RootOptions: rootOpts}))
	return cmd
}

func addConfirmFlag(cmd *cobra.Command, opts *RemoveOptions) {
	cmd.Flags().BoolVarP(&opts.Confirm, "confirm", "y", false, "do not ask for confirmation")
}

func newRemoveTaskCommand(opts *RemoveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task <task>...",
		Aliases: []string{"t"},
		Short:   "Remove tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				tasks, err := s.ops.Tasks.GetCollectionBySelectors(ctx, args)
				if err != nil {
					return err
				}
				return removePlan(ctx, s, opts, s.ops.PlanTaskRemoval(tasks))
			})
		},
	}
	addConfirmFlag(cmd, opts)
	return cmd
}

func newRemoveBoardCommand(opts *RemoveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board <board>...",
		Aliases: []string{"b"},
		Short:   "Remove boards; their tasks become orphans unless --recursive",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				boards, err := s.ops.Boards.GetCollectionBySelectors(ctx, args)
				if err != nil {
					return err
				}
				return removePlan(ctx, s, opts, s.ops.PlanBoardRemoval(boards, opts.Recursive))
			})
		},
	}
	addConfirmFlag(cmd, opts)
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "remove the tasks of the boards too")
	return cmd
}

func newRemoveFlowCommand(opts *RemoveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flow <flow>...",
		Aliases: []string{"f"},
		Short:   "Remove flows and their steps",
		Long: `Remove flows and their steps.

A flow used by boards is only removed with --boards, which removes those
boards too. Their tasks become orphans unless --recursive is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				flows, err := s.ops.Flows.GetCollectionBySelectors(ctx, args)
				if err != nil {
					return err
				}
				plan, err := s.ops.PlanFlowRemoval(ctx, flows, opts.Boards, opts.Recursive)
				if err != nil {
					return err
				}
				return removePlan(ctx, s, opts, plan)
			})
		},
	}
	addConfirmFlag(cmd, opts)
	cmd.Flags().BoolVarP(&opts.Boards, "boards", "b", false, "remove the boards using the flows")
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "remove the tasks of those boards too")
	return cmd
}

// removePlan lists what plan removes and asks for confirmation unless
// --confirm, then executes plan. Declining changes nothing.
func removePlan(ctx context.Context, s *session, opts *RemoveOptions, plan *ops.RemovalPlan) error {
	resp := RemoveResponse{Removed: plan.IDs(), Orphaned: taskIDs(plan.Orphaned)}

	if !opts.Confirm {
		fmt.Fprintln(s.out.GetErrWriter(), s.view.Removal(plan))
		ok, err := confirm(s.out.GetErrWriter(), s.in, describePlan(plan))
		if err != nil {
			return err
		}
		if !ok {
			resp.Removed = []entity.ID{}
			resp.Cancelled = true
			return s.out.Show("Cancelled.", resp)
		}
	}

	if err := s.ops.ExecuteRemoval(ctx, plan); err != nil {
		return err
	}
	return s.out.Show(render.IDList(resp.Removed), resp)
}

func describePlan(plan *ops.RemovalPlan) string {
	var parts []string
	count := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	count(len(plan.Flows), "flow(s)")
	count(len(plan.Steps), "step(s)")
	count(len(plan.Boards), "board(s)")
	count(len(plan.Tasks), "task(s)")
	q := "Remove " + strings.Join(parts, ", ")
	if len(plan.Orphaned) > 0 {
		q += fmt.Sprintf(" and detach %d task(s)", len(plan.Orphaned))
	}
	return q + "?"
}

func taskIDs(tasks []*entity.Task) []entity.ID {
	ids := make([]entity.ID, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}
