package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/todo-manager/internal/edition"
	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/render"
)

// EditOptions holds flags for the edit commands.
type EditOptions struct {
	*RootOptions
	Name        string
	Description string
	File        string
}

// fields returns the changed name and description, nil when not given.
func (o *EditOptions) fields(cmd *cobra.Command) (name, description *string) {
	if cmd.Flags().Changed("name") {
		name = &o.Name
	}
	if cmd.Flags().Changed("description") {
		description = &o.Description
	}
	return name, description
}

// EditResponse is the JSON payload of edit flow.
type EditResponse struct {
	Flow    render.FlowView `json:"flow"`
	Added   []entity.ID     `json:"added"`
	Edited  []entity.ID     `json:"edited"`
	Removed []entity.ID     `json:"removed"`
}

// NewEditCommand creates the edit command and its subcommands.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit",
		Aliases: []string{"update", "e"},
		Short:   "Edit tasks, boards and flows",
	}
	cmd.AddCommand(newEditTaskCommand(&EditOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newEditBoardCommand(&EditOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newEditFlowCommand(&EditOptions{RootOptions: rootOpts}))
	return cmd
}

func addFieldFlags(cmd *cobra.Command, opts *EditOptions) {
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "new description")
}

func newEditTaskCommand(opts *EditOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task <task>",
		Aliases: []string{"t"},
		Short:   "Rename a task or change its description",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, description := opts.fields(cmd)
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				task, err := s.ops.Tasks.GetOrFailByRegExp(ctx, args[0])
				if err != nil {
					return err
				}
				if task, err = s.ops.Tasks.Edit(ctx, task, name, description); err != nil {
					return err
				}
				row, err := render.NewTaskRow(ctx, s.ops.Tasks, task)
				if err != nil {
					return err
				}
				return s.out.Show(task.ID.String(), render.NewTaskView(row))
			})
		},
	}
	addFieldFlags(cmd, opts)
	cmd.MarkFlagsOneRequired("name", "description")
	return cmd
}

func newEditBoardCommand(opts *EditOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board <board>",
		Aliases: []string{"b"},
		Short:   "Rename a board or change its description",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, description := opts.fields(cmd)
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				board, err := s.ops.Boards.GetOrFailByRegExp(ctx, args[0])
				if err != nil {
					return err
				}
				if board, err = s.ops.Boards.Edit(ctx, board, name, description); err != nil {
					return err
				}
				return s.out.Show(board.ID.String(), render.NewBoardView(board))
			})
		},
	}
	addFieldFlags(cmd, opts)
	cmd.MarkFlagsOneRequired("name", "description")
	return cmd
}

func newEditFlowCommand(opts *EditOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flow <flow>",
		Aliases: []string{"f"},
		Short:   "Edit a flow and its steps",
		Long: `Edit a flow from an edition document, or rename it.

The document must mention every current step with one action:

  name: development
  default: todo
  steps:
    - {action: keep, name: todo}
    - {action: edit, name: doing, newName: in progress, color: yellow}
    - {action: remove, name: blocked}
    - {action: add, name: done, color: green}

"todo-manager show flow <flow> --edition" prints a document that keeps
everything as is. Removing a step tasks are assigned to is refused.

Prints the ids of the flow and of the added, edited and removed steps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, description := opts.fields(cmd)
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				flow, err := s.ops.Flows.GetOrFailByRegExp(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.File == "" {
					if flow, err = s.ops.Flows.Rename(ctx, flow, name, description); err != nil {
						return err
					}
					return s.out.Show(flow.ID.String(), EditResponse{Flow: render.NewFlowView(flow)})
				}
				return editFlow(ctx, s, flow, opts.File)
			})
		},
	}
	addFieldFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "edition document to apply (- for stdin)")
	cmd.MarkFlagsOneRequired("file", "name", "description")
	cmd.MarkFlagsMutuallyExclusive("file", "name")
	cmd.MarkFlagsMutuallyExclusive("file", "description")
	return cmd
}

func editFlow(ctx context.Context, s *session, flow *entity.Flow, path string) error {
	data, err := readInput(path, s.in)
	if err != nil {
		return err
	}
	ed, err := edition.Parse(data)
	if err != nil {
		return err
	}
	res, err := s.ops.Flows.ApplyEdition(ctx, flow, ed)
	if err != nil {
		return err
	}
	return s.out.Show(render.IDList(res.AffectedIDs()), EditResponse{
		Flow:    render.NewFlowView(res.Flow),
		Added:   stepIDs(res.Added),
		Edited:  stepIDs(res.Edited),
		Removed: stepIDs(res.Removed),
	})
}

func stepIDs(steps []*entity.FlowStep) []entity.ID {
	ids := make([]entity.ID, len(steps))
	for i, step := range steps {
		ids[i] = step.ID
	}
	return ids
}
