package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todo-manager/internal/edition"
	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/ops"
	"github.com/roach88/todo-manager/internal/render"
)

// ShowOptions holds flags for the show commands.
type ShowOptions struct {
	*RootOptions
	Filter  string
	Board   string
	Steps   []string
	Quiet   bool
	Edition bool
}

// NewShowCommand creates the show command and its subcommands.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"list", "ls", "l"},
		Short:   "Show tasks, boards, flows and the configuration",
	}
	cmd.AddCommand(newShowTaskCommand(&ShowOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newShowBoardCommand(&ShowOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newShowFlowCommand(&ShowOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newShowConfigurationCommand(rootOpts))
	return cmd
}

func addListFlags(cmd *cobra.Command, opts *ShowOptions) {
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "keep entities whose id or name matches the regexp (ignored with a selector)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print ids only")
}

func newShowTaskCommand(opts *ShowOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task [task]",
		Aliases: []string{"tasks", "t"},
		Short:   "List tasks grouped by board, or show one task",
		Long: `Without a selector, list tasks grouped by board, ordered by board creation,
step and recency. Filters combine: --board, then --filter, then --step
(repeatable; a task on any of the matched steps is kept).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if len(args) == 1 {
					return showTaskDetail(ctx, s, opts, args[0])
				}
				return showTasks(ctx, s, opts)
			})
		},
	}
	addListFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Board, "board", "b", "", "keep tasks on this board")
	cmd.Flags().StringArrayVarP(&opts.Steps, "step", "s", nil, "keep tasks on steps matching the regexp (repeatable)")
	return cmd
}

func showTaskDetail(ctx context.Context, s *session, opts *ShowOptions, selector string) error {
	task, err := s.ops.Tasks.GetOrFailByRegExp(ctx, selector)
	if err != nil {
		return err
	}
	if opts.Quiet {
		return s.out.Show(task.ID.String(), task.ID)
	}
	row, err := render.NewTaskRow(ctx, s.ops.Tasks, task)
	if err != nil {
		return err
	}
	return s.out.Show(s.view.TaskDetail(row), render.NewTaskView(row))
}

func showTasks(ctx context.Context, s *session, opts *ShowOptions) error {
	filters, err := taskFilters(ctx, s, opts)
	if err != nil {
		return err
	}
	tasks, err := s.ops.Tasks.GetCollectionWithFilters(ctx, filters)
	if err != nil {
		return err
	}
	rows, err := render.TaskRows(ctx, s.ops.Tasks, tasks.Values())
	if err != nil {
		return err
	}
	if opts.Quiet {
		ids := make([]entity.ID, len(rows))
		for i, row := range rows {
			ids[i] = row.Task.ID
		}
		return s.out.Show(render.IDList(ids), ids)
	}
	return s.out.Show(s.view.Tasks(render.GroupRows(rows)), render.NewTaskViews(rows))
}

func taskFilters(ctx context.Context, s *session, opts *ShowOptions) (ops.TaskFilters, error) {
	var filters ops.TaskFilters
	if opts.Board != "" {
		board, err := s.ops.Boards.GetOrFailByRegExp(ctx, opts.Board)
		if err != nil {
			return filters, err
		}
		filters.Board = board
	}
	if opts.Filter != "" {
		re, err := ops.CompileSelector(opts.Filter)
		if err != nil {
			return filters, err
		}
		filters.Pattern = re
	}
	if len(opts.Steps) > 0 {
		collections := make([]*entity.Collection[*entity.FlowStep], 0, len(opts.Steps))
		for _, expr := range opts.Steps {
			steps, err := s.ops.Steps.GetCollectionByRegExp(ctx, expr)
			if err != nil {
				return filters, err
			}
			collections = append(collections, steps)
		}
		filters.Steps = ops.MergeCollections(collections...)
	}
	return filters, nil
}

func newShowBoardCommand(opts *ShowOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board [board]",
		Aliases: []string{"boards", "b"},
		Short:   "List boards, or show one board",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if len(args) == 1 {
					board, err := s.ops.Boards.GetOrFailByRegExp(ctx, args[0])
					if err != nil {
						return err
					}
					if opts.Quiet {
						return s.out.Show(board.ID.String(), board.ID)
					}
					return s.out.Show(s.view.BoardDetail(board), render.NewBoardView(board))
				}

				boards, err := listOrFilter(ctx, &s.ops.Boards.EntityOperators, opts.Filter)
				if err != nil {
					return err
				}
				if opts.Quiet {
					return s.out.Show(render.IDs(boards), idsOf(boards))
				}
				return s.out.Show(s.view.Boards(boards), render.NewBoardViews(boards))
			})
		},
	}
	addListFlags(cmd, opts)
	return cmd
}

func newShowFlowCommand(opts *ShowOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flow [flow]",
		Aliases: []string{"flows", "f"},
		Short:   "List flows, or show one flow",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if len(args) == 1 {
					return showFlowDetail(ctx, s, opts, args[0])
				}
				if opts.Edition {
					return entity.NewInvalidInputError("--edition needs a flow selector")
				}

				flows, err := listOrFilter(ctx, &s.ops.Flows.EntityOperators, opts.Filter)
				if err != nil {
					return err
				}
				if opts.Quiet {
					return s.out.Show(render.IDs(flows), idsOf(flows))
				}
				return s.out.Show(s.view.Flows(flows), render.NewFlowViews(flows))
			})
		},
	}
	addListFlags(cmd, opts)
	cmd.Flags().BoolVarP(&opts.Edition, "edition", "e", false, "print the flow as an edition document that keeps every step")
	cmd.MarkFlagsMutuallyExclusive("edition", "quiet")
	return cmd
}

func showFlowDetail(ctx context.Context, s *session, opts *ShowOptions, selector string) error {
	flow, err := s.ops.Flows.GetOrFailByRegExp(ctx, selector)
	if err != nil {
		return err
	}
	switch {
	case opts.Quiet:
		return s.out.Show(flow.ID.String(), flow.ID)
	case opts.Edition:
		ed := edition.FromFlow(flow)
		data, err := edition.Marshal(ed)
		if err != nil {
			return err
		}
		return s.out.Show(strings.TrimSuffix(string(data), "\n"), ed)
	default:
		return s.out.Show(s.view.FlowDetail(flow), render.NewFlowView(flow))
	}
}

func newShowConfigurationCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "configuration",
		Aliases: []string{"config", "conf"},
		Short:   "Show the effective configuration and the files it was read from",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			cfg, err := rootOpts.loadConfig(cmd)
			if err != nil {
				return out.Fail(err)
			}
			return out.Show(render.New(render.Options{}).Configuration(cfg), cfg)
		},
	}
}

// listOrFilter lists every entity, or those whose id or name matches filter.
func listOrFilter[E entity.Entity](ctx context.Context, o *ops.EntityOperators[E], filter string) ([]E, error) {
	var (
		c   *entity.Collection[E]
		err error
	)
	if filter != "" {
		c, err = o.GetCollectionByRegExp(ctx, filter)
	} else {
		c, err = o.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	return c.Values(), nil
}

func idsOf[E entity.Entity](entities []E) []entity.ID {
	ids := make([]entity.ID, len(entities))
	for i, e := range entities {
		ids[i] = e.Meta().ID
	}
	return ids
}
