package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/todo-manager/internal/edition"
	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
	"github.com/roach88/todo-manager/internal/testutil"
)

type fixture struct {
	t    *testing.T
	ctx  context.Context
	repo *store.Repository
	ops  *Operators
}

func newFixture(t *testing.T, opts ...store.Option) *fixture {
	t.Helper()
	opts = append([]store.Option{
		store.WithIDGenerator(testutil.NewSequentialIDs("id")),
		store.WithClock(testutil.NewDeterministicClock()),
	}, opts...)
	repo := store.NewRepository(store.NewMemoryBackend(), opts...)
	return &fixture{t: t, ctx: context.Background(), repo: repo, ops: New(repo, nil)}
}

// flow saves a flow with the given steps; the first is the default.
func (f *fixture) flow(name string, steps ...string) *entity.Flow {
	f.t.Helper()
	def := ""
	if len(steps) > 0 {
		def = steps[0]
	}
	res, err := f.ops.Flows.CreateFromEdition(f.ctx, "", edition.FromStepNames(name, steps, def))
	require.NoError(f.t, err)
	return res.Flow
}

func (f *fixture) board(name string, flow *entity.Flow) *entity.Board {
	f.t.Helper()
	b, err := f.ops.Boards.Create("", name, "", flow)
	require.NoError(f.t, err)
	saved, err := f.ops.Boards.Save(f.ctx, b)
	require.NoError(f.t, err)
	return saved
}

func (f *fixture) task(name string) *entity.Task {
	f.t.Helper()
	task, err := f.ops.Tasks.Create("", name, "")
	require.NoError(f.t, err)
	saved, err := f.ops.Tasks.Save(f.ctx, task)
	require.NoError(f.t, err)
	return saved
}

// attach puts task on board at stepExpr (default step when empty).
func (f *fixture) attach(task *entity.Task, board *entity.Board, stepExpr string) *entity.Board {
	f.t.Helper()
	board = f.reloadBoard(board.ID)
	saved, err := f.ops.Boards.Attach(f.ctx, task, board, stepExpr)
	require.NoError(f.t, err)
	return saved
}

func (f *fixture) reloadBoard(id entity.ID) *entity.Board {
	f.t.Helper()
	b, err := f.ops.Boards.GetOrFail(f.ctx, id)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) reloadTask(id entity.ID) *entity.Task {
	f.t.Helper()
	task, err := f.ops.Tasks.GetOrFail(f.ctx, id)
	require.NoError(f.t, err)
	return task
}

func (f *fixture) stepOf(task *entity.Task) string {
	f.t.Helper()
	step, err := f.ops.Tasks.Step(f.ctx, task)
	require.NoError(f.t, err)
	if step == nil {
		return ""
	}
	return step.Name
}

func names[E entity.Entity](entities []E) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Meta().Name
	}
	return out
}

func ids[E entity.Entity](entities []E) []entity.ID {
	out := make([]entity.ID, len(entities))
	for i, e := range entities {
		out[i] = e.Meta().ID
	}
	return out
}
