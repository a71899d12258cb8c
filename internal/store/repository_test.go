package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/testutil"
)

func newTestRepository(t *testing.T) (*Repository, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	repo := NewRepository(backend,
		WithIDGenerator(testutil.NewSequentialIDs("id")),
		WithClock(testutil.NewDeterministicClock()),
	)
	return repo, backend
}

func mustSet[E entity.Entity](t *testing.T, repo *Repository, e E) E {
	t.Helper()
	saved, err := repo.Set(context.Background(), e)
	require.NoError(t, err)
	return saved.(E)
}

// seedBoard saves a two step flow, a board on it and the given tasks, each
// assigned to the first step.
func seedBoard(t *testing.T, repo *Repository, taskNames ...string) (*entity.Board, *entity.Flow) {
	t.Helper()
	todo := mustSet(t, repo, &entity.FlowStep{Base: entity.Base{Name: "Todo"}})
	done := mustSet(t, repo, &entity.FlowStep{Base: entity.Base{Name: "Done"}})
	flow := mustSet(t, repo, &entity.Flow{
		Base:          entity.Base{Name: "Simple"},
		Steps:         entity.NewCollection(todo, done),
		Order:         []entity.ID{todo.ID, done.ID},
		DefaultStepID: todo.ID,
	})
	board := &entity.Board{
		Base:      entity.Base{Name: "Main"},
		Flow:      flow,
		Tasks:     entity.NewCollection[*entity.Task](),
		TaskSteps: map[entity.ID]entity.ID{},
	}
	for _, name := range taskNames {
		task := mustSet(t, repo, &entity.Task{Base: entity.Base{Name: name}})
		board.Tasks.Set(task)
		board.TaskSteps[task.ID] = todo.ID
	}
	return mustSet(t, repo, board), flow
}

func TestRepository_SetAssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	task := &entity.Task{Base: entity.Base{Name: "  Write  "}}
	saved := mustSet(t, repo, task)

	assert.Equal(t, entity.ID("id-1"), saved.ID)
	assert.Equal(t, testutil.At(0), saved.CreatedAt)
	assert.True(t, saved.UpdatedAt.IsZero())
	assert.Equal(t, "Write", saved.Name)
	assert.Empty(t, task.ID, "Set must not modify its argument")

	saved.Name = "Rewrite"
	resaved := mustSet(t, repo, saved)
	assert.Equal(t, saved.ID, resaved.ID)
	assert.Equal(t, testutil.At(0), resaved.CreatedAt)
	assert.Equal(t, testutil.At(1), resaved.UpdatedAt)

	got, err := repo.Get(ctx, entity.KindTask, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rewrite", got.Meta().Name)
}

func TestRepository_ExplicitID(t *testing.T) {
	repo, _ := newTestRepository(t)

	saved := mustSet(t, repo, &entity.Task{Base: entity.Base{ID: "mine", Name: "A"}})
	assert.Equal(t, entity.ID("mine"), saved.ID)

	_, err := repo.Set(context.Background(), &entity.Task{Base: entity.Base{ID: "mine", Name: "B"}})
	assert.True(t, entity.HasCode(err, entity.ErrCodeAlreadyExists))
}

func TestRepository_GetMissing(t *testing.T) {
	repo, _ := newTestRepository(t)

	got, err := repo.Get(context.Background(), entity.KindBoard, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_ListOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	for _, name := range []string{"a", "b", "c"} {
		mustSet(t, repo, &entity.Task{Base: entity.Base{Name: name}})
	}

	list, err := repo.List(ctx, entity.KindTask)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Meta().Name)
	assert.Equal(t, "c", list[2].Meta().Name)

	// Results are copies.
	list[0].Meta().Name = "changed"
	again, err := repo.List(ctx, entity.KindTask)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Meta().Name)
}

func TestRepository_ListSeesNewEntities(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	mustSet(t, repo, &entity.Task{Base: entity.Base{Name: "a"}})
	list, err := repo.List(ctx, entity.KindTask)
	require.NoError(t, err)
	require.Len(t, list, 1)

	mustSet(t, repo, &entity.Task{Base: entity.Base{Name: "b"}})
	list, err = repo.List(ctx, entity.KindTask)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRepository_FlowSavesUnsavedSteps(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	step := &entity.FlowStep{Base: entity.Base{Name: "Todo"}}
	flow := mustSet(t, repo, &entity.Flow{
		Base:          entity.Base{Name: "Simple"},
		Steps:         entity.NewCollection(step),
		Order:         []entity.ID{""},
		DefaultStepID: "",
	})

	require.Equal(t, 1, flow.StepCollection().Len())
	saved, _ := flow.StepCollection().First()
	assert.True(t, saved.IsSaved())
	assert.Equal(t, []entity.ID{saved.ID}, flow.Order)

	stored, err := repo.Get(ctx, entity.KindFlowStep, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Todo", stored.Meta().Name)
}

func TestRepository_FlowRejectsUnknownOrder(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.Set(context.Background(), &entity.Flow{
		Base:  entity.Base{Name: "Broken"},
		Steps: entity.NewCollection[*entity.FlowStep](),
		Order: []entity.ID{"ghost"},
	})
	assert.True(t, entity.HasCode(err, entity.ErrCodeInvalidInput))
}

func TestRepository_BoardBackReferences(t *testing.T) {
	ctx := context.Background()
	repo, backend := newTestRepository(t)

	board, _ := seedBoard(t, repo, "one", "two")
	one := board.Tasks.Values()[0]
	two := board.Tasks.Values()[1]

	rec, _, err := backend.Record(ctx, entity.KindTask, one.ID)
	require.NoError(t, err)
	assert.Equal(t, board.ID, rec.BoardID)

	owner, err := repo.TaskBoard(ctx, one.ID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, board.ID, owner.ID)

	// Dropping a task from the board clears its back-reference.
	board.Tasks.Delete(two.ID)
	delete(board.TaskSteps, two.ID)
	mustSet(t, repo, board)

	rec, _, err = backend.Record(ctx, entity.KindTask, two.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.BoardID)
	owner, err = repo.TaskBoard(ctx, two.ID)
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestRepository_TaskBelongsToOneBoard(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	first, flow := seedBoard(t, repo, "shared")
	task := first.Tasks.Values()[0]

	second := mustSet(t, repo, &entity.Board{
		Base:      entity.Base{Name: "Second"},
		Flow:      flow,
		Tasks:     entity.NewCollection(task),
		TaskSteps: map[entity.ID]entity.ID{},
	})

	reloaded, err := repo.Get(ctx, entity.KindBoard, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.(*entity.Board).TaskCollection().Has(task.ID))
	assert.NotContains(t, reloaded.(*entity.Board).TaskSteps, task.ID)

	owner, err := repo.TaskBoard(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, owner.ID)
}

func TestRepository_SavingTaskKeepsBoard(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	board, _ := seedBoard(t, repo, "one")
	task := board.Tasks.Values()[0]
	task.Name = "renamed"
	mustSet(t, repo, task)

	owner, err := repo.TaskBoard(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	got, _ := owner.Tasks.Get(task.ID)
	assert.Equal(t, "renamed", got.Name, "board must observe the saved task")
}

func TestRepository_BoardRejectsForeignStep(t *testing.T) {
	repo, _ := newTestRepository(t)

	board, _ := seedBoard(t, repo, "one")
	task := board.Tasks.Values()[0]
	board.TaskSteps[task.ID] = "ghost"

	_, err := repo.Set(context.Background(), board)
	assert.True(t, entity.HasCode(err, entity.ErrCodeInvalidStepForBoard))
}

func TestRepository_DeleteTaskDetachesFromBoard(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	board, _ := seedBoard(t, repo, "one", "two")
	one := board.Tasks.Values()[0]
	require.NoError(t, repo.Delete(ctx, entity.KindTask, one.ID))

	reloaded, err := repo.Get(ctx, entity.KindBoard, board.ID)
	require.NoError(t, err)
	b := reloaded.(*entity.Board)
	assert.Equal(t, 1, b.TaskCollection().Len())
	assert.NotContains(t, b.TaskSteps, one.ID)

	// Deleting twice is a no-op.
	assert.NoError(t, repo.Delete(ctx, entity.KindTask, one.ID))
}

func TestRepository_DeleteBoardKeepsTasks(t *testing.T) {
	ctx := context.Background()
	repo, backend := newTestRepository(t)

	board, _ := seedBoard(t, repo, "one")
	task := board.Tasks.Values()[0]
	require.NoError(t, repo.Delete(ctx, entity.KindBoard, board.ID))

	got, err := repo.Get(ctx, entity.KindTask, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	rec, _, err := backend.Record(ctx, entity.KindTask, task.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.BoardID)

	owner, err := repo.TaskBoard(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestRepository_BoardWithMissingFlow(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	board, flow := seedBoard(t, repo)
	require.NoError(t, repo.Delete(ctx, entity.KindFlow, flow.ID))

	_, err := repo.Get(ctx, entity.KindBoard, board.ID)
	require.Error(t, err)
	assert.True(t, entity.HasCode(err, entity.ErrCodeStorage))
	assert.True(t, entity.IsDoesNotExist(err))
}

func TestRepository_DeletedStepDropsFromFlow(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	_, flow := seedBoard(t, repo)
	first := flow.Order[0]
	require.NoError(t, repo.Delete(ctx, entity.KindFlowStep, first))

	reloaded, err := repo.Get(ctx, entity.KindFlow, flow.ID)
	require.NoError(t, err)
	f := reloaded.(*entity.Flow)
	assert.Equal(t, []entity.ID{flow.Order[1]}, f.Order)
	assert.Empty(t, f.DefaultStepID)
}

type failingBackend struct {
	*MemoryBackend
}

func (failingBackend) PutRecord(context.Context, entity.Kind, Record) error {
	return errors.New("disk full")
}

func TestRepository_StorageErrors(t *testing.T) {
	repo := NewRepository(failingBackend{NewMemoryBackend()})

	_, err := repo.Set(context.Background(), &entity.Task{Base: entity.Base{Name: "x"}})
	require.Error(t, err)
	assert.Equal(t, entity.ErrCodeStorage, entity.CodeOf(err))
	assert.ErrorContains(t, err, "disk full")
}
