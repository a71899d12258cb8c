package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/todo-manager/internal/entity"
)

// Repository implements Source over a record Backend. It decodes records into
// entities, keeps the task/board back-references consistent and caches
// decoded entities per kind.
//
// A Repository is not safe for concurrent use; commands access it
// sequentially.
type Repository struct {
	backend Backend
	cache   *Cache
	ids     IDGenerator
	clock   Clock
	logger  *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithIDGenerator sets the generator used for entities saved without an id.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Repository) { r.ids = g }
}

// WithClock sets the clock used for createdAt/updatedAt.
func WithClock(c Clock) Option {
	return func(r *Repository) { r.clock = c }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// NewRepository creates a Repository over backend.
func NewRepository(backend Backend, opts ...Option) *Repository {
	r := &Repository{
		backend: backend,
		cache:   NewCache(),
		ids:     UUIDv7Generator{},
		clock:   SystemClock{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Source = (*Repository)(nil)

// Close closes the backend.
func (r *Repository) Close() error {
	return r.backend.Close()
}

// Get implements Source.
func (r *Repository) Get(ctx context.Context, kind entity.Kind, id entity.ID) (entity.Entity, error) {
	e, err := r.load(ctx, kind, id)
	if err != nil || e == nil {
		return nil, err
	}
	return e.CloneEntity(), nil
}

// load returns the cached entity itself; callers must not mutate it.
func (r *Repository) load(ctx context.Context, kind entity.Kind, id entity.ID) (entity.Entity, error) {
	if e, ok := r.cache.Get(kind, id); ok {
		return e, nil
	}
	r.logger.Debug("store get", "kind", kind, "id", id)

	rec, ok, err := r.backend.Record(ctx, kind, id)
	if err != nil {
		return nil, storageError("read", kind, id, err)
	}
	if !ok {
		return nil, nil
	}
	rec.ID = id
	e, err := r.decode(ctx, kind, rec)
	if err != nil {
		return nil, err
	}
	r.cache.Put(e)
	return e, nil
}

func (r *Repository) decode(ctx context.Context, kind entity.Kind, rec Record) (entity.Entity, error) {
	switch kind {
	case entity.KindTask:
		return &entity.Task{Base: baseFromRecord(rec)}, nil

	case entity.KindFlowStep:
		return &entity.FlowStep{Base: baseFromRecord(rec), Color: rec.Color}, nil

	case entity.KindFlow:
		flow := &entity.Flow{Base: baseFromRecord(rec), Steps: entity.NewCollection[*entity.FlowStep]()}
		for _, stepID := range rec.StepIDs {
			e, err := r.load(ctx, entity.KindFlowStep, stepID)
			if err != nil {
				return nil, err
			}
			if e == nil {
				r.logger.Debug("skipping missing flow step", "flow", rec.ID, "step", stepID)
				continue
			}
			if flow.Steps.Has(stepID) {
				continue
			}
			flow.Steps.Set(e.(*entity.FlowStep))
			flow.Order = append(flow.Order, stepID)
		}
		if flow.Steps.Has(rec.DefaultStepID) {
			flow.DefaultStepID = rec.DefaultStepID
		}
		return flow, nil

	case entity.KindBoard:
		e, err := r.load(ctx, entity.KindFlow, rec.FlowID)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, entity.NewStorageError(
				fmt.Sprintf("board %s references a missing flow", rec.ID),
				entity.NewDoesNotExistError(entity.KindFlow, rec.FlowID.String()),
			)
		}
		flow := e.(*entity.Flow)
		board := &entity.Board{
			Base:      baseFromRecord(rec),
			Flow:      flow,
			Tasks:     entity.NewCollection[*entity.Task](),
			TaskSteps: make(map[entity.ID]entity.ID),
		}
		for _, taskID := range sortedTaskIDs(rec.TaskStepIDs) {
			e, err := r.load(ctx, entity.KindTask, taskID)
			if err != nil {
				return nil, err
			}
			if e == nil {
				r.logger.Debug("skipping missing task", "board", rec.ID, "task", taskID)
				continue
			}
			board.Tasks.Set(e.(*entity.Task))
			if stepID := rec.TaskStepIDs[taskID]; stepID != "" && flow.StepCollection().Has(stepID) {
				board.TaskSteps[taskID] = stepID
			}
		}
		return board, nil
	}
	return nil, entity.NewStorageError(fmt.Sprintf("unknown entity kind %q", kind), nil)
}

// List implements Source.
func (r *Repository) List(ctx context.Context, kind entity.Kind) ([]entity.Entity, error) {
	if cached, ok := r.cache.List(kind); ok {
		return cloneAll(cached), nil
	}
	r.logger.Debug("store list", "kind", kind)

	recs, err := r.backend.Records(ctx, kind)
	if err != nil {
		return nil, storageError("list", kind, "", err)
	}
	sortRecords(recs)

	list := make([]entity.Entity, 0, len(recs))
	for _, rec := range recs {
		e, ok := r.cache.Get(kind, rec.ID)
		if !ok {
			if e, err = r.decode(ctx, kind, rec); err != nil {
				return nil, err
			}
		}
		list = append(list, e)
	}
	r.cache.SetList(kind, list)
	return cloneAll(list), nil
}

func cloneAll(list []entity.Entity) []entity.Entity {
	clones := make([]entity.Entity, len(list))
	for i, e := range list {
		clones[i] = e.CloneEntity()
	}
	return clones
}

// Set implements Source.
func (r *Repository) Set(ctx context.Context, e entity.Entity) (entity.Entity, error) {
	saved := e.CloneEntity()
	meta := saved.Meta()
	kind := saved.Kind()
	wasSaved := meta.IsSaved()

	meta.Name = entity.NormalizeText(meta.Name)
	meta.Description = entity.NormalizeText(meta.Description)

	prev, hadPrev := Record{}, false
	if meta.ID != "" {
		var err error
		prev, hadPrev, err = r.backend.Record(ctx, kind, meta.ID)
		if err != nil {
			return nil, storageError("read", kind, meta.ID, err)
		}
		if hadPrev && !wasSaved {
			return nil, entity.NewAlreadyExistsError(kind, meta.ID)
		}
	} else {
		meta.ID = r.ids.Generate()
	}

	now := r.clock.Now()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	if wasSaved {
		meta.UpdatedAt = now
	}

	var err error
	switch v := saved.(type) {
	case *entity.Task:
		rec := baseRecord(&v.Base)
		rec.BoardID = prev.BoardID
		err = r.put(ctx, kind, rec)
	case *entity.FlowStep:
		err = r.put(ctx, kind, stepRecord(v))
	case *entity.Flow:
		err = r.setFlow(ctx, v)
	case *entity.Board:
		err = r.setBoard(ctx, v, prev, hadPrev)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("store set", "kind", kind, "id", meta.ID)
	r.cache.InvalidateDependents(kind)
	r.cache.Put(saved)
	return saved.CloneEntity(), nil
}

// setFlow saves unsaved steps first, then the flow record.
func (r *Repository) setFlow(ctx context.Context, flow *entity.Flow) error {
	steps := entity.NewCollection[*entity.FlowStep]()
	renamed := make(map[entity.ID]entity.ID)
	for _, step := range flow.StepCollection().Values() {
		if !step.IsSaved() {
			e, err := r.Set(ctx, step)
			if err != nil {
				return err
			}
			if e.Meta().ID != step.ID {
				renamed[step.ID] = e.Meta().ID
			}
			step = e.(*entity.FlowStep)
		}
		steps.Set(step)
	}
	flow.Steps = steps
	for i, id := range flow.Order {
		if newID, ok := renamed[id]; ok {
			flow.Order[i] = newID
		}
	}

	for _, id := range flow.Order {
		if !steps.Has(id) {
			return entity.NewInvalidInputError(fmt.Sprintf("flow %q orders unknown step %s", flow.Name, id))
		}
	}
	if flow.DefaultStepID != "" && !steps.Has(flow.DefaultStepID) {
		return entity.NewInvalidInputError(fmt.Sprintf("flow %q defaults to unknown step %s", flow.Name, flow.DefaultStepID))
	}
	return r.put(ctx, entity.KindFlow, flowRecord(flow))
}

// setBoard writes the board record and moves the boardId back-reference of
// every task it gained or lost. A task claimed by another board is detached
// from that board first.
func (r *Repository) setBoard(ctx context.Context, board *entity.Board, prev Record, hadPrev bool) error {
	if board.Flow == nil || !board.Flow.IsSaved() {
		return entity.NewInvalidInputError(fmt.Sprintf("board %q needs a saved flow", board.Name))
	}
	steps := board.Flow.StepCollection()
	for taskID, stepID := range board.TaskSteps {
		if !board.TaskCollection().Has(taskID) {
			return entity.NewInvalidInputError(fmt.Sprintf("board %q assigns a step to task %s it does not own", board.Name, taskID))
		}
		if stepID != "" && !steps.Has(stepID) {
			return entity.NewInvalidStepError(board.Flow, stepID.String(), nil)
		}
	}

	taskRecs := make(map[entity.ID]Record, board.TaskCollection().Len())
	for _, task := range board.TaskCollection().Values() {
		rec, ok, err := r.backend.Record(ctx, entity.KindTask, task.ID)
		if err != nil {
			return storageError("read", entity.KindTask, task.ID, err)
		}
		if !ok {
			return entity.NewDoesNotExistError(entity.KindTask, task.ID.String())
		}
		rec.ID = task.ID
		taskRecs[task.ID] = rec
	}

	if err := r.put(ctx, entity.KindBoard, boardRecord(board)); err != nil {
		return err
	}

	for _, taskID := range board.TaskCollection().Keys() {
		rec := taskRecs[taskID]
		if rec.BoardID == board.ID {
			continue
		}
		if rec.BoardID != "" {
			if err := r.detachFromBoard(ctx, rec.BoardID, taskID); err != nil {
				return err
			}
		}
		rec.BoardID = board.ID
		if err := r.put(ctx, entity.KindTask, rec); err != nil {
			return err
		}
	}

	if hadPrev {
		for _, taskID := range sortedTaskIDs(prev.TaskStepIDs) {
			if board.TaskCollection().Has(taskID) {
				continue
			}
			if err := r.clearBoardRef(ctx, taskID, board.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// detachFromBoard drops a task from a board record.
func (r *Repository) detachFromBoard(ctx context.Context, boardID, taskID entity.ID) error {
	rec, ok, err := r.backend.Record(ctx, entity.KindBoard, boardID)
	if err != nil {
		return storageError("read", entity.KindBoard, boardID, err)
	}
	if !ok {
		return nil
	}
	if _, owned := rec.TaskStepIDs[taskID]; !owned {
		return nil
	}
	rec.ID = boardID
	delete(rec.TaskStepIDs, taskID)
	r.logger.Debug("detaching task from board", "task", taskID, "board", boardID)
	return r.put(ctx, entity.KindBoard, rec)
}

// clearBoardRef clears a task's boardId if it still points at boardID.
func (r *Repository) clearBoardRef(ctx context.Context, taskID, boardID entity.ID) error {
	rec, ok, err := r.backend.Record(ctx, entity.KindTask, taskID)
	if err != nil {
		return storageError("read", entity.KindTask, taskID, err)
	}
	if !ok || rec.BoardID != boardID {
		return nil
	}
	rec.ID = taskID
	rec.BoardID = ""
	return r.put(ctx, entity.KindTask, rec)
}

func (r *Repository) put(ctx context.Context, kind entity.Kind, rec Record) error {
	if err := r.backend.PutRecord(ctx, kind, rec); err != nil {
		return storageError("write", kind, rec.ID, err)
	}
	return nil
}

// Delete implements Source.
func (r *Repository) Delete(ctx context.Context, kind entity.Kind, id entity.ID) error {
	rec, ok, err := r.backend.Record(ctx, kind, id)
	if err != nil {
		return storageError("read", kind, id, err)
	}
	if !ok {
		return nil
	}

	switch kind {
	case entity.KindTask:
		if rec.BoardID != "" {
			if err := r.detachFromBoard(ctx, rec.BoardID, id); err != nil {
				return err
			}
		}
	case entity.KindBoard:
		for _, taskID := range sortedTaskIDs(rec.TaskStepIDs) {
			if err := r.clearBoardRef(ctx, taskID, id); err != nil {
				return err
			}
		}
	}

	if err := r.backend.DeleteRecord(ctx, kind, id); err != nil {
		return storageError("delete", kind, id, err)
	}
	r.logger.Debug("store delete", "kind", kind, "id", id)
	r.cache.Delete(kind, id)
	r.cache.InvalidateDependents(kind)
	return nil
}

// TaskBoard implements Source.
func (r *Repository) TaskBoard(ctx context.Context, taskID entity.ID) (*entity.Board, error) {
	rec, ok, err := r.backend.Record(ctx, entity.KindTask, taskID)
	if err != nil {
		return nil, storageError("read", entity.KindTask, taskID, err)
	}
	if !ok {
		return nil, nil
	}
	if rec.BoardID != "" {
		e, err := r.Get(ctx, entity.KindBoard, rec.BoardID)
		if err != nil {
			return nil, err
		}
		if board, ok := e.(*entity.Board); ok && board.TaskCollection().Has(taskID) {
			return board, nil
		}
	}

	// Fall back to a scan for stores whose back-references are stale.
	boards, err := r.List(ctx, entity.KindBoard)
	if err != nil {
		return nil, err
	}
	for _, e := range boards {
		if board := e.(*entity.Board); board.TaskCollection().Has(taskID) {
			return board, nil
		}
	}
	return nil, nil
}

func storageError(op string, kind entity.Kind, id entity.ID, err error) error {
	if id == "" {
		return entity.NewStorageError(fmt.Sprintf("%s %s records", op, kind.Label()), err)
	}
	return entity.NewStorageError(fmt.Sprintf("%s %s %s", op, kind.Label(), id), err)
}
