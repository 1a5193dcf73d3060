package store

import "context"

type MutationKind int

const (
	TaskCreated MutationKind = iota
	TaskUpdated
	TaskDeleted
	CategoryCreated
	CategoryUpdated
	CategoryDeleted
	SessionCreated
	SubtaskCreated
	SubtaskUpdated
	SubtaskDeleted
)

var mutationNames = map[MutationKind]string{
	TaskCreated:     "task.create",
	TaskUpdated:     "task.update",
	TaskDeleted:     "task.delete",
	CategoryCreated: "category.create",
	CategoryUpdated: "category.update",
	CategoryDeleted: "category.delete",
	SessionCreated:  "session.create",
	SubtaskCreated:  "subtask.create",
	SubtaskUpdated:  "subtask.update",
	SubtaskDeleted:  "subtask.delete",
}

func (k MutationKind) String() string {
	if n, ok := mutationNames[k]; ok {
		return n
	}
	return "unknown"
}

// Mutation describes one local change to be mirrored remotely. Only the
// fields relevant to Kind are set.
type Mutation struct {
	Kind MutationKind
	// ID of the task, category, session or subtask being changed.
	ID     string
	TaskID string // owning task for subtask mutations

	Task          Task
	Patch         TaskPatch
	Category      Category
	CategoryPatch CategoryPatch
	Session       TimeSession
	Subtask       Subtask
}

// PushResult is the outcome of mirroring one mutation. Refreshed reports
// whether a full pull followed the push.
type PushResult struct {
	Mutation  Mutation
	Err       error
	Skipped   bool
	Refreshed bool
}

// Pusher mirrors local mutations to the remote store.
type Pusher interface {
	Push(ctx context.Context, m Mutation) PushResult
}

// Notifier receives fire-and-forget signals about local state changes.
type Notifier interface {
	TaskCompleted(t Task)
}
