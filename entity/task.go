package entity

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kbayram/clientkit/cache"
	"github.com/kbayram/clientkit/httpclient"
	"github.com/kbayram/clientkit/logger"
)

// Task statuses accepted by the server.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// Task is a single task entry as the server represents it.
type Task struct {
	ID int `json:"id"`
	// LocalID carries a client-assigned id for optimistic placeholders
	// that the server has not numbered yet. Never sent on the wire.
	LocalID     string `json:"-"`
	User        int    `json:"user"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// EntityID returns the server id, or the client-assigned placeholder id for
// entities the server has not confirmed yet.
func (t Task) EntityID() string {
	if t.ID == 0 {
		return t.LocalID
	}
	return strconv.Itoa(t.ID)
}

// TaskInput is the request body for creating or updating a task.
type TaskInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"required,oneof=pending completed"`
	DueDate     string `json:"due_date" validate:"omitempty,dateformat"`
}

// Tasks is the typed task client.
type Tasks struct {
	*Resource[Task]
}

// NewTasks creates the task client.
func NewTasks(doer httpclient.Doer, store *cache.Store, log *logger.Logger, opts ...ResourceOption[Task]) *Tasks {
	return &Tasks{
		Resource: NewResource[Task]("tasks", "/api/tasks/", doer, store, log, opts...),
	}
}

// Create posts a new task, showing a placeholder in the cached list until
// the server assigns the real id.
func (t *Tasks) Create(ctx context.Context, input TaskInput) (Task, error) {
	placeholder := Task{
		LocalID:     uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	return t.Resource.Create(ctx, input, placeholder)
}

// Update replaces a task, keeping the cached id and timestamps while the
// input fields appear immediately, pending server confirmation.
func (t *Tasks) Update(ctx context.Context, id int, input TaskInput) (Task, error) {
	current, err := t.Get(ctx, strconv.Itoa(id))
	if err != nil {
		return Task{}, err
	}
	optimistic := current
	optimistic.Title = input.Title
	optimistic.Description = input.Description
	optimistic.Status = input.Status
	optimistic.DueDate = input.DueDate
	return t.Resource.Update(ctx, strconv.Itoa(id), input, optimistic)
}

// Complete marks a task completed, keeping its other fields.
func (t *Tasks) Complete(ctx context.Context, id int) (Task, error) {
	current, err := t.Get(ctx, strconv.Itoa(id))
	if err != nil {
		return Task{}, err
	}
	return t.Update(ctx, id, TaskInput{
		Title:       current.Title,
		Description: current.Description,
		Status:      TaskStatusCompleted,
		DueDate:     current.DueDate,
	})
}

// Delete removes a task by id.
func (t *Tasks) Delete(ctx context.Context, id int) error {
	return t.Resource.Delete(ctx, strconv.Itoa(id))
}
