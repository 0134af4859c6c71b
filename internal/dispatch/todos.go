package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DavidVart/Personal-Assistant/internal/chat"
	"github.com/DavidVart/Personal-Assistant/internal/query"
	"github.com/DavidVart/Personal-Assistant/internal/records"
)

// AddTodoOp creates a task.
type AddTodoOp struct {
	store *records.TodoStore
}

func NewAddTodoOp(store *records.TodoStore) *AddTodoOp {
	return &AddTodoOp{store: store}
}

func (o *AddTodoOp) Name() string { return "add_todo" }

func (o *AddTodoOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Add a task to the to-do list",
			Parameters: objectSchema(map[string]any{
				"description": stringProp("What the task is"),
				"priority":    enumProp("Task priority (default medium)", records.PriorityLow, records.PriorityMedium, records.PriorityHigh),
				"due_date":    stringProp("Optional due date in YYYY-MM-DD format"),
			}, "description"),
		},
	}
}

func (o *AddTodoOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Description string `json:"description"`
		Priority    string `json:"priority"`
		DueDate     string `json:"due_date"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed add_todo arguments", records.ErrValidation)
	}

	created, err := o.store.Create(records.Todo{
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("Added task '%s' with %s priority", created.Description, created.Priority)
	if created.DueDate != "" {
		msg += fmt.Sprintf(", due %s", created.DueDate)
	}
	return msg + ".", nil
}

// ListTodosOp lists tasks with optional status and priority filters.
type ListTodosOp struct {
	store *records.TodoStore
}

func NewListTodosOp(store *records.TodoStore) *ListTodosOp {
	return &ListTodosOp{store: store}
}

func (o *ListTodosOp) Name() string { return "list_todos" }

func (o *ListTodosOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "List tasks on the to-do list",
			Parameters: objectSchema(map[string]any{
				"completed": boolProp("Filter by completion state; omit for all tasks"),
				"priority":  enumProp("Filter by priority", records.PriorityLow, records.PriorityMedium, records.PriorityHigh),
			}),
		},
	}
}

func (o *ListTodosOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Completed *bool  `json:"completed"`
		Priority  string `json:"priority"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed list_todos arguments", records.ErrValidation)
	}

	todos := query.TodosByStatus(o.store.List(), in.Completed, in.Priority)
	if len(todos) == 0 {
		return "Your to-do list is empty.", nil
	}

	var b strings.Builder
	b.WriteString("Here is your to-do list:\n\n")
	for _, td := range todos {
		fmt.Fprintf(&b, "- [%d] %s %s %s", td.ID, checkbox(td.Completed), priorityMarker(td.Priority), td.Description)
		if td.DueDate != "" {
			fmt.Fprintf(&b, " (due %s)", td.DueDate)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// CompleteTodoOp marks a task done. Completing an already-completed
// task is a no-op that still confirms.
type CompleteTodoOp struct {
	store *records.TodoStore
}

func NewCompleteTodoOp(store *records.TodoStore) *CompleteTodoOp {
	return &CompleteTodoOp{store: store}
}

func (o *CompleteTodoOp) Name() string { return "complete_todo" }

func (o *CompleteTodoOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Mark a task as completed by its ID",
			Parameters: objectSchema(map[string]any{
				"id": intProp("The task ID from list_todos"),
			}, "id"),
		},
	}
}

func (o *CompleteTodoOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed complete_todo arguments", records.ErrValidation)
	}

	updated, err := o.store.Update(in.ID, func(td *records.Todo) {
		td.Completed = true
	})
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return "", fmt.Errorf("%w: no task found with ID %d", records.ErrNotFound, in.ID)
		}
		return "", err
	}
	return fmt.Sprintf("Marked task '%s' as completed.", updated.Description), nil
}

// DeleteTodoOp removes a task.
type DeleteTodoOp struct {
	store *records.TodoStore
}

func NewDeleteTodoOp(store *records.TodoStore) *DeleteTodoOp {
	return &DeleteTodoOp{store: store}
}

func (o *DeleteTodoOp) Name() string { return "delete_todo" }

func (o *DeleteTodoOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Delete a task by its ID",
			Parameters: objectSchema(map[string]any{
				"id": intProp("The task ID from list_todos"),
			}, "id"),
		},
	}
}

func (o *DeleteTodoOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed delete_todo arguments", records.ErrValidation)
	}

	td, err := o.store.Get(in.ID)
	if err != nil {
		return "", fmt.Errorf("%w: no task found with ID %d", records.ErrNotFound, in.ID)
	}
	if err := o.store.Delete(in.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted task '%s'.", td.Description), nil
}
