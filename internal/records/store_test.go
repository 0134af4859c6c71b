package records

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestTodoStore(t *testing.T) *TodoStore {
	t.Helper()
	store, err := OpenTodos(filepath.Join(t.TempDir(), TodosFile))
	if err != nil {
		t.Fatalf("OpenTodos: %v", err)
	}
	return store
}

func TestStore_CreateAssignsMonotonicIDs(t *testing.T) {
	store := newTestTodoStore(t)

	for i := 1; i <= 5; i++ {
		created, err := store.Create(Todo{Description: "task", Priority: PriorityLow})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if created.ID != i {
			t.Fatalf("Create #%d assigned id=%d, want %d", i, created.ID, i)
		}
	}
}

func TestStore_FreedIDsBelowMaxNotReused(t *testing.T) {
	store := newTestTodoStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.Create(Todo{Description: "task"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := store.Delete(1); err != nil {
		t.Fatalf("Delete(1): %v", err)
	}
	created, err := store.Create(Todo{Description: "task"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 4 {
		t.Fatalf("id after deleting id=1 got %d, want 4 (max+1, not a reused hole)", created.ID)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, NotesFile)

	store, err := OpenNotes(path)
	if err != nil {
		t.Fatalf("OpenNotes: %v", err)
	}
	created, err := store.Create(Note{
		Title:   "project meeting",
		Content: "discuss roadmap",
		Tags:    []string{"work", "planning"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reloaded, err := OpenNotes(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reloaded.Get(created.ID)
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got.Title != created.Title || got.Content != created.Content {
		t.Fatalf("reloaded note %+v, want %+v", got, created)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "planning" {
		t.Fatalf("reloaded tags %v, want [work planning]", got.Tags)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("reloaded created_at %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestStore_UpdateIsIdempotent(t *testing.T) {
	store := newTestTodoStore(t)
	store.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }

	created, err := store.Create(Todo{Description: "buy groceries", Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	complete := func(todo *Todo) { todo.Completed = true }
	first, err := store.Update(created.ID, complete)
	if err != nil {
		t.Fatalf("first Update: %v", err)
	}
	second, err := store.Update(created.ID, complete)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if first != second {
		t.Fatalf("repeated no-op update changed record: %+v vs %+v", first, second)
	}
}

func TestStore_UpdateCannotChangeID(t *testing.T) {
	store := newTestTodoStore(t)
	created, err := store.Create(Todo{Description: "task"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := store.Update(created.ID, func(todo *Todo) { todo.ID = 99 })
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("id changed to %d, want %d", updated.ID, created.ID)
	}
}

func TestStore_DeleteThenLookup(t *testing.T) {
	store := newTestTodoStore(t)
	for _, desc := range []string{"a", "b", "c"} {
		if _, err := store.Create(Todo{Description: desc}); err != nil {
			t.Fatalf("Create %q: %v", desc, err)
		}
	}

	if err := store.Delete(2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(2) after delete err=%v, want ErrNotFound", err)
	}
	if err := store.Delete(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete(2) err=%v, want ErrNotFound", err)
	}

	remaining := store.List()
	if len(remaining) != 2 {
		t.Fatalf("List after delete len=%d, want 2", len(remaining))
	}
	if remaining[0].ID != 1 || remaining[1].ID != 3 {
		t.Fatalf("surviving ids = %d,%d; want 1,3 (no renumbering)", remaining[0].ID, remaining[1].ID)
	}
}

func TestStore_ListReturnsSnapshot(t *testing.T) {
	store := newTestTodoStore(t)
	if _, err := store.Create(Todo{Description: "original"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	snapshot := store.List()
	snapshot[0].Description = "mutated"

	got, err := store.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != "original" {
		t.Fatalf("store mutated through List snapshot: %q", got.Description)
	}
}

func TestStore_ValidationErrors(t *testing.T) {
	store := newTestTodoStore(t)

	cases := []struct {
		name string
		todo Todo
	}{
		{"empty description", Todo{Priority: PriorityLow}},
		{"bad priority", Todo{Description: "x", Priority: "urgent"}},
		{"bad due date", Todo{Description: "x", DueDate: "15-06-2024"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.Create(tc.todo); !errors.Is(err, ErrValidation) {
				t.Fatalf("Create err=%v, want ErrValidation", err)
			}
		})
	}
	if store.Len() != 0 {
		t.Fatalf("invalid creates left %d records", store.Len())
	}
}

func TestStore_PriorityDefaultsToMedium(t *testing.T) {
	store := newTestTodoStore(t)
	created, err := store.Create(Todo{Description: "no priority given"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Priority != PriorityMedium {
		t.Fatalf("Priority=%q, want %q", created.Priority, PriorityMedium)
	}
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	store, err := OpenEvents(filepath.Join(t.TempDir(), EventsFile))
	if err != nil {
		t.Fatalf("OpenEvents: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("Len=%d, want 0", store.Len())
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), EventsFile)
	if err := os.WriteFile(path, []byte("{not a json array"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := OpenEvents(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("OpenEvents err=%v, want ErrCorrupt", err)
	}
}

func TestEvent_DefaultDuration(t *testing.T) {
	store, err := OpenEvents(filepath.Join(t.TempDir(), EventsFile))
	if err != nil {
		t.Fatalf("OpenEvents: %v", err)
	}
	start := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	created, err := store.Create(Event{Title: "Team Meeting", Start: start})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.End.Equal(start.Add(time.Hour)) {
		t.Fatalf("End=%v, want one hour after start", created.End)
	}
}

func TestContact_EmailValidation(t *testing.T) {
	store, err := OpenContacts(filepath.Join(t.TempDir(), ContactsFile))
	if err != nil {
		t.Fatalf("OpenContacts: %v", err)
	}
	if _, err := store.Create(Contact{Name: "John", Email: "not-an-email"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("Create err=%v, want ErrValidation", err)
	}
	if _, err := store.Create(Contact{Name: "John", Email: "john@example.com"}); err != nil {
		t.Fatalf("Create with valid email: %v", err)
	}
}
