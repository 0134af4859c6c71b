package query

import (
	"testing"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/records"
)

func TestSearchNotes_CaseInsensitive(t *testing.T) {
	notes := []records.Note{
		{ID: 1, Title: "project meeting notes", Content: "roadmap"},
		{ID: 2, Title: "groceries", Content: "milk, eggs"},
		{ID: 3, Title: "misc", Content: "", Tags: []string{"Project"}},
	}

	got := SearchNotes(notes, "Project")
	if len(got) != 2 {
		t.Fatalf("match count=%d, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("matched ids %d,%d; want 1,3 in insertion order", got[0].ID, got[1].ID)
	}
}

func TestSearchNotes_EmptyKeyword(t *testing.T) {
	notes := []records.Note{{ID: 1, Title: "a", Content: "b"}}
	if got := SearchNotes(notes, "  "); got != nil {
		t.Fatalf("blank keyword matched %d notes, want none", len(got))
	}
}

func TestSearchContacts(t *testing.T) {
	contacts := []records.Contact{
		{ID: 1, Name: "John Smith", Email: "john@example.com"},
		{ID: 2, Name: "Jane Doe", Phone: "555-0100"},
		{ID: 3, Name: "Bob", Address: "12 Example Road"},
	}

	if got := SearchContacts(contacts, "EXAMPLE"); len(got) != 2 {
		t.Fatalf("matched %d contacts, want 2 (email + address)", len(got))
	}
	if got := SearchContacts(contacts, "555"); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("phone search got %v", got)
	}
}

func TestEventsInRange_Inclusive(t *testing.T) {
	day := func(d int, h int) time.Time {
		return time.Date(2024, 6, d, h, 0, 0, 0, time.UTC)
	}
	events := []records.Event{
		{ID: 1, Title: "before", Start: day(14, 23)},
		{ID: 2, Title: "boundary start", Start: day(15, 0)},
		{ID: 3, Title: "inside", Start: day(15, 10)},
		{ID: 4, Title: "boundary end", Start: day(16, 0)},
		{ID: 5, Title: "after", Start: day(16, 1)},
	}

	got := EventsInRange(events, day(15, 0), day(16, 0))
	if len(got) != 3 {
		t.Fatalf("matched %d events, want 3", len(got))
	}
	if got[0].ID != 2 || got[2].ID != 4 {
		t.Fatalf("range boundaries not inclusive: ids %d..%d", got[0].ID, got[2].ID)
	}
}

func TestEventsOn(t *testing.T) {
	events := []records.Event{
		{ID: 1, Start: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)},
		{ID: 2, Start: time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)},
		{ID: 3, Start: time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)},
	}
	got := EventsOn(events, time.Date(2024, 6, 15, 12, 34, 0, 0, time.UTC))
	if len(got) != 2 {
		t.Fatalf("matched %d events on 2024-06-15, want 2", len(got))
	}
}

func TestEventsOn_DSTTransitionDay(t *testing.T) {
	// 2024-11-03 has 25 hours in New York; the day must still run to
	// the next calendar midnight, not to start+24h.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	events := []records.Event{
		{ID: 1, Start: time.Date(2024, 11, 3, 23, 30, 0, 0, loc)},
		{ID: 2, Start: time.Date(2024, 11, 4, 0, 0, 0, 0, loc)},
		{ID: 3, Start: time.Date(2024, 11, 4, 0, 30, 0, 0, loc)},
	}
	got := EventsOn(events, time.Date(2024, 11, 3, 12, 0, 0, 0, loc))
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("DST day matched %v, want only the 23:30 event", got)
	}
}

func TestSortEventsByStart_StableAndNonMutating(t *testing.T) {
	events := []records.Event{
		{ID: 1, Start: time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC)},
		{ID: 2, Start: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)},
		{ID: 3, Start: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)},
	}
	got := SortEventsByStart(events)
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Fatalf("sorted ids %d,%d,%d; want 2,3,1", got[0].ID, got[1].ID, got[2].ID)
	}
	if events[0].ID != 1 {
		t.Fatalf("input slice was reordered")
	}
}

func TestNotesByTag(t *testing.T) {
	notes := []records.Note{
		{ID: 1, Tags: []string{"Work", "planning"}},
		{ID: 2, Tags: []string{"personal"}},
		{ID: 3, Tags: []string{"work"}},
	}
	got := NotesByTag(notes, []string{"WORK"})
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("tag match got %v", got)
	}
	if got := NotesByTag(notes, nil); got != nil {
		t.Fatalf("empty tag set matched %d notes", len(got))
	}
}

func TestTags_Distinct(t *testing.T) {
	notes := []records.Note{
		{Tags: []string{"work", "planning"}},
		{Tags: []string{"Work", "personal"}},
	}
	got := Tags(notes)
	if len(got) != 3 {
		t.Fatalf("Tags=%v, want 3 distinct entries", got)
	}
}

func TestTodosByStatus(t *testing.T) {
	todos := []records.Todo{
		{ID: 1, Priority: records.PriorityHigh, Completed: false},
		{ID: 2, Priority: records.PriorityLow, Completed: true},
		{ID: 3, Priority: records.PriorityHigh, Completed: true},
	}

	open := false
	if got := TodosByStatus(todos, &open, ""); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("open todos got %v", got)
	}
	done := true
	if got := TodosByStatus(todos, &done, records.PriorityHigh); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("completed high todos got %v", got)
	}
	if got := TodosByStatus(todos, nil, ""); len(got) != 3 {
		t.Fatalf("unfiltered got %d todos, want 3", len(got))
	}
}
