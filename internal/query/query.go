// Package query holds the stateless match functions applied to record
// collections. All functions preserve insertion order and return the
// full match set; nothing here is ranked or paginated.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/records"
)

// SearchNotes returns notes whose title, content, or tags contain the
// keyword, case-insensitively.
func SearchNotes(notes []records.Note, keyword string) []records.Note {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}
	var out []records.Note
	for _, note := range notes {
		if strings.Contains(strings.ToLower(note.Title), keyword) ||
			strings.Contains(strings.ToLower(note.Content), keyword) ||
			anyTagContains(note.Tags, keyword) {
			out = append(out, note)
		}
	}
	return out
}

// SearchContacts returns contacts whose name, email, phone, address, or
// notes contain the keyword, case-insensitively.
func SearchContacts(contacts []records.Contact, keyword string) []records.Contact {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}
	var out []records.Contact
	for _, c := range contacts {
		haystacks := []string{c.Name, c.Email, c.Phone, c.Address, c.Notes}
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), keyword) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// ContactByName returns the first contact whose name matches exactly,
// case-insensitively.
func ContactByName(contacts []records.Contact, name string) (records.Contact, bool) {
	name = strings.TrimSpace(name)
	for _, c := range contacts {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return records.Contact{}, false
}

// EventsInRange returns events whose start time falls in the inclusive
// [from, to] range. The caller resolves "today"/"this week" into
// concrete instants before calling; this function is timezone-naive.
func EventsInRange(events []records.Event, from, to time.Time) []records.Event {
	var out []records.Event
	for _, e := range events {
		if e.Start.Before(from) || e.Start.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EventsOn returns events starting on the given calendar day, in the
// day's location. The upper bound is the next calendar day (exclusive),
// not start+24h, so DST-shortened and -lengthened days keep their full
// span.
func EventsOn(events []records.Event, day time.Time) []records.Event {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var out []records.Event
	for _, e := range events {
		if e.Start.Before(start) || !e.Start.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortEventsByStart returns a copy ordered by start time, earliest
// first. Ties keep insertion order.
func SortEventsByStart(events []records.Event) []records.Event {
	out := make([]records.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// NotesByTag returns notes whose tag set intersects the given tags,
// case-insensitively.
func NotesByTag(notes []records.Note, tags []string) []records.Note {
	wanted := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			wanted[tag] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	var out []records.Note
	for _, note := range notes {
		for _, tag := range note.Tags {
			if wanted[strings.ToLower(tag)] {
				out = append(out, note)
				break
			}
		}
	}
	return out
}

// Tags returns the distinct tags used across all notes, sorted.
func Tags(notes []records.Note) []string {
	seen := make(map[string]bool)
	var out []string
	for _, note := range notes {
		for _, tag := range note.Tags {
			key := strings.ToLower(tag)
			if !seen[key] {
				seen[key] = true
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return out
}

// TodosByStatus filters todos by completion flag and/or priority.
// A nil completed matches both states; an empty priority matches all
// priorities.
func TodosByStatus(todos []records.Todo, completed *bool, priority string) []records.Todo {
	priority = strings.ToLower(strings.TrimSpace(priority))
	var out []records.Todo
	for _, todo := range todos {
		if completed != nil && todo.Completed != *completed {
			continue
		}
		if priority != "" && todo.Priority != priority {
			continue
		}
		out = append(out, todo)
	}
	return out
}

func anyTagContains(tags []string, keyword string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	return false
}
