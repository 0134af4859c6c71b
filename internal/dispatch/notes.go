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

const notePreviewLimit = 100

// AddNoteOp saves a note.
type AddNoteOp struct {
	store *records.NoteStore
}

func NewAddNoteOp(store *records.NoteStore) *AddNoteOp {
	return &AddNoteOp{store: store}
}

func (o *AddNoteOp) Name() string { return "add_note" }

func (o *AddNoteOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Save a note with a title and content",
			Parameters: objectSchema(map[string]any{
				"title":   stringProp("Short title for the note"),
				"content": stringProp("The body of the note"),
				"tags":    arrayOfStringsProp("Optional tags for categorizing the note"),
			}, "title", "content"),
		},
	}
}

func (o *AddNoteOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed add_note arguments", records.ErrValidation)
	}

	created, err := o.store.Create(records.Note{
		Title:   in.Title,
		Content: in.Content,
		Tags:    in.Tags,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved note '%s' (ID %d).", created.Title, created.ID), nil
}

// ListNotesOp lists notes, optionally restricted by tag.
type ListNotesOp struct {
	store *records.NoteStore
}

func NewListNotesOp(store *records.NoteStore) *ListNotesOp {
	return &ListNotesOp{store: store}
}

func (o *ListNotesOp) Name() string { return "list_notes" }

func (o *ListNotesOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "List saved notes, optionally filtered by tag",
			Parameters: objectSchema(map[string]any{
				"tag": stringProp("Optional tag to filter notes"),
			}),
		},
	}
}

func (o *ListNotesOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Tag string `json:"tag"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed list_notes arguments", records.ErrValidation)
	}

	notes := o.store.List()
	if in.Tag != "" {
		notes = query.NotesByTag(notes, []string{in.Tag})
	}
	if len(notes) == 0 {
		if in.Tag != "" {
			return fmt.Sprintf("No notes found with tag '%s'.", in.Tag), nil
		}
		return "You have no saved notes.", nil
	}

	var b strings.Builder
	b.WriteString("Here are your notes:\n\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "- [%d] %s", n.ID, n.Title)
		if len(n.Tags) > 0 {
			fmt.Fprintf(&b, " (tags: %s)", strings.Join(n.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetNoteOp fetches one note with its full content.
type GetNoteOp struct {
	store *records.NoteStore
}

func NewGetNoteOp(store *records.NoteStore) *GetNoteOp {
	return &GetNoteOp{store: store}
}

func (o *GetNoteOp) Name() string { return "get_note" }

func (o *GetNoteOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Read the full content of a note by its ID",
			Parameters: objectSchema(map[string]any{
				"id": intProp("The note ID from list_notes or search_notes"),
			}, "id"),
		},
	}
}

func (o *GetNoteOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed get_note arguments", records.ErrValidation)
	}

	n, err := o.store.Get(in.ID)
	if err != nil {
		return "", fmt.Errorf("%w: no note found with ID %d", records.ErrNotFound, in.ID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", n.Title, n.Content)
	if len(n.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(n.Tags, ", "))
	}
	return b.String(), nil
}

// UpdateNoteOp edits a note; only the provided fields change.
type UpdateNoteOp struct {
	store *records.NoteStore
}

func NewUpdateNoteOp(store *records.NoteStore) *UpdateNoteOp {
	return &UpdateNoteOp{store: store}
}

func (o *UpdateNoteOp) Name() string { return "update_note" }

func (o *UpdateNoteOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Update a note's title, content, or tags; only the provided fields change",
			Parameters: objectSchema(map[string]any{
				"id":      intProp("The note ID"),
				"title":   stringProp("New title"),
				"content": stringProp("New content, replacing the old content"),
				"tags":    arrayOfStringsProp("New tags, replacing the old tags"),
			}, "id"),
		},
	}
}

func (o *UpdateNoteOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		ID      int       `json:"id"`
		Title   *string   `json:"title"`
		Content *string   `json:"content"`
		Tags    *[]string `json:"tags"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed update_note arguments", records.ErrValidation)
	}

	updated, err := o.store.Update(in.ID, func(n *records.Note) {
		if in.Title != nil {
			n.Title = *in.Title
		}
		if in.Content != nil {
			n.Content = *in.Content
		}
		if in.Tags != nil {
			n.Tags = *in.Tags
		}
	})
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return "", fmt.Errorf("%w: no note found with ID %d", records.ErrNotFound, in.ID)
		}
		return "", err
	}
	return fmt.Sprintf("Updated note '%s'.", updated.Title), nil
}

// DeleteNoteOp removes a note.
type DeleteNoteOp struct {
	store *records.NoteStore
}

func NewDeleteNoteOp(store *records.NoteStore) *DeleteNoteOp {
	return &DeleteNoteOp{store: store}
}

func (o *DeleteNoteOp) Name() string { return "delete_note" }

func (o *DeleteNoteOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Delete a note by its ID",
			Parameters: objectSchema(map[string]any{
				"id": intProp("The note ID"),
			}, "id"),
		},
	}
}

func (o *DeleteNoteOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed delete_note arguments", records.ErrValidation)
	}

	n, err := o.store.Get(in.ID)
	if err != nil {
		return "", fmt.Errorf("%w: no note found with ID %d", records.ErrNotFound, in.ID)
	}
	if err := o.store.Delete(in.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted note '%s'.", n.Title), nil
}

// SearchNotesOp searches titles, content and tags by keyword.
type SearchNotesOp struct {
	store *records.NoteStore
}

func NewSearchNotesOp(store *records.NoteStore) *SearchNotesOp {
	return &SearchNotesOp{store: store}
}

func (o *SearchNotesOp) Name() string { return "search_notes" }

func (o *SearchNotesOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Search notes by keyword across titles, content and tags",
			Parameters: objectSchema(map[string]any{
				"keyword": stringProp("The word or phrase to search for"),
			}, "keyword"),
		},
	}
}

func (o *SearchNotesOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Keyword string `json:"keyword"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed search_notes arguments", records.ErrValidation)
	}
	if strings.TrimSpace(in.Keyword) == "" {
		return "", fmt.Errorf("%w: search keyword is empty", records.ErrValidation)
	}

	matches := query.SearchNotes(o.store.List(), in.Keyword)
	if len(matches) == 0 {
		return fmt.Sprintf("No notes found matching '%s'.", in.Keyword), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d note(s) matching '%s':\n\n", len(matches), in.Keyword)
	for _, n := range matches {
		fmt.Fprintf(&b, "- [%d] %s: %s\n", n.ID, n.Title, preview(n.Content, notePreviewLimit))
	}
	return b.String(), nil
}

// ListTagsOp lists every distinct tag in use.
type ListTagsOp struct {
	store *records.NoteStore
}

func NewListTagsOp(store *records.NoteStore) *ListTagsOp {
	return &ListTagsOp{store: store}
}

func (o *ListTagsOp) Name() string { return "list_tags" }

func (o *ListTagsOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "List all tags used across notes",
			Parameters:  objectSchema(map[string]any{}),
		},
	}
}

func (o *ListTagsOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	tags := query.Tags(o.store.List())
	if len(tags) == 0 {
		return "No tags are in use yet.", nil
	}
	return "Tags in use: " + strings.Join(tags, ", ") + ".", nil
}
