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

// AddContactOp creates a contact. Names are unique case-insensitively.
type AddContactOp struct {
	store *records.ContactStore
}

func NewAddContactOp(store *records.ContactStore) *AddContactOp {
	return &AddContactOp{store: store}
}

func (o *AddContactOp) Name() string { return "add_contact" }

func (o *AddContactOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Add a person to the contact book",
			Parameters: objectSchema(map[string]any{
				"name":    stringProp("The person's full name"),
				"email":   stringProp("Optional email address"),
				"phone":   stringProp("Optional phone number"),
				"address": stringProp("Optional postal address"),
				"notes":   stringProp("Optional free-form notes about the person"),
			}, "name"),
		},
	}
}

func (o *AddContactOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		Notes   string `json:"notes"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed add_contact arguments", records.ErrValidation)
	}

	if _, ok := query.ContactByName(o.store.List(), in.Name); ok {
		return "", fmt.Errorf("%w: a contact named '%s' already exists", records.ErrValidation, in.Name)
	}

	created, err := o.store.Create(records.Contact{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Notes:   in.Notes,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added contact '%s'.", created.Name), nil
}

// GetContactOp looks one contact up by name.
type GetContactOp struct {
	store *records.ContactStore
}

func NewGetContactOp(store *records.ContactStore) *GetContactOp {
	return &GetContactOp{store: store}
}

func (o *GetContactOp) Name() string { return "get_contact" }

func (o *GetContactOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Look up a contact's details by name",
			Parameters: objectSchema(map[string]any{
				"name": stringProp("The contact's name"),
			}, "name"),
		},
	}
}

func (o *GetContactOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed get_contact arguments", records.ErrValidation)
	}

	c, ok := query.ContactByName(o.store.List(), in.Name)
	if !ok {
		return "", fmt.Errorf("%w: no contact found named '%s'", records.ErrNotFound, in.Name)
	}
	return formatContact(c), nil
}

// UpdateContactOp edits a contact found by name; only the provided
// fields change.
type UpdateContactOp struct {
	store *records.ContactStore
}

func NewUpdateContactOp(store *records.ContactStore) *UpdateContactOp {
	return &UpdateContactOp{store: store}
}

func (o *UpdateContactOp) Name() string { return "update_contact" }

func (o *UpdateContactOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Update a contact's details; only the provided fields change",
			Parameters: objectSchema(map[string]any{
				"name":     stringProp("The contact's current name"),
				"new_name": stringProp("New name for the contact"),
				"email":    stringProp("New email address"),
				"phone":    stringProp("New phone number"),
				"address":  stringProp("New postal address"),
				"notes":    stringProp("New notes"),
			}, "name"),
		},
	}
}

func (o *UpdateContactOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Name    string  `json:"name"`
		NewName *string `json:"new_name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
		Notes   *string `json:"notes"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed update_contact arguments", records.ErrValidation)
	}

	existing, ok := query.ContactByName(o.store.List(), in.Name)
	if !ok {
		return "", fmt.Errorf("%w: no contact found named '%s'", records.ErrNotFound, in.Name)
	}
	if in.NewName != nil && !strings.EqualFold(*in.NewName, existing.Name) {
		if _, taken := query.ContactByName(o.store.List(), *in.NewName); taken {
			return "", fmt.Errorf("%w: a contact named '%s' already exists", records.ErrValidation, *in.NewName)
		}
	}

	updated, err := o.store.Update(existing.ID, func(c *records.Contact) {
		if in.NewName != nil {
			c.Name = *in.NewName
		}
		if in.Email != nil {
			c.Email = *in.Email
		}
		if in.Phone != nil {
			c.Phone = *in.Phone
		}
		if in.Address != nil {
			c.Address = *in.Address
		}
		if in.Notes != nil {
			c.Notes = *in.Notes
		}
	})
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return "", fmt.Errorf("%w: no contact found named '%s'", records.ErrNotFound, in.Name)
		}
		return "", err
	}
	return fmt.Sprintf("Updated contact '%s'.", updated.Name), nil
}

// DeleteContactOp removes a contact by name.
type DeleteContactOp struct {
	store *records.ContactStore
}

func NewDeleteContactOp(store *records.ContactStore) *DeleteContactOp {
	return &DeleteContactOp{store: store}
}

func (o *DeleteContactOp) Name() string { return "delete_contact" }

func (o *DeleteContactOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Delete a contact by name",
			Parameters: objectSchema(map[string]any{
				"name": stringProp("The contact's name"),
			}, "name"),
		},
	}
}

func (o *DeleteContactOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed delete_contact arguments", records.ErrValidation)
	}

	c, ok := query.ContactByName(o.store.List(), in.Name)
	if !ok {
		return "", fmt.Errorf("%w: no contact found named '%s'", records.ErrNotFound, in.Name)
	}
	if err := o.store.Delete(c.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted contact '%s'.", c.Name), nil
}

// FindContactsOp searches every contact field by keyword.
type FindContactsOp struct {
	store *records.ContactStore
}

func NewFindContactsOp(store *records.ContactStore) *FindContactsOp {
	return &FindContactsOp{store: store}
}

func (o *FindContactsOp) Name() string { return "find_contacts" }

func (o *FindContactsOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Search contacts by keyword across all fields",
			Parameters: objectSchema(map[string]any{
				"keyword": stringProp("The word or phrase to search for"),
			}, "keyword"),
		},
	}
}

func (o *FindContactsOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Keyword string `json:"keyword"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed find_contacts arguments", records.ErrValidation)
	}
	if strings.TrimSpace(in.Keyword) == "" {
		return "", fmt.Errorf("%w: search keyword is empty", records.ErrValidation)
	}

	matches := query.SearchContacts(o.store.List(), in.Keyword)
	if len(matches) == 0 {
		return fmt.Sprintf("No contacts found matching '%s'.", in.Keyword), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d contact(s) matching '%s':\n\n", len(matches), in.Keyword)
	for _, c := range matches {
		fmt.Fprintf(&b, "- %s", c.Name)
		if c.Email != "" {
			fmt.Fprintf(&b, " <%s>", c.Email)
		}
		if c.Phone != "" {
			fmt.Fprintf(&b, " (%s)", c.Phone)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ListContactsOp lists every contact.
type ListContactsOp struct {
	store *records.ContactStore
}

func NewListContactsOp(store *records.ContactStore) *ListContactsOp {
	return &ListContactsOp{store: store}
}

func (o *ListContactsOp) Name() string { return "list_contacts" }

func (o *ListContactsOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "List everyone in the contact book",
			Parameters:  objectSchema(map[string]any{}),
		},
	}
}

func (o *ListContactsOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	contacts := o.store.List()
	if len(contacts) == 0 {
		return "Your contact book is empty.", nil
	}

	var b strings.Builder
	b.WriteString("Here are your contacts:\n\n")
	for _, c := range contacts {
		fmt.Fprintf(&b, "- %s", c.Name)
		if c.Email != "" {
			fmt.Fprintf(&b, " <%s>", c.Email)
		}
		if c.Phone != "" {
			fmt.Fprintf(&b, " (%s)", c.Phone)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func formatContact(c records.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", c.Name)
	if c.Email != "" {
		fmt.Fprintf(&b, "  Email: %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Fprintf(&b, "  Phone: %s\n", c.Phone)
	}
	if c.Address != "" {
		fmt.Fprintf(&b, "  Address: %s\n", c.Address)
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "  Notes: %s\n", c.Notes)
	}
	return b.String()
}
