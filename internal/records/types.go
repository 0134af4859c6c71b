package records

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Record 是四种实体共同实现的存储契约
// Record is the storage contract implemented by all four entity kinds.
type Record interface {
	RecordID() int
	SetRecordID(id int)
	StampCreated(now time.Time)
	StampUpdated(now time.Time)
	Validate() error
}

// Priority levels for todos.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Event 日历事件 / Event is one calendar entry.
type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *Event) RecordID() int              { return e.ID }
func (e *Event) SetRecordID(id int)         { e.ID = id }
func (e *Event) StampCreated(now time.Time) { e.CreatedAt = now }
func (e *Event) StampUpdated(time.Time)     {}

func (e *Event) Validate() error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return fmt.Errorf("%w: event title is required", ErrValidation)
	}
	if e.Start.IsZero() {
		return fmt.Errorf("%w: event start time is required", ErrValidation)
	}
	if e.End.IsZero() {
		// Original behavior: an open-ended event lasts one hour.
		e.End = e.Start.Add(time.Hour)
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("%w: event end %s is before start %s", ErrValidation,
			e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
	}
	return nil
}

// Todo 待办事项 / Todo is one to-do list entry.
type Todo struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	DueDate     string    `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (t *Todo) RecordID() int              { return t.ID }
func (t *Todo) SetRecordID(id int)         { t.ID = id }
func (t *Todo) StampCreated(now time.Time) { t.CreatedAt = now }
func (t *Todo) StampUpdated(time.Time)     {}

func (t *Todo) Validate() error {
	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return fmt.Errorf("%w: todo description is required", ErrValidation)
	}
	p, ok := NormalizePriority(t.Priority)
	if !ok {
		return fmt.Errorf("%w: priority must be low, medium, or high (got %q)", ErrValidation, t.Priority)
	}
	t.Priority = p
	if t.DueDate != "" {
		if _, err := time.Parse("2006-01-02", t.DueDate); err != nil {
			return fmt.Errorf("%w: due date must be in YYYY-MM-DD format", ErrValidation)
		}
	}
	return nil
}

// NormalizePriority lower-cases a priority value and applies the medium
// default for empty input. ok is false for unrecognized values.
func NormalizePriority(p string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "":
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return "", false
	}
}

// Note 笔记 / Note is one note with optional tags.
type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Note) RecordID() int      { return n.ID }
func (n *Note) SetRecordID(id int) { n.ID = id }

func (n *Note) StampCreated(now time.Time) {
	n.CreatedAt = now
	n.UpdatedAt = now
}

func (n *Note) StampUpdated(now time.Time) { n.UpdatedAt = now }

func (n *Note) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return fmt.Errorf("%w: note title is required", ErrValidation)
	}
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("%w: note content is required", ErrValidation)
	}
	tags := make([]string, 0, len(n.Tags))
	for _, tag := range n.Tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	n.Tags = tags
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Contact 联系人 / Contact is one address-book entry.
type Contact struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

func (c *Contact) RecordID() int          { return c.ID }
func (c *Contact) SetRecordID(id int)     { c.ID = id }
func (c *Contact) StampCreated(time.Time) {}
func (c *Contact) StampUpdated(time.Time) {}

func (c *Contact) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: contact name is required", ErrValidation)
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return fmt.Errorf("%w: invalid email address format", ErrValidation)
	}
	return nil
}
