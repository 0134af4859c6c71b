// Package dispatch maps structured operation calls coming back from the
// language model onto the record stores and query functions, and
// renders the outcome as text for the user.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/DavidVart/Personal-Assistant/internal/chat"
	"github.com/DavidVart/Personal-Assistant/internal/records"
)

// ErrUnsupportedOperation reports a dispatch target outside the closed
// operation catalog.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// Op is one operation in the catalog: it names itself, describes its
// argument schema for the model, and executes a structured call.
type Op interface {
	Name() string
	Definition() chat.ToolDef
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the closed set of supported operations.
type Registry struct {
	ops map[string]Op
}

func NewRegistry(ops ...Op) *Registry {
	m := make(map[string]Op, len(ops))
	for _, op := range ops {
		m[op.Name()] = op
	}
	return &Registry{ops: m}
}

// Definitions returns the operation catalog sorted by name, the shape
// handed to the model on every request.
func (r *Registry) Definitions() []chat.ToolDef {
	out := make([]chat.ToolDef, 0, len(r.ops))
	for _, name := range r.Names() {
		out = append(out, r.ops[name].Definition())
	}
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	_, ok := r.ops[name]
	return ok
}

// Execute runs the named operation. Unknown names wrap
// ErrUnsupportedOperation; entity-level failures come back wrapping
// records.ErrNotFound or records.ErrValidation.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	op, ok := r.ops[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOperation, name)
	}
	return op.Execute(ctx, args)
}

// UserMessage converts an operation failure into the text shown to the
// user (and fed back to the model). Entity-level errors become plain
// error sentences; everything else is a generic apology. Nothing here
// ever aborts the hosting process.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedOperation):
		return "I don't know how to do that."
	case errors.Is(err, records.ErrNotFound),
		errors.Is(err, records.ErrValidation):
		return fmt.Sprintf("Error: %v.", trimSentinel(err))
	default:
		return "Sorry, something went wrong while handling that request."
	}
}

// trimSentinel drops the sentinel prefix ("invalid record: ...") so the
// user sees only the specific message.
func trimSentinel(err error) string {
	msg := err.Error()
	for _, sentinel := range []string{
		records.ErrValidation.Error() + ": ",
		records.ErrNotFound.Error() + ": ",
	} {
		if rest, ok := strings.CutPrefix(msg, sentinel); ok {
			return rest
		}
	}
	return msg
}
