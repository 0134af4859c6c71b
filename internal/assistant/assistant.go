// Package assistant runs the conversation loop: user input goes to the
// language model together with the operation catalog, structured calls
// coming back are executed through the dispatch registry, and the loop
// repeats until the model answers in plain text.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/chat"
	"github.com/DavidVart/Personal-Assistant/internal/dispatch"
	"github.com/DavidVart/Personal-Assistant/internal/provider"
)

// ProviderApology is shown when the model backend cannot be reached.
// Callers render it instead of surfacing transport errors to the user.
const ProviderApology = "Sorry, I'm having trouble reaching the language model right now. Please try again in a moment."

// StepLimitApology is shown when a turn exhausts its round-trip budget
// without the model settling on a final answer.
const StepLimitApology = "Sorry, that request took too many steps to finish. Please try a smaller or more specific request."

// ErrStepLimit reports a turn that used up MaxSteps provider
// round-trips without producing a plain-text reply.
var ErrStepLimit = errors.New("step limit reached")

const (
	defaultMaxSteps    = 8
	defaultTokenBudget = 24000
)

// Options configures a conversation.
type Options struct {
	Provider     provider.Provider
	Registry     *dispatch.Registry
	SystemPrompt string
	// MaxSteps bounds provider round-trips per user input.
	MaxSteps int
	// TokenBudget bounds the history handed to the provider.
	TokenBudget int
	Tokenizer   *Tokenizer
	// Now is the conversation clock, injectable for tests.
	Now func() time.Time
}

// Assistant holds one conversation: the system prompt, the running
// message history, and the wiring to provider and registry. Safe for
// use from one goroutine at a time per conversation; the web layer
// serializes access per session.
type Assistant struct {
	provider    provider.Provider
	registry    *dispatch.Registry
	tokenizer   *Tokenizer
	maxSteps    int
	tokenBudget int
	now         func() time.Time

	mu       sync.Mutex
	messages []chat.Message
}

func New(opts Options) *Assistant {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = defaultTokenBudget
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = DefaultTokenizer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &Assistant{
		provider:    opts.Provider,
		registry:    opts.Registry,
		tokenizer:   opts.Tokenizer,
		maxSteps:    opts.MaxSteps,
		tokenBudget: opts.TokenBudget,
		now:         opts.Now,
	}
	a.messages = []chat.Message{{Role: "system", Content: opts.SystemPrompt}}
	return a
}

// RunInput processes one user message and returns the assistant's
// reply. Operation failures are rendered as user text and fed back to
// the model; only provider/transport failures return an error.
func (a *Assistant) RunInput(ctx context.Context, input string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.messages = append(a.messages, chat.Message{Role: "user", Content: input})

	for step := 0; step < a.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		a.trimHistory()

		resp, err := a.provider.Chat(ctx, provider.ChatRequest{
			Messages: a.messages,
			Tools:    a.registry.Definitions(),
		})
		if err != nil {
			return "", fmt.Errorf("provider chat: %w", err)
		}

		a.messages = append(a.messages, chat.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		for _, call := range resp.ToolCalls {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			result, err := a.registry.Execute(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if err != nil {
				result = dispatch.UserMessage(err)
			}
			a.messages = append(a.messages, chat.Message{
				Role:       "tool",
				Name:       call.Function.Name,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}
	return "", fmt.Errorf("%w (%d)", ErrStepLimit, a.maxSteps)
}

// FailureMessage maps a RunInput error to the text shown to the user.
func FailureMessage(err error) string {
	if errors.Is(err, ErrStepLimit) {
		return StepLimitApology
	}
	return ProviderApology
}

// Reset clears the history back to the system prompt.
func (a *Assistant) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = a.messages[:1]
}

// Restore replaces the history with one loaded from persistence. A
// saved history that lacks a system prompt keeps the current one.
func (a *Assistant) Restore(messages []chat.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(messages) == 0 {
		return
	}
	restored := make([]chat.Message, 0, len(messages)+1)
	if messages[0].Role != "system" {
		restored = append(restored, a.messages[0])
	}
	restored = append(restored, messages...)
	a.messages = restored
}

// History returns a copy of the conversation so far.
func (a *Assistant) History() []chat.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]chat.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// OperationNames lists the catalog this conversation can dispatch.
func (a *Assistant) OperationNames() []string {
	return a.registry.Names()
}

// trimHistory drops the oldest turns until the history fits the token
// budget. The system prompt and the most recent user turn always
// survive; cuts land on user-message boundaries so a tool result is
// never separated from the call that produced it.
func (a *Assistant) trimHistory() {
	for a.tokenizer.Count(a.messages) > a.tokenBudget {
		cut := -1
		for i := 2; i < len(a.messages); i++ {
			if a.messages[i].Role == "user" {
				cut = i
				break
			}
		}
		if cut < 0 {
			return
		}
		a.messages = append(a.messages[:1], a.messages[cut:]...)
	}
}
