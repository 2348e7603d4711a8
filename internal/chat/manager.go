package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/david/contract-finder/internal/models"
	"github.com/david/contract-finder/internal/value"
)

// Greeting is the fixed agent message every transcript opens with.
const Greeting = "How may I help you? What questions do you have about this contract?"

// apology replaces the agent reply when the assistant call fails; the
// transcript stays well-formed and the session survives.
const apology = "Sorry, I encountered an error. Please try again."

// ErrTurnInFlight is returned while a previous Send on the same transcript
// has not resolved yet.
var ErrTurnInFlight = errors.New("a chat turn is already in flight")

// AssistantError wraps a failed assistant call. Send recovers from it by
// appending the apology; it is exposed for logging, not propagation.
type AssistantError struct {
	Err error
}

func (e *AssistantError) Error() string { return fmt.Sprintf("assistant call failed: %v", e.Err) }
func (e *AssistantError) Unwrap() error { return e.Err }

// Assistant is the remote chat collaborator.
type Assistant interface {
	SendChatTurn(ctx context.Context, summary value.Value, transcript []models.ChatMessage, userText string) (string, error)
}

// Manager owns the ordered transcript for one opportunity view and
// serializes turns through the assistant. The transcript is append-only and
// message 0 is always the agent greeting.
type Manager struct {
	assistant Assistant
	summary   value.Value

	mu         sync.Mutex
	inFlight   bool
	transcript []models.ChatMessage
}

// Start seeds a manager with the summary the conversation is grounded in.
func Start(assistant Assistant, summary value.Value) *Manager {
	return &Manager{
		assistant: assistant,
		summary:   summary,
		transcript: []models.ChatMessage{
			{Role: models.RoleAgent, Content: Greeting},
		},
	}
}

// Transcript returns a copy of the current transcript.
func (m *Manager) Transcript() []models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatMessage, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// InFlight reports whether a turn is currently outstanding.
func (m *Manager) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// Send appends the user message, submits the full transcript plus the
// seeding summary to the assistant, and appends the reply. While a turn is
// outstanding a second Send is rejected with ErrTurnInFlight, so the agent
// reply for turn N is always appended before turn N+1's user message is
// accepted. An assistant failure is absorbed as an apology turn, never
// surfaced to the caller.
func (m *Manager) Send(ctx context.Context, userText string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	m.inFlight = true
	m.transcript = append(m.transcript, models.ChatMessage{Role: models.RoleUser, Content: userText})
	sent := make([]models.ChatMessage, len(m.transcript))
	copy(sent, m.transcript)
	m.mu.Unlock()

	reply, err := m.assistant.SendChatTurn(ctx, m.summary, sent, userText)
	if err != nil {
		log.Printf("chat: %v", &AssistantError{Err: err})
		reply = apology
	}

	m.mu.Lock()
	m.transcript = append(m.transcript, models.ChatMessage{Role: models.RoleAgent, Content: reply})
	m.inFlight = false
	out := make([]models.ChatMessage, len(m.transcript))
	copy(out, m.transcript)
	m.mu.Unlock()

	return out, nil
}
