package checkpoint

import "time"

// Step identifies where a conversation thread currently sits in the
// confirmation workflow. It is persisted with the thread so a restart
// resumes exactly where the previous run left off.
type Step string

const (
	StepEntry                Step = "entry"
	StepAnalyzeWrite         Step = "analyze_write"
	StepCheckConsequences    Step = "check_consequences"
	StepAwaitingConfirmation Step = "awaiting_confirmation"
	StepExecuteAction        Step = "execute_action"
	StepRespondAndEnd        Step = "respond_and_end"
)

// Turn roles. Ordering of turns is significant: the last user turn
// drives routing decisions.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is one entry in a thread's append-only message log.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ThreadState is the full persisted state of one conversation thread.
// Invariant: AwaitingConfirmation implies Step == StepAwaitingConfirmation
// and a non-empty PendingAction.
type ThreadState struct {
	ThreadID             string    `json:"thread_id"`
	Step                 Step      `json:"current_step"`
	Turns                []Turn    `json:"message_log"`
	PendingAction        string    `json:"pending_action"`
	RequiresConfirmation bool      `json:"requires_confirmation"`
	AwaitingConfirmation bool      `json:"awaiting_confirmation"`
	PageContext          string    `json:"page_context"`
	ConfirmationPrompt   string    `json:"confirmation_prompt,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewThreadState creates the state for a thread seen for the first time.
func NewThreadState(threadID, pageContext string) *ThreadState {
	return &ThreadState{
		ThreadID:    threadID,
		Step:        StepEntry,
		PageContext: pageContext,
	}
}

// Append adds a turn to the message log.
func (s *ThreadState) Append(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, Timestamp: time.Now()})
}

// LastUserText returns the content of the most recent user turn.
func (s *ThreadState) LastUserText() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Content
		}
	}
	return ""
}

// LastAssistantText returns the content of the most recent assistant turn.
func (s *ThreadState) LastAssistantText() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleAssistant {
			return s.Turns[i].Content
		}
	}
	return ""
}
