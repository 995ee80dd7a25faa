package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/movihq/movi/internal/checkpoint"
	"github.com/movihq/movi/internal/governance"
	"github.com/movihq/movi/internal/interpreter"
	"github.com/movihq/movi/internal/observability"
	"github.com/movihq/movi/internal/tools"
)

// Result is what a single turn returns to the gateway.
type Result struct {
	ResponseText      string
	NeedsConfirmation bool
	ThreadID          string
}

// fallback user-facing lines; interpreter output replaces them whenever
// it is available.
const (
	msgCancelled    = "Action cancelled. No changes made to the database."
	msgReprompt     = "Please respond with 'yes' to proceed or 'no' to cancel."
	msgExpired      = "This confirmation request expired without a response. No changes were made to the database."
	msgNoOperation  = "I couldn't pin down the exact change you want to make. Could you rephrase the request?"
	msgGenericError = "Sorry, the action could not be completed."
)

// Orchestrator drives the confirmation workflow: classify the turn,
// decide whether consequence checking is needed, suspend for human
// confirmation, and execute the captured write at most once.
type Orchestrator struct {
	Interp      interpreter.Interpreter
	Registry    *tools.Registry
	Checkpoints checkpoint.Store
	Policy      governance.PolicyEngine
	Logger      *observability.Logger

	locks *keyedMutex
}

func New(interp interpreter.Interpreter, registry *tools.Registry, checkpoints checkpoint.Store, policy governance.PolicyEngine, logger *observability.Logger) *Orchestrator {
	return &Orchestrator{
		Interp:      interp,
		Registry:    registry,
		Checkpoints: checkpoints,
		Policy:      policy,
		Logger:      logger,
		locks:       newKeyedMutex(),
	}
}

// Run processes one inbound turn for a thread, from checkpoint load to
// checkpoint save. An empty thread id starts a fresh thread. The
// per-thread lock is held for the whole run so two concurrent turns on
// one thread can never both observe the suspended state.
func (o *Orchestrator) Run(ctx context.Context, threadID, userText, pageContext string) (res Result, err error) {
	if threadID == "" {
		threadID = uuid.NewString()
	}

	unlock := o.locks.Lock(threadID)
	defer unlock()

	observability.SetStatus(observability.PhaseInterpreting, threadID)
	defer func() {
		if res.NeedsConfirmation {
			observability.SetStatus(observability.PhaseAwaiting, threadID)
		} else {
			observability.SetStatus(observability.PhaseIdle, "")
		}
	}()

	state, err := o.Checkpoints.Load(ctx, threadID)
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
		state = checkpoint.NewThreadState(threadID, pageContext)
	case err != nil:
		return Result{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if pageContext != "" {
		state.PageContext = pageContext
	}
	state.Append(checkpoint.RoleUser, userText)

	if state.AwaitingConfirmation {
		return o.handleConfirmation(ctx, state)
	}
	return o.entry(ctx, state)
}

// entry classifies the new turn. Reads execute immediately; writes head
// into analysis. A directly-invokable read action always wins over
// phrase matching on the model's prose.
func (o *Orchestrator) entry(ctx context.Context, state *checkpoint.ThreadState) (Result, error) {
	o.transition(state, checkpoint.StepEntry)

	intent, err := o.Interp.ClassifyIntent(ctx, state)
	if err != nil {
		log.Printf("classify intent failed for thread %s: %v", state.ThreadID, err)
		return o.respond(ctx, state, msgGenericError)
	}

	switch intent.Kind {
	case interpreter.IntentRead:
		return o.directRead(ctx, state, intent.ReadSQL)
	case interpreter.IntentWrite:
		return o.analyzeWrite(ctx, state, intent)
	default:
		answer := intent.Answer
		if strings.TrimSpace(answer) == "" {
			answer = "I received your request."
		}
		return o.respond(ctx, state, answer)
	}
}

// directRead runs the interpreter-chosen SELECT and composes the final
// answer. No suspension, no pending action.
func (o *Orchestrator) directRead(ctx context.Context, state *checkpoint.ThreadState, sql string) (Result, error) {
	if res, _ := o.Policy.Evaluate(ctx, governance.Request{Statement: sql, Kind: governance.KindRead, ThreadID: state.ThreadID}); res.Effect == governance.EffectDeny {
		o.logPolicyDeny(state.ThreadID, sql, res.Reason)
		return o.respond(ctx, state, msgGenericError+" "+res.Reason)
	}

	out, err := o.Registry.Get(tools.QueryToolName).Execute(ctx, toolArgs(sql))
	if err != nil {
		log.Printf("read failed for thread %s: %v", state.ThreadID, err)
		return o.respond(ctx, state, msgGenericError)
	}
	state.Append(checkpoint.RoleTool, out)
	o.logQuery(state.ThreadID, sql)

	answer, err := o.Interp.ComposeAnswer(ctx, state, out)
	if err != nil || strings.TrimSpace(answer) == "" {
		answer = "Here is what I found: " + out
	}
	return o.respond(ctx, state, answer)
}

// analyzeWrite asks for the structured write decision and routes on
// has_consequences. Malformed structured output falls back to the
// keyword heuristic; it never fails the turn.
func (o *Orchestrator) analyzeWrite(ctx context.Context, state *checkpoint.ThreadState, intent interpreter.Intent) (Result, error) {
	o.transition(state, checkpoint.StepAnalyzeWrite)

	analysis, err := o.Interp.AnalyzeWrite(ctx, state)
	if err != nil {
		log.Printf("write analysis unusable for thread %s, using keyword fallback: %v", state.ThreadID, err)
		analysis = interpreter.WriteAnalysis{
			IsWrite:         true,
			HasConsequences: consequenceHeuristic(state.LastUserText()),
			SQL:             intent.WriteHint,
		}
	}
	if analysis.SQL == "" {
		analysis.SQL = intent.WriteHint
	}

	state.PendingAction = analysis.SQL
	state.RequiresConfirmation = analysis.HasConsequences

	if state.PendingAction == "" {
		// Nothing concrete to gate or execute.
		state.RequiresConfirmation = false
		return o.respond(ctx, state, msgNoOperation)
	}

	if analysis.HasConsequences {
		return o.checkConsequences(ctx, state)
	}
	return o.executeAction(ctx, state)
}

// consequenceHeuristic is the deterministic fallback: a mutation verb
// together with a domain noun marks the proposal as consequential.
func consequenceHeuristic(userText string) bool {
	lower := strings.ToLower(userText)
	verbs := []string{"remove", "delete", "update"}
	nouns := []string{"vehicle", "driver", "trip"}

	verb := false
	for _, v := range verbs {
		if strings.Contains(lower, v) {
			verb = true
			break
		}
	}
	if !verb {
		return false
	}
	for _, n := range nouns {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// checkConsequences quantifies impact through read-only queries chosen
// by the interpreter. This step never mutates the operational store:
// every statement passes the read-path policy first.
func (o *Orchestrator) checkConsequences(ctx context.Context, state *checkpoint.ThreadState) (Result, error) {
	o.transition(state, checkpoint.StepCheckConsequences)

	queries, err := o.Interp.PlanConsequenceChecks(ctx, state, state.PendingAction)
	if err != nil {
		log.Printf("consequence planning failed for thread %s: %v", state.ThreadID, err)
	}

	var results []string
	for _, q := range queries {
		if res, _ := o.Policy.Evaluate(ctx, governance.Request{Statement: q, Kind: governance.KindRead, ThreadID: state.ThreadID}); res.Effect == governance.EffectDeny {
			log.Printf("consequence query rejected for thread %s: %s", state.ThreadID, res.Reason)
			continue
		}
		out, err := o.Registry.Get(tools.QueryToolName).Execute(ctx, toolArgs(q))
		if err != nil {
			log.Printf("consequence query failed for thread %s: %v", state.ThreadID, err)
			continue
		}
		results = append(results, out)
		state.Append(checkpoint.RoleTool, out)
		o.logQuery(state.ThreadID, q)
	}

	report, err := o.Interp.SummarizeConsequences(ctx, state.PendingAction, results)
	if err != nil || strings.TrimSpace(report) == "" {
		report = "This operation may affect scheduled trips and their bookings."
	}
	return o.getConfirmation(ctx, state, report)
}

// getConfirmation formats the consequence report into a prompt and
// suspends the thread. The run ends here; resumption is a fresh run for
// the same thread id.
func (o *Orchestrator) getConfirmation(ctx context.Context, state *checkpoint.ThreadState, report string) (Result, error) {
	prompt, err := o.Interp.ComposeConfirmation(ctx, report)
	if err != nil || strings.TrimSpace(prompt) == "" {
		prompt = fmt.Sprintf("I can do that. However, please be aware: %s Do you want to proceed? (yes/no)", report)
	}

	state.ConfirmationPrompt = prompt
	state.Append(checkpoint.RoleAssistant, prompt)
	state.AwaitingConfirmation = true
	o.transition(state, checkpoint.StepAwaitingConfirmation)
	o.logGate(state.ThreadID, "opened", state.PendingAction)

	if err := o.Checkpoints.Save(ctx, state); err != nil {
		return Result{}, fmt.Errorf("save checkpoint: %w", err)
	}
	return Result{ResponseText: prompt, NeedsConfirmation: true, ThreadID: state.ThreadID}, nil
}

// handleConfirmation resumes a suspended thread with the user's reply.
func (o *Orchestrator) handleConfirmation(ctx context.Context, state *checkpoint.ThreadState) (Result, error) {
	switch Classify(state.LastUserText()) {
	case VerdictAffirm:
		state.AwaitingConfirmation = false
		state.RequiresConfirmation = false
		o.transition(state, checkpoint.StepExecuteAction)
		// Persist the cleared gate before executing, so a redelivered
		// confirmation for this thread cannot run the write twice.
		if err := o.Checkpoints.Save(ctx, state); err != nil {
			return Result{}, fmt.Errorf("save checkpoint: %w", err)
		}
		o.logGate(state.ThreadID, "affirmed", state.PendingAction)
		return o.executeAction(ctx, state)

	case VerdictDeny:
		state.AwaitingConfirmation = false
		state.RequiresConfirmation = false
		o.logGate(state.ThreadID, "denied", state.PendingAction)
		state.PendingAction = ""
		state.ConfirmationPrompt = ""
		return o.respond(ctx, state, msgCancelled)

	default:
		prompt := state.ConfirmationPrompt
		if prompt == "" {
			prompt = msgReprompt
		} else {
			prompt = msgReprompt + "\n\n" + prompt
		}
		state.Append(checkpoint.RoleAssistant, prompt)
		o.transition(state, checkpoint.StepAwaitingConfirmation)
		if err := o.Checkpoints.Save(ctx, state); err != nil {
			return Result{}, fmt.Errorf("save checkpoint: %w", err)
		}
		return Result{ResponseText: prompt, NeedsConfirmation: true, ThreadID: state.ThreadID}, nil
	}
}

type writeOutcome struct {
	Status       string `json:"status"`
	AffectedRows int64  `json:"affected_rows"`
	Message      string `json:"message"`
	Error        string `json:"error"`
}

// executeAction runs exactly the pending action captured at analysis
// time, never a freshly re-derived statement. Failures clear the
// proposal and are never retried: a confirmed consequence report may no
// longer apply to a retried statement.
func (o *Orchestrator) executeAction(ctx context.Context, state *checkpoint.ThreadState) (Result, error) {
	o.transition(state, checkpoint.StepExecuteAction)

	pending := state.PendingAction
	if pending == "" {
		return o.respond(ctx, state, "There is no pending operation to execute.")
	}

	if res, _ := o.Policy.Evaluate(ctx, governance.Request{Statement: pending, Kind: governance.KindWrite, ThreadID: state.ThreadID}); res.Effect == governance.EffectDeny {
		o.logPolicyDeny(state.ThreadID, pending, res.Reason)
		state.PendingAction = ""
		return o.respond(ctx, state, msgGenericError+" "+res.Reason)
	}

	observability.SetStatus(observability.PhaseExecuting, state.ThreadID)

	out, err := o.Registry.Get(tools.WriteToolName).Execute(ctx, toolArgs(pending))
	state.PendingAction = ""
	state.ConfirmationPrompt = ""
	if err != nil {
		log.Printf("write failed for thread %s: %v", state.ThreadID, err)
		return o.respond(ctx, state, msgGenericError)
	}
	state.Append(checkpoint.RoleTool, out)

	var outcome writeOutcome
	if err := json.Unmarshal([]byte(out), &outcome); err == nil && outcome.Status == "error" {
		return o.respond(ctx, state, msgGenericError+" Reason: "+outcome.Error)
	}

	if o.Logger != nil {
		o.Logger.LogWrite(state.ThreadID, pending, outcome.AffectedRows)
	}

	answer, err := o.Interp.ComposeAnswer(ctx, state, out)
	if err != nil || strings.TrimSpace(answer) == "" {
		answer = fmt.Sprintf("Done. %d row(s) were updated.", outcome.AffectedRows)
	}
	return o.respond(ctx, state, answer)
}

// respond is the terminal step for a turn.
func (o *Orchestrator) respond(ctx context.Context, state *checkpoint.ThreadState, text string) (Result, error) {
	o.transition(state, checkpoint.StepRespondAndEnd)
	state.Append(checkpoint.RoleAssistant, text)
	if err := o.Checkpoints.Save(ctx, state); err != nil {
		return Result{}, fmt.Errorf("save checkpoint: %w", err)
	}
	return Result{ResponseText: text, NeedsConfirmation: false, ThreadID: state.ThreadID}, nil
}

func (o *Orchestrator) transition(state *checkpoint.ThreadState, to checkpoint.Step) {
	if o.Logger != nil && state.Step != to {
		o.Logger.LogStep(state.ThreadID, string(state.Step), string(to))
	}
	state.Step = to
}

func (o *Orchestrator) logGate(threadID, outcome, pending string) {
	if o.Logger != nil {
		o.Logger.LogGate(threadID, outcome, pending)
	}
}

func (o *Orchestrator) logQuery(threadID, statement string) {
	if o.Logger != nil {
		o.Logger.LogQuery(threadID, statement, -1)
	}
}

func (o *Orchestrator) logPolicyDeny(threadID, statement, reason string) {
	if o.Logger != nil {
		o.Logger.Log(observability.Event{
			Type:     observability.EventTypePolicy,
			ThreadID: threadID,
			Data:     map[string]string{"statement": statement, "effect": "deny", "reason": reason},
		})
	}
}

func toolArgs(sql string) string {
	raw, _ := json.Marshal(map[string]string{"sql_query": sql})
	return string(raw)
}
