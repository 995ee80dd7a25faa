package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/movihq/movi/internal/checkpoint"
	"github.com/movihq/movi/internal/observability"
	"github.com/movihq/movi/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// IntentKind classifies what the user's turn asks for.
type IntentKind string

const (
	IntentRead   IntentKind = "read"
	IntentWrite  IntentKind = "write"
	IntentAnswer IntentKind = "answer"
)

// Intent is the result of classifying a new user turn. For reads the
// model supplies a directly-invokable SELECT; for writes only an
// untrusted hint that AnalyzeWrite later firms up.
type Intent struct {
	Kind      IntentKind
	ReadSQL   string
	WriteHint string
	Answer    string
}

// WriteAnalysis is the structured decision for a proposed write.
type WriteAnalysis struct {
	IsWrite         bool   `json:"is_write_operation"`
	HasConsequences bool   `json:"has_consequences"`
	SQL             string `json:"sql_query"`
	Reasoning       string `json:"reasoning"`
}

// Interpreter is the stateless natural-language boundary. Every method
// is a single request/response; conversation state lives in the thread.
type Interpreter interface {
	ClassifyIntent(ctx context.Context, state *checkpoint.ThreadState) (Intent, error)
	AnalyzeWrite(ctx context.Context, state *checkpoint.ThreadState) (WriteAnalysis, error)
	PlanConsequenceChecks(ctx context.Context, state *checkpoint.ThreadState, pendingSQL string) ([]string, error)
	SummarizeConsequences(ctx context.Context, pendingSQL string, results []string) (string, error)
	ComposeConfirmation(ctx context.Context, report string) (string, error)
	ComposeAnswer(ctx context.Context, state *checkpoint.ThreadState, results string) (string, error)
}

// LLMInterpreter implements Interpreter on top of a langchaingo model.
type LLMInterpreter struct {
	Model    llms.Model
	Registry *tools.Registry
	Prompts  *PromptManager
	Logger   *observability.Logger
}

func NewLLMInterpreter(model llms.Model, registry *tools.Registry, prompts *PromptManager) *LLMInterpreter {
	return &LLMInterpreter{
		Model:    model,
		Registry: registry,
		Prompts:  prompts,
	}
}

func (i *LLMInterpreter) logExchange(threadID, call string, prompt any, response string) {
	if i.Logger != nil {
		i.Logger.LogLLM(threadID, call, prompt, response)
	}
}

// historyLimit caps how many prior turns are replayed per call.
const historyLimit = 12

func (i *LLMInterpreter) ClassifyIntent(ctx context.Context, state *checkpoint.ThreadState) (Intent, error) {
	page := state.PageContext
	if page == "" {
		page = "home"
	}
	system := Render(i.Prompts.Get("entry"), map[string]string{
		"schema": SchemaInfo(),
		"page":   page,
	})

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
	}
	messages = append(messages, turnsToMessages(state)...)

	resp, err := i.Model.GenerateContent(ctx, messages, llms.WithTools(i.toolDefinitions()))
	if err != nil {
		return Intent{}, err
	}
	choice := resp.Choices[0]
	i.logExchange(state.ThreadID, "classify_intent", state.LastUserText(), choice.Content)

	for _, tc := range choice.ToolCalls {
		sql, err := sqlFromToolCall(tc)
		if err != nil {
			continue
		}
		switch tc.FunctionCall.Name {
		case tools.QueryToolName:
			return Intent{Kind: IntentRead, ReadSQL: sql}, nil
		case tools.WriteToolName:
			return Intent{Kind: IntentWrite, WriteHint: sql}, nil
		}
	}

	content := choice.Content
	if wantsConsequenceCheck(content) {
		return Intent{Kind: IntentWrite}, nil
	}
	return Intent{Kind: IntentAnswer, Answer: content}, nil
}

func (i *LLMInterpreter) AnalyzeWrite(ctx context.Context, state *checkpoint.ThreadState) (WriteAnalysis, error) {
	messages := turnsToMessages(state)
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(i.Prompts.Get("analyze"))},
	})

	resp, err := i.Model.GenerateContent(ctx, messages)
	if err != nil {
		return WriteAnalysis{}, err
	}
	i.logExchange(state.ThreadID, "analyze_write", state.LastUserText(), resp.Choices[0].Content)

	var analysis WriteAnalysis
	if err := ExtractJSONObject(resp.Choices[0].Content, &analysis); err != nil {
		return WriteAnalysis{}, err
	}
	return analysis, nil
}

func (i *LLMInterpreter) PlanConsequenceChecks(ctx context.Context, state *checkpoint.ThreadState, pendingSQL string) ([]string, error) {
	pending := pendingSQL
	if pending == "" {
		pending = "Not yet determined"
	}
	prompt := Render(i.Prompts.Get("consequences"), map[string]string{
		"pending": pending,
		"schema":  SchemaInfo(),
	})

	messages := turnsToMessages(state)
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})

	// Only the read tool is offered here; the write path is not
	// reachable from consequence checking.
	defs := []llms.Tool{i.toolDefinition(tools.QueryToolName)}
	resp, err := i.Model.GenerateContent(ctx, messages, llms.WithTools(defs))
	if err != nil {
		return nil, err
	}

	var queries []string
	for _, tc := range resp.Choices[0].ToolCalls {
		if tc.FunctionCall.Name != tools.QueryToolName {
			continue
		}
		sql, err := sqlFromToolCall(tc)
		if err != nil {
			continue
		}
		queries = append(queries, sql)
	}
	return queries, nil
}

func (i *LLMInterpreter) SummarizeConsequences(ctx context.Context, pendingSQL string, results []string) (string, error) {
	prompt := Render(i.Prompts.Get("summarize"), map[string]string{
		"pending": pendingSQL,
		"results": strings.Join(results, "\n"),
	})
	return i.generateText(ctx, prompt)
}

func (i *LLMInterpreter) ComposeConfirmation(ctx context.Context, report string) (string, error) {
	prompt := Render(i.Prompts.Get("confirm"), map[string]string{
		"report": report,
	})
	return i.generateText(ctx, prompt)
}

func (i *LLMInterpreter) ComposeAnswer(ctx context.Context, state *checkpoint.ThreadState, results string) (string, error) {
	prompt := Render(i.Prompts.Get("respond"), map[string]string{
		"results": results,
	})

	messages := turnsToMessages(state)
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})

	resp, err := i.Model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	i.logExchange(state.ThreadID, "compose_answer", nil, resp.Choices[0].Content)
	return resp.Choices[0].Content, nil
}

func (i *LLMInterpreter) generateText(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	resp, err := i.Model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func (i *LLMInterpreter) toolDefinitions() []llms.Tool {
	var defs []llms.Tool
	for _, t := range i.Registry.Tools {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

func (i *LLMInterpreter) toolDefinition(name string) llms.Tool {
	t := i.Registry.Get(name)
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}

func turnsToMessages(state *checkpoint.ThreadState) []llms.MessageContent {
	turns := state.Turns
	if len(turns) > historyLimit {
		turns = turns[len(turns)-historyLimit:]
	}

	var messages []llms.MessageContent
	for _, turn := range turns {
		var role llms.ChatMessageType
		switch turn.Role {
		case checkpoint.RoleAssistant:
			role = llms.ChatMessageTypeAI
		case checkpoint.RoleTool:
			role = llms.ChatMessageTypeGeneric
		default:
			role = llms.ChatMessageTypeHuman
		}
		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(turn.Content)},
		})
	}
	return messages
}

func sqlFromToolCall(tc llms.ToolCall) (string, error) {
	var args struct {
		SQL string `json:"sql_query"`
	}
	if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
		return "", fmt.Errorf("tool call arguments: %w", err)
	}
	if strings.TrimSpace(args.SQL) == "" {
		return "", fmt.Errorf("tool call carries no sql_query")
	}
	return args.SQL, nil
}

// wantsConsequenceCheck is the phrase-matching fallback for routing a
// text-only entry response toward write analysis. Direct tool calls
// always take precedence over it.
func wantsConsequenceCheck(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "check if there are any consequences") ||
		strings.Contains(lower, "let me check")
}
