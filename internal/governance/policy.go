package governance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// StatementKind says which execution path a statement is headed for.
type StatementKind string

const (
	KindRead  StatementKind = "read"
	KindWrite StatementKind = "write"
)

// Request contains the context of a statement to be evaluated.
type Request struct {
	Statement string
	Kind      StatementKind
	ThreadID  string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine vets interpreter-chosen SQL before it reaches the
// operational store.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine denies statements matching any configured pattern
// and rejects non-SELECT statements on the read path, so consequence
// checks can never mutate anything.
type DefaultPolicyEngine struct {
	DeniedRegex []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedRegex: make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyStatements(pattern string) error {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	stmt := strings.TrimSpace(req.Statement)
	if stmt == "" {
		return Result{
			Effect: EffectDeny,
			Reason: "Empty statement",
		}, nil
	}

	if req.Kind == KindRead && !strings.HasPrefix(strings.ToUpper(stmt), "SELECT") {
		return Result{
			Effect: EffectDeny,
			Reason: "Only SELECT statements are allowed on the read path",
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(stmt) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Statement matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
