package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Statement: "SELECT * FROM Vehicles", Kind: KindRead}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	if err := engine.DenyStatements(`\bdrop\s+table\b`); err != nil {
		t.Fatal(err)
	}
	req2 := Request{Statement: "DROP TABLE Vehicles", Kind: KindWrite}
	res2, err := engine.Evaluate(ctx, req2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
}

func TestDefaultPolicyEngine_ReadPathRejectsMutations(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Mutations must never slip through on the read path, even without
	// any configured deny patterns.
	req := Request{Statement: "DELETE FROM Vehicles", Kind: KindRead}
	res, err := engine.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for mutation on read path, got %s", res.Effect)
	}

	// The same statement is fine on the write path.
	req.Kind = KindWrite
	res, err = engine.Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow on write path, got %s", res.Effect)
	}
}

func TestDefaultPolicyEngine_EmptyStatement(t *testing.T) {
	engine := NewDefaultPolicyEngine()

	res, err := engine.Evaluate(context.Background(), Request{Statement: "   ", Kind: KindWrite})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for empty statement, got %s", res.Effect)
	}
}

func TestDefaultPolicyEngine_CaseInsensitivePatterns(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	if err := engine.DenyStatements(`\bpragma\b`); err != nil {
		t.Fatal(err)
	}

	for _, stmt := range []string{"PRAGMA table_info(Vehicles)", "pragma journal_mode"} {
		res, err := engine.Evaluate(context.Background(), Request{Statement: stmt, Kind: KindWrite})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Effect != EffectDeny {
			t.Errorf("Expected EffectDeny for %q, got %s", stmt, res.Effect)
		}
	}
}
