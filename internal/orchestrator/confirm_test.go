package orchestrator

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Verdict
	}{
		{"yes", VerdictAffirm},
		{"Yes", VerdictAffirm},
		{"y", VerdictAffirm},
		{"ok, proceed", VerdictAffirm},
		{"sure!", VerdictAffirm},
		{"confirm", VerdictAffirm},
		{"no", VerdictDeny},
		{"n", VerdictDeny},
		{"please cancel", VerdictDeny},
		{"abort", VerdictDeny},
		{"stop", VerdictDeny},
		{"maybe later", VerdictUnclear}, // "y" inside "maybe" must not count
		{"what will happen?", VerdictUnclear},
		{"", VerdictUnclear},
		{"show me the trips first", VerdictUnclear},
	}

	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassify_AffirmWinsOverDeny(t *testing.T) {
	// Mixed signals resolve toward affirm: the affirm set is checked first.
	if got := Classify("yes, do not wait"); got != VerdictAffirm {
		t.Errorf("Expected VerdictAffirm for mixed reply, got %s", got)
	}
}
