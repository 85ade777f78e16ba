package lca

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sevenStages() []LifecycleStage {
	out := make([]LifecycleStage, 0, len(CanonicalStages))
	for i, name := range CanonicalStages {
		out = append(out, LifecycleStage{
			Stage: name,
			Impact: &Impact{
				CarbonEmission:    Number(strings.Repeat("1", i+1)),
				WaterUsage:        Text("500-2000 liters per ton (estimated)"),
				EnergyConsumption: Number("12.5"),
				Waste:             Text("Hypothetical: estimated from ore grade"),
			},
			MainCause:                "diesel haulage in stage " + name,
			AlternativeMethods:       StringList{"electric haul trucks", "Hypothetical: in-situ recovery"},
			ReductionSuggestions:     StringList{"optimize haul routes"},
			CircularityOpportunities: StringList{"reuse waste rock", "recycle process water"},
		})
	}
	return out
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func mustResult(t *testing.T, stages ...LifecycleStage) AssessmentResult {
	t.Helper()
	r, err := NewResult(stages...)
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}
	return r
}

// jsonValue decodes the JSON encoding of v into generic values so results
// can be compared without regard to whitespace or key order.
func jsonValue(t *testing.T, v any) any {
	t.Helper()
	var out any
	if err := json.Unmarshal([]byte(mustMarshal(t, v)), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestParse_RoundTrip(t *testing.T) {
	want := mustResult(t, sevenStages()...)
	raw := mustMarshal(t, want)

	got, outcome := Parse(raw)
	if outcome.Fallback {
		t.Fatalf("unexpected fallback: %s", outcome.Reason)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ReturnsStagesUnchanged(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown stage field", `[{"stage":"Use Phase","impact":{"waste":"none"},"main_cause":"m","confidence":"high"}]`},
		{"unknown impact field", `[{"stage":"Use Phase","impact":{"carbon_emission":"1 t","land_use":"5 ha"},"main_cause":"m"}]`},
		{"null measure", `[{"stage":"Use Phase","impact":{"carbon_emission":null,"water_usage":"x"},"main_cause":"m"}]`},
		{"partial impact", `[{"stage":"Use Phase","impact":{"water_usage":"x"},"main_cause":"m"}]`},
		{"impact is text", `[{"stage":"Mining","impact":"high across all categories","main_cause":"diesel"}]`},
		{"impact is number", `[{"stage":"Mining","impact":3.5,"main_cause":"diesel"}]`},
		{"empty impact object", `[{"stage":"Mining","impact":{},"main_cause":"diesel"}]`},
		{"blank but non-empty stage", `[{"stage":"  ","impact":{},"main_cause":"diesel"}]`},
		{"lenient lists", `[{"stage":"A","impact":{"carbon_emission":12.5},"main_cause":"x","alternative_methods":"one","reduction_suggestions":[1,"two"]}]`},
		{"large number", `[{"stage":"A","impact":{"carbon_emission":12345678901234567890},"main_cause":"x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := Parse(tt.raw)
			if outcome.Fallback {
				t.Fatalf("unexpected fallback: %s", outcome.Reason)
			}
			if out := mustMarshal(t, got); out != tt.raw {
				t.Errorf("Parse() re-encoded as\n%s\nwant\n%s", out, tt.raw)
			}
		})
	}
}

func TestParse_FencedMatchesUnfenced(t *testing.T) {
	body := mustMarshal(t, mustResult(t, sevenStages()...))
	plain, _ := Parse(body)

	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n" + body + "\n```"},
		{"bare fence", "```\n" + body + "\n```"},
		{"upper-case tag", "```JSON\n" + body + "\n```"},
		{"surrounding whitespace", "\n\n  ```json\n" + body + "\n```  \n"},
		{"single line fence", "```json" + body + "```"},
		{"no closing newline", "```json\n" + body + "```"},
		{"pretty printed", "```json\n" + strings.ReplaceAll(body, ",", ",\n  ") + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := Parse(tt.raw)
			if outcome.Fallback {
				t.Fatalf("unexpected fallback: %s", outcome.Reason)
			}
			if diff := cmp.Diff(jsonValue(t, plain), jsonValue(t, got)); diff != "" {
				t.Errorf("fenced parse differs (-plain +fenced):\n%s", diff)
			}
		})
	}
}

func TestParse_Fallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json"},
		{"empty", ""},
		{"whitespace", "   \n\t "},
		{"empty fence", "```json\n```"},
		{"object instead of array", `{"stage":"Mining","impact":{},"main_cause":"diesel"}`},
		{"string", `"hello"`},
		{"number", `42`},
		{"missing stage", `[{"impact":{},"main_cause":"diesel"}]`},
		{"empty stage", `[{"stage":"","impact":{},"main_cause":"diesel"}]`},
		{"missing impact", `[{"stage":"Mining","main_cause":"diesel"}]`},
		{"null impact", `[{"stage":"Mining","impact":null,"main_cause":"diesel"}]`},
		{"missing main cause", `[{"stage":"Mining","impact":{}}]`},
		{"empty main cause", `[{"stage":"Mining","impact":{},"main_cause":""}]`},
		{"numeric stage", `[{"stage":5,"impact":{},"main_cause":"diesel"}]`},
		{"empty impact text", `[{"stage":"Mining","impact":"","main_cause":"diesel"}]`},
		{"false impact", `[{"stage":"Mining","impact":false,"main_cause":"diesel"}]`},
		{"zero impact", `[{"stage":"Mining","impact":0,"main_cause":"diesel"}]`},
		{"null stage", `[{"stage":null,"impact":{},"main_cause":"diesel"}]`},
		{"numeric main cause", `[{"stage":"Mining","impact":{},"main_cause":7}]`},
		{"null element", `[null]`},
		{"scalar element", `[1]`},
		{"one bad among good", `[{"stage":"A","impact":{},"main_cause":"x"},{"stage":"B","impact":{}}]`},
		{"trailing prose", `[{"stage":"A","impact":{},"main_cause":"x"}] Let me know if you need more.`},
		{"leading prose", `Here is the assessment: [{"stage":"A","impact":{},"main_cause":"x"}]`},
		{"truncated", `[{"stage":"A","impact":{"carbon_emission":"2 t`},
	}

	want := Fallback()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := Parse(tt.raw)
			if !outcome.Fallback {
				t.Fatal("expected fallback")
			}
			if outcome.Reason == "" {
				t.Error("fallback without reason")
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("fallback mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_EmptyArray(t *testing.T) {
	got, outcome := Parse("[]")
	if outcome.Fallback {
		t.Fatalf("unexpected fallback: %s", outcome.Reason)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestFallback_Shape(t *testing.T) {
	fb := Fallback()
	if len(fb) != 2 {
		t.Fatalf("len = %d, want 2", len(fb))
	}
	for i, stage := range fallbackStages() {
		if err := stage.Validate(); err != nil {
			t.Errorf("stage %d invalid: %v", i, err)
		}
	}
	for i, elem := range fb {
		if err := checkStage(elem); err != nil {
			t.Errorf("encoded stage %d rejected: %v", i, err)
		}
	}

	want := []string{"Raw Material Extraction/Mining", "Processing/Beneficiation"}
	if diff := cmp.Diff(want, fb.StageNames()); diff != "" {
		t.Errorf("StageNames() mismatch (-want +got):\n%s", diff)
	}

	// Callers get independent copies.
	fb[0][2] = 'X'
	if Fallback()[0][2] == 'X' {
		t.Error("Fallback() shares state between calls")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"[1]", "[1]"},
		{"  [1]  ", "[1]"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"```python\n[1]\n```", "[1]"},
		{"```[1]```", "[1]"},
		{"```\n[1,\n2]\n```", "[1,\n2]"},
		{"no fence ```", "no fence ```"},
	}

	for _, tt := range tests {
		if got := StripCodeFence(tt.in); got != tt.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
