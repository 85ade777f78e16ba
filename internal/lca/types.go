// Package lca holds the lifecycle-assessment domain: request validation,
// prompt construction, and parsing of model output into stages.
package lca

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CanonicalStages are the lifecycle phases every assessment is asked to cover.
var CanonicalStages = []string{
	"Raw Material Extraction/Mining",
	"Ore Processing/Beneficiation",
	"Smelting/Refining",
	"Manufacturing/Fabrication",
	"Transportation/Distribution",
	"Use Phase",
	"End-of-Life/Disposal",
}

// AssessmentRequest is a validated assessment input. Material and Process
// are trimmed; every other caller field is carried verbatim.
type AssessmentRequest struct {
	Material         string
	Process          string
	Location         any
	ProductionVolume any
	EnergySource     any
	// Emissions is normally an object of emission figures but is passed
	// through untouched whatever its shape.
	Emissions any
	// Extra holds caller fields with no dedicated slot.
	Extra map[string]any
}

// Impact carries the four impact dimensions of a stage.
type Impact struct {
	CarbonEmission    Measure `json:"carbon_emission"`
	WaterUsage        Measure `json:"water_usage"`
	EnergyConsumption Measure `json:"energy_consumption"`
	Waste             Measure `json:"waste"`
}

// LifecycleStage is one phase of an assessment.
type LifecycleStage struct {
	Stage                    string     `json:"stage"`
	Impact                   *Impact    `json:"impact"`
	MainCause                string     `json:"main_cause"`
	AlternativeMethods       StringList `json:"alternative_methods,omitempty"`
	ReductionSuggestions     StringList `json:"reduction_suggestions,omitempty"`
	CircularityOpportunities StringList `json:"circularity_opportunities,omitempty"`
}

// AssessmentResult is the ordered list of stages returned to the caller.
// Each element is a stage object exactly as it was produced; fields beyond
// those of LifecycleStage are kept.
type AssessmentResult []json.RawMessage

// NewResult encodes typed stages into an AssessmentResult.
func NewResult(stages ...LifecycleStage) (AssessmentResult, error) {
	out := make(AssessmentResult, 0, len(stages))
	for i, s := range stages {
		b, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// StageNames returns the stage name of every element, or "" where an element
// carries none.
func (r AssessmentResult) StageNames() []string {
	names := make([]string, len(r))
	for i, elem := range r {
		var head struct {
			Stage string `json:"stage"`
		}
		if json.Unmarshal(elem, &head) == nil {
			names[i] = head.Stage
		}
	}
	return names
}

// Measure is an impact figure. Models answer with plain numbers as well as
// text such as ranges or estimation methods; both are kept as given.
type Measure struct {
	Text   string
	Number json.Number
}

// Text returns a textual Measure.
func Text(s string) Measure {
	return Measure{Text: s}
}

// Number returns a numeric Measure.
func Number(n string) Measure {
	return Measure{Number: json.Number(n)}
}

// IsNumber reports whether the measure was given as a JSON number.
func (m Measure) IsNumber() bool {
	return m.Number != ""
}

func (m Measure) String() string {
	if m.IsNumber() {
		return m.Number.String()
	}
	return m.Text
}

// MarshalJSON writes numbers as numbers and everything else as a string.
func (m Measure) MarshalJSON() ([]byte, error) {
	if m.IsNumber() {
		return []byte(m.Number), nil
	}
	return json.Marshal(m.Text)
}

// UnmarshalJSON accepts a string, a number, or null. Objects, arrays and
// booleans are kept as their compact JSON text.
func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*m = Measure{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &m.Text)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if n, ok := v.(json.Number); ok {
		m.Number = n
		return nil
	}

	m.Text = compactJSON(data)
	return nil
}

// StringList is a list of suggestions. Decoding is lenient: a bare string
// becomes a single entry and non-string entries keep their JSON text.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case data[0] != '[':
		*l = StringList{compactJSON(data)}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(StringList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, compactJSON(item))
	}
	*l = out
	return nil
}

func compactJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return strings.TrimSpace(string(data))
	}
	return buf.String()
}
