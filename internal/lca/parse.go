package lca

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const fence = "```"

// ParseOutcome describes how Parse arrived at its result. It is for logging;
// callers always receive a usable AssessmentResult.
type ParseOutcome struct {
	Fallback bool
	Reason   string
}

// Parse turns raw model text into an AssessmentResult. Text wrapped in a
// markdown code fence is unwrapped first. When the text is not a JSON array
// of stages that each carry a stage name, an impact and a main cause, the
// fixed Fallback result is returned instead. Accepted stages are returned as
// given, including fields Parse does not know. Parse never panics.
func Parse(raw string) (result AssessmentResult, outcome ParseOutcome) {
	defer func() {
		if r := recover(); r != nil {
			result = Fallback()
			outcome = ParseOutcome{Fallback: true, Reason: fmt.Sprintf("panic while parsing: %v", r)}
		}
	}()

	text := StripCodeFence(raw)
	if text == "" {
		return Fallback(), ParseOutcome{Fallback: true, Reason: "empty response"}
	}
	if !strings.HasPrefix(text, "[") {
		if json.Valid([]byte(text)) {
			return Fallback(), ParseOutcome{Fallback: true, Reason: "response is not an array"}
		}
		return Fallback(), ParseOutcome{Fallback: true, Reason: "response is not valid JSON"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return Fallback(), ParseOutcome{Fallback: true, Reason: "response is not valid JSON: " + err.Error()}
	}

	stages := make(AssessmentResult, 0, len(elems))
	for i, elem := range elems {
		if err := checkStage(elem); err != nil {
			return Fallback(), ParseOutcome{Fallback: true, Reason: fmt.Sprintf("stage %d: %v", i, err)}
		}
		stages = append(stages, elem)
	}

	return stages, ParseOutcome{}
}

// checkStage reports whether elem is an object carrying a non-empty stage
// name, an impact and a non-empty main cause. The element itself is not
// rewritten; impact may be an object, text or a number.
func checkStage(elem json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return fmt.Errorf("not an object: %w", err)
	}
	switch {
	case !nonEmptyString(fields["stage"]):
		return errors.New("missing stage")
	case !present(fields["impact"]):
		return errors.New("missing impact")
	case !nonEmptyString(fields["main_cause"]):
		return errors.New("missing main_cause")
	}
	return nil
}

// Validate checks the fields every stage must carry.
func (s *LifecycleStage) Validate() error {
	switch {
	case s.Stage == "":
		return errors.New("missing stage")
	case s.Impact == nil:
		return errors.New("missing impact")
	case s.MainCause == "":
		return errors.New("missing main_cause")
	}
	return nil
}

func nonEmptyString(v json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return false
	}
	return s != ""
}

// present is false for a missing value, null, false, 0 and the empty string.
func present(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		return nonEmptyString(v)
	}
	f, _ := strconv.ParseFloat(string(v), 64)
	return f != 0
}

// StripCodeFence trims s and removes a surrounding markdown code fence. The
// opening fence may carry a language tag such as json.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, fence) {
		return s
	}

	body := s[len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if isFenceTag(body[:nl]) {
			body = body[nl+1:]
		}
	} else {
		body = strings.TrimLeftFunc(body, isTagRune)
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, fence)
	return strings.TrimSpace(body)
}

func isFenceTag(line string) bool {
	line = strings.TrimSpace(line)
	for _, r := range line {
		if !isTagRune(r) {
			return false
		}
	}
	return true
}

func isTagRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+'
}
