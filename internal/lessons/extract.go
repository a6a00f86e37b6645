package lessons

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// RequiredKeys are the top-level members every lesson document must have.
var RequiredKeys = []string{"title", "category", "concept", "exercise", "practicalApplication", "reflection"}

var (
	// ErrNoJSON means the response contained no brace-delimited block.
	ErrNoJSON = errors.New("no JSON structure found in response")

	// ErrMissingKeys matches any *MissingKeysError.
	ErrMissingKeys = errors.New("missing required keys in lesson content")
)

// ParseError reports a brace-delimited fragment that is not valid JSON.
type ParseError struct {
	Fragment string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingKeysError reports a parsed object lacking required keys.
type MissingKeysError struct {
	// Missing is sorted.
	Missing []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingKeys, strings.Join(e.Missing, ", "))
}

func (e *MissingKeysError) Is(target error) bool { return target == ErrMissingKeys }

// Document is an extracted lesson object before typed decoding.
type Document struct {
	// Raw is the JSON fragment exactly as it appeared in the response.
	Raw json.RawMessage

	// Fields is the parsed object.
	Fields map[string]any
}

// Strategy selects how the JSON fragment is located in a response.
type Strategy string

const (
	// StrategyBraces takes everything from the first '{' to the last '}'.
	StrategyBraces Strategy = "braces"

	// StrategyScan tries each balanced {...} block in order, tracking
	// strings and escapes, and keeps the first complete lesson object.
	StrategyScan Strategy = "scan"
)

// ParseStrategy accepts "braces" or "scan"; empty means braces.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyBraces:
		return StrategyBraces, nil
	case StrategyScan:
		return StrategyScan, nil
	}
	return "", fmt.Errorf("unknown extraction strategy %q (want braces or scan)", s)
}

// Extract locates, parses and key-checks the lesson object in a raw model
// response using StrategyBraces.
func Extract(text string) (*Document, error) {
	return ExtractWith(text, StrategyBraces)
}

// ExtractWith is Extract with an explicit strategy. It is a pure function
// of its inputs.
func ExtractWith(text string, s Strategy) (*Document, error) {
	text = strings.TrimSpace(text)
	if s == StrategyScan {
		return extractScan(text)
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}
	return parseFragment(text[start : end+1])
}

func extractScan(text string) (*Document, error) {
	var firstErr error
	for start := strings.IndexByte(text, '{'); start != -1; {
		end, ok := balancedEnd(text, start)
		if ok {
			doc, err := parseFragment(text[start : end+1])
			if err == nil {
				return doc, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	if firstErr == nil {
		return nil, ErrNoJSON
	}
	return nil, firstErr
}

// balancedEnd returns the index of the '}' closing the '{' at start,
// ignoring braces inside JSON strings.
func balancedEnd(text string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func parseFragment(fragment string) (*Document, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(fragment), &fields); err != nil {
		return nil, &ParseError{Fragment: fragment, Err: err}
	}
	if missing := missingKeys(fields); len(missing) > 0 {
		return nil, &MissingKeysError{Missing: missing}
	}
	return &Document{Raw: json.RawMessage(fragment), Fields: fields}, nil
}

func missingKeys(fields map[string]any) []string {
	var missing []string
	for _, k := range RequiredKeys {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}
