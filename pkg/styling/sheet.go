package styling

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/recera/rulesheet/pkg/vdom"
)

// MarkerAttr is set on every <style> element rendered for a Sheet
const MarkerAttr = "fcss"

// Sheet is a live, append-only rule list backing one rendering surface.
// Rules are inserted at a position and the insertion index only grows.
type Sheet struct {
	mu     sync.RWMutex
	name   string
	rules  []string
	index  int
	closed bool
}

// NewSheet creates an empty sheet
func NewSheet(name string) *Sheet {
	return &Sheet{name: name}
}

// Name returns the sheet name
func (s *Sheet) Name() string {
	return s.name
}

// InsertRule inserts a single rule at position index and advances the
// insertion index. It returns the position the rule was inserted at.
func (s *Sheet) InsertRule(rule string, index int) (int, error) {
	if err := validateRule(rule); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("insert into %q: %w", s.name, ErrSheetClosed)
	}
	if index < 0 || index > len(s.rules) {
		return 0, fmt.Errorf("insert at %d into %q (len %d): %w", index, s.name, len(s.rules), ErrIndexSize)
	}

	s.rules = append(s.rules, "")
	copy(s.rules[index+1:], s.rules[index:])
	s.rules[index] = rule
	s.index++

	return index, nil
}

// insertNext inserts at the current insertion index under one lock
func (s *Sheet) insertNext(rule string) (int, error) {
	if err := validateRule(rule); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("insert into %q: %w", s.name, ErrSheetClosed)
	}

	at := s.index
	s.rules = append(s.rules, rule)
	s.index++
	return at, nil
}

// Index returns the next insertion index
func (s *Sheet) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Len returns the number of rules in the sheet
func (s *Sheet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Rules returns a copy of the rule list
func (s *Sheet) Rules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.rules))
	copy(out, s.rules)
	return out
}

// CSS returns all rules joined by newlines
func (s *Sheet) CSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for _, r := range s.rules {
		b.WriteString(r)
		b.WriteString("\n")
	}
	return b.String()
}

// Node returns the sheet as a <style> element
func (s *Sheet) Node() *vdom.VNode {
	return vdom.NewElement("style", vdom.Props{
		MarkerAttr:   "rule",
		"data-sheet": s.name,
	}, vdom.NewText(s.CSS()))
}

// Close disposes the sheet. Later inserts fail with ErrSheetClosed;
// existing rules stay readable.
func (s *Sheet) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called
func (s *Sheet) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// validateRule accepts exactly one rule with balanced braces
func validateRule(rule string) error {
	text := strings.TrimSpace(rule)
	if text == "" {
		return fmt.Errorf("%w: empty rule text", ErrMalformedRule)
	}
	if !strings.HasSuffix(text, "}") || !balanced(text) {
		return fmt.Errorf("%w: unbalanced block in %q", ErrMalformedRule, text)
	}
	if strings.TrimSpace(prelude(text)) == "" {
		return fmt.Errorf("%w: missing selector in %q", ErrMalformedRule, text)
	}

	sheet, err := parser.Parse(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	if len(sheet.Rules) != 1 {
		return fmt.Errorf("%w: expected one rule, got %d", ErrMalformedRule, len(sheet.Rules))
	}
	if r := sheet.Rules[0]; r.Kind == css.QualifiedRule && strings.TrimSpace(r.Prelude) == "" {
		return fmt.Errorf("%w: missing selector in %q", ErrMalformedRule, text)
	}
	return nil
}

func balanced(text string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && quote == 0
}

// prelude returns the text before the first unquoted '{'
func prelude(text string) string {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			return text[:i]
		}
	}
	return text
}
