// Package selector implements the line-based choice protocol used whenever a
// person picks among generated candidates or overrides them with free text.
package selector

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Policy decides how a yes/no answer is read.
type Policy int

const (
	// DeclineOnNo proceeds on anything except "n" or "N".
	DeclineOnNo Policy = iota
	// RequireYes proceeds only when the answer starts with "y" or "Y".
	RequireYes
)

// Selector asks questions on out and reads answers from in.
type Selector struct {
	in  LineSource
	out io.Writer

	header lipgloss.Style
	index  lipgloss.Style
	notice lipgloss.Style
}

// New creates a Selector. Styles degrade to plain text when out is not a terminal.
func New(in LineSource, out io.Writer) *Selector {
	r := lipgloss.NewRenderer(out)
	return &Selector{
		in:     in,
		out:    out,
		header: r.NewStyle().Bold(true),
		index:  r.NewStyle().Faint(true),
		notice: r.NewStyle().Foreground(lipgloss.Color("#E0A030")),
	}
}

// Normalize strips leading non-letter characters from each candidate. A
// candidate without letters becomes "".
func Normalize(candidates []string) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		if idx := strings.IndexFunc(c, unicode.IsLetter); idx >= 0 {
			out[i] = c[idx:]
		}
	}
	return out
}

// Lines splits generated text into trimmed, non-blank lines.
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// SelectOne shows the normalized candidates with zero-based indices and
// returns the chosen one. Non-numeric input is returned verbatim after
// trimming. A blank line or an index outside the list asks again, so the
// result is never empty unless a candidate itself normalizes to "".
func (s *Selector) SelectOne(candidates []string) (string, error) {
	items := Normalize(candidates)
	s.render(items)
	return s.choose(items)
}

// SelectMany runs the single-choice loop k times over the same displayed
// list. The same entry may be picked more than once.
func (s *Selector) SelectMany(candidates []string, k int) ([]string, error) {
	items := Normalize(candidates)
	s.render(items)

	picks := make([]string, 0, k)
	for len(picks) < k {
		fmt.Fprintf(s.out, "Selection %d of %d\n", len(picks)+1, k)
		choice, err := s.choose(items)
		if err != nil {
			return picks, err
		}
		picks = append(picks, choice)
	}
	return picks, nil
}

func (s *Selector) render(items []string) {
	for i, item := range items {
		fmt.Fprintf(s.out, "%s %s\n", s.index.Render(fmt.Sprintf("%2d.", i)), item)
	}
}

func (s *Selector) choose(items []string) (string, error) {
	for {
		fmt.Fprintf(s.out, "Choose an option (0 - %d) or write your own input: ", len(items)-1)
		line, err := s.in.ReadLine()
		if err != nil {
			return "", err
		}

		answer := strings.TrimSpace(line)
		if answer == "" {
			continue
		}

		n, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprintf(s.out, "Result: %s\n", answer)
			return answer, nil
		}
		if n < 0 || n >= len(items) {
			fmt.Fprintln(s.out, s.notice.Render(fmt.Sprintf("%d is not a listed option", n)))
			continue
		}
		fmt.Fprintf(s.out, "Result: %s\n", items[n])
		return items[n], nil
	}
}

// Confirm asks a yes/no question and reports whether to proceed.
func (s *Selector) Confirm(question string, policy Policy) (bool, error) {
	fmt.Fprintf(s.out, "%s (y/n): ", question)
	line, err := s.in.ReadLine()
	if err != nil {
		return false, err
	}

	answer := strings.TrimSpace(line)
	switch policy {
	case RequireYes:
		return strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "Y"), nil
	default:
		return answer != "n" && answer != "N", nil
	}
}

// Ask reads one line of free text.
func (s *Selector) Ask(question string) (string, error) {
	fmt.Fprintf(s.out, "%s: ", question)
	line, err := s.in.ReadLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Show prints generated text under a bold title.
func (s *Selector) Show(title, body string) {
	fmt.Fprintln(s.out, s.header.Render(title))
	fmt.Fprintln(s.out, body)
	fmt.Fprintln(s.out)
}

// Note prints one progress line.
func (s *Selector) Note(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}
