package selector

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrInputClosed is returned when the line source has no more input.
var ErrInputClosed = errors.New("input closed")

// LineSource yields one line of human input at a time, without the line ending.
type LineSource interface {
	ReadLine() (string, error)
}

// StdinSource reads lines from a terminal or pipe.
type StdinSource struct {
	r *bufio.Reader
}

func NewStdinSource(r io.Reader) *StdinSource {
	return &StdinSource{r: bufio.NewReader(r)}
}

func (s *StdinSource) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return strings.TrimRight(line, "\r\n"), nil
			}
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ScriptedSource replays fixed lines, then reports ErrInputClosed.
type ScriptedSource struct {
	lines []string
	pos   int
}

func NewScriptedSource(lines ...string) *ScriptedSource {
	return &ScriptedSource{lines: lines}
}

func (s *ScriptedSource) ReadLine() (string, error) {
	if s.pos >= len(s.lines) {
		return "", ErrInputClosed
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

// Remaining reports how many scripted lines have not been read.
func (s *ScriptedSource) Remaining() int {
	return len(s.lines) - s.pos
}
