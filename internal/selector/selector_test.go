package selector

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"- A", "1. B", "C", "42", "  **Bold** text"})
	assert.Equal(t, []string{"A", "B", "C", "", "Bold** text"}, got)
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, Lines("  one \n\n\t\ntwo\n"))
	assert.Empty(t, Lines("\n \n"))
}

func TestSelectOne(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"index", []string{"1"}, "B"},
		{"zero index", []string{"0"}, "A"},
		{"free text", []string{"  my own words  "}, "my own words"},
		{"blank then index", []string{"", "2"}, "C"},
		{"out of range then index", []string{"7", "-1", "1"}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			src := NewScriptedSource(tt.input...)
			s := New(src, &out)

			got, err := s.SelectOne([]string{"- A", "1. B", "C"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, src.Remaining())
		})
	}
}

func TestSelectOneDisplay(t *testing.T) {
	var out bytes.Buffer
	s := New(NewScriptedSource("9", "0"), &out)

	_, err := s.SelectOne([]string{"- A", "1. B"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), " 0. A\n")
	assert.Contains(t, out.String(), " 1. B\n")
	assert.Contains(t, out.String(), "9 is not a listed option")
	assert.Equal(t, 1, strings.Count(out.String(), " 0. A"), "list is rendered once")
}

func TestSelectMany(t *testing.T) {
	var out bytes.Buffer
	s := New(NewScriptedSource("0", "0", "write-in"), &out)

	got, err := s.SelectMany([]string{"x", "y"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x", "write-in"}, got)
}

func TestSelectInputClosed(t *testing.T) {
	s := New(NewScriptedSource("0"), &bytes.Buffer{})

	picks, err := s.SelectMany([]string{"x"}, 2)
	require.ErrorIs(t, err, ErrInputClosed)
	assert.Equal(t, []string{"x"}, picks)

	_, err = s.SelectOne([]string{"x"})
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer string
		policy Policy
		want   bool
	}{
		{"n", DeclineOnNo, false},
		{"N", DeclineOnNo, false},
		{"no", DeclineOnNo, true},
		{"", DeclineOnNo, true},
		{"y", RequireYes, true},
		{"Yes", RequireYes, true},
		{"", RequireYes, false},
		{"sure", RequireYes, false},
	}

	for _, tt := range tests {
		s := New(NewScriptedSource(tt.answer), &bytes.Buffer{})
		got, err := s.Confirm("Proceed?", tt.policy)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "answer %q policy %d", tt.answer, tt.policy)
	}
}

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	s := New(NewScriptedSource(" https://linkedin.com/post/1 "), &out)

	got, err := s.Ask("Enter LinkedIn post url")
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/post/1", got)
	assert.Contains(t, out.String(), "Enter LinkedIn post url: ")
}

func TestStdinSource(t *testing.T) {
	src := NewStdinSource(strings.NewReader("first\r\nsecond"))

	line, err := src.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = src.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = src.ReadLine()
	assert.ErrorIs(t, err, ErrInputClosed)
}
