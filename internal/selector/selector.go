package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/snonux/forvodl/internal/forvo"
)

// ErrNoCandidates is returned when there is nothing to choose from
var ErrNoCandidates = errors.New("no candidates to choose from")

// Selector obtains an index into a rendered candidate list
type Selector interface {
	Select(lines []string) (int, error)
}

// InvalidSelectionError is returned when the input is not an integer
type InvalidSelectionError struct {
	Input string
	Err   error
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection %q: not a number", e.Input)
}

func (e *InvalidSelectionError) Unwrap() error {
	return e.Err
}

// IndexOutOfRangeError is returned when the index is outside [0, Len)
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("selection %d out of range, expected 0 to %d", e.Index, e.Len-1)
}

// Render formats one line per candidate, numbered from 0
func Render(results []forvo.SearchResult) []string {
	lines := make([]string, len(results))
	for i, r := range results {
		var username, addtime string
		if r.Pronunciation != nil {
			username = r.Pronunciation.Username
			addtime = r.Pronunciation.AddTime
		}
		lines[i] = fmt.Sprintf("\t%d) %s (%s, %s)", i, r.Original, username, addtime)
	}
	return lines
}

// Disambiguate picks one result. A single result is taken without asking
// the selector.
func Disambiguate(results []forvo.SearchResult, sel Selector) (forvo.SearchResult, error) {
	switch len(results) {
	case 0:
		return forvo.SearchResult{}, ErrNoCandidates
	case 1:
		return results[0], nil
	}

	index, err := sel.Select(Render(results))
	if err != nil {
		return forvo.SearchResult{}, err
	}
	if err := checkRange(index, len(results)); err != nil {
		return forvo.SearchResult{}, err
	}

	return results[index], nil
}

func checkRange(index, n int) error {
	if index < 0 || index >= n {
		return &IndexOutOfRangeError{Index: index, Len: n}
	}
	return nil
}

// Prompt asks on out and reads one line from in
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt creates an interactive selector
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Select prints the candidates and parses a single line as the index.
// There is no second chance on bad input.
func (p *Prompt) Select(lines []string) (int, error) {
	fmt.Fprint(p.out, "We found multiple results:\n\n")
	fmt.Fprintln(p.out, strings.Join(lines, "\n"))
	fmt.Fprint(p.out, "\nChoose one: ")

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}
	if err != nil && line == "" {
		// End of input without an answer
		return 0, &InvalidSelectionError{Err: err}
	}

	input := strings.TrimSpace(line)
	index, err := strconv.Atoi(input)
	if err != nil {
		return 0, &InvalidSelectionError{Input: input, Err: err}
	}

	if err := checkRange(index, len(lines)); err != nil {
		return 0, err
	}
	return index, nil
}

// Fixed always selects the same index
type Fixed int

// Select returns the fixed index if it is within the list
func (f Fixed) Select(lines []string) (int, error) {
	index := int(f)
	if err := checkRange(index, len(lines)); err != nil {
		return 0, err
	}
	return index, nil
}
