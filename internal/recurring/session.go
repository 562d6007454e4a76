package recurring

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var (
	ErrNoTasks     = errors.New("no recurring tasks configured")
	ErrInputClosed = errors.New("input closed before a description was selected")
)

// Outcome is what happened to a submitted choice
type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeDescended
	OutcomeSelected
)

// Step reports the result of one submitted choice
type Step struct {
	Outcome Outcome
	Result  string // set when Outcome is OutcomeSelected
}

// Session resolves a recurring task description one choice at a time.
// It starts at the top level and can descend once into a group; there is no
// way back up.
type Session struct {
	grouping Grouping
	level    Menu
	group    string
	done     bool
}

// NewSession groups the tasks and builds the top level menu.
func NewSession(tasks []string) (*Session, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	grouping := GroupTasks(tasks)
	top, err := BuildTopLevel(grouping)
	if err != nil {
		return nil, err
	}

	return &Session{grouping: grouping, level: top}, nil
}

// Level returns the menu currently displayed
func (s *Session) Level() Menu {
	return s.level
}

// Group returns the group descended into, or "" at the top level
func (s *Session) Group() string {
	return s.group
}

// Done reports whether a description has been selected
func (s *Session) Done() bool {
	return s.done
}

// Submit applies one line of user input to the current level.
func (s *Session) Submit(input string) (Step, error) {
	if s.done {
		return Step{}, errors.New("session already finished")
	}

	choice := strings.TrimSpace(input)
	switch {
	case isLetters(choice):
		entry, ok := s.level.Lookup(strings.ToUpper(choice))
		if !ok || entry.Kind != EntryGroup {
			return Step{Outcome: OutcomeInvalid}, nil
		}
		sub, err := BuildGroupLevel(s.grouping, entry.Group)
		if err != nil {
			return Step{}, err
		}
		s.group = entry.Group
		s.level = sub
		return Step{Outcome: OutcomeDescended}, nil

	case isNumber(choice):
		// Keys are matched as typed, so "01" is not key "1"
		entry, ok := s.level.Lookup(choice)
		if !ok || entry.Kind != EntryTask {
			return Step{Outcome: OutcomeInvalid}, nil
		}
		s.done = true
		return Step{Outcome: OutcomeSelected, Result: entry.Selection()}, nil
	}

	return Step{Outcome: OutcomeInvalid}, nil
}

// Run drives a line based session: it renders the menu, prompts, reads one
// line per iteration from in and stops once a task is selected. Cancelling
// ctx ends a session that is waiting for input with ctx.Err().
func Run(ctx context.Context, in io.Reader, out io.Writer, tasks []string) (string, error) {
	s, err := NewSession(tasks)
	if err != nil {
		return "", err
	}

	fmt.Fprintln(out, "Please choose one from the following recurring ones:")
	if err := s.level.Render(out); err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, in)
	for {
		prompt, err := s.level.Prompt()
		if err != nil {
			return "", err
		}
		fmt.Fprint(out, prompt)

		var r lineResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return "", ctx.Err()
		case r = <-lines:
		}

		if r.err != nil && (r.line == "" || !errors.Is(r.err, io.EOF)) {
			fmt.Fprintln(out)
			if errors.Is(r.err, io.EOF) {
				return "", ErrInputClosed
			}
			return "", fmt.Errorf("failed to read choice: %w", r.err)
		}

		step, err := s.Submit(r.line)
		if err != nil {
			return "", err
		}

		switch step.Outcome {
		case OutcomeSelected:
			return step.Result, nil
		case OutcomeDescended:
			if err := s.level.Render(out); err != nil {
				return "", err
			}
		default:
			fmt.Fprintln(out, "Invalid choice!")
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLines reads in on its own goroutine so a blocked read never keeps Run
// from noticing cancellation. The goroutine stops after the first read error
// or once ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan lineResult {
	lines := make(chan lineResult)
	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			select {
			case lines <- lineResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// isLetters matches the empty string too, which then fails the key lookup.
func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
