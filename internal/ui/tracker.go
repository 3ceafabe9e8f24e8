package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
)

// StepStatus is the state of one tracked step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepDone
	StepError
	StepSkipped
)

func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepDone:
		return "done"
	case StepError:
		return "error"
	case StepSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("StepStatus(%d)", int(s))
	}
}

type step struct {
	key    string
	label  string
	status StepStatus
	detail string
}

// Tracker records the progress of a fixed list of steps and renders them
// as a tree.
type Tracker struct {
	title string
	steps []*step
}

// NewTracker creates an empty tracker.
func NewTracker(title string) *Tracker {
	return &Tracker{title: title}
}

// Add appends a pending step. Adding an existing key is a no-op.
func (t *Tracker) Add(key, label string) {
	if t.find(key) != nil {
		return
	}
	t.steps = append(t.steps, &step{key: key, label: label})
}

// Start marks a step running.
func (t *Tracker) Start(key, detail string) { t.set(key, StepRunning, detail) }

// Complete marks a step done.
func (t *Tracker) Complete(key, detail string) { t.set(key, StepDone, detail) }

// Error marks a step failed.
func (t *Tracker) Error(key, detail string) { t.set(key, StepError, detail) }

// Skip marks a step skipped.
func (t *Tracker) Skip(key, detail string) { t.set(key, StepSkipped, detail) }

// Status returns a step's status and detail.
func (t *Tracker) Status(key string) (StepStatus, string) {
	if s := t.find(key); s != nil {
		return s.status, s.detail
	}
	return StepPending, ""
}

// Failed reports whether any step errored.
func (t *Tracker) Failed() bool {
	for _, s := range t.steps {
		if s.status == StepError {
			return true
		}
	}
	return false
}

func (t *Tracker) find(key string) *step {
	for _, s := range t.steps {
		if s.key == key {
			return s
		}
	}
	return nil
}

// set updates a step, adding it with key as its label if unknown.
func (t *Tracker) set(key string, status StepStatus, detail string) {
	s := t.find(key)
	if s == nil {
		s = &step{key: key, label: key}
		t.steps = append(t.steps, s)
	}
	s.status = status
	s.detail = detail
}

// Render draws the tracker.
func (t *Tracker) Render() string {
	root := tree.Root(titleStyle.Render(t.title)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(detailStyle)
	for _, s := range t.steps {
		root.Child(renderStep(s))
	}
	return root.String()
}

func renderStep(s *step) string {
	var marker string
	switch s.status {
	case StepDone:
		marker = doneStyle.Render("●")
	case StepRunning:
		marker = runningStyle.Render("○")
	case StepError:
		marker = errorStyle.Render("●")
	case StepSkipped:
		marker = warnStyle.Render("○")
	default:
		marker = pendingStyle.Render("○")
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(" ")
	if s.status == StepPending {
		b.WriteString(pendingStyle.Render(s.label))
	} else {
		b.WriteString(labelStyle.Render(s.label))
	}
	if s.detail != "" {
		b.WriteString(" ")
		b.WriteString(detailStyle.Render("(" + s.detail + ")"))
	}
	return b.String()
}
