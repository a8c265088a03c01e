// Package behavior provides the behaviour-tree primitives organisms are built from.
//
// A tree is composed of Condition and Action leaves under Sequence and
// Fallback composites. Evaluation is synchronous and single-threaded: a tree
// must never be evaluated concurrently with itself. Any progress that spans
// ticks (timers, paths) lives on the organism, never on a node.
package behavior

import "fmt"

// Status is the result of evaluating a node.
type Status uint8

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Node is a unit of behaviour that can be evaluated once per tick.
type Node interface {
	Evaluate() Status
}

// Condition wraps a side-effect-free predicate.
type Condition struct {
	Name      string
	Predicate func() bool
}

// NewCondition returns a condition leaf.
func NewCondition(name string, predicate func() bool) *Condition {
	return &Condition{Name: name, Predicate: predicate}
}

// Evaluate returns Success when the predicate holds.
func (c *Condition) Evaluate() Status {
	if c.Predicate() {
		return Success
	}
	return Failure
}

// Action wraps a single mutation attempt that reports its own outcome.
type Action struct {
	Name   string
	Effect func() Status
}

// NewAction returns an action leaf.
func NewAction(name string, effect func() Status) *Action {
	return &Action{Name: name, Effect: effect}
}

// Evaluate runs the effect once.
func (a *Action) Evaluate() Status {
	return a.Effect()
}

// Sequence is the AND composite: children run in order until one does not succeed.
type Sequence struct {
	Children []Node
}

// NewSequence returns a sequence over the given children.
func NewSequence(children ...Node) *Sequence {
	return &Sequence{Children: children}
}

// Add appends a child and returns the sequence for chaining.
func (s *Sequence) Add(child Node) *Sequence {
	s.Children = append(s.Children, child)
	return s
}

// Evaluate stops at the first Failure or Running child and propagates it.
// Later children are not evaluated.
func (s *Sequence) Evaluate() Status {
	for _, child := range s.Children {
		if status := child.Evaluate(); status != Success {
			return status
		}
	}
	return Success
}

// Fallback is the OR composite (a selector): children run in order until one does not fail.
type Fallback struct {
	Children []Node
}

// NewFallback returns a fallback over the given children.
func NewFallback(children ...Node) *Fallback {
	return &Fallback{Children: children}
}

// Add appends a child and returns the fallback for chaining.
func (f *Fallback) Add(child Node) *Fallback {
	f.Children = append(f.Children, child)
	return f
}

// Evaluate stops at the first Success or Running child and propagates it.
// An empty fallback fails.
func (f *Fallback) Evaluate() Status {
	for _, child := range f.Children {
		if status := child.Evaluate(); status != Failure {
			return status
		}
	}
	return Failure
}

// always is a leaf with a fixed result.
type always struct {
	status Status
}

func (a always) Evaluate() Status { return a.status }

// Always returns a leaf that evaluates to status every time.
// Typically the last child of a Fallback whose branches are all optional.
func Always(status Status) Node {
	return always{status: status}
}
