package jobs

import (
	"fmt"
	"sort"
)

// Trigger names a business event that moves an entity between states.
type Trigger string

// Transition is one row of a lifecycle table: firing Trigger from any of the
// From states moves the entity to To.
type Transition[S ~string] struct {
	Trigger Trigger
	From    []S
	To      S
}

// TransitionError is returned when a trigger is not allowed from the
// current state. To is empty when the trigger is unknown.
type TransitionError struct {
	Entity  string
	Trigger Trigger
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("invalid %s transition: %q is not a valid trigger from %s", e.Entity, e.Trigger, e.From)
	}
	return fmt.Sprintf("invalid %s transition: %s to %s", e.Entity, e.From, e.To)
}

// StateMachine is an immutable transition table over the states S. All
// methods are pure lookups and safe for concurrent use.
type StateMachine[S ~string] struct {
	entity      string
	initial     S
	states      []S
	members     map[S]struct{}
	transitions map[Trigger]transitionRow[S]
	order       []Trigger
}

type transitionRow[S ~string] struct {
	from map[S]struct{}
	to   S
}

// NewStateMachine validates and builds a state machine. Every state named by
// the initial state or a transition must be declared and triggers must be
// unique.
func NewStateMachine[S ~string](entity string, initial S, states []S, transitions ...Transition[S]) (*StateMachine[S], error) {
	sm := &StateMachine[S]{
		entity:      entity,
		initial:     initial,
		members:     make(map[S]struct{}, len(states)),
		transitions: make(map[Trigger]transitionRow[S], len(transitions)),
	}

	for _, s := range states {
		if s == "" {
			return nil, fmt.Errorf("%s lifecycle: empty state", entity)
		}
		if _, dup := sm.members[s]; dup {
			return nil, fmt.Errorf("%s lifecycle: duplicate state %s", entity, s)
		}
		sm.members[s] = struct{}{}
		sm.states = append(sm.states, s)
	}

	if !sm.IsValid(initial) {
		return nil, fmt.Errorf("%s lifecycle: initial state %s is not declared", entity, initial)
	}

	if err := sm.add(transitions...); err != nil {
		return nil, err
	}

	return sm, nil
}

// MustStateMachine is NewStateMachine for package level tables.
func MustStateMachine[S ~string](entity string, initial S, states []S, transitions ...Transition[S]) *StateMachine[S] {
	sm, err := NewStateMachine(entity, initial, states, transitions...)
	if err != nil {
		panic(err)
	}
	return sm
}

func (sm *StateMachine[S]) add(transitions ...Transition[S]) error {
	for _, t := range transitions {
		if t.Trigger == "" {
			return fmt.Errorf("%s lifecycle: empty trigger", sm.entity)
		}
		if _, dup := sm.transitions[t.Trigger]; dup {
			return fmt.Errorf("%s lifecycle: duplicate trigger %s", sm.entity, t.Trigger)
		}
		if !sm.IsValid(t.To) {
			return fmt.Errorf("%s lifecycle: trigger %s targets undeclared state %s", sm.entity, t.Trigger, t.To)
		}
		if len(t.From) == 0 {
			return fmt.Errorf("%s lifecycle: trigger %s has no source states", sm.entity, t.Trigger)
		}

		row := transitionRow[S]{from: make(map[S]struct{}, len(t.From)), to: t.To}
		for _, from := range t.From {
			if !sm.IsValid(from) {
				return fmt.Errorf("%s lifecycle: trigger %s starts from undeclared state %s", sm.entity, t.Trigger, from)
			}
			row.from[from] = struct{}{}
		}

		sm.transitions[t.Trigger] = row
		sm.order = append(sm.order, t.Trigger)
	}
	return nil
}

// Extend returns a new machine with the extra transitions added. The
// receiver is left untouched.
func (sm *StateMachine[S]) Extend(transitions ...Transition[S]) (*StateMachine[S], error) {
	next := &StateMachine[S]{
		entity:      sm.entity,
		initial:     sm.initial,
		states:      append([]S(nil), sm.states...),
		members:     make(map[S]struct{}, len(sm.members)),
		transitions: make(map[Trigger]transitionRow[S], len(sm.transitions)+len(transitions)),
		order:       append([]Trigger(nil), sm.order...),
	}
	for s := range sm.members {
		next.members[s] = struct{}{}
	}
	for k, v := range sm.transitions {
		next.transitions[k] = v
	}

	if err := next.add(transitions...); err != nil {
		return nil, err
	}
	return next, nil
}

// Entity is the name used in errors, e.g. "job".
func (sm *StateMachine[S]) Entity() string { return sm.entity }

// Initial is the state new entities are created in.
func (sm *StateMachine[S]) Initial() S { return sm.initial }

// States lists the declared states in declaration order.
func (sm *StateMachine[S]) States() []S { return append([]S(nil), sm.states...) }

// IsValid reports whether s belongs to the state set.
func (sm *StateMachine[S]) IsValid(s S) bool {
	_, ok := sm.members[s]
	return ok
}

// CanTransition reports whether trigger may fire from current.
func (sm *StateMachine[S]) CanTransition(current S, trigger Trigger) bool {
	row, ok := sm.transitions[trigger]
	if !ok {
		return false
	}
	_, ok = row.from[current]
	return ok
}

// Apply returns the state reached by firing trigger from current.
func (sm *StateMachine[S]) Apply(current S, trigger Trigger) (S, error) {
	row, ok := sm.transitions[trigger]
	if !ok {
		return current, &TransitionError{
			Entity:  sm.entity,
			Trigger: trigger,
			From:    string(current),
		}
	}

	if _, allowed := row.from[current]; !allowed {
		return current, &TransitionError{
			Entity:  sm.entity,
			Trigger: trigger,
			From:    string(current),
			To:      string(row.to),
		}
	}

	return row.to, nil
}

// Triggers lists the triggers that may fire from current, sorted by name.
func (sm *StateMachine[S]) Triggers(current S) []Trigger {
	out := []Trigger{}
	for _, t := range sm.order {
		if sm.CanTransition(current, t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsTerminal reports whether no trigger leaves s.
func (sm *StateMachine[S]) IsTerminal(s S) bool {
	return len(sm.Triggers(s)) == 0
}
