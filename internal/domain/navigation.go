package domain

import "fmt"

// NavState is the coarse state of a Navigator
type NavState string

const (
	StateHome    NavState = "home"
	StateViewing NavState = "viewing"
)

// HomeIndex is the JumpTo sentinel that clears the stack
const HomeIndex = -1

// Navigator is the drill-down state machine behind the Game Plan view.
//
// The stack holds every position entered since the start node, including
// repeats, so the breadcrumb and Back stay accurate when the user loops.
// A Navigator is owned by one logical screen controller; callers serialize
// access to it.
type Navigator struct {
	stack []string
}

// NewNavigator returns a navigator at Home
func NewNavigator() *Navigator {
	return &Navigator{}
}

// RestoreNavigator returns a navigator viewing a copy of stack
func RestoreNavigator(stack []string) *Navigator {
	n := &Navigator{}
	if len(stack) > 0 {
		n.stack = append([]string(nil), stack...)
	}
	return n
}

// State returns Home for an empty stack and Viewing otherwise
func (n *Navigator) State() NavState {
	if len(n.stack) == 0 {
		return StateHome
	}
	return StateViewing
}

// Depth returns the stack length; 0 means Home
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Stack returns a copy of the current stack
func (n *Navigator) Stack() []string {
	return append([]string{}, n.stack...)
}

// Current returns the displayed position, the last element of the stack
func (n *Navigator) Current() (string, bool) {
	if len(n.stack) == 0 {
		return "", false
	}
	return n.stack[len(n.stack)-1], true
}

// SelectStart replaces the whole stack with the single start position,
// discarding any prior path. Calling it twice with the same id is the same
// as calling it once.
func (n *Navigator) SelectStart(id string) []string {
	n.stack = []string{id}
	return n.Stack()
}

// Push appends a transition target. Pushing from Home is rejected: a path
// always begins with SelectStart.
func (n *Navigator) Push(id string) ([]string, error) {
	if len(n.stack) == 0 {
		return n.Stack(), fmt.Errorf("push %q: %w", id, ErrNotViewing)
	}
	n.stack = append(n.stack, id)
	return n.Stack(), nil
}

// Pop removes exactly one level. Popping the last element returns Home and
// popping at Home is a no-op.
func (n *Navigator) Pop() []string {
	if len(n.stack) > 0 {
		n.stack = n.stack[:len(n.stack)-1]
	}
	return n.Stack()
}

// JumpTo truncates the stack to keep elements [0..index]. HomeIndex clears
// it. Any other index outside the stack is rejected and leaves the state
// unchanged.
func (n *Navigator) JumpTo(index int) ([]string, error) {
	if index == HomeIndex {
		return n.Home(), nil
	}
	if index < HomeIndex || index >= len(n.stack) {
		return n.Stack(), &StackIndexError{Index: index, Len: len(n.stack)}
	}
	n.stack = n.stack[:index+1]
	return n.Stack(), nil
}

// Home clears the stack
func (n *Navigator) Home() []string {
	n.stack = nil
	return n.Stack()
}

// CurrentOptions derives the option list for the displayed position
func (n *Navigator) CurrentOptions(g *PositionGraph) ([]Option, error) {
	current, ok := n.Current()
	if !ok {
		return nil, ErrNotViewing
	}
	return g.OptionsFor(current)
}

// Outcome is the result of following an option from the current position
type Outcome struct {
	Stack  []string `json:"stack"`
	Finish *Option  `json:"finish,omitempty"` // set when a terminal move was chosen
}

// Follow acts on an option of the displayed position: transitions descend
// into the target, terminal moves finish the line and leave the stack as is.
func (n *Navigator) Follow(opt Option) (Outcome, error) {
	switch opt.Kind {
	case KindTransition:
		target, ok := ResolveTransition(opt)
		if !ok {
			return Outcome{Stack: n.Stack()}, fmt.Errorf("transition %q has no target: %w", opt.Label, ErrPositionNotFound)
		}
		stack, err := n.Push(target)
		return Outcome{Stack: stack}, err
	case KindSubmission, KindTakedown:
		if len(n.stack) == 0 {
			return Outcome{Stack: n.Stack()}, ErrNotViewing
		}
		finish := opt
		return Outcome{Stack: n.Stack(), Finish: &finish}, nil
	default:
		return Outcome{Stack: n.Stack()}, fmt.Errorf("%w: %q", ErrUnknownOptionKind, opt.Kind)
	}
}

// Crumb is one breadcrumb segment. The Home segment has index HomeIndex.
type Crumb struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
}

// Breadcrumb returns the Home segment followed by one segment per stack entry
func (n *Navigator) Breadcrumb(g *PositionGraph) []Crumb {
	crumbs := make([]Crumb, 0, len(n.stack)+1)
	crumbs = append(crumbs, Crumb{Index: HomeIndex, Label: "Home"})
	for i, id := range n.stack {
		crumbs = append(crumbs, Crumb{Index: i, ID: id, Label: g.Label(id)})
	}
	return crumbs
}
