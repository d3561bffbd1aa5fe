package model

import "fmt"

// State describes what the owner intends to do with an item. It is
// informational and never gates an operation.
type State string

// Item states.
const (
	StatePending  State = "pending"
	StateToSell   State = "to_sell"
	StateToDonate State = "to_donate"
	StateToMove   State = "to_move"
	StateToTrash  State = "to_trash"
)

// States lists every state in display order.
var States = []State{StatePending, StateToSell, StateToDonate, StateToMove, StateToTrash}

var stateLabels = map[State]string{
	StatePending:  "Pendente",
	StateToSell:   "À Venda",
	StateToDonate: "Doação",
	StateToMove:   "Mudança",
	StateToTrash:  "Descarte",
}

// Valid reports whether s is one of the enumerated states.
func (s State) Valid() bool {
	_, ok := stateLabels[s]
	return ok
}

// Label returns the display label of the state.
func (s State) Label() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseState converts text into a State, rejecting unknown values.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", &ValidationError{Field: "state", Message: fmt.Sprintf("unknown state %q", s)}
	}
	return st, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	st, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Scan implements sql.Scanner.
func (s *State) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("scanning state: unsupported type %T", src)
	}
}
