package entities

import "strings"

// OrderState is the workflow position of an order.
type OrderState string

const (
	StatePending    OrderState = "pending"
	StateInProgress OrderState = "in_progress"
	StateCompleted  OrderState = "completed"
	StateCancelled  OrderState = "cancelled"
)

// OrderStates lists the workflow states in display order.
var OrderStates = []OrderState{StatePending, StateInProgress, StateCompleted, StateCancelled}

var transitions = map[OrderState][]OrderState{
	StatePending:    {StateInProgress, StateCancelled},
	StateInProgress: {StateCompleted, StateCancelled},
	StateCompleted:  nil,
	StateCancelled:  nil,
}

// Keys are normalized labels.
var stateAliases = map[string]OrderState{
	"pending":        StatePending,
	"ausstehend":     StatePending,
	"offen":          StatePending,
	"in_progress":    StateInProgress,
	"in_bearbeitung": StateInProgress,
	"completed":      StateCompleted,
	"abgeschlossen":  StateCompleted,
	"erledigt":       StateCompleted,
	"cancelled":      StateCancelled,
	"canceled":       StateCancelled,
	"abgebrochen":    StateCancelled,
	"storniert":      StateCancelled,
}

// NormalizeStatusLabel lowercases and joins words with underscores: "In Bearbeitung" -> "in_bearbeitung".
func NormalizeStatusLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return strings.Join(strings.Fields(label), "_")
}

// ParseOrderState resolves a stored or submitted label, including German aliases.
func ParseOrderState(label string) (OrderState, bool) {
	state, ok := stateAliases[NormalizeStatusLabel(label)]
	return state, ok
}

func (s OrderState) String() string { return string(s) }

// Next lists the states the workflow allows after s.
func (s OrderState) Next() []OrderState { return transitions[s] }

func (s OrderState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// CanTransitionTo reports whether the workflow allows s -> next. Staying put is allowed.
func (s OrderState) CanTransitionTo(next OrderState) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpenStatus reports whether an order with this status label still needs work.
// Labels outside the workflow count as open.
func IsOpenStatus(label string) bool {
	state, ok := ParseOrderState(label)
	return !ok || !state.IsTerminal()
}

// ClosedStatusLabels lists the normalized labels of terminal states, for SQL filters.
func ClosedStatusLabels() []string {
	var labels []string
	for alias, state := range stateAliases {
		if state.IsTerminal() {
			labels = append(labels, alias)
		}
	}
	return labels
}

// LabelsFor lists every normalized label that resolves to s.
func LabelsFor(s OrderState) []string {
	var labels []string
	for alias, state := range stateAliases {
		if state == s {
			labels = append(labels, alias)
		}
	}
	return labels
}
