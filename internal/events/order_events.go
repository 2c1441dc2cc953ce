package events

const (
	OrderSubmittedEventName     = "order.submitted"
	OrderStatusChangedEventName = "order.status_changed"
)

// OrderSubmittedEvent is raised after a job-update request was stored as an order.
type OrderSubmittedEvent struct {
	OrderID      uint64
	TicketID     string
	ChangeType   string
	EmployeeID   uint64
	EmployeeName string
	SubmittedBy  string
}

func (e OrderSubmittedEvent) Name() string {
	return OrderSubmittedEventName
}

// OrderStatusChangedEvent is raised after an order got a new status. Legal reports
// whether the workflow allows From -> To; unknown labels are never legal.
type OrderStatusChangedEvent struct {
	OrderID uint64
	From    string
	To      string
	Legal   bool
	Actor   string
}

func (e OrderStatusChangedEvent) Name() string {
	return OrderStatusChangedEventName
}
