package order

import "strings"

type Status string

const (
	StatusPlaced     Status = "PLACED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

type statusInfo struct {
	terminal bool
}

// Nominal flow is PLACED → PROCESSING → SHIPPED → DELIVERED, with CANCELLED reachable
// from any non-terminal state. Administrators may still set any status directly.
var statuses = map[Status]statusInfo{
	StatusPlaced:     {},
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {terminal: true},
	StatusCancelled:  {terminal: true},
}

// Statuses lists every recognised status in pipeline order.
func Statuses() []Status {
	return []Status{StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

// ParseStatus accepts any casing and surrounding whitespace.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := statuses[s]; !ok {
		return "", ErrUnknownStatus
	}
	return s, nil
}

func (s Status) Valid() bool {
	_, ok := statuses[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return statuses[s].terminal
}
