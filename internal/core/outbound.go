package core

import "github.com/dkeye/roomrelay/internal/domain"

// Outbound is one notification for the transport to deliver.
// Explicit recipients win; otherwise Address is resolved by group delivery.
type Outbound struct {
	Event   string
	Payload any
	To      []domain.ConnID
	Address domain.Address
}

// GroupChange tells the transport which addresses a connection answers to.
// Reset drops every group except the connection's own id before Join is applied.
type GroupChange struct {
	Conn  domain.ConnID
	Reset bool
	Join  []domain.Address
}

// Result is what a handler hands back: notifications plus group changes.
// Group changes are applied before the notifications are delivered.
type Result struct {
	Out    []Outbound
	Groups []GroupChange
}

func (r *Result) Send(o Outbound) { r.Out = append(r.Out, o) }

func (r *Result) Merge(other Result) {
	r.Out = append(r.Out, other.Out...)
	r.Groups = append(r.Groups, other.Groups...)
}

// ToConns addresses a notification to explicit connections.
func ToConns(event string, payload any, conns ...domain.ConnID) Outbound {
	return Outbound{Event: event, Payload: payload, To: conns}
}

// ToAddress addresses a notification through group delivery.
func ToAddress(event string, payload any, addr domain.Address) Outbound {
	return Outbound{Event: event, Payload: payload, Address: addr}
}
