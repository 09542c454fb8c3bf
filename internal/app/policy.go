package app

import "github.com/dkeye/roomrelay/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose outbound queue is full.
type Policy interface {
	OnBackPressure(conn domain.ConnID, event string) BackpressureAction
}

// SimplePolicy kicks slow connections; the kick then follows the normal
// disconnect transition.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.ConnID, string) BackpressureAction {
	return KickMember
}

// LenientPolicy keeps slow connections and drops the frame.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(domain.ConnID, string) BackpressureAction {
	return DropFrame
}
