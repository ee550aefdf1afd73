package app

import "github.com/dkeye/Syndicate/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what to do with a recipient whose send buffer is full
// during fan-out.
type Policy interface {
	OnBackPressure(room core.GameService, member core.ConnID) BackpressureAction
}

// SimplePolicy drops the frame for that recipient only.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.GameService, member core.ConnID) BackpressureAction {
	return DropFrame
}
