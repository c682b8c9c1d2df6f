package ai

import "errors"

var (
	ErrNoNetwork      = errors.New("ai: no waypoint network assigned")
	ErrEmptyNetwork   = errors.New("ai: waypoint network is empty")
	ErrNilWaypoint    = errors.New("ai: waypoint entry is nil")
	ErrUnknownState   = errors.New("ai: state kind not registered")
	ErrDuplicateState = errors.New("ai: state kind already registered")
)
