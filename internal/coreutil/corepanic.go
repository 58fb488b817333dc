// Package coreutil holds small helpers shared across the core state
// machines that don't belong to any one of them.
package coreutil

import (
	"time"

	"github.com/tws-core/earbud-core/internal/corelog"
)

// Corepanic logs a corelog error event then panics with message. It is
// reserved for the documented unreachable branches where continuing
// would silently corrupt a state machine's invariants: a missing
// mandatory mirror chain handle, an illegal transition reached despite
// the guard table, a goal started with no registered procedure. Every
// other failure, including transient controller errors, is a returned
// error instead.
func Corepanic(logger corelog.Logger, component, message string) {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	logger.Log(corelog.Event{
		Timestamp: time.Now(),
		Component: component,
		Layer:     corelog.LayerSM,
		Category:  corelog.CategoryError,
		Error:     &corelog.ErrorEventData{Message: message},
	})
	panic(component + ": " + message)
}
