package corelog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes core events to an slog.Logger, useful during
// development and in the earbud-sim harness where events should be
// visible on the console rather than captured to a trace file.
type SlogAdapter struct {
	logger *slog.Logger
}

func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("component", event.Component),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.DeviceAddr != "" {
		attrs = append(attrs, slog.String("device_addr", event.DeviceAddr))
	}

	switch {
	case event.Transition != nil:
		attrs = append(attrs,
			slog.String("old_state", event.Transition.OldState),
			slog.String("new_state", event.Transition.NewState),
		)
		if event.Transition.Event != "" {
			attrs = append(attrs, slog.String("event", event.Transition.Event))
		}
	case event.Rule != nil:
		attrs = append(attrs,
			slog.String("rule", event.Rule.RuleName),
			slog.String("decision", event.Rule.Decision),
		)
		if event.Rule.GoalID != "" {
			attrs = append(attrs, slog.String("goal_id", event.Rule.GoalID))
		}
	case event.Goal != nil:
		attrs = append(attrs, slog.String("goal_id", event.Goal.GoalID))
		if event.Goal.Outcome != "" {
			attrs = append(attrs, slog.String("outcome", event.Goal.Outcome))
		}
	case event.Lock != nil:
		attrs = append(attrs,
			slog.String("lock", event.Lock.LockName),
			slog.Bool("held", event.Lock.Held),
		)
	case event.Timer != nil:
		attrs = append(attrs,
			slog.String("timer", event.Timer.TimerName),
			slog.String("action", event.Timer.Action),
		)
		if event.Timer.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Timer.Duration))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "core", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
