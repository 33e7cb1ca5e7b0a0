package fasting

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type SignalType string

const (
	SignalMilestone   SignalType = "milestone"
	SignalCompleted   SignalType = "completed"
	SignalAchievement SignalType = "achievement"
	SignalReward      SignalType = "reward"
)

// Signal is a one-shot notification produced by the session state
// machine, e.g. a milestone crossed or an achievement unlocked.
// Sinks decide how it reaches the user (push, websocket, log).
type Signal struct {
	Type    SignalType `json:"type"`
	Message string     `json:"message"`
}

type SignalSink interface {
	Push(ctx context.Context, userID string, signal Signal)
}

var milestoneMessages = map[int]string{
	25: "Quarter way there, keep going!",
	50: "Halfway through your fast!",
	75: "Three quarters done, almost there!",
	90: "Final stretch, you got this!",
}

// LogSink writes signals to the service log. It is the default sink
// until a push transport is wired in.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Push(_ context.Context, userID string, signal Signal) {
	log.Infof("signal [%s] for user %s: %s", signal.Type, userID, signal.Message)
}
