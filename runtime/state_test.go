package runtime

import "testing"

func TestStateNames(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateStarting, "starting"},
		{StateStarted, "started"},
		{StateConnecting, "connecting"},
		{StateOperational, "operational"},
		{StateShuttingDown, "shutting-down"},
		{StateClosed, "closed"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for s := StateIdle; s <= StateFailed; s++ {
		want := s == StateClosed || s == StateFailed
		if s.terminal() != want {
			t.Errorf("%s.terminal() = %v, want %v", s, s.terminal(), want)
		}
	}
}
