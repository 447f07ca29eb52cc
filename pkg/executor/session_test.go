package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionRequestStopEscalatesOnly(t *testing.T) {
	s := newSession()

	assert.True(t, s.requestStop(StopGraceful))
	assert.Equal(t, StopGraceful, s.StopSignal())

	// Requesting the same level again reports no change.
	assert.False(t, s.requestStop(StopGraceful))

	assert.True(t, s.requestStop(StopForced))
	assert.Equal(t, StopForced, s.StopSignal())

	// Cannot downgrade from FORCED back to GRACEFUL.
	assert.False(t, s.requestStop(StopGraceful))
	assert.Equal(t, StopForced, s.StopSignal())
}

func TestSessionResetClearsFlags(t *testing.T) {
	s := newSession()
	s.setPhase(InterBrokerInProgress)
	s.setUUID("abc")
	s.hasOngoing.Store(true)
	s.requestStop(StopGraceful)
	s.stoppedByUser.Store(true)

	s.reset()

	assert.Equal(t, NoTask, s.Phase())
	assert.Equal(t, "", s.UUID())
	assert.False(t, s.HasOngoing())
	assert.Equal(t, StopNone, s.StopSignal())
	assert.False(t, s.StoppedByUser())
}

func TestSessionReasonProviderDefaultsToEmpty(t *testing.T) {
	s := newSession()
	assert.Equal(t, "", s.ReasonProvider()())

	s.reasonProvider.Store(func() string { return "operator request" })
	assert.Equal(t, "operator request", s.ReasonProvider()())
}
