package signal

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_SignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal(syscall.SIGTERM)

	require.ErrorIs(t, h.Context().Err(), context.Canceled)
	assert.Equal(t, syscall.SIGTERM, h.Received())

	select {
	case <-h.Interrupted():
	default:
		t.Fatal("interrupted channel should be closed")
	}
}

func TestHandler_FirstSignalWins(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal(syscall.SIGINT)
	h.handleSignal(syscall.SIGTERM)

	assert.Equal(t, syscall.SIGINT, h.Received())
}

func TestHandler_InitialState(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	require.NoError(t, h.Context().Err())
	assert.Nil(t, h.Received())

	select {
	case <-h.Interrupted():
		t.Fatal("interrupted channel should be open initially")
	default:
	}
}

func TestHandler_Stop(t *testing.T) {
	h := NewHandler(context.Background())

	h.Stop()
	h.Stop()

	require.Error(t, h.Context().Err())
	assert.Nil(t, h.Received(), "stop is not an interruption")
}

func TestHandler_ParentCanceled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	require.Error(t, h.Context().Err())
}

func TestHandler_RepeatedSignalsDoNotBlock(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.sigChan <- syscall.SIGINT

	select {
	case <-h.Interrupted():
	case <-time.After(2 * time.Second):
		t.Fatal("first signal was not handled")
	}

	sent := make(chan struct{})
	go func() {
		h.sigChan <- syscall.SIGINT
		h.sigChan <- syscall.SIGINT
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("listen stopped draining signals")
	}
	assert.Equal(t, syscall.SIGINT, h.Received())
}
