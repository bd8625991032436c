package main

import (
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_WaitsForShutdownSequence(t *testing.T) {
	sig := make(chan os.Signal, 1)
	closed := make(chan struct{})
	var flushed atomic.Bool

	start := func() error {
		<-closed
		return http.ErrServerClosed
	}
	stop := func() {
		close(closed)
		// Work after the listener closes, like the trace flush.
		time.Sleep(50 * time.Millisecond)
		flushed.Store(true)
	}

	sig <- syscall.SIGTERM
	require.NoError(t, serve(sig, start, stop))
	assert.True(t, flushed.Load())
}

func TestServe_StartError(t *testing.T) {
	sig := make(chan os.Signal)
	listenErr := errors.New("address already in use")

	err := serve(sig, func() error { return listenErr }, func() { t.Error("stop called") })
	assert.ErrorIs(t, err, listenErr)
}
