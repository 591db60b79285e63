package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/draftboard/internal/testutil"
)

const testDraft = "1266518936610930688"

// syncBuffer lets the test read logs while the server goroutine writes them
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testEnv(t *testing.T, fake *testutil.FakeSleeperServer, port int) func(string) (string, bool) {
	dir := t.TempDir()
	env := map[string]string{
		"DRAFTBOARD_HOST":          "127.0.0.1",
		"PORT":                     strconv.Itoa(port),
		"DRAFTBOARD_ROSTER_PATH":   filepath.Join(dir, "players.json"),
		"DRAFTBOARD_RANKINGS_PATH": filepath.Join(dir, "rankings.json"),
		"DRAFTBOARD_SLEEPER_URL":   fake.URL(),
		"DRAFTBOARD_DRAFT_ID":      testDraft,
		"DRAFTBOARD_POLL_INTERVAL": "20ms",
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	fake := testutil.NewFakeSleeperServer()
	defer fake.Close()
	fake.SetPicks(testDraft, testutil.Picked(1, "4034"))
	picksPath := "/v1/draft/" + testDraft + "/picks"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := testEnv(t, fake, freePort(t))
	var logs syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, env, &logs)
	}()

	require.Eventually(t, func() bool {
		return fake.Requests(picksPath) > 0
	}, 2*time.Second, 10*time.Millisecond, "default board polls its draft")

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	assert.Contains(t, logs.String(), "draft controller stopped")
	assert.Contains(t, logs.String(), "server stopped")
}

func TestRun_ServerErrorStillStopsPolling(t *testing.T) {
	fake := testutil.NewFakeSleeperServer()
	defer fake.Close()
	fake.SetPicks(testDraft, testutil.Picked(1, "4034"))
	picksPath := "/v1/draft/" + testDraft + "/picks"

	// Hold the port so the HTTP server cannot bind
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	var logs syncBuffer
	code := run(context.Background(), testEnv(t, fake, port), &logs)
	assert.Equal(t, 1, code)
	assert.Contains(t, logs.String(), "server error")
	assert.Contains(t, logs.String(), "draft controller stopped")

	// The poller is gone once run has returned
	after := fake.Requests(picksPath)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, fake.Requests(picksPath))
}

func TestRun_InvalidConfig(t *testing.T) {
	env := func(key string) (string, bool) {
		if key == "STORAGE_TYPE" {
			return "postgres", true
		}
		return "", false
	}
	assert.Equal(t, 1, run(context.Background(), env, &syncBuffer{}))
}
