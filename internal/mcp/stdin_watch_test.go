package mcp_test

import (
	"bufio"
	"context"
	"io"
	"testing"
	"time"

	mcpserver "casync/internal/mcp"
)

func TestWatchParent_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mcpserver.WatchParent(ctx, 10*time.Millisecond, cancel)
	cancel()
	// The goroutine must neither panic nor block after cancel.
	time.Sleep(50 * time.Millisecond)
}

func TestWatchParent_KeepsRunningWhileParentAlive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mcpserver.WatchParent(ctx, 5*time.Millisecond, cancel)
	time.Sleep(50 * time.Millisecond)
	if ctx.Err() != nil {
		t.Fatal("watchdog cancelled while the parent is alive")
	}
}

func TestWatchParent_DoesNotConsumeStdin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pr, pw := io.Pipe()
	defer pr.Close()

	mcpserver.WatchParent(ctx, 0, cancel)
	time.Sleep(50 * time.Millisecond)

	msg := `{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n"
	go func() {
		_, _ = pw.Write([]byte(msg))
		time.Sleep(100 * time.Millisecond)
		_ = pw.Close()
	}()

	// The transport-side reader must receive the whole message.
	scanner := bufio.NewScanner(pr)
	if !scanner.Scan() {
		t.Fatalf("reader got no data; err=%v", scanner.Err())
	}
	if got, want := scanner.Text(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`; got != want {
		t.Fatalf("reader got corrupted data:\n  got:  %q\n  want: %q", got, want)
	}
}
