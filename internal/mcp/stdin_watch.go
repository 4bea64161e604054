package mcp

import (
	"context"
	"os"
	"time"

	"casync/internal/logging"
)

// DefaultWatchInterval is how often WatchParent checks the parent PID.
const DefaultWatchInterval = 2 * time.Second

// WatchParent cancels the server when the process that launched it goes
// away (the parent PID changes), so that editors restarting their MCP host
// do not leave orphaned casync processes behind.
//
// It must not read stdin: the SDK's StdioTransport owns it, and any byte
// taken here corrupts the JSON-RPC stream.
//
// The goroutine exits when ctx is done or the parent is gone.
func WatchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ppid := os.Getppid()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
