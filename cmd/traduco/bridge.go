package main

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mireiacs/traduco/pkg/session"
)

// startBridge launches the event watcher goroutine that converts session
// events into bubbletea messages. It only calls p.Send() and never touches
// model state directly. The returned cancel function cancels the bridge
// context and waits for the goroutine to exit, ensuring no stale messages
// are sent after return.
func startBridge(ctx context.Context, p *tea.Program, events *session.EventBus) context.CancelFunc {
	bridgeCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	sub := events.Subscribe(64)

	wg.Go(func() {
		defer events.Unsubscribe(sub)
		for {
			select {
			case <-bridgeCtx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				p.Send(sessionEventMsg{event: ev})
			}
		}
	})

	return func() {
		cancel()
		wg.Wait()
	}
}
