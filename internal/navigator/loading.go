package navigator

import (
	"context"
	"time"
)

func (n *Navigator) startLoadingLocked() {
	n.stopLoadingLocked()

	ctx, cancel := context.WithCancel(context.Background())
	n.stopLoading = cancel
	n.loadingStep = 0
	n.notifyLocked(EventLoadingStatus, LoadingPayload{Message: n.cfg.LoadingMessages[0], Step: 0})

	go n.rotateLoading(ctx, n.cfg.LoadingInterval)
}

func (n *Navigator) stopLoadingLocked() {
	if n.stopLoading != nil {
		n.stopLoading()
		n.stopLoading = nil
	}
}

// rotateLoading advances the loading message every interval until ctx is
// cancelled or the navigator leaves the loading page
func (n *Navigator) rotateLoading(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n.mu.Lock()
		if ctx.Err() != nil || n.page != PageLoading {
			n.mu.Unlock()
			return
		}
		n.loadingStep = (n.loadingStep + 1) % len(n.cfg.LoadingMessages)
		n.notifyLocked(EventLoadingStatus, LoadingPayload{
			Message: n.cfg.LoadingMessages[n.loadingStep],
			Step:    n.loadingStep,
		})
		n.mu.Unlock()
	}
}
