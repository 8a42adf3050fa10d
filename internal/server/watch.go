package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/internal/job"
)

// watchInterval is how often the watch endpoint re-reads the registry.
// Snapshots are only pushed when the job actually changed.
const watchInterval = 250 * time.Millisecond

// handleWatch upgrades to a websocket and pushes status snapshots until the
// job reaches a terminal state. The payloads are identical to the polling
// endpoint, so clients can treat the watch as server-driven polling.
func (h *handlers) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.reg.Get(id); err != nil {
		writeDomainError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "job_id", id, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	var last job.Snapshot
	sent := false
	for {
		snap, err := h.reg.Get(id)
		if err != nil {
			var nerr *evaluation.NotFoundError
			if errors.As(err, &nerr) {
				conn.Close(websocket.StatusPolicyViolation, "job evicted")
			} else {
				conn.Close(websocket.StatusInternalError, "registry error")
			}
			return
		}

		if !sent || snap.Status != last.Status || !snap.UpdatedAt.Equal(last.UpdatedAt) {
			if err := wsjson.Write(ctx, conn, snapshotResponse(snap)); err != nil {
				return
			}
			last = snap
			sent = true
		}
		if snap.Done() {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-time.After(watchInterval):
		}
	}
}
