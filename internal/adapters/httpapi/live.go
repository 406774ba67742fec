package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/orbita/internal/live"
	"github.com/example/orbita/internal/ports/secondary"
)

// handleLive handles GET /mission/live/{missionID}
//
// Each tick of the mission arrives as one "update" event. Idle streams
// get a comment frame every heartbeat interval. The subscription ends when
// the client disconnects.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionID")
	if _, err := s.missions.GetMission(r.Context(), missionID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		s.logger.Warn("live stream cannot flush", "mission_id", missionID, "error", err)
		return
	}

	sub := live.NewChannelSubscriber(s.opts.Buffer, s.opts.SendTimeout)
	handle := s.registry.Subscribe(missionID, sub)
	defer func() {
		s.registry.Unsubscribe(handle)
		sub.Close()
	}()

	heartbeat := time.NewTicker(s.opts.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case update := <-sub.Updates():
			if err := writeEvent(w, update); err != nil {
				s.logger.Debug("live stream write failed", "mission_id", missionID, "error", err)
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, update secondary.LiveUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: update\ndata: %s\n\n", update.Tick, data)
	return err
}
