package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/smarthouse-core/internal/bridge"
	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
)

type reportBody struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

func reportResponse(lines []string) reportBody {
	return reportBody{Lines: lines, Count: len(lines)}
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, reportResponse(s.house.CreateReport()))
}

// handleListDevices returns device snapshots in report order.
// Query: kind filters by device kind.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	statuses := s.house.Statuses()

	if name := r.URL.Query().Get("kind"); name != "" {
		kind, err := device.ParseKind(name)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filtered := statuses[:0]
		for _, st := range statuses {
			if st.Kind == kind {
				filtered = append(filtered, st)
			}
		}
		statuses = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": statuses,
		"count":   len(statuses),
	})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := deviceID(r)

	st, err := s.house.Status(id.Location, id.Name)
	if err != nil {
		writeNotFound(w, "device not found: "+id.Label())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := deviceID(r)

	if err := s.house.RemoveDevice(id.Location, id.Name); err != nil {
		writeNotFound(w, "device not found: "+id.Label())
		return
	}

	if s.repo != nil {
		// Devices added since the last save have no stored row yet.
		err := s.repo.Delete(r.Context(), id.Location, id.Name)
		if err != nil && !errors.Is(err, house.ErrDeviceNotFound) {
			s.logger.Error("failed to delete stored device", "id", id.Label(), "error", err)
			writeInternalError(w, "device removed but not deleted from storage")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleTurnDevice toggles a smart socket and returns its new snapshot.
func (s *Server) handleTurnDevice(w http.ResponseWriter, r *http.Request) {
	id := deviceID(r)

	ctx, cancel := context.WithTimeout(r.Context(), defaultTurnTimeout)
	defer cancel()

	err := bridge.Turn(ctx, s.house, id)

	var terr *device.TransitionError
	switch {
	case err == nil:
	case errors.Is(err, house.ErrDeviceNotFound):
		writeNotFound(w, "device not found: "+id.Label())
		return
	case errors.Is(err, bridge.ErrNotSwitchable):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeNotSwitchable, err.Error())
		return
	case errors.As(err, &terr):
		s.broadcastDevice(id)
		writeJSON(w, http.StatusConflict, Error{
			Status:  http.StatusConflict,
			Code:    ErrCodeConflict,
			Message: err.Error(),
			State:   string(terr.Got),
		})
		return
	default:
		writeInternalError(w, err.Error())
		return
	}

	st, err := s.house.Status(id.Location, id.Name)
	if err != nil {
		writeNotFound(w, "device not found: "+id.Label())
		return
	}
	s.hub.Broadcast(ChannelDevice, st)
	s.logger.Info("socket toggled", "id", id.Label(), "state", st.State)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) broadcastDevice(id house.DeviceID) {
	if st, err := s.house.Status(id.Location, id.Name); err == nil {
		s.hub.Broadcast(ChannelDevice, st)
	}
}

func deviceID(r *http.Request) house.DeviceID {
	return house.DeviceID{
		Location: chi.URLParam(r, "location"),
		Name:     chi.URLParam(r, "name"),
	}
}
