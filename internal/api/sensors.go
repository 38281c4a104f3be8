package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/buildscan-data/buildscan/internal/geom"
	"github.com/buildscan-data/buildscan/internal/httputil"
	"github.com/buildscan-data/buildscan/internal/store"
)

type placeSensorRequest struct {
	RoomID    string          `json:"room_id"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Transform *geom.Transform `json:"transform"`
	Config    map[string]any  `json:"config"`
}

func (s *Server) listSensors(w http.ResponseWriter, r *http.Request) {
	var sensors []store.Sensor
	var err error
	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		sensors, err = s.store.SensorsInRoom(roomID)
	} else {
		sensors, err = s.store.Sensors()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, sensors)
}

func (s *Server) placeSensor(w http.ResponseWriter, r *http.Request) {
	var req placeSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.RoomID == "" || req.Type == "" || req.Name == "" {
		httputil.BadRequest(w, "room_id, type and name are required")
		return
	}

	sensor := store.Sensor{
		RoomID:    req.RoomID,
		Type:      req.Type,
		Name:      req.Name,
		Transform: geom.NewTransform(),
		Config:    req.Config,
	}
	if req.Transform != nil {
		sensor.Transform = *req.Transform
	}

	added, err := s.store.AddSensor(sensor)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, added)
}

func (s *Server) showSensor(w http.ResponseWriter, r *http.Request) {
	sensor, err := s.store.Sensor(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, sensor)
}

func (s *Server) recordSensorReading(w http.ResponseWriter, r *http.Request) {
	var reading store.SensorReading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	recorded, err := s.store.UpdateReading(r.PathValue("id"), reading)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, recorded)
}

// defaultHistoryLimit is how many readings a history request returns
// when the caller does not pass a limit.
const defaultHistoryLimit = 100

func (s *Server) showSensorHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	history, err := s.store.History(r.PathValue("id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, history)
}

func (s *Server) removeSensor(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveSensor(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
