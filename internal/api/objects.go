package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buildscan-data/buildscan/internal/geom"
	"github.com/buildscan-data/buildscan/internal/httputil"
	"github.com/buildscan-data/buildscan/internal/store"
)

type placeObjectRequest struct {
	RoomID    string          `json:"room_id"`
	Model     string          `json:"model"`
	Transform *geom.Transform `json:"transform"`
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	var objects []store.PlacedObject
	var err error
	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		objects, err = s.store.ObjectsInRoom(roomID)
	} else {
		objects, err = s.store.Objects()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, objects)
}

func (s *Server) placeObject(w http.ResponseWriter, r *http.Request) {
	var req placeObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.RoomID == "" || req.Model == "" {
		httputil.BadRequest(w, "room_id and model are required")
		return
	}

	obj := store.PlacedObject{
		RoomID:    req.RoomID,
		Model:     req.Model,
		Transform: geom.NewTransform(),
	}
	if req.Transform != nil {
		obj.Transform = *req.Transform
	}

	placed, err := s.store.PlaceObject(obj)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, placed)
}

func (s *Server) removeObject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveObject(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
