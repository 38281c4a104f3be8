package api

import (
	"net/http"

	"github.com/buildscan-data/buildscan/internal/httputil"
)

func (s *Server) listBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := s.store.Buildings()
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, buildings)
}

func (s *Server) showBuilding(w http.ResponseWriter, r *http.Request) {
	building, err := s.store.Building(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, building)
}

func (s *Server) listFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := s.store.Floors(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, floors)
}

func (s *Server) showFloor(w http.ResponseWriter, r *http.Request) {
	floor, err := s.store.Floor(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, floor)
}

func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.Rooms(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, rooms)
}

func (s *Server) showRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.store.Room(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, room)
}

func (s *Server) showRoomDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.RoomDetail(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, detail)
}
