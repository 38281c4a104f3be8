package api

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/buildscan-data/buildscan/internal/colmap"
	"github.com/buildscan-data/buildscan/internal/geom"
	"github.com/buildscan-data/buildscan/internal/httputil"
	"github.com/buildscan-data/buildscan/internal/security"
	"github.com/buildscan-data/buildscan/internal/store"
)

type colmapLoadResponse struct {
	Workspace string `json:"workspace"`
	Cameras   int    `json:"cameras"`
	Images    int    `json:"images"`
	Points    int    `json:"points"`
}

// loadColmapWorkspace parses the named reconstruction under
// <dataDir>/colmap/ and replaces the in-memory camera and image sets.
func (s *Server) loadColmapWorkspace(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("workspace")
	if name == "" {
		name = "default"
	}
	name = security.SanitizeFilename(name)

	dir := filepath.Join(s.dataDir, "colmap", name)
	ws, err := colmap.LoadWorkspace(dir)
	if err != nil {
		writeError(w, err)
		return
	}
	s.store.SetReconstruction(ws)

	httputil.WriteJSONOK(w, colmapLoadResponse{
		Workspace: name,
		Cameras:   len(ws.Cameras),
		Images:    len(ws.Images),
		Points:    len(ws.Points),
	})
}

func (s *Server) listColmapCameras(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, s.store.Cameras())
}

type colmapImageResponse struct {
	store.ImageRecord
	WorldPosition geom.Vec3 `json:"world_position"`
}

func (s *Server) listColmapImages(w http.ResponseWriter, r *http.Request) {
	images := s.store.Images()
	out := make([]colmapImageResponse, len(images))
	for i, img := range images {
		out[i] = colmapImageResponse{
			ImageRecord:   img,
			WorldPosition: img.WorldPosition(),
		}
	}
	httputil.WriteJSONOK(w, out)
}

func (s *Server) assignColmapImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httputil.BadRequest(w, "invalid image id")
		return
	}
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		httputil.BadRequest(w, "missing room_id parameter")
		return
	}

	img, err := s.store.AssignImage(imageID, roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, img)
}
