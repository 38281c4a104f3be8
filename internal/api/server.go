// Package api exposes the scan service over HTTP: point cloud listing
// and delivery, COLMAP workspace ingestion, the building hierarchy, and
// sensor and object placement.
package api

import (
	"errors"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/buildscan-data/buildscan/internal/colmap"
	"github.com/buildscan-data/buildscan/internal/httputil"
	"github.com/buildscan-data/buildscan/internal/pointcloud"
	"github.com/buildscan-data/buildscan/internal/store"
	"github.com/buildscan-data/buildscan/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	store   *store.Store
	loader  *pointcloud.Loader
	dataDir string
}

func NewServer(st *store.Store, loader *pointcloud.Loader, dataDir string) *Server {
	return &Server{
		store:   st,
		loader:  loader,
		dataDir: dataDir,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.showHealth)

	mux.HandleFunc("GET /pointclouds", s.listPointClouds)
	mux.HandleFunc("POST /pointclouds/upload", s.uploadPointCloud)
	mux.HandleFunc("GET /pointclouds/{filename}/info", s.showPointCloudInfo)
	mux.HandleFunc("GET /pointclouds/{filename}/data", s.servePointCloudData)
	mux.HandleFunc("GET /pointclouds/{filename}/profile", s.showPointCloudProfile)

	mux.HandleFunc("POST /colmap/load", s.loadColmapWorkspace)
	mux.HandleFunc("GET /colmap/cameras", s.listColmapCameras)
	mux.HandleFunc("GET /colmap/images", s.listColmapImages)
	mux.HandleFunc("POST /colmap/images/{id}/assign", s.assignColmapImage)

	mux.HandleFunc("GET /buildings", s.listBuildings)
	mux.HandleFunc("GET /buildings/{id}", s.showBuilding)
	mux.HandleFunc("GET /buildings/{id}/floors", s.listFloors)
	mux.HandleFunc("GET /floors/{id}", s.showFloor)
	mux.HandleFunc("GET /floors/{id}/rooms", s.listRooms)
	mux.HandleFunc("GET /rooms/{id}", s.showRoom)
	mux.HandleFunc("GET /rooms/{id}/detail", s.showRoomDetail)

	mux.HandleFunc("GET /sensors", s.listSensors)
	mux.HandleFunc("POST /sensors", s.placeSensor)
	mux.HandleFunc("GET /sensors/{id}", s.showSensor)
	mux.HandleFunc("POST /sensors/{id}/reading", s.recordSensorReading)
	mux.HandleFunc("GET /sensors/{id}/history", s.showSensorHistory)
	mux.HandleFunc("DELETE /sensors/{id}", s.removeSensor)

	mux.HandleFunc("GET /objects", s.listObjects)
	mux.HandleFunc("POST /objects", s.placeObject)
	mux.HandleFunc("DELETE /objects/{id}", s.removeObject)

	return mux
}

func (s *Server) showHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// writeError maps the error taxonomy onto HTTP statuses: missing files
// and entities are 404, bad input data is 400, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	var parseErr *colmap.ParseError
	var loadErr *pointcloud.LoadError
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, store.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.As(err, &parseErr), errors.As(err, &loadErr),
		errors.Is(err, pointcloud.ErrEmptyCloud):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalServerError(w, err.Error())
	}
}
