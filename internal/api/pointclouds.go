package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/buildscan-data/buildscan/internal/httputil"
	"github.com/buildscan-data/buildscan/internal/pointcloud"
	"github.com/buildscan-data/buildscan/internal/security"
)

// cloudExtensions are the file types listed and accepted for upload.
var cloudExtensions = map[string]bool{
	".ply": true, ".pcd": true, ".xyz": true, ".txt": true,
}

// maxUploadBytes caps point cloud uploads at 512 MB.
const maxUploadBytes = 512 << 20

type pointCloudFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

func (s *Server) listPointClouds(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		writeError(w, fmt.Errorf("failed to read data directory: %w", err))
		return
	}

	files := []pointCloudFile{}
	for _, entry := range entries {
		if entry.IsDir() || !cloudExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, pointCloudFile{Name: entry.Name(), SizeBytes: info.Size()})
	}
	httputil.WriteJSONOK(w, files)
}

// cloudPath resolves a request filename inside the data directory,
// rejecting anything that would escape it.
func (s *Server) cloudPath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid point cloud filename %q", filename)
	}
	path := filepath.Join(s.dataDir, filename)
	if err := security.ValidatePathWithinDirectory(path, s.dataDir); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Server) showPointCloudInfo(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	path, err := s.cloudPath(filename)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	cloud, err := s.loader.Load(path)
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := pointcloud.Describe(cloud, filename)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, info)
}

func (s *Server) servePointCloudData(w http.ResponseWriter, r *http.Request) {
	path, err := s.cloudPath(r.PathValue("filename"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	cloud, err := s.loader.Load(path)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteOctetStream(w, pointcloud.Encode(cloud))
}

func (s *Server) uploadPointCloud(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("missing upload file: %v", err))
		return
	}
	defer file.Close()

	name := security.SanitizeFilename(filepath.Base(header.Filename))
	if !cloudExtensions[strings.ToLower(filepath.Ext(name))] {
		httputil.BadRequest(w, fmt.Sprintf("unsupported file type %q", filepath.Ext(name)))
		return
	}
	path, err := s.cloudPath(name)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	out, err := os.Create(path)
	if err != nil {
		writeError(w, fmt.Errorf("failed to create %s: %w", name, err))
		return
	}
	defer out.Close()

	size, err := io.Copy(out, file)
	if err != nil {
		writeError(w, fmt.Errorf("failed to store %s: %w", name, err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, pointCloudFile{Name: name, SizeBytes: size})
}
