package store

import (
	"fmt"
	"sort"

	"github.com/buildscan-data/buildscan/internal/colmap"
)

// ImageRecord is a registered COLMAP image plus the room it has been
// assigned to, if any.
type ImageRecord struct {
	colmap.Image
	RoomID string `json:"room_id,omitempty"`
}

// SetReconstruction replaces the in-memory COLMAP data with the given
// workspace. Room assignments made against the previous reconstruction
// are dropped from memory; the room_images rows persist.
func (s *Store) SetReconstruction(ws *colmap.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cameras = make(map[int]colmap.Camera, len(ws.Cameras))
	for _, cam := range ws.Cameras {
		s.cameras[cam.ID] = cam
	}
	s.images = make(map[int]ImageRecord, len(ws.Images))
	for _, img := range ws.Images {
		s.images[img.ID] = ImageRecord{Image: img}
	}
}

func (s *Store) Cameras() []colmap.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cameras := make([]colmap.Camera, 0, len(s.cameras))
	for _, cam := range s.cameras {
		cameras = append(cameras, cam)
	}
	sort.Slice(cameras, func(i, j int) bool { return cameras[i].ID < cameras[j].ID })
	return cameras
}

func (s *Store) Images() []ImageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := make([]ImageRecord, 0, len(s.images))
	for _, img := range s.images {
		images = append(images, img)
	}
	sort.Slice(images, func(i, j int) bool { return images[i].ID < images[j].ID })
	return images
}

// AssignImage links a registered image to a room. The link is recorded
// both on the in-memory image and, keyed by filename, in the database so
// it survives a reload of the same workspace.
func (s *Store) AssignImage(imageID int, roomID string) (*ImageRecord, error) {
	if _, err := s.Room(roomID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[imageID]
	if !ok {
		return nil, fmt.Errorf("image %d: %w", imageID, ErrNotFound)
	}
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO room_images (room_id, image_name) VALUES (?, ?)`,
		roomID, img.Name); err != nil {
		return nil, err
	}
	img.RoomID = roomID
	s.images[imageID] = img
	return &img, nil
}
