package store

import (
	"encoding/json"
	"fmt"

	"github.com/buildscan-data/buildscan/internal/geom"
	"github.com/google/uuid"
)

func (s *Store) Objects() ([]PlacedObject, error) {
	return s.objectsWhere("")
}

// ObjectsInRoom lists the objects placed in a room. An unknown room
// yields an empty list.
func (s *Store) ObjectsInRoom(roomID string) ([]PlacedObject, error) {
	return s.objectsWhere(`WHERE room_id = ?`, roomID)
}

// PlaceObject anchors a model in a room. A missing ID is filled with a
// fresh UUID; the room must exist.
func (s *Store) PlaceObject(obj PlacedObject) (*PlacedObject, error) {
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	if _, err := s.Room(obj.RoomID); err != nil {
		return nil, err
	}

	transformJSON, err := json.Marshal(obj.Transform)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`INSERT INTO placed_objects (id, room_id, model, transform_json) VALUES (?, ?, ?, ?)`,
		obj.ID, obj.RoomID, obj.Model, string(transformJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to place object: %w", err)
	}
	return &obj, nil
}

// RemoveObject deletes a placed object. Removing one that does not exist
// is not an error.
func (s *Store) RemoveObject(id string) error {
	_, err := s.db.Exec(`DELETE FROM placed_objects WHERE id = ?`, id)
	return err
}

func (s *Store) objectsWhere(where string, args ...any) ([]PlacedObject, error) {
	rows, err := s.db.Query(
		`SELECT id, room_id, model, transform_json FROM placed_objects `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objects := []PlacedObject{}
	for rows.Next() {
		var obj PlacedObject
		var transformJSON string
		if err := rows.Scan(&obj.ID, &obj.RoomID, &obj.Model, &transformJSON); err != nil {
			return nil, err
		}
		obj.Transform = geom.NewTransform()
		if err := json.Unmarshal([]byte(transformJSON), &obj.Transform); err != nil {
			return nil, fmt.Errorf("bad transform for object %s: %w", obj.ID, err)
		}
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}
