package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/buildscan-data/buildscan/internal/geom"
)

func (s *Store) Buildings() ([]Building, error) {
	rows, err := s.db.Query(`SELECT id, name, address FROM buildings ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []Building
	for rows.Next() {
		var b Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range buildings {
		if buildings[i].FloorIDs, err = s.childIDs(
			`SELECT id FROM floors WHERE building_id = ? ORDER BY level`, buildings[i].ID); err != nil {
			return nil, err
		}
	}
	return buildings, nil
}

func (s *Store) Building(id string) (*Building, error) {
	var b Building
	err := s.db.QueryRow(`SELECT id, name, address FROM buildings WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("building %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if b.FloorIDs, err = s.childIDs(
		`SELECT id FROM floors WHERE building_id = ? ORDER BY level`, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Floors(buildingID string) ([]Floor, error) {
	if _, err := s.Building(buildingID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, building_id, name, level FROM floors WHERE building_id = ? ORDER BY level`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var floors []Floor
	for rows.Next() {
		var f Floor
		if err := rows.Scan(&f.ID, &f.BuildingID, &f.Name, &f.Level); err != nil {
			return nil, err
		}
		floors = append(floors, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range floors {
		if floors[i].RoomIDs, err = s.childIDs(
			`SELECT id FROM rooms WHERE floor_id = ? ORDER BY name`, floors[i].ID); err != nil {
			return nil, err
		}
	}
	return floors, nil
}

func (s *Store) Floor(id string) (*Floor, error) {
	var f Floor
	err := s.db.QueryRow(`SELECT id, building_id, name, level FROM floors WHERE id = ?`, id).
		Scan(&f.ID, &f.BuildingID, &f.Name, &f.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("floor %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if f.RoomIDs, err = s.childIDs(
		`SELECT id FROM rooms WHERE floor_id = ? ORDER BY name`, id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) Rooms(floorID string) ([]Room, error) {
	if _, err := s.Floor(floorID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, floor_id, name, min_x, min_y, min_z, max_x, max_y, max_z
		 FROM rooms WHERE floor_id = ? ORDER BY name`, floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].ImageIDs, err = s.childIDs(
			`SELECT image_name FROM room_images WHERE room_id = ? ORDER BY image_name`, rooms[i].ID); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

func (s *Store) Room(id string) (*Room, error) {
	row := s.db.QueryRow(
		`SELECT id, floor_id, name, min_x, min_y, min_z, max_x, max_y, max_z
		 FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if r.ImageIDs, err = s.childIDs(
		`SELECT image_name FROM room_images WHERE room_id = ? ORDER BY image_name`, id); err != nil {
		return nil, err
	}
	return r, nil
}

// RoomDetail returns the room together with its sensors and placed
// objects, the payload the AR client uses to populate a scene.
func (s *Store) RoomDetail(id string) (*RoomDetail, error) {
	room, err := s.Room(id)
	if err != nil {
		return nil, err
	}
	sensors, err := s.SensorsInRoom(id)
	if err != nil {
		return nil, err
	}
	objects, err := s.ObjectsInRoom(id)
	if err != nil {
		return nil, err
	}
	return &RoomDetail{Room: *room, Sensors: sensors, Objects: objects}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*Room, error) {
	var r Room
	var min, max geom.Vec3
	if err := row.Scan(&r.ID, &r.FloorID, &r.Name,
		&min.X, &min.Y, &min.Z, &max.X, &max.Y, &max.Z); err != nil {
		return nil, err
	}
	r.BoundsMin, r.BoundsMax = min, max
	return &r, nil
}

// childIDs runs a single-column query and collects the results. Used for
// the id lists embedded in hierarchy responses.
func (s *Store) childIDs(query string, arg any) ([]string, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
