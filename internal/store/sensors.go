package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buildscan-data/buildscan/internal/geom"
	"github.com/google/uuid"
)

// historyCap bounds the retained reading history per sensor. Older rows
// are pruned on insert.
const historyCap = 1000

func (s *Store) Sensors() ([]Sensor, error) {
	return s.sensorsWhere("")
}

// SensorsInRoom lists the sensors placed in a room. An unknown room
// yields an empty list.
func (s *Store) SensorsInRoom(roomID string) ([]Sensor, error) {
	return s.sensorsWhere(`WHERE room_id = ?`, roomID)
}

func (s *Store) Sensor(id string) (*Sensor, error) {
	sensors, err := s.sensorsWhere(`WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(sensors) == 0 {
		return nil, fmt.Errorf("sensor %s: %w", id, ErrNotFound)
	}
	return &sensors[0], nil
}

// AddSensor places a sensor in a room. A missing ID is filled with a
// fresh UUID; the room must exist.
func (s *Store) AddSensor(sensor Sensor) (*Sensor, error) {
	if sensor.ID == "" {
		sensor.ID = uuid.NewString()
	}
	if _, err := s.Room(sensor.RoomID); err != nil {
		return nil, err
	}

	transformJSON, err := json.Marshal(sensor.Transform)
	if err != nil {
		return nil, err
	}
	config := sensor.Config
	if config == nil {
		config = map[string]any{}
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`INSERT INTO sensors (id, room_id, type, name, transform_json, config_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sensor.ID, sensor.RoomID, sensor.Type, sensor.Name,
		string(transformJSON), string(configJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to add sensor: %w", err)
	}
	return &sensor, nil
}

// UpdateReading records a new reading for the sensor, updating the
// latest-value snapshot and appending to the history. A zero timestamp is
// stamped with the current time.
func (s *Store) UpdateReading(id string, reading SensorReading) (*SensorReading, error) {
	if _, err := s.Sensor(id); err != nil {
		return nil, err
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}

	readingJSON, err := json.Marshal(reading)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(
		`UPDATE sensors SET last_reading_json = ? WHERE id = ?`,
		string(readingJSON), id); err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(
		`INSERT INTO sensor_readings (sensor_id, value, unit, timestamp)
		 VALUES (?, ?, ?, ?)`,
		id, reading.Value, reading.Unit, reading.Timestamp.Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	// Prune everything older than the newest historyCap rows.
	if _, err := s.db.Exec(
		`DELETE FROM sensor_readings WHERE sensor_id = ? AND reading_id NOT IN (
			SELECT reading_id FROM sensor_readings WHERE sensor_id = ?
			ORDER BY reading_id DESC LIMIT ?)`,
		id, id, historyCap); err != nil {
		return nil, err
	}
	return &reading, nil
}

// History returns up to limit of the sensor's most recent readings in
// chronological order. limit <= 0 means the full retained history.
func (s *Store) History(id string, limit int) ([]SensorReading, error) {
	if _, err := s.Sensor(id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}

	rows, err := s.db.Query(
		`SELECT value, unit, timestamp FROM (
			SELECT reading_id, value, unit, timestamp FROM sensor_readings
			WHERE sensor_id = ? ORDER BY reading_id DESC LIMIT ?)
		 ORDER BY reading_id ASC`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []SensorReading{}
	for rows.Next() {
		var r SensorReading
		var ts string
		if err := rows.Scan(&r.Value, &r.Unit, &ts); err != nil {
			return nil, err
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("bad timestamp in history for sensor %s: %w", id, err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// RemoveSensor deletes the sensor and its history. Removing a sensor
// that does not exist is not an error.
func (s *Store) RemoveSensor(id string) error {
	if _, err := s.db.Exec(`DELETE FROM sensor_readings WHERE sensor_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM sensors WHERE id = ?`, id)
	return err
}

func (s *Store) sensorsWhere(where string, args ...any) ([]Sensor, error) {
	rows, err := s.db.Query(
		`SELECT id, room_id, type, name, transform_json, config_json, last_reading_json
		 FROM sensors `+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sensors := []Sensor{}
	for rows.Next() {
		var sn Sensor
		var transformJSON, configJSON string
		var readingJSON sql.NullString
		if err := rows.Scan(&sn.ID, &sn.RoomID, &sn.Type, &sn.Name,
			&transformJSON, &configJSON, &readingJSON); err != nil {
			return nil, err
		}
		sn.Transform = geom.NewTransform()
		if err := json.Unmarshal([]byte(transformJSON), &sn.Transform); err != nil {
			return nil, fmt.Errorf("bad transform for sensor %s: %w", sn.ID, err)
		}
		if err := json.Unmarshal([]byte(configJSON), &sn.Config); err != nil {
			return nil, fmt.Errorf("bad config for sensor %s: %w", sn.ID, err)
		}
		if readingJSON.Valid {
			var reading SensorReading
			if err := json.Unmarshal([]byte(readingJSON.String), &reading); err != nil {
				return nil, fmt.Errorf("bad reading for sensor %s: %w", sn.ID, err)
			}
			sn.LastReading = &reading
		}
		sensors = append(sensors, sn)
	}
	return sensors, rows.Err()
}
