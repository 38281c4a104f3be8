package store

import (
	"time"

	"github.com/buildscan-data/buildscan/internal/geom"
)

// Sensor type identifiers as stored in the sensors.type column.
const (
	SensorTemperature = "temperature"
	SensorHumidity    = "humidity"
	SensorCO2         = "co2"
	SensorOccupancy   = "occupancy"
	SensorLight       = "light"
)

type Building struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	FloorIDs []string `json:"floors"`
}

type Floor struct {
	ID         string   `json:"id"`
	BuildingID string   `json:"building_id"`
	Name       string   `json:"name"`
	Level      int      `json:"level"`
	RoomIDs    []string `json:"rooms"`
}

// Room is an axis-aligned box within a floor. Bounds are in the shared
// building coordinate frame, meters.
type Room struct {
	ID        string    `json:"id"`
	FloorID   string    `json:"floor_id"`
	Name      string    `json:"name"`
	BoundsMin geom.Vec3 `json:"bounds_min"`
	BoundsMax geom.Vec3 `json:"bounds_max"`
	ImageIDs  []string  `json:"images,omitempty"`
}

// RoomDetail is the expanded view: the room plus everything placed in it.
type RoomDetail struct {
	Room    Room           `json:"room"`
	Sensors []Sensor       `json:"sensors"`
	Objects []PlacedObject `json:"objects"`
}

type SensorReading struct {
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Sensor struct {
	ID          string         `json:"id"`
	RoomID      string         `json:"room_id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Transform   geom.Transform `json:"transform"`
	Config      map[string]any `json:"config,omitempty"`
	LastReading *SensorReading `json:"last_reading,omitempty"`
}

type PlacedObject struct {
	ID        string         `json:"id"`
	RoomID    string         `json:"room_id"`
	Model     string         `json:"model"`
	Transform geom.Transform `json:"transform"`
}
