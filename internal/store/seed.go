package store

import (
	"fmt"
	"log"

	"github.com/buildscan-data/buildscan/internal/geom"
	"github.com/google/uuid"
)

// seedIfEmpty populates a fresh database with a demo building so the
// frontend has something to render before any real data is ingested.
// Databases that already contain a building are left alone.
func (s *Store) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM buildings`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	log.Printf("seeding demo building")

	const buildingID = "building_01"
	if _, err := s.db.Exec(
		`INSERT INTO buildings (id, name, address) VALUES (?, ?, ?)`,
		buildingID, "HQ Building", "1 Demo Street"); err != nil {
		return err
	}

	floorNames := []string{"Ground Floor", "First Floor", "Second Floor"}
	roomNames := []string{"Lobby", "Open Office", "Meeting Room"}
	sensorTypes := []string{
		SensorTemperature, SensorHumidity, SensorCO2, SensorOccupancy, SensorLight,
	}

	var roomIDs []string
	for level, floorName := range floorNames {
		floorID := fmt.Sprintf("floor_%d", level)
		if _, err := s.db.Exec(
			`INSERT INTO floors (id, building_id, name, level) VALUES (?, ?, ?, ?)`,
			floorID, buildingID, floorName, level); err != nil {
			return err
		}

		for i, roomName := range roomNames {
			roomID := fmt.Sprintf("room_%d_%d", level, i)
			min := geom.Vec3{X: float64(i) * 6, Y: 0, Z: float64(level) * 3}
			max := geom.Vec3{X: float64(i)*6 + 5, Y: 4, Z: float64(level)*3 + 2.7}
			if _, err := s.db.Exec(
				`INSERT INTO rooms (id, floor_id, name, min_x, min_y, min_z, max_x, max_y, max_z)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				roomID, floorID, roomName,
				min.X, min.Y, min.Z, max.X, max.Y, max.Z); err != nil {
				return err
			}

			roomIDs = append(roomIDs, roomID)
		}
	}

	// Ten sensors spread round-robin over the nine rooms.
	for i := 0; i < 10; i++ {
		sensorType := sensorTypes[i%len(sensorTypes)]
		sensor := Sensor{
			ID:        uuid.NewString(),
			RoomID:    roomIDs[i%len(roomIDs)],
			Type:      sensorType,
			Name:      fmt.Sprintf("%s-%02d", sensorType, i+1),
			Transform: geom.NewTransform(),
		}
		if _, err := s.AddSensor(sensor); err != nil {
			return err
		}
	}
	return nil
}
