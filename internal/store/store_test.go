package store

import (
	"errors"
	"testing"
	"time"

	"github.com/buildscan-data/buildscan/internal/colmap"
	"github.com/buildscan-data/buildscan/internal/geom"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func firstRoomID(t *testing.T, s *Store) string {
	t.Helper()
	buildings, err := s.Buildings()
	if err != nil {
		t.Fatalf("Buildings failed: %v", err)
	}
	floors, err := s.Floors(buildings[0].ID)
	if err != nil {
		t.Fatalf("Floors failed: %v", err)
	}
	rooms, err := s.Rooms(floors[0].ID)
	if err != nil {
		t.Fatalf("Rooms failed: %v", err)
	}
	return rooms[0].ID
}

func TestSeedDemoBuilding(t *testing.T) {
	s := setupTestStore(t)

	buildings, err := s.Buildings()
	if err != nil {
		t.Fatalf("Buildings failed: %v", err)
	}
	if len(buildings) != 1 {
		t.Fatalf("Expected 1 seeded building, got %d", len(buildings))
	}
	if buildings[0].Name != "HQ Building" {
		t.Errorf("Expected HQ Building, got %q", buildings[0].Name)
	}
	if len(buildings[0].FloorIDs) != 3 {
		t.Errorf("Expected 3 floors, got %d", len(buildings[0].FloorIDs))
	}

	roomCount := 0
	for _, floorID := range buildings[0].FloorIDs {
		rooms, err := s.Rooms(floorID)
		if err != nil {
			t.Fatalf("Rooms failed: %v", err)
		}
		roomCount += len(rooms)
	}
	if roomCount != 9 {
		t.Errorf("Expected 9 rooms, got %d", roomCount)
	}

	sensors, err := s.Sensors()
	if err != nil {
		t.Fatalf("Sensors failed: %v", err)
	}
	if len(sensors) != 10 {
		t.Errorf("Expected 10 seeded sensors, got %d", len(sensors))
	}
}

func TestSeedRunsOnce(t *testing.T) {
	// Reopening an already-seeded database must not duplicate the demo
	// data. An in-memory database cannot be reopened, so run the seeder
	// again directly.
	s := setupTestStore(t)
	if err := s.seedIfEmpty(); err != nil {
		t.Fatalf("second seed pass failed: %v", err)
	}

	buildings, err := s.Buildings()
	if err != nil {
		t.Fatalf("Buildings failed: %v", err)
	}
	if len(buildings) != 1 {
		t.Errorf("Expected 1 building after reseed, got %d", len(buildings))
	}
}

func TestHierarchyNotFound(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.Building("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Building: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Floor("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Floor: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Room("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Room: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Floors("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Floors: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Rooms("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rooms: err = %v, want ErrNotFound", err)
	}
}

func TestRoomBoundsRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	room, err := s.Room(firstRoomID(t, s))
	if err != nil {
		t.Fatalf("Room failed: %v", err)
	}
	if room.BoundsMax.X <= room.BoundsMin.X {
		t.Errorf("Degenerate bounds: %+v / %+v", room.BoundsMin, room.BoundsMax)
	}
}

func TestAddAndRemoveSensor(t *testing.T) {
	s := setupTestStore(t)
	roomID := firstRoomID(t, s)

	added, err := s.AddSensor(Sensor{
		RoomID:    roomID,
		Type:      SensorTemperature,
		Name:      "window-temp",
		Transform: geom.NewTransform(),
		Config:    map[string]any{"interval_s": 60.0},
	})
	if err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}
	if added.ID == "" {
		t.Fatal("Expected generated sensor ID")
	}

	got, err := s.Sensor(added.ID)
	if err != nil {
		t.Fatalf("Sensor failed: %v", err)
	}
	if got.Name != "window-temp" || got.Type != SensorTemperature {
		t.Errorf("Unexpected sensor %+v", got)
	}
	if got.Config["interval_s"] != 60.0 {
		t.Errorf("Config not preserved: %+v", got.Config)
	}
	if got.LastReading != nil {
		t.Error("Expected no reading on a fresh sensor")
	}

	if err := s.RemoveSensor(added.ID); err != nil {
		t.Fatalf("RemoveSensor failed: %v", err)
	}
	if _, err := s.Sensor(added.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Sensor after remove: err = %v, want ErrNotFound", err)
	}

	// Removing again is a no-op.
	if err := s.RemoveSensor(added.ID); err != nil {
		t.Errorf("Second RemoveSensor failed: %v", err)
	}
}

func TestAddSensorUnknownRoom(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.AddSensor(Sensor{RoomID: "nope", Type: SensorCO2, Name: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSensorsInRoom(t *testing.T) {
	s := setupTestStore(t)
	buildings, err := s.Buildings()
	if err != nil {
		t.Fatalf("Buildings failed: %v", err)
	}
	floors, err := s.Floors(buildings[0].ID)
	if err != nil {
		t.Fatalf("Floors failed: %v", err)
	}
	rooms, err := s.Rooms(floors[0].ID)
	if err != nil {
		t.Fatalf("Rooms failed: %v", err)
	}
	if len(rooms) < 2 {
		t.Fatalf("Need at least 2 seeded rooms, got %d", len(rooms))
	}

	added, err := s.AddSensor(Sensor{
		RoomID:    rooms[0].ID,
		Type:      SensorOccupancy,
		Name:      "door-counter",
		Transform: geom.NewTransform(),
	})
	if err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}

	inRoom, err := s.SensorsInRoom(rooms[0].ID)
	if err != nil {
		t.Fatalf("SensorsInRoom failed: %v", err)
	}
	found := false
	for _, sn := range inRoom {
		if sn.RoomID != rooms[0].ID {
			t.Errorf("Sensor %s belongs to room %s, want %s", sn.ID, sn.RoomID, rooms[0].ID)
		}
		if sn.ID == added.ID {
			found = true
		}
	}
	if !found {
		t.Error("Added sensor missing from its room's list")
	}

	neighbors, err := s.SensorsInRoom(rooms[1].ID)
	if err != nil {
		t.Fatalf("SensorsInRoom failed: %v", err)
	}
	for _, sn := range neighbors {
		if sn.ID == added.ID {
			t.Errorf("Sensor %s leaked into room %s", sn.ID, rooms[1].ID)
		}
	}

	none, err := s.SensorsInRoom("nope")
	if err != nil {
		t.Fatalf("SensorsInRoom failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected empty list for unknown room, got %d sensors", len(none))
	}
}

func TestUpdateReadingAndHistory(t *testing.T) {
	s := setupTestStore(t)
	roomID := firstRoomID(t, s)

	sensor, err := s.AddSensor(Sensor{RoomID: roomID, Type: SensorHumidity, Name: "rh"})
	if err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.UpdateReading(sensor.ID, SensorReading{
			Value:     40 + float64(i),
			Unit:      "%",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("UpdateReading failed: %v", err)
		}
	}

	got, err := s.Sensor(sensor.ID)
	if err != nil {
		t.Fatalf("Sensor failed: %v", err)
	}
	if got.LastReading == nil || got.LastReading.Value != 44 {
		t.Errorf("LastReading = %+v, want value 44", got.LastReading)
	}

	history, err := s.History(sensor.ID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("Expected 5 readings, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Fatalf("History out of order at %d: %v before %v",
				i, history[i].Timestamp, history[i-1].Timestamp)
		}
	}

	limited, err := s.History(sensor.ID, 2)
	if err != nil {
		t.Fatalf("History(2) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Expected 2 readings, got %d", len(limited))
	}
	// The limit keeps the newest readings.
	if limited[0].Value != 43 || limited[1].Value != 44 {
		t.Errorf("Limited history = %v, %v; want 43, 44", limited[0].Value, limited[1].Value)
	}
}

func TestReadingZeroTimestampStamped(t *testing.T) {
	s := setupTestStore(t)
	sensor, err := s.AddSensor(Sensor{RoomID: firstRoomID(t, s), Type: SensorLight, Name: "lux"})
	if err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}

	reading, err := s.UpdateReading(sensor.ID, SensorReading{Value: 500, Unit: "lx"})
	if err != nil {
		t.Fatalf("UpdateReading failed: %v", err)
	}
	if reading.Timestamp.IsZero() {
		t.Error("Expected timestamp to be stamped")
	}
}

func TestHistoryPrunedToCap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cap test in short mode")
	}
	s := setupTestStore(t)
	sensor, err := s.AddSensor(Sensor{RoomID: firstRoomID(t, s), Type: SensorCO2, Name: "co2"})
	if err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < historyCap+10; i++ {
		_, err := s.UpdateReading(sensor.ID, SensorReading{
			Value:     float64(i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("UpdateReading %d failed: %v", i, err)
		}
	}

	history, err := s.History(sensor.ID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != historyCap {
		t.Fatalf("Expected history capped at %d, got %d", historyCap, len(history))
	}
	// The oldest rows are the ones dropped.
	if history[0].Value != 10 {
		t.Errorf("Oldest retained value = %v, want 10", history[0].Value)
	}
}

func TestReadingUnknownSensor(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.UpdateReading("nope", SensorReading{Value: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateReading: err = %v, want ErrNotFound", err)
	}
	if _, err := s.History("nope", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("History: err = %v, want ErrNotFound", err)
	}
}

func TestPlaceAndRemoveObject(t *testing.T) {
	s := setupTestStore(t)
	roomID := firstRoomID(t, s)

	transform := geom.NewTransform()
	transform.Position = geom.Vec3{X: 1, Y: 2, Z: 3}
	placed, err := s.PlaceObject(PlacedObject{
		RoomID:    roomID,
		Model:     "chair.glb",
		Transform: transform,
	})
	if err != nil {
		t.Fatalf("PlaceObject failed: %v", err)
	}
	if placed.ID == "" {
		t.Fatal("Expected generated object ID")
	}

	objects, err := s.Objects()
	if err != nil {
		t.Fatalf("Objects failed: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(objects))
	}
	if objects[0].Transform.Position != (geom.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Transform not preserved: %+v", objects[0].Transform)
	}

	if err := s.RemoveObject(placed.ID); err != nil {
		t.Fatalf("RemoveObject failed: %v", err)
	}
	objects, err = s.Objects()
	if err != nil {
		t.Fatalf("Objects failed: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("Expected 0 objects after remove, got %d", len(objects))
	}
}

func TestObjectsInRoom(t *testing.T) {
	s := setupTestStore(t)
	buildings, err := s.Buildings()
	if err != nil {
		t.Fatalf("Buildings failed: %v", err)
	}
	floors, err := s.Floors(buildings[0].ID)
	if err != nil {
		t.Fatalf("Floors failed: %v", err)
	}
	rooms, err := s.Rooms(floors[0].ID)
	if err != nil {
		t.Fatalf("Rooms failed: %v", err)
	}
	if len(rooms) < 2 {
		t.Fatalf("Need at least 2 seeded rooms, got %d", len(rooms))
	}

	placed, err := s.PlaceObject(PlacedObject{RoomID: rooms[0].ID, Model: "desk.glb", Transform: geom.NewTransform()})
	if err != nil {
		t.Fatalf("PlaceObject failed: %v", err)
	}
	if _, err := s.PlaceObject(PlacedObject{RoomID: rooms[1].ID, Model: "plant.glb", Transform: geom.NewTransform()}); err != nil {
		t.Fatalf("PlaceObject failed: %v", err)
	}

	objects, err := s.ObjectsInRoom(rooms[0].ID)
	if err != nil {
		t.Fatalf("ObjectsInRoom failed: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("Expected 1 object in room, got %d", len(objects))
	}
	if objects[0].ID != placed.ID {
		t.Errorf("Object ID = %s, want %s", objects[0].ID, placed.ID)
	}

	none, err := s.ObjectsInRoom("nope")
	if err != nil {
		t.Fatalf("ObjectsInRoom failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected empty list for unknown room, got %d objects", len(none))
	}
}

func TestObjectUnknownRoom(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.PlaceObject(PlacedObject{RoomID: "nope", Model: "chair.glb"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func demoWorkspace() *colmap.Workspace {
	return &colmap.Workspace{
		Cameras: []colmap.Camera{
			{ID: 2, Model: "PINHOLE", Width: 640, Height: 480, Params: []float64{500, 500, 320, 240}},
			{ID: 1, Model: "SIMPLE_PINHOLE", Width: 640, Height: 480, Params: []float64{500, 320, 240}},
		},
		Images: []colmap.Image{
			{ID: 7, CameraID: 1, Name: "frame007.jpg", Rotation: geom.Identity()},
			{ID: 3, CameraID: 2, Name: "frame003.jpg", Rotation: geom.Identity()},
		},
		HasCameras: true,
		HasImages:  true,
	}
}

func TestReconstructionRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	s.SetReconstruction(demoWorkspace())

	cameras := s.Cameras()
	if len(cameras) != 2 || cameras[0].ID != 1 || cameras[1].ID != 2 {
		t.Errorf("Cameras not sorted by ID: %+v", cameras)
	}
	images := s.Images()
	if len(images) != 2 || images[0].ID != 3 || images[1].ID != 7 {
		t.Errorf("Images not sorted by ID: %+v", images)
	}
	if images[0].RoomID != "" {
		t.Errorf("Fresh image has room assignment %q", images[0].RoomID)
	}
}

func TestSetReconstructionReplaces(t *testing.T) {
	s := setupTestStore(t)
	s.SetReconstruction(demoWorkspace())
	s.SetReconstruction(&colmap.Workspace{
		Images:    []colmap.Image{{ID: 42, CameraID: 1, Name: "solo.jpg", Rotation: geom.Identity()}},
		HasImages: true,
	})

	if cameras := s.Cameras(); len(cameras) != 0 {
		t.Errorf("Expected cameras cleared, got %d", len(cameras))
	}
	images := s.Images()
	if len(images) != 1 || images[0].ID != 42 {
		t.Errorf("Unexpected images %+v", images)
	}
}

func TestAssignImage(t *testing.T) {
	s := setupTestStore(t)
	s.SetReconstruction(demoWorkspace())
	roomID := firstRoomID(t, s)

	img, err := s.AssignImage(7, roomID)
	if err != nil {
		t.Fatalf("AssignImage failed: %v", err)
	}
	if img.RoomID != roomID {
		t.Errorf("RoomID = %q, want %q", img.RoomID, roomID)
	}

	room, err := s.Room(roomID)
	if err != nil {
		t.Fatalf("Room failed: %v", err)
	}
	if len(room.ImageIDs) != 1 || room.ImageIDs[0] != "frame007.jpg" {
		t.Errorf("Room images = %v, want [frame007.jpg]", room.ImageIDs)
	}

	// Assigning the same image again must not duplicate the link.
	if _, err := s.AssignImage(7, roomID); err != nil {
		t.Fatalf("Second AssignImage failed: %v", err)
	}
	room, err = s.Room(roomID)
	if err != nil {
		t.Fatalf("Room failed: %v", err)
	}
	if len(room.ImageIDs) != 1 {
		t.Errorf("Expected 1 image link, got %d", len(room.ImageIDs))
	}
}

func TestAssignImageNotFound(t *testing.T) {
	s := setupTestStore(t)
	s.SetReconstruction(demoWorkspace())
	roomID := firstRoomID(t, s)

	if _, err := s.AssignImage(99, roomID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unknown image: err = %v, want ErrNotFound", err)
	}
	if _, err := s.AssignImage(7, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unknown room: err = %v, want ErrNotFound", err)
	}
}

func TestRoomDetail(t *testing.T) {
	s := setupTestStore(t)
	roomID := firstRoomID(t, s)

	sensor, err := s.AddSensor(Sensor{RoomID: roomID, Type: SensorOccupancy, Name: "door"})
	if err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}
	if _, err := s.PlaceObject(PlacedObject{RoomID: roomID, Model: "desk.glb"}); err != nil {
		t.Fatalf("PlaceObject failed: %v", err)
	}

	detail, err := s.RoomDetail(roomID)
	if err != nil {
		t.Fatalf("RoomDetail failed: %v", err)
	}
	if detail.Room.ID != roomID {
		t.Errorf("Room.ID = %q, want %q", detail.Room.ID, roomID)
	}
	found := false
	for _, sn := range detail.Sensors {
		if sn.ID == sensor.ID {
			found = true
		}
	}
	if !found {
		t.Error("Added sensor missing from room detail")
	}
	if len(detail.Objects) != 1 || detail.Objects[0].Model != "desk.glb" {
		t.Errorf("Unexpected objects %+v", detail.Objects)
	}
}
