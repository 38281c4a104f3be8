// Package colmap reads the text export of a COLMAP sparse reconstruction:
// cameras.txt, images.txt, and points3D.txt.
//
// Format reference: https://colmap.github.io/format.html
package colmap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/buildscan-data/buildscan/internal/geom"
	"github.com/buildscan-data/buildscan/internal/textrec"
)

// Workspace file names. A workspace is a directory holding some subset of
// these three files; nothing else is recognized.
const (
	CamerasFile  = "cameras.txt"
	ImagesFile   = "images.txt"
	Points3DFile = "points3D.txt"
)

// Camera holds the intrinsics of one COLMAP camera. Params carries
// whatever trailing values the file had (PINHOLE: fx, fy, cx, cy); its
// length is not validated against Model.
type Camera struct {
	ID     int       `json:"id"`
	Model  string    `json:"model"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Params []float64 `json:"params"`
}

// Image is the extrinsic pose of one registered image. The quaternion is
// stored exactly as parsed; COLMAP emits unit quaternions and nothing here
// renormalizes them.
type Image struct {
	ID          int             `json:"id"`
	CameraID    int             `json:"camera_id"`
	Name        string          `json:"name"`
	Rotation    geom.Quaternion `json:"rotation"`
	Translation geom.Vec3       `json:"translation"`
}

// Point3D is one sparse triangulated point. The track list on the source
// line is dropped.
type Point3D struct {
	ID       int64     `json:"id"`
	Position geom.Vec3 `json:"position"`
	Color    [3]uint8  `json:"color"`
	Error    float64   `json:"error"`
}

// Workspace is the parsed content of a reconstruction directory. A nil
// slice with its Has flag false means the corresponding file was absent;
// an empty slice with the flag true means the file existed but held no
// records.
type Workspace struct {
	Cameras    []Camera
	Images     []Image
	Points     []Point3D
	HasCameras bool
	HasImages  bool
	HasPoints  bool
}

// ParseError reports a malformed field in a workspace file. It aborts that
// file's parse and, through LoadWorkspace, the whole workspace load.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadWorkspace parses the reconstruction files found in dir. Each of the
// three files is optional; a missing file is skipped rather than failing
// the load. A malformed numeric field is fatal.
func LoadWorkspace(dir string) (*Workspace, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("colmap workspace %s: %w", dir, fs.ErrNotExist)
		}
		return nil, err
	}

	var ws Workspace

	path := filepath.Join(dir, CamerasFile)
	if f, err := os.Open(path); err == nil {
		cams, perr := ParseCameras(path, f)
		f.Close()
		if perr != nil {
			return nil, perr
		}
		ws.Cameras, ws.HasCameras = cams, true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	path = filepath.Join(dir, ImagesFile)
	if f, err := os.Open(path); err == nil {
		imgs, perr := ParseImages(path, f)
		f.Close()
		if perr != nil {
			return nil, perr
		}
		ws.Images, ws.HasImages = imgs, true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	path = filepath.Join(dir, Points3DFile)
	if f, err := os.Open(path); err == nil {
		pts, perr := ParsePoints3D(path, f)
		f.Close()
		if perr != nil {
			return nil, perr
		}
		ws.Points, ws.HasPoints = pts, true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &ws, nil
}

// fieldParser converts record fields, remembering the first failure so a
// whole record can be converted before checking for errors.
type fieldParser struct {
	file string
	line int
	err  error
}

func (p *fieldParser) fail(err error) {
	if p.err == nil {
		p.err = &ParseError{File: p.file, Line: p.line, Err: err}
	}
}

func (p *fieldParser) Int(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		p.fail(err)
	}
	return v
}

func (p *fieldParser) Int64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.fail(err)
	}
	return v
}

func (p *fieldParser) Uint8(s string) uint8 {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		p.fail(err)
	}
	return uint8(v)
}

func (p *fieldParser) Float(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(err)
	}
	return v
}

// ParseCameras reads cameras.txt records:
//
//	CAMERA_ID MODEL WIDTH HEIGHT PARAM...
//
// The trailing parameter count varies by model and is stored as given.
func ParseCameras(name string, r io.Reader) ([]Camera, error) {
	var cams []Camera
	sc := textrec.NewScanner(r)
	for sc.Scan() {
		rec := sc.Record()
		if len(rec.Fields) < 4 {
			return nil, &ParseError{File: name, Line: rec.Line,
				Err: fmt.Errorf("camera record has %d fields, want at least 4", len(rec.Fields))}
		}
		p := fieldParser{file: name, line: rec.Line}
		cam := Camera{
			ID:     p.Int(rec.Fields[0]),
			Model:  rec.Fields[1],
			Width:  p.Int(rec.Fields[2]),
			Height: p.Int(rec.Fields[3]),
		}
		for _, f := range rec.Fields[4:] {
			cam.Params = append(cam.Params, p.Float(f))
		}
		if p.err != nil {
			return nil, p.err
		}
		cams = append(cams, cam)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cams, nil
}

// ParseImages reads images.txt, where every image occupies a pair of
// lines:
//
//	IMAGE_ID QW QX QY QZ TX TY TZ CAMERA_ID NAME
//	POINTS2D[] (discarded)
//
// A pose line with fewer than 10 fields is silently dropped and consumes
// only itself; the parser does not try to resynchronize with the
// companion line.
func ParseImages(name string, r io.Reader) ([]Image, error) {
	var imgs []Image
	sc := textrec.NewScanner(r)
	for sc.Scan() {
		rec := sc.Record()
		if len(rec.Fields) < 10 {
			continue
		}
		p := fieldParser{file: name, line: rec.Line}
		img := Image{
			ID: p.Int(rec.Fields[0]),
			Rotation: geom.Quaternion{
				W: p.Float(rec.Fields[1]),
				X: p.Float(rec.Fields[2]),
				Y: p.Float(rec.Fields[3]),
				Z: p.Float(rec.Fields[4]),
			},
			Translation: geom.Vec3{
				X: p.Float(rec.Fields[5]),
				Y: p.Float(rec.Fields[6]),
				Z: p.Float(rec.Fields[7]),
			},
			CameraID: p.Int(rec.Fields[8]),
			Name:     rec.Fields[9],
		}
		if p.err != nil {
			return nil, p.err
		}
		imgs = append(imgs, img)

		// discard the 2-D point track line
		sc.Scan()
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return imgs, nil
}

// ParsePoints3D reads points3D.txt records:
//
//	POINT3D_ID X Y Z R G B ERROR TRACK...
//
// Only the first 8 fields are consumed; the track list is discarded.
func ParsePoints3D(name string, r io.Reader) ([]Point3D, error) {
	var pts []Point3D
	sc := textrec.NewScanner(r)
	for sc.Scan() {
		rec := sc.Record()
		if len(rec.Fields) < 8 {
			return nil, &ParseError{File: name, Line: rec.Line,
				Err: fmt.Errorf("point record has %d fields, want at least 8", len(rec.Fields))}
		}
		p := fieldParser{file: name, line: rec.Line}
		pt := Point3D{
			ID: p.Int64(rec.Fields[0]),
			Position: geom.Vec3{
				X: p.Float(rec.Fields[1]),
				Y: p.Float(rec.Fields[2]),
				Z: p.Float(rec.Fields[3]),
			},
			Color: [3]uint8{
				p.Uint8(rec.Fields[4]),
				p.Uint8(rec.Fields[5]),
				p.Uint8(rec.Fields[6]),
			},
			Error: p.Float(rec.Fields[7]),
		}
		if p.err != nil {
			return nil, p.err
		}
		pts = append(pts, pt)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pts, nil
}
