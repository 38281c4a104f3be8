package colmap

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildscan-data/buildscan/internal/geom"
)

func TestParseCameras(t *testing.T) {
	input := "# Camera list with one line of data per camera\n" +
		"3 PINHOLE 640 480 500.0 500.0 320.0 240.0\n"

	cams, err := ParseCameras("cameras.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cams, 1)

	assert.Equal(t, Camera{
		ID:     3,
		Model:  "PINHOLE",
		Width:  640,
		Height: 480,
		Params: []float64{500.0, 500.0, 320.0, 240.0},
	}, cams[0])
}

func TestParseCamerasVariableParamCount(t *testing.T) {
	input := "1 SIMPLE_RADIAL 100 100 90.0 50.0 50.0 0.01\n" +
		"2 PINHOLE 10 10\n"

	cams, err := ParseCameras("cameras.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cams, 2)
	assert.Len(t, cams[0].Params, 4)
	assert.Nil(t, cams[1].Params)
}

func TestParseCamerasBadNumericIsFatal(t *testing.T) {
	input := "1 PINHOLE 640 480 1.0\n" +
		"oops PINHOLE 640 480 1.0\n"

	_, err := ParseCameras("cameras.txt", strings.NewReader(input))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "cameras.txt", perr.File)
	assert.Equal(t, 2, perr.Line)
}

func TestParseImagesPair(t *testing.T) {
	input := "7 1 0 0 0 0 0 0 3 frame007.jpg\n" +
		"1.0 2.0 42 3.0 4.0 43\n"

	imgs, err := ParseImages("images.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, imgs, 1)

	assert.Equal(t, Image{
		ID:       7,
		CameraID: 3,
		Name:     "frame007.jpg",
		Rotation: geom.Quaternion{W: 1},
	}, imgs[0])
}

func TestParseImagesReturnsAllPairsInOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("# header\n")
	for i := 1; i <= 4; i++ {
		b.WriteString(strings.ReplaceAll("N 1 0 0 0 0.5 0.5 0.5 1 imgN.jpg\n", "N", string(rune('0'+i))))
		b.WriteString("10.0 20.0 5\n")
	}

	imgs, err := ParseImages("images.txt", strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, imgs, 4)
	for i, img := range imgs {
		assert.Equal(t, i+1, img.ID)
	}
}

func TestParseImagesSkipsShortPoseLine(t *testing.T) {
	// The second pose line is truncated; it must be dropped without
	// aborting the parse and without swallowing the line after it.
	input := "1 1 0 0 0 0 0 0 2 a.jpg\n" +
		"0.0 0.0 1\n" +
		"2 1 0 0 0\n" +
		"3 1 0 0 0 1 2 3 2 c.jpg\n" +
		"0.0 0.0 1\n"

	imgs, err := ParseImages("images.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	assert.Equal(t, 1, imgs[0].ID)
	assert.Equal(t, 3, imgs[1].ID)
}

func TestParseImagesBadNumericIsFatal(t *testing.T) {
	input := "1 notanumber 0 0 0 0 0 0 2 a.jpg\n" +
		"0.0 0.0 1\n"

	_, err := ParseImages("images.txt", strings.NewReader(input))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}

func TestParseImagesKeepsQuaternionAsGiven(t *testing.T) {
	// Non-unit quaternions are stored exactly as parsed.
	input := "1 2 0 0 0 0 0 0 1 a.jpg\n" +
		"0.0 0.0 1\n"

	imgs, err := ParseImages("images.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, geom.Quaternion{W: 2}, imgs[0].Rotation)
}

func TestParsePoints3DDropsTrack(t *testing.T) {
	input := "# points\n" +
		"12 1.5 -2.0 0.25 255 128 0 0.75 1 0 2 4\n"

	pts, err := ParsePoints3D("points3D.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, pts, 1)

	assert.Equal(t, Point3D{
		ID:       12,
		Position: geom.Vec3{X: 1.5, Y: -2.0, Z: 0.25},
		Color:    [3]uint8{255, 128, 0},
		Error:    0.75,
	}, pts[0])
}

func TestParsePoints3DBadColorIsFatal(t *testing.T) {
	input := "1 0 0 0 255 green 0 0.5\n"

	_, err := ParsePoints3D("points3D.txt", strings.NewReader(input))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "points3D.txt", perr.File)
}

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadWorkspaceAllFiles(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{
		CamerasFile:  "1 PINHOLE 640 480 500 500 320 240\n",
		ImagesFile:   "1 1 0 0 0 0 0 0 1 a.jpg\n0.0 0.0 1\n",
		Points3DFile: "1 0 0 0 10 20 30 0.5\n",
	})

	ws, err := LoadWorkspace(dir)
	require.NoError(t, err)
	assert.True(t, ws.HasCameras)
	assert.True(t, ws.HasImages)
	assert.True(t, ws.HasPoints)
	assert.Len(t, ws.Cameras, 1)
	assert.Len(t, ws.Images, 1)
	assert.Len(t, ws.Points, 1)
}

func TestLoadWorkspaceMissingFilesAreSkipped(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{
		CamerasFile: "1 PINHOLE 640 480 500 500 320 240\n",
	})

	ws, err := LoadWorkspace(dir)
	require.NoError(t, err)
	assert.True(t, ws.HasCameras)
	assert.False(t, ws.HasImages)
	assert.False(t, ws.HasPoints)
	assert.Nil(t, ws.Images)
	assert.Nil(t, ws.Points)
}

func TestLoadWorkspaceMissingDirectory(t *testing.T) {
	_, err := LoadWorkspace(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadWorkspaceParseErrorAbortsLoad(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{
		Points3DFile: "1 0 0 zzz 10 20 30 0.5\n",
	})

	_, err := LoadWorkspace(dir)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.File, Points3DFile)
	assert.Equal(t, 1, perr.Line)
}
