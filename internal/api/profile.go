package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/buildscan-data/buildscan/internal/httputil"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// showPointCloudProfile renders a quick scatter plot (HTML) of the
// cloud's XY footprint using go-echarts. This is a debugging-only
// endpoint to eyeball a scan without the AR frontend.
// Query params:
//   - max_points (optional; default 5000) to reduce payload size
func (s *Server) showPointCloudProfile(w http.ResponseWriter, r *http.Request) {
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

	maxPoints := 5000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	// Downsample by stride to stay within maxPoints
	stride := 1
	if cloud.NumPoints() > maxPoints {
		stride = int(math.Ceil(float64(cloud.NumPoints()) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, cloud.NumPoints()/stride+1)
	maxAbs := 0.0
	for i := 0; i < cloud.NumPoints(); i += stride {
		p := cloud.Positions[i]
		x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, z}})
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Point Cloud Footprint", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Point Cloud XY Footprint", Subtitle: fmt.Sprintf("file=%s points=%d stride=%d", filename, len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("points", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		writeError(w, fmt.Errorf("failed to render chart: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
