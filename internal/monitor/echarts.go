package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/explorer/internal/frontier"
	"github.com/banshee-data/explorer/internal/httputil"
)

const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleMapChart renders a quick heatmap (HTML) of the occupancy grid using
// go-echarts, with the current frontier cells overlaid. This is a
// debugging-only endpoint (no auth) to eyeball the map without a UI.
// Query params:
//   - max_points (optional; default 20000) to reduce payload size
func (ws *WebServer) handleMapChart(w http.ResponseWriter, r *http.Request) {
	mapGrid, costmap := ws.snapshots.Snapshot()
	if mapGrid == nil {
		httputil.NotFound(w, "no map snapshot available")
		return
	}

	maxPoints := 20000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 100000 {
			maxPoints = v
		}
	}

	known := 0
	for _, c := range mapGrid.Cells {
		if c >= 0 {
			known++
		}
	}

	// Downsample known cells by stride to stay within maxPoints
	stride := 1
	if known > maxPoints {
		stride = int(math.Ceil(float64(known) / float64(maxPoints)))
	}

	cells := make([]opts.ScatterData, 0, known/stride+1)
	maxAbs := 0.0
	i := 0
	for row := 0; row < mapGrid.Height; row++ {
		for col := 0; col < mapGrid.Width; col++ {
			v := mapGrid.At(row, col)
			if v < 0 {
				continue
			}
			if i%stride != 0 {
				i++
				continue
			}
			i++
			x := mapGrid.WorldX(col)
			y := mapGrid.WorldY(row)
			if math.Abs(x) > maxAbs {
				maxAbs = math.Abs(x)
			}
			if math.Abs(y) > maxAbs {
				maxAbs = math.Abs(y)
			}
			cells = append(cells, opts.ScatterData{Value: []interface{}{x, y, float64(v)}})
		}
	}

	frontiers := []frontier.Frontier{}
	if costmap != nil {
		if fs, err := frontier.Detect(mapGrid, costmap); err == nil {
			frontiers = fs
		}
	}
	frontierPts := make([]opts.ScatterData, 0, len(frontiers))
	for _, f := range frontiers {
		x := mapGrid.WorldX(f.Col)
		y := mapGrid.WorldY(f.Row)
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		frontierPts = append(frontierPts, opts.ScatterData{Value: []interface{}{x, y}})
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Exploration Map", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Occupancy Grid", Subtitle: fmt.Sprintf("%dx%d res=%gm frontiers=%d stride=%d", mapGrid.Width, mapGrid.Height, mapGrid.Resolution, len(frontierPts), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)

	scatter.AddSeries("cells", cells, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("frontiers", frontierPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render map chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
