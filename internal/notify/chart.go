package notify

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rbasoalto/terrabot/internal/terra"
)

const (
	chartBaseURL = "https://chart.googleapis.com/chart"

	chartWidth     = 500
	chartBarHeight = 28
	chartMargin    = 30

	colorScore      = "4D89F9"
	colorProjection = "C6D9FD"
)

// scoreBar is one faction's row in the score chart, in ranking order
type scoreBar struct {
	label      string
	vp         int
	projection int
}

// rankFactions orders factions by descending victory points. Ties break on
// display name so the chart is stable across polls of the same state.
func rankFactions(state *terra.GameState) []scoreBar {
	bars := make([]scoreBar, 0, len(state.Factions))
	for id, f := range state.Factions {
		bar := scoreBar{label: f.Display, vp: f.VP, projection: f.VP}
		if bar.label == "" {
			bar.label = id
		}
		if f.VPProjection != nil {
			bar.projection = *f.VPProjection
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].vp != bars[j].vp {
			return bars[i].vp > bars[j].vp
		}
		return bars[i].label < bars[j].label
	})
	return bars
}

// hasProjection reports whether any faction carries a victory-point projection
func hasProjection(state *terra.GameState) bool {
	for _, f := range state.Factions {
		if f.VPProjection != nil {
			return true
		}
	}
	return false
}

// ScoreChartURL builds a horizontal bar chart image URL ranking factions by
// victory points. When any faction has a projection a lighter second series
// compares projected against current scores.
func ScoreChartURL(state *terra.GameState) string {
	bars := rankFactions(state)
	twoSeries := hasProjection(state)

	scores := make([]string, len(bars))
	projections := make([]string, len(bars))
	// Axis labels render bottom-up, so reverse the ranking order
	labels := make([]string, len(bars))
	for i, bar := range bars {
		scores[i] = strconv.Itoa(bar.vp)
		projections[i] = strconv.Itoa(bar.projection)
		labels[len(bars)-1-i] = bar.label
	}

	data := "t:" + strings.Join(scores, ",")
	colors := colorScore
	markers := "N,000000,0,-1,11"
	series := 1
	if twoSeries {
		data += "|" + strings.Join(projections, ",")
		colors += "," + colorProjection
		markers += "|N,000000,1,-1,11"
		series = 2
	}

	height := len(bars)*chartBarHeight*series + chartMargin

	params := url.Values{}
	params.Set("cht", "bhg")
	params.Set("chd", data)
	params.Set("chds", "a")
	params.Set("chco", colors)
	params.Set("chm", markers)
	params.Set("chxt", "y")
	params.Set("chxl", "0:|"+strings.Join(labels, "|"))
	params.Set("chs", fmt.Sprintf("%dx%d", chartWidth, height))

	return chartBaseURL + "?" + params.Encode()
}
