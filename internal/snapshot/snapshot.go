// Package snapshot captures chart visualisations as PNG images.
//
// A View exposes chart containers by their fixed identifier. The Capturer
// walks the requested identifiers one at a time, waits for each chart to
// settle, and rasterises it. Failures are recorded per chart as an absent
// entry and never abort the batch.
package snapshot

import (
	"context"
	"errors"
	"image/color"
)

// ChartID is the stable attribute value that tags a chart container.
type ChartID string

const (
	StageDistribution   ChartID = "radialBar"
	PerformanceOverview ChartID = "radar"
	StageRelationships  ChartID = "chord"
	StageProgression    ChartID = "areaBump"
)

// AllCharts lists every chart the dashboard can render, in capture order.
var AllCharts = []ChartID{StageDistribution, PerformanceOverview, StageRelationships, StageProgression}

// Title is the human-readable chart name used in the document.
func (id ChartID) Title() string {
	switch id {
	case StageDistribution:
		return "Stage Distribution"
	case PerformanceOverview:
		return "Performance Overview"
	case StageRelationships:
		return "Stage Relationships"
	case StageProgression:
		return "Stage Progression"
	default:
		return string(id)
	}
}

var (
	ErrContainerMissing = errors.New("chart container not found")
	ErrNoDrawing        = errors.New("chart has no vector drawing")
)

// Snapshot is a rasterised chart.
type Snapshot struct {
	Chart  ChartID
	PNG    []byte
	Width  int
	Height int
}

// Map holds one entry per requested chart; a nil value means absent.
type Map map[ChartID]*Snapshot

// Get returns the snapshot for id when it was captured.
func (m Map) Get(id ChartID) (*Snapshot, bool) {
	s := m[id]
	return s, s != nil
}

// PNG returns the image bytes for id, or nil when absent.
func (m Map) PNG(id ChartID) []byte {
	if s, ok := m.Get(id); ok {
		return s.PNG
	}
	return nil
}

// Missing lists the absent entries in capture order.
func (m Map) Missing() []ChartID {
	var out []ChartID
	for _, id := range AllCharts {
		if v, ok := m[id]; ok && v == nil {
			out = append(out, id)
		}
	}
	for id, v := range m {
		if v == nil && !known(id) {
			out = append(out, id)
		}
	}
	return out
}

func known(id ChartID) bool {
	for _, k := range AllCharts {
		if k == id {
			return true
		}
	}
	return false
}

// Absent returns a map with every id recorded as absent.
func Absent(ids []ChartID) Map {
	m := make(Map, len(ids))
	for _, id := range ids {
		m[id] = nil
	}
	return m
}

// View is the live view holding chart containers.
type View interface {
	// Locate returns the container tagged with id, or ErrContainerMissing.
	Locate(ctx context.Context, id ChartID) (Element, error)
}

// Element is one chart container.
type Element interface {
	// HasVectorDrawing reports whether the chart renderer produced its SVG.
	HasVectorDrawing(ctx context.Context) (bool, error)
	// Rasterize returns the container's visible pixels as PNG at scale,
	// composited over an opaque background.
	Rasterize(ctx context.Context, scale float64, background color.RGBA) ([]byte, error)
}
