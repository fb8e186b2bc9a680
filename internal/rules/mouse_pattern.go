package rules

import (
	"context"
	"math"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// MousePatternRule flags movement paths that are too geometrically
// regular (straight lines, grid-snapped coordinates) to be human.
type MousePatternRule struct{}

const mousePatternWeight = 0.1

func (MousePatternRule) Name() string { return "mouse_pattern_anomaly" }

type point struct{ x, y float64 }

func (MousePatternRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	moves := byType(signals, fraudmodel.SignalMouseMove)
	if len(moves) < 20 {
		return nil
	}
	sorted := fraudmodel.SortByTimestamp(moves)

	points := make([]point, 0, len(sorted))
	for _, s := range sorted {
		ex := payload.New(s.Payload)
		points = append(points, point{
			x: ex.GetDouble("x", 0),
			y: ex.GetDouble("y", 0),
		})
	}

	if ctx.Err() != nil {
		return nil
	}

	straightCount := 0
	n := len(points)
	for i := 0; i+2 < n; i++ {
		p1, p2, p3 := points[i], points[i+1], points[i+2]
		cross := (p2.y-p1.y)*(p3.x-p2.x) - (p3.y-p2.y)*(p2.x-p1.x)
		if math.Abs(cross) < 1.0 {
			straightCount++
		}
	}

	gridCount := 0
	for _, p := range points {
		if math.Mod(p.x, 10) < 1 && math.Mod(p.y, 10) < 1 {
			gridCount++
		}
	}

	best := 0.0
	reason := ""

	if n > 2 {
		straightRatio := float64(straightCount) / float64(n-2)
		if straightRatio > 0.8 {
			best, reason = 0.7, "Too many straight-line movements"
		}
	}

	gridRatio := float64(gridCount) / float64(n)
	if gridRatio > 0.5 && 0.5 > best {
		best, reason = 0.5, "Grid-snapping detected"
	}

	if reason == "" {
		return nil
	}
	return factor("mouse_pattern_anomaly", best, mousePatternWeight, reason)
}
