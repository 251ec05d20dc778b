package telemetry

import (
	"fmt"
	"os"
	"strings"
)

// TrajectorySVG renders the recorded path as a single SVG polyline,
// auto-scaled to the trace bounds with 10% padding. Traces shorter than
// two samples render to an empty string.
func TrajectorySVG(samples []Sample, width, height int, stroke string) string {
	if len(samples) < 2 {
		return ""
	}

	minX, maxX := samples[0].X, samples[0].X
	minY, maxY := samples[0].Y, samples[0].Y
	for _, s := range samples {
		minX = min(minX, s.X)
		maxX = max(maxX, s.X)
		minY = min(minY, s.Y)
		maxY = max(maxY, s.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke))

	for i, s := range samples {
		// SVG y grows downward; the field frame grows upward.
		x := (s.X - minX) / rangeX * float64(width)
		y := float64(height) - (s.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// ExportSVG writes the trajectory rendering to a file.
func ExportSVG(path string, samples []Sample, width, height int) error {
	return os.WriteFile(path, []byte(TrajectorySVG(samples, width, height, "#00ff00")), 0644)
}
