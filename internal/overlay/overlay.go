// Package overlay converts detection bounding boxes into percentage
// placements over the detection viewer's container.
package overlay

import "github.com/pronob/libvision/internal/models"

// The viewer lays boxes over a fixed 800x600 container regardless of the
// media's decoded dimensions, so boxes drift on non-matching aspect
// ratios. Callers that know the real dimensions can pass them instead.
const (
	DefaultContainerWidth  = 800
	DefaultContainerHeight = 600
)

// Placement positions a box as percentages of the container, suitable for
// CSS-style absolute positioning.
type Placement struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func Place(box models.BoundingBox, containerWidth, containerHeight int) Placement {
	return Placement{
		Left:   float64(box.X) / float64(containerWidth) * 100,
		Top:    float64(box.Y) / float64(containerHeight) * 100,
		Width:  float64(box.Width) / float64(containerWidth) * 100,
		Height: float64(box.Height) / float64(containerHeight) * 100,
	}
}
