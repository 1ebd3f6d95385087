// Package compensator removes the estimated camera pan from anchor positions.
package compensator

import (
	"fmt"

	"fieldtrack/internal/model"
)

// Apply sets Adjusted = Position - motion[frame] on the given categories (all when none are given).
// Records without a Position are left untouched.
func Apply(table *model.TrackTable, motion model.CameraMotion, categories ...model.Category) error {
	if len(motion) != table.FrameCount() {
		return fmt.Errorf("camera motion covers %d frames, table has %d", len(motion), table.FrameCount())
	}
	if len(categories) == 0 {
		categories = table.Categories()
	}
	for _, c := range categories {
		table.EachInCategory(c, func(frame, _ int, rec *model.TrackRecord) {
			if rec.Position == nil {
				return
			}
			adjusted := rec.Position.Sub(motion[frame])
			rec.Adjusted = &adjusted
		})
	}
	return nil
}
