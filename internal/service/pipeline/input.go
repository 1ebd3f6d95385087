package pipeline

import (
	"fmt"
	"os"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"fieldtrack/internal/dto"
	"fieldtrack/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadTrackTable reads the tracking engine's JSON output into a bbox-only track table.
func LoadTrackTable(path string) (*model.TrackTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tracks %s: %w", path, err)
	}
	var in dto.TrackImport
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode tracks %s: %w", path, err)
	}
	return TableFromImport(in)
}

// TableFromImport validates frame counts and builds the table. Categories that fold together
// (goalkeepers into players) are merged frame by frame; a track id may appear only once per frame.
func TableFromImport(in dto.TrackImport) (*model.TrackTable, error) {
	frameCount := -1
	for name, frames := range in {
		if frameCount == -1 {
			frameCount = len(frames)
		} else if len(frames) != frameCount {
			return nil, fmt.Errorf("%w: %s has %d frames, expected %d", model.ErrFrameCountMismatch, name, len(frames), frameCount)
		}
	}
	if frameCount < 0 {
		frameCount = 0
	}

	table := model.NewTrackTable(frameCount)
	for name, frames := range in {
		c, err := model.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		table.AddCategory(c)
		for frame, tracks := range frames {
			for key, track := range tracks {
				id, err := strconv.Atoi(key)
				if err != nil {
					return nil, fmt.Errorf("%s frame %d: track id %q: %w", name, frame, key, err)
				}
				if _, dup := table.Get(c, frame, id); dup {
					return nil, fmt.Errorf("%s frame %d: track %d already present in %s", name, frame, id, c)
				}
				b := track.BBox
				rec := &model.TrackRecord{BBox: model.NewBBox(b[0], b[1], b[2], b[3])}
				if err := table.Set(c, frame, id, rec); err != nil {
					return nil, err
				}
			}
		}
	}
	return table, table.Validate()
}
