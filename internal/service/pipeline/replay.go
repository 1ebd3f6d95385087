package pipeline

import (
	"context"
	"time"
)

// Replay broadcasts the latest result frame by frame at fps, looping, while viewers are connected.
func (m *Manager) Replay(ctx context.Context, fps float64) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		res := m.Result()
		if res == nil || res.Table.FrameCount() == 0 || m.websocketService.GetClientCount() == 0 {
			continue
		}
		frame %= res.Table.FrameCount()

		payload, err := json.Marshal(BuildFrame(res.Table, res.Motion, frame))
		if err != nil {
			m.logger.Error("Failed to encode frame %d: %v", frame, err)
			continue
		}
		m.websocketService.Broadcast(payload)
		frame++
	}
}
