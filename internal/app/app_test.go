package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtrack/internal/logger"
)

func TestCheckFrameRate(t *testing.T) {
	tests := []struct {
		name     string
		fps      float64
		wantWarn bool
	}{
		{"matching", 24, false},
		{"unknown container rate", 0, false},
		{"broadcast 25 fps", 25, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			log, err := logger.New(dir)
			require.NoError(t, err)
			defer log.Close()

			checkFrameRate(log, "match.mp4", tt.fps, 750, 24)

			info, err := os.ReadFile(filepath.Join(dir, logger.InfoFile))
			require.NoError(t, err)
			assert.Contains(t, string(info), "750 frames")

			warning, err := os.ReadFile(filepath.Join(dir, logger.WarningFile))
			if !tt.wantWarn {
				if err == nil {
					assert.NotContains(t, string(warning), "FRAME_RATE")
				}
				return
			}
			require.NoError(t, err)
			assert.Contains(t, string(warning), "reports 25.00 fps but FRAME_RATE is 24.00")
		})
	}
}
