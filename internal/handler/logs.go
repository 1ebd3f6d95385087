package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"fieldtrack/internal/logger"
)

// ShowLogsHandler serves one level file (info.log, warning.log, error.log) as text/plain.
func ShowLogsHandler(logger *logger.Logger, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := filepath.Join(logger.Directory(), filename)

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.Error(w, "Log file not found: "+filename, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filePath)
	}
}

// ClearLogsHandler truncates one level file.
func ClearLogsHandler(logger *logger.Logger, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := logger.CleanLogs(filename); err != nil {
			http.Error(w, "Failed to clear log", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
