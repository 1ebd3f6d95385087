package handler

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"fieldtrack/internal/logger"
	"fieldtrack/internal/service/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// atoiDefault converts string to int or returns a default when conversion fails or value < 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, logger *logger.Logger, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// currentResult writes 503 and returns nil while no analysis is loaded.
func currentResult(w http.ResponseWriter, manager *pipeline.Manager) *pipeline.Result {
	res := manager.Result()
	if res == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
	}
	return res
}
