package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"fieldtrack/internal/config"
	"fieldtrack/internal/handler"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/middleware"
	"fieldtrack/internal/service/pipeline"
)

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join("static", filepath.Clean(path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers the viewer, result API, chart, log and auth endpoints
// and wraps the mux with the session middleware.
func SetupRoutes(manager *pipeline.Manager, cfg *config.Config, logger *logger.Logger, session string) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// API endpoints
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(manager, logger))
	mux.HandleFunc("/api/run", handler.GetRunHandler(manager, logger))
	mux.HandleFunc("/api/frames", handler.GetFrameHandler(manager, logger))
	mux.HandleFunc("/api/motion", handler.GetMotionHandler(manager, logger))
	mux.HandleFunc("/api/summary", handler.GetSummaryHandler(manager, logger))
	mux.HandleFunc("/charts/speed", handler.SpeedChartHandler(manager, logger))

	// Log endpoints
	for _, name := range []string{"info", "warning", "error"} {
		file := name + ".log"
		mux.HandleFunc("/logs/"+name, handler.ShowLogsHandler(logger, file))
		mux.HandleFunc("/logs/"+name+"/clear", handler.ClearLogsHandler(logger, file))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, session, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /login -> /static/login.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	return middleware.AuthMiddleware(session, mux)
}
