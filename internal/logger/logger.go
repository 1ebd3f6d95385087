package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"fieldtrack/internal/config"
)

// Log file names served by the log endpoints.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Logger provides leveled logging (info/warning/error) to rotating files and stdout/stderr.
type Logger struct {
	infoLog    *logrus.Logger
	warningLog *logrus.Logger
	errorLog   *logrus.Logger
	files      map[string]*lumberjack.Logger
	logDir     string
}

// NewLogger creates a Logger writing to the configured log directory.
func NewLogger(cfg *config.Config) *Logger {
	l, err := New(cfg.LogDirectory)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return l
}

// New creates a Logger whose level files live in logDir.
func New(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	l := &Logger{logDir: logDir, files: make(map[string]*lumberjack.Logger, 3)}
	l.infoLog = l.newLevelLogger(InfoFile, os.Stdout)
	l.warningLog = l.newLevelLogger(WarningFile, os.Stdout)
	l.errorLog = l.newLevelLogger(ErrorFile, os.Stderr)
	return l, nil
}

// Discard returns a Logger that drops every entry.
func Discard() *Logger {
	l := &Logger{files: map[string]*lumberjack.Logger{}}
	for _, target := range []**logrus.Logger{&l.infoLog, &l.warningLog, &l.errorLog} {
		lg := logrus.New()
		lg.SetOutput(io.Discard)
		*target = lg
	}
	return l
}

func (l *Logger) newLevelLogger(name string, console io.Writer) *logrus.Logger {
	file := &lumberjack.Logger{
		Filename:   filepath.Join(l.logDir, name),
		LocalTime:  true,
		MaxSize:    50,
		MaxAge:     7,
		MaxBackups: 3,
	}
	l.files[name] = file

	lg := logrus.New()
	lg.SetLevel(logrus.InfoLevel)
	lg.SetFormatter(&formatter.Formatter{
		NoColors:        true,
		TimestampFormat: "2006-01-02 15:04:05",
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})
	lg.SetOutput(io.MultiWriter(console, file))
	lg.SetReportCaller(true)
	return lg
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLog.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.warningLog.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLog.Errorf(format, v...)
}

// Directory returns the directory holding the level files.
func (l *Logger) Directory() string {
	return l.logDir
}

// CleanLogs truncates the specified log file. The rotating writer is closed first so the
// next entry reopens the file in append mode at offset zero.
func (l *Logger) CleanLogs(fileName string) error {
	file, ok := l.files[fileName]
	if !ok {
		return fmt.Errorf("unknown log file %q", fileName)
	}
	if err := file.Close(); err != nil {
		l.Error("Error closing %s: %v", fileName, err)
		return err
	}
	if err := os.Truncate(filepath.Join(l.logDir, fileName), 0); err != nil && !os.IsNotExist(err) {
		l.Error("Error clearing %s: %v", fileName, err)
		return err
	}
	l.Info("%s has been cleared", fileName)
	return nil
}

// Close releases the rotating file handles.
func (l *Logger) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
