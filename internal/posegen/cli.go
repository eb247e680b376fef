package posegen

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/crease/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log lines to stdout and to logFile. An empty name gets
// a timestamped file. The returned closer releases the file.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		logFile = "posegen_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the load generator.
func ShowHelp() {
	os.Stdout.WriteString(`crease pose generator
=====================

Drives a running crease service with synthetic pose frames and checks the
leaderboards it builds.

Usage:
  go run ./cmd/posegen [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -players int       Number of synthetic players (default 200)
  -frames int        Frames per player session (default 30)
  -modes string      Comma-separated modes (default all)
  -top int           Leaderboard entries to verify per mode (default 50)
  -workers int       Concurrent sessions (default CPU cores * 2)
  -seed uint         Pose jitter seed (default 1)
  -timeout duration  HTTP request timeout (default 30s)
  -settle duration   Time allowed for the queue to drain (default 2m)
  -output string     Save generated sessions as JSON
  -log string        Log file (default posegen_TIMESTAMP.log)
  -verbose           Enable verbose logging
  -help              Show this help message

Examples:
  go run ./cmd/posegen -players 1000 -frames 60 -workers 32
  go run ./cmd/posegen -modes batting,shot -verbose
`)
}
