package probe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/nbapicks/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if logFile == "" {
		logFile = "probe_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`NBA Picks Probe
===============

Walks a date range against a running picks server and checks every day's
recommendations: picks per type, confidence bounds, ordering and game diversity.

Usage:
  go run ./cmd/picks-probe -from YYYYMMDD [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -from string
        First date, YYYYMMDD or YYYY-MM-DD (required)
  -to string
        Last date, inclusive (default: same as -from)
  -per-type int
        Expected maximum picks per type (default 3)
  -user string
        User id sent as X-User-ID; needs an active subscription
  -workers int
        Number of concurrent requests (default 4)
  -timeout duration
        HTTP request timeout (default 60s)
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Log every pick
  -help
        Show this help message

Examples:
  # Probe one week
  go run ./cmd/picks-probe -from 20250101 -to 20250107 -user ops

  # Probe a single day with every pick logged
  go run ./cmd/picks-probe -from 2025-01-03 -user ops -verbose
`)
}
