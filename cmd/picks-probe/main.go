package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/nbapicks/internal/domain/selection"
	"github.com/okian/nbapicks/internal/probe"
	"github.com/okian/nbapicks/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout      = 60 * time.Second
	defaultProbeTimeout = 15 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		from    = flag.String("from", "", "First date, YYYYMMDD or YYYY-MM-DD")
		to      = flag.String("to", "", "Last date, inclusive (default: same as -from)")
		perType = flag.Int("per-type", selection.DefaultPerType, "Expected maximum picks per type")
		userID  = flag.String("user", "", "User id sent as X-User-ID")
		workers = flag.Int("workers", probe.DefaultWorkers, "Number of concurrent requests")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Log every pick")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || *from == "" {
		probe.ShowHelp()
		return
	}

	start, end, err := probe.ParseRange(*from, *to)
	if err != nil {
		os.Stderr.WriteString("Invalid date range: " + err.Error() + "\n")
		os.Exit(2)
	}

	if err := probe.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL: *baseURL,
		From:    start,
		To:      end,
		PerType: *perType,
		UserID:  *userID,
		Workers: *workers,
		Timeout: *timeout,
		LogFile: *logFile,
		Verbose: *verbose,
	}

	if _, _, err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
