package simulate

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/workbook/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger, teeing output to logFile when set.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		return io.NopCloser(nil), logger.Init()
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Workbook Tracing Simulator
==========================

Drives concurrent tracing sessions against a running service and checks
that each drawing style earns the stars it should.

Usage:
  go run ./cmd/trace-sim [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -activity string
        Tracing page to draw on (default "trace")
  -sessions int
        Number of sessions to simulate (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -transport string
        http, ws or mixed (default "mixed")
  -modes string
        Comma separated drawing modes: trace,half,offpath,scribble,empty (default all)
  -batch int
        Events per HTTP batch (default 32)
  -timeout duration
        Request and stream read timeout (default 10s)
  -output string
        Write a JSON report of every session
  -log string
        Also write logs to this file
  -verbose
        Log every session
  -help
        Show this help message

Expected stars: trace 3, half 2, offpath 0, scribble 3, empty 0.
`)
}
