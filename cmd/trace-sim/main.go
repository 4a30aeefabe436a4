package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/workbook/internal/simulate"
)

// Default configuration constants.
const (
	defaultSessions  = 200
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultBatchSize = 32
	defaultTimeout   = 10 * time.Second
	defaultRunLimit  = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		activity   = flag.String("activity", "trace", "Tracing page to draw on")
		sessions   = flag.Int("sessions", defaultSessions, "Number of sessions to simulate")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		transport  = flag.String("transport", simulate.TransportMixed, "http, ws or mixed")
		modes      = flag.String("modes", "", "Comma separated drawing modes (default all)")
		batch      = flag.Int("batch", defaultBatchSize, "Events per HTTP batch")
		timeout    = flag.Duration("timeout", defaultTimeout, "Request and stream read timeout")
		outputFile = flag.String("output", "", "Write a JSON report of every session")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Log every session")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closer, err := simulate.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	parsed, err := simulate.ParseModes(*modes)
	if err != nil {
		os.Stderr.WriteString("Invalid -modes: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:    *baseURL,
		ActivityID: *activity,
		Sessions:   *sessions,
		Workers:    *workers,
		Timeout:    *timeout,
		Transport:  *transport,
		BatchSize:  *batch,
		Modes:      parsed,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
