package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/posegen"
)

// Default configuration constants.
const (
	defaultPlayers    = 200
	defaultFrames     = 30
	defaultTopN       = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultWidth      = 1280
	defaultHeight     = 720
	defaultTimeout    = 30 * time.Second
	defaultSettle     = 2 * time.Minute
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players    = flag.Int("players", defaultPlayers, "Number of synthetic players")
		frames     = flag.Int("frames", defaultFrames, "Frames per player session")
		modes      = flag.String("modes", "", "Comma-separated modes (default all)")
		topN       = flag.Int("top", defaultTopN, "Leaderboard entries to verify per mode")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent sessions")
		seed       = flag.Uint64("seed", 1, "Pose jitter seed")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", defaultSettle, "Time allowed for the queue to drain")
		outputFile = flag.String("output", "", "Save generated sessions as JSON")
		logFile    = flag.String("log", "", "Log file (default posegen_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		posegen.ShowHelp()
		return
	}

	parsed, err := parseModes(*modes)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	closer, err := posegen.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &posegen.Config{
		BaseURL:    strings.TrimRight(*baseURL, "/"),
		Players:    *players,
		Frames:     *frames,
		Modes:      parsed,
		TopN:       *topN,
		Workers:    max(1, *workers),
		Width:      defaultWidth,
		Height:     defaultHeight,
		Seed:       *seed,
		Timeout:    *timeout,
		Settle:     *settle,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}
	if _, err := posegen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		closer.Close()
		os.Exit(1)
	}
}

func parseModes(s string) ([]scoring.Mode, error) {
	if s == "" {
		return nil, nil
	}
	var out []scoring.Mode
	for _, name := range strings.Split(s, ",") {
		m, err := scoring.ParseMode(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
