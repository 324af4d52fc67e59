package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"replay-collector/internal/collector"
	"replay-collector/internal/config"
	"replay-collector/internal/notify"
	"replay-collector/internal/showdown"
	"replay-collector/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	exitUpstream = 1
	exitArgs     = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	defStart, defEnd := collector.DefaultRange(time.Now())

	startDate := pflag.String("start_date", defStart, "Start date (UTC, inclusive), YYYY-MM-DD")
	endDate := pflag.String("end_date", defEnd, "End date (UTC, inclusive), YYYY-MM-DD")
	minRating := pflag.Int("min-rating", 0, "Skip replays rated below this (0 = keep all)")
	pflag.Parse()

	args := pflag.Args()
	if len(args) != 1 {
		usage()
		os.Exit(exitArgs)
	}
	format := args[0]

	// Argument checks happen before any request goes out
	if err := showdown.ValidateFormatToken(format); err != nil {
		fmt.Fprintf(os.Stderr, "replay-ids: %v\n", err)
		os.Exit(exitArgs)
	}
	window, err := collector.ParseWindow(*startDate, *endDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay-ids: %v\n", err)
		os.Exit(exitArgs)
	}

	runID := uuid.NewString()[:8]
	log.Printf("[Run %s] Fetching %s replays in %s", runID, format, window)

	client := showdown.NewClient(
		showdown.WithBaseURL(cfg.APIURL),
		showdown.WithTimeout(cfg.RequestTimeout),
		showdown.WithMaxRetries(cfg.MaxRetries),
		showdown.WithBackoffCap(cfg.RetryBackoffCap),
		showdown.WithMinInterval(cfg.RequestInterval),
	)
	fetcher := collector.New(client, collector.Config{MinRating: *minRating})
	webhook := notify.NewWebhookClient(cfg.WebhookURL)

	ctx := collector.SetupSignalHandler()
	started := time.Now()

	replays, err := fetcher.Run(ctx, format, window)
	if err != nil {
		if sendErr := webhook.Send(context.Background(),
			notify.NewRunFailedPayload(runID, format, window.String(), err)); sendErr != nil {
			log.Printf("[Notify] Webhook failed: %v", sendErr)
		}
		fmt.Fprintf(os.Stderr, "replay-ids: %v\n", err)
		os.Exit(exitUpstream)
	}

	rows := make([]storage.Row, 0, len(replays))
	for _, r := range replays {
		rows = append(rows, storage.FromReplay(r))
	}

	outPath := storage.OutputPath(cfg.OutputDir, format)
	if err := storage.WriteCSV(outPath, rows); err != nil {
		// The fetch itself succeeded; say so
		fmt.Fprintf(os.Stderr, "replay-ids: fetch succeeded but output failed: %v\n", err)
		os.Exit(exitUpstream)
	}

	fmt.Printf("Wrote %d replay IDs to %s\n", len(rows), outPath)

	if sendErr := webhook.Send(context.Background(),
		notify.NewRunCompletedPayload(runID, format, window.String(), len(rows), time.Since(started))); sendErr != nil {
		log.Printf("[Notify] Webhook failed: %v", sendErr)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  replay-ids <format> [--start_date=YYYY-MM-DD] [--end_date=YYYY-MM-DD] [--min-rating=N]")
	fmt.Println()
	fmt.Println("Fetches replay metadata for a Pokemon Showdown format (e.g., 'gen3ou')")
	fmt.Println("between two UTC dates, inclusive, and writes {format}_replay_ids.csv")
	fmt.Println("into the output directory (OUTPUT_DIR, default the working directory).")
	fmt.Println()
	fmt.Println("Defaults: end date is today UTC, start date is seven days earlier.")
	fmt.Println()
	fmt.Println("Tunables via environment or .env: REPLAY_API_URL, REQUEST_TIMEOUT,")
	fmt.Println("MAX_RETRIES, RETRY_BACKOFF_CAP, REQUEST_INTERVAL, OUTPUT_DIR, WEBHOOK_URL")
}
