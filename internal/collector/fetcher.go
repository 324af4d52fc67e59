package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"replay-collector/internal/showdown"

	"github.com/bits-and-blooms/bloom/v3"
)

// SearchClient is the slice of the showdown client the fetcher needs.
// Note: kept as an interface so tests can count calls.
type SearchClient interface {
	SearchPage(ctx context.Context, format string, before int64) ([]showdown.ReplayRef, error)
}

// Config holds fetcher tunables
type Config struct {
	// MinRating drops replays rated below the threshold. Zero keeps
	// everything, including unrated replays.
	MinRating int
}

// Fetcher pages backwards through the replay index and collects the
// entries inside a date window, each replay ID at most once.
type Fetcher struct {
	client    SearchClient
	minRating int

	// Deduplication (bloom filter for memory efficiency; the index can
	// return overlapping pages when uploads land mid-run)
	seen *bloom.BloomFilter

	// Stats
	pagesFetched int64
	scanned      int64
	dupes        int64
	belowRating  int64
	startTime    time.Time
}

// New creates a fetcher around a search client
func New(client SearchClient, cfg Config) *Fetcher {
	return &Fetcher{
		client:    client,
		minRating: cfg.MinRating,
		seen:      bloom.NewWithEstimates(500000, 0.0001),
	}
}

// Run collects every replay for the format inside the window. The
// index returns pages newest-first with `before` as the cursor, so the
// loop walks from the window's upper bound down and stops once a page
// dips below the lower bound, the index is exhausted, or the cursor
// stops advancing. Results keep index order (newest first).
func (f *Fetcher) Run(ctx context.Context, format string, window DateWindow) ([]showdown.ReplayRef, error) {
	if err := showdown.ValidateFormatToken(format); err != nil {
		return nil, err
	}

	f.startTime = time.Now()
	startUnix := window.StartUnix()
	before := window.EndExclusiveUnix()

	var kept []showdown.ReplayRef

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := f.client.SearchPage(ctx, format, before)
		if err != nil {
			return nil, &UpstreamError{Cursor: before, Err: err}
		}
		f.pagesFetched++

		if len(page) == 0 {
			log.Printf("[Fetch] Empty page at cursor %d, index exhausted", before)
			break
		}

		minTS := page[0].UploadTime
		for _, r := range page {
			if r.UploadTime < minTS {
				minTS = r.UploadTime
			}
			f.scanned++

			// Pages may straddle the window edges; filter every entry
			// rather than trusting ordering alone
			if !window.Contains(r.UploadTime) {
				continue
			}
			if f.minRating > 0 && r.Rating < f.minRating {
				f.belowRating++
				continue
			}
			if f.seen.TestString(r.ID) {
				f.dupes++
				continue
			}
			f.seen.AddString(r.ID)
			kept = append(kept, r)
		}

		fmt.Printf("[Page %d] %d entries before %s, %d replays kept so far\n",
			f.pagesFetched, len(page),
			time.Unix(before, 0).UTC().Format("2006-01-02 15:04:05"), len(kept))

		// Newest-first: once a page reaches below the window, every
		// later page is older still
		if minTS < startUnix {
			break
		}
		// A page of identical timestamps cannot advance the cursor
		if minTS >= before {
			log.Printf("[Fetch] Cursor stalled at %d, stopping", before)
			break
		}
		before = minTS
	}

	f.printSummary(format, window, len(kept))
	return kept, nil
}

func (f *Fetcher) printSummary(format string, window DateWindow, kept int) {
	elapsed := time.Since(f.startTime)

	fmt.Printf("\n=== Fetch Complete ===\n")
	fmt.Printf("Format: %s\n", format)
	fmt.Printf("Window: %s\n", window)
	fmt.Printf("Pages fetched: %d\n", f.pagesFetched)
	fmt.Printf("Entries scanned: %d\n", f.scanned)
	fmt.Printf("Duplicates skipped: %d\n", f.dupes)
	if f.minRating > 0 {
		fmt.Printf("Below rating %d: %d\n", f.minRating, f.belowRating)
	}
	fmt.Printf("Replays kept: %d\n", kept)
	fmt.Printf("Total time: %s\n", formatDuration(elapsed))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", hours, mins, secs)
}
