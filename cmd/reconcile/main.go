// Command reconcile finds receipt headers whose items were never written and,
// with -delete, removes them.
//
//	go run ./cmd/reconcile -older-than 30m
//	go run ./cmd/reconcile -delete
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyashahama/strideshop-receipts/internal/config"
	"github.com/nyashahama/strideshop-receipts/internal/db"
	"github.com/nyashahama/strideshop-receipts/internal/logging"
	"github.com/nyashahama/strideshop-receipts/internal/store"
)

func main() {
	olderThan := flag.Duration("older-than", 15*time.Minute, "only consider headers created at least this long ago")
	del := flag.Bool("delete", false, "delete the headers found instead of listing them")
	flag.Parse()

	logger := logging.New(os.Getenv("ENV"), os.Stderr)
	slog.SetDefault(logger)

	if err := run(logger, *olderThan, *del); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, olderThan time.Duration, del bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, queries, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	n, err := reconcile(ctx, store.New(pool, queries), os.Stdout, logger, time.Now().Add(-olderThan), del)
	if err != nil {
		return err
	}
	logger.Info("reconcile finished", "partial_receipts", n, "deleted", del)
	return nil
}

// partialStore is the slice of *store.Store reconcile needs.
type partialStore interface {
	ListPartialReceipts(ctx context.Context, cutoff time.Time) ([]store.StoredReceipt, error)
	DeleteReceipt(ctx context.Context, id int64) error
}

// reconcile writes one line per partial receipt to out and, when del is set,
// deletes each. A failed delete is logged and does not stop the run; the
// returned error is then non-nil.
func reconcile(ctx context.Context, st partialStore, out io.Writer, logger *slog.Logger, cutoff time.Time, del bool) (int, error) {
	partial, err := st.ListPartialReceipts(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, r := range partial {
		fmt.Fprintf(out, "%d\torder=%s\tuser=%s\ttotal=%d\tcreated_at=%s\n",
			r.ID, r.OrderID, r.UserID, r.TotalCents, r.CreatedAt.UTC().Format(time.RFC3339))
		if !del {
			continue
		}
		if err := st.DeleteReceipt(ctx, r.ID); err != nil {
			logger.Error("delete partial receipt", "receipt_id", r.ID, "error", err)
			failed++
			continue
		}
		logger.Info("partial receipt deleted", "receipt_id", r.ID)
	}

	if failed > 0 {
		return len(partial), fmt.Errorf("reconcile: %d of %d deletes failed", failed, len(partial))
	}
	return len(partial), nil
}
