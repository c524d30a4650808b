// Command scan runs a one-shot library scan against a folder and prints
// the reconciliation summary. It performs the same reconciliation the
// server does on connect, including writing the metadata sidecar.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/scanner"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: scan <folder-path>")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	tmpDir, err := os.MkdirTemp("", "soundvault-scan-*")
	if err != nil {
		logger.Error("could not create temp dir", "error", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	backup, err := store.New(tmpDir, logger)
	if err != nil {
		logger.Error("could not open backup store", "error", err)
		os.Exit(1)
	}
	defer backup.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sessions := session.NewManager(backup, logger)
	sess, err := sessions.RequestDirectory(ctx, os.Args[1])
	if err != nil {
		logger.Error("could not open folder", "error", err)
		os.Exit(1)
	}

	meta := metastore.New(backup, logger)
	registry := playback.NewRegistry(logger)
	reconciler := scanner.NewReconciler(meta, registry, scanner.AudiometaProber{}, logger)

	result, err := reconciler.Scan(ctx, sess)
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Scan Complete ===\n")
	fmt.Printf("Duration: %s\n", result.CompletedAt.Sub(result.StartedAt))
	fmt.Printf("Added:    %d\n", result.Added)
	fmt.Printf("Kept:     %d\n", result.Kept)
	fmt.Printf("Removed:  %d\n", result.Removed)
	fmt.Printf("Errors:   %d\n", result.Errors)
	for _, rec := range result.Records {
		fmt.Printf("  %-40s %-16s %6.2fs  %s\n", rec.Filename, rec.Category, rec.Duration, rec.ID)
	}
}
