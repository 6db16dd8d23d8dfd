package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resumeai/internal/batch"
	"resumeai/internal/config"
)

// Bulk-uploads a directory of resumes to a running API instance. Files go up
// as one combined multipart request; items that error are retried once before
// the final summary.
func main() {
	dir := flag.String("dir", "./resumes", "directory of resume files to upload")
	endpoint := flag.String("endpoint", "", "upload endpoint (defaults to local server from config)")
	flag.Parse()

	log.Println("🚀 Starting resume ingestion...")

	cfg := config.Load()
	if *endpoint == "" {
		*endpoint = fmt.Sprintf("http://localhost:%s/api/v1/upload", cfg.Server.Port)
	}

	files, err := collectFiles(*dir)
	if err != nil {
		log.Fatalf("❌ Failed to read %s: %v", *dir, err)
	}
	if len(files) == 0 {
		log.Fatalf("❌ No files found in %s", *dir)
	}
	log.Printf("📂 Found %d file(s) in %s\n", len(files), *dir)

	limits := batch.Limits{
		MaxItems:      cfg.Storage.MaxBatchFiles,
		MaxFileSize:   cfg.Storage.MaxFileSize,
		AcceptedTypes: cfg.Storage.AcceptedTypes,
	}
	submitter := batch.NewHTTPSubmitter(*endpoint, 5*time.Minute)
	tracker := batch.NewTracker(submitter, limits)
	tracker.OnSuccess(func(completed []string) {
		log.Printf("✅ Uploaded: %s\n", strings.Join(completed, ", "))
	})
	tracker.OnFailure(func(failed []string) {
		log.Printf("❌ Failed: %s\n", strings.Join(failed, ", "))
	})

	accepted := tracker.Add(files...)
	for _, msg := range tracker.ValidationErrors() {
		log.Printf("⚠️  Rejected: %s\n", msg)
	}
	if len(accepted) == 0 {
		log.Fatal("❌ No files passed validation")
	}

	ctx := context.Background()
	if err := tracker.Submit(ctx); err != nil {
		log.Printf("⚠️  Upload request failed: %v\n", err)
	}

	// One retry round for whatever errored.
	for _, item := range tracker.Items() {
		if item.Status == batch.StatusError {
			log.Printf("🔄 Retrying %s...\n", item.Filename)
			if err := tracker.Retry(ctx, item.ID); err != nil {
				log.Printf("⚠️  Retry failed for %s: %v\n", item.Filename, err)
			}
		}
	}

	var completed, errored int
	for _, item := range tracker.Items() {
		switch item.Status {
		case batch.StatusCompleted:
			completed++
		case batch.StatusError:
			errored++
			log.Printf("   ❌ %s: %s\n", item.Filename, item.Error)
		}
	}

	log.Println("\n📊 Ingestion summary:")
	log.Printf("   Uploaded: %d\n", completed)
	log.Printf("   Failed:   %d\n", errored)
	log.Printf("   Rejected: %d\n", len(tracker.ValidationErrors()))

	if errored > 0 {
		os.Exit(1)
	}
}

func collectFiles(dir string) ([]batch.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []batch.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, batch.FileInfo{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Type: strings.ToLower(filepath.Ext(entry.Name())),
			Size: info.Size(),
		})
	}
	return files, nil
}
