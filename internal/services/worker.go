package services

import (
	"context"
	"log"
	"sync"

	"resumeai/internal/models"
)

// ResumeFile is one file of a combined upload, already saved to local
// storage.
type ResumeFile struct {
	Filename string // original filename, used to match outcomes back to items
	Path     string // stored location on disk
}

// WorkerPool fans a batch of files out to a bounded number of workers. The
// returned outcomes are in request order regardless of completion order.
type WorkerPool interface {
	Process(ctx context.Context, files []ResumeFile, fn func(context.Context, ResumeFile) models.FileOutcome) []models.FileOutcome
}

type workerPool struct {
	concurrency int
}

func NewWorkerPool(concurrency int) WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &workerPool{concurrency: concurrency}
}

// Process implements WorkerPool.
func (p *workerPool) Process(ctx context.Context, files []ResumeFile, fn func(context.Context, ResumeFile) models.FileOutcome) []models.FileOutcome {
	results := make([]models.FileOutcome, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				log.Printf("👷 Worker #%d processing %s\n", workerID, files[idx].Filename)
				results[idx] = fn(ctx, files[idx])
			}
		}(i + 1)
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
