// Package batch tracks a session's file uploads through a per-item state
// machine: pending -> uploading -> completed or error, with an explicit
// user-triggered retry edge from error back to uploading.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"resumeai/internal/models"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// canTransition encodes the only legal edges. completed is terminal; error is
// recoverable via retry.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusUploading
	case StatusUploading:
		return to == StatusCompleted || to == StatusError
	case StatusError:
		return to == StatusUploading
	default:
		return false
	}
}

// UploadItem tracks one file through the batch lifecycle. The ID is assigned
// at intake and never changes; the path is an opaque handle owned by the
// caller.
type UploadItem struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Path     string    `json:"-"`
	Size     int64     `json:"size"`
	Status   Status    `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// Submitter issues one combined request carrying every file of a batch and
// reports a per-file outcome list. A returned error means total transport
// failure with no per-file outcomes available.
type Submitter interface {
	Submit(ctx context.Context, items []UploadItem) ([]models.FileOutcome, error)
}

// Tracker owns a session's upload items. The mutex guards item state only; it
// is never held across the network wait.
type Tracker struct {
	mu        sync.Mutex
	submitter Submitter
	limits    Limits

	order          []uuid.UUID
	items          map[uuid.UUID]*UploadItem
	accepted       int // cumulative across the session, dismissals do not free it
	validationErrs []string

	onSuccess func(completed []string)
	onFailure func(failed []string)
}

func NewTracker(submitter Submitter, limits Limits) *Tracker {
	return &Tracker{
		submitter: submitter,
		limits:    limits,
		items:     make(map[uuid.UUID]*UploadItem),
	}
}

// OnSuccess registers the callback fired when at least one item of a batch
// completes.
func (t *Tracker) OnSuccess(fn func(completed []string)) {
	t.onSuccess = fn
}

// OnFailure registers the callback fired, with the failed filenames, when at
// least one item of a batch errors. Both callbacks may fire for one batch.
func (t *Tracker) OnFailure(fn func(failed []string)) {
	t.onFailure = fn
}

// Add validates and enrolls files. Rejected files never become items: the
// rejection is appended to the session error list and siblings are unaffected.
// Returned items are pending.
func (t *Tracker) Add(files ...FileInfo) []UploadItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	var added []UploadItem
	for _, f := range files {
		if t.limits.MaxItems > 0 && t.accepted >= t.limits.MaxItems {
			t.validationErrs = append(t.validationErrs,
				fmt.Sprintf("%s: session upload limit of %d files reached", f.Name, t.limits.MaxItems))
			continue
		}
		if err := t.limits.Check(f); err != nil {
			t.validationErrs = append(t.validationErrs, err.Error())
			continue
		}

		item := &UploadItem{
			ID:       uuid.New(),
			Filename: f.Name,
			Path:     f.Path,
			Size:     f.Size,
			Status:   StatusPending,
		}
		t.items[item.ID] = item
		t.order = append(t.order, item.ID)
		t.accepted++
		added = append(added, *item)
	}
	return added
}

// Items returns a snapshot of the active set in intake order.
func (t *Tracker) Items() []UploadItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]UploadItem, 0, len(t.order))
	for _, id := range t.order {
		if item, ok := t.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out
}

// ValidationErrors returns the accumulated session-level rejection messages.
func (t *Tracker) ValidationErrors() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.validationErrs...)
}

// Dismiss removes an item from the active set. Items are never auto-expired;
// this is the only way out.
func (t *Tracker) Dismiss(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Submit uploads every pending item as one combined batch. The pending set is
// marked uploading atomically with respect to callers; the network wait
// happens with no lock held. On total transport failure every submitted item
// is marked error with the transport message.
func (t *Tracker) Submit(ctx context.Context) error {
	t.mu.Lock()
	var set []UploadItem
	for _, id := range t.order {
		item := t.items[id]
		if item != nil && item.Status == StatusPending {
			item.Status = StatusUploading
			item.Error = ""
			set = append(set, *item)
		}
	}
	t.mu.Unlock()

	if len(set) == 0 {
		return nil
	}
	return t.submitSet(ctx, set)
}

// Retry re-submits a single errored item as a singleton batch through the
// same submission path. Other items are untouched.
func (t *Tracker) Retry(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	item, ok := t.items[id]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("unknown upload item %s", id)
	}
	if !canTransition(item.Status, StatusUploading) {
		status := item.Status
		t.mu.Unlock()
		return fmt.Errorf("cannot retry item %s in status %s", id, status)
	}
	item.Status = StatusUploading
	item.Error = ""
	set := []UploadItem{*item}
	t.mu.Unlock()

	return t.submitSet(ctx, set)
}

func (t *Tracker) submitSet(ctx context.Context, set []UploadItem) error {
	outcomes, err := t.submitter.Submit(ctx, set)

	var completed, failed []string
	t.mu.Lock()
	if err != nil {
		// No per-file outcomes: the whole set failed as a unit.
		for _, s := range set {
			if item, ok := t.items[s.ID]; ok && canTransition(item.Status, StatusError) {
				item.Status = StatusError
				item.Error = err.Error()
				failed = append(failed, item.Filename)
			}
		}
	} else {
		for _, s := range set {
			item, ok := t.items[s.ID]
			if !ok {
				continue // dismissed mid-flight
			}
			outcome, found := matchOutcome(outcomes, item.Filename)
			switch {
			case !found:
				if canTransition(item.Status, StatusError) {
					item.Status = StatusError
					item.Error = "no outcome reported for file"
					failed = append(failed, item.Filename)
				}
			case outcome.Status == models.OutcomeOK:
				if canTransition(item.Status, StatusCompleted) {
					item.Status = StatusCompleted
					item.Error = ""
					completed = append(completed, item.Filename)
				}
			default:
				if canTransition(item.Status, StatusError) {
					item.Status = StatusError
					item.Error = outcome.Detail
					failed = append(failed, item.Filename)
				}
			}
		}
	}
	t.mu.Unlock()

	// Dual notification: a partially failed batch is not an overall failure.
	if len(completed) > 0 && t.onSuccess != nil {
		t.onSuccess(completed)
	}
	if len(failed) > 0 && t.onFailure != nil {
		t.onFailure(failed)
	}
	return err
}

// matchOutcome finds the reply entry for a filename. First match wins when
// names collide.
func matchOutcome(outcomes []models.FileOutcome, filename string) (models.FileOutcome, bool) {
	for _, o := range outcomes {
		if o.Filename == filename {
			return o, true
		}
	}
	return models.FileOutcome{}, false
}
