package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai/internal/models"
)

type fakeSubmitter struct {
	outcomes []models.FileOutcome
	err      error
	calls    [][]UploadItem
}

func (f *fakeSubmitter) Submit(_ context.Context, items []UploadItem) ([]models.FileOutcome, error) {
	f.calls = append(f.calls, items)
	if f.err != nil {
		return nil, f.err
	}
	if f.outcomes != nil {
		return f.outcomes, nil
	}
	// Default: everything succeeds.
	var outcomes []models.FileOutcome
	for _, item := range items {
		outcomes = append(outcomes, models.FileOutcome{Filename: item.Filename, Status: models.OutcomeOK})
	}
	return outcomes, nil
}

func testLimits() Limits {
	return Limits{
		MaxItems:      10,
		MaxFileSize:   1 << 20,
		AcceptedTypes: []string{".pdf", "image/*"},
	}
}

func pdfFile(name string) FileInfo {
	return FileInfo{Name: name, Path: "/tmp/" + name, Size: 1024}
}

func TestSubmit_PartialFailure(t *testing.T) {
	sub := &fakeSubmitter{
		outcomes: []models.FileOutcome{
			{Filename: "a.pdf", Status: models.OutcomeOK},
			{Filename: "b.pdf", Status: models.OutcomeError, Detail: "validation failed: missing name"},
			{Filename: "c.pdf", Status: models.OutcomeOK},
		},
	}
	tracker := NewTracker(sub, testLimits())

	var succeeded, failed []string
	tracker.OnSuccess(func(files []string) { succeeded = files })
	tracker.OnFailure(func(files []string) { failed = files })

	tracker.Add(pdfFile("a.pdf"), pdfFile("b.pdf"), pdfFile("c.pdf"))
	err := tracker.Submit(context.Background())
	require.NoError(t, err) // partial failure is not an overall failure

	items := tracker.Items()
	require.Len(t, items, 3)
	assert.Equal(t, StatusCompleted, items[0].Status)
	assert.Equal(t, StatusError, items[1].Status)
	assert.Equal(t, "validation failed: missing name", items[1].Error)
	assert.Equal(t, StatusCompleted, items[2].Status)

	// Both notifications fire independently.
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, succeeded)
	assert.Equal(t, []string{"b.pdf"}, failed)
}

func TestSubmit_OneCombinedRequest(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := NewTracker(sub, testLimits())

	tracker.Add(pdfFile("a.pdf"), pdfFile("b.pdf"))
	require.NoError(t, tracker.Submit(context.Background()))

	require.Len(t, sub.calls, 1)
	assert.Len(t, sub.calls[0], 2)

	// Nothing pending anymore: a second submit issues no request.
	require.NoError(t, tracker.Submit(context.Background()))
	assert.Len(t, sub.calls, 1)
}

func TestSubmit_TransportFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	tracker := NewTracker(sub, testLimits())

	var failed []string
	tracker.OnFailure(func(files []string) { failed = files })

	tracker.Add(pdfFile("a.pdf"), pdfFile("b.pdf"))
	err := tracker.Submit(context.Background())
	require.Error(t, err)

	for _, item := range tracker.Items() {
		assert.Equal(t, StatusError, item.Status)
		assert.Equal(t, "connection refused", item.Error)
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, failed)
}

func TestRetry_SingleItem(t *testing.T) {
	sub := &fakeSubmitter{
		outcomes: []models.FileOutcome{
			{Filename: "a.pdf", Status: models.OutcomeOK},
			{Filename: "b.pdf", Status: models.OutcomeError, Detail: "unreadable"},
		},
	}
	tracker := NewTracker(sub, testLimits())
	tracker.Add(pdfFile("a.pdf"), pdfFile("b.pdf"))
	require.NoError(t, tracker.Submit(context.Background()))

	items := tracker.Items()
	require.Equal(t, StatusError, items[1].Status)

	// Retry goes through the same path as a singleton batch and succeeds.
	sub.outcomes = []models.FileOutcome{{Filename: "b.pdf", Status: models.OutcomeOK}}
	require.NoError(t, tracker.Retry(context.Background(), items[1].ID))

	require.Len(t, sub.calls, 2)
	assert.Len(t, sub.calls[1], 1)
	assert.Equal(t, "b.pdf", sub.calls[1][0].Filename)

	items = tracker.Items()
	assert.Equal(t, StatusCompleted, items[0].Status) // untouched
	assert.Equal(t, StatusCompleted, items[1].Status)
	assert.Empty(t, items[1].Error)
}

func TestRetry_CompletedIsTerminal(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := NewTracker(sub, testLimits())
	tracker.Add(pdfFile("a.pdf"))
	require.NoError(t, tracker.Submit(context.Background()))

	items := tracker.Items()
	require.Equal(t, StatusCompleted, items[0].Status)

	err := tracker.Retry(context.Background(), items[0].ID)
	assert.Error(t, err)
	assert.Equal(t, StatusCompleted, tracker.Items()[0].Status)
}

func TestAdd_OversizedFileExcluded(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := NewTracker(sub, testLimits())

	big := FileInfo{Name: "big.pdf", Path: "/tmp/big.pdf", Size: 2 << 20}
	added := tracker.Add(pdfFile("ok.pdf"), big)

	// The oversized file never becomes an item, so it can never reach
	// uploading; its sibling is unaffected.
	require.Len(t, added, 1)
	assert.Equal(t, "ok.pdf", added[0].Filename)

	errs := tracker.ValidationErrors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "big.pdf")

	require.NoError(t, tracker.Submit(context.Background()))
	require.Len(t, sub.calls, 1)
	require.Len(t, sub.calls[0], 1)
	assert.Equal(t, "ok.pdf", sub.calls[0][0].Filename)
}

func TestAdd_SessionItemCap(t *testing.T) {
	limits := testLimits()
	limits.MaxItems = 2
	tracker := NewTracker(&fakeSubmitter{}, limits)

	added := tracker.Add(pdfFile("a.pdf"), pdfFile("b.pdf"), pdfFile("c.pdf"))
	assert.Len(t, added, 2)
	require.Len(t, tracker.ValidationErrors(), 1)
	assert.Contains(t, tracker.ValidationErrors()[0], "c.pdf")
}

func TestSubmit_MissingOutcomeMarksError(t *testing.T) {
	sub := &fakeSubmitter{
		outcomes: []models.FileOutcome{{Filename: "a.pdf", Status: models.OutcomeOK}},
	}
	tracker := NewTracker(sub, testLimits())
	tracker.Add(pdfFile("a.pdf"), pdfFile("b.pdf"))
	require.NoError(t, tracker.Submit(context.Background()))

	items := tracker.Items()
	assert.Equal(t, StatusCompleted, items[0].Status)
	assert.Equal(t, StatusError, items[1].Status)
	assert.Equal(t, "no outcome reported for file", items[1].Error)
}

func TestDismiss(t *testing.T) {
	tracker := NewTracker(&fakeSubmitter{}, testLimits())
	added := tracker.Add(pdfFile("a.pdf"), pdfFile("b.pdf"))
	require.Len(t, added, 2)

	assert.True(t, tracker.Dismiss(added[0].ID))
	assert.False(t, tracker.Dismiss(added[0].ID))

	items := tracker.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b.pdf", items[0].Filename)
}
