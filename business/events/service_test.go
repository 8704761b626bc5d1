package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashionPulse/domain"
)

type stubEventRepo struct {
	saved   []domain.Event
	failOn  map[string]bool
	saveErr error
}

func (s *stubEventRepo) SaveEvent(_ context.Context, event *domain.Event) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.failOn[event.ItemID] {
		return errors.New("storage failure")
	}
	s.saved = append(s.saved, *event)
	return nil
}

type stubTagger struct {
	entries map[string]string // sessionID+"/"+itemID -> variant
}

func (s *stubTagger) RecordExposure(_ context.Context, sessionID, variant string, itemIDs ...string) error {
	if s.entries == nil {
		s.entries = make(map[string]string)
	}
	for _, itemID := range itemIDs {
		s.entries[sessionID+"/"+itemID] = variant
	}
	return nil
}

func (s *stubTagger) Lookup(_ context.Context, sessionID, itemID string) (string, bool) {
	v, ok := s.entries[sessionID+"/"+itemID]
	return v, ok
}

func validView(itemID string) RawEvent {
	return RawEvent{
		Type:      domain.EventTypeView,
		SessionID: "sess-1",
		ActorID:   "actor-1",
		ItemID:    itemID,
	}
}

func TestIngestBatchStoresValidRecords(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewService(repo, nil)

	result, err := svc.IngestBatch(context.Background(), []RawEvent{
		validView("item-1"),
		{Type: domain.EventTypeSearch, SessionID: "sess-1", SearchQuery: "linen shirt"},
		{Type: domain.EventTypeImpression, SessionID: "sess-1", ItemIDs: []string{"a", "b"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Accepted)
	assert.Equal(t, 3, result.Stored)
	require.Len(t, repo.saved, 3)

	for _, ev := range repo.saved {
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.OccurredAt.IsZero())
	}
}

func TestIngestBatchRejectsWholeBatchOnOneBadRecord(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewService(repo, nil)

	_, err := svc.IngestBatch(context.Background(), []RawEvent{
		validView("item-1"),
		{Type: "teleport", SessionID: "sess-1", ItemID: "item-2"},
		validView("item-3"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var batchErr *BatchValidationError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Errors, 1)
	assert.Equal(t, 1, batchErr.Errors[0].Index)
	assert.Equal(t, "type", batchErr.Errors[0].Field)

	// All-or-nothing: the valid records must not have been stored.
	assert.Empty(t, repo.saved)
}

func TestIngestBatchReportsEveryViolation(t *testing.T) {
	svc := NewService(&stubEventRepo{}, nil)

	_, err := svc.IngestBatch(context.Background(), []RawEvent{
		{Type: domain.EventTypeView}, // missing session and item
		{Type: "teleport", SessionID: "s"},
	})

	var batchErr *BatchValidationError
	require.ErrorAs(t, err, &batchErr)
	assert.GreaterOrEqual(t, len(batchErr.Errors), 3)
}

func TestIngestBatchCoercesQuantityAndPrice(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewService(repo, nil)

	neg := -5.0
	bad := validView("item-1")
	bad.Quantity = -3
	bad.Price = &neg

	_, err := svc.IngestBatch(context.Background(), []RawEvent{bad})
	require.NoError(t, err)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, 1, repo.saved[0].Quantity)
	assert.Nil(t, repo.saved[0].Price)
}

func TestIngestBatchRejectsEmptyBatch(t *testing.T) {
	svc := NewService(&stubEventRepo{}, nil)

	_, err := svc.IngestBatch(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIngestBatchPersistenceIsBestEffort(t *testing.T) {
	repo := &stubEventRepo{failOn: map[string]bool{"item-2": true}}
	svc := NewService(repo, nil)

	result, err := svc.IngestBatch(context.Background(), []RawEvent{
		validView("item-1"),
		validView("item-2"),
		validView("item-3"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Accepted)
	assert.Equal(t, 2, result.Stored)
	require.Len(t, repo.saved, 2)
	assert.Equal(t, "item-1", repo.saved[0].ItemID)
	assert.Equal(t, "item-3", repo.saved[1].ItemID)
}

func TestIngestBatchAppliesAttribution(t *testing.T) {
	repo := &stubEventRepo{}
	tagger := &stubTagger{entries: map[string]string{
		"sess-1/item-1": "visual_heavy",
	}}
	svc := NewService(repo, tagger)

	tagged := validView("item-1")
	untracked := validView("item-9")
	explicit := validView("item-1")
	explicit.Context = map[string]interface{}{"variant": "control"}

	_, err := svc.IngestBatch(context.Background(), []RawEvent{tagged, untracked, explicit})
	require.NoError(t, err)

	require.Len(t, repo.saved, 3)
	assert.Equal(t, "visual_heavy", repo.saved[0].VariantID)
	assert.Empty(t, repo.saved[1].VariantID)
	// A client-supplied tag beats the attribution map.
	assert.Equal(t, "control", repo.saved[2].VariantID)
}

func TestIngestBatchRecordsExposuresFromImpressions(t *testing.T) {
	repo := &stubEventRepo{}
	tagger := &stubTagger{}
	svc := NewService(repo, tagger)

	impression := RawEvent{
		Type:      domain.EventTypeImpression,
		SessionID: "sess-1",
		ItemIDs:   []string{"item-1", "item-2"},
		Context:   map[string]interface{}{"variant": "visual_heavy"},
	}
	atc := RawEvent{Type: domain.EventTypeAddToCart, SessionID: "sess-1", ItemID: "item-2"}

	_, err := svc.IngestBatch(context.Background(), []RawEvent{impression, atc})
	require.NoError(t, err)

	require.Len(t, repo.saved, 2)
	assert.Equal(t, "visual_heavy", repo.saved[1].VariantID)
}

func TestNormalizeDefaults(t *testing.T) {
	quantityTwo := validView("item-1")
	quantityTwo.Quantity = 2

	ev, errs := normalize(0, quantityTwo)
	require.Empty(t, errs)
	assert.Equal(t, 2, ev.Quantity)

	ev, errs = normalize(0, validView("item-1"))
	require.Empty(t, errs)
	assert.Equal(t, 1, ev.Quantity)
	assert.WithinDuration(t, time.Now().UTC(), ev.OccurredAt, 5*time.Second)
}

func TestNormalizeParsesOccurredAt(t *testing.T) {
	raw := validView("item-1")
	raw.OccurredAt = "2026-02-10T09:30:00+07:00"

	ev, errs := normalize(0, raw)
	require.Empty(t, errs)
	assert.Equal(t, time.Date(2026, 2, 10, 2, 30, 0, 0, time.UTC), ev.OccurredAt)

	raw.OccurredAt = "yesterday"
	_, errs = normalize(0, raw)
	require.Len(t, errs, 1)
	assert.Equal(t, "occurred_at", errs[0].Field)
}

func TestNormalizeTypeScopedPayloads(t *testing.T) {
	_, errs := normalize(0, RawEvent{Type: domain.EventTypeImpression, SessionID: "s"})
	require.Len(t, errs, 1)
	assert.Equal(t, "item_ids", errs[0].Field)

	_, errs = normalize(0, RawEvent{Type: domain.EventTypeSearch, SessionID: "s"})
	require.Len(t, errs, 1)
	assert.Equal(t, "search_query", errs[0].Field)

	_, errs = normalize(0, RawEvent{Type: domain.EventTypePurchase, SessionID: "s"})
	require.Len(t, errs, 1)
	assert.Equal(t, "item_id", errs[0].Field)
}

func TestNormalizeLiftsVariantFromContext(t *testing.T) {
	raw := validView("item-1")
	raw.Context = map[string]interface{}{"variant": "personalized", "source": "recommendation"}

	ev, errs := normalize(0, raw)
	require.Empty(t, errs)
	assert.Equal(t, "personalized", ev.VariantID)
	assert.Equal(t, "recommendation", ev.Source())
}
