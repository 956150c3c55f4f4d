package report

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned when every merge attempt failed. The
// caller must assume the stored document was not updated by this call.
var ErrRetriesExhausted = errors.New("merge retries exhausted")

// Store is the document store contract the merge engine needs. GetReport
// returns nil with a nil error when no document exists for the date key.
// Failures are treated as uniformly transient; the engine does not
// distinguish network errors from store-side ones.
type Store interface {
	GetReport(ctx context.Context, dateKey string) (*Document, error)
	PutReport(ctx context.Context, dateKey string, doc *Document) error
}

const (
	mergeAttempts = 5
	backoffBase   = time.Second
	backoffCap    = 8 * time.Second
)

// Engine performs section-scoped merge-writes against a Store.
//
// Each merge re-fetches the current server document and overlays exactly
// one section from the caller's copy onto it, so concurrent editors
// touching different sections never lose each other's work. Two editors
// merging the same section concurrently still race: the later write wins
// for that section's content.
type Engine struct {
	store Store
	sleep func(time.Duration)
	now   func() time.Time
}

// NewEngine creates a merge engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// MergeSection runs the read-merge-write cycle for one section of the
// document identified by dateKey, retrying transient store failures with
// exponential backoff for up to five total attempts.
//
// Only the section named by sectionID is taken from local; every other
// part of the merged document comes from the freshest server snapshot, or
// from local wholesale when no server document exists yet. local is never
// mutated. An unrecognized sectionID still re-stamps the write metadata
// but copies no section payload; callers that want a hard failure for bad
// identifiers should validate with SectionID.Valid before calling.
func (e *Engine) MergeSection(ctx context.Context, dateKey string, local *Document, sectionID SectionID, authorName string) (*Document, error) {
	if dateKey == "" {
		return nil, fmt.Errorf("empty date key")
	}
	if local == nil {
		return nil, fmt.Errorf("nil local document")
	}
	if local.Date != "" && local.Date != dateKey {
		return nil, fmt.Errorf("date key %q does not match local document date %q", dateKey, local.Date)
	}

	var lastErr error
	for attempt := 0; attempt < mergeAttempts; attempt++ {
		if attempt > 0 {
			e.sleep(backoffDelay(attempt - 1))
		}
		merged, err := e.attempt(ctx, dateKey, local, sectionID, authorName)
		if err == nil {
			return merged, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, mergeAttempts, lastErr)
}

func (e *Engine) attempt(ctx context.Context, dateKey string, local *Document, sectionID SectionID, authorName string) (*Document, error) {
	server, err := e.store.GetReport(ctx, dateKey)
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}

	var merged *Document
	if server == nil {
		// First writer wins entirely; there is nothing to merge against.
		merged = local.Clone()
		merged.Version = 1
	} else {
		merged = server.Clone()
		overlaySection(merged, local, sectionID)
		merged.Version = server.Version + 1
	}

	now := e.now()
	merged.Date = dateKey
	merged.LastUpdated = now.UTC()
	merged.LastUpdatedBy = authorName
	merged.LastUpdatedSection = string(sectionID)
	merged.SavedAt = now.Format(time.RFC3339)

	if err := e.store.PutReport(ctx, dateKey, merged); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return merged, nil
}

func overlaySection(dst, src *Document, sectionID SectionID) {
	switch sectionID {
	case SectionDAOverall:
		dst.DAOverall = src.DAOverall.Clone()
	case SectionPartnership:
		dst.Partnership = src.Partnership.Clone()
	case SectionAttachmentNote:
		dst.AttachmentNote = src.AttachmentNote
	case SectionSenderName:
		dst.SenderName = src.SenderName
	default:
		channel, ok := sectionID.MediaChannel()
		if !ok || !ValidChannel(channel) {
			// Unknown identifier: metadata is still stamped, no payload moves.
			return
		}
		if dst.MediaDetails == nil {
			dst.MediaDetails = make(map[Channel]MediaSection, len(Channels()))
		}
		dst.MediaDetails[channel] = src.MediaDetails[channel].Clone()
	}
}

func backoffDelay(failures int) time.Duration {
	delay := backoffBase << failures
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay
}
