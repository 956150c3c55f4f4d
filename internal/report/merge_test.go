package report

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	getReportFn func(context.Context, string) (*Document, error)
	putReportFn func(context.Context, string, *Document) error
}

func (f *fakeStore) GetReport(ctx context.Context, dateKey string) (*Document, error) {
	if f.getReportFn != nil {
		return f.getReportFn(ctx, dateKey)
	}
	return nil, nil
}

func (f *fakeStore) PutReport(ctx context.Context, dateKey string, doc *Document) error {
	if f.putReportFn != nil {
		return f.putReportFn(ctx, dateKey, doc)
	}
	return nil
}

// memoryStore behaves like the real store: one document per date key,
// replaced wholesale on every put.
type memoryStore struct {
	docs map[string]*Document
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string]*Document)}
}

func (m *memoryStore) GetReport(_ context.Context, dateKey string) (*Document, error) {
	doc, ok := m.docs[dateKey]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func (m *memoryStore) PutReport(_ context.Context, dateKey string, doc *Document) error {
	m.docs[dateKey] = doc.Clone()
	return nil
}

func newTestEngine(store Store) (*Engine, *[]time.Duration) {
	slept := []time.Duration{}
	engine := &Engine{
		store: store,
		sleep: func(d time.Duration) { slept = append(slept, d) },
		now:   func() time.Time { return time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC) },
	}
	return engine, &slept
}

func TestMergeSectionFirstWriterWins(t *testing.T) {
	store := newMemoryStore()
	engine, _ := newTestEngine(store)

	local := &Document{
		Date:       "2026-09-01",
		SenderName: "김하늘",
		DAOverall:  OverallSection{TotalBudget: "1,200,000", LeadCount: "34", CPA: "35,294"},
		MediaDetails: map[Channel]MediaSection{
			ChannelKakao: {Comment: "리타겟팅 소재 교체"},
		},
	}

	merged, err := engine.MergeSection(context.Background(), "2026-09-01", local, SectionDAOverall, "김하늘")
	if err != nil {
		t.Fatalf("MergeSection failed: %v", err)
	}

	if merged.Version != 1 {
		t.Errorf("expected version 1 on first write, got %d", merged.Version)
	}
	if merged.DAOverall.TotalBudget != "1,200,000" {
		t.Errorf("expected full local content, got daOverall %+v", merged.DAOverall)
	}
	if merged.MediaDetails[ChannelKakao].Comment != "리타겟팅 소재 교체" {
		t.Errorf("first write must keep every local section, got %+v", merged.MediaDetails)
	}
	if merged.LastUpdatedBy != "김하늘" || merged.LastUpdatedSection != "daOverall" {
		t.Errorf("metadata not stamped: %+v", merged)
	}

	stored, _ := store.GetReport(context.Background(), "2026-09-01")
	if stored == nil || stored.Version != 1 {
		t.Fatalf("expected stored document with version 1, got %+v", stored)
	}
}

func TestMergeSectionLeavesOtherSectionsUntouched(t *testing.T) {
	store := newMemoryStore()
	store.docs["2026-09-01"] = &Document{
		Date:        "2026-09-01",
		DAOverall:   OverallSection{TotalBudget: "100"},
		Partnership: PartnershipSection{Details: "A"},
		Version:     3,
	}
	engine, _ := newTestEngine(store)

	// The local copy has drifted in a section the caller did not edit;
	// only partnership may land.
	local := &Document{
		Date:        "2026-09-01",
		DAOverall:   OverallSection{TotalBudget: "999"},
		Partnership: PartnershipSection{Details: "B"},
	}

	merged, err := engine.MergeSection(context.Background(), "2026-09-01", local, SectionPartnership, "이도윤")
	if err != nil {
		t.Fatalf("MergeSection failed: %v", err)
	}

	if merged.Version != 4 {
		t.Errorf("expected version 4, got %d", merged.Version)
	}
	if merged.Partnership.Details != "B" {
		t.Errorf("expected partnership details B, got %q", merged.Partnership.Details)
	}
	if merged.DAOverall.TotalBudget != "100" {
		t.Errorf("daOverall must come from the server snapshot, got %q", merged.DAOverall.TotalBudget)
	}
}

func TestMergeSectionDisjointSectionsCommute(t *testing.T) {
	store := newMemoryStore()
	engine, _ := newTestEngine(store)
	ctx := context.Background()

	editorA := &Document{Date: "2026-09-01", MediaDetails: map[Channel]MediaSection{
		ChannelGoogle: {Comment: "PMax 예산 증액"},
	}}
	editorB := &Document{Date: "2026-09-01", MediaDetails: map[Channel]MediaSection{
		ChannelMeta: {Comment: "어드밴티지+ 테스트 시작", NoUpdate: false},
	}}
	editorC := &Document{Date: "2026-09-01", Partnership: PartnershipSection{WeeklyPlan: "제휴 2건 협의"}}

	if _, err := engine.MergeSection(ctx, "2026-09-01", editorA, MediaSectionID(ChannelGoogle), "A"); err != nil {
		t.Fatalf("merge A: %v", err)
	}
	if _, err := engine.MergeSection(ctx, "2026-09-01", editorB, MediaSectionID(ChannelMeta), "B"); err != nil {
		t.Fatalf("merge B: %v", err)
	}
	final, err := engine.MergeSection(ctx, "2026-09-01", editorC, SectionPartnership, "C")
	if err != nil {
		t.Fatalf("merge C: %v", err)
	}

	if final.Version != 3 {
		t.Errorf("expected version 3 after 3 merges, got %d", final.Version)
	}
	if got := final.MediaDetails[ChannelGoogle].Comment; got != "PMax 예산 증액" {
		t.Errorf("editor A's section lost: %q", got)
	}
	if got := final.MediaDetails[ChannelMeta].Comment; got != "어드밴티지+ 테스트 시작" {
		t.Errorf("editor B's section lost: %q", got)
	}
	if final.Partnership.WeeklyPlan != "제휴 2건 협의" {
		t.Errorf("editor C's section lost: %q", final.Partnership.WeeklyPlan)
	}
	if final.LastUpdatedBy != "C" {
		t.Errorf("expected last writer C, got %q", final.LastUpdatedBy)
	}
}

func TestMergeSectionVersionCountsMerges(t *testing.T) {
	store := newMemoryStore()
	engine, _ := newTestEngine(store)
	ctx := context.Background()

	local := &Document{Date: "2026-09-01", AttachmentNote: "메일 본문 하단 참고"}
	for i := 0; i < 5; i++ {
		merged, err := engine.MergeSection(ctx, "2026-09-01", local, SectionAttachmentNote, "담당자")
		if err != nil {
			t.Fatalf("merge %d: %v", i+1, err)
		}
		if merged.Version != i+1 {
			t.Fatalf("after %d merges expected version %d, got %d", i+1, i+1, merged.Version)
		}
	}
}

func TestMergeSectionRetriesWithBackoffThenSucceeds(t *testing.T) {
	failures := 4
	store := newMemoryStore()
	flaky := &fakeStore{
		getReportFn: store.GetReport,
		putReportFn: func(ctx context.Context, dateKey string, doc *Document) error {
			if failures > 0 {
				failures--
				return errors.New("store unavailable")
			}
			return store.PutReport(ctx, dateKey, doc)
		},
	}
	engine, slept := newTestEngine(flaky)

	merged, err := engine.MergeSection(context.Background(), "2026-09-01", &Document{Date: "2026-09-01"}, SectionSenderName, "박서준")
	if err != nil {
		t.Fatalf("expected success on the fifth attempt, got %v", err)
	}
	if merged.Version != 1 {
		t.Errorf("expected version 1, got %d", merged.Version)
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d backoff waits, got %v", len(want), *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("backoff %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestMergeSectionGivesUpAfterFiveAttempts(t *testing.T) {
	calls := 0
	flaky := &fakeStore{
		getReportFn: func(context.Context, string) (*Document, error) {
			calls++
			return nil, errors.New("store unavailable")
		},
	}
	engine, slept := newTestEngine(flaky)

	_, err := engine.MergeSection(context.Background(), "2026-09-01", &Document{}, SectionDAOverall, "담당자")
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 attempts, got %d", calls)
	}
	if len(*slept) != 4 {
		t.Errorf("expected 4 backoff waits, got %v", *slept)
	}
}

func TestMergeSectionUnknownIdentifierIsMetadataOnly(t *testing.T) {
	store := newMemoryStore()
	store.docs["2026-09-01"] = &Document{
		Date:      "2026-09-01",
		DAOverall: OverallSection{TotalBudget: "100"},
		Version:   2,
	}
	engine, _ := newTestEngine(store)

	local := &Document{
		Date:      "2026-09-01",
		DAOverall: OverallSection{TotalBudget: "555"},
	}
	merged, err := engine.MergeSection(context.Background(), "2026-09-01", local, SectionID("media_틱톡"), "담당자")
	if err != nil {
		t.Fatalf("MergeSection failed: %v", err)
	}

	if merged.DAOverall.TotalBudget != "100" {
		t.Errorf("unknown section must copy no payload, got %q", merged.DAOverall.TotalBudget)
	}
	if merged.Version != 3 {
		t.Errorf("version must still bump, got %d", merged.Version)
	}
	if merged.LastUpdatedSection != "media_틱톡" {
		t.Errorf("metadata must still be stamped, got %q", merged.LastUpdatedSection)
	}
}

func TestMergeSectionDoesNotMutateLocalDocument(t *testing.T) {
	store := newMemoryStore()
	store.docs["2026-09-01"] = &Document{Date: "2026-09-01", Version: 7}
	engine, _ := newTestEngine(store)

	local := &Document{
		Date:       "2026-09-01",
		SenderName: "최유진",
		MediaDetails: map[Channel]MediaSection{
			ChannelToss: {Comment: "신규 캠페인 세팅", Images: []ImageSlot{{Src: "data:image/png;base64,AAA", IncludeInEmail: true}}},
		},
	}
	if _, err := engine.MergeSection(context.Background(), "2026-09-01", local, MediaSectionID(ChannelToss), "최유진"); err != nil {
		t.Fatalf("MergeSection failed: %v", err)
	}

	if local.Version != 0 {
		t.Errorf("local document mutated: version %d", local.Version)
	}
	if local.LastUpdatedSection != "" || local.SavedAt != "" {
		t.Errorf("local document mutated: %+v", local)
	}
}

func TestMergeSectionRejectsDateMismatch(t *testing.T) {
	engine, _ := newTestEngine(newMemoryStore())

	_, err := engine.MergeSection(context.Background(), "2026-09-01", &Document{Date: "2026-09-02"}, SectionDAOverall, "담당자")
	if err == nil {
		t.Fatal("expected an error for mismatched date key")
	}

	if _, err := engine.MergeSection(context.Background(), "", &Document{}, SectionDAOverall, "담당자"); err == nil {
		t.Fatal("expected an error for empty date key")
	}
}

func TestMergeSectionEachRetryRefetches(t *testing.T) {
	// A concurrent writer advances the server document between attempts;
	// the retry must re-base on the newer snapshot.
	store := newMemoryStore()
	store.docs["2026-09-01"] = &Document{Date: "2026-09-01", Version: 1}

	firstPut := true
	flaky := &fakeStore{
		getReportFn: store.GetReport,
		putReportFn: func(ctx context.Context, dateKey string, doc *Document) error {
			if firstPut {
				firstPut = false
				// Simulate another client landing a merge while ours fails.
				store.docs[dateKey] = &Document{
					Date:      dateKey,
					DAOverall: OverallSection{TotalBudget: "77"},
					Version:   2,
				}
				return errors.New("write conflict")
			}
			return store.PutReport(ctx, dateKey, doc)
		},
	}
	engine, _ := newTestEngine(flaky)

	merged, err := engine.MergeSection(context.Background(), "2026-09-01", &Document{Date: "2026-09-01", Partnership: PartnershipSection{Details: "B"}}, SectionPartnership, "담당자")
	if err != nil {
		t.Fatalf("MergeSection failed: %v", err)
	}
	if merged.Version != 3 {
		t.Errorf("retry must base on the refetched version 2, got version %d", merged.Version)
	}
	if merged.DAOverall.TotalBudget != "77" {
		t.Errorf("retry must carry the concurrent writer's section, got %q", merged.DAOverall.TotalBudget)
	}
}
