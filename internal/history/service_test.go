package history

import (
	"testing"

	"reportdesk/api/internal/report"
)

func TestRecordMergeAndHistory(t *testing.T) {
	svc := New(t.TempDir())

	doc := &report.Document{Date: "2026-09-01", Version: 1, SenderName: "김하늘"}
	first, err := svc.RecordMerge("2026-09-01", doc, "김하늘", report.SectionSenderName)
	if err != nil {
		t.Fatalf("RecordMerge failed: %v", err)
	}
	if len(first.Hash) != 7 {
		t.Errorf("expected a 7-char short hash, got %q", first.Hash)
	}
	if first.Author != "김하늘" {
		t.Errorf("expected author 김하늘, got %q", first.Author)
	}

	doc.Version = 2
	doc.Partnership = report.PartnershipSection{Details: "제휴 진행중"}
	second, err := svc.RecordMerge("2026-09-01", doc, "이도윤", report.SectionPartnership)
	if err != nil {
		t.Fatalf("second RecordMerge failed: %v", err)
	}
	if second.Hash == first.Hash {
		t.Error("expected distinct commits for distinct merges")
	}

	commits, err := svc.History("2026-09-01", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Hash != second.Hash {
		t.Errorf("expected newest first, got %+v", commits)
	}
}

func TestHistoryLimit(t *testing.T) {
	svc := New(t.TempDir())

	doc := &report.Document{Date: "2026-09-01"}
	for i := 1; i <= 5; i++ {
		doc.Version = i
		if _, err := svc.RecordMerge("2026-09-01", doc, "담당자", report.SectionDAOverall); err != nil {
			t.Fatalf("RecordMerge %d failed: %v", i, err)
		}
	}

	commits, err := svc.History("2026-09-01", 3)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(commits) != 3 {
		t.Errorf("expected history limited to 3, got %d", len(commits))
	}
}

func TestHistoryNegativeLimitReturnsAll(t *testing.T) {
	svc := New(t.TempDir())

	doc := &report.Document{Date: "2026-09-01", Version: 1}
	if _, err := svc.RecordMerge("2026-09-01", doc, "담당자", report.SectionDAOverall); err != nil {
		t.Fatalf("RecordMerge failed: %v", err)
	}

	commits, err := svc.History("2026-09-01", -1)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(commits) != 1 {
		t.Errorf("expected 1 commit, got %d", len(commits))
	}
}

func TestHistoryForUnknownDateIsEmpty(t *testing.T) {
	svc := New(t.TempDir())

	commits, err := svc.History("2026-01-01", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("expected no commits, got %+v", commits)
	}
}

func TestGetByHashReturnsSnapshot(t *testing.T) {
	svc := New(t.TempDir())

	v1 := &report.Document{Date: "2026-09-01", Version: 1, DAOverall: report.OverallSection{TotalBudget: "100"}}
	commit1, err := svc.RecordMerge("2026-09-01", v1, "담당자", report.SectionDAOverall)
	if err != nil {
		t.Fatalf("RecordMerge failed: %v", err)
	}

	v2 := &report.Document{Date: "2026-09-01", Version: 2, DAOverall: report.OverallSection{TotalBudget: "200"}}
	if _, err := svc.RecordMerge("2026-09-01", v2, "담당자", report.SectionDAOverall); err != nil {
		t.Fatalf("second RecordMerge failed: %v", err)
	}

	snapshot, err := svc.GetByHash("2026-09-01", commit1.Hash)
	if err != nil {
		t.Fatalf("GetByHash failed: %v", err)
	}
	if snapshot.Version != 1 || snapshot.DAOverall.TotalBudget != "100" {
		t.Errorf("expected the first snapshot, got %+v", snapshot)
	}
}

func TestDatesAreIsolated(t *testing.T) {
	svc := New(t.TempDir())

	if _, err := svc.RecordMerge("2026-09-01", &report.Document{Date: "2026-09-01", Version: 1}, "A", report.SectionDAOverall); err != nil {
		t.Fatalf("RecordMerge failed: %v", err)
	}
	if _, err := svc.RecordMerge("2026-09-02", &report.Document{Date: "2026-09-02", Version: 1}, "B", report.SectionDAOverall); err != nil {
		t.Fatalf("RecordMerge failed: %v", err)
	}

	commits, err := svc.History("2026-09-01", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(commits) != 1 {
		t.Errorf("expected one commit for 2026-09-01, got %d", len(commits))
	}
	if commits[0].Author != "A" {
		t.Errorf("wrong repo read: %+v", commits[0])
	}
}
