package report

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeNil(t *testing.T) {
	if got := Normalize(nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestNormalizeLegacyImageBecomesFirstSlot(t *testing.T) {
	legacy := "data:image/png;base64,AAA"
	doc := &Document{
		Date:      "2026-09-01",
		DAOverall: OverallSection{TotalBudget: "1,000", Image: &legacy},
		MediaDetails: map[Channel]MediaSection{
			ChannelNaverGFA: {Comment: "소재 교체", Image: &legacy},
		},
	}

	got := Normalize(doc)

	for name, section := range map[string]struct {
		images []ImageSlot
		legacy *string
	}{
		"daOverall": {got.DAOverall.Images, got.DAOverall.Image},
		"naverGFA":  {got.MediaDetails[ChannelNaverGFA].Images, got.MediaDetails[ChannelNaverGFA].Image},
	} {
		if len(section.images) != SlotCount {
			t.Errorf("%s: expected %d slots, got %d", name, SlotCount, len(section.images))
			continue
		}
		first := section.images[0]
		if first.Src != legacy || !first.IncludeInEmail || first.Caption != "" {
			t.Errorf("%s: bad first slot %+v", name, first)
		}
		for i, slot := range section.images[1:] {
			if slot.Src != "" || slot.IncludeInEmail || slot.Caption != "" {
				t.Errorf("%s: slot %d not empty: %+v", name, i+1, slot)
			}
		}
		if section.legacy != nil {
			t.Errorf("%s: legacy field must be cleared, got %q", name, *section.legacy)
		}
	}
}

func TestNormalizeNullAndAbsentLegacyImage(t *testing.T) {
	// A JSON null and a missing key both decode to a nil pointer.
	for _, raw := range []string{
		`{"date":"2026-09-01","daOverall":{"image":null}}`,
		`{"date":"2026-09-01","daOverall":{}}`,
	} {
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got := Normalize(&doc)
		if len(got.DAOverall.Images) != SlotCount {
			t.Fatalf("expected %d slots, got %d", SlotCount, len(got.DAOverall.Images))
		}
		if got.DAOverall.Images[0].IncludeInEmail {
			t.Errorf("no legacy image must mean includeInEmail=false: %s", raw)
		}
		if got.DAOverall.Images[0].Src != "" {
			t.Errorf("expected empty src, got %q", got.DAOverall.Images[0].Src)
		}
	}
}

func TestNormalizePadsShortImageArrays(t *testing.T) {
	doc := &Document{
		Date: "2026-09-01",
		Partnership: PartnershipSection{
			Images: []ImageSlot{{Src: "data:image/png;base64,BBB", IncludeInEmail: true, Caption: "주간 성과"}},
		},
	}

	got := Normalize(doc)
	if len(got.Partnership.Images) != SlotCount {
		t.Fatalf("expected %d slots, got %d", SlotCount, len(got.Partnership.Images))
	}
	if got.Partnership.Images[0].Caption != "주간 성과" {
		t.Errorf("existing slot must be kept, got %+v", got.Partnership.Images[0])
	}
	for i := 1; i < SlotCount; i++ {
		if got.Partnership.Images[i] != (ImageSlot{}) {
			t.Errorf("slot %d must be padded empty, got %+v", i, got.Partnership.Images[i])
		}
	}
}

func TestNormalizeExistingImagesWinOverLegacy(t *testing.T) {
	legacy := "data:image/png;base64,OLD"
	doc := &Document{
		Date: "2026-09-01",
		DAOverall: OverallSection{
			Image:  &legacy,
			Images: []ImageSlot{{Src: "data:image/png;base64,NEW", IncludeInEmail: true}, {}, {}, {}},
		},
	}

	got := Normalize(doc)
	if got.DAOverall.Images[0].Src != "data:image/png;base64,NEW" {
		t.Errorf("slot array must win over the legacy field, got %q", got.DAOverall.Images[0].Src)
	}
	if got.DAOverall.Image != nil {
		t.Errorf("legacy field must be cleared, got %q", *got.DAOverall.Image)
	}
}

func TestNormalizeFillsAllChannels(t *testing.T) {
	doc := &Document{
		Date: "2026-09-01",
		MediaDetails: map[Channel]MediaSection{
			ChannelKakao: {Comment: "CPM 하락"},
		},
	}

	got := Normalize(doc)
	if len(got.MediaDetails) != len(Channels()) {
		t.Fatalf("expected %d channels, got %d", len(Channels()), len(got.MediaDetails))
	}
	for _, ch := range Channels() {
		section, ok := got.MediaDetails[ch]
		if !ok {
			t.Errorf("missing channel %q", ch)
			continue
		}
		if len(section.Images) != SlotCount {
			t.Errorf("channel %q: expected %d slots, got %d", ch, SlotCount, len(section.Images))
		}
	}
	if got.MediaDetails[ChannelKakao].Comment != "CPM 하락" {
		t.Errorf("existing channel content lost: %+v", got.MediaDetails[ChannelKakao])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	legacy := "data:image/png;base64,CCC"
	doc := &Document{
		Date:      "2026-09-01",
		DAOverall: OverallSection{Image: &legacy},
		MediaDetails: map[Channel]MediaSection{
			ChannelMeta: {Image: &legacy, NoUpdate: true},
		},
		Partnership: PartnershipSection{Details: "제휴 현황"},
	}

	once := Normalize(doc)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	legacy := "data:image/png;base64,DDD"
	doc := &Document{
		Date:      "2026-09-01",
		DAOverall: OverallSection{Image: &legacy},
	}

	_ = Normalize(doc)
	if doc.DAOverall.Image == nil || *doc.DAOverall.Image != legacy {
		t.Errorf("input mutated: %+v", doc.DAOverall)
	}
	if doc.DAOverall.Images != nil {
		t.Errorf("input mutated: images %+v", doc.DAOverall.Images)
	}
	if len(doc.MediaDetails) != 0 {
		t.Errorf("input mutated: mediaDetails %+v", doc.MediaDetails)
	}
}
