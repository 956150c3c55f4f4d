// Package report holds the daily report document model and the
// section-scoped merge engine that persists it.
package report

import "time"

// Channel identifies one of the advertising platforms tracked in a daily
// report. The set is closed: documents always carry all seven keys.
type Channel string

const (
	ChannelToss        Channel = "토스"
	ChannelNaverGFA    Channel = "네이버GFA"
	ChannelNaverNOSP   Channel = "네이버NOSP"
	ChannelKakao       Channel = "카카오"
	ChannelGoogle      Channel = "구글"
	ChannelMeta        Channel = "메타"
	ChannelAppCampaign Channel = "앱캠페인"
)

// Channels returns the fixed channel set in display order.
func Channels() []Channel {
	return []Channel{
		ChannelToss,
		ChannelNaverGFA,
		ChannelNaverNOSP,
		ChannelKakao,
		ChannelGoogle,
		ChannelMeta,
		ChannelAppCampaign,
	}
}

// ValidChannel reports whether c is one of the seven known channels.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelToss, ChannelNaverGFA, ChannelNaverNOSP, ChannelKakao,
		ChannelGoogle, ChannelMeta, ChannelAppCampaign:
		return true
	}
	return false
}

// SlotCount is the number of image slots every image-bearing section owns.
// Slot 0 is the large/primary slot by convention.
const SlotCount = 4

// ImageSlot is one fixed position for a pasted image. Src holds either a
// data URL captured by the form or an object key from the image store.
type ImageSlot struct {
	Src            string `json:"src,omitempty"`
	IncludeInEmail bool   `json:"includeInEmail"`
	Caption        string `json:"caption"`
}

// OverallSection carries the DA-wide metrics for the day.
// Image is the pre-slot-array shape some stored documents still have;
// Normalize folds it into Images and clears it.
type OverallSection struct {
	TotalBudget string      `json:"totalBudget"`
	LeadCount   string      `json:"leadCount"`
	CPA         string      `json:"cpa"`
	Images      []ImageSlot `json:"images,omitempty"`
	Image       *string     `json:"image,omitempty"`
}

// MediaSection is the per-channel update block.
type MediaSection struct {
	Comment  string      `json:"comment"`
	NoUpdate bool        `json:"noUpdate"`
	Images   []ImageSlot `json:"images,omitempty"`
	Image    *string     `json:"image,omitempty"`
}

// PartnershipSection carries the partnership metrics plus free-text detail.
type PartnershipSection struct {
	TotalBudget string      `json:"totalBudget"`
	LeadCount   string      `json:"leadCount"`
	CPA         string      `json:"cpa"`
	Details     string      `json:"details"`
	WeeklyPlan  string      `json:"weeklyPlan"`
	Images      []ImageSlot `json:"images,omitempty"`
	Image       *string     `json:"image,omitempty"`
}

// Document is one day's report. Exactly one exists per date key; it is
// created lazily by the first merge-write for that date.
type Document struct {
	Date           string                   `json:"date"`
	SenderName     string                   `json:"senderName"`
	DAOverall      OverallSection           `json:"daOverall"`
	MediaDetails   map[Channel]MediaSection `json:"mediaDetails"`
	Partnership    PartnershipSection       `json:"partnership"`
	AttachmentNote string                   `json:"attachmentNote"`

	// Version increases by exactly 1 per successful merge-write and is 1
	// after the first write. A never-written document compares as 0.
	Version            int       `json:"version"`
	LastUpdated        time.Time `json:"lastUpdated"`
	LastUpdatedBy      string    `json:"lastUpdatedBy"`
	LastUpdatedSection string    `json:"lastUpdatedSection"`
	SavedAt            string    `json:"savedAt,omitempty"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.DAOverall = d.DAOverall.Clone()
	out.Partnership = d.Partnership.Clone()
	if d.MediaDetails != nil {
		out.MediaDetails = make(map[Channel]MediaSection, len(d.MediaDetails))
		for channel, section := range d.MediaDetails {
			out.MediaDetails[channel] = section.Clone()
		}
	}
	return &out
}

func (s OverallSection) Clone() OverallSection {
	out := s
	out.Images = cloneSlots(s.Images)
	out.Image = cloneStringPtr(s.Image)
	return out
}

func (s MediaSection) Clone() MediaSection {
	out := s
	out.Images = cloneSlots(s.Images)
	out.Image = cloneStringPtr(s.Image)
	return out
}

func (s PartnershipSection) Clone() PartnershipSection {
	out := s
	out.Images = cloneSlots(s.Images)
	out.Image = cloneStringPtr(s.Image)
	return out
}

func cloneSlots(slots []ImageSlot) []ImageSlot {
	if slots == nil {
		return nil
	}
	out := make([]ImageSlot, len(slots))
	copy(out, slots)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
