package report

import "strings"

// SearchText flattens the document's free-text fields into one string for
// full-text indexing. Image data and metadata are left out.
func (d *Document) SearchText() string {
	if d == nil {
		return ""
	}
	parts := []string{
		d.SenderName,
		d.DAOverall.TotalBudget,
		d.DAOverall.LeadCount,
		d.DAOverall.CPA,
		d.Partnership.TotalBudget,
		d.Partnership.LeadCount,
		d.Partnership.CPA,
		d.Partnership.Details,
		d.Partnership.WeeklyPlan,
		d.AttachmentNote,
	}
	for _, channel := range Channels() {
		section, ok := d.MediaDetails[channel]
		if !ok {
			continue
		}
		parts = append(parts, string(channel), section.Comment)
		for _, slot := range section.Images {
			parts = append(parts, slot.Caption)
		}
	}
	for _, slot := range d.DAOverall.Images {
		parts = append(parts, slot.Caption)
	}
	for _, slot := range d.Partnership.Images {
		parts = append(parts, slot.Caption)
	}

	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
