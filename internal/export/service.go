package export

import (
	"fmt"
	"strings"

	"reportdesk/api/internal/report"
)

// Service turns report documents into shareable HTML and PDF output.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Render produces the HTML body for a report. Only image slots flagged
// for email inclusion appear in the output; channels marked no-update
// render as a single line.
func (s *Service) Render(doc *report.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("nil report document")
	}

	normalized := report.Normalize(doc)

	data := TemplateData{
		Date:       normalized.Date,
		SenderName: normalized.SenderName,
		DAOverall: OverviewBlock{
			TotalBudget: normalized.DAOverall.TotalBudget,
			LeadCount:   normalized.DAOverall.LeadCount,
			CPA:         normalized.DAOverall.CPA,
			Images:      includedImages(normalized.DAOverall.Images),
		},
		Partnership: PartnershipBlock{
			TotalBudget: normalized.Partnership.TotalBudget,
			LeadCount:   normalized.Partnership.LeadCount,
			CPA:         normalized.Partnership.CPA,
			Details:     normalized.Partnership.Details,
			WeeklyPlan:  normalized.Partnership.WeeklyPlan,
			Images:      includedImages(normalized.Partnership.Images),
		},
		AttachmentNote: normalized.AttachmentNote,
	}
	if strings.TrimSpace(data.AttachmentNote) == "" {
		data.AttachmentNote = DefaultAttachmentNote
	}

	for _, channel := range report.Channels() {
		section := normalized.MediaDetails[channel]
		data.Channels = append(data.Channels, ChannelBlock{
			Name:     string(channel),
			NoUpdate: section.NoUpdate,
			Comment:  section.Comment,
			Images:   includedImages(section.Images),
		})
	}

	return RenderReportHTML(data)
}

// ExportPDF renders the report and converts it with headless Chrome.
func (s *Service) ExportPDF(doc *report.Document) (*Result, error) {
	html, err := s.Render(doc)
	if err != nil {
		return nil, err
	}
	return exportPDF(html, "daily-report-"+doc.Date)
}

func includedImages(slots []report.ImageSlot) []ImageBlock {
	blocks := make([]ImageBlock, 0, len(slots))
	for _, slot := range slots {
		if !slot.IncludeInEmail || strings.TrimSpace(slot.Src) == "" {
			continue
		}
		blocks = append(blocks, ImageBlock{Src: slot.Src, Caption: slot.Caption})
	}
	return blocks
}
