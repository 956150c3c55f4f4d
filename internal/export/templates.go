package export

import (
	"bytes"
	"html/template"
)

// DefaultAttachmentNote is used when a report carries no attachment note.
const DefaultAttachmentNote = "상세 지표는 첨부 이미지를 참고 부탁드립니다."

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateHTML))

// TemplateData holds the flattened report for template rendering.
type TemplateData struct {
	Date           string
	SenderName     string
	DAOverall      OverviewBlock
	Channels       []ChannelBlock
	Partnership    PartnershipBlock
	AttachmentNote string
}

// OverviewBlock is the DA totals header.
type OverviewBlock struct {
	TotalBudget string
	LeadCount   string
	CPA         string
	Images      []ImageBlock
}

// ChannelBlock is one media channel's entry.
type ChannelBlock struct {
	Name     string
	NoUpdate bool
	Comment  string
	Images   []ImageBlock
}

// PartnershipBlock is the partnership summary.
type PartnershipBlock struct {
	TotalBudget string
	LeadCount   string
	CPA         string
	Details     string
	WeeklyPlan  string
	Images      []ImageBlock
}

// ImageBlock is one email-included image slot.
type ImageBlock struct {
	Src     string
	Caption string
}

// RenderReportHTML renders the report template with provided data.
func RenderReportHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
  <meta charset="UTF-8">
  <title>데일리 리포트 {{.Date}}</title>
  <style>
    body { font-family: 'Malgun Gothic', 'Apple SD Gothic Neo', Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    h2 { margin-top: 2rem; border-left: 4px solid #333; padding-left: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table.metrics { border-collapse: collapse; margin: 1rem 0; }
    table.metrics th, table.metrics td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
    table.metrics th { background: #f5f5f5; }
    .channel { margin: 1rem 0; padding: 0.75rem 1rem; background: #fafafa; border: 1px solid #eee; }
    .channel .no-update { color: #999; }
    .image { margin: 0.75rem 0; }
    .image img { max-width: 100%; border: 1px solid #ddd; }
    .image .caption { color: #666; font-size: 0.85em; }
    .note { margin-top: 2rem; padding: 0.75rem 1rem; background: #fffbe6; border: 1px solid #f0e6a0; }
  </style>
</head>
<body>
  <h1>데일리 리포트 {{.Date}}</h1>
  {{if .SenderName}}<div class="meta">발신: {{.SenderName}}</div>{{end}}

  <h2>DA 전체 현황</h2>
  <table class="metrics">
    <tr><th>총 예산</th><th>리드 수</th><th>CPA</th></tr>
    <tr><td>{{.DAOverall.TotalBudget}}</td><td>{{.DAOverall.LeadCount}}</td><td>{{.DAOverall.CPA}}</td></tr>
  </table>
  {{range .DAOverall.Images}}
  <div class="image"><img src="{{.Src}}" alt="">{{if .Caption}}<div class="caption">{{.Caption}}</div>{{end}}</div>
  {{end}}

  <h2>매체별 상세</h2>
  {{range .Channels}}
  <div class="channel">
    <strong>{{.Name}}</strong>
    {{if .NoUpdate}}<span class="no-update"> 특이사항 없음</span>{{else}}
    {{if .Comment}}<p>{{.Comment}}</p>{{end}}
    {{range .Images}}
    <div class="image"><img src="{{.Src}}" alt="">{{if .Caption}}<div class="caption">{{.Caption}}</div>{{end}}</div>
    {{end}}
    {{end}}
  </div>
  {{end}}

  <h2>제휴 현황</h2>
  <table class="metrics">
    <tr><th>총 예산</th><th>리드 수</th><th>CPA</th></tr>
    <tr><td>{{.Partnership.TotalBudget}}</td><td>{{.Partnership.LeadCount}}</td><td>{{.Partnership.CPA}}</td></tr>
  </table>
  {{if .Partnership.Details}}<p>{{.Partnership.Details}}</p>{{end}}
  {{if .Partnership.WeeklyPlan}}<p><strong>주간 계획:</strong> {{.Partnership.WeeklyPlan}}</p>{{end}}
  {{range .Partnership.Images}}
  <div class="image"><img src="{{.Src}}" alt="">{{if .Caption}}<div class="caption">{{.Caption}}</div>{{end}}</div>
  {{end}}

  <div class="note">{{.AttachmentNote}}</div>
</body>
</html>`
