package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"reportdesk/api/internal/cache"
	"reportdesk/api/internal/config"
	"reportdesk/api/internal/email"
	"reportdesk/api/internal/export"
	"reportdesk/api/internal/history"
	"reportdesk/api/internal/images"
	"reportdesk/api/internal/report"
	"reportdesk/api/internal/search"
	"reportdesk/api/internal/store"
)

type dataStore interface {
	GetReport(ctx context.Context, dateKey string) (*report.Document, error)
	PutReport(ctx context.Context, dateKey string, doc *report.Document) error
	ListReports(ctx context.Context, limit int) ([]store.ReportSummary, error)
	Ping(ctx context.Context) error
}

type reportCache interface {
	Get(ctx context.Context, dateKey string) (*report.Document, error)
	Set(ctx context.Context, dateKey string, doc *report.Document) error
	Invalidate(ctx context.Context, dateKey string) error
}

type historyService interface {
	RecordMerge(dateKey string, doc *report.Document, author string, sectionID report.SectionID) (history.CommitInfo, error)
	History(dateKey string, limit int) ([]history.CommitInfo, error)
	GetByHash(dateKey, hash string) (*report.Document, error)
}

type searchService interface {
	Search(q search.Query) search.Response
	IndexReport(record search.ReportRecord)
	ReindexAllFromPG(ctx context.Context)
}

type imageStore interface {
	Put(ctx context.Context, dateKey, contentType string, size int64, body io.Reader) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type emailSender interface {
	IsConfigured() bool
	SendDailyReport(to []string, date, html string) error
}

type exporter interface {
	Render(doc *report.Document) (string, error)
	ExportPDF(doc *report.Document) (*export.Result, error)
}

// SaveSectionInput is the body of a section save request.
type SaveSectionInput struct {
	AuthorName string           `json:"authorName"`
	Document   *report.Document `json:"document"`
}

// Service holds the report operations behind the HTTP surface. Optional
// collaborators (cache, search, images, email) stay nil when not
// configured and every code path treats nil as "feature off".
type Service struct {
	cfg      config.Config
	store    dataStore
	engine   *report.Engine
	history  historyService
	cache    reportCache
	search   searchService
	images   imageStore
	email    emailSender
	exporter exporter

	mergeMu    sync.Mutex
	mergeLocks map[string]*sync.Mutex
}

// Options carries the optional collaborators. Nil fields disable the
// corresponding feature.
type Options struct {
	Cache    *cache.ReportCache
	Search   *search.Service
	Images   *images.Store
	Email    *email.Service
	Exporter *export.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, historySvc *history.Service, opts Options) *Service {
	s := &Service{
		cfg:        cfg,
		store:      dataStore,
		engine:     report.NewEngine(dataStore),
		mergeLocks: make(map[string]*sync.Mutex),
	}
	// Concrete nil pointers must not become non-nil interfaces.
	if historySvc != nil {
		s.history = historySvc
	}
	if opts.Cache != nil {
		s.cache = opts.Cache
	}
	if opts.Search != nil {
		s.search = opts.Search
	}
	if opts.Images != nil {
		s.images = opts.Images
	}
	if opts.Email != nil {
		s.email = opts.Email
	}
	if opts.Exporter != nil {
		s.exporter = opts.Exporter
	} else {
		s.exporter = export.NewService()
	}
	return s
}

// Bootstrap runs startup work that needs the full service wired up.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.search != nil {
		s.search.ReindexAllFromPG(ctx)
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// PingCache probes the report cache. The bool reports whether a cache is
// configured at all; an unconfigured cache is not an error.
func (s *Service) PingCache(ctx context.Context) (bool, error) {
	pinger, ok := s.cache.(interface{ Ping(context.Context) error })
	if !ok {
		return false, nil
	}
	return true, pinger.Ping(ctx)
}

// ListReports returns report headers, newest first.
func (s *Service) ListReports(ctx context.Context, limit int) ([]store.ReportSummary, error) {
	summaries, err := s.store.ListReports(ctx, limit)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []store.ReportSummary{}
	}
	return summaries, nil
}

// GetReport loads one date's document, upgraded to the current shape.
// The cache is consulted first and refilled on a miss.
func (s *Service) GetReport(ctx context.Context, dateKey string) (*report.Document, error) {
	if err := validateDateKey(dateKey); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dateKey)
		if err != nil {
			log.Printf("cache: read %s: %v (request %s)", dateKey, err, requestIDFromContext(ctx))
		} else if cached != nil {
			return report.Normalize(cached), nil
		}
	}

	doc, err := s.store.GetReport(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domainError(http.StatusNotFound, "REPORT_NOT_FOUND", fmt.Sprintf("No report for %s", dateKey), nil)
	}

	normalized := report.Normalize(doc)
	if s.cache != nil {
		if err := s.cache.Set(ctx, dateKey, normalized); err != nil {
			log.Printf("cache: fill %s: %v (request %s)", dateKey, err, requestIDFromContext(ctx))
		}
	}
	return normalized, nil
}

// SaveSection merges one section of the caller's document into the stored
// one. Everything after the merge itself (cache invalidation, history
// snapshot, search indexing) is best effort.
func (s *Service) SaveSection(ctx context.Context, dateKey string, sectionID report.SectionID, input SaveSectionInput) (*report.Document, error) {
	if err := validateDateKey(dateKey); err != nil {
		return nil, err
	}
	if !sectionID.Valid() {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_SECTION", fmt.Sprintf("Unknown section %q", sectionID), nil)
	}
	if input.Document == nil {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "document is required", nil)
	}
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "authorName is required", nil)
	}

	local := report.Normalize(input.Document)

	lock := s.mergeLock(dateKey)
	lock.Lock()
	merged, err := s.engine.MergeSection(ctx, dateKey, local, sectionID, author)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, dateKey); cacheErr != nil {
			log.Printf("cache: invalidate %s: %v (request %s)", dateKey, cacheErr, requestIDFromContext(ctx))
		}
	}
	if s.history != nil {
		if _, histErr := s.history.RecordMerge(dateKey, merged, author, sectionID); histErr != nil {
			log.Printf("history: record %s: %v (request %s)", dateKey, histErr, requestIDFromContext(ctx))
		}
	}
	if s.search != nil {
		s.search.IndexReport(search.ReportRecord{
			Date:       merged.Date,
			SenderName: merged.SenderName,
			Text:       merged.SearchText(),
		})
	}

	return merged, nil
}

// ReportHistory lists a date's recorded merges, newest first.
func (s *Service) ReportHistory(ctx context.Context, dateKey string, limit int) ([]history.CommitInfo, error) {
	if err := validateDateKey(dateKey); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []history.CommitInfo{}, nil
	}
	commits, err := s.history.History(dateKey, limit)
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// ReportSnapshot returns the document as recorded at one history commit.
func (s *Service) ReportSnapshot(ctx context.Context, dateKey, hash string) (*report.Document, error) {
	if err := validateDateKey(dateKey); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, domainError(http.StatusNotFound, "HISTORY_UNAVAILABLE", "History is not configured", nil)
	}
	doc, err := s.history.GetByHash(dateKey, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "SNAPSHOT_NOT_FOUND", fmt.Sprintf("No snapshot %s for %s", hash, dateKey), nil)
	}
	return report.Normalize(doc), nil
}

// SearchReports runs a full-text query over stored reports.
func (s *Service) SearchReports(ctx context.Context, q search.Query) (search.Response, error) {
	if s.search == nil {
		return search.Response{}, domainError(http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "Search is not configured", nil)
	}
	return s.search.Search(q), nil
}

// UploadedImage describes a stored report image.
type UploadedImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

const presignExpiry = 24 * time.Hour

// UploadImage streams one screenshot into object storage and returns its
// key plus a presigned read URL for the image slot.
func (s *Service) UploadImage(ctx context.Context, dateKey, contentType string, size int64, body io.Reader) (UploadedImage, error) {
	if err := validateDateKey(dateKey); err != nil {
		return UploadedImage{}, err
	}
	if s.images == nil {
		return UploadedImage{}, domainError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Image storage is not configured", nil)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return UploadedImage{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Content-Type must be an image type", nil)
	}

	key, err := s.images.Put(ctx, dateKey, contentType, size, body)
	if err != nil {
		return UploadedImage{}, err
	}
	url, err := s.images.PresignedURL(ctx, key, presignExpiry)
	if err != nil {
		return UploadedImage{}, err
	}
	return UploadedImage{Key: key, URL: url}, nil
}

// ExportPDF renders the stored report and converts it to PDF.
func (s *Service) ExportPDF(ctx context.Context, dateKey string) (*export.Result, error) {
	doc, err := s.GetReport(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	return s.exporter.ExportPDF(doc)
}

// SendReport mails the rendered report to the given recipients.
func (s *Service) SendReport(ctx context.Context, dateKey string, to []string) error {
	if s.email == nil || !s.email.IsConfigured() {
		return domainError(http.StatusServiceUnavailable, "EMAIL_UNAVAILABLE", "Email is not configured", nil)
	}
	if len(to) == 0 && s.cfg.DefaultRecipients != "" {
		for _, addr := range strings.Split(s.cfg.DefaultRecipients, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				to = append(to, addr)
			}
		}
	}
	if len(to) == 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "at least one recipient is required", nil)
	}

	doc, err := s.GetReport(ctx, dateKey)
	if err != nil {
		return err
	}
	html, err := s.exporter.Render(doc)
	if err != nil {
		return err
	}
	return s.email.SendDailyReport(to, dateKey, html)
}

func (s *Service) mergeLock(dateKey string) *sync.Mutex {
	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()
	lock, ok := s.mergeLocks[dateKey]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.mergeLocks[dateKey] = lock
	return lock
}

func validateDateKey(dateKey string) error {
	if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		return domainError(http.StatusUnprocessableEntity, "INVALID_DATE", fmt.Sprintf("Date must be YYYY-MM-DD, got %q", dateKey), nil)
	}
	return nil
}
