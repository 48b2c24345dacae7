package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"phonebook_backend/internal/adapters/storage"
	"phonebook_backend/internal/events"
	"phonebook_backend/internal/phonenumbers/importer"
	"phonebook_backend/internal/phonenumbers/repository"
	"phonebook_backend/internal/phonenumbers/transport"
	"phonebook_backend/internal/scheduler"
	"phonebook_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	SourceJSON   = "json"
	SourceText   = "text"
	SourceUpload = "upload"
	SourceJob    = "job"
	SourceCLI    = "cli"
)

// ImportQueue hands text imports to the background worker.
type ImportQueue = scheduler.BulkImportQueue

// Archive stores uploaded import files.
type Archive interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*storage.PresignedURL, error)
}

// Upload is one received import file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BulkImport imports a JSON batch. Each item names its own category.
func (s *Service) BulkImport(ctx context.Context, req transport.BulkImportRequest) (transport.BulkImportResponse, error) {
	if req.Numbers == nil {
		return transport.BulkImportResponse{}, apperr.BadRequest("numbers must be a non-empty list").
			WithCode(apperr.CodeBatchEmptyOrMalformed)
	}

	numbers := *req.Numbers
	entries := make([]importer.Entry, len(numbers))
	for i, n := range numbers {
		entries[i] = importer.Entry{Raw: n.OriginalNumber, CategoryID: n.CategoryID}
	}

	outcome, err := s.importer.Import(ctx, entries)
	if err != nil {
		return transport.BulkImportResponse{}, err
	}
	return s.finishImport(ctx, SourceJSON, outcome), nil
}

// ImportText imports free text into one category.
func (s *Service) ImportText(ctx context.Context, req transport.TextImportRequest) (transport.BulkImportResponse, error) {
	return s.importText(ctx, SourceText, req.Text, req.Mode, req.CategoryID)
}

// ImportUpload imports a txt, csv or xlsx file into one category. The file is
// archived first when an archive is configured; archive failures are logged
// and do not stop the import.
func (s *Service) ImportUpload(ctx context.Context, upload Upload, req transport.UploadImportRequest) (transport.BulkImportResponse, error) {
	contentType := storage.ContentTypeFor(upload.FileName, upload.ContentType)
	if contentType == "" {
		return transport.BulkImportResponse{}, apperr.BadRequest("unsupported file type, use txt, csv or xlsx")
	}
	if s.cfg.MaxUploadBytes > 0 && upload.Size > s.cfg.MaxUploadBytes {
		return transport.BulkImportResponse{}, apperr.BadRequest(
			fmt.Sprintf("file exceeds the %d byte upload limit", s.cfg.MaxUploadBytes))
	}

	data, err := readUpload(upload.Body, s.cfg.MaxUploadBytes)
	if err != nil {
		return transport.BulkImportResponse{}, err
	}
	text, err := ExtractText(contentType, data)
	if err != nil {
		return transport.BulkImportResponse{}, err
	}

	archive := s.archiveUpload(ctx, upload.FileName, contentType, data)

	resp, err := s.importText(ctx, SourceUpload, text, req.Mode, req.CategoryID)
	if err != nil {
		return transport.BulkImportResponse{}, err
	}
	resp.Archive = archive
	return resp, nil
}

// EnqueueImport queues a text import and returns its job. The batch is
// checked up front so obviously bad requests fail immediately.
func (s *Service) EnqueueImport(ctx context.Context, req transport.EnqueueImportRequest) (transport.JobResponse, error) {
	if s.queue == nil {
		return transport.JobResponse{}, apperr.Unavailable("job queue is not configured")
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		return transport.JobResponse{}, err
	}
	if err := s.importer.CheckSize(countCandidates(req.Text, mode, s.importer.MaxBatchSize())); err != nil {
		return transport.JobResponse{}, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return transport.JobResponse{}, err
	}

	job, err := s.queue.EnqueueBulkImport(ctx, scheduler.BulkImportPayload{
		JobID:      uuid.NewString(),
		CategoryID: req.CategoryID,
		Text:       req.Text,
		Mode:       string(mode),
		Source:     SourceJob,
	})
	if err != nil {
		return transport.JobResponse{}, err
	}

	s.log.Info("bulk import job enqueued", "jobId", job.ID, "categoryId", req.CategoryID)
	return job, nil
}

// GetJob reports the state of a queued import.
func (s *Service) GetJob(ctx context.Context, jobID string) (transport.JobResponse, error) {
	if s.queue == nil {
		return transport.JobResponse{}, apperr.Unavailable("job queue is not configured")
	}
	if _, err := uuid.Parse(jobID); err != nil {
		return transport.JobResponse{}, apperr.BadRequest("invalid job ID")
	}
	return s.queue.GetBulkImportJob(ctx, jobID)
}

// RunBulkImport executes a queued import. It implements
// scheduler.BulkImportRunner.
func (s *Service) RunBulkImport(ctx context.Context, payload scheduler.BulkImportPayload) (any, error) {
	source := payload.Source
	if source == "" {
		source = SourceJob
	}
	return s.importText(ctx, source, payload.Text, payload.Mode, payload.CategoryID)
}

// QRCode renders the WhatsApp chat link of a stored number as a PNG.
func (s *Service) QRCode(ctx context.Context, id int64, size int) ([]byte, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.wa.QRCode(p.NormalizedNumber, size)
}

// ImportFile imports data of the given file name, as the CLI does.
func (s *Service) ImportFile(ctx context.Context, fileName string, data []byte, mode string, categoryID int64) (transport.BulkImportResponse, error) {
	contentType := storage.ContentTypeFor(fileName, "")
	if contentType == "" {
		contentType = "text/plain"
	}
	text, err := ExtractText(contentType, data)
	if err != nil {
		return transport.BulkImportResponse{}, err
	}
	return s.importText(ctx, SourceCLI, text, mode, categoryID)
}

func (s *Service) importText(ctx context.Context, source, text, rawMode string, categoryID int64) (transport.BulkImportResponse, error) {
	mode, err := parseMode(rawMode)
	if err != nil {
		return transport.BulkImportResponse{}, err
	}

	outcome, err := s.importer.ImportText(ctx, text, mode, categoryID)
	if err != nil {
		return transport.BulkImportResponse{}, err
	}
	return s.finishImport(ctx, source, outcome), nil
}

func (s *Service) finishImport(ctx context.Context, source string, outcome importer.Outcome[repository.PhoneNumber]) transport.BulkImportResponse {
	sum := outcome.Summary
	s.log.WithContext(ctx).ImportCompleted(source, sum.TotalProcessed, sum.Successful, sum.Failed)
	for _, p := range outcome.Imported {
		s.eventBus.Publish(ctx, events.PhoneNumberCreated{
			BaseEvent:        events.NewBaseEvent(),
			PhoneNumberID:    p.ID,
			NormalizedNumber: p.NormalizedNumber,
			CategoryID:       p.Category.ID,
			Source:           source,
		})
	}
	s.eventBus.Publish(ctx, events.BulkImportCompleted{
		BaseEvent:  events.NewBaseEvent(),
		Source:     source,
		Total:      sum.TotalProcessed,
		Successful: sum.Successful,
		Failed:     sum.Failed,
		ErrorCodes: outcome.ErrorCounts(),
	})

	mapped := importer.MapOutcome(outcome, s.toResponse)
	return transport.BulkImportResponse{
		Success: true,
		Message: fmt.Sprintf("imported %d of %d phone numbers", sum.Successful, sum.TotalProcessed),
		Data:    mapped.Imported,
		Errors:  mapped.Errors,
		Summary: mapped.Summary,
	}
}

func (s *Service) archiveUpload(ctx context.Context, fileName, contentType string, data []byte) *transport.ArchiveInfo {
	if s.archive == nil || s.cfg.ArchiveBucket == "" {
		return nil
	}

	folder := "imports/" + time.Now().UTC().Format("2006/01")
	key, err := s.archive.UploadFile(ctx, s.cfg.ArchiveBucket, folder, fileName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.log.Warn("failed to archive import file", "fileName", fileName, "error", err)
		return nil
	}

	info := &transport.ArchiveInfo{FileKey: key}
	if url, err := s.archive.GenerateDownloadURL(ctx, s.cfg.ArchiveBucket, key); err == nil {
		info.DownloadURL = url.URL
	}
	return info
}

func parseMode(raw string) (importer.Mode, error) {
	mode, err := importer.ParseMode(raw)
	if err != nil {
		return "", apperr.BadRequest(err.Error())
	}
	return mode, nil
}

// countCandidates counts candidates in text, stopping one past limit.
func countCandidates(text string, mode importer.Mode, limit int) int {
	n := 0
	for range importer.Parse(text, mode) {
		n++
		if n > limit {
			break
		}
	}
	return n
}
