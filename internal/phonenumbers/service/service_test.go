package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"phonebook_backend/internal/adapters/storage"
	"phonebook_backend/internal/events"
	"phonebook_backend/internal/phonenumbers/importer"
	"phonebook_backend/internal/phonenumbers/repository"
	"phonebook_backend/internal/phonenumbers/transport"
	"phonebook_backend/internal/scheduler"
	"phonebook_backend/internal/whatsapp"
	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/phone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

type memRepo struct {
	mu         sync.Mutex
	nextID     int64
	numbers    map[int64]repository.PhoneNumber
	categories map[int64]string
}

func newMemRepo() *memRepo {
	return &memRepo{
		numbers:    make(map[int64]repository.PhoneNumber),
		categories: map[int64]string{1: "Pelanggan VIP", 2: "Prospek"},
	}
}

var _ repository.Repository = (*memRepo)(nil)

func (r *memRepo) List(_ context.Context, params repository.ListParams) ([]repository.PhoneNumber, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []repository.PhoneNumber
	for id := r.nextID; id > 0; id-- {
		p, ok := r.numbers[id]
		if !ok || (params.CategoryID != nil && p.Category.ID != *params.CategoryID) {
			continue
		}
		items = append(items, p)
	}
	total := len(items)
	if params.Offset >= len(items) {
		return []repository.PhoneNumber{}, total, nil
	}
	items = items[params.Offset:]
	if len(items) > params.Limit {
		items = items[:params.Limit]
	}
	return items, total, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (repository.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.numbers[id]
	if !ok {
		return repository.PhoneNumber{}, apperr.NotFound("phone number not found")
	}
	return p, nil
}

func (r *memRepo) GetByNormalizedNumber(_ context.Context, normalized string) (repository.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.numbers {
		if p.NormalizedNumber == normalized {
			return p, nil
		}
	}
	return repository.PhoneNumber{}, apperr.NotFound("phone number not found")
}

func (r *memRepo) ExistsByNormalizedNumber(ctx context.Context, normalized string) (bool, error) {
	_, err := r.GetByNormalizedNumber(ctx, normalized)
	return err == nil, nil
}

func (r *memRepo) CategoryExists(_ context.Context, categoryID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.categories[categoryID]
	return ok, nil
}

func (r *memRepo) Each(_ context.Context, _ *int64, fn func(repository.PhoneNumber) error) error {
	for id := int64(1); id <= r.nextID; id++ {
		if p, ok := r.numbers[id]; ok {
			if err := fn(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *memRepo) InsertPhoneNumber(ctx context.Context, raw, normalized string, categoryID int64) (repository.PhoneNumber, error) {
	if found, _ := r.ExistsByNormalizedNumber(ctx, normalized); found {
		return repository.PhoneNumber{}, apperr.Conflict("phone number already exists").WithCode(apperr.CodeAlreadyExists)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.categories[categoryID]
	if !ok {
		return repository.PhoneNumber{}, apperr.NotFound("category not found").WithCode(apperr.CodeCategoryNotFound)
	}
	r.nextID++
	now := time.Now()
	p := repository.PhoneNumber{
		ID:               r.nextID,
		OriginalNumber:   raw,
		NormalizedNumber: normalized,
		Category:         repository.CategoryRef{ID: categoryID, Name: name},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.numbers[p.ID] = p
	return p, nil
}

func (r *memRepo) Update(_ context.Context, params repository.UpdateParams) (repository.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.numbers[params.ID]
	if !ok {
		return repository.PhoneNumber{}, apperr.NotFound("phone number not found")
	}
	if params.OriginalNumber != nil {
		p.OriginalNumber = *params.OriginalNumber
		p.NormalizedNumber = *params.NormalizedNumber
	}
	if params.CategoryID != nil {
		p.Category = repository.CategoryRef{ID: *params.CategoryID, Name: r.categories[*params.CategoryID]}
	}
	r.numbers[p.ID] = p
	return p, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.numbers[id]; !ok {
		return apperr.NotFound("phone number not found")
	}
	delete(r.numbers, id)
	return nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) last() events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}

type countingObserver struct{ reasons []string }

func (o *countingObserver) Verdict(reason string) { o.reasons = append(o.reasons, reason) }

func newTestService(t *testing.T) (*Service, *memRepo, *recordingBus) {
	t.Helper()
	repo := newMemRepo()
	bus := &recordingBus{}
	svc := New(repo, bus, whatsapp.NewClient(""), Config{MaxBatchSize: 5, MaxUploadBytes: 1 << 20}, logger.Discard())
	return svc, repo, bus
}

func TestCreate(t *testing.T) {
	svc, _, bus := newTestService(t)

	got, err := svc.Create(context.Background(), transport.CreatePhoneNumberRequest{
		OriginalNumber: " 0812-3456-7890 ",
		CategoryID:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, "0812-3456-7890", got.OriginalNumber)
	assert.Equal(t, "+6281234567890", got.NormalizedNumber)
	assert.Equal(t, "+62 812-3456-7890", got.FormattedNumber)
	assert.Equal(t, "https://wa.me/6281234567890", got.WhatsAppURL)
	assert.Equal(t, "Pelanggan VIP", got.Category.Name)

	created, ok := bus.last().(events.PhoneNumberCreated)
	require.True(t, ok)
	assert.Equal(t, "single", created.Source)
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      transport.CreatePhoneNumberRequest
		wantKind apperr.Kind
		wantCode string
	}{
		{"too short for a single add", transport.CreatePhoneNumberRequest{OriginalNumber: "+123456789", CategoryID: 1}, apperr.KindValidation, apperr.CodeInvalidFormat},
		{"garbage", transport.CreatePhoneNumberRequest{OriginalNumber: "abc123", CategoryID: 1}, apperr.KindValidation, apperr.CodeInvalidFormat},
		{"unknown category", transport.CreatePhoneNumberRequest{OriginalNumber: "081234567890", CategoryID: 99}, apperr.KindBadRequest, apperr.CodeCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			_, err := svc.Create(context.Background(), tt.req)
			appErr, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, appErr.Kind)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestCreateDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: "081234567890", CategoryID: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: "+62 812 3456 7890", CategoryID: 2})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: "081234567890", CategoryID: 1})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, transport.UpdatePhoneNumberRequest{})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	number := "0813-4321-6935"
	category := int64(2)
	got, err := svc.Update(ctx, created.ID, transport.UpdatePhoneNumberRequest{PhoneNumber: &number, CategoryID: &category})
	require.NoError(t, err)
	assert.Equal(t, "+6281343216935", got.NormalizedNumber)
	assert.Equal(t, "Prospek", got.Category.Name)

	missing := int64(42)
	_, err = svc.Update(ctx, created.ID, transport.UpdatePhoneNumberRequest{CategoryID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestListPaging(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: fmt.Sprintf("08123456789%d", i), CategoryID: 1})
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, transport.ListPhoneNumbersRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.TotalPages)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "081234567890", got.Items[0].OriginalNumber)

	got, err = svc.List(ctx, transport.ListPhoneNumbersRequest{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, got.PageSize)
	assert.Equal(t, 1, got.Page)
}

func TestDelete(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: "081234567890", CategoryID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.IsType(t, events.PhoneNumberDeleted{}, bus.last())
	assert.True(t, apperr.Is(svc.Delete(ctx, created.ID), apperr.KindNotFound))
}

func TestCheck(t *testing.T) {
	svc, _, _ := newTestService(t)
	observer := &countingObserver{}
	svc.SetVerdictObserver(observer)
	ctx := context.Background()

	got, err := svc.Check(ctx, "0812-3456-7890")
	require.NoError(t, err)
	assert.False(t, got.Exists)
	assert.Equal(t, "+6281234567890", got.NormalizedNumber)
	assert.Nil(t, got.Data)

	_, err = svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: "081234567890", CategoryID: 1})
	require.NoError(t, err)

	got, err = svc.Check(ctx, "+62 812 3456 7890")
	require.NoError(t, err)
	assert.True(t, got.Exists)
	require.NotNil(t, got.Data)
	assert.Equal(t, "081234567890", got.Data.OriginalNumber)

	_, err = svc.Check(ctx, "abc123")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Check(ctx, "  ")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	assert.Equal(t, []string{"Ok", "Ok", "InvalidFormat"}, observer.reasons)
}

func TestBulkImport(t *testing.T) {
	svc, _, bus := newTestService(t)

	numbers := []transport.BulkNumber{
		{OriginalNumber: "+6281234567890", CategoryID: 1},
		{OriginalNumber: "+6281234567890", CategoryID: 1},
		{OriginalNumber: "not-a-number", CategoryID: 1},
	}
	got, err := svc.BulkImport(context.Background(), transport.BulkImportRequest{Numbers: &numbers})
	require.NoError(t, err)

	assert.True(t, got.Success)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "+62 812-3456-7890", got.Data[0].FormattedNumber)
	require.Len(t, got.Errors, 2)
	assert.Equal(t, importer.CodeDuplicateInBatch, got.Errors[0].Error)
	assert.Equal(t, 1, got.Errors[0].Index)
	assert.Equal(t, importer.CodeInvalidFormat, got.Errors[1].Error)
	assert.Equal(t, importer.Summary{TotalProcessed: 3, Successful: 1, Failed: 2, SuccessRate: "33.3%"}, got.Summary)

	completed, ok := bus.last().(events.BulkImportCompleted)
	require.True(t, ok)
	assert.Equal(t, SourceJSON, completed.Source)
	assert.Equal(t, map[string]int{"DuplicateInBatch": 1, "InvalidFormat": 1}, completed.ErrorCodes)

	created := 0
	for _, e := range bus.events {
		if _, ok := e.(events.PhoneNumberCreated); ok {
			created++
		}
	}
	assert.Equal(t, 1, created)
}

func TestBulkImportRequestErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.BulkImport(ctx, transport.BulkImportRequest{})
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeBatchEmptyOrMalformed, appErr.Code)

	tooMany := make([]transport.BulkNumber, 6)
	_, err = svc.BulkImport(ctx, transport.BulkImportRequest{Numbers: &tooMany})
	appErr, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeBatchTooLarge, appErr.Code)
}

func TestImportText(t *testing.T) {
	svc, _, _ := newTestService(t)

	got, err := svc.ImportText(context.Background(), transport.TextImportRequest{
		Text:       "081234567890\n0813-4321-6935",
		CategoryID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Summary.Successful)

	_, err = svc.ImportText(context.Background(), transport.TextImportRequest{Text: "081234567890"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = svc.ImportText(context.Background(), transport.TextImportRequest{Text: "081234567890", CategoryID: 2, Mode: "magic"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

type fakeArchive struct {
	uploaded map[string][]byte
	err      error
}

func (a *fakeArchive) UploadFile(_ context.Context, bucket, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	data, _ := io.ReadAll(reader)
	key := bucket + "/" + folder + "/" + fileName
	a.uploaded[key] = data
	return key, nil
}

func (a *fakeArchive) GenerateDownloadURL(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://files.example.com/" + fileKey, FileKey: fileKey}, nil
}

func TestImportUploadCSV(t *testing.T) {
	svc, _, _ := newTestService(t)
	archive := &fakeArchive{uploaded: make(map[string][]byte)}
	svc.SetArchive(archive)
	svc.cfg.ArchiveBucket = "imports"

	body := "name,phone\nBudi,081234567890\n\"Siti, Jakarta\",+6281343216935\n"
	got, err := svc.ImportUpload(context.Background(), Upload{
		FileName:    "contacts.csv",
		ContentType: "application/octet-stream",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}, transport.UploadImportRequest{CategoryID: 1, Mode: "scan"})
	require.NoError(t, err)

	assert.Equal(t, 2, got.Summary.Successful)
	assert.Equal(t, 0, got.Summary.Failed)
	require.NotNil(t, got.Archive)
	assert.Contains(t, got.Archive.DownloadURL, "contacts.csv")
	assert.Len(t, archive.uploaded, 1)
}

func TestImportUploadArchiveFailureDoesNotStopImport(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.SetArchive(&fakeArchive{err: fmt.Errorf("minio down")})
	svc.cfg.ArchiveBucket = "imports"

	got, err := svc.ImportUpload(context.Background(), Upload{
		FileName: "numbers.txt",
		Body:     strings.NewReader("081234567890\n"),
	}, transport.UploadImportRequest{CategoryID: 1})
	require.NoError(t, err)
	assert.Nil(t, got.Archive)
	assert.Equal(t, 1, got.Summary.Successful)
}

func TestImportUploadXLSX(t *testing.T) {
	svc, _, _ := newTestService(t)

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Kontak")
	require.NoError(t, err)
	for _, values := range [][]string{{"Budi", "081234567890"}, {"Siti", "081343216935"}} {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := svc.ImportUpload(context.Background(), Upload{
		FileName: "kontak.xlsx",
		Size:     int64(buf.Len()),
		Body:     &buf,
	}, transport.UploadImportRequest{CategoryID: 1, Mode: "scan"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Summary.Successful)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "+6281343216935", got.Data[1].NormalizedNumber)
}

// Scan mode only picks up unbroken digit runs, so a dashed cell splits into
// pieces too short to count as candidates.
func TestImportUploadXLSXLinesMode(t *testing.T) {
	svc, _, _ := newTestService(t)

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Kontak")
	require.NoError(t, err)
	for _, values := range [][]string{{"Budi", "081234567890"}, {"Siti", "0813-4321-6935"}} {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	data := buf.Bytes()

	got, err := svc.ImportUpload(context.Background(), Upload{
		FileName: "kontak.xlsx",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}, transport.UploadImportRequest{CategoryID: 1, Mode: "lines"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Summary.Successful)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "+6281343216935", got.Data[1].NormalizedNumber)
	require.Len(t, got.Errors, 2)
	for _, e := range got.Errors {
		assert.Equal(t, "InvalidFormat", string(e.Error))
	}

	scanned, err := svc.ImportUpload(context.Background(), Upload{
		FileName: "kontak.xlsx",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}, transport.UploadImportRequest{CategoryID: 1, Mode: "scan"})
	require.NoError(t, err)
	assert.Equal(t, 1, scanned.Summary.TotalProcessed)
	assert.Equal(t, 0, scanned.Summary.Successful)
}

func TestImportUploadRejects(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ImportUpload(ctx, Upload{FileName: "photo.png", ContentType: "image/png", Body: strings.NewReader("x")},
		transport.UploadImportRequest{CategoryID: 1})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = svc.ImportUpload(ctx, Upload{FileName: "empty.txt", Body: strings.NewReader("")},
		transport.UploadImportRequest{CategoryID: 1})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	svc.cfg.MaxUploadBytes = 4
	_, err = svc.ImportUpload(ctx, Upload{FileName: "big.txt", Body: strings.NewReader("0812345678")},
		transport.UploadImportRequest{CategoryID: 1})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

type fakeQueue struct {
	enqueued []scheduler.BulkImportPayload
}

func (q *fakeQueue) EnqueueBulkImport(_ context.Context, payload scheduler.BulkImportPayload) (scheduler.JobInfo, error) {
	q.enqueued = append(q.enqueued, payload)
	return scheduler.JobInfo{ID: payload.JobID, State: "pending"}, nil
}

func (q *fakeQueue) GetBulkImportJob(_ context.Context, jobID string) (scheduler.JobInfo, error) {
	for _, p := range q.enqueued {
		if p.JobID == jobID {
			return scheduler.JobInfo{ID: jobID, State: "pending"}, nil
		}
	}
	return scheduler.JobInfo{}, apperr.NotFound("job not found")
}

func TestEnqueueImport(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	req := transport.EnqueueImportRequest{Text: "081234567890", CategoryID: 1}

	_, err := svc.EnqueueImport(ctx, req)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	queue := &fakeQueue{}
	svc.SetQueue(queue)

	job, err := svc.EnqueueImport(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "pending", job.State)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "lines", queue.enqueued[0].Mode)

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = svc.GetJob(ctx, "not-a-uuid")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = svc.EnqueueImport(ctx, transport.EnqueueImportRequest{Text: "1\n2\n3\n4\n5\n6", CategoryID: 1})
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeBatchTooLarge, appErr.Code)

	_, err = svc.EnqueueImport(ctx, transport.EnqueueImportRequest{Text: "081234567890", CategoryID: 77})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Len(t, queue.enqueued, 1)
}

func TestRunBulkImport(t *testing.T) {
	svc, repo, bus := newTestService(t)

	result, err := svc.RunBulkImport(context.Background(), scheduler.BulkImportPayload{
		JobID:      "job",
		CategoryID: 2,
		Text:       "hubungi 081234567890 atau 081234567890",
		Mode:       "scan",
	})
	require.NoError(t, err)

	resp, ok := result.(transport.BulkImportResponse)
	require.True(t, ok)
	assert.Equal(t, 1, resp.Summary.Successful)
	assert.Equal(t, importer.CodeDuplicateInBatch, resp.Errors[0].Error)
	assert.Len(t, repo.numbers, 1)

	completed, ok := bus.last().(events.BulkImportCompleted)
	require.True(t, ok)
	assert.Equal(t, SourceJob, completed.Source)
}

func TestPreview(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: "081234567890", CategoryID: 1})
	require.NoError(t, err)

	got, err := svc.Preview(ctx, []string{"+6281234567890", "+1 650 253 0000", "x"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, importer.DuplicateInStore, got[0].Duplicate)
	assert.Equal(t, "ID", got[0].Region)
	assert.Equal(t, phone.ReasonOK, got[1].Verdict.Reason)
	assert.Equal(t, "US", got[1].Region)
	assert.True(t, got[0].Plausible)
	assert.True(t, got[1].Plausible)
	assert.False(t, got[2].Verdict.Valid)
	assert.Empty(t, got[2].Region)
	assert.False(t, got[2].Plausible)
}

func TestQRCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, transport.CreatePhoneNumberRequest{OriginalNumber: "081234567890", CategoryID: 1})
	require.NoError(t, err)

	png, err := svc.QRCode(ctx, created.ID, 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = svc.QRCode(ctx, 999, 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
