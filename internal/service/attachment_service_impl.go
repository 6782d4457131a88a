package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/google/uuid"
)

// MaxAttachmentSize is the largest upload accepted, in bytes.
const MaxAttachmentSize = 10 << 20

// AttachmentExtensions lists the accepted upload types.
var AttachmentExtensions = []string{
	"jpg", "jpeg", "png", "gif", "pdf", "doc", "docx",
	"xls", "xlsx", "txt", "zip", "rar", "csv", "mp4", "mov",
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type attachmentService struct {
	attachments repository.AttachmentRepo
	todos       repository.TodoRepo
	dir         string
	observer    UseCaseObserver
}

func NewAttachmentService(
	attachments repository.AttachmentRepo,
	todos repository.TodoRepo,
	dir string,
	observers ...UseCaseObserver,
) AttachmentService {
	return &attachmentService{
		attachments: attachments,
		todos:       todos,
		dir:         dir,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func allowedExtension(name string) (string, bool) {
	ext := extension(name)
	for _, a := range AttachmentExtensions {
		if ext == a {
			return ext, true
		}
	}
	return ext, false
}

// storedName gives an upload a unique, filesystem-safe name.
func storedName(fileName string) string {
	base := unsafeNameChars.ReplaceAllString(filepath.Base(fileName), "_")
	return uuid.NewString()[:8] + "_" + base
}

// Upload stores content under <dir>/<todo id>/ and records it.
func (s *attachmentService) Upload(ctx context.Context, todoID int64, fileName string, content io.Reader) (a *domain.Attachment, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"todo_id": todoID, "file": fileName}
	defer func() {
		if a != nil {
			fields["size"] = a.Size
		}
		report(ctx, s.observer, "upload-attachment", startedAt, fields, err)
	}()

	fileName = filepath.Base(strings.TrimSpace(fileName))
	ext, ok := allowedExtension(fileName)
	if fileName == "" || fileName == "." || !ok {
		return nil, fmt.Errorf("%w: file type %q is not allowed", domain.ErrValidation, ext)
	}
	if _, err = s.todos.GetByID(ctx, todoID); err != nil {
		return nil, err
	}

	todoDir := filepath.Join(s.dir, strconv.FormatInt(todoID, 10))
	if err = os.MkdirAll(todoDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachment directory: %w", err)
	}
	name := storedName(fileName)
	path := filepath.Join(todoDir, name)

	size, err := writeLimited(path, content, MaxAttachmentSize)
	if err != nil {
		return nil, err
	}

	mimeType := mime.TypeByExtension("." + ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	a = &domain.Attachment{
		TodoID:     todoID,
		FileName:   fileName,
		StoredName: name,
		Path:       path,
		MimeType:   mimeType,
		Size:       size,
		CreatedAt:  startedAt,
	}
	if err = s.attachments.Create(ctx, a); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return a, nil
}

var errTooLarge = errors.New("attachment too large")

// writeLimited copies at most limit bytes of r to path. Larger input is
// rejected and the partial file removed.
func writeLimited(path string, r io.Reader, limit int64) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating attachment file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = errTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, errTooLarge) {
			return 0, fmt.Errorf("%w: file exceeds %d MB", domain.ErrValidation, limit>>20)
		}
		return 0, fmt.Errorf("writing attachment: %w", err)
	}
	return n, nil
}

func (s *attachmentService) Get(ctx context.Context, id int64) (*domain.Attachment, error) {
	return s.attachments.GetByID(ctx, id)
}

func (s *attachmentService) List(ctx context.Context, todoID int64) ([]*domain.Attachment, error) {
	return s.attachments.ListByTodo(ctx, todoID)
}

func (s *attachmentService) Delete(ctx context.Context, id int64) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		report(ctx, s.observer, "delete-attachment", startedAt, map[string]any{"id": id}, err)
	}()

	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = s.attachments.Delete(ctx, id); err != nil {
		return err
	}
	if rmErr := os.Remove(a.Path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return fmt.Errorf("removing attachment file: %w", rmErr)
	}
	return nil
}
