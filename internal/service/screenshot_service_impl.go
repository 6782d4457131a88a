package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrForbiddenPath is returned for paths outside the screenshot directories.
var ErrForbiddenPath = errors.New("path outside screenshot directories")

var screenshotExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
}

type screenshotService struct {
	dirs     []string
	observer UseCaseObserver
}

func NewScreenshotService(dirs []string, observers ...UseCaseObserver) ScreenshotService {
	cleaned := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d = strings.TrimSpace(d); d != "" {
			cleaned = append(cleaned, filepath.Clean(d))
		}
	}
	return &screenshotService{dirs: cleaned, observer: useCaseObserverOrNoop(observers)}
}

// FormatSize renders a byte count for display, e.g. "1.5 KiB".
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// List scans dir, or every configured directory when dir is empty, for
// images whose name contains search. Newest first.
func (s *screenshotService) List(ctx context.Context, dir, search string) ([]Screenshot, error) {
	dirs := s.dirs
	if dir = strings.TrimSpace(dir); dir != "" {
		dir = filepath.Clean(dir)
		if !s.isConfiguredDir(dir) {
			return nil, fmt.Errorf("%w: %s", ErrForbiddenPath, dir)
		}
		dirs = []string{dir}
	}
	search = strings.ToLower(strings.TrimSpace(search))

	seen := make(map[string]bool)
	var out []Screenshot
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(d)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", d, err)
		}
		for _, e := range entries {
			if e.IsDir() || !isScreenshot(e.Name()) {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(e.Name()), search) {
				continue
			}
			path := filepath.Join(d, e.Name())
			if seen[path] {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			seen[path] = true
			out = append(out, newScreenshot(d, info))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Modified.After(out[j].Modified)
	})
	return out, nil
}

// Open resolves path to a screenshot inside a configured directory.
func (s *screenshotService) Open(path string) (*Screenshot, error) {
	path, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrForbiddenPath, path)
	}
	shot := newScreenshot(filepath.Dir(path), info)
	return &shot, nil
}

func (s *screenshotService) Delete(ctx context.Context, path string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		report(ctx, s.observer, "delete-screenshot", startedAt, map[string]any{"path": path}, err)
	}()

	shot, err := s.Open(path)
	if err != nil {
		return err
	}
	return os.Remove(shot.Path)
}

// resolve cleans path and checks that it is an image directly inside one
// of the configured directories.
func (s *screenshotService) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: no file given", ErrForbiddenPath)
	}
	path = filepath.Clean(path)
	if !s.isConfiguredDir(filepath.Dir(path)) || !isScreenshot(path) {
		return "", fmt.Errorf("%w: %s", ErrForbiddenPath, path)
	}
	return path, nil
}

func (s *screenshotService) isConfiguredDir(dir string) bool {
	for _, d := range s.dirs {
		if d == dir {
			return true
		}
	}
	return false
}

func isScreenshot(name string) bool {
	return screenshotExtensions[extension(name)]
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func newScreenshot(dir string, info os.FileInfo) Screenshot {
	ext := extension(info.Name())
	mimeType := mime.TypeByExtension("." + ext)
	if mimeType == "" {
		mimeType = "image/" + ext
	}
	return Screenshot{
		Name:      info.Name(),
		Path:      filepath.Join(dir, info.Name()),
		Dir:       dir,
		Size:      info.Size(),
		SizeLabel: FormatSize(info.Size()),
		Modified:  info.ModTime().UTC(),
		Extension: ext,
		MimeType:  mimeType,
	}
}
