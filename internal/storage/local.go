package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yoockh/videoinsight/internal/models"
	"github.com/yoockh/videoinsight/internal/utils"
)

// allowedVideoTypes maps every accepted mimetype to its canonical extension,
// used as fallback when the original name carries none.
var allowedVideoTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
}

// LocalStore writes uploads into a single flat directory. Generated names are
// `<unix-ms>-<random>.<ext>`, so concurrent uploads never collide. Files are
// never reclaimed; the directory grows for the lifetime of the process.
type LocalStore struct {
	dir      string
	maxBytes int64
}

func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(ctx context.Context, r io.Reader, size int64, mimeType, originalName string) (*models.MediaAsset, error) {
	const op = "LocalStore.Save"

	ext, ok := allowedVideoTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		return nil, utils.E(utils.CodeValidation, op, "only video files are allowed (mp4, webm, mov, avi)", nil)
	}
	if size <= 0 {
		return nil, utils.E(utils.CodeValidation, op, "uploaded video file is empty", nil)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, utils.E(utils.CodeStorage, op,
			fmt.Sprintf("video exceeds the %d MB upload limit", s.maxBytes/(1024*1024)), nil)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, utils.E(utils.CodeStorage, op, "failed to create uploads directory", err)
	}

	if e := normalizeExtension(originalName); e != "" {
		ext = e
	}
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1_000_000_000), ext)
	finalPath := filepath.Join(s.dir, name)

	written, err := s.writeAtomic(finalPath, r)
	if err != nil {
		return nil, err
	}
	if written == 0 {
		_ = os.Remove(finalPath)
		return nil, utils.E(utils.CodeValidation, op, "uploaded video file is empty", nil)
	}

	return &models.MediaAsset{
		LocalID:      name,
		StoragePath:  "/uploads/" + name,
		ByteSize:     written,
		MimeType:     mimeType,
		OriginalName: originalName,
		StoredAt:     time.Now().UTC(),
	}, nil
}

// writeAtomic streams into a .part file and renames on success, so a failed
// or oversized upload never leaves a partial file behind.
func (s *LocalStore) writeAtomic(finalPath string, r io.Reader) (int64, error) {
	const op = "LocalStore.Save"

	tmpPath := finalPath + ".part"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, utils.E(utils.CodeStorage, op, "failed to write video file", err)
	}

	cleanup := func(e error) (int64, error) {
		f.Close()
		os.Remove(tmpPath)
		return 0, e
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = 1 << 40
	}
	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		return cleanup(utils.E(utils.CodeStorage, op, "failed to write video file", err))
	}
	if written > limit {
		return cleanup(utils.E(utils.CodeStorage, op,
			fmt.Sprintf("video exceeds the %d MB upload limit", limit/(1024*1024)), nil))
	}

	if err := f.Sync(); err != nil {
		return cleanup(utils.E(utils.CodeStorage, op, "failed to flush video file", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, utils.E(utils.CodeStorage, op, "failed to close video file", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return 0, utils.E(utils.CodeStorage, op, "failed to store video file", err)
	}
	return written, nil
}

func (s *LocalStore) Resolve(localID string) (string, error) {
	const op = "LocalStore.Resolve"

	if localID == "" || localID != filepath.Base(localID) {
		return "", utils.E(utils.CodeValidation, op, "invalid video filename", nil)
	}
	p := filepath.Join(s.dir, localID)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", utils.E(utils.CodeNotFound, op, "video file not found", err)
		}
		return "", utils.E(utils.CodeStorage, op, "failed to stat video file", err)
	}
	return p, nil
}

func (s *LocalStore) ReadFile(localID string) ([]byte, error) {
	const op = "LocalStore.ReadFile"

	p, err := s.Resolve(localID)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, utils.E(utils.CodeStorage, op, "failed to read video file", err)
	}
	return b, nil
}

func (s *LocalStore) Open(localID string) (io.ReadCloser, int64, error) {
	const op = "LocalStore.Open"

	p, err := s.Resolve(localID)
	if err != nil {
		return nil, 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, 0, utils.E(utils.CodeStorage, op, "failed to stat video file", err)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, utils.E(utils.CodeStorage, op, "failed to open video file", err)
	}
	return f, info.Size(), nil
}

func normalizeExtension(filename string) string {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
	if ext == "" || len(ext) > 6 || strings.ContainsAny(ext, " /\\") {
		return ""
	}
	return ext
}

// MimeForName maps a stored name back to its mimetype by extension. Unknown
// extensions fall back to video/mp4, the dominant upload type.
func MimeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for mime, e := range allowedVideoTypes {
		if e == ext {
			return mime
		}
	}
	return "video/mp4"
}
