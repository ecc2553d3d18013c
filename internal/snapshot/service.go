package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Iceblockp/mobile-pos-sub001/internal/errors"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
)

// ArtifactSuffix is the filename suffix for snapshot artifacts.
const ArtifactSuffix = ".snapshot.json"

// ErrArtifactNotFound is returned when a snapshot ID has no file on disk.
var ErrArtifactNotFound = errors.NotFound("snapshot not found")

// ArtifactID derives the snapshot ID from an artifact path.
func ArtifactID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ArtifactSuffix)
}

// ArtifactInfo describes a snapshot artifact on disk.
type ArtifactInfo struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service manages the snapshot directory.
type Service struct {
	dir    string
	logger *logger.Logger
}

// NewService creates a Service rooted at dir.
func NewService(dir string, log *logger.Logger) *Service {
	return &Service{dir: dir, logger: log}
}

// Dir returns the snapshot directory.
func (s *Service) Dir() string {
	return s.dir
}

// PathFor returns the file path for a snapshot ID or a requested filename.
func (s *Service) PathFor(id string) string {
	name := id
	if !strings.HasSuffix(name, ArtifactSuffix) {
		name += ArtifactSuffix
	}
	return filepath.Join(s.dir, name)
}

// DefaultPath builds a timestamped artifact path for a declared type.
func (s *Service) DefaultPath(dataType DataType) string {
	timestamp := time.Now().Format("2006-01-02-150405")
	return filepath.Join(s.dir, fmt.Sprintf("pos-%s-%s%s", dataType, timestamp, ArtifactSuffix))
}

// EnsureDir creates the snapshot directory if needed.
func (s *Service) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	return nil
}

// List returns all artifacts, newest first.
func (s *Service) List(ctx context.Context) ([]ArtifactInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var artifacts []ArtifactInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ArtifactSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		artifacts = append(artifacts, ArtifactInfo{
			ID:        strings.TrimSuffix(entry.Name(), ArtifactSuffix),
			Path:      filepath.Join(s.dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	// Sort by creation time, newest first
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].CreatedAt.After(artifacts[j].CreatedAt)
	})

	return artifacts, nil
}

// Get returns an artifact by ID.
func (s *Service) Get(ctx context.Context, id string) (*ArtifactInfo, error) {
	path := s.PathFor(id)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}

	return &ArtifactInfo{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes an artifact.
func (s *Service) Delete(ctx context.Context, id string) error {
	path := s.PathFor(id)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrArtifactNotFound
		}
		return err
	}

	s.logger.Info("deleting snapshot", "id", id)
	return os.Remove(path)
}
