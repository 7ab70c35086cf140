// Package archive moves processed termsheet documents out of the inbox
// and keeps a JSON metadata record for each one.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry describes an archived document.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	RunID      uuid.UUID `json:"run_id"`
	Name       string    `json:"name"`
	Issuer     string    `json:"issuer"`
	Size       int64     `json:"size"`
	Path       string    `json:"path"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Archive stores processed documents on the local filesystem.
type Archive struct {
	basePath string
}

// New creates an archive rooted at basePath.
func New(basePath string) (*Archive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

// Store moves the document at srcPath into the archive and records its
// metadata. The source file is removed once the copy succeeds.
func (a *Archive) Store(ctx context.Context, srcPath, issuer string, runID uuid.UUID) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entryID := uuid.New()

	// One directory per month keeps listings manageable.
	monthDir := filepath.Join(a.basePath, time.Now().Format("2006-01"))
	if err := os.MkdirAll(monthDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	safeName := sanitizeFilename(filepath.Base(srcPath))
	storedName := fmt.Sprintf("%s_%s", entryID.String()[:8], safeName)
	dstPath := filepath.Join(monthDir, storedName)

	size, err := copyFile(srcPath, dstPath)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(srcPath); err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("failed to remove source file: %w", err)
	}

	entry := &Entry{
		ID:         entryID,
		RunID:      runID,
		Name:       filepath.Base(srcPath),
		Issuer:     issuer,
		Size:       size,
		Path:       filepath.Join(time.Now().Format("2006-01"), storedName),
		ArchivedAt: time.Now(),
	}

	if err := a.saveMetadata(entry); err != nil {
		os.Remove(dstPath)
		return nil, err
	}

	return entry, nil
}

// List returns every archived entry, most recent metadata files included.
func (a *Archive) List(ctx context.Context) ([]*Entry, error) {
	metaDir := filepath.Join(a.basePath, ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*Entry{}, nil
	}

	files, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	entries := make([]*Entry, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			continue
		}
		entry, err := a.Get(ctx, id)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Get returns the metadata for a single archived entry.
func (a *Archive) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	metaPath := filepath.Join(a.basePath, ".meta", id.String()+".json")

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("entry not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &entry, nil
}

// Open returns a reader for an archived document.
func (a *Archive) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	entry, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(a.basePath, entry.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (a *Archive) saveMetadata(entry *Entry) error {
	metaDir := filepath.Join(a.basePath, ".meta")
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	metaPath := filepath.Join(metaDir, entry.ID.String()+".json")
	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// copyFile copies src to dst and returns the byte count. Rename is not
// used so inbox and archive may live on different filesystems.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, in)
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return size, nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
