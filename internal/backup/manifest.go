package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/nvandessel/simselect/internal/constants"
	"github.com/nvandessel/simselect/internal/fsutil"
)

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

// ErrNoManifest is returned for generations written without a manifest.
var ErrNoManifest = errors.New("generation has no manifest")

// Manifest records what a generation holds.
type Manifest struct {
	Version   int             `json:"version"`
	ID        int             `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	RunID     string          `json:"run_id,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Target    string          `json:"target,omitempty"`
	Documents []ManifestEntry `json:"documents"`
}

// ManifestEntry describes one stored document.
type ManifestEntry struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

func newManifestEntry(name string, data []byte) ManifestEntry {
	return ManifestEntry{Name: name, Size: int64(len(data)), Checksum: checksum(data)}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

func (m *Manager) writeManifest(gen Generation, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return m.fs.WriteFile(filepath.Join(gen.Path, constants.ManifestFileName), append(data, '\n'))
}

// ReadManifest loads the manifest of gen. ErrNoManifest is returned when none was written.
func (m *Manager) ReadManifest(gen Generation) (*Manifest, error) {
	data, err := m.fs.ReadFile(filepath.Join(gen.Path, constants.ManifestFileName))
	if err != nil {
		if errors.Is(err, fsutil.ErrNotExist) {
			return nil, fmt.Errorf("%w: %d", ErrNoManifest, gen.ID)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if manifest.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version: %d", manifest.Version)
	}
	return &manifest, nil
}

// Info summarises a generation for listing.
type Info struct {
	Generation
	CreatedAt     time.Time `json:"created_at,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Target        string    `json:"target,omitempty"`
	DocumentCount int       `json:"document_count"`
	TotalSize     int64     `json:"size_bytes"`
	HasManifest   bool      `json:"has_manifest"`
}

// Describe collects listing metadata for gen. Generations without a manifest
// are still described from their directory contents.
func (m *Manager) Describe(gen Generation) (Info, error) {
	info := Info{Generation: gen}

	entries, err := m.fs.ListDir(gen.Path)
	if err != nil {
		return info, fmt.Errorf("reading generation %d: %w", gen.ID, err)
	}
	for _, e := range entries {
		if e.IsDir || e.Name == constants.ManifestFileName {
			continue
		}
		info.DocumentCount++
		info.TotalSize += e.Size
	}

	manifest, err := m.ReadManifest(gen)
	switch {
	case err == nil:
		info.HasManifest = true
		info.CreatedAt = manifest.CreatedAt
		info.Reason = manifest.Reason
		info.Target = manifest.Target
	case errors.Is(err, ErrNoManifest):
	default:
		return info, err
	}
	return info, nil
}

// VerifyStatus is the integrity state of one document in a generation.
type VerifyStatus string

const (
	VerifyOK       VerifyStatus = "ok"
	VerifyMismatch VerifyStatus = "mismatch"
	VerifyMissing  VerifyStatus = "missing"
)

// VerifyEntry is the verification result for one manifest entry.
type VerifyEntry struct {
	Name   string       `json:"name"`
	Status VerifyStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// VerifyResult is the outcome of checking a generation against its manifest.
type VerifyResult struct {
	ID        int           `json:"id"`
	Documents []VerifyEntry `json:"documents"`
}

// OK reports whether every document matched its checksum.
func (r VerifyResult) OK() bool {
	for _, d := range r.Documents {
		if d.Status != VerifyOK {
			return false
		}
	}
	return true
}

// Verify recomputes the checksum of every document listed in gen's manifest.
// Generations without a manifest return ErrNoManifest.
func (m *Manager) Verify(gen Generation) (VerifyResult, error) {
	manifest, err := m.ReadManifest(gen)
	if err != nil {
		return VerifyResult{}, err
	}

	result := VerifyResult{ID: gen.ID}
	for _, entry := range manifest.Documents {
		ve := VerifyEntry{Name: entry.Name, Status: VerifyOK}

		data, err := m.fs.ReadFile(filepath.Join(gen.Path, entry.Name))
		switch {
		case errors.Is(err, fsutil.ErrNotExist):
			ve.Status = VerifyMissing
		case err != nil:
			return VerifyResult{}, fmt.Errorf("reading %s: %w", entry.Name, err)
		default:
			if actual := checksum(data); actual != entry.Checksum {
				ve.Status = VerifyMismatch
				ve.Detail = fmt.Sprintf("expected %s, got %s", entry.Checksum, actual)
			}
		}
		result.Documents = append(result.Documents, ve)
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Name < result.Documents[j].Name
	})
	return result, nil
}
