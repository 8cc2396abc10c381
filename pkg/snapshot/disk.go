package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DiskStore stores snapshots in a directory. Each snapshot has a ".meta"
// JSON file next to it.
type DiskStore struct {
	dir string
}

type diskMeta struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDiskStore creates dir if needed and returns a store writing to it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *DiskStore) Dir() string { return s.dir }

// Put writes body to dir/key. The file is written to a temporary name and
// renamed so readers never see a partial snapshot.
func (s *DiskStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(key); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, key)
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	meta := diskMeta{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(body)),
		CreatedAt:   time.Now(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path+".meta", data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the stored keys, oldest first.
func (s *DiskStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var metas []diskMeta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".meta") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var m diskMeta
		if json.Unmarshal(data, &m) == nil {
			metas = append(metas, m)
		}
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].Key < metas[j].Key
		}
		return metas[i].CreatedAt.Before(metas[j].CreatedAt)
	})
	keys := make([]string, len(metas))
	for i, m := range metas {
		keys[i] = m.Key
	}
	return keys, nil
}

// Cleanup removes snapshots older than maxAge.
func (s *DiskStore) Cleanup(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, e.Name()))
		}
	}
	return nil
}
