// Package snapshot renders documents and stores the markup on disk or in
// S3.
//
//	store, _ := snapshot.NewDiskStore("snapshots")
//	loc, err := snapshot.Take(ctx, store, doc, "profile")
//	// loc: snapshots/profile-1718000000.html
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/dom/htmldom"
)

// ContentType is the content type of stored snapshots.
const ContentType = "text/html; charset=utf-8"

// ErrInvalidName is returned for snapshot names that are empty or contain
// path elements.
var ErrInvalidName = errors.New("snapshot: invalid name")

// Store persists snapshot bodies.
type Store interface {
	// Put stores body under key and returns where it was stored.
	Put(ctx context.Context, key string, body []byte, contentType string) (location string, err error)
}

// Take renders n and stores it as "<name>-<unix seconds>.html".
func Take(ctx context.Context, store Store, n dom.Node, name string) (string, error) {
	return take(ctx, store, n, name, time.Now())
}

func take(ctx context.Context, store Store, n dom.Node, name string, now time.Time) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := htmldom.Render(&buf, n); err != nil {
		return "", fmt.Errorf("snapshot: render %s: %w", name, err)
	}
	key := fmt.Sprintf("%s-%d.html", name, now.Unix())
	return store.Put(ctx, key, buf.Bytes(), ContentType)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
