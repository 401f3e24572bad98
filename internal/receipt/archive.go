package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ObjectPutter is the object store used to keep printed receipts.
type ObjectPutter interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) (string, error)
}

type Archiver struct {
	Store ObjectPutter
	Now   func() time.Time
}

var ErrArchiveDisabled = errors.New("receipt archive is not configured")

// Archive uploads the PDF rendering and returns its public URL.
func (a *Archiver) Archive(ctx context.Context, s Summary) (string, error) {
	if a == nil || a.Store == nil {
		return "", ErrArchiveDisabled
	}
	body, err := PDF(s)
	if err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	key := fmt.Sprintf("receipts/%d/%s", now().Year(), Filename(s, "pdf"))
	return a.Store.PutObject(ctx, key, body, "application/pdf", "private, max-age=0")
}
