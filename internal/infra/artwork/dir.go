// Package artwork resolves card images from a directory on disk.
package artwork

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/boddenberg/card-advisor-go/internal/domain"

	"go.uber.org/zap"
)

// Dir serves images named by each card's Artwork field from a directory.
// Any problem (no file configured, missing file, unreadable path) degrades to
// the placeholder; Artwork never returns an error.
type Dir struct {
	root   string
	logger *zap.Logger
}

// NewDir creates a provider rooted at root. An empty root disables images.
func NewDir(root string, logger *zap.Logger) *Dir {
	return &Dir{root: root, logger: logger}
}

// Artwork implements port.ArtworkProvider.
func (d *Dir) Artwork(_ context.Context, card domain.CardProfile) (*domain.Artwork, error) {
	placeholder := &domain.Artwork{CardName: card.Name, Placeholder: domain.ArtworkPlaceholder}

	if d.root == "" || card.Artwork == "" {
		return placeholder, nil
	}

	// Catalog entries name plain files; anything with a directory part is ignored.
	name := filepath.Base(card.Artwork)
	if name != card.Artwork || strings.HasPrefix(name, ".") {
		d.logger.Warn("artwork: rejected file name",
			zap.String("card", card.Name),
			zap.String("artwork", card.Artwork),
		)
		return placeholder, nil
	}

	path := filepath.Join(d.root, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		d.logger.Debug("artwork: image not found",
			zap.String("card", card.Name),
			zap.String("path", path),
		)
		return placeholder, nil
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &domain.Artwork{CardName: card.Name, Path: path, ContentType: contentType}, nil
}
