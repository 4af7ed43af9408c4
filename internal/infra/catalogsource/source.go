package catalogsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
	"github.com/yanqian/learnmate/internal/infra/config"
	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

// Source yields the raw YAML catalog document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Describe() string
}

// Embedded serves the catalog compiled into the binary.
type Embedded struct{}

// Fetch returns the bundled document.
func (Embedded) Fetch(context.Context) ([]byte, error) {
	return curriculum.DefaultYAML(), nil
}

// Describe names the source for logs.
func (Embedded) Describe() string { return "embedded" }

// File reads the catalog from the local filesystem.
type File struct {
	Path string
}

// Fetch reads the whole file.
func (f File) Fetch(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return data, nil
}

// Describe names the source for logs.
func (f File) Describe() string { return "file:" + f.Path }

// New picks the source configured in cfg.
func New(cfg config.CatalogConfig, logger *slog.Logger) (Source, error) {
	switch cfg.Source {
	case "", config.CatalogSourceEmbedded:
		return Embedded{}, nil
	case config.CatalogSourceFile:
		return File{Path: cfg.Path}, nil
	case config.CatalogSourceObject:
		return NewObjectSource(cfg.Object, logger)
	default:
		return nil, apperrors.Wrap(apperrors.CodeCatalog, fmt.Sprintf("unsupported catalog source %q", cfg.Source), nil)
	}
}

// Load fetches and parses the catalog. Every failure is a catalog_error.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*curriculum.Catalog, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalog, "fetch catalog from "+src.Describe(), err)
	}
	catalog, err := curriculum.Parse(raw)
	if err != nil {
		return nil, err
	}
	logger.Info("curriculum catalog loaded",
		"source", src.Describe(),
		"version", catalog.Version(),
		"subjects", len(catalog.Subjects()),
	)
	return catalog, nil
}
