package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/storage"
	"gopkg.in/yaml.v3"
)

//go:embed data/products.yaml
var builtinProducts []byte

// Source names accepted by NewLoader.
const (
	SourceBuiltin  = "builtin"
	SourceFile     = "file"
	SourceDatabase = "database"
	SourceObject   = "object"
)

// Loader supplies the products a catalog is built from.
type Loader interface {
	Load(ctx context.Context) ([]domain.Product, error)
}

// ProductLister is the database side of DatabaseLoader.
type ProductLister interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// document is the on-disk layout of a catalog file.
type document struct {
	Products []domain.Product `json:"products" yaml:"products"`
}

// Format of a catalog document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the document format from a file name; anything but .json is YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a catalog document.
func Decode(data []byte, format Format) ([]domain.Product, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode catalog json: %w", err)
		}
	default:
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode catalog yaml: %w", err)
		}
	}
	return doc.Products, nil
}

// Encode renders products as a catalog document.
func Encode(products []domain.Product, format Format) ([]byte, error) {
	doc := document{Products: products}
	if format == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode catalog yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuiltinLoader loads the demo catalog compiled into the binary.
type BuiltinLoader struct{}

// Load implements Loader.
func (BuiltinLoader) Load(_ context.Context) ([]domain.Product, error) {
	return Decode(builtinProducts, FormatYAML)
}

// FileLoader loads a YAML or JSON catalog file.
type FileLoader struct {
	Path string
}

// Load implements Loader.
func (l FileLoader) Load(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Decode(data, FormatFromPath(l.Path))
}

// DatabaseLoader loads the catalog from the products table.
type DatabaseLoader struct {
	Repo ProductLister
}

// Load implements Loader.
func (l DatabaseLoader) Load(ctx context.Context) ([]domain.Product, error) {
	products, err := l.Repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog products: %w", err)
	}
	return products, nil
}

// ObjectLoader loads a catalog document from object storage.
type ObjectLoader struct {
	Storage storage.ObjectStorage
	Key     string
}

// Load implements Loader.
func (l ObjectLoader) Load(ctx context.Context) ([]domain.Product, error) {
	body, err := l.Storage.Download(ctx, l.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to download catalog object %s: %w", l.Key, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog object %s: %w", l.Key, err)
	}
	return Decode(data, FormatFromPath(l.Key))
}

// Load runs loader and builds a validated catalog.
func Load(ctx context.Context, loader Loader) (*Catalog, error) {
	products, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(products)
}
