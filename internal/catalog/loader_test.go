package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/timmy/vismatch/internal/domain"
)

var sample = []domain.Product{
	{
		ID:       "x1",
		Name:     "Trail Runner",
		Category: "sneakers",
		ImageURL: "https://example.com/shoe.jpg",
		Price:    decimal.RequireFromString("129.99"),
		Features: []string{"Grip sole"},
	},
	{
		ID:       "x2",
		Name:     "Chef Pan",
		Category: "cookware",
		Price:    decimal.NewFromInt(45),
	},
}

func TestFileLoader(t *testing.T) {
	for _, name := range []string{"catalog.yaml", "catalog.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			data, err := Encode(sample, FormatFromPath(path))
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}

			c, err := Load(context.Background(), FileLoader{Path: path})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			got, ok := c.Get("x1")
			if !ok {
				t.Fatal("x1 missing")
			}
			if !got.Price.Equal(sample[0].Price) || got.ImageURL != sample[0].ImageURL {
				t.Errorf("x1 = %+v", got)
			}
		})
	}
}

func TestFileLoaderMissingFile(t *testing.T) {
	_, err := Load(context.Background(), FileLoader{Path: filepath.Join(t.TempDir(), "none.yaml")})
	if err == nil {
		t.Fatal("Load() of a missing file returned nil error")
	}
}

type fakeLister struct {
	products []domain.Product
	err      error
}

func (f fakeLister) ListAll(context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

func TestDatabaseLoader(t *testing.T) {
	c, err := Load(context.Background(), DatabaseLoader{Repo: fakeLister{products: sample}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len() != 2 || c.All()[1].ID != "x2" {
		t.Errorf("catalog = %+v", c.All())
	}

	boom := errors.New("boom")
	if _, err := Load(context.Background(), DatabaseLoader{Repo: fakeLister{err: boom}}); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want boom", err)
	}
}

type memStorage struct {
	objects map[string][]byte
}

func (m *memStorage) EnsureBucket(context.Context) error { return nil }

func (m *memStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) GetURL(key string) string { return "mem://" + key }

func (m *memStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func TestObjectLoader(t *testing.T) {
	store := &memStorage{objects: map[string][]byte{}}
	data, err := Encode(sample, FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Upload(context.Background(), "catalog/products.yaml", bytes.NewReader(data), int64(len(data)), "application/yaml"); err != nil {
		t.Fatal(err)
	}

	c, err := Load(context.Background(), ObjectLoader{Storage: store, Key: "catalog/products.yaml"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	if _, err := Load(context.Background(), ObjectLoader{Storage: store, Key: "missing.yaml"}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestDecodeRejectsInvalidProducts(t *testing.T) {
	doc := []byte("products:\n  - id: \"a\"\n    category: \"spaceships\"\n    price: \"1\"\n")
	products, err := Decode(doc, FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, err := New(products); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Errorf("New() error = %v, want ErrInvalidCatalog", err)
	}
}
