package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/timmy/vismatch/internal/domain"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ReferenceKind tells how an image reference carries the image.
type ReferenceKind string

const (
	KindDataURI ReferenceKind = "data_uri"
	KindURL     ReferenceKind = "url"
	KindRaw     ReferenceKind = "raw"
)

// Reference is a parsed image reference. Reachability of URLs is never checked.
type Reference struct {
	Raw      string
	Kind     ReferenceKind
	MIMEType string
	// Data holds the image bytes for data URIs and raw references.
	Data []byte
	// Format, Width and Height are set when Data decodes as a known image format.
	Format string
	Width  int
	Height int
}

// ParseReference classifies an image reference and sniffs inline image bytes.
// Blank references, malformed URLs and data URIs with a broken payload are rejected with
// domain.ErrInvalidInput. Inline bytes that do not decode as an image are accepted.
func ParseReference(imageRef string) (*Reference, error) {
	trimmed := strings.TrimSpace(imageRef)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: image reference is empty", domain.ErrInvalidInput)
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "data:"):
		return parseDataURI(trimmed)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		u, err := url.Parse(trimmed)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("%w: malformed image url", domain.ErrInvalidInput)
		}
		return &Reference{Raw: trimmed, Kind: KindURL}, nil
	default:
		ref := &Reference{Raw: imageRef, Kind: KindRaw, Data: []byte(imageRef)}
		ref.sniff()
		return ref, nil
	}
}

func parseDataURI(raw string) (*Reference, error) {
	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("%w: data uri has no payload", domain.ErrInvalidInput)
	}

	isBase64 := false
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		isBase64 = true
		meta = meta[:len(meta)-len(";base64")]
	}

	mimeType := meta
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}

	var data []byte
	if isBase64 {
		decoded, err := decodeBase64(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: data uri payload is not valid base64", domain.ErrInvalidInput)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: data uri payload is not valid percent-encoding", domain.ErrInvalidInput)
		}
		data = []byte(unescaped)
	}

	ref := &Reference{
		Raw:      raw,
		Kind:     KindDataURI,
		MIMEType: strings.ToLower(strings.TrimSpace(mimeType)),
		Data:     data,
	}
	ref.sniff()
	return ref, nil
}

// decodeBase64 accepts padded and unpadded payloads.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

func (r *Reference) sniff() {
	if len(r.Data) == 0 {
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(r.Data))
	if err != nil {
		return
	}
	r.Format = format
	r.Width = cfg.Width
	r.Height = cfg.Height
}

// Base64 returns the inline image bytes base64-encoded, or "" for URL references.
func (r *Reference) Base64() string {
	if r.Kind == KindURL {
		return ""
	}
	return base64.StdEncoding.EncodeToString(r.Data)
}
