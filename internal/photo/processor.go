package photo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxPayloadBytes caps the decoded payload size, measured before the image
// itself is decoded. Oversized payloads are rejected without touching the
// codec.
const MaxPayloadBytes = 5 << 20

const (
	maxWidth    = 1920
	maxHeight   = 1080
	jpegQuality = 85
)

// ErrPayloadTooLarge is returned for payloads over MaxPayloadBytes.
var ErrPayloadTooLarge = errors.New("photo payload too large")

// ErrProcessing wraps any decode, encode, or storage failure. The enclosing
// check-in/check-out fails when a promised photo cannot be processed.
var ErrProcessing = errors.New("photo processing failed")

// Processor turns a base64 photo payload into a stored, normalized JPEG and
// returns the public reference to it.
type Processor struct {
	codec Codec
	store Store
}

// NewProcessor creates a processor with the given codec and store.
func NewProcessor(codec Codec, store Store) *Processor {
	return &Processor{codec: codec, store: store}
}

// Process decodes the payload, enforces the size cap, normalizes the image,
// and writes it under a generated name. The name is never derived from the
// payload or any other caller input.
func (p *Processor) Process(ctx context.Context, payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stripDataURL(payload))
	if err != nil {
		return "", fmt.Errorf("%w: decode payload: %v", ErrProcessing, err)
	}
	if len(raw) > MaxPayloadBytes {
		return "", ErrPayloadTooLarge
	}

	normalized, err := p.codec.Normalize(raw, maxWidth, maxHeight, jpegQuality)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	name := uuid.NewString() + ".jpg"
	ref, err := p.store.Save(ctx, name, normalized)
	if err != nil {
		return "", fmt.Errorf("%w: store: %v", ErrProcessing, err)
	}
	return ref, nil
}

// stripDataURL drops a "data:image/...;base64," prefix when present; raw
// base64 passes through untouched.
func stripDataURL(payload string) string {
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			return payload[i+1:]
		}
	}
	return payload
}
