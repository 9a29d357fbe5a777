package paging

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"github.com/ugorji/go/codec"
)

var cursorHandle = newCursorHandle()

func newCursorHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.RawToString = true
	return h
}

// EncodeCursor packs the sort-key tuple of a hit into an opaque, URL-safe token.
func EncodeCursor(values []any) (string, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, cursorHandle).Encode(values); err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor unpacks a token produced by EncodeCursor.
//
// Malformed tokens report false instead of an error: callers treat them
// exactly like an absent cursor.
func DecodeCursor(cursor string) ([]any, bool) {
	cursor = strings.TrimRight(cursor, "=")
	if cursor == "" {
		return nil, false
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil || len(b) == 0 {
		return nil, false
	}
	// decode into an interface so maps and scalars are rejected rather than
	// coerced into a slice
	var v any
	if err := codec.NewDecoderBytes(b, cursorHandle).Decode(&v); err != nil {
		return nil, false
	}
	values, ok := v.([]any)
	if !ok || values == nil {
		return nil, false
	}
	for i, value := range values {
		// integers come back as int64 unless they only fit an unsigned_long
		if u, ok := value.(uint64); ok && u <= math.MaxInt64 {
			values[i] = int64(u)
		}
	}
	return values, true
}
