package search

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mediacloud/news-search-api/internal/domain"
)

// EncodeCursor packages a backend sort-key value as an opaque resume token.
// URL-safe base64 with `=` padding swapped for `~` so tokens survive path and
// query contexts without percent-encoding.
func EncodeCursor(value string) string {
	return strings.ReplaceAll(base64.URLEncoding.EncodeToString([]byte(value)), "=", "~")
}

// DecodeCursor recovers the sort-key value from a resume token produced by
// EncodeCursor.
func DecodeCursor(token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(strings.ReplaceAll(token, "~", "="))
	if err != nil {
		return "", fmt.Errorf("%w: malformed resume token", domain.ErrInvalidRequest)
	}
	return string(raw), nil
}
