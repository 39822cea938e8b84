package domain

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/PuerkitoBio/purell"
)

// Article is the public shape of an indexed news document. Text content and
// extraction method are populated only for expanded requests.
type Article struct {
	ID              string `json:"id"`
	Title           string `json:"article_title"`
	NormalizedTitle string `json:"normalized_article_title"`
	PublicationDate string `json:"publication_date"`
	IndexedDate     string `json:"indexed_date"`
	Language        string `json:"language"`
	FullLanguage    string `json:"full_language"`
	CanonicalDomain string `json:"canonical_domain"`
	URL             string `json:"url"`
	NormalizedURL   string `json:"normalized_url"`
	OriginalURL     string `json:"original_url"`
	TextContent     string `json:"text_content,omitempty"`
	TextExtraction  string `json:"text_extraction,omitempty"`
}

const urlNormalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagSortQuery |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveDotSegments

// ArticleID derives a stable document ID from the article URL. The URL is
// normalized before hashing so equivalent spellings of the same address map
// to the same ID, independent of backend-assigned identifiers.
func ArticleID(rawURL string) string {
	normalized, err := purell.NormalizeURLString(rawURL, urlNormalizeFlags)
	if err != nil {
		normalized = rawURL
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
