package guardian

import (
	"encoding/json"

	"github.com/elly-uk/streaming-data-project/internal/article"
)

// previewLimit caps content_preview at the first 1000 characters of the
// article body. Truncation counts characters, not bytes.
const previewLimit = 1000

// Normalize maps a raw Guardian result to the queue record. It reports
// false when any of the three required keys is absent from the source;
// such records are filtered out, not errors. Pure: the same input always
// yields the same output.
func Normalize(raw RawArticle) (article.Article, bool) {
	if raw.WebPublicationDate == nil || raw.WebTitle == nil || raw.WebURL == nil {
		return article.Article{}, false
	}

	return article.Article{
		WebPublicationDate: *raw.WebPublicationDate,
		WebTitle:           *raw.WebTitle,
		WebURL:             *raw.WebURL,
		ContentPreview:     truncate(bodyText(raw.Fields), previewLimit),
	}, true
}

// bodyText digs fields.bodyText out of the raw blob. A missing fields
// object, or one with an unexpected shape, yields an empty preview rather
// than an error.
func bodyText(fields json.RawMessage) string {
	if len(fields) == 0 {
		return ""
	}
	var f struct {
		BodyText string `json:"bodyText"`
	}
	if err := json.Unmarshal(fields, &f); err != nil {
		return ""
	}
	return f.BodyText
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
