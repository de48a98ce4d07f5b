package investec

import "time"

// Document is a statement or similar account document.
type Document struct {
	DocumentType string
	DocumentDate time.Time

	// DateAssumed is set when the API did not send a usable documentDate
	// and DocumentDate was substituted with today. The substitution is
	// kept for compatibility with the upstream API behaviour, but callers
	// can detect it happened.
	DateAssumed bool
}

func parseDocument(data map[string]interface{}) Document {
	if t := readTime(data, "documentDate"); t != nil {
		return Document{
			DocumentType: readString(data, "documentType"),
			DocumentDate: *t,
		}
	}

	return Document{
		DocumentType: readString(data, "documentType"),
		DocumentDate: time.Now().Truncate(24 * time.Hour),
		DateAssumed:  true,
	}
}
