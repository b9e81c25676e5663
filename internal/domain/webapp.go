package domain

import (
	"strconv"
	"strings"
)

const webAppDataMarker = "tgWebAppData="

// ExtractWebAppData pulls the URL-encoded init data out of a web view deep link.
// The payload runs from the tgWebAppData= marker up to the next '&'.
func ExtractWebAppData(rawURL string) (string, error) {
	start := strings.Index(rawURL, webAppDataMarker)
	if start < 0 {
		return "", ErrWebAppDataMissing
	}

	encoded := rawURL[start+len(webAppDataMarker):]
	if end := strings.IndexByte(encoded, '&'); end >= 0 {
		encoded = encoded[:end]
	}
	if encoded == "" {
		return "", ErrWebAppDataMissing
	}

	return unescapePercent(encoded), nil
}

// unescapePercent decodes %XX sequences. A '%' not followed by two hex digits is kept as is.
func unescapePercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}

	return b.String()
}
