package utils

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

func JSONEncode(v any) (string, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func JSONEncodeString(v any) string {
	s, err := JSONEncode(v)
	if err != nil {
		panic(fmt.Errorf("unable to encode type %T to string: %w", v, err))
	}
	return s
}

func IsContentType(header http.Header, contentType string) bool {
	headerContentType := header.Get("Content-Type")
	for i, c := range headerContentType {
		if c == ' ' || c == ';' {
			headerContentType = headerContentType[:i]
			break
		}
	}
	return headerContentType == contentType
}

// GenerateID generates a random ID with the given prefix.
// Format: prefix_<12 random hex characters>
func GenerateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "_" + hex.EncodeToString(b)
}

// FormatDataURL builds an RFC 2397 data URL from a media type and
// base64-encoded payload.
func FormatDataURL(mediaType string, base64Data string) string {
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64Data)
}

// ParseDataURL splits an RFC 2397 data URL into its media type and
// base64-encoded payload. Returns ok=false for anything that is not a
// base64 data URL, including plain http(s) URLs.
func ParseDataURL(url string) (mediaType string, base64Data string, ok bool) {
	rest, found := strings.CutPrefix(url, "data:")
	if !found {
		return "", "", false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mediaType, found = strings.CutSuffix(meta, ";base64")
	if !found {
		return "", "", false
	}
	return mediaType, payload, true
}
