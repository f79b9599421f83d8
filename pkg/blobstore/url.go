package blobstore

import (
	"net/url"
	"strings"
)

// BlobURL joins an aggregator base URL and a blob identifier.
func BlobURL(aggregatorURL string, blobID string) string {
	return strings.TrimRight(aggregatorURL, "/") + "/v1/blobs/" + url.PathEscape(strings.TrimSpace(blobID))
}

// BlobIDFromURL extracts the blob identifier from an aggregator read URL.
// Both <aggregator>/v1/blobs/<id> and the legacy <aggregator>/v1/<id> forms
// are recognised.
func BlobIDFromURL(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		return "", false
	}

	segments := strings.Split(strings.Trim(parsed.EscapedPath(), "/"), "/")
	count := len(segments)
	if count >= 3 && segments[count-3] == "v1" && segments[count-2] == "blobs" {
		return unescapeSegment(segments[count-1])
	}
	if count >= 2 && segments[count-2] == "v1" && segments[count-1] != "blobs" {
		return unescapeSegment(segments[count-1])
	}
	return "", false
}

// IsURL reports whether value looks like an absolute http(s) URL rather than a
// bare blob identifier.
func IsURL(value string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")
}

func unescapeSegment(segment string) (string, bool) {
	unescaped, err := url.PathUnescape(segment)
	if err != nil || unescaped == "" {
		return "", false
	}
	return unescaped, true
}

// CanonicalBlobURL rewrites the legacy <aggregator>/v1/<id> form to
// <aggregator>/v1/blobs/<id>. Only URLs rooted at aggregatorURL are
// rewritten; any other URL is returned as stored.
func CanonicalBlobURL(raw string, aggregatorURL string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" {
		return trimmed
	}
	aggregator, err := url.Parse(strings.TrimSpace(aggregatorURL))
	if err != nil || aggregator.Host == "" || !strings.EqualFold(parsed.Host, aggregator.Host) {
		return trimmed
	}

	segments := strings.Split(strings.Trim(parsed.EscapedPath(), "/"), "/")
	count := len(segments)
	if count < 2 || segments[count-2] != "v1" || segments[count-1] == "blobs" {
		return trimmed
	}
	prefix := strings.Join(segments[:count-2], "/")
	if prefix != strings.Trim(aggregator.EscapedPath(), "/") {
		return trimmed
	}

	parsed.RawPath = ""
	rewritten, err := url.PathUnescape("/" + strings.Join(segments[:count-1], "/") + "/blobs/" + segments[count-1])
	if err != nil {
		return trimmed
	}
	parsed.Path = rewritten
	return parsed.String()
}
