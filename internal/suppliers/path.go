package suppliers

import (
	"strconv"
	"strings"
)

const resourceSegment = "suppliers"

// ExtractID locates the supplier identifier in a request path. basePath is
// stripped first. The numeric segment right after a "suppliers" segment
// wins; otherwise a numeric final segment is used. Zero means the request
// addresses the collection.
func ExtractID(path, basePath string) int64 {
	if basePath != "" && strings.HasPrefix(path, basePath) {
		path = path[len(basePath):]
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	for i, seg := range segments {
		if seg != resourceSegment || i+1 >= len(segments) {
			continue
		}
		if id, ok := parseID(segments[i+1]); ok {
			return id
		}
	}

	if n := len(segments); n > 0 {
		if id, ok := parseID(segments[n-1]); ok {
			return id
		}
	}
	return 0
}

// parseID accepts ASCII digits only and rejects zero.
func parseID(seg string) (int64, bool) {
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
