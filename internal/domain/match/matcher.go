package match

import "strings"

// SplitPath normalizes a request path into its segments.
// Leading and trailing slashes are ignored; "/" yields no segments.
func SplitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// MatchSegments matches request segments against pattern segments.
// A pattern segment starting with ':' captures the request segment verbatim
// under the name after the colon; any other segment must be equal exactly
// (case-sensitive). Segment counts must be equal; matching short-circuits on
// the first mismatch.
func MatchSegments(pattern, request []string) (map[string]string, bool) {
	if len(pattern) != len(request) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			params[seg[1:]] = request[i]
			continue
		}
		if seg != request[i] {
			return nil, false
		}
	}
	return params, true
}

// MatchPath is MatchSegments over raw path strings.
func MatchPath(pattern, path string) (map[string]string, bool) {
	return MatchSegments(SplitPath(pattern), SplitPath(path))
}
