package criteria

import (
	"strconv"
	"strings"
)

// PathSeparator joins the per-depth sequences of a path.
const PathSeparator = "."

// ComparePaths orders two paths segment by segment, numerically. A path sorts
// before every path it prefixes; the empty path sorts first.
func ComparePaths(a, b string) int {
	as, bs := splitPath(a), splitPath(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// PathDepth is the number of segments in a path.
func PathDepth(p string) int {
	return len(splitPath(p))
}

// ParentPath drops the last segment of p.
func ParentPath(p string) string {
	i := strings.LastIndex(p, PathSeparator)
	if i < 0 {
		return ""
	}
	return p[:i]
}

func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, PathSeparator)
}

func compareSegment(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr != nil || berr != nil {
		return strings.Compare(a, b)
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return 0
}
