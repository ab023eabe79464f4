package utils

import "strings"

// MatchPath reports whether the glob pattern matches the target path.
// Both pattern and target are POSIX paths relative to the targets
// directory; a leading separator is stripped from both before matching.
// Within a pattern, "*" matches exactly one path component and "**"
// matches any sequence of components (including zero).
func MatchPath(pattern, target string) bool {
	pattern = strings.TrimPrefix(pattern, "/")
	target = strings.TrimPrefix(target, "/")

	patternParts := strings.Split(pattern, "/")
	targetParts := strings.Split(target, "/")

	return matchParts(patternParts, targetParts)
}

func matchParts(pattern, target []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]

		if head == "**" {
			// "**" matches any sequence of remaining components,
			// including none: try consuming 0..len(target) components.
			rest := pattern[1:]
			for consume := 0; consume <= len(target); consume++ {
				if matchParts(rest, target[consume:]) {
					return true
				}
			}
			return false
		}

		if len(target) == 0 {
			return false
		}
		if !matchComponent(head, target[0]) {
			return false
		}
		pattern = pattern[1:]
		target = target[1:]
	}
	return len(target) == 0
}

// matchComponent matches a single path component against a pattern
// component that may contain "*" wildcards (each matching any run of
// characters within that component, never a "/").
func matchComponent(pattern, component string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == component
	}
	segments := strings.Split(pattern, "*")
	pos := 0
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i == 0 {
			if !strings.HasPrefix(component[pos:], seg) {
				return false
			}
			pos += len(seg)
			continue
		}
		idx := strings.Index(component[pos:], seg)
		if idx == -1 {
			return false
		}
		pos += idx + len(seg)
	}
	if segments[len(segments)-1] != "" && !strings.HasSuffix(component, segments[len(segments)-1]) {
		return false
	}
	return true
}

// AnyMatch reports whether any pattern in patterns matches target.
func AnyMatch(patterns []string, target string) bool {
	for _, p := range patterns {
		if MatchPath(p, target) {
			return true
		}
	}
	return false
}
