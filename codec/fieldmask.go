package codec

import (
	"fmt"
	"strings"
)

// FormatFieldMask renders mask paths as a comma-joined string of
// lower-camel-case paths.
func FormatFieldMask(paths []string) (string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		c, err := camelize(p)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	return strings.Join(out, ","), nil
}

// ParseFieldMask splits a comma-joined mask string back into snake_case
// paths. An empty string is an empty mask.
func ParseFieldMask(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		sp, err := snakeize(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

func camelize(path string) (string, error) {
	var b strings.Builder
	up := false
	for _, r := range path {
		switch {
		case r == '_':
			if up {
				return "", fmt.Errorf("field mask path %q has consecutive underscores", path)
			}
			up = true
		case up:
			if r < 'a' || r > 'z' {
				return "", fmt.Errorf("field mask path %q is not lower snake case", path)
			}
			b.WriteRune(r - 'a' + 'A')
			up = false
		case r >= 'A' && r <= 'Z':
			return "", fmt.Errorf("field mask path %q is not lower snake case", path)
		default:
			b.WriteRune(r)
		}
	}
	if up {
		return "", fmt.Errorf("field mask path %q ends with underscore", path)
	}
	return b.String(), nil
}

func snakeize(path string) (string, error) {
	var b strings.Builder
	for _, r := range path {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
		case r == '_':
			return "", fmt.Errorf("field mask path %q mixes underscores with camel case", path)
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
