package classname

import "strings"

// splitFlat splits a map body on every comma.
func splitFlat(body string) []string {
	return strings.Split(body, ",")
}

// splitEntry splits "key: value" on the first colon and cleans the key.
func splitEntry(entry string) (key, value string, ok bool) {
	k, v, found := strings.Cut(entry, ":")
	if !found {
		return "", "", false
	}
	key = unquote(k)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(v), true
}

// splitArgs splits a mixin argument list on commas that are not nested
// inside parentheses or quotes, then trims and unquotes each piece.
func splitArgs(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var (
		args  []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			args = append(args, unquote(list[start:i]))
			start = i + 1
		}
	}
	return append(args, unquote(list[start:]))
}

// unquote trims whitespace and one level of surrounding quote characters.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return strings.Trim(s, `"'`)
}
