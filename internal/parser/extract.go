package parser

import "strings"

// ExtractLastJSON returns the JSON object that ends line, or false when the
// line does not end (ignoring trailing whitespace) with a balanced object.
// Braces inside string values, including escaped quotes, are not counted.
func ExtractLastJSON(line string) (string, bool) {
	start, end := lastObject(line)
	if start < 0 {
		return "", false
	}
	return line[start:end], true
}

// lastObject returns the byte range [start, end) of the trailing object, or
// start = -1. It walks backward from the final '}' so that arbitrary text,
// stray braces and earlier objects in the message do not affect the result.
func lastObject(line string) (start, end int) {
	trimmed := strings.TrimRight(line, " \t\r\n")
	last := len(trimmed) - 1
	if last < 0 || trimmed[last] != '}' {
		return -1, 0
	}

	depth := 0
	inString := false
	for i := last; i >= 0; i-- {
		c := trimmed[i]
		if c == '"' && !escaped(trimmed, i) {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				return i, last + 1
			}
		}
	}
	return -1, 0
}

// escaped reports whether the byte at i is preceded by an odd number of
// backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// ScanValue returns the balanced JSON object or array at the start of s,
// scanning forward. It returns false if s does not open with '{' or '[' or
// the value never closes.
func ScanValue(s string) (string, bool) {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return "", false
	}

	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
