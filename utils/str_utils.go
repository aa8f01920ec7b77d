package utils

import (
	"strings"
)

// FindFilePathCharacters checks if a string contains illegal file path characters like ".." or a path separator.
// Both separators are checked because remote file names come from providers that allow either.
func FindFilePathCharacters(s string) bool {
	return strings.Contains(s, "..") || strings.ContainsAny(s, `/\`)
}

// IsPlainFileName reports whether s can be used as-is as a file name inside a directory.
func IsPlainFileName(s string) bool {
	return strings.TrimSpace(s) != "" && s != "." && !FindFilePathCharacters(s)
}
