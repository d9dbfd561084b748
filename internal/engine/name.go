package engine

import "strings"

// SplitName splits a path into its last component, the stem, and the
// extension. The last component follows the final '/' or '\'. The extension
// starts at the last '.' of that component and keeps the dot; a name without
// a dot has an empty extension, and a leading dot ("..bashrc", ".env") is
// still treated as the extension boundary.
func SplitName(path string) (fileName, stem, ext string) {
	fileName = path[len(DirPrefix(path)):]
	if i := strings.LastIndexByte(fileName, '.'); i >= 0 {
		return fileName, fileName[:i], fileName[i:]
	}
	return fileName, fileName, ""
}

// DirPrefix returns path up to and including its final '/' or '\', or the
// empty string when path has no separator.
func DirPrefix(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[:i+1]
	}
	return ""
}

// containsSeparator reports whether name would address a different directory.
func containsSeparator(name string) bool {
	return strings.ContainsAny(name, `/\`)
}
