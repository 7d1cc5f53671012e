// Package textutil provides byte-level text helpers shared by the tree
// comparator and the git blob readers: binary detection and permissive
// line counting. Content is handled as raw bytes, so any encoding passes
// through untouched.
package textutil

import "bytes"

// BinarySniffLength is the number of leading bytes scanned for a null
// byte. Matches the heuristic git itself uses.
const BinarySniffLength = 8000

// IsBinary reports whether data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in data.
// A trailing fragment without a final newline still counts as a line.
// Empty data has zero lines.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}
