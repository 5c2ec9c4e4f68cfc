package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// renders doc back into SubRip blocks, keeping the parsed indices and raw text
func Encode(doc Document) []byte {
	var sb strings.Builder
	for _, entry := range doc.Entries {
		sb.WriteString(fmt.Sprintf("%d\n", entry.Index))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n", entry.Start, entry.End))

		sb.WriteString(entry.RawText)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// writes doc as an SRT file
func Write(doc Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, Encode(doc), 0644)
}
