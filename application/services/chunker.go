package services

import "strings"

// Chunking defaults, overridable through configuration.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkText splits document content into overlapping pieces for embedding.
// Paragraph boundaries are preferred, then line breaks, then a plain
// character window with overlap for any segment that is still too long.
// Chunks are trimmed; empty ones are dropped.
func ChunkText(content string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current.Reset()
	}

	for _, segment := range splitSegments(content) {
		if len(segment) > size {
			flush()
			chunks = append(chunks, windowSplit(segment, size, overlap)...)
			continue
		}
		if current.Len() > 0 && current.Len()+len(segment)+2 > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(segment)
	}
	flush()

	return chunks
}

// splitSegments breaks content at paragraph boundaries, falling back to
// single lines for paragraph-free text.
func splitSegments(content string) []string {
	var segments []string
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		segments = append(segments, para)
	}
	return segments
}

// windowSplit cuts an oversized segment into fixed windows with overlap,
// breaking at the last space inside each window when one exists.
func windowSplit(segment string, size, overlap int) []string {
	var chunks []string
	for start := 0; start < len(segment); {
		end := start + size
		if end >= len(segment) {
			chunks = append(chunks, strings.TrimSpace(segment[start:]))
			break
		}
		cut := end
		if idx := strings.LastIndexByte(segment[start:end], ' '); idx > 0 {
			cut = start + idx
		}
		chunks = append(chunks, strings.TrimSpace(segment[start:cut]))
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}
