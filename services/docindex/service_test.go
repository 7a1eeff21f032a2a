package docindex

import (
	"strings"
	"testing"
)

func TestFormatChunk(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		contains []string
		empty    bool
	}{
		{
			name: "full metadata",
			metadata: map[string]any{
				"course_name":      "Distributed Systems",
				"heading":          "Consensus",
				"heading_path":     "Replication → Consensus",
				"content":          "Raft elects a single leader.",
				"enriched_context": "Covers leader election in Raft.",
			},
			contains: []string{
				"Course: Distributed Systems",
				"Section: Consensus (Path: Replication → Consensus)",
				"Content: Raft elects a single leader.",
				"Context: Covers leader election in Raft.",
			},
		},
		{
			name: "content only",
			metadata: map[string]any{
				"content": "Midterm covers chapters 1-4.",
			},
			contains: []string{"Content: Midterm covers chapters 1-4."},
		},
		{
			name:     "no usable metadata",
			metadata: map[string]any{"score": 0.92},
			empty:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := formatChunk(tt.metadata)
			if tt.empty {
				if chunk != "" {
					t.Errorf("expected empty chunk, got %q", chunk)
				}
				return
			}
			for _, want := range tt.contains {
				if !strings.Contains(chunk, want) {
					t.Errorf("chunk missing %q:\n%s", want, chunk)
				}
			}
		})
	}
}
