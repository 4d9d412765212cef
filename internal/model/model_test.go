package model

import "testing"

func TestRunArgsReplacePath(t *testing.T) {
	tests := []struct {
		name string
		args RunArgs
		path string
		want string
	}{
		{
			name: "no replacement, normalizes separators",
			args: RunArgs{},
			path: `C:\data\files`,
			want: "C:/data/files",
		},
		{
			name: "prefix substitution then normalization",
			args: RunArgs{ReplaceFrom: `C:\data`, ReplaceTo: "/mnt/data"},
			path: `C:\data\files`,
			want: "/mnt/data/files",
		},
		{
			name: "no match leaves path untouched apart from separators",
			args: RunArgs{ReplaceFrom: "/other", ReplaceTo: "/mnt"},
			path: "/data/files",
			want: "/data/files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.args.ReplacePath(tt.path); got != tt.want {
				t.Errorf("ReplacePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRunArgsEffectiveMaxDepth(t *testing.T) {
	tests := []struct {
		name string
		args RunArgs
		want int
	}{
		{"plain crawl uses MaxDepth", RunArgs{MaxDepth: 5}, 5},
		{"non-recursive reindex clamps to 1", RunArgs{MaxDepth: 5, Reindex: true}, 1},
		{"recursive reindex uses MaxDepth", RunArgs{MaxDepth: 5, Reindex: true, ReindexRecursive: true}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.args.EffectiveMaxDepth(); got != tt.want {
				t.Errorf("EffectiveMaxDepth() = %d, want %d", got, tt.want)
			}
		})
	}
}
