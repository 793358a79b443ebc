package engine

import "testing"

func TestWindows_Table(t *testing.T) {
	tests := []struct {
		name                  string
		total, length, stride float64
		want                  []Window
	}{
		{
			name:  "short recording fits one window",
			total: 12, length: 20, stride: 4,
			want: []Window{{0, 12}},
		},
		{
			name:  "windows share the stride",
			total: 50, length: 20, stride: 4,
			want: []Window{{0, 20}, {16, 36}, {32, 50}, {48, 50}},
		},
		{
			name:  "tail under one second is skipped",
			total: 32.5, length: 20, stride: 4,
			want: []Window{{0, 20}, {16, 32.5}},
		},
		{
			name:  "recording under one second yields nothing",
			total: 0.5, length: 20, stride: 4,
			want: nil,
		},
		{
			name:  "stride not smaller than length degrades to tiling",
			total: 40, length: 20, stride: 20,
			want: []Window{{0, 20}, {20, 40}},
		},
		{
			name:  "zero total",
			total: 0, length: 20, stride: 4,
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Windows(tc.total, tc.length, tc.stride)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d windows, got %d: %v", len(tc.want), len(got), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("window %d: expected %v, got %v", i, tc.want[i], got[i])
				}
			}
		})
	}
}
