package domain

import "testing"

func TestFrameBuffer_Append(t *testing.T) {
	tests := []struct {
		name         string
		chunks       []string
		wantComplete bool
		wantContents string
		wantTrailing int
	}{
		{"single chunk with delimiter", []string{"hello\n"}, true, "hello\n", 0},
		{"delimiter in second chunk", []string{"hel", "lo\n"}, true, "hello\n", 0},
		{"no delimiter", []string{"abc", "def"}, false, "abcdef", 0},
		{"bytes after delimiter dropped", []string{"one\ntwo"}, true, "one\n", 3},
		{"two delimiters in one chunk", []string{"a\nb\n"}, true, "a\n", 2},
		{"chunk after completion counted as trailing", []string{"x\n", "yz"}, true, "x\n", 2},
		{"empty frame", []string{"\n"}, true, "\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b FrameBuffer
			var done bool
			for _, c := range tt.chunks {
				done = b.Append([]byte(c))
			}
			if done != tt.wantComplete || b.Complete() != tt.wantComplete {
				t.Errorf("complete = %v/%v, want %v", done, b.Complete(), tt.wantComplete)
			}
			if got := string(b.Contents()); got != tt.wantContents {
				t.Errorf("Contents() = %q, want %q", got, tt.wantContents)
			}
			if b.Len() != len(tt.wantContents) {
				t.Errorf("Len() = %d, want %d", b.Len(), len(tt.wantContents))
			}
			if b.Trailing() != tt.wantTrailing {
				t.Errorf("Trailing() = %d, want %d", b.Trailing(), tt.wantTrailing)
			}
		})
	}
}

func TestFrameBuffer_GrowsBeyondChunk(t *testing.T) {
	var b FrameBuffer
	chunk := make([]byte, 4096)
	for i := range chunk {
		chunk[i] = 'a'
	}
	for i := 0; i < 64; i++ {
		if b.Append(chunk) {
			t.Fatalf("frame completed early at chunk %d", i)
		}
	}
	if !b.Append([]byte("\n")) {
		t.Fatal("expected frame to complete")
	}
	if b.Len() != 64*4096+1 {
		t.Errorf("Len() = %d, want %d", b.Len(), 64*4096+1)
	}
}

func TestFrameBuffer_Reset(t *testing.T) {
	var b FrameBuffer
	b.Append([]byte("abc\nxyz"))
	b.Reset()

	if b.Complete() || b.Len() != 0 || b.Trailing() != 0 {
		t.Fatalf("after Reset: complete=%v len=%d trailing=%d", b.Complete(), b.Len(), b.Trailing())
	}
	if b.Append([]byte("next\n")); string(b.Contents()) != "next\n" {
		t.Errorf("Contents() = %q after reuse", b.Contents())
	}
}
