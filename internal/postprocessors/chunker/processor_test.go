package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func mustNew(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := mustNew(t)
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := mustNew(t, WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		p := mustNew(t, WithOverlap(100))
		if p.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", p.overlap)
		}
	})

	t.Run("overlap not smaller than chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("zero overlap allowed", func(t *testing.T) {
		p := mustNew(t, WithChunkSize(10), WithOverlap(0))
		if p.Overlap() != 0 {
			t.Errorf("expected overlap 0, got %d", p.Overlap())
		}
	})

	t.Run("invalid option values ignored", func(t *testing.T) {
		p := mustNew(t, WithChunkSize(0), WithOverlap(-1))
		if p.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.ChunkSize())
		}
		if p.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.Overlap())
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := mustNew(t)
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestSplit_EmptyContent(t *testing.T) {
	p := mustNew(t)
	if chunks := p.Split(""); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
	if chunks := p.Split("   \n\t "); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for whitespace content, got %d", len(chunks))
	}
}

func TestSplit_ShorterThanSize(t *testing.T) {
	p := mustNew(t, WithChunkSize(100), WithOverlap(20))

	chunks := p.Split("  This is a small piece of content.  ")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "This is a small piece of content." {
		t.Errorf("expected trimmed text, got %q", chunks[0])
	}
}

func TestSplit_NoBreaks(t *testing.T) {
	p := mustNew(t, WithChunkSize(10), WithOverlap(3))

	chunks := p.Split("0123456789ABCDEFGHIJ")

	want := []string{"0123456789", "789ABCDEFG", "EFGHIJ"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_AlternatingSentences(t *testing.T) {
	p := mustNew(t)

	var b strings.Builder
	for i := 0; i < 50; i++ {
		letter := "a"
		if i%2 == 1 {
			letter = "b"
		}
		b.WriteString(strings.Repeat(letter, 49) + ".")
	}
	text := b.String()
	if len(text) != 2500 {
		t.Fatalf("fixture should be 2500 chars, got %d", len(text))
	}

	chunks := p.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	// Each chunk ends on a sentence boundary and the next starts 800 later.
	if chunks[0] != text[0:1000] {
		t.Error("chunk 0 should cover [0,1000)")
	}
	if chunks[1] != text[800:1800] {
		t.Error("chunk 1 should cover [800,1800)")
	}
	if chunks[2] != text[1600:] {
		t.Error("chunk 2 should cover [1600,2500)")
	}
}

func TestSplit_BreakBeforeMidpointIgnored(t *testing.T) {
	p := mustNew(t, WithChunkSize(100), WithOverlap(10))

	text := "Hi. " + strings.Repeat("x", 200)
	chunks := p.Split(text)

	if len([]rune(chunks[0])) != 100 {
		t.Errorf("expected first chunk of full size, got %d", len(chunks[0]))
	}
}

func TestSplit_NewlineBreak(t *testing.T) {
	p := mustNew(t, WithChunkSize(20), WithOverlap(2))

	text := strings.Repeat("y", 15) + "\n" + strings.Repeat("z", 30)
	chunks := p.Split(text)

	if chunks[0] != strings.Repeat("y", 15) {
		t.Errorf("expected first chunk to end at newline, got %q", chunks[0])
	}
}

func TestSplit_LargeOverlapTerminates(t *testing.T) {
	p := mustNew(t, WithChunkSize(100), WithOverlap(80))

	text := strings.Repeat(strings.Repeat("x", 60)+".", 10)
	chunks := p.Split(text)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
	if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
		t.Error("last chunk should reach the end of the text")
	}
}

func TestSplit_CoversText(t *testing.T) {
	p := mustNew(t, WithChunkSize(50), WithOverlap(10))

	text := strings.Repeat("The quick brown fox jumps. ", 20)
	chunks := p.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !strings.Contains(text, c) {
			t.Errorf("chunk %d is not a substring of the input", i)
		}
		if len(c) > 50 {
			t.Errorf("chunk %d exceeds chunk size: %d", i, len(c))
		}
	}
	if !strings.HasPrefix(text, chunks[0]) {
		t.Error("first chunk should start the text")
	}
	if !strings.HasSuffix(strings.TrimSpace(text), chunks[len(chunks)-1]) {
		t.Error("last chunk should end the text")
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	p := mustNew(t, WithChunkSize(5), WithOverlap(1))

	chunks := p.Split("ééééééééé")
	for _, c := range chunks {
		if !strings.HasPrefix(c, "é") || len([]rune(c)) > 5 {
			t.Errorf("chunk %q split a rune or exceeds size", c)
		}
	}
}

func TestChunk_OrdinalsAndMetadata(t *testing.T) {
	p := mustNew(t, WithChunkSize(10), WithOverlap(3))

	base := map[string]any{"source": "a.txt"}
	chunks := p.Chunk("0123456789ABCDEFGHIJ", base)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("expected ordinal %d, got %d", i, c.Ordinal)
		}
		if c.Metadata[domain.MetaChunkIndex] != i {
			t.Errorf("expected chunk_index %d, got %v", i, c.Metadata[domain.MetaChunkIndex])
		}
		if c.Metadata["source"] != "a.txt" {
			t.Errorf("expected source metadata copied")
		}
	}
	if _, ok := base[domain.MetaChunkIndex]; ok {
		t.Error("base metadata must not be mutated")
	}
}
