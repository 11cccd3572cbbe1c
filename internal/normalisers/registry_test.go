package normalisers

import (
	"context"
	"errors"
	"testing"
)

type stubNormaliser struct {
	exts     []string
	priority int
	out      string
	err      error
}

func (s *stubNormaliser) Extensions() []string { return s.exts }
func (s *stubNormaliser) Priority() int        { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, _ []byte, _ string) (string, error) {
	return s.out, s.err
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{"pdf"}, priority: 50, out: "from pdf"})

	got, err := r.Extract(context.Background(), []byte("%PDF"), "Report.PDF")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "from pdf" {
		t.Errorf("Extract() = %q, want %q", got, "from pdf")
	}
}

func TestRegistry_HighestPriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{"md"}, priority: 5, out: "low"})
	r.Register(&stubNormaliser{exts: []string{"md"}, priority: 80, out: "high"})
	r.Register(&stubNormaliser{exts: []string{"md"}, priority: 50, out: "mid"})

	got, _ := r.Extract(context.Background(), nil, "a.md")
	if got != "high" {
		t.Errorf("Extract() = %q, want high", got)
	}
}

func TestRegistry_FallbackDecodesText(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		filename string
		content  []byte
		want     string
	}{
		{"script.py", []byte("print('hi')"), "print('hi')"},
		{"noext", []byte("\xef\xbb\xbfplain"), "plain"},
		{"bin.dat", []byte("a\xffb"), "a�b"},
	}
	for _, tt := range tests {
		got, err := r.Extract(context.Background(), tt.content, tt.filename)
		if err != nil {
			t.Fatalf("Extract(%q) error = %v", tt.filename, err)
		}
		if got != tt.want {
			t.Errorf("Extract(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestRegistry_PropagatesErrors(t *testing.T) {
	boom := errors.New("corrupt")
	r := NewRegistry()
	r.Register(&stubNormaliser{exts: []string{"json"}, priority: 50, err: boom})

	if _, err := r.Extract(context.Background(), nil, "x.json"); !errors.Is(err, boom) {
		t.Errorf("Extract() error = %v, want %v", err, boom)
	}
}

func TestDefaultRegistry_Extensions(t *testing.T) {
	exts := NewDefaultRegistry().SupportedExtensions()

	want := map[string]bool{"txt": false, "md": false, "csv": false, "json": false, "pdf": false, "html": false, "docx": false}
	for _, ext := range exts {
		if _, ok := want[ext]; ok {
			want[ext] = true
		}
	}
	for ext, found := range want {
		if !found {
			t.Errorf("SupportedExtensions() missing %q", ext)
		}
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] > exts[i] {
			t.Errorf("SupportedExtensions() not sorted: %v", exts)
			break
		}
	}
}

func TestDefaultRegistry_JSONAndText(t *testing.T) {
	r := NewDefaultRegistry()
	ctx := context.Background()

	got, err := r.Extract(ctx, []byte(`{"a":1}`), "data.json")
	if err != nil {
		t.Fatalf("Extract(json) error = %v", err)
	}
	if got != "{\n  \"a\": 1\n}" {
		t.Errorf("Extract(json) = %q", got)
	}

	got, err = r.Extract(ctx, []byte("# Title\n"), "README.md")
	if err != nil {
		t.Fatalf("Extract(md) error = %v", err)
	}
	if got != "# Title\n" {
		t.Errorf("Extract(md) = %q", got)
	}
}
