package render

import (
	"strings"
	"testing"
)

func TestHTML_Headings(t *testing.T) {
	r := New()
	out, err := r.HTML([]byte("# Deep Learning\n\nSome *text*.\n"))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1 id=\"deep-learning\">Deep Learning</h1>") {
		t.Errorf("missing heading with auto id: %s", html)
	}
	if !strings.Contains(html, "<em>text</em>") {
		t.Errorf("missing emphasis: %s", html)
	}
}

func TestHTML_FencedCodePassthrough(t *testing.T) {
	r := New()
	out, err := r.HTML([]byte("```rust\nlet x = vec![1];\n```\n"))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `<code class="language-rust">`) {
		t.Errorf("fenced block lost its language class: %s", html)
	}
	if !strings.Contains(html, "let x = vec![1];") {
		t.Errorf("code content mangled: %s", html)
	}
}

func TestHTML_GFMTable(t *testing.T) {
	r := New()
	out, err := r.HTML([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Errorf("GFM table not rendered: %s", out)
	}
}

func TestHTML_RelativeImageKept(t *testing.T) {
	r := New()
	out, err := r.HTML([]byte("![diagram](attachments/net.png)\n"))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(out), `src="attachments/net.png"`) {
		t.Errorf("relative image path rewritten: %s", out)
	}
}
