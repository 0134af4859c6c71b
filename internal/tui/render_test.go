package tui

import (
	"strings"
	"testing"
)

func TestRenderMarkdown_Basic(t *testing.T) {
	input := "# Your day\n\nYou have **two** meetings."
	result := RenderMarkdown(input, 80)
	if result == "" {
		t.Fatal("RenderMarkdown returned empty")
	}
	// Glamour 应该渲染了标题 / Glamour should have rendered the heading
	if !strings.Contains(result, "Your day") {
		t.Fatalf("result should contain 'Your day': %q", result)
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	if RenderMarkdown("", 80) != "" {
		t.Fatal("empty input should return empty")
	}
	if RenderMarkdown("  ", 80) != "" {
		t.Fatal("whitespace input should return empty")
	}
}

func TestRenderMarkdown_List(t *testing.T) {
	input := "- [1] [ ] 🔴 Buy groceries\n- [2] [✓] 🟢 Water plants"
	result := RenderMarkdown(input, 80)
	if !strings.Contains(result, "Buy groceries") {
		t.Fatalf("list item lost: %q", result)
	}
}

func TestBanner(t *testing.T) {
	out := Banner(DarkTheme(), "advanced", "gpt-4o-mini")
	if !strings.Contains(out, "Personal Assistant") {
		t.Fatalf("banner missing title: %q", out)
	}
	if !strings.Contains(out, "advanced") || !strings.Contains(out, "gpt-4o-mini") {
		t.Fatalf("banner missing mode/model: %q", out)
	}
}

func TestStatusLines(t *testing.T) {
	out := StatusLines(DarkTheme(), [][2]string{
		{"mode", "integrated"},
		{"calendar", "connected"},
	})
	if !strings.Contains(out, "integrated") || !strings.Contains(out, "connected") {
		t.Fatalf("status output = %q", out)
	}
	if len(strings.Split(out, "\n")) != 2 {
		t.Fatalf("want 2 lines, got %q", out)
	}
}
