// Package tui renders the assistant's terminal output: glamour for the
// model's markdown replies, lipgloss for the chrome around them.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour. On renderer
// errors the raw text comes back unchanged.
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// Banner 渲染启动横幅 / Banner renders the startup banner.
func Banner(theme Theme, mode, model string) string {
	lines := []string{
		"Personal Assistant",
		fmt.Sprintf("mode: %s  model: %s", mode, model),
	}
	return theme.BannerStyle.Render(strings.Join(lines, "\n"))
}

// ErrorLine styles an error message for the terminal.
func ErrorLine(theme Theme, msg string) string {
	return theme.ErrorStyle.Render(msg)
}

// InfoLine styles an informational message for the terminal.
func InfoLine(theme Theme, msg string) string {
	return theme.MutedStyle.Render(msg)
}

// StatusLines 渲染 /status 输出 / StatusLines renders the /status view.
func StatusLines(theme Theme, pairs [][2]string) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(theme.SuccessStyle.Render(p[0]+":") + " " + p[1] + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
