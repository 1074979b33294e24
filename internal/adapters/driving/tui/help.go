package tui

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// renderHelp lists the bindings of every view and the accepted file types.
func renderHelp(s *styles.Styles, km *keymap.KeyMap) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Help"))
	b.WriteString("\n")

	for _, section := range km.Sections() {
		b.WriteString("\n" + s.Subtitle.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s  %s\n", h.Key, h.Desc)
		}
	}

	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Ingest accepts " + supportedFiles() + "."))
	b.WriteString("\n\n")
	b.WriteString(s.Help.Render("[esc] back to menu"))
	return b.String()
}

func supportedFiles() string {
	exts := domain.SupportedExtensions()
	for i, e := range exts {
		exts[i] = "." + e
	}
	return strings.Join(exts, ", ")
}
