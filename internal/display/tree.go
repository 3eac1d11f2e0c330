// Package display renders a navigation list as an indented text tree.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rescale/navlist/internal/navigation"
)

// Options controls rendering.
type Options struct {
	// Styled enables lipgloss colors. Use StyledFor to decide from the output.
	Styled bool

	// ShowKeys appends the identity key of each entry.
	ShowKeys bool

	// ShowRoots appends the resolved display root of volumes.
	ShowRoots bool
}

// StyledFor reports whether w is a terminal that should get colors.
func StyledFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	groupStyle   = lipgloss.NewStyle().Bold(true)
	fakeStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
	keyStyle     = lipgloss.NewStyle().Faint(true)
)

type renderer struct {
	opts Options
	b    strings.Builder
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.opts.Styled {
		return text
	}
	return s.Render(text)
}

// Tree renders items. A section header is written whenever the section
// changes between consecutive top-level entries.
func Tree(items []navigation.Item, opts Options) string {
	r := &renderer{opts: opts}
	var section navigation.Section
	for i, it := range items {
		if i == 0 || it.Section() != section {
			section = it.Section()
			r.b.WriteString(r.style(sectionStyle, "["+string(section)+"]"))
			r.b.WriteByte('\n')
		}
		r.item(it, 1)
	}
	return r.b.String()
}

func (r *renderer) item(it navigation.Item, depth int) {
	r.b.WriteString(strings.Repeat("  ", depth))

	switch it := it.(type) {
	case *navigation.VirtualGroup:
		r.b.WriteString(r.style(groupStyle, it.Label()))
		if backing, ok := it.Backing(); ok {
			fmt.Fprintf(&r.b, " (%s)", backing.Label())
		}
	case *navigation.FakeRoot:
		r.b.WriteString(r.style(fakeStyle, it.Label()))
	case *navigation.Volume:
		r.b.WriteString(it.Label())
		if r.opts.ShowRoots {
			if root, ok := it.DisplayRoot(); ok {
				fmt.Fprintf(&r.b, " -> %s (%s free)", root.Path, FormatBytes(root.AvailableBytes))
			}
		}
	case *navigation.Shortcut:
		r.b.WriteString(it.Label())
	}

	if r.opts.ShowKeys {
		r.b.WriteString("  ")
		r.b.WriteString(r.style(keyStyle, string(it.Key())))
	}
	r.b.WriteByte('\n')

	if g, ok := it.(*navigation.VirtualGroup); ok {
		for _, child := range g.Children() {
			r.item(child, depth+1)
		}
	}
}

// FormatBytes formats a byte count using 1024-based units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
