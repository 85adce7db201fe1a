package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the chat greeting.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	title := out.String(" BankTalk ").Bold().Foreground(out.Color("#f8fafc")).Background(out.Color("#4f46e5"))
	ver := out.String(" v" + version).Foreground(out.Color("#a78bfa"))
	hint := out.String("Ask about EMIs, home loan eligibility or our products. Type 'reset' to start over, 'exit' to leave.").Faint()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s\n", title, ver)
	fmt.Fprintln(w, hint)
	fmt.Fprintln(w)
}

// Prompt returns the styled input prompt.
func Prompt(w io.Writer) string {
	out := termenv.NewOutput(w)
	return out.String("you> ").Foreground(out.Color("#818cf8")).String()
}
