package main

import (
	"io"

	"github.com/fatih/color"
)

// colorNotifier prints user-facing notifications as colored lines.
type colorNotifier struct {
	out   io.Writer
	ok    *color.Color
	bad   *color.Color
	plain *color.Color
}

func newColorNotifier(out io.Writer) *colorNotifier {
	return &colorNotifier{
		out:   out,
		ok:    color.New(color.FgGreen),
		bad:   color.New(color.FgRed),
		plain: color.New(color.FgCyan),
	}
}

func (n *colorNotifier) Success(msg string) { _, _ = n.ok.Fprintln(n.out, "✓ "+msg) }
func (n *colorNotifier) Error(msg string)   { _, _ = n.bad.Fprintln(n.out, "✗ "+msg) }
func (n *colorNotifier) Info(msg string)    { _, _ = n.plain.Fprintln(n.out, "• "+msg) }
