// Package viewer shows a rendered chart and blocks until the user dismisses it.
package viewer

import (
	"context"
	"io"
	"os"

	"github.com/jgoulah/powerchart/internal/config"
)

// Viewer displays an image file. Show blocks until the user is done with it.
type Viewer interface {
	Show(ctx context.Context, path string) error
}

// Nop returns immediately without showing anything
type Nop struct{}

// Show implements Viewer
func (Nop) Show(ctx context.Context, path string) error {
	return ctx.Err()
}

// New returns the viewer for a display mode. in and out are used by the
// system viewer to wait for the user; nil means stdin/stdout.
func New(mode string, in io.Reader, out io.Writer) Viewer {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	switch mode {
	case config.DisplayNone:
		return Nop{}
	case config.DisplaySystem:
		return &System{In: in, Out: out}
	default:
		return &Chrome{Fallback: &System{In: in, Out: out}, Out: out}
	}
}
