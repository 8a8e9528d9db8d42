package viewer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
)

// System opens the image with the OS default handler and waits for Enter
type System struct {
	In   io.Reader
	Out  io.Writer
	Open func(path string) error // Defaults to OpenFile
}

// Show implements Viewer
func (s *System) Show(ctx context.Context, path string) error {
	open := s.Open
	if open == nil {
		open = OpenFile
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	if err := open(abs); err != nil {
		return fmt.Errorf("opening %s: %w", abs, err)
	}

	fmt.Fprintf(s.Out, "Showing %s, press Enter to continue...", abs)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(s.In).ReadString('\n')
		done <- err
	}()

	select {
	case err := <-done:
		fmt.Fprintln(s.Out)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("waiting for input: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenFile opens a file with the platform default application
func OpenFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	return cmd.Start()
}
