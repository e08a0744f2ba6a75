// Package host implements the event loop and PTY host (EL) of
// spec.md §4.4: it spawns the child shell on a PTY, multiplexes stdin
// and the PTY master through a bounded epoll wait, feeds bytes to a
// terminal.Terminal, and repaints a framebuffer surface through a
// glyph.Table at a bounded frame rate.
//
// Grounded on the teacher's pkg/session/pty.go (PTY spawn via
// creack/pty, raw stdin via golang.org/x/term) and
// pkg/session/eventloop_linux.go (the epoll wrapper). The teacher
// generalizes both into a reusable EventLoop interface and a
// multi-session manager serving a web control plane; this package
// collapses that down to the single cooperative, single-process loop
// spec.md §5 describes — one Host, one child, one surface, no
// goroutines, no locks.
package host

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/fbterm/fbterm/pkg/config"
	"github.com/fbterm/fbterm/pkg/diag"
	"github.com/fbterm/fbterm/pkg/fb"
	"github.com/fbterm/fbterm/pkg/ferr"
	"github.com/fbterm/fbterm/pkg/glyph"
	"github.com/fbterm/fbterm/pkg/terminal"
)

const quitByte = 0x11 // Ctrl+Q

// indexOfQuit returns the offset of the first Ctrl+Q byte in b, or -1.
func indexOfQuit(b []byte) int {
	for i, c := range b {
		if c == quitByte {
			return i
		}
	}
	return -1
}

// Host owns every resource the event loop touches: the PTY master, the
// child process, the terminal model, the framebuffer surface, and the
// font table. Exactly one Host runs in a program's lifetime.
type Host struct {
	cfg config.TerminalConfig

	ptmx *os.File
	cmd  *exec.Cmd

	term    *terminal.Terminal
	surface *fb.Surface
	fonts   *glyph.Table
	metrics glyph.CellMetrics

	oldStdinState *term.State
	epfd          int
	sigchld       chan os.Signal

	dirty   bool
	running bool
}

// New spawns the child shell on a fresh PTY sized to the terminal's
// grid, and wires it to term/surface/fonts. Fork failure is fatal, per
// spec.md §4.4/§7.
func New(cfg config.TerminalConfig, t *terminal.Terminal, surface *fb.Surface, fonts *glyph.Table, metrics glyph.CellMetrics) (*Host, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(t.Grid.Rows),
		Cols: uint16(t.Grid.Cols),
	})
	if err != nil {
		return nil, ferr.Wrap(ferr.ErrFatalFork, "start shell on pty", err)
	}

	if err := unix.SetNonblock(int(ptmx.Fd()), true); err != nil {
		ptmx.Close()
		return nil, ferr.Wrap(ferr.ErrFatalFork, "set pty master non-blocking", err)
	}

	h := &Host{
		cfg:     cfg,
		ptmx:    ptmx,
		cmd:     cmd,
		term:    t,
		surface: surface,
		fonts:   fonts,
		metrics: metrics,
		epfd:    -1,
	}
	return h, nil
}

// PTYMaster returns the PTY master file, so callers can wire it as a
// terminal.Terminal's reply writer after construction.
func (h *Host) PTYMaster() *os.File {
	return h.ptmx
}

// Run places stdin in raw mode, starts the epoll loop, and blocks until
// orderly shutdown (Ctrl+Q, PTY EOF, or child exit). It always restores
// terminal state before returning, even on error.
func (h *Host) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ferr.New(ferr.ErrFatalArgs, "stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return ferr.Wrap(ferr.ErrFatalArgs, "set stdin raw mode", err)
	}
	h.oldStdinState = oldState
	defer h.restoreStdin()

	if err := unix.SetNonblock(int(os.Stdin.Fd()), true); err != nil {
		return ferr.Wrap(ferr.ErrFatalArgs, "set stdin non-blocking", err)
	}

	if err := h.setupEpoll(); err != nil {
		return ferr.Wrap(ferr.ErrFatalFork, "create epoll instance", err)
	}
	defer unix.Close(h.epfd)

	h.sigchld = make(chan os.Signal, 1)
	signal.Notify(h.sigchld, syscall.SIGCHLD)
	defer signal.Stop(h.sigchld)

	h.running = true
	h.dirty = true // paint the initial blank grid before any PTY output arrives

	for h.running {
		if err := h.tick(); err != nil {
			return err
		}
	}

	h.teardown()
	return nil
}

// tick runs exactly one suspension point (spec.md §5): a bounded epoll
// wait, then drains whichever fds are ready, then repaints if dirty.
func (h *Host) tick() error {
	select {
	case <-h.sigchld:
		diag.Debugf("host: %v", ferr.New(ferr.ErrShutdownChild, "sigchld received"))
		h.running = false
		return nil
	default:
	}

	events := make([]unix.EpollEvent, 4)
	n, err := unix.EpollWait(h.epfd, events, h.cfg.FrameIntervalMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return ferr.Wrap(ferr.ErrFatalFork, "epoll wait", err)
	}

	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		switch fd {
		case int(os.Stdin.Fd()):
			if h.drainStdin() {
				return nil
			}
		case int(h.ptmx.Fd()):
			h.drainPTY()
		}
	}

	if h.dirty {
		h.repaint()
		h.dirty = false
	}
	return nil
}

// drainStdin forwards bytes verbatim to the PTY master and reports
// whether Ctrl+Q was seen (spec.md §4.4).
func (h *Host) drainStdin() (quit bool) {
	buf := make([]byte, 4096)
	for {
		n, err := unix.Read(int(os.Stdin.Fd()), buf)
		if n > 0 {
			if idx := indexOfQuit(buf[:n]); idx >= 0 {
				diag.Debugf("host: %v", ferr.New(ferr.ErrShutdownQuit, "ctrl+q received"))
				h.running = false
				return true
			}
			if _, werr := h.ptmx.Write(buf[:n]); werr != nil {
				diag.Debugf("host: write to pty master failed: %v", werr)
			}
		}
		if err != nil || n == 0 {
			return false
		}
	}
}

// drainPTY reads available PTY master output, feeds every byte to the
// terminal, and marks the frame dirty (spec.md §4.4). EOF on the master
// ends the loop.
func (h *Host) drainPTY() {
	buf := make([]byte, 4096)
	for {
		n, err := unix.Read(int(h.ptmx.Fd()), buf)
		if n > 0 {
			for _, b := range buf[:n] {
				h.term.Feed(b)
			}
			h.dirty = true
		}
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return
			}
			diag.Debugf("host: %v", ferr.Wrap(ferr.ErrShutdownEOF, "pty master read error", err))
			h.running = false
			return
		}
		if n == 0 {
			diag.Debugf("host: %v", ferr.New(ferr.ErrShutdownEOF, "eof on pty master"))
			h.running = false
			return
		}
	}
}

// repaint performs a full-surface redraw of every grid cell; spec.md
// §4.4 does not require dirty-rect tracking.
func (h *Host) repaint() {
	cellW, cellH := h.metrics.CellW, h.metrics.CellH
	for y := 0; y < h.term.Grid.Rows; y++ {
		for x := 0; x < h.term.Grid.Cols; x++ {
			c := h.term.Grid.At(x, y)
			h.fonts.RenderCell(h.surface, x*cellW, y*cellH, c.Rune, c.Fg, c.Bg, h.metrics)
		}
	}
}

func (h *Host) restoreStdin() {
	if h.oldStdinState != nil {
		if err := term.Restore(int(os.Stdin.Fd()), h.oldStdinState); err != nil {
			diag.Debugf("host: failed to restore stdin termios: %v", err)
		}
	}
}

// teardown implements spec.md §4.4's/§7's clean-shutdown sequence:
// restore termios (done by the caller's defer), clear the framebuffer,
// send SIGHUP to the child, and close the PTY master. The surface is
// closed by cmd/fbterm's deferred Close; the font table is not released
// here.
func (h *Host) teardown() {
	h.surface.Clear(0x000000)
	if h.cmd.Process != nil {
		h.cmd.Process.Signal(syscall.SIGHUP)
	}
	h.ptmx.Close()
}
