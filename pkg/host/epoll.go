package host

import (
	"os"

	"golang.org/x/sys/unix"
)

// setupEpoll registers stdin and the PTY master for readability,
// level-triggered: spec.md §4.4 wants "PTY master is drained in a loop
// on each wake until it would block", which level-triggered epoll gives
// for free (it keeps reporting readiness until the socket/pipe is
// actually empty), unlike the teacher's edge-triggered eventloop_linux.go
// which requires that drain-to-EAGAIN discipline to avoid missed wakeups
// entirely on its own.
func (h *Host) setupEpoll() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	h.epfd = epfd

	if err := h.addFD(int(os.Stdin.Fd())); err != nil {
		return err
	}
	if err := h.addFD(int(h.ptmx.Fd())); err != nil {
		return err
	}
	return nil
}

func (h *Host) addFD(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return unix.EpollCtl(h.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}
