package counter

import (
	"fmt"
	"io"
	"sync"

	"github.com/bnema/solana-counter/internal/ports"
	tea "github.com/charmbracelet/bubbletea"
)

// Sender is the part of *tea.Program the notifier needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramNotifier forwards notifications to a running watch program as toasts.
type ProgramNotifier struct {
	program Sender
}

var _ ports.Notifier = (*ProgramNotifier)(nil)

func NewProgramNotifier(program Sender) *ProgramNotifier {
	return &ProgramNotifier{program: program}
}

func (n *ProgramNotifier) Notify(notification ports.Notification) {
	n.program.Send(NoticeMsg{Notification: notification})
}

// WriterNotifier prints each notification as a styled line.
type WriterNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
}

var _ ports.Notifier = (*WriterNotifier)(nil)

func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out, styles: newStyles()}
}

func (n *WriterNotifier) Notify(notification ports.Notification) {
	style := n.styles.success
	if notification.Level == ports.NotificationError {
		style = n.styles.failure
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.out, style.Render(notification.Message))
}
