package counter

import (
	"errors"
	"time"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultNoticeTTL = 4 * time.Second

// CounterMsg carries a fresh counter value into a running watch program.
type CounterMsg struct {
	Counter domain.CounterAccount
}

// BalanceMsg updates the fee balance of the selected account.
type BalanceMsg struct {
	Lamports uint64
}

// NoticeMsg shows a toast for a while.
type NoticeMsg struct {
	Notification ports.Notification
}

// WatchFailedMsg reports that the counter subscription could not start. The
// screen shows the error and the program quits.
type WatchFailedMsg struct {
	Err error
}

type submitDoneMsg struct {
	err error
}

type noticeExpiredMsg struct {
	id int
}

// SubmitFunc sends one counter instruction. It runs outside the UI loop.
type SubmitFunc func(method domain.CounterMethod) error

type notice struct {
	id           int
	notification ports.Notification
}

// WatchModel is the interactive counter screen. Increment and decrement keys
// are ignored while a submission is running.
type WatchModel struct {
	snapshot   Snapshot
	styles     styles
	submit     SubmitFunc
	spinner    spinner.Model
	submitting bool
	watchErr   error
	notices    []notice
	nextNotice int
	noticeTTL  time.Duration
}

func NewWatchModel(snapshot Snapshot, submit SubmitFunc) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return WatchModel{
		snapshot:  snapshot,
		styles:    newStyles(),
		submit:    submit,
		spinner:   sp,
		noticeTTL: defaultNoticeTTL,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case CounterMsg:
		counter := msg.Counter
		m.snapshot.Counter = &counter
		return m, nil
	case BalanceMsg:
		lamports := msg.Lamports
		m.snapshot.Balance = &lamports
		return m, nil
	case NoticeMsg:
		return m.addNotice(msg.Notification)
	case WatchFailedMsg:
		m.watchErr = msg.Err
		return m, tea.Quit
	case noticeExpiredMsg:
		m.notices = removeNotice(m.notices, msg.id)
		return m, nil
	case submitDoneMsg:
		m.submitting = false
		return m, nil
	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "+", "=", "up", "k":
		return m.startSubmit(domain.MethodIncrement)
	case "-", "_", "down", "j":
		return m.startSubmit(domain.MethodDecrement)
	default:
		return m, nil
	}
}

func (m WatchModel) startSubmit(method domain.CounterMethod) (tea.Model, tea.Cmd) {
	if m.submitting || m.submit == nil {
		return m, nil
	}

	m.submitting = true
	submit := m.submit
	run := func() tea.Msg {
		err := submit(method)
		if errors.Is(err, domain.ErrSubmissionInProgress) || errors.Is(err, domain.ErrProgramNotReady) {
			err = nil
		}
		return submitDoneMsg{err: err}
	}

	return m, tea.Batch(run, m.spinner.Tick)
}

func (m WatchModel) addNotice(n ports.Notification) (tea.Model, tea.Cmd) {
	m.nextNotice++
	id := m.nextNotice
	m.notices = append(m.notices, notice{id: id, notification: n})

	return m, tea.Tick(m.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func removeNotice(notices []notice, id int) []notice {
	kept := notices[:0:0]
	for _, n := range notices {
		if n.id != id {
			kept = append(kept, n)
		}
	}
	return kept
}

// Submitting reports whether a submission started from this screen is running.
func (m WatchModel) Submitting() bool {
	return m.submitting
}

func (m WatchModel) View() string {
	snap := m.snapshot
	snap.Notices = make([]ports.Notification, 0, len(m.notices))
	for _, n := range m.notices {
		snap.Notices = append(snap.Notices, n.notification)
	}

	lines := []string{renderView(snap, m.styles)}
	if m.watchErr != nil {
		lines = append(lines, m.styles.section.Render(m.styles.failure.Render("Error: "+m.watchErr.Error())))
	}
	if m.submitting {
		lines = append(lines, m.styles.section.Render(m.spinner.View()+" Sending transaction..."))
	}
	lines = append(lines, m.styles.section.Render(m.styles.help.Render("+ increment  - decrement  q quit")))

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}
