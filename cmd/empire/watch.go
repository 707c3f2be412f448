package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	cl "rentalempire/internal/cli"
	"rentalempire/internal/game"
	"rentalempire/internal/notify"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	frameEvery   = 100 * time.Millisecond
	refreshEvery = time.Second
	feedSize     = 6
)

// gameSource is what the live view reads from: a remote server or an
// engine running in this process.
type gameSource interface {
	Ledger(ctx context.Context) (game.LedgerView, error)
	Notifications(ctx context.Context, limit int) ([]notify.Notification, error)
	Save(ctx context.Context) error
}

type remoteSource struct {
	client *cl.Client
}

func (r remoteSource) Ledger(ctx context.Context) (game.LedgerView, error) {
	return r.client.Ledger(ctx)
}

func (r remoteSource) Notifications(ctx context.Context, limit int) ([]notify.Notification, error) {
	return r.client.Notifications(ctx, limit)
}

func (r remoteSource) Save(ctx context.Context) error {
	_, err := r.client.Checkpoint(ctx)
	return err
}

type localSource struct {
	engine *game.Engine
	inbox  *notify.Inbox
}

func (l localSource) Ledger(context.Context) (game.LedgerView, error) {
	return l.engine.LedgerView(), nil
}

func (l localSource) Notifications(_ context.Context, limit int) ([]notify.Notification, error) {
	return l.inbox.List(limit), nil
}

func (l localSource) Save(ctx context.Context) error {
	return l.engine.Checkpoint(ctx)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	balanceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type frameMsg time.Time

type refreshMsg struct{}

type snapshotMsg struct {
	ledger game.LedgerView
	notes  []notify.Notification
	err    error
}

type savedMsg struct {
	err error
}

type watchModel struct {
	src     gameSource
	spinner spinner.Model
	ledger  game.LedgerView
	notes   []notify.Notification
	loaded  bool
	err     error
	status  string
	now     time.Time
}

func newWatchModel(src gameSource, now time.Time) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return watchModel{src: src, spinner: sp, now: now}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchCmd(m.src), frameCmd())
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameEvery, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func fetchCmd(src gameSource) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ledger, err := src.Ledger(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		notes, err := src.Notifications(ctx, feedSize)
		return snapshotMsg{ledger: ledger, notes: notes, err: err}
	}
}

func saveCmd(src gameSource) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return savedMsg{err: src.Save(ctx)}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, fetchCmd(m.src)
		case "s":
			m.status = "saving..."
			return m, saveCmd(m.src)
		}
	case frameMsg:
		m.now = time.Time(msg)
		return m, frameCmd()
	case refreshMsg:
		return m, fetchCmd(m.src)
	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.loaded = true
			m.ledger = msg.ledger
			m.notes = msg.notes
		}
		return m, tea.Tick(refreshEvery, func(time.Time) tea.Msg { return refreshMsg{} })
	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved"
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// displayBalance interpolates between server ticks while the game runs.
func (m watchModel) displayBalance() float64 {
	if !m.ledger.Running {
		return m.ledger.Balance
	}
	return game.DisplayBalance(m.ledger.LastTickAt, m.ledger.Balance, m.ledger.RevenuePerInterval, m.now)
}

func (m watchModel) View() string {
	if !m.loaded {
		line := m.spinner.View() + " connecting to your rental yard..."
		if m.err != nil {
			line += "\n" + errStyle.Render(m.err.Error())
		}
		return line + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("RENTAL EMPIRE  level %d", m.ledger.TierIndex)))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Balance") + balanceStyle.Render("$"+money(m.displayBalance())) + "\n")
	b.WriteString(labelStyle.Render("Revenue") + "$" + money(m.ledger.RevenuePerInterval) + "/s\n")
	b.WriteString(labelStyle.Render("Lifetime") + "$" + money(m.ledger.LifetimeEarned) + "\n")
	if m.ledger.NextTierThreshold > 0 {
		b.WriteString(labelStyle.Render("Next level") + "$" + money(m.ledger.NextTierThreshold) + "/s\n")
	}
	if !m.ledger.Running {
		b.WriteString(errStyle.Render("game paused") + "\n")
	}

	var feed strings.Builder
	if len(m.notes) == 0 {
		feed.WriteString(helpStyle.Render("no notifications yet"))
	}
	for i, n := range m.notes {
		if i > 0 {
			feed.WriteString("\n")
		}
		feed.WriteString(helpStyle.Render(n.CreatedAt.Local().Format(time.TimeOnly)) + " " + n.Message)
	}
	b.WriteString("\n" + boxStyle.Render(feed.String()) + "\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	if m.status != "" {
		b.WriteString(helpStyle.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render("r refresh  s save  q quit") + "\n")
	return b.String()
}

func runWatch(ctx context.Context, src gameSource) error {
	if !stdoutIsTerminal() {
		return fmt.Errorf("watch needs an interactive terminal")
	}
	_, err := tea.NewProgram(newWatchModel(src, time.Now()), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

func newWatchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of your balance and notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), remoteSource{client: newClient(apiBase)})
		},
	}
}
