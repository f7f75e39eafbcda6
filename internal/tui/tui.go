package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"voting-monitor/internal/models"
	"voting-monitor/internal/reconcile"
	"voting-monitor/internal/roles"
)

func padToWidth(s string, width int) string {
	current := runewidth.StringWidth(s)
	if current >= width {
		return s
	}
	return s + strings.Repeat(" ", width-current)
}

// truncate cuts s to width display cells, marking the cut with "...".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

func separatorLine(width int) string {
	if width < 2 {
		return strings.Repeat("─", width)
	}
	return "├" + strings.Repeat("─", width-2) + "┤"
}

func formatInfoLine(text string, width int) string {
	if width < 2 {
		return padToWidth(text, width)
	}
	return "│" + padToWidth(truncate(text, width-2), width-2) + "│"
}

func shortAddress(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	return hex[:6] + "..." + hex[len(hex)-4:]
}

const minWidth = 40

// Controller is the action surface the UI drives.
type Controller interface {
	RegisterVoter(ctx context.Context, addr string) error
	ChangePhase(ctx context.Context, transition string) error
	SubmitProposal(ctx context.Context, text string) error
	CastVote(ctx context.Context, proposalID *uint64) error
	Refresh(ctx context.Context) error
}

// UpdateMsg carries a new view model from the controller
type UpdateMsg struct {
	View models.ViewModel
}

// PhaseMsg carries the phase watcher's own read
type PhaseMsg struct {
	Signal uint64
	Phase  models.Phase
}

// ActionDoneMsg reports the outcome of a prompt command
type ActionDoneMsg struct {
	Command string
	Err     error
}

// Model holds the TUI state
type Model struct {
	ctx     context.Context
	ctrl    Controller
	watcher *roles.PhaseWatcher

	view     models.ViewModel
	hasView  bool
	watched  models.Phase
	prompt   bool
	input    string
	message  string
	inFlight int

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, ctrl Controller, watcher *roles.PhaseWatcher) Model {
	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		watcher: watcher,
		watched: models.PhaseUnknown,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case UpdateMsg:
		first := !m.hasView
		prev := m.view.RefreshCounter
		m.view = msg.View
		m.hasView = true
		if first || msg.View.RefreshCounter != prev {
			return m, m.observePhase(msg.View.RefreshCounter)
		}
		return m, nil

	case PhaseMsg:
		if msg.Signal == m.view.RefreshCounter {
			m.watched = msg.Phase
		}
		return m, nil

	case ActionDoneMsg:
		m.inFlight--
		if msg.Err != nil {
			m.message = fmt.Sprintf("%s failed: %s", msg.Command, reconcile.FailureMessage(msg.Err))
		} else {
			m.message = msg.Command + " done"
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompt {
			return m.updatePrompt(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case ":":
			m.prompt = true
			m.input = ""
			return m, nil
		case "r":
			return m.dispatch("refresh")
		}
	}

	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.prompt = false
		m.input = ""
		return m, nil
	case tea.KeyEnter:
		line := m.input
		m.prompt = false
		m.input = ""
		return m.dispatch(line)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m Model) dispatch(line string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	cmd, err := ParseCommand(m.ctx, m.ctrl, line)
	if err != nil {
		m.message = err.Error()
		return m, nil
	}
	m.inFlight++
	m.message = strings.Fields(line)[0] + "..."
	return m, cmd
}

func (m Model) observePhase(signal uint64) tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ctx, w := m.ctx, m.watcher
	return func() tea.Msg {
		return PhaseMsg{Signal: signal, Phase: w.Observe(ctx, signal)}
	}
}

// ParseCommand turns a prompt line into a command running the matching controller action.
//
//	voter <address>
//	phase <transition>
//	propose <description>
//	vote [proposal id]
//	refresh
func ParseCommand(ctx context.Context, ctrl Controller, line string) (tea.Cmd, error) {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var run func() error
	switch name {
	case "voter":
		run = func() error { return ctrl.RegisterVoter(ctx, arg) }
	case "phase":
		run = func() error { return ctrl.ChangePhase(ctx, arg) }
	case "propose":
		run = func() error { return ctrl.SubmitProposal(ctx, arg) }
	case "vote":
		var id *uint64
		if arg != "" {
			n, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("vote: invalid proposal id %q", arg)
			}
			id = &n
		}
		run = func() error { return ctrl.CastVote(ctx, id) }
	case "refresh":
		run = func() error { return ctrl.Refresh(ctx) }
	default:
		return nil, fmt.Errorf("unknown command %q (voter, phase, propose, vote, refresh)", name)
	}

	return func() tea.Msg {
		return ActionDoneMsg{Command: name, Err: run()}
	}, nil
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || !m.hasView {
		return "Loading..."
	}
	if m.width < minWidth {
		return "Terminal too narrow"
	}

	sections := []string{m.renderHeader()}
	if m.view.Roles.IsVoter {
		sections = append(sections, m.renderProposals())
	}
	if m.view.Winner != nil && m.view.Roles.Phase == models.PhaseVotesTallied {
		sections = append(sections, m.renderWinner())
	}
	sections = append(sections, m.renderTimeline(), m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the top header section
func (m Model) renderHeader() string {
	v := m.view
	colWidth := (m.width - 3) / 2
	rightColWidth := m.width - colWidth - 3

	network := fmt.Sprintf("network: %d", v.NetworkID)
	if !v.Supported {
		network += " (unsupported)"
	}
	account := "account: not connected"
	if v.Connected {
		account = "account: " + v.Account.Hex()
	}
	var roleNames []string
	if v.Roles.IsAdmin {
		roleNames = append(roleNames, "admin")
	}
	if v.Roles.IsVoter {
		roleNames = append(roleNames, "voter")
	}
	if len(roleNames) == 0 {
		roleNames = append(roleNames, "visitor")
	}

	leftLines := []string{
		network,
		account,
		"roles: " + strings.Join(roleNames, ", "),
	}
	rightLines := []string{
		"phase: " + v.Roles.Phase.String(),
		"status: " + m.watched.String(),
		fmt.Sprintf("state: %s  refreshes: %d", v.State, v.RefreshCounter),
	}

	rows := make([]string, 0, len(leftLines))
	for i := range leftLines {
		left := padToWidth(truncate(leftLines[i], colWidth-2), colWidth-2)
		right := padToWidth(truncate(rightLines[i], rightColWidth-2), rightColWidth-2)
		rows = append(rows, fmt.Sprintf("│ %s │ %s │", left, right))
	}

	topBorder := fmt.Sprintf("┌%s┬%s┐", strings.Repeat("─", colWidth), strings.Repeat("─", rightColWidth))
	bottom := fmt.Sprintf("├%s┴%s┤", strings.Repeat("─", colWidth), strings.Repeat("─", rightColWidth))
	return topBorder + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}

// renderProposals renders the catalog table
func (m Model) renderProposals() string {
	lines := []string{formatInfoLine("PROPOSALS", m.width)}
	if len(m.view.Proposals) == 0 {
		lines = append(lines, formatInfoLine("  no proposals", m.width))
	}
	for _, p := range m.view.Proposals {
		lines = append(lines, formatInfoLine(fmt.Sprintf("  %3d  %5d votes  %s", p.ID, p.VoteCount, p.Description), m.width))
	}
	return strings.Join(lines, "\n") + "\n" + separatorLine(m.width)
}

func (m Model) renderWinner() string {
	w := m.view.Winner
	return formatInfoLine(fmt.Sprintf("WINNER  #%d %s", w.ProposalID, w.Description), m.width) +
		"\n" + separatorLine(m.width)
}

// renderTimeline renders as many events as fit above the footer
func (m Model) renderTimeline() string {
	lines := []string{formatInfoLine("EVENTS", m.width)}
	if len(m.view.Timeline) == 0 {
		lines = append(lines, formatInfoLine("  no events", m.width))
		return strings.Join(lines, "\n") + "\n" + separatorLine(m.width)
	}

	used := 5 // header
	if m.view.Roles.IsVoter {
		used += len(m.view.Proposals) + 2
	}
	if m.view.Winner != nil {
		used += 2
	}
	maxRows := m.height - used - 6
	if maxRows < 1 {
		maxRows = 1
	}

	for i, r := range m.view.Timeline {
		if i == maxRows {
			lines = append(lines, formatInfoLine(fmt.Sprintf("  ... %d more", len(m.view.Timeline)-i), m.width))
			break
		}
		lines = append(lines, formatInfoLine("  "+FormatRecord(r), m.width))
	}
	return strings.Join(lines, "\n") + "\n" + separatorLine(m.width)
}

// FormatRecord renders one timeline record on a single line.
func FormatRecord(r models.TimelineRecord) string {
	var detail string
	switch r.Kind {
	case models.KindVoterRegistered:
		detail = "voter " + r.Address.Hex()
	case models.KindProposalRegistered:
		detail = fmt.Sprintf("proposal %d", r.ProposalID)
	case models.KindPhaseChanged:
		detail = fmt.Sprintf("%s -> %s", r.PreviousPhase, r.NewPhase)
	case models.KindVoteCast:
		detail = fmt.Sprintf("%s voted for %d", shortAddress(r.Address.Hex()), r.ProposalID)
	}
	return fmt.Sprintf("#%-9d %-20s %s", r.BlockNumber, r.Kind, detail)
}

var actionOrder = []models.Action{
	models.ActionRegisterVoter,
	models.ActionChangePhase,
	models.ActionSubmitProposal,
	models.ActionCastVote,
}

func (m Model) renderFooter() string {
	var statuses []string
	for _, a := range actionOrder {
		s := m.view.Actions[a]
		switch {
		case s.Pending:
			statuses = append(statuses, string(a)+": pending")
		case s.Error != "":
			statuses = append(statuses, string(a)+": "+s.Error)
		}
	}
	lines := []string{}
	if len(statuses) > 0 {
		lines = append(lines, formatInfoLine(strings.Join(statuses, " | "), m.width))
	}
	if m.message != "" {
		msg := m.message
		if m.inFlight > 0 {
			msg = fmt.Sprintf("%s (%d running)", msg, m.inFlight)
		}
		lines = append(lines, formatInfoLine(msg, m.width))
	}
	if m.prompt {
		lines = append(lines, formatInfoLine(":"+m.input+"_", m.width))
	} else {
		lines = append(lines, formatInfoLine(": command  r refresh  q quit", m.width))
	}
	bottomBorder := "└" + strings.Repeat("─", max(m.width-2, 0)) + "┘"
	return strings.Join(lines, "\n") + "\n" + bottomBorder
}

// Run starts the TUI program. It quits when updates is closed.
func Run(ctx context.Context, ctrl Controller, watcher *roles.PhaseWatcher, updates <-chan models.ViewModel) error {
	m := NewModel(ctx, ctrl, watcher)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Start goroutine to receive updates
	go func() {
		for v := range updates {
			p.Send(UpdateMsg{View: v})
		}
		// Channel closed, quit TUI
		p.Quit()
	}()

	_, err := p.Run()
	return err
}
