// Package tui is the terminal front end of the directory. It talks to the
// same command and query buses as the HTTP API.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"hazboun-backend/application/queries"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
)

type phase int

const (
	phaseLoading phase = iota
	phaseError
	phaseReady
)

type tab int

const (
	tabMembers tab = iota
	tabTree
	tabPlaces
	tabHistory
	tabCount
)

var tabNames = [tabCount]string{"Members", "Tree", "Places", "History"}

// treeRow is one line of the flattened tree: a generation band or a member
// inside an expanded band.
type treeRow struct {
	band   int
	member *entities.FamilyMember
}

// Model is the bubbletea model of the directory browser.
type Model struct {
	ctx      context.Context
	commands CommandDispatcher
	queries  QueryAsker
	logger   *zap.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	search  textinput.Model

	phase   phase
	loadSeq int
	err     error

	data     views
	tab      tab
	cursor   int
	members  []entities.FamilyMember
	treeRows []treeRow
	detail   *queries.MemberDetail
	form     *addForm
	status   string

	width, height int
}

// New creates the model. The first load starts from Init.
func New(ctx context.Context, cmds CommandDispatcher, qs QueryAsker, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	search := textinput.New()
	search.Placeholder = "search name, city, profession"
	search.CharLimit = 80
	search.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:      ctx,
		commands: cmds,
		queries:  qs,
		logger:   logger.Named("tui"),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		search:   search,
		phase:    phaseLoading,
		loadSeq:  1,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.ctx, m.commands, m.queries, m.loadSeq), m.spinner.Tick)
}

// retry starts a new load attempt. Presses while loading are ignored.
func (m *Model) retry() tea.Cmd {
	if m.phase == phaseLoading {
		return nil
	}
	m.loadSeq++
	m.phase = phaseLoading
	m.err = nil
	m.logger.Info("Retrying directory load", zap.Int("attempt", m.loadSeq))
	return tea.Batch(loadCmd(m.ctx, m.commands, m.queries, m.loadSeq), m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("Directory load failed", zap.Error(msg.err))
			m.phase = phaseError
			m.err = msg.err
			return m, nil
		}
		m.phase = phaseReady
		m.apply(msg.views)
		return m, nil

	case refreshedMsg:
		if msg.seq != m.loadSeq || msg.err != nil {
			if msg.err != nil {
				m.logger.Warn("Refresh failed", zap.Error(msg.err))
			}
			return m, nil
		}
		m.apply(msg.views)
		return m, nil

	case searchMsg:
		if msg.search != m.search.Value() {
			return m, nil
		}
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		if msg.list != nil {
			m.members = msg.list.Members
			m.clampCursor()
		}
		return m, nil

	case detailMsg:
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		m.detail = msg.detail
		return m, nil

	case addedMsg:
		return m, m.handleAdded(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleAdded(msg addedMsg) tea.Cmd {
	if m.form == nil {
		return nil
	}
	m.form.pending = false
	if msg.err != nil {
		m.form.message = errorText(msg.err)
		return nil
	}
	m.form = nil
	if m.data.members != nil {
		// The list may be shared with the query cache.
		list := *m.data.members
		list.Members = append(append(make([]entities.FamilyMember, 0, len(list.Members)+1), list.Members...), msg.member)
		list.Total++
		m.data.members = &list
	}
	if m.search.Value() == "" && m.data.members != nil {
		m.members = m.data.members.Members
	}
	m.status = fmt.Sprintf("Added %s", msg.member.Name)
	return refreshCmd(m.ctx, m.queries, m.loadSeq)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	switch m.phase {
	case phaseLoading:
		return nil
	case phaseError:
		switch {
		case key.Matches(msg, m.keys.Retry):
			return m.retry()
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		}
		return nil
	}

	if m.form != nil {
		action, cmd := m.form.Update(msg)
		switch action {
		case formCancel:
			m.form = nil
		case formSubmit:
			return addCmd(m.ctx, m.commands, m.form.Input())
		}
		return cmd
	}

	if m.search.Focused() {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.search.Blur()
			return nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() == before {
			return cmd
		}
		return tea.Batch(cmd, searchCmd(m.ctx, m.queries, m.search.Value()))
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Search):
		if m.tab == tabMembers {
			return m.search.Focus()
		}
	case key.Matches(msg, m.keys.Add):
		m.form = newAddForm(m.generations())
		m.status = ""
	case key.Matches(msg, m.keys.Retry):
		return m.retry()
	case key.Matches(msg, m.keys.Select):
		return m.selectRow()
	}
	return nil
}

func (m *Model) switchTab(delta int) {
	m.tab = (m.tab + tab(delta) + tabCount) % tabCount
	m.cursor = 0
	m.detail = nil
}

func (m *Model) selectRow() tea.Cmd {
	switch m.tab {
	case tabMembers:
		if m.cursor < len(m.members) {
			return detailCmd(m.ctx, m.queries, m.members[m.cursor].ID)
		}
	case tabTree:
		if m.cursor >= len(m.treeRows) {
			return nil
		}
		row := m.treeRows[m.cursor]
		if row.member != nil {
			return detailCmd(m.ctx, m.queries, row.member.ID)
		}
		band := &m.data.tree.Bands[row.band]
		band.Expanded = !band.Expanded
		m.flattenTree()
	}
	return nil
}

func (m *Model) generations() valueobjects.GenerationRange {
	if m.data.form == nil {
		return valueobjects.GenerationRange{Min: 1, Max: 10}
	}
	return valueobjects.GenerationRange{Min: m.data.form.MinGeneration, Max: m.data.form.MaxGeneration}
}

// apply swaps in freshly read views, keeping the expanded bands the user
// chose over the catalog default.
func (m *Model) apply(v views) {
	if m.data.tree != nil && v.tree != nil {
		open := make(map[int]bool, len(m.data.tree.Bands))
		for _, b := range m.data.tree.Bands {
			open[b.Generation] = b.Expanded
		}
		for i := range v.tree.Bands {
			if expanded, ok := open[v.tree.Bands[i].Generation]; ok {
				v.tree.Bands[i].Expanded = expanded
			}
		}
	}
	m.data = v
	if m.search.Value() == "" && v.members != nil {
		m.members = v.members.Members
	}
	m.flattenTree()
	m.clampCursor()
}

func (m *Model) flattenTree() {
	m.treeRows = m.treeRows[:0]
	if m.data.tree == nil {
		return
	}
	for i, band := range m.data.tree.Bands {
		m.treeRows = append(m.treeRows, treeRow{band: i})
		if !band.Expanded {
			continue
		}
		for j := range band.Members {
			m.treeRows = append(m.treeRows, treeRow{band: i, member: &m.data.tree.Bands[i].Members[j]})
		}
	}
}

func (m *Model) rows() int {
	switch m.tab {
	case tabMembers:
		return len(m.members)
	case tabTree:
		return len(m.treeRows)
	case tabPlaces:
		if m.data.places != nil {
			return len(m.data.places.Countries)
		}
	case tabHistory:
		if m.data.history != nil {
			return len(m.data.history.Branches)
		}
	}
	return 0
}

func (m *Model) clampCursor() {
	if n := m.rows(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
