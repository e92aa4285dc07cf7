package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/surgeworks/hammercad/pkg/config"
	"github.com/surgeworks/hammercad/pkg/hyfile"
	"github.com/surgeworks/hammercad/pkg/logging"
	"github.com/surgeworks/hammercad/pkg/metrics"
	"github.com/surgeworks/hammercad/pkg/network"
	"github.com/surgeworks/hammercad/pkg/project"
	"github.com/surgeworks/hammercad/pkg/pubsub"
	"github.com/surgeworks/hammercad/pkg/units"
	"github.com/surgeworks/hammercad/pkg/validation"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AFFF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0087D7")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF87")).
			Padding(1, 2).
			MarginRight(2)

	previewBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFD700")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FFF87")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	overviewView view = iota
	elementsView
	conduitsView
	requestsView
	consoleView
	previewView
)

const viewCount = 6

type keyMap struct {
	Tab        key.Binding
	ShiftTab   key.Binding
	Enter      key.Binding
	Undo       key.Binding
	Redo       key.Binding
	ToggleUnit key.Binding
	Save       key.Binding
	Export     key.Binding
	Quit       key.Binding
	Up         key.Binding
	Down       key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run command"),
	),
	Undo: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "redo"),
	),
	ToggleUnit: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("ctrl+u", "toggle SI/FPS"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save project"),
	),
	Export: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "write engine file"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Undo, k.Redo, k.ToggleUnit, k.Save, k.Export, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Undo, k.Redo, k.ToggleUnit},
		{k.Save, k.Export, k.Up, k.Down, k.Quit},
	}
}

type model struct {
	store        *network.Store
	emitter      *hyfile.Emitter
	projectPath  string
	exportPath   string
	currentView  view
	commandInput textinput.Model
	nodeTable    table.Model
	edgeTable    table.Model
	requestTable table.Model
	help         help.Model
	keys         keyMap
	width        int
	height       int
	message      string
	messageErr   bool
	startTime    time.Time
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#0087D7")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(store *network.Store, emitter *hyfile.Emitter, projectPath, exportPath string) model {
	ti := textinput.New()
	ti.Placeholder = "add reservoir 0 0"
	ti.CharLimit = 120
	ti.Width = 60

	m := model{
		store:       store,
		emitter:     emitter,
		projectPath: projectPath,
		exportPath:  exportPath,
		currentView: overviewView,
		commandInput: ti,
		nodeTable: newTable([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Kind", Width: 14},
			{Title: "Label", Width: 10},
			{Title: "Num", Width: 5},
			{Title: "Elev", Width: 10},
			{Title: "Position", Width: 16},
		}),
		edgeTable: newTable([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Label", Width: 8},
			{Title: "Kind", Width: 9},
			{Title: "Link", Width: 12},
			{Title: "Length", Width: 10},
			{Title: "Diam", Width: 8},
		}),
		requestTable: newTable([]table.Column{
			{Title: "Type", Width: 12},
			{Title: "Target", Width: 10},
			{Title: "Element", Width: 8},
			{Title: "Variables", Width: 40},
		}),
		help:      help.New(),
		keys:      keys,
		startTime: time.Now(),
	}
	m.refreshTables()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			m.syncFocus()

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
			m.syncFocus()

		case key.Matches(msg, m.keys.Undo):
			if m.store.Undo() {
				m.setStatus("Undone", false)
			} else {
				m.setStatus("Nothing to undo", true)
			}
			m.refreshTables()

		case key.Matches(msg, m.keys.Redo):
			if m.store.Redo() {
				m.setStatus("Redone", false)
			} else {
				m.setStatus("Nothing to redo", true)
			}
			m.refreshTables()

		case key.Matches(msg, m.keys.ToggleUnit):
			next := units.FPS
			if m.store.GlobalUnit() == units.FPS {
				next = units.SI
			}
			m.store.SetGlobalUnit(next)
			m.setStatus(fmt.Sprintf("Unit system set to %s", next), false)
			m.refreshTables()

		case key.Matches(msg, m.keys.Save):
			if err := project.Save(m.projectPath, m.store.CurrentSnapshot()); err != nil {
				m.setStatus(fmt.Sprintf("Save failed: %v", err), true)
			} else {
				m.setStatus(fmt.Sprintf("Saved %s", m.projectPath), false)
			}

		case key.Matches(msg, m.keys.Export):
			text := m.emitter.Emit(m.store.CurrentSnapshot(), m.store.GlobalUnit())
			if err := os.WriteFile(m.exportPath, []byte(text), 0644); err != nil {
				m.setStatus(fmt.Sprintf("Export failed: %v", err), true)
			} else {
				m.setStatus(fmt.Sprintf("Wrote %s (%d bytes)", m.exportPath, len(text)), false)
			}

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == consoleView && m.commandInput.Focused() {
				m.runCommand()
				m.refreshTables()
			}
		}
	}

	switch m.currentView {
	case consoleView:
		m.commandInput, cmd = m.commandInput.Update(msg)
		cmds = append(cmds, cmd)
	case elementsView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	case conduitsView:
		m.edgeTable, cmd = m.edgeTable.Update(msg)
		cmds = append(cmds, cmd)
	case requestsView:
		m.requestTable, cmd = m.requestTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) syncFocus() {
	if m.currentView == consoleView {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
}

func (m *model) setStatus(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

// runCommand parses and executes one console command. The grammar is
// deliberately tiny:
//
//	add <kind> [x y]       create an element at a canvas position
//	link <a> <b>           connect two nodes with a conduit
//	delete <id>            delete a node and its incident edges
//	elev <id> <value>      set a node's elevation
//	requests all           replace requests with the full default set
func (m *model) runCommand() {
	line := strings.TrimSpace(m.commandInput.Value())
	if line == "" {
		m.setStatus("Empty command", true)
		return
	}
	m.commandInput.SetValue("")

	fields := strings.Fields(line)
	switch fields[0] {
	case "add":
		m.runAdd(fields[1:])
	case "link":
		m.runLink(fields[1:])
	case "delete":
		m.runDelete(fields[1:])
	case "elev":
		m.runElev(fields[1:])
	case "requests":
		if len(fields) == 2 && fields[1] == "all" {
			m.store.AutoSelectAll()
			m.setStatus(fmt.Sprintf("Selected all elements (%d requests)", len(m.store.Requests())), false)
			return
		}
		m.setStatus("Usage: requests all", true)
	default:
		m.setStatus(fmt.Sprintf("Unknown command %q", fields[0]), true)
	}
}

func (m *model) runAdd(args []string) {
	if len(args) < 1 {
		m.setStatus("Usage: add <kind> [x y]", true)
		return
	}
	var x, y float64
	var err error
	if len(args) >= 3 {
		if x, err = strconv.ParseFloat(args[1], 64); err != nil {
			m.setStatus(fmt.Sprintf("Bad x coordinate %q", args[1]), true)
			return
		}
		if y, err = strconv.ParseFloat(args[2], 64); err != nil {
			m.setStatus(fmt.Sprintf("Bad y coordinate %q", args[2]), true)
			return
		}
	}

	req := &validation.AddNodeRequest{Kind: args[0], X: x, Y: y}
	if err := validation.ValidateAddNode(req); err != nil {
		m.setStatus(fmt.Sprintf("Invalid element: %v", err), true)
		return
	}

	node, err := m.store.AddNode(network.NodeKind(args[0]), network.Position{X: x, Y: y})
	if err != nil {
		m.setStatus(fmt.Sprintf("Add failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Added %s %q (id %d)", node.Kind, node.Data.Label, node.ID), false)
}

func (m *model) runLink(args []string) {
	if len(args) != 2 {
		m.setStatus("Usage: link <sourceID> <targetID>", true)
		return
	}
	src, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		m.setStatus(fmt.Sprintf("Bad source id %q", args[0]), true)
		return
	}
	dst, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		m.setStatus(fmt.Sprintf("Bad target id %q", args[1]), true)
		return
	}

	edge, err := m.store.AddEdge(src, dst)
	if err != nil {
		m.setStatus(fmt.Sprintf("Link failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Added %s %q (%d -> %d)", edge.Data.Kind, edge.Data.Label, src, dst), false)
}

func (m *model) runDelete(args []string) {
	if len(args) != 1 {
		m.setStatus("Usage: delete <nodeID>", true)
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		m.setStatus(fmt.Sprintf("Bad id %q", args[0]), true)
		return
	}
	if err := m.store.DeleteElement(id, network.ElementNode); err != nil {
		m.setStatus(fmt.Sprintf("Delete failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Deleted element %d", id), false)
}

func (m *model) runElev(args []string) {
	if len(args) != 2 {
		m.setStatus("Usage: elev <nodeID> <value>", true)
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		m.setStatus(fmt.Sprintf("Bad id %q", args[0]), true)
		return
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		m.setStatus(fmt.Sprintf("Bad elevation %q", args[1]), true)
		return
	}
	if _, err := m.store.UpdateNodeData(id, network.NodeDataPatch{Elevation: &v}); err != nil {
		m.setStatus(fmt.Sprintf("Update failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Node %d elevation set to %.2f", id, v), false)
}

func (m *model) refreshTables() {
	nodes := m.store.Nodes()
	nodeRows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		num := "-"
		if n.Data.NodeNumber != nil {
			num = strconv.Itoa(*n.Data.NodeNumber)
		}
		elev := "-"
		if n.Data.Elevation != nil {
			elev = fmt.Sprintf("%.2f", *n.Data.Elevation)
		}
		nodeRows = append(nodeRows, table.Row{
			strconv.FormatUint(n.ID, 10),
			string(n.Kind),
			n.Data.Label,
			num,
			elev,
			fmt.Sprintf("(%.0f, %.0f)", n.Position.X, n.Position.Y),
		})
	}
	m.nodeTable.SetRows(nodeRows)

	edges := m.store.Edges()
	edgeRows := make([]table.Row, 0, len(edges))
	for _, e := range edges {
		length := "-"
		if e.Data.Length != nil {
			length = fmt.Sprintf("%.2f", *e.Data.Length)
		}
		diam := "-"
		if e.Data.Diameter != nil {
			diam = fmt.Sprintf("%.2f", *e.Data.Diameter)
		}
		edgeRows = append(edgeRows, table.Row{
			strconv.FormatUint(e.ID, 10),
			e.Data.Label,
			string(e.Data.Kind),
			fmt.Sprintf("%d -> %d", e.Source, e.Target),
			length,
			diam,
		})
	}
	m.edgeTable.SetRows(edgeRows)

	requests := m.store.Requests()
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].RequestType != requests[j].RequestType {
			return requests[i].RequestType < requests[j].RequestType
		}
		return requests[i].ElementID < requests[j].ElementID
	})
	reqRows := make([]table.Row, 0, len(requests))
	for _, r := range requests {
		reqRows = append(reqRows, table.Row{
			string(r.RequestType),
			string(r.ElementType),
			strconv.FormatUint(r.ElementID, 10),
			strings.Join(r.Variables, " "),
		})
	}
	m.requestTable.SetRows(reqRows)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("HammerCAD - Transient Network Editor"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case overviewView:
		s.WriteString(m.renderOverview())
	case elementsView:
		s.WriteString(m.renderElements())
	case conduitsView:
		s.WriteString(m.renderConduits())
	case requestsView:
		s.WriteString(m.renderRequests())
	case consoleView:
		s.WriteString(m.renderConsole())
	case previewView:
		s.WriteString(m.renderPreview())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("! " + m.message))
		} else {
			s.WriteString(successStyle.Render("ok " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Overview", "Elements", "Conduits", "Requests", "Console", "Preview"}
	var renderedTabs []string
	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderOverview() string {
	params := m.store.Params()
	uptime := time.Since(m.startTime).Round(time.Second)

	statsContent := fmt.Sprintf(`Network
Elements:  %d
Conduits:  %d
Requests:  %d
Units:     %s
Session:   %s`,
		len(m.store.Nodes()),
		len(m.store.Edges()),
		len(m.store.Requests()),
		m.store.GlobalUnit(),
		uptime,
	)

	controlContent := fmt.Sprintf(`Run Control
DTCOMP:  %.2f
DTOUT:   %.2f
TMAX:    %.2f

History
Undo available:  %v
Redo available:  %v`,
		params.DTComp,
		params.DTOut,
		params.TMax,
		m.store.CanUndo(),
		m.store.CanRedo(),
	)

	statsBox := statsBoxStyle.Render(statsContent)
	controlBox := statsBoxStyle.Render(controlContent)

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, statsBox, controlBox),
	)
}

func (m model) renderElements() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Elements"))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())
	return contentStyle.Render(s.String())
}

func (m model) renderConduits() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Conduits"))
	s.WriteString("\n\n")
	s.WriteString(m.edgeTable.View())
	return contentStyle.Render(s.String())
}

func (m model) renderRequests() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Output Requests"))
	s.WriteString("\n\n")
	s.WriteString(m.requestTable.View())
	return contentStyle.Render(s.String())
}

func (m model) renderConsole() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Command Console"))
	s.WriteString("\n\n")
	s.WriteString("Enter an editing command:\n\n")
	s.WriteString(m.commandInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Examples:\n"))
	s.WriteString(helpStyle.Render("  add reservoir 0 0\n"))
	s.WriteString(helpStyle.Render("  add surgeTank 200 0\n"))
	s.WriteString(helpStyle.Render("  link 1 2\n"))
	s.WriteString(helpStyle.Render("  elev 1 100\n"))
	s.WriteString(helpStyle.Render("  requests all\n"))
	return contentStyle.Render(s.String())
}

func (m model) renderPreview() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Engine Input Preview"))
	s.WriteString("\n\n")

	text := m.emitter.Emit(m.store.CurrentSnapshot(), m.store.GlobalUnit())
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	maxLines := m.height - 14
	if maxLines < 5 {
		maxLines = 5
	}
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], fmt.Sprintf("... %d more lines", len(lines)-maxLines))
	}
	s.WriteString(previewBoxStyle.Render(strings.Join(lines, "\n")))
	return contentStyle.Render(s.String())
}

func main() {
	var (
		configPath  = flag.String("config", "", "optional YAML config file")
		projectPath = flag.String("project", "plant.hmz", "project file to load and save")
		exportPath  = flag.String("out", "plant.dat", "engine input file written on export")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	logger := logging.NewDefaultLogger().With(logging.Component("tui"))
	reg := metrics.NewRegistry()
	bus := pubsub.New()
	defer bus.Shutdown()

	store := network.NewStore(network.Options{
		Logger:          logger,
		Metrics:         reg,
		Bus:             bus,
		HistoryCapacity: cfg.HistoryCapacity,
		GlobalUnit:      cfg.GlobalUnit(),
		Params:          cfg.ComputationalParams(),
	})

	// Log every mutation and history restore for session tracing.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, topic := range []string{pubsub.TopicGraph, pubsub.TopicHistory} {
		sub, err := bus.Subscribe(ctx, topic)
		if err != nil {
			log.Fatalf("Failed to subscribe to %s events: %v", topic, err)
		}
		go func() {
			for ev := range sub.Channel() {
				logger.Debug("editor event",
					logging.String("topic", ev.Topic),
					logging.Operation(ev.Op),
					logging.Uint64("element", ev.ElementID))
			}
		}()
	}

	if _, err := os.Stat(*projectPath); err == nil {
		if err := project.LoadInto(store, *projectPath); err != nil {
			log.Fatalf("Failed to load project: %v", err)
		}
		logger.Info("project loaded", logging.Path(*projectPath))
	}

	emitter := hyfile.NewEmitter(logger, reg)

	p := tea.NewProgram(initialModel(store, emitter, *projectPath, *exportPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
