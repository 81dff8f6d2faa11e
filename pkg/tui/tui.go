// Package tui provides a terminal user interface for notemaker
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/notemaker/pkg/chords"
	"github.com/james-see/notemaker/pkg/converter"
	"github.com/james-see/notemaker/pkg/engine"
	"github.com/james-see/notemaker/pkg/melody"
	"github.com/james-see/notemaker/pkg/textnotes"
	"github.com/james-see/notemaker/pkg/theory"
)

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)

	noteStyle  = lipgloss.NewStyle().Foreground(acidGreen)
	mutedStyle = lipgloss.NewStyle().Foreground(silverGray)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateTextInput
	StateFilePicker
	StateGenerating
	StatePreview
	StateResult
)

// Action is what a menu item does
type Action int

const (
	ActionChords Action = iota
	ActionMelody
	ActionText
	ActionStack
	ActionQuantize
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "Chords", Description: "Generate a four bar chord progression", Action: ActionChords},
	{Title: "Melody", Description: "Generate a two bar melody", Action: ActionMelody},
	{Title: "Text", Description: "Write text into the piano roll", Action: ActionText},
	{Title: "Scale Stack", Description: "Stack every pitch of the scale as muted notes", Action: ActionStack},
	{Title: "Quantize MIDI", Description: "Snap the notes of a MIDI file onto the scale", Action: ActionQuantize},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Options configure a TUI run
type Options struct {
	Session   *engine.Session
	Root      int
	Scale     string
	Genre     string
	Tempo     float64
	OutputDir string
}

// Model represents the TUI model
type Model struct {
	opts      Options
	session   *engine.Session
	conv      *converter.Converter
	scales    []theory.Scale
	scaleIdx  int
	root      int
	voicing   chords.VoicingOptions
	state     State
	menuIndex int

	filePicker filepicker.Model
	spinner    spinner.Model
	input      textinput.Model

	item         MenuItem
	clipName     string
	notes        []theory.Note
	selectedFile string
	outputFile   string
	err          error
	width        int
	height       int
}

// generatedMsg carries the notes of a finished generation
type generatedMsg struct {
	name  string
	notes []theory.Note
	err   error
}

// savedMsg signals a clip file was written
type savedMsg struct {
	outputFile string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(opts Options) Model {
	if opts.Session == nil {
		opts.Session = engine.NewSession("tui", theory.NewRand(0), opts.Tempo, nil)
	}
	if opts.Genre == "" {
		opts.Genre = converter.Genres[0]
	}
	if opts.OutputDir == "" {
		opts.OutputDir, _ = os.Getwd()
	}

	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	ti := textinput.New()
	ti.Placeholder = "hello"
	ti.CharLimit = 32

	scales := theory.Scales()
	idx := 0
	for i, sc := range scales {
		if strings.EqualFold(sc.Name, opts.Scale) {
			idx = i
			break
		}
	}

	return Model{
		opts:       opts,
		session:    opts.Session,
		conv:       converter.New(),
		scales:     scales,
		scaleIdx:   idx,
		root:       ((opts.Root % 12) + 12) % 12,
		voicing:    chords.VoicingOptions{Revoice: true, MinInterval: chords.DefaultMinInterval},
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
		input:      ti,
	}
}

func (m Model) scale() theory.Scale {
	return m.scales[m.scaleIdx]
}

func (m Model) keyName() string {
	return fmt.Sprintf("%s %s", theory.RootNames[m.root], m.scale().Name)
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateGenerating
			return m, tea.Batch(m.spinner.Tick, m.quantizeFile())
		}
		return m, cmd
	}

	if m.state == StateTextInput {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.input.Blur()
				m.state = StateMenu
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				m.input.Blur()
				m.state = StateGenerating
				return m, tea.Batch(m.spinner.Tick, m.generate(ActionText))
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StatePreview:
			return m.updatePreview(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generatedMsg:
		if msg.err != nil {
			m.state = StateResult
			m.err = msg.err
			return m, nil
		}
		m.state = StatePreview
		m.clipName = msg.name
		m.notes = msg.notes
		return m, nil

	case savedMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "left", "h":
		m.root = (m.root + 11) % 12
	case "right", "l":
		m.root = (m.root + 1) % 12
	case "tab":
		m.scaleIdx = (m.scaleIdx + 1) % len(m.scales)
	case "shift+tab":
		m.scaleIdx = (m.scaleIdx + len(m.scales) - 1) % len(m.scales)
	case "enter":
		m.item = menuItems[m.menuIndex]
		switch m.item.Action {
		case ActionExit:
			return m, tea.Quit
		case ActionText:
			m.state = StateTextInput
			m.input.SetValue("")
			focus := m.input.Focus()
			return m, tea.Batch(focus, textinput.Blink)
		case ActionQuantize:
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		default:
			m.state = StateGenerating
			return m, tea.Batch(m.spinner.Tick, m.generate(m.item.Action))
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		if m.item.Action == ActionChords || m.item.Action == ActionMelody {
			m.state = StateGenerating
			return m, tea.Batch(m.spinner.Tick, m.generate(m.item.Action))
		}
	case "v":
		if m.item.Action == ActionChords {
			m.voicing.Seventh = !m.voicing.Seventh
			m.voicing.Bass = m.voicing.Seventh
			return m, m.repaint()
		}
	case "a":
		if m.item.Action == ActionMelody {
			return m, m.alternative()
		}
	case "s":
		m.state = StateGenerating
		return m, tea.Batch(m.spinner.Tick, m.save())
	case "esc":
		m.state = StateMenu
		m.notes = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) generate(action Action) tea.Cmd {
	sess := m.session
	root := m.root
	intervals := append([]int(nil), m.scale().Intervals...)
	voicing := m.voicing
	text := m.input.Value()

	return func() tea.Msg {
		switch action {
		case ActionChords:
			p, err := sess.GenerateChords(chords.Config{Root: root, Intervals: intervals, Bars: chords.DefaultBars}, voicing)
			return generatedMsg{name: string(engine.PartChords), notes: p.Notes(), err: err}
		case ActionMelody:
			cfg := melody.DefaultConfig()
			cfg.Root, cfg.Intervals, cfg.Bars = root, intervals, 2
			cfg.LengthVariation, cfg.RepetitionChance, cfg.MotifChance = 50, 20, 20
			res, err := sess.GenerateMelody(cfg)
			return generatedMsg{name: string(engine.PartMelody), notes: res.Notes, err: err}
		case ActionText:
			opts := textnotes.DefaultOptions(text)
			opts.Root, opts.Intervals = root, intervals
			notes, err := sess.RenderText(opts)
			return generatedMsg{name: "text", notes: notes, err: err}
		case ActionStack:
			notes, err := sess.ScaleStack(root, intervals)
			return generatedMsg{name: "stack", notes: notes, err: err}
		}
		return generatedMsg{err: fmt.Errorf("unknown action %d", action)}
	}
}

func (m Model) repaint() tea.Cmd {
	sess, voicing := m.session, m.voicing
	return func() tea.Msg {
		p, err := sess.RepaintChords(voicing)
		return generatedMsg{name: string(engine.PartChords), notes: p.Notes(), err: err}
	}
}

func (m Model) alternative() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		notes, err := sess.AlternativeMelody(30)
		return generatedMsg{name: string(engine.PartMelody), notes: notes, err: err}
	}
}

func (m Model) save() tea.Cmd {
	clip := &converter.Clip{Name: m.clipName, Tempo: m.session.Capture().Tempo(), Notes: theory.CloneNotes(m.notes)}
	conv, genre, dir := m.conv, m.opts.Genre, m.opts.OutputDir
	return func() tea.Msg {
		base, err := converter.SuggestFilename(genre, time.Now())
		if err != nil {
			return savedMsg{err: err}
		}
		outputFile := filepath.Join(dir, base+"_"+clip.Name+".mid")
		if err := conv.WriteFile(clip, outputFile); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{outputFile: outputFile}
	}
}

func (m Model) quantizeFile() tea.Cmd {
	sess, conv, path := m.session, m.conv, m.selectedFile
	root, intervals := m.root, m.scale().Intervals
	return func() tea.Msg {
		clip, err := conv.ReadFile(path)
		if err != nil {
			return savedMsg{err: err}
		}
		clip.Notes, _, err = sess.Quantize(root, intervals, clip.Notes)
		if err != nil {
			return savedMsg{err: err}
		}
		outputFile := strings.TrimSuffix(path, filepath.Ext(path)) + "_quantized.mid"
		if err := conv.WriteFile(clip, outputFile); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{outputFile: outputFile}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateTextInput:
		s.WriteString(m.viewTextInput())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateGenerating:
		s.WriteString(m.viewGenerating())
	case StatePreview:
		s.WriteString(m.viewPreview())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • ←/→: root • tab: scale • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" NOTEMAKER "))
	s.WriteString("\n")
	s.WriteString(statusStyle.Render("Key: " + m.keyName()))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewTextInput() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" TEXT "))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: render • esc: back to menu"))
	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewGenerating() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	if m.selectedFile != "" {
		s.WriteString(fmt.Sprintf("%s Quantizing %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	} else {
		s.WriteString(fmt.Sprintf("%s %s...\n", m.spinner.View(), m.item.Title))
	}
	s.WriteString(statusStyle.Render("  " + m.keyName()))

	return boxStyle.Render(s.String())
}

func (m Model) viewPreview() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", strings.ToUpper(m.item.Title))))
	s.WriteString("\n")
	s.WriteString(statusStyle.Render(fmt.Sprintf("%s • %d notes", m.keyName(), len(m.notes))))
	s.WriteString("\n\n")

	cols := 64
	if m.width > 20 {
		cols = min(cols, m.width-16)
	}
	s.WriteString(pianoRoll(m.notes, cols, 24))
	s.WriteString("\n")

	keys := []string{"s: save .mid"}
	switch m.item.Action {
	case ActionChords:
		keys = append(keys, "r: regenerate", "v: toggle 7th + bass")
	case ActionMelody:
		keys = append(keys, "r: regenerate", "a: alternative")
	}
	keys = append(keys, "esc: back")
	s.WriteString(helpStyle.Render(strings.Join(keys, " • ")))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Saved!"))
		s.WriteString("\n\n")
		if m.selectedFile != "" {
			s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		}
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

// pitchName spells a MIDI pitch as name and octave, middle C is C4
func pitchName(p int) string {
	return fmt.Sprintf("%s%d", theory.RootNames[p%12], p/12-1)
}

// pianoRoll draws notes as rows of pitches over 16th-note columns, highest
// pitch on top. At most maxRows pitches are shown, the highest ones.
func pianoRoll(notes []theory.Note, cols, maxRows int) string {
	if len(notes) == 0 {
		return mutedStyle.Render("(no notes)") + "\n"
	}
	lo, hi := theory.MaxPitch, theory.MinPitch
	for _, n := range notes {
		lo, hi = min(lo, n.Pitch), max(hi, n.Pitch)
	}
	if hi-lo+1 > maxRows {
		lo = hi - maxRows + 1
	}

	type cell struct{ on, muted bool }
	rows := make([][]cell, hi-lo+1)
	for i := range rows {
		rows[i] = make([]cell, cols)
	}
	for _, n := range notes {
		if n.Pitch < lo {
			continue
		}
		start := int(n.Position)
		end := max(start+1, int(n.Position+n.Steps()+0.5))
		for c := start; c < end && c < cols; c++ {
			if c >= 0 {
				rows[n.Pitch-lo][c] = cell{on: true, muted: rows[n.Pitch-lo][c].muted || n.Muted}
			}
		}
	}

	var s strings.Builder
	for p := hi; p >= lo; p-- {
		s.WriteString(fmt.Sprintf("%-4s│", pitchName(p)))
		for c, cl := range rows[p-lo] {
			switch {
			case cl.on && cl.muted:
				s.WriteString(mutedStyle.Render("░"))
			case cl.on:
				s.WriteString(noteStyle.Render("█"))
			case c%theory.StepsPerBar == 0:
				s.WriteString("┊")
			default:
				s.WriteString("·")
			}
		}
		s.WriteString("\n")
	}
	return s.String()
}

func asciiLogo() string {
	logo := `
   _   _  ___ _____ _____ __  __    _    _  _______ ____
  | \ | |/ _ \_   _| ____|  \/  |  / \  | |/ / ____|  _ \
  |  \| | | | || | |  _| | |\/| | / _ \ | ' /|  _| | |_) |
  | |\  | |_| || | | |___| |  | |/ ___ \| . \| |___|  _ <
  |_| \_|\___/ |_| |_____|_|  |_/_/   \_\_|\_\_____|_| \_\
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
