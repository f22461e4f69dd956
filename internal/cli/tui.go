package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/controller"
	bentoerr "github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/render/text"
)

// Editor styles
var (
	editorHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	editorInputStyle  = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236")).Padding(0, 1)
)

const editorHelp = "tab select  ←/→/↑/↓ resize  [/] move  a add  x remove  l link  s save  r reload  q quit"

// tuiCommand creates the interactive editor command.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Aliases: []string{"edit"},
		Short:   "Edit the grid interactively",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.open(ctx, nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			m := newEditorModel(ctx, ws.ctrl, ws.cfg.Converter(), c.gridName)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if em, ok := final.(EditorModel); ok && em.Dirty {
				printWarning("Quit with unsaved changes")
			}
			return nil
		},
	}
}

// =============================================================================
// EditorModel - Interactive grid editor
// =============================================================================

// EditorModel is the bubbletea model for editing one grid.
//
// Link editing is transient view state. The text being typed lives here and
// reaches the tile store only when it is committed with enter.
type EditorModel struct {
	ctx  context.Context
	ctrl *controller.Controller
	conv geometry.Converter
	name string

	Selected int  // id of the selected tile, 0 if none
	Dirty    bool // changes since the last save or load

	EditingLink bool
	LinkInput   string

	Status string
	Err    error
}

func newEditorModel(ctx context.Context, ctrl *controller.Controller, conv geometry.Converter, name string) EditorModel {
	m := EditorModel{ctx: ctx, ctrl: ctrl, conv: conv, name: name}
	if tiles := ctrl.Tiles(); len(tiles) > 0 {
		m.Selected = tiles[0].ID
	}
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.EditingLink {
		return m.updateLinkInput(key)
	}

	m.Err = nil
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "n":
		m.cycle(1)
	case "shift+tab", "p":
		m.cycle(-1)
	case "l":
		return m.startLinkInput(), nil
	case "right":
		m.resize(grid.Right)
	case "left":
		m.resize(grid.Left)
	case "down":
		m.resize(grid.Down)
	case "up":
		m.resize(grid.Up)
	case "[":
		m.move(-1)
	case "]":
		m.move(1)
	case "a":
		if res, ok := m.dispatch(controller.AddTile{}); ok {
			m.Selected = res.Tile.ID
			m.Status = fmt.Sprintf("added tile %d", res.Tile.ID)
		}
	case "x", "delete", "backspace":
		m.remove()
	case "s":
		if _, ok := m.dispatch(controller.Save{}); ok {
			m.Dirty = false
			m.Status = "saved"
		}
	case "r":
		if _, ok := m.dispatch(controller.Load{}); ok {
			m.Dirty = false
			m.Status = "reloaded"
			m.reselect()
		}
	}
	return m, nil
}

func (m EditorModel) startLinkInput() EditorModel {
	t, err := m.ctrl.Tile(m.Selected)
	if err != nil {
		m.Err = err
		return m
	}
	m.EditingLink = true
	m.LinkInput = t.LinkURL()
	return m
}

func (m EditorModel) updateLinkInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		m.EditingLink = false
		if res, ok := m.dispatch(controller.SetLink{ID: m.Selected, Text: m.LinkInput}); ok {
			m.Status = "link: " + res.Tile.LinkURL()
			if !res.Tile.HasLink() {
				m.Status = "link cleared"
			}
		}
		m.LinkInput = ""
	case tea.KeyEsc, tea.KeyCtrlC:
		m.EditingLink = false
		m.LinkInput = ""
	case tea.KeyBackspace:
		if r := []rune(m.LinkInput); len(r) > 0 {
			m.LinkInput = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.LinkInput += string(key.Runes)
	}
	return m, nil
}

// dispatch applies an intent and records its outcome in the status line.
func (m *EditorModel) dispatch(intent controller.Intent) (controller.Result, bool) {
	res, err := m.ctrl.Dispatch(m.ctx, intent)
	if err != nil {
		m.Err = err
		return res, false
	}
	if res.SyncErr != nil {
		m.Status = "layout out of date: " + bentoerr.UserMessage(res.SyncErr)
	}
	switch intent.(type) {
	case controller.Save, controller.Load:
	default:
		m.Dirty = true
	}
	return res, true
}

func (m *EditorModel) resize(dir grid.Direction) {
	if m.Selected == 0 {
		return
	}
	if res, ok := m.dispatch(controller.ResizeTile{ID: m.Selected, Direction: dir, Step: 1}); ok {
		m.Status = fmt.Sprintf("tile %d is %dx%d", res.Tile.ID, res.Tile.WidthUnits, res.Tile.HeightUnits)
	}
}

func (m *EditorModel) move(delta int) {
	if m.Selected == 0 {
		return
	}
	idx := m.index()
	if res, ok := m.dispatch(controller.MoveTile{ID: m.Selected, Index: idx + delta}); ok {
		m.Status = fmt.Sprintf("tile %d at position %d", m.Selected, res.Index)
	}
}

func (m *EditorModel) remove() {
	if m.Selected == 0 {
		return
	}
	idx := m.index()
	id := m.Selected
	res, ok := m.dispatch(controller.RemoveTile{ID: id})
	if !ok {
		return
	}
	m.Status = fmt.Sprintf("removed tile %d", id)
	m.Selected = 0
	if len(res.Tiles) > 0 {
		m.Selected = res.Tiles[min(idx, len(res.Tiles)-1)].ID
	}
}

// cycle moves the selection through the display order.
func (m *EditorModel) cycle(delta int) {
	tiles := m.ctrl.Tiles()
	if len(tiles) == 0 {
		return
	}
	idx := (m.index() + delta + len(tiles)) % len(tiles)
	m.Selected = tiles[idx].ID
}

// reselect keeps the selection valid after the collection was replaced.
func (m *EditorModel) reselect() {
	tiles := m.ctrl.Tiles()
	if m.index() >= 0 {
		return
	}
	m.Selected = 0
	if len(tiles) > 0 {
		m.Selected = tiles[0].ID
	}
}

func (m EditorModel) index() int {
	return slices.IndexFunc(m.ctrl.Tiles(), func(t grid.Tile) bool { return t.ID == m.Selected })
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := "Bento grid " + m.name
	if m.Dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(editorHelpStyle.Render(editorHelp))
	b.WriteString("\n\n")

	els := m.ctrl.Adapter().Elements()
	if len(els) == 0 {
		b.WriteString(StyleDim.Render("empty grid, press a to add a tile"))
	} else {
		b.WriteString(text.Render(els, m.conv, text.WithSelected(m.Selected)))
	}
	b.WriteString("\n\n")

	switch {
	case m.EditingLink:
		b.WriteString(fmt.Sprintf("link for tile %d: ", m.Selected))
		b.WriteString(editorInputStyle.Render(m.LinkInput + "▏"))
		b.WriteString(editorHelpStyle.Render("  enter commit  esc cancel"))
	case m.Err != nil:
		b.WriteString(editorErrorStyle.Render(iconError + " " + bentoerr.UserMessage(m.Err)))
	case m.Status != "":
		b.WriteString(editorStatusStyle.Render(m.Status))
	}
	b.WriteString("\n")
	return b.String()
}
