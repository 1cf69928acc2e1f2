// Package console is the terminal rendition of the feedback desk: the
// management board and the submission form, driven by bubbletea.
package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/NomadCrew/feedback-desk/models/feedback/board"
	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Service is what the console needs from the feedback service.
type Service interface {
	board.Backend
	NewForm(onClose func()) *submission.Form
}

type mode int

const (
	modeBoard mode = iota
	modeSearch
	modeForm
)

// Model is the root bubbletea model.
type Model struct {
	service Service
	board   *board.Board
	keys    KeyMap
	styles  Styles
	help    help.Model
	search  textinput.Model

	mode mode

	items    []*types.Feedback
	stats    *types.FeedbackStats
	detail   *types.Feedback
	cursor   int
	status   int // 0 is "all", then index+1 into types.FeedbackStatuses.
	category int // 0 is "all", then index+1 into types.FeedbackCategories.
	err      error

	entry *formModel

	width  int
	height int
}

// NewModel builds the board over svc and loads the first view.
func NewModel(svc Service) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, email or subject"

	model := Model{
		service: svc,
		board:   board.New(svc),
		keys:    DefaultKeyMap,
		styles:  DefaultStyles(),
		help:    help.New(),
		search:  search,
	}
	model.refresh()
	return model
}

func (model Model) Init() tea.Cmd {
	return nil
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.help.Width = message.Width
		return model, nil

	case submitResultMsg:
		if model.entry == nil || model.entry.form != message.form {
			return model, nil
		}
		if message.result.Outcome == submission.OutcomeAccepted {
			model.refresh()
		}
		return model, nil

	case formClosedMsg:
		if model.entry == nil || model.entry.form != message.form {
			return model, nil
		}
		model.closeForm()
		return model, nil

	case spinner.TickMsg:
		if model.entry == nil {
			return model, nil
		}
		return model, model.entry.updateSpinner(message)

	case tea.KeyMsg:
		switch model.mode {
		case modeSearch:
			return model.handleSearchKeys(message)
		case modeForm:
			return model.handleFormKeys(message)
		}
		return model.handleBoardKeys(message)
	}
	return model, nil
}

func (model Model) handleBoardKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.items)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.Open):
		if selected := model.selected(); selected != nil {
			_, err := model.board.Open(ctx, selected.ID)
			model.err = err
			model.detail = model.board.Detail()
		}

	case key.Matches(message, model.keys.Close):
		model.board.CloseDetail()
		model.detail = nil

	case key.Matches(message, model.keys.Search):
		model.mode = modeSearch
		model.search.Focus()

	case key.Matches(message, model.keys.CycleStatus):
		model.status = (model.status + 1) % (len(types.FeedbackStatuses) + 1)
		model.board.SetStatusFilter(model.statusFilter())
		model.refresh()

	case key.Matches(message, model.keys.CycleCategory):
		model.category = (model.category + 1) % (len(types.FeedbackCategories) + 1)
		model.board.SetCategoryFilter(model.categoryFilter())
		model.refresh()

	case key.Matches(message, model.keys.ClearFilters):
		model.status, model.category = 0, 0
		model.search.SetValue("")
		model.board.SetSearch("")
		model.board.SetStatusFilter(types.FilterAll)
		model.board.SetCategoryFilter(types.FilterAll)
		model.refresh()

	case key.Matches(message, model.keys.MarkNew):
		model.setStatus(types.FeedbackStatusNew)

	case key.Matches(message, model.keys.MarkInProgress):
		model.setStatus(types.FeedbackStatusInProgress)

	case key.Matches(message, model.keys.MarkResolved):
		model.setStatus(types.FeedbackStatusResolved)

	case key.Matches(message, model.keys.Delete):
		if target := model.target(); target != nil {
			model.err = model.board.Delete(ctx, target.ID)
			model.refresh()
		}

	case key.Matches(message, model.keys.NewFeedback):
		model.entry = newFormModel(model.service, model.styles)
		model.mode = modeForm
		return model, model.entry.waitForClose()

	case key.Matches(message, model.keys.Help):
		model.help.ShowAll = !model.help.ShowAll
	}

	return model, nil
}

// handleSearchKeys filters live as the term is typed. Enter keeps the
// term, escape clears it.
func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEnter:
		model.mode = modeBoard
		model.search.Blur()
		return model, nil
	case tea.KeyEsc:
		model.mode = modeBoard
		model.search.Blur()
		model.search.SetValue("")
		model.board.SetSearch("")
		model.refresh()
		return model, nil
	}

	var cmd tea.Cmd
	model.search, cmd = model.search.Update(message)
	model.board.SetSearch(model.search.Value())
	model.refresh()
	return model, cmd
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		model.entry.form.Close()
		return model, tea.Quit
	}
	if key.Matches(message, model.entry.keys.Cancel) {
		model.entry.form.Cancel()
		model.closeForm()
		return model, nil
	}
	return model, model.entry.handleKey(message)
}

// closeForm tears the form down and returns to the board.
func (model *Model) closeForm() {
	model.entry.form.Close()
	model.entry = nil
	model.mode = modeBoard
	model.refresh()
}

// setStatus changes the open entry, or the selected one when the detail
// pane is closed.
func (model *Model) setStatus(status types.FeedbackStatus) {
	target := model.target()
	if target == nil {
		return
	}
	model.err = model.board.SetStatus(context.Background(), target.ID, status)
	model.refresh()
}

func (model *Model) target() *types.Feedback {
	if model.detail != nil {
		return model.detail
	}
	return model.selected()
}

func (model *Model) selected() *types.Feedback {
	if model.cursor < 0 || model.cursor >= len(model.items) {
		return nil
	}
	return model.items[model.cursor]
}

// refresh reloads the visible list, the stats and the detail pane.
func (model *Model) refresh() {
	ctx := context.Background()

	items, err := model.board.Visible(ctx)
	if err != nil {
		model.err = err
		return
	}
	model.items = items

	stats, err := model.board.Stats(ctx)
	if err != nil {
		model.err = err
		return
	}
	model.stats = stats
	model.detail = model.board.Detail()

	if model.cursor >= len(model.items) {
		model.cursor = len(model.items) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

func (model Model) statusFilter() string {
	if model.status == 0 {
		return types.FilterAll
	}
	return string(types.FeedbackStatuses[model.status-1])
}

func (model Model) categoryFilter() string {
	if model.category == 0 {
		return types.FilterAll
	}
	return string(types.FeedbackCategories[model.category-1])
}

func (model Model) View() string {
	if model.mode == modeForm && model.entry != nil {
		return model.entry.View()
	}

	s := model.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Feedback Desk"))
	b.WriteString("\n")
	b.WriteString(model.statsView())
	b.WriteString("\n")
	b.WriteString(s.Filter.Render(fmt.Sprintf("status: %s  category: %s", model.statusFilter(), model.categoryFilter())))
	b.WriteString("\n")
	if model.mode == modeSearch || model.search.Value() != "" {
		b.WriteString(model.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	list := model.listView()
	if model.detail != nil {
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", model.detailView())
	}
	b.WriteString(list)
	b.WriteString("\n")

	if model.err != nil {
		b.WriteString(s.Error.Render(model.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(model.help.View(model.keys))
	return b.String()
}

func (model Model) statsView() string {
	if model.stats == nil {
		return ""
	}
	st := model.stats
	return model.styles.Stats.Render(fmt.Sprintf(
		"Total %d · New %d · In progress %d · Resolved %d · Avg rating %.1f",
		st.Total, st.New, st.InProgress, st.Resolved, st.AvgRating))
}

func (model Model) listView() string {
	s := model.styles
	if len(model.items) == 0 {
		return s.Muted.Render("No feedback matches the current filters.")
	}

	rows := make([]string, 0, len(model.items))
	for i, fb := range model.items {
		line := fmt.Sprintf("%-12s %-10s %d★  %s  %s",
			s.status(fb.Status), fb.Category, fb.Rating, fb.Name, fb.Subject)
		if i == model.cursor {
			rows = append(rows, s.Selected.Render("> "+line))
		} else {
			rows = append(rows, s.Row.Render(line))
		}
	}
	return strings.Join(rows, "\n")
}

func (model Model) detailView() string {
	s := model.styles
	fb := model.detail
	lines := []string{
		s.Label.Render(fb.Subject),
		fmt.Sprintf("%s <%s>", fb.Name, fb.Email),
		fmt.Sprintf("%s · %s · rating %d", s.status(fb.Status), fb.Category, fb.Rating),
		s.Muted.Render(fb.CreatedAt.Format("Jan 2, 2006 15:04")),
		"",
		fb.Message,
	}
	width := 48
	if model.width > 0 && model.width/2 > width {
		width = model.width / 2
	}
	return s.Detail.Width(width).Render(strings.Join(lines, "\n"))
}
