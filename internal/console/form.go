package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField int

const (
	fieldName formField = iota
	fieldEmail
	fieldSubject
	fieldMessage
	fieldRating
	fieldCategory
	fieldCount
)

func (f formField) label() string {
	switch f {
	case fieldName:
		return "Name"
	case fieldEmail:
		return "Email"
	case fieldSubject:
		return "Subject"
	case fieldMessage:
		return "Message"
	case fieldRating:
		return "Rating"
	case fieldCategory:
		return "Category"
	}
	return ""
}

// errorKey is the validation.FieldErrors key for the field.
func (f formField) errorKey() string {
	return strings.ToLower(f.label())
}

// submitResultMsg carries the outcome of an asynchronous Form.Submit.
type submitResultMsg struct {
	form   *submission.Form
	result submission.Result
	err    error
}

// formClosedMsg is sent when the form asks its host to close it, either
// after the confirmation interval or on cancel.
type formClosedMsg struct {
	form *submission.Form
}

// formModel renders a submission.Form. The form owns the state machine;
// the widgets only hold what is being typed.
type formModel struct {
	form    *submission.Form
	closeCh chan struct{}

	keys    FormKeyMap
	styles  Styles
	help    help.Model
	spinner spinner.Model

	name     textinput.Model
	email    textinput.Model
	subject  textinput.Model
	message  textarea.Model
	rating   int
	category int
	focus    formField
}

func newFormModel(svc Service, styles Styles) *formModel {
	closeCh := make(chan struct{}, 1)
	fm := &formModel{
		closeCh: closeCh,
		keys:    DefaultFormKeyMap,
		styles:  styles,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		name:    newTextInput("Your name"),
		email:   newTextInput("you@example.com"),
		subject: newTextInput("What is this about?"),
	}
	fm.form = svc.NewForm(func() {
		select {
		case closeCh <- struct{}{}:
		default:
		}
	})

	fm.message = textarea.New()
	fm.message.Placeholder = "Tell us more (at least 10 characters)"
	fm.message.CharLimit = 500
	fm.message.ShowLineNumbers = false
	fm.message.SetHeight(4)

	fm.focusField(fieldName)
	return fm
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 48
	return ti
}

// waitForClose returns a tea.Cmd that blocks until the form signals its
// host to close it.
func (fm *formModel) waitForClose() tea.Cmd {
	form, ch := fm.form, fm.closeCh
	return func() tea.Msg {
		<-ch
		return formClosedMsg{form: form}
	}
}

func (fm *formModel) draft() types.FeedbackDraft {
	return types.FeedbackDraft{
		Name:     fm.name.Value(),
		Email:    fm.email.Value(),
		Subject:  fm.subject.Value(),
		Message:  fm.message.Value(),
		Rating:   fm.rating,
		Category: types.FeedbackCategories[fm.category],
	}
}

func (fm *formModel) focusField(field formField) {
	fm.focus = field
	fm.name.Blur()
	fm.email.Blur()
	fm.subject.Blur()
	fm.message.Blur()
	switch field {
	case fieldName:
		fm.name.Focus()
	case fieldEmail:
		fm.email.Focus()
	case fieldSubject:
		fm.subject.Focus()
	case fieldMessage:
		fm.message.Focus()
	}
}

func (fm *formModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if fm.form.State() != submission.StateEditing {
		return nil
	}

	switch {
	case key.Matches(msg, fm.keys.Submit):
		return fm.submit()
	case key.Matches(msg, fm.keys.Next):
		fm.focusField((fm.focus + 1) % fieldCount)
		return nil
	case key.Matches(msg, fm.keys.Prev):
		fm.focusField((fm.focus + fieldCount - 1) % fieldCount)
		return nil
	}

	var cmd tea.Cmd
	switch fm.focus {
	case fieldName:
		fm.name, cmd = fm.name.Update(msg)
	case fieldEmail:
		fm.email, cmd = fm.email.Update(msg)
	case fieldSubject:
		fm.subject, cmd = fm.subject.Update(msg)
	case fieldMessage:
		fm.message, cmd = fm.message.Update(msg)
	case fieldRating:
		fm.adjustRating(msg)
	case fieldCategory:
		fm.adjustCategory(msg)
	}

	// Edits clear the messages of the fields they touch.
	_ = fm.form.SetDraft(fm.draft())
	return cmd
}

func (fm *formModel) adjustRating(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, fm.keys.Left):
		if fm.rating > 1 {
			fm.rating--
		}
	case key.Matches(msg, fm.keys.Right):
		if fm.rating < 5 {
			fm.rating++
		}
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
		if r := msg.Runes[0]; r >= '1' && r <= '5' {
			fm.rating = int(r - '0')
		}
	}
}

func (fm *formModel) adjustCategory(msg tea.KeyMsg) {
	n := len(types.FeedbackCategories)
	switch {
	case key.Matches(msg, fm.keys.Left):
		fm.category = (fm.category + n - 1) % n
	case key.Matches(msg, fm.keys.Right), msg.Type == tea.KeySpace:
		fm.category = (fm.category + 1) % n
	}
}

// submit runs Form.Submit off the UI goroutine; the submitter may wait out
// its simulated latency.
func (fm *formModel) submit() tea.Cmd {
	form, draft := fm.form, fm.draft()
	run := func() tea.Msg {
		res, err := form.Submit(context.Background(), draft)
		return submitResultMsg{form: form, result: res, err: err}
	}
	return tea.Batch(run, fm.spinner.Tick)
}

func (fm *formModel) updateSpinner(msg spinner.TickMsg) tea.Cmd {
	if fm.form.State() != submission.StateSubmitting {
		return nil
	}
	var cmd tea.Cmd
	fm.spinner, cmd = fm.spinner.Update(msg)
	return cmd
}

func (fm *formModel) View() string {
	s := fm.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("New feedback"))
	b.WriteString("\n\n")

	switch fm.form.State() {
	case submission.StateSubmitted:
		b.WriteString(s.Success.Render("Thank you for your feedback!"))
		b.WriteString("\n")
		if record := fm.form.Record(); record != nil {
			b.WriteString(s.Muted.Render(fmt.Sprintf("Reference %s. A confirmation email is on its way to %s.", record.ID, record.Email)))
			b.WriteString("\n")
		}
		return b.String()
	case submission.StateSubmitting:
		b.WriteString(fm.spinner.View())
		b.WriteString(" Submitting...\n")
		return b.String()
	}

	errs := fm.form.Errors()
	for field := fieldName; field < fieldCount; field++ {
		label := s.Label.Render(field.label())
		if field == fm.focus {
			label = s.Selected.Render(field.label())
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(fm.fieldView(field))
		b.WriteString("\n")
		if msg, ok := errs[field.errorKey()]; ok {
			b.WriteString(s.Error.Render(msg))
			b.WriteString("\n")
		}
	}
	if msg, ok := errs[submission.SubmitErrorField]; ok {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fm.help.View(fm.keys))
	return b.String()
}

func (fm *formModel) fieldView(field formField) string {
	switch field {
	case fieldName:
		return fm.name.View()
	case fieldEmail:
		return fm.email.View()
	case fieldSubject:
		return fm.subject.View()
	case fieldMessage:
		return fm.message.View()
	case fieldRating:
		if fm.rating == 0 {
			return fm.styles.Muted.Render("not rated (1-5)")
		}
		return strings.Repeat("★", fm.rating) + strings.Repeat("☆", 5-fm.rating)
	case fieldCategory:
		return "< " + string(types.FeedbackCategories[fm.category]) + " >"
	}
	return ""
}
