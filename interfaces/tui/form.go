package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"hazboun-backend/domain/core/validators"
	"hazboun-backend/domain/core/valueobjects"
	"hazboun-backend/pkg/errors"
)

type formField struct {
	name     string
	label    string
	required bool
	input    textinput.Model
}

// addForm collects a new member. Inputs survive a failed submit.
type addForm struct {
	fields      []formField
	focus       int
	keys        formKeyMap
	generations valueobjects.GenerationRange
	pending     bool
	message     string
	invalid     map[string]string
}

func newAddForm(generations valueobjects.GenerationRange) *addForm {
	specs := []struct {
		name, label, placeholder string
		required                 bool
		limit                    int
	}{
		{"name", "Name", "Full name", true, 120},
		{"birthYear", "Birth year", "e.g. 1957", false, 4},
		{"location", "City", "Amman", true, 80},
		{"country", "Country", "Jordan", true, 80},
		{"branch", "Branch", "Jerusalem", true, 80},
		{"generation", "Generation", generations.String(), true, 3},
		{"parents", "Parents", "ids, comma separated", false, 200},
		{"email", "Email", "", false, 120},
		{"phone", "Phone", "", false, 40},
		{"profession", "Profession", "", false, 80},
		{"bio", "Bio", "", false, 500},
	}

	f := &addForm{keys: defaultFormKeyMap(), generations: generations}
	for _, s := range specs {
		in := textinput.New()
		in.Placeholder = s.placeholder
		in.CharLimit = s.limit
		in.Width = 40
		f.fields = append(f.fields, formField{name: s.name, label: s.label, required: s.required, input: in})
	}
	f.fields[0].input.Focus()
	return f
}

func (f *addForm) value(name string) string {
	for _, field := range f.fields {
		if field.name == name {
			return field.input.Value()
		}
	}
	return ""
}

// Input renders the form the way the add command expects it.
func (f *addForm) Input() validators.MemberInput {
	var parents []string
	for _, p := range strings.Split(f.value("parents"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			parents = append(parents, p)
		}
	}
	return validators.MemberInput{
		Name:       f.value("name"),
		BirthYear:  f.value("birthYear"),
		Location:   f.value("location"),
		Country:    f.value("country"),
		Email:      f.value("email"),
		Phone:      f.value("phone"),
		Profession: f.value("profession"),
		Branch:     f.value("branch"),
		Generation: f.value("generation"),
		Parents:    parents,
		Bio:        f.value("bio"),
	}
}

// validate runs the checks that need no store round trip.
func (f *addForm) validate() bool {
	f.invalid = nil
	in := f.Input()
	if err := validators.RequireFields(in); err != nil {
		f.message = errorText(err)
		if appErr := errors.GetAppError(err); appErr != nil {
			f.invalid, _ = appErr.Details["fields"].(map[string]string)
		}
		return false
	}
	if _, err := f.generations.Parse(in.Generation); err != nil {
		f.message = fmt.Sprintf("Generation must be a valid number between %d and %d", f.generations.Min, f.generations.Max)
		f.invalid = map[string]string{"generation": f.message}
		return false
	}
	f.message = ""
	return true
}

func (f *addForm) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

// formAction tells the model what the key press asked for.
type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

func (f *addForm) Update(msg tea.KeyMsg) (formAction, tea.Cmd) {
	if f.pending {
		return formNone, nil
	}
	switch {
	case key.Matches(msg, f.keys.Cancel):
		return formCancel, nil
	case key.Matches(msg, f.keys.Submit):
		if !f.validate() {
			return formNone, nil
		}
		f.pending = true
		return formSubmit, nil
	case key.Matches(msg, f.keys.Next):
		return formNone, f.move(1)
	case key.Matches(msg, f.keys.Prev):
		return formNone, f.move(-1)
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return formNone, cmd
}

func (f *addForm) View() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Add family member"))
	b.WriteString("\n\n")
	for i, field := range f.fields {
		label := field.label
		if field.required {
			label += " *"
		}
		line := labelStyle.Render(label) + field.input.View()
		if i == f.focus {
			line = "> " + line
		} else {
			line = "  " + line
		}
		if _, bad := f.invalid[field.name]; bad {
			line += errorStyle.Render(" !")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	switch {
	case f.pending:
		b.WriteString(mutedStyle.Render("Saving..."))
	case f.message != "":
		b.WriteString(errorStyle.Render(f.message))
	}
	return b.String()
}
