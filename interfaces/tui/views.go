package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hazboun-backend/domain/core/entities"
)

func (m *Model) View() string {
	switch m.phase {
	case phaseLoading:
		return fmt.Sprintf("\n  %s Loading family directory...\n", m.spinner.View())
	case phaseError:
		return "\n  " + errorStyle.Render("Could not load the family directory") + "\n\n  " +
			errorText(m.err) + "\n\n  " + mutedStyle.Render("r retry • q quit") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Hazboun Family Directory"))
	if o := m.data.overview; o != nil {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d members · %d countries · %d cities · %d branches · %d generations",
			o.TotalMembers, o.TotalCountries, o.TotalCities, o.TotalBranches, o.MaxGeneration)))
	}
	b.WriteString("\n\n")

	if m.form != nil {
		b.WriteString(panelStyle.Render(m.form.View()))
		b.WriteString("\n" + m.help.View(m.form.keys))
		return b.String()
	}

	tabs := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if tab(i) == m.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	var body string
	switch m.tab {
	case tabMembers:
		body = m.membersView()
	case tabTree:
		body = m.treeView()
	case tabPlaces:
		body = m.placesView()
	case tabHistory:
		body = m.historyView()
	}
	if m.detail != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", panelStyle.Render(m.detailView()))
	}
	b.WriteString(body)
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(okStyle.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) line(i int, s string) string {
	if i == m.cursor {
		return selectedStyle.Render("> "+s) + "\n"
	}
	return "  " + s + "\n"
}

func memberLine(fm entities.FamilyMember) string {
	s := fmt.Sprintf("%s  %s, %s  (gen %d, %s)", fm.Name, fm.Location, fm.Country, fm.Generation, fm.Branch)
	if fm.Profession != "" {
		s += " · " + fm.Profession
	}
	return s
}

func (m *Model) membersView() string {
	var b strings.Builder
	b.WriteString(m.search.View() + "\n\n")
	if len(m.members) == 0 {
		b.WriteString(mutedStyle.Render("  No family members found") + "\n")
		return b.String()
	}
	for i, fm := range m.members {
		b.WriteString(m.line(i, memberLine(fm)))
	}
	return b.String()
}

func (m *Model) treeView() string {
	if len(m.treeRows) == 0 {
		return mutedStyle.Render("  No family members yet") + "\n"
	}
	var b strings.Builder
	for i, row := range m.treeRows {
		if row.member != nil {
			b.WriteString(m.line(i, "    "+memberLine(*row.member)))
			continue
		}
		band := m.data.tree.Bands[row.band]
		marker := "▸"
		if band.Expanded {
			marker = "▾"
		}
		b.WriteString(m.line(i, sectionStyle.Render(fmt.Sprintf("%s Generation %d (%d)", marker, band.Generation, band.Count))))
	}
	return b.String()
}

func (m *Model) placesView() string {
	places := m.data.places
	if places == nil || len(places.Countries) == 0 {
		return mutedStyle.Render("  No locations yet") + "\n"
	}
	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d countries, %d cities", places.TotalCountries, places.TotalCities)) + "\n\n")
	for i, c := range places.Countries {
		name := densityStyle(c.Color).Render("● ") + fmt.Sprintf("%s  %d members  (density %d)", c.Country, c.Members, c.Level)
		b.WriteString(m.line(i, name))
		if i != m.cursor {
			continue
		}
		for _, city := range c.Cities {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("      %s  %d", city.City, city.Members)) + "\n")
		}
	}
	return b.String()
}

func (m *Model) historyView() string {
	history := m.data.history
	if history == nil {
		return ""
	}
	var b strings.Builder
	for i, br := range history.Branches {
		b.WriteString(m.line(i, fmt.Sprintf("%s branch  %d members  %s", br.Name, len(br.Members), strings.Join(br.Countries, ", "))))
		if i != m.cursor {
			continue
		}
		if br.Origin != "" || br.Destination != "" {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("      %s → %s  %s", br.Origin, br.Destination, br.MigrationPeriod)) + "\n")
		}
		if br.Story != "" {
			b.WriteString("      " + br.Story + "\n")
		}
		if br.HistoricalNotes != "" {
			b.WriteString(mutedStyle.Render("      "+br.HistoricalNotes) + "\n")
		}
	}
	if len(history.Timeline) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Timeline") + "\n")
		for _, ev := range history.Timeline {
			b.WriteString(fmt.Sprintf("  %-12s %s\n", ev.Period, ev.Event))
		}
	}
	return b.String()
}

func (m *Model) detailView() string {
	d := m.detail
	var b strings.Builder
	b.WriteString(sectionStyle.Render(d.Member.Name) + "\n")
	b.WriteString(labelStyle.Render("Lives in") + d.Member.Location + ", " + d.Member.Country + "\n")
	if d.Member.BirthYear != nil {
		b.WriteString(labelStyle.Render("Born") + fmt.Sprint(*d.Member.BirthYear) + "\n")
	}
	for _, f := range []struct{ label, value string }{
		{"Profession", d.Member.Profession},
		{"Email", d.Member.Email},
		{"Phone", d.Member.Phone},
	} {
		if f.value != "" {
			b.WriteString(labelStyle.Render(f.label) + f.value + "\n")
		}
	}
	b.WriteString(labelStyle.Render("Parents") + names(d.Parents) + "\n")
	b.WriteString(labelStyle.Render("Children") + names(d.Children) + "\n")
	if d.Member.Bio != "" {
		b.WriteString("\n" + d.Member.Bio + "\n")
	}
	return b.String()
}

func names(members []entities.FamilyMember) string {
	if len(members) == 0 {
		return mutedStyle.Render("none recorded")
	}
	out := make([]string, len(members))
	for i, fm := range members {
		out[i] = fm.Name
	}
	return strings.Join(out, ", ")
}
