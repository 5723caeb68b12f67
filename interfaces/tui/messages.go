package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/commands/bus"
	"hazboun-backend/application/queries"
	querybus "hazboun-backend/application/queries/bus"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/validators"
	domainservices "hazboun-backend/domain/services"
	"hazboun-backend/pkg/errors"
)

// requestTimeout bounds every store round trip started from the UI.
const requestTimeout = 30 * time.Second

// CommandDispatcher sends commands. *bus.CommandBus satisfies it.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd bus.Command) (interface{}, error)
}

// QueryAsker runs queries. *querybus.QueryBus satisfies it.
type QueryAsker interface {
	Ask(ctx context.Context, query querybus.Query) (interface{}, error)
}

// views is everything the tabs render, fetched together after each load.
type views struct {
	members  *queries.MemberList
	tree     *queries.FamilyTree
	places   *queries.CountryStats
	history  *queries.FamilyHistory
	overview *domainservices.Overview
	form     *queries.FormOptions
}

// loadedMsg ends a load attempt. seq ties it to the attempt that started it.
type loadedMsg struct {
	seq   int
	views views
	err   error
}

// refreshedMsg carries views re-read after a mutation.
type refreshedMsg struct {
	seq   int
	views views
	err   error
}

type searchMsg struct {
	search string
	list   *queries.MemberList
	err    error
}

type detailMsg struct {
	id     string
	detail *queries.MemberDetail
	err    error
}

type addedMsg struct {
	member entities.FamilyMember
	err    error
}

// loadCmd runs one connectivity probe and fetch through the reload command,
// then reads every view.
func loadCmd(ctx context.Context, cmds CommandDispatcher, qs QueryAsker, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		if _, err := cmds.Dispatch(ctx, commands.ReloadDirectoryCommand{}); err != nil {
			return loadedMsg{seq: seq, err: err}
		}
		v, err := readViews(ctx, qs)
		return loadedMsg{seq: seq, views: v, err: err}
	}
}

func refreshCmd(ctx context.Context, qs QueryAsker, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		v, err := readViews(ctx, qs)
		return refreshedMsg{seq: seq, views: v, err: err}
	}
}

func searchCmd(ctx context.Context, qs QueryAsker, search string) tea.Cmd {
	return func() tea.Msg {
		result, err := qs.Ask(ctx, queries.ListMembersQuery{Search: search})
		if err != nil {
			return searchMsg{search: search, err: err}
		}
		list, _ := result.(*queries.MemberList)
		return searchMsg{search: search, list: list}
	}
}

func detailCmd(ctx context.Context, qs QueryAsker, id string) tea.Cmd {
	return func() tea.Msg {
		result, err := qs.Ask(ctx, queries.GetMemberQuery{MemberID: id})
		if err != nil {
			return detailMsg{id: id, err: err}
		}
		detail, _ := result.(*queries.MemberDetail)
		return detailMsg{id: id, detail: detail}
	}
}

func addCmd(ctx context.Context, cmds CommandDispatcher, in validators.MemberInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		result, err := cmds.Dispatch(ctx, commands.AddMemberCommand{Input: in})
		if err != nil {
			return addedMsg{err: err}
		}
		member, _ := result.(entities.FamilyMember)
		return addedMsg{member: member}
	}
}

func readViews(ctx context.Context, qs QueryAsker) (views, error) {
	var v views
	steps := []struct {
		query querybus.Query
		into  func(interface{}) bool
	}{
		{queries.ListMembersQuery{}, func(r interface{}) (ok bool) { v.members, ok = r.(*queries.MemberList); return }},
		{queries.GetFamilyTreeQuery{}, func(r interface{}) (ok bool) { v.tree, ok = r.(*queries.FamilyTree); return }},
		{queries.GetCountryStatsQuery{}, func(r interface{}) (ok bool) { v.places, ok = r.(*queries.CountryStats); return }},
		{queries.GetFamilyHistoryQuery{}, func(r interface{}) (ok bool) { v.history, ok = r.(*queries.FamilyHistory); return }},
		{queries.GetOverviewQuery{}, func(r interface{}) (ok bool) { v.overview, ok = r.(*domainservices.Overview); return }},
		{queries.GetFormOptionsQuery{}, func(r interface{}) (ok bool) { v.form, ok = r.(*queries.FormOptions); return }},
	}
	for _, s := range steps {
		result, err := qs.Ask(ctx, s.query)
		if err != nil {
			return views{}, err
		}
		if !s.into(result) {
			return views{}, fmt.Errorf("unexpected result %T for %T", result, s.query)
		}
	}
	return v, nil
}

// errorText is the message shown for err, verbatim for application errors.
func errorText(err error) string {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}
