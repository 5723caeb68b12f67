package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hazboun-backend/application/queries"
	querybus "hazboun-backend/application/queries/bus"
	"hazboun-backend/pkg/errors"
)

// ViewHandler serves the read-only views: tree, map, branches, history,
// overview and the add-member form choices.
type ViewHandler struct {
	responder
	queries QueryAsker
}

// NewViewHandler creates a new view handler
func NewViewHandler(qs QueryAsker, versioner Versioner, errs *errors.ErrorHandler, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		responder: newResponder(errs, versioner, logger),
		queries:   qs,
	}
}

// FamilyTree handles GET /tree?expanded=1,2. "expanded=none" collapses every
// generation; no parameter uses the catalog default.
func (h *ViewHandler) FamilyTree(w http.ResponseWriter, r *http.Request) {
	expanded, err := parseGenerations(r.URL.Query().Get("expanded"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ask(w, r, queries.GetFamilyTreeQuery{Expanded: expanded})
}

// Countries handles GET /locations
func (h *ViewHandler) Countries(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetCountryStatsQuery{Search: r.URL.Query().Get("search")})
}

// CountryMembers handles GET /locations/{country}/members
func (h *ViewHandler) CountryMembers(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	if unescaped, err := url.PathUnescape(country); err == nil {
		country = unescaped
	}
	h.ask(w, r, queries.GetCountryMembersQuery{Country: country})
}

// ResolveCountry handles GET /locations/resolve?name=
func (h *ViewHandler) ResolveCountry(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ResolveCountryQuery{Name: r.URL.Query().Get("name")})
}

// Branches handles GET /branches
func (h *ViewHandler) Branches(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetBranchStatsQuery{})
}

// History handles GET /history
func (h *ViewHandler) History(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetFamilyHistoryQuery{})
}

// Overview handles GET /overview
func (h *ViewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetOverviewQuery{})
}

// FormOptions handles GET /form-options?generation=
func (h *ViewHandler) FormOptions(w http.ResponseWriter, r *http.Request) {
	generation := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("generation")); raw != "" {
		g, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, errors.NewValidationError("generation must be a whole number"))
			return
		}
		generation = g
	}
	h.ask(w, r, queries.GetFormOptionsQuery{Generation: generation})
}

func (h *ViewHandler) ask(w http.ResponseWriter, r *http.Request, q querybus.Query) {
	result, err := h.queries.Ask(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

func parseGenerations(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return nil, nil
	case "none":
		return []int{}, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		g, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.NewValidationError("expanded must list generation numbers")
		}
		out = append(out, g)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}
