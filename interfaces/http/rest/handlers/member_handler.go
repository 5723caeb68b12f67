package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/queries"
	"hazboun-backend/domain/core/validators"
	"hazboun-backend/pkg/auth"
	"hazboun-backend/pkg/errors"
)

// MemberHandler handles member-related HTTP requests
type MemberHandler struct {
	responder
	commands CommandDispatcher
	queries  QueryAsker
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(cmds CommandDispatcher, qs QueryAsker, versioner Versioner, errs *errors.ErrorHandler, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{
		responder: newResponder(errs, versioner, logger),
		commands:  cmds,
		queries:   qs,
	}
}

// AddMemberRequest is the add-member form. Numbers may be sent as text.
type AddMemberRequest struct {
	Name       text     `json:"name"`
	BirthYear  text     `json:"birthYear"`
	Location   text     `json:"location"`
	Country    text     `json:"country"`
	Email      text     `json:"email"`
	Phone      text     `json:"phone"`
	Profession text     `json:"profession"`
	Branch     text     `json:"branch"`
	Generation text     `json:"generation"`
	Parents    []string `json:"parents"`
	Bio        text     `json:"bio"`
}

func (req AddMemberRequest) input() validators.MemberInput {
	return validators.MemberInput{
		Name:       string(req.Name),
		BirthYear:  string(req.BirthYear),
		Location:   string(req.Location),
		Country:    string(req.Country),
		Email:      string(req.Email),
		Phone:      string(req.Phone),
		Profession: string(req.Profession),
		Branch:     string(req.Branch),
		Generation: string(req.Generation),
		Parents:    req.Parents,
		Bio:        string(req.Bio),
	}
}

// UpdateMemberRequest is a partial update. Absent or null fields are left
// alone; an empty birthYear clears it.
type UpdateMemberRequest struct {
	Name       *text     `json:"name"`
	BirthYear  *text     `json:"birthYear"`
	Location   *text     `json:"location"`
	Country    *text     `json:"country"`
	Email      *text     `json:"email"`
	Phone      *text     `json:"phone"`
	Profession *text     `json:"profession"`
	Branch     *text     `json:"branch"`
	Generation *text     `json:"generation"`
	Parents    *[]string `json:"parents"`
	Bio        *text     `json:"bio"`
}

func (req UpdateMemberRequest) input() validators.MemberPatchInput {
	return validators.MemberPatchInput{
		Name:       req.Name.ptr(),
		BirthYear:  req.BirthYear.ptr(),
		Location:   req.Location.ptr(),
		Country:    req.Country.ptr(),
		Email:      req.Email.ptr(),
		Phone:      req.Phone.ptr(),
		Profession: req.Profession.ptr(),
		Branch:     req.Branch.ptr(),
		Generation: req.Generation.ptr(),
		Parents:    req.Parents,
		Bio:        req.Bio.ptr(),
	}
}

// ListMembers handles GET /members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.queries.Ask(r.Context(), queries.ListMembersQuery{
		Search:  q.Get("search"),
		Country: q.Get("country"),
		Branch:  q.Get("branch"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, ok := result.(*queries.MemberList)
	if !ok {
		h.fail(w, r, errors.NewInternalError("unexpected member list result"))
		return
	}
	total := list.Total
	h.respond(w, r, http.StatusOK, list, &total)
}

// GetMember handles GET /members/{memberID}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	result, err := h.queries.Ask(r.Context(), queries.GetMemberQuery{MemberID: chi.URLParam(r, "memberID")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

// AddMember handles POST /members
func (h *MemberHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.commands.Dispatch(r.Context(), commands.AddMemberCommand{Input: req.input()})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("Member added via API", zap.String("editor", editor(r)))
	h.respond(w, r, http.StatusCreated, result, nil)
}

// UpdateMember handles PATCH /members/{memberID}
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	memberID := chi.URLParam(r, "memberID")
	result, err := h.commands.Dispatch(r.Context(), commands.UpdateMemberCommand{
		MemberID: memberID,
		Input:    req.input(),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("Member updated via API", zap.String("memberID", memberID), zap.String("editor", editor(r)))
	h.respond(w, r, http.StatusOK, result, nil)
}

// DeleteMember handles DELETE /members/{memberID}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")
	if _, err := h.commands.Dispatch(r.Context(), commands.DeleteMemberCommand{MemberID: memberID}); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("Member deleted via API", zap.String("memberID", memberID), zap.String("editor", editor(r)))
	w.WriteHeader(http.StatusNoContent)
}

// editor names the authenticated caller, or "anonymous" when admin auth is off.
func editor(r *http.Request) string {
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		return user.UserID
	}
	return "anonymous"
}
