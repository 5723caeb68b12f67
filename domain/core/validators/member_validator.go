package validators

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hazboun-backend/domain/config"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
	"hazboun-backend/pkg/errors"
	"hazboun-backend/pkg/utils"
)

// MemberInput is the add-member form as typed: every field is text.
type MemberInput struct {
	Name       string   `json:"name" validate:"notblank"`
	BirthYear  string   `json:"birthYear"`
	Location   string   `json:"location" validate:"notblank"`
	Country    string   `json:"country" validate:"notblank"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Profession string   `json:"profession"`
	Branch     string   `json:"branch" validate:"notblank"`
	Generation string   `json:"generation" validate:"notblank"`
	Parents    []string `json:"parents"`
	Bio        string   `json:"bio"`
}

// MemberPatchInput is a partial update as received. Nil fields are untouched.
type MemberPatchInput struct {
	Name       *string
	BirthYear  *string
	Location   *string
	Country    *string
	Email      *string
	Phone      *string
	Profession *string
	Branch     *string
	Generation *string
	Parents    *[]string
	Bio        *string
}

// MemberValidator applies the entry rules for new and edited members.
type MemberValidator struct {
	generations       valueobjects.GenerationRange
	earliestBirthYear int
	now               func() time.Time
}

// NewMemberValidator creates a validator from the catalog's entry rules.
func NewMemberValidator(cfg *config.DomainConfig) *MemberValidator {
	return &MemberValidator{
		generations:       valueobjects.GenerationRange{Min: cfg.MinGeneration, Max: cfg.MaxGeneration},
		earliestBirthYear: cfg.EarliestBirthYear,
		now:               time.Now,
	}
}

// Generations returns the accepted generation range.
func (v *MemberValidator) Generations() valueobjects.GenerationRange {
	return v.generations
}

// GenerationMessage is shown when the generation is missing its bounds.
func (v *MemberValidator) GenerationMessage() string {
	return fmt.Sprintf("Generation must be a valid number between %d and %d", v.generations.Min, v.generations.Max)
}

// RequireFields checks that every required field holds something other than
// whitespace. It needs no configuration.
func RequireFields(in MemberInput) error {
	if fields := utils.FieldErrors(in); len(fields) > 0 {
		return errors.NewFieldValidationError(errors.MessageRequired, fields)
	}
	return nil
}

// ValidateDraft checks a form submission and converts it to a draft.
func (v *MemberValidator) ValidateDraft(in MemberInput) (entities.MemberDraft, error) {
	if err := RequireFields(in); err != nil {
		return entities.MemberDraft{}, err
	}

	fields := map[string]string{}
	message := ""

	generation, err := v.generations.Parse(in.Generation)
	if err != nil {
		fields["generation"] = err.Error()
		message = v.GenerationMessage()
	}

	birthYear, err := v.parseBirthYear(in.BirthYear)
	if err != nil {
		fields["birthYear"] = err.Error()
	}

	email := strings.TrimSpace(in.Email)
	if err := validateEmail(email); err != nil {
		fields["email"] = err.Error()
	}

	if len(fields) > 0 {
		if message == "" {
			message = firstFieldMessage(fields)
		}
		return entities.MemberDraft{}, errors.NewFieldValidationError(message, fields)
	}

	return entities.MemberDraft{
		Name:       strings.TrimSpace(in.Name),
		BirthYear:  birthYear,
		Location:   strings.TrimSpace(in.Location),
		Country:    strings.TrimSpace(in.Country),
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		Profession: strings.TrimSpace(in.Profession),
		Branch:     strings.TrimSpace(in.Branch),
		Generation: generation,
		Parents:    cleanParents(in.Parents),
		Bio:        strings.TrimSpace(in.Bio),
	}, nil
}

// ValidatePatch checks a partial update for member id.
func (v *MemberValidator) ValidatePatch(id string, in MemberPatchInput) (entities.MemberPatch, error) {
	var patch entities.MemberPatch
	fields := map[string]string{}
	message := ""

	required := func(name string, value *string, dst **string) {
		if value == nil {
			return
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			fields[name] = name + " is required"
			message = errors.MessageRequired
			return
		}
		*dst = &trimmed
	}
	optional := func(value *string, dst **string) {
		if value == nil {
			return
		}
		trimmed := strings.TrimSpace(*value)
		*dst = &trimmed
	}

	required("name", in.Name, &patch.Name)
	required("location", in.Location, &patch.Location)
	required("country", in.Country, &patch.Country)
	required("branch", in.Branch, &patch.Branch)
	optional(in.Phone, &patch.Phone)
	optional(in.Profession, &patch.Profession)
	optional(in.Bio, &patch.Bio)

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validateEmail(email); err != nil {
			fields["email"] = err.Error()
		} else {
			patch.Email = &email
		}
	}

	if in.Generation != nil {
		g, err := v.generations.Parse(*in.Generation)
		if err != nil {
			fields["generation"] = err.Error()
			if message == "" {
				message = v.GenerationMessage()
			}
		} else {
			patch.Generation = &g
		}
	}

	if in.BirthYear != nil {
		year, err := v.parseBirthYear(*in.BirthYear)
		if err != nil {
			fields["birthYear"] = err.Error()
		} else {
			patch.BirthYear = &year
		}
	}

	if in.Parents != nil {
		parents := cleanParents(*in.Parents)
		for _, p := range parents {
			if p == id {
				fields["parents"] = "a member cannot be their own parent"
			}
		}
		patch.Parents = &parents
	}

	if len(fields) > 0 {
		if message == "" {
			message = firstFieldMessage(fields)
		}
		return entities.MemberPatch{}, errors.NewFieldValidationError(message, fields)
	}
	if patch.IsEmpty() {
		return patch, errors.NewValidationError("no fields to update")
	}
	return patch, nil
}

func (v *MemberValidator) parseBirthYear(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("birth year %q is not a whole number", raw)
	}
	latest := v.now().Year()
	if year < v.earliestBirthYear || year > latest {
		return nil, fmt.Errorf("birth year must be between %d and %d", v.earliestBirthYear, latest)
	}
	return &year, nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if err := utils.ValidateVar(email, "email"); err != nil {
		return fmt.Errorf("email must be a valid email")
	}
	return nil
}

func cleanParents(ids []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// firstFieldMessage picks a stable message when several fields failed.
func firstFieldMessage(fields map[string]string) string {
	for _, name := range []string{"name", "location", "country", "branch", "generation", "birthYear", "email", "parents"} {
		if msg, ok := fields[name]; ok {
			return msg
		}
	}
	for _, msg := range fields {
		return msg
	}
	return "invalid member"
}
