package services

import (
	"sort"

	"hazboun-backend/domain/core/entities"
)

// Relationship lookups are linear scans over the directory. Parent ids that
// match no member are ignored rather than reported.

// ChildrenOf returns every member that lists id among its parents, in
// directory order.
func ChildrenOf(members []entities.FamilyMember, id string) []entities.FamilyMember {
	var out []entities.FamilyMember
	if id == "" {
		return out
	}
	for _, m := range members {
		if m.HasParent(id) {
			out = append(out, m)
		}
	}
	return out
}

// ParentsOf returns the members whose id appears in member.Parents, in
// directory order.
func ParentsOf(members []entities.FamilyMember, member entities.FamilyMember) []entities.FamilyMember {
	var out []entities.FamilyMember
	if len(member.Parents) == 0 {
		return out
	}
	for _, m := range members {
		if member.HasParent(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// FindMember looks a member up by id.
func FindMember(members []entities.FamilyMember, id string) (entities.FamilyMember, bool) {
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return entities.FamilyMember{}, false
}

// DanglingParents lists parent ids of member that match nobody in the
// directory. Useful for data-quality reports; lookups never fail on them.
func DanglingParents(members []entities.FamilyMember, member entities.FamilyMember) []string {
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}
	var out []string
	for _, p := range member.Parents {
		if !known[p] {
			out = append(out, p)
		}
	}
	return out
}

// GenerationGroups maps a generation number to its members in directory order.
type GenerationGroups map[int][]entities.FamilyMember

// GroupByGeneration partitions the directory by generation. Whatever values
// are present are used as is; gaps and out-of-range values are fine.
func GroupByGeneration(members []entities.FamilyMember) GenerationGroups {
	groups := GenerationGroups{}
	for _, m := range members {
		groups[m.Generation] = append(groups[m.Generation], m)
	}
	return groups
}

// Generations returns the generation numbers present, ascending.
func (g GenerationGroups) Generations() []int {
	out := make([]int, 0, len(g))
	for gen := range g {
		out = append(out, gen)
	}
	sort.Ints(out)
	return out
}

// SortedGenerations is the free-function form of Generations.
func SortedGenerations(groups GenerationGroups) []int {
	return groups.Generations()
}

// GenerationBand is one row of the tree view.
type GenerationBand struct {
	Generation int                     `json:"generation"`
	Members    []entities.FamilyMember `json:"members"`
}

// Bands returns the groups as ordered tree rows.
func (g GenerationGroups) Bands() []GenerationBand {
	gens := g.Generations()
	out := make([]GenerationBand, 0, len(gens))
	for _, gen := range gens {
		out = append(out, GenerationBand{Generation: gen, Members: g[gen]})
	}
	return out
}

// CandidateParents lists members that could be chosen as parents for someone
// of the given generation: everyone from an earlier generation.
func CandidateParents(members []entities.FamilyMember, generation int) []entities.FamilyMember {
	var out []entities.FamilyMember
	for _, m := range members {
		if m.Generation < generation {
			out = append(out, m)
		}
	}
	return out
}
