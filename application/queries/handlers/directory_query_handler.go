package handlers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"hazboun-backend/application/ports"
	"hazboun-backend/application/queries"
	"hazboun-backend/application/services"
	"hazboun-backend/application/state"
	"hazboun-backend/domain/config"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
	domainservices "hazboun-backend/domain/services"
	"hazboun-backend/pkg/errors"
)

// ExportContentType is the media type of the export file.
const ExportContentType = "application/json"

// DirectoryQueryHandler serves every read view. Views are recomputed from a
// snapshot on each call.
type DirectoryQueryHandler struct {
	directory *state.Directory
	catalog   ports.CatalogProvider
	logger    *zap.Logger
}

// NewDirectoryQueryHandler creates a new query handler
func NewDirectoryQueryHandler(directory *state.Directory, catalog ports.CatalogProvider, logger *zap.Logger) *DirectoryQueryHandler {
	return &DirectoryQueryHandler{
		directory: directory,
		catalog:   catalog,
		logger:    logger,
	}
}

// snapshot returns the members and the catalog in force, or the reason the
// directory cannot be read.
func (h *DirectoryQueryHandler) snapshot() ([]entities.FamilyMember, *config.DomainConfig, valueobjects.CountryNormalizer, error) {
	if err := h.directory.Ready(); err != nil {
		return nil, nil, valueobjects.CountryNormalizer{}, err
	}
	cfg := h.catalog.Current()
	return h.directory.Snapshot(), cfg, valueobjects.NewCountryNormalizer(cfg.CountryAliases), nil
}

// HandleListMembers handles ListMembersQuery
func (h *DirectoryQueryHandler) HandleListMembers(_ context.Context, q queries.ListMembersQuery) (*queries.MemberList, error) {
	members, _, n, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	filtered := domainservices.FilterMembers(members, domainservices.MemberFilter{
		Search:  q.Search,
		Country: q.Country,
		Branch:  q.Branch,
	}, n)
	return &queries.MemberList{
		Members:   nonNil(filtered),
		Total:     len(filtered),
		Branches:  domainservices.UniqueBranches(members),
		Countries: domainservices.UniqueCountries(members, n),
	}, nil
}

// HandleGetMember handles GetMemberQuery
func (h *DirectoryQueryHandler) HandleGetMember(_ context.Context, q queries.GetMemberQuery) (*queries.MemberDetail, error) {
	members, _, _, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	m, ok := domainservices.FindMember(members, strings.TrimSpace(q.MemberID))
	if !ok {
		return nil, errors.NewNotFoundError("family member")
	}
	return &queries.MemberDetail{
		Member:         m,
		Parents:        nonNil(domainservices.ParentsOf(members, m)),
		Children:       nonNil(domainservices.ChildrenOf(members, m.ID)),
		MissingParents: domainservices.DanglingParents(members, m),
	}, nil
}

// HandleGetFamilyTree handles GetFamilyTreeQuery
func (h *DirectoryQueryHandler) HandleGetFamilyTree(_ context.Context, q queries.GetFamilyTreeQuery) (*queries.FamilyTree, error) {
	members, cfg, _, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	expanded := q.Expanded
	if expanded == nil {
		expanded = cfg.ExpandedGenerations
	}
	open := make(map[int]bool, len(expanded))
	for _, g := range expanded {
		open[g] = true
	}

	bands := domainservices.GroupByGeneration(members).Bands()
	tree := &queries.FamilyTree{Bands: make([]queries.TreeBand, 0, len(bands)), Total: len(members)}
	for _, b := range bands {
		tree.Bands = append(tree.Bands, queries.TreeBand{
			Generation: b.Generation,
			Expanded:   open[b.Generation],
			Count:      len(b.Members),
			Members:    b.Members,
		})
	}
	return tree, nil
}

// HandleGetCountryStats handles GetCountryStatsQuery
func (h *DirectoryQueryHandler) HandleGetCountryStats(_ context.Context, q queries.GetCountryStatsQuery) (*queries.CountryStats, error) {
	members, cfg, n, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	groups := domainservices.GroupByCountry(members, n)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := &queries.CountryStats{
		Countries:      []queries.CountryStat{},
		TotalCountries: len(groups),
		TotalCities:    domainservices.TotalCities(groups),
	}
	for _, g := range domainservices.SortGroups(groups) {
		if search != "" && !strings.Contains(strings.ToLower(g.Key), search) {
			continue
		}
		level := domainservices.DensityLevel(g.MemberCount())
		out.Countries = append(out.Countries, queries.CountryStat{
			Country: g.Key,
			Members: g.MemberCount(),
			Cities:  cityCounts(g),
			Level:   level,
			Color:   cfg.DensityColor(level),
		})
	}
	return out, nil
}

// HandleGetCountryMembers handles GetCountryMembersQuery
func (h *DirectoryQueryHandler) HandleGetCountryMembers(_ context.Context, q queries.GetCountryMembersQuery) (*queries.CountryMembers, error) {
	members, _, n, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	return &queries.CountryMembers{
		Country: n.Canonical(q.Country),
		Members: nonNil(domainservices.MembersInCountry(members, n, q.Country)),
	}, nil
}

// HandleGetBranchStats handles GetBranchStatsQuery
func (h *DirectoryQueryHandler) HandleGetBranchStats(_ context.Context, _ queries.GetBranchStatsQuery) ([]queries.BranchStat, error) {
	members, _, n, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	groups := domainservices.SortGroups(domainservices.GroupByBranch(members, n))
	out := make([]queries.BranchStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, queries.BranchStat{
			Branch:    g.Key,
			Members:   g.MemberCount(),
			Countries: g.Countries,
			Cities:    cityCounts(g),
		})
	}
	return out, nil
}

// HandleGetFamilyHistory handles GetFamilyHistoryQuery
func (h *DirectoryQueryHandler) HandleGetFamilyHistory(_ context.Context, _ queries.GetFamilyHistoryQuery) (*queries.FamilyHistory, error) {
	members, cfg, n, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	return &queries.FamilyHistory{
		Branches: domainservices.BranchHistories(members, n, cfg),
		Timeline: append([]config.TimelineEvent(nil), cfg.Timeline...),
	}, nil
}

// HandleGetOverview handles GetOverviewQuery
func (h *DirectoryQueryHandler) HandleGetOverview(_ context.Context, _ queries.GetOverviewQuery) (*domainservices.Overview, error) {
	members, _, n, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	o := domainservices.Summarize(members, n)
	return &o, nil
}

// HandleGetFormOptions handles GetFormOptionsQuery. The form works from the
// catalog alone, so candidate parents are empty until the directory loads.
func (h *DirectoryQueryHandler) HandleGetFormOptions(_ context.Context, q queries.GetFormOptionsQuery) (*queries.FormOptions, error) {
	cfg := h.catalog.Current()
	out := &queries.FormOptions{
		Branches:         append([]string(nil), cfg.Branches...),
		Countries:        cfg.SortedCountries(),
		MinGeneration:    cfg.MinGeneration,
		MaxGeneration:    cfg.MaxGeneration,
		CandidateParents: []queries.ParentOption{},
	}
	if q.Generation <= 0 || h.directory.Ready() != nil {
		return out, nil
	}
	for _, m := range domainservices.CandidateParents(h.directory.Snapshot(), q.Generation) {
		out.CandidateParents = append(out.CandidateParents, queries.ParentOption{ID: m.ID, Name: m.Name, Generation: m.Generation})
	}
	return out, nil
}

// HandleExportDirectory handles ExportDirectoryQuery
func (h *DirectoryQueryHandler) HandleExportDirectory(_ context.Context, _ queries.ExportDirectoryQuery) (*queries.ExportFile, error) {
	members, cfg, _, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	data, err := services.EncodeDirectory(members)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode directory").WithCause(err)
	}
	h.logger.Debug("Directory exported", zap.Int("members", len(members)), zap.Int("bytes", len(data)))
	return &queries.ExportFile{
		FileName:    cfg.ExportFileName,
		ContentType: ExportContentType,
		Data:        data,
		Members:     len(members),
	}, nil
}

// HandleResolveCountry handles ResolveCountryQuery
func (h *DirectoryQueryHandler) HandleResolveCountry(_ context.Context, q queries.ResolveCountryQuery) (*queries.CountryResolution, error) {
	members, cfg, n, err := h.snapshot()
	if err != nil {
		return nil, err
	}
	country := n.Canonical(q.Name)
	count := domainservices.CountryCounts(members, n)[country]
	level := domainservices.DensityLevel(count)
	return &queries.CountryResolution{
		Input:   strings.TrimSpace(q.Name),
		Country: country,
		Alias:   n.IsKnownAlias(q.Name),
		Members: count,
		Level:   level,
		Color:   cfg.DensityColor(level),
	}, nil
}

// HandleGetDirectoryStatus handles GetDirectoryStatusQuery
func (h *DirectoryQueryHandler) HandleGetDirectoryStatus(_ context.Context, _ queries.GetDirectoryStatusQuery) (state.Info, error) {
	return h.directory.Info(), nil
}

func cityCounts(g *domainservices.Group) []queries.CityCount {
	out := make([]queries.CityCount, 0, len(g.Cities))
	for _, c := range g.CityNames() {
		out = append(out, queries.CityCount{City: c, Members: g.Cities[c]})
	}
	return out
}

func nonNil(members []entities.FamilyMember) []entities.FamilyMember {
	if members == nil {
		return []entities.FamilyMember{}
	}
	return members
}
