package model

import "strings"

// Supervisor list sort orders.
const (
	SortRecent     = "recent"
	SortExperience = "experience"
	SortFeeAsc     = "fee_asc"
	SortFeeDesc    = "fee_desc"
	SortName       = "name"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

// SupervisorFilter is the composed search query for supervisor profiles:
// one free-text term plus categorical and boolean facets.
// Empty strings and nil pointers mean "no constraint".
type SupervisorFilter struct {
	Search           string
	Gender           string
	Region           string
	Certification    string
	TargetGroup      string
	SupervisionType  string
	Specialty        string
	NationalProgram  *bool
	OnlineAvailable  *bool
	OfflineAvailable *bool
	MaxFee           int
	Sort             string
	Limit            int
	Offset           int

	// Status restricts profiles by approval state. Public listings pin it to
	// approved; it is never read from the query string.
	Status AccountStatus
}

// facetAny reports whether v is a facet value meaning "everything".
func facetAny(v string) bool {
	switch strings.ToLower(v) {
	case "", "all", "전체":
		return true
	}
	return false
}

func normalizeFacet(v string) string {
	v = strings.TrimSpace(v)
	if facetAny(v) {
		return ""
	}
	return v
}

// Normalize returns a copy with trimmed values, "all" facets cleared,
// whitespace in the search term collapsed, and paging clamped.
func (f SupervisorFilter) Normalize() SupervisorFilter {
	out := f
	out.Search = strings.Join(strings.Fields(f.Search), " ")
	out.Gender = strings.ToLower(normalizeFacet(f.Gender))
	out.Region = normalizeFacet(f.Region)
	out.Certification = normalizeFacet(f.Certification)
	out.TargetGroup = strings.ToLower(normalizeFacet(f.TargetGroup))
	out.SupervisionType = strings.ToLower(normalizeFacet(f.SupervisionType))
	out.Specialty = normalizeFacet(f.Specialty)
	if out.MaxFee < 0 {
		out.MaxFee = 0
	}

	switch f.Sort {
	case SortRecent, SortExperience, SortFeeAsc, SortFeeDesc, SortName:
	default:
		out.Sort = SortRecent
	}

	if out.Limit <= 0 {
		out.Limit = DefaultPageLimit
	}
	if out.Limit > MaxPageLimit {
		out.Limit = MaxPageLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

// Merge overlays the constraints set in other onto f. Partial updates from
// a single facet control leave the remaining facets untouched.
func (f SupervisorFilter) Merge(other SupervisorFilter) SupervisorFilter {
	out := f
	if other.Search != "" {
		out.Search = other.Search
	}
	mergeFacet(&out.Gender, other.Gender)
	mergeFacet(&out.Region, other.Region)
	mergeFacet(&out.Certification, other.Certification)
	mergeFacet(&out.TargetGroup, other.TargetGroup)
	mergeFacet(&out.SupervisionType, other.SupervisionType)
	mergeFacet(&out.Specialty, other.Specialty)
	if other.NationalProgram != nil {
		out.NationalProgram = other.NationalProgram
	}
	if other.OnlineAvailable != nil {
		out.OnlineAvailable = other.OnlineAvailable
	}
	if other.OfflineAvailable != nil {
		out.OfflineAvailable = other.OfflineAvailable
	}
	if other.MaxFee != 0 {
		out.MaxFee = other.MaxFee
	}
	if other.Sort != "" {
		out.Sort = other.Sort
	}
	if other.Limit != 0 {
		out.Limit = other.Limit
	}
	if other.Offset != 0 {
		out.Offset = other.Offset
	}
	if other.Status != "" {
		out.Status = other.Status
	}
	return out
}

// mergeFacet sets *dst from v. An explicit "all" clears the facet; an
// empty v leaves it alone.
func mergeFacet(dst *string, v string) {
	if v == "" {
		return
	}
	if facetAny(strings.TrimSpace(v)) {
		*dst = ""
		return
	}
	*dst = v
}

// IsZero reports whether no search constraint is active. Paging, sort and
// status do not count.
func (f SupervisorFilter) IsZero() bool {
	n := f.Normalize()
	return n.Search == "" &&
		n.Gender == "" &&
		n.Region == "" &&
		n.Certification == "" &&
		n.TargetGroup == "" &&
		n.SupervisionType == "" &&
		n.Specialty == "" &&
		n.NationalProgram == nil &&
		n.OnlineAvailable == nil &&
		n.OfflineAvailable == nil &&
		n.MaxFee == 0
}

// ArticleQuery filters the psychology article list.
type ArticleQuery struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// Normalize trims the query, treats "all" as no category and clamps paging.
func (q ArticleQuery) Normalize() ArticleQuery {
	out := q
	out.Category = normalizeFacet(q.Category)
	out.Search = strings.Join(strings.Fields(q.Search), " ")
	if out.Limit <= 0 {
		out.Limit = DefaultPageLimit
	}
	if out.Limit > MaxPageLimit {
		out.Limit = MaxPageLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}
