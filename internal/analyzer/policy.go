package analyzer

import "github.com/nick227/ssot-codegen/internal/schema"

// SpecialTag identifies a detected field shape that implies generable
// domain behavior downstream (slug lookup, publish toggling, etc.).
type SpecialTag string

const (
	TagSlug             SpecialTag = "slug"
	TagPublishedFlag    SpecialTag = "publishedFlag"
	TagViewCounter      SpecialTag = "viewCounter"
	TagApprovalFlag     SpecialTag = "approvalFlag"
	TagSoftDeleteMarker SpecialTag = "softDeleteMarker"
	TagParentReference  SpecialTag = "parentReference"
)

// JunctionPolicy holds the thresholds for junction-table detection.
// The detection is a heuristic; the thresholds are deliberately explicit
// and overridable per entity instead of baked-in constants.
type JunctionPolicy struct {
	// MinToOneRelations is the minimum number of to-one relations an
	// entity needs to qualify as a junction table.
	MinToOneRelations int

	// MaxScalarFields is the maximum number of non-relation,
	// non-identifier scalar fields a junction table may carry.
	MaxScalarFields int

	// Overrides forces the classification for named entities,
	// bypassing the heuristic entirely.
	Overrides map[string]bool
}

// FieldRule maps a field name/type combination to a special tag.
type FieldRule struct {
	Tag             SpecialTag
	Names           []string
	Type            schema.FieldType
	RequireUnique   bool
	RequireNullable bool
}

// MatchPolicy controls how field rules are matched against fields.
type MatchPolicy struct {
	// CaseSensitive requires exact-case name matches. Default is
	// case-insensitive so `Slug` and `slug` both match.
	CaseSensitive bool

	Rules []FieldRule
}

// Policy bundles all analyzer tuning knobs.
type Policy struct {
	Junction JunctionPolicy
	Match    MatchPolicy
}

// DefaultPolicy returns the stock analyzer policy: junction detection
// at two to-one relations and at most two scalar fields, and the
// built-in special-field table.
func DefaultPolicy() Policy {
	return Policy{
		Junction: JunctionPolicy{
			MinToOneRelations: 2,
			MaxScalarFields:   2,
		},
		Match: MatchPolicy{
			CaseSensitive: false,
			Rules: []FieldRule{
				{Tag: TagSlug, Names: []string{"slug"}, Type: schema.TypeString, RequireUnique: true},
				{Tag: TagPublishedFlag, Names: []string{"published"}, Type: schema.TypeBoolean},
				{Tag: TagViewCounter, Names: []string{"views", "viewCount"}, Type: schema.TypeInt},
				{Tag: TagApprovalFlag, Names: []string{"approved"}, Type: schema.TypeBoolean},
				{Tag: TagSoftDeleteMarker, Names: []string{"deletedAt"}, Type: schema.TypeDateTime, RequireNullable: true},
			},
		},
	}
}
