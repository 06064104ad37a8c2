package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nick227/ssot-codegen/internal/schema"
)

// blogSchema is the canonical fixture used across analyzer tests:
// authors write posts, posts carry tags through a junction table, and
// comments form a tree under posts.
func blogSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(`
entities:
  - name: Author
    fields:
      - {name: id, type: Int, id: true}
      - {name: email, type: String, unique: true}
      - {name: name, type: String}
  - name: Post
    fields:
      - {name: id, type: Int, id: true}
      - {name: title, type: String}
      - {name: slug, type: String, unique: true}
      - {name: published, type: Boolean, default: true}
      - {name: views, type: Int, default: true}
      - {name: deletedAt, type: DateTime, nullable: true}
      - {name: authorId, type: Int}
    relations:
      - {name: author, kind: to-one, target: Author, foreignKey: authorId}
      - {name: tags, kind: to-many, target: PostTag}
  - name: Tag
    fields:
      - {name: id, type: Int, id: true}
      - {name: name, type: String, unique: true}
  - name: PostTag
    fields:
      - {name: id, type: Int, id: true}
      - {name: postId, type: Int}
      - {name: tagId, type: Int}
    relations:
      - {name: post, kind: to-one, target: Post, foreignKey: postId}
      - {name: tag, kind: to-one, target: Tag, foreignKey: tagId}
  - name: Comment
    fields:
      - {name: id, type: Int, id: true}
      - {name: body, type: String}
      - {name: approved, type: Boolean, default: true}
      - {name: postId, type: Int}
      - {name: parentId, type: Int, nullable: true}
    relations:
      - {name: post, kind: to-one, target: Post, foreignKey: postId}
      - {name: parent, kind: to-one, target: Comment, foreignKey: parentId}
`))
	require.NoError(t, err)
	return s
}

func TestAnalyzeJunctionDetection(t *testing.T) {
	s := blogSchema(t)
	analyses, err := New(DefaultPolicy(), nil).Analyze(s)
	require.NoError(t, err)

	assert.True(t, analyses["PostTag"].IsJunctionTable)
	assert.False(t, analyses["Post"].IsJunctionTable)
	assert.False(t, analyses["Author"].IsJunctionTable)

	// Comment has two to-one relations but too many scalar fields.
	assert.False(t, analyses["Comment"].IsJunctionTable)
}

func TestAnalyzeJunctionOverride(t *testing.T) {
	s := blogSchema(t)
	policy := DefaultPolicy()
	policy.Junction.Overrides = map[string]bool{
		"PostTag": false,
		"Comment": true,
	}

	analyses, err := New(policy, nil).Analyze(s)
	require.NoError(t, err)

	assert.False(t, analyses["PostTag"].IsJunctionTable)
	assert.True(t, analyses["Comment"].IsJunctionTable)
}

func TestAnalyzeAutoInclude(t *testing.T) {
	s := blogSchema(t)
	analyses, err := New(DefaultPolicy(), nil).Analyze(s)
	require.NoError(t, err)

	post := analyses["Post"]
	require.Len(t, post.AutoInclude, 1)
	assert.Equal(t, "author", post.AutoInclude[0].Name)

	// Comment includes both its post and its parent comment.
	comment := analyses["Comment"]
	names := make([]string, len(comment.AutoInclude))
	for i, r := range comment.AutoInclude {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"post", "parent"}, names)

	// Junction tables never auto-include anything, not even their own
	// to-one relations.
	junction := analyses["PostTag"]
	assert.Empty(t, junction.AutoInclude)
}

func TestAnalyzeAutoIncludeSkipsJunctionTargets(t *testing.T) {
	s, err := schema.Parse([]byte(`
entities:
  - name: A
    fields:
      - {name: id, type: Int, id: true}
      - {name: linkId, type: Int}
    relations:
      - {name: link, kind: to-one, target: Link, foreignKey: linkId}
  - name: B
    fields:
      - {name: id, type: Int, id: true}
  - name: Link
    fields:
      - {name: id, type: Int, id: true}
      - {name: aId, type: Int}
      - {name: bId, type: Int}
    relations:
      - {name: a, kind: to-one, target: A, foreignKey: aId}
      - {name: b, kind: to-one, target: B, foreignKey: bId}
`))
	require.NoError(t, err)

	analyses, err := New(DefaultPolicy(), nil).Analyze(s)
	require.NoError(t, err)

	require.True(t, analyses["Link"].IsJunctionTable)
	assert.Empty(t, analyses["A"].AutoInclude)
}

func TestAnalyzeSpecialFields(t *testing.T) {
	s := blogSchema(t)
	analyses, err := New(DefaultPolicy(), nil).Analyze(s)
	require.NoError(t, err)

	post := analyses["Post"]
	assert.True(t, post.HasTag(TagSlug))
	assert.True(t, post.HasTag(TagPublishedFlag))
	assert.True(t, post.HasTag(TagViewCounter))
	assert.True(t, post.HasTag(TagSoftDeleteMarker))
	assert.False(t, post.HasTag(TagApprovalFlag))

	field, ok := post.TagField(TagSlug)
	require.True(t, ok)
	assert.Equal(t, "slug", field)

	comment := analyses["Comment"]
	assert.True(t, comment.HasTag(TagApprovalFlag))
	assert.True(t, comment.HasTag(TagParentReference))
	parent, ok := comment.TagField(TagParentReference)
	require.True(t, ok)
	assert.Equal(t, "parentId", parent)
}

func TestAnalyzeSlugRequiresUnique(t *testing.T) {
	s, err := schema.Parse([]byte(`
entities:
  - name: Page
    fields:
      - {name: id, type: Int, id: true}
      - {name: slug, type: String}
`))
	require.NoError(t, err)

	analyses, err := New(DefaultPolicy(), nil).Analyze(s)
	require.NoError(t, err)
	assert.False(t, analyses["Page"].HasTag(TagSlug))
}

func TestAnalyzeCaseInsensitiveMatching(t *testing.T) {
	s, err := schema.Parse([]byte(`
entities:
  - name: Article
    fields:
      - {name: id, type: Int, id: true}
      - {name: Slug, type: String, unique: true}
      - {name: viewcount, type: Int}
`))
	require.NoError(t, err)

	analyses, err := New(DefaultPolicy(), nil).Analyze(s)
	require.NoError(t, err)

	article := analyses["Article"]
	assert.True(t, article.HasTag(TagSlug))
	assert.True(t, article.HasTag(TagViewCounter))

	policy := DefaultPolicy()
	policy.Match.CaseSensitive = true
	analyses, err = New(policy, nil).Analyze(s)
	require.NoError(t, err)
	assert.False(t, analyses["Article"].HasTag(TagSlug))
}

func TestAnalyzeParentReferenceNeedsNullableFK(t *testing.T) {
	s, err := schema.Parse([]byte(`
entities:
  - name: Node
    fields:
      - {name: id, type: Int, id: true}
      - {name: parentId, type: Int}
    relations:
      - {name: parent, kind: to-one, target: Node, foreignKey: parentId}
`))
	require.NoError(t, err)

	analyses, err := New(DefaultPolicy(), nil).Analyze(s)
	require.NoError(t, err)
	assert.False(t, analyses["Node"].HasTag(TagParentReference))
}

func TestAnalyzeUnresolvedRelationsBatched(t *testing.T) {
	s, err := schema.Parse([]byte(`
entities:
  - name: Order
    fields:
      - {name: id, type: Int, id: true}
      - {name: customerId, type: Int}
      - {name: storeId, type: Int}
    relations:
      - {name: customer, kind: to-one, target: Customer, foreignKey: customerId}
      - {name: store, kind: to-one, target: Store, foreignKey: storeId}
`))
	require.NoError(t, err)

	_, err = New(DefaultPolicy(), nil).Analyze(s)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Unresolved, 2)
	assert.Equal(t, "Customer", schemaErr.Unresolved[0].Target)
	assert.Equal(t, "Store", schemaErr.Unresolved[1].Target)
	assert.Contains(t, err.Error(), "2 unresolved relation(s)")
}
