package diagram

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry reconstructs the kinds used in these tests without importing
// the registry package.
type fakeRegistry struct {
	containers map[string]bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{containers: map[string]bool{TypeRegion: true, "vpc": true, "subnet": true, "ec2": false, "s3": false}}
}

func (f *fakeRegistry) Reconstruct(rec NodeRecord) (*Component, error) {
	container, ok := f.containers[rec.Type]
	if !ok {
		return nil, &UnknownTypeError{NodeID: rec.ID, Type: rec.Type}
	}
	if container {
		return NewContainer(rec.ID, rec.Type, rec.Attributes), nil
	}
	return NewComponent(rec.ID, rec.Type, rec.Attributes), nil
}

func sequentialIDs(prefix string) IDSource {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestDocument(opts ...Option) *Document {
	base := []Option{WithIDSource(sequentialIDs("gen")), WithLogger(quietLogger())}
	return New("net", append(base, opts...)...)
}

func TestNewDocumentHasDefaultRegion(t *testing.T) {
	d := newTestDocument()

	assert.Equal(t, "net", d.Name())
	assert.Equal(t, "gen-1", d.ID())
	require.NotNil(t, d.Region())
	assert.Equal(t, TypeRegion, d.Region().Type())
	assert.True(t, d.Region().IsContainer())
	assert.Equal(t, DefaultRegionName, d.Region().Label())
	assert.Equal(t, DefaultAWSRegion, GetStr(d.Region().Attributes(), AttrRegion))
	assert.Empty(t, d.Relationships())
	assert.Nil(t, d.SourceFiles())
}

func TestNestedInsertIsFoundAndSerialized(t *testing.T) {
	d := newTestDocument()
	a := NewContainer("A", "vpc", nil)
	b := NewComponent("B", "ec2", nil)

	require.NoError(t, d.AddComponent(a, d.Region().ID()))
	require.NoError(t, d.AddComponent(b, a.ID()))

	found, ok := d.FindComponentByID("B")
	require.True(t, ok)
	assert.Same(t, b, found)

	rec := d.Record()
	require.Len(t, rec.Region.Children, 1)
	require.Len(t, rec.Region.Children[0].Children, 1)
	assert.Equal(t, "B", rec.Region.Children[0].Children[0].ID)
}

func TestRemoveComponentPrunesRelationships(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewComponent("A", "ec2", nil), ""))
	require.NoError(t, d.AddComponent(NewComponent("B", "ec2", nil), ""))
	_, err := d.AddRelationship("A", "B", DependsOn, "")
	require.NoError(t, err)

	assert.True(t, d.RemoveComponent("A"))
	assert.Empty(t, d.Relationships())
	_, ok := d.FindComponentByID("A")
	assert.False(t, ok)
}

func TestRemoveComponentPrunesSubtreeRelationships(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewContainer("vpc", "vpc", nil), ""))
	require.NoError(t, d.AddComponent(NewContainer("subnet", "subnet", nil), "vpc"))
	require.NoError(t, d.AddComponent(NewComponent("ec2", "ec2", nil), "subnet"))
	require.NoError(t, d.AddComponent(NewComponent("s3", "s3", nil), ""))
	_, err := d.AddRelationship("ec2", "s3", References, "reads")
	require.NoError(t, err)
	keep, err := d.AddRelationship("s3", "s3", DependsOn, "")
	require.NoError(t, err)

	assert.True(t, d.RemoveComponent("vpc"))

	assert.Equal(t, []Relationship{keep}, d.Relationships())
	for _, id := range []string{"vpc", "subnet", "ec2"} {
		_, ok := d.FindComponentByID(id)
		assert.False(t, ok, id)
	}
}

func TestAddComponentMissingParentFallsBackToRoot(t *testing.T) {
	d := newTestDocument()
	c := NewComponent("C", "ec2", nil)

	err := d.AddComponent(c, "nonexistent")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParentNotFound)
	var perr *ParentNotFoundError
	require.True(t, errors.As(err, &perr))
	assert.True(t, perr.FellBackToRoot)
	assert.Equal(t, "C", perr.ComponentID)
	assert.Equal(t, "nonexistent", perr.ParentID)

	parent, ok := d.ParentOf("C")
	require.True(t, ok)
	assert.Same(t, d.Region(), parent)
}

func TestAddComponentMissingParentFailPolicy(t *testing.T) {
	d := newTestDocument(WithMissingParentPolicy(FailOnMissingParent))

	err := d.AddComponent(NewComponent("C", "ec2", nil), "nonexistent")

	assert.ErrorIs(t, err, ErrParentNotFound)
	var perr *ParentNotFoundError
	require.True(t, errors.As(err, &perr))
	assert.False(t, perr.FellBackToRoot)
	_, ok := d.FindComponentByID("C")
	assert.False(t, ok)
	assert.Empty(t, d.Components())
}

func TestAddComponentLeafParent(t *testing.T) {
	t.Run("fail policy reports not a container", func(t *testing.T) {
		d := newTestDocument(WithMissingParentPolicy(FailOnMissingParent))
		require.NoError(t, d.AddComponent(NewComponent("leaf", "ec2", nil), ""))

		err := d.AddComponent(NewComponent("C", "ec2", nil), "leaf")
		assert.ErrorIs(t, err, ErrNotContainer)
		assert.Len(t, d.Components(), 1)
	})
	t.Run("fallback appends to region", func(t *testing.T) {
		d := newTestDocument()
		require.NoError(t, d.AddComponent(NewComponent("leaf", "ec2", nil), ""))

		err := d.AddComponent(NewComponent("C", "ec2", nil), "leaf")
		assert.ErrorIs(t, err, ErrParentNotFound)
		parent, ok := d.ParentOf("C")
		require.True(t, ok)
		assert.Same(t, d.Region(), parent)
	})
}

func TestAddComponentRejectsDuplicateIDs(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewContainer("vpc", "vpc", nil), ""))
	require.NoError(t, d.AddComponent(NewComponent("ec2", "ec2", nil), "vpc"))

	err := d.AddComponent(NewComponent("ec2", "ec2", nil), "")
	assert.ErrorIs(t, err, ErrDuplicateComponent)

	// A subtree carrying an existing id is rejected as a whole.
	sub := NewContainer("vpc2", "vpc", nil)
	require.NoError(t, sub.AddChild(NewComponent("ec2", "ec2", nil)))
	err = d.AddComponent(sub, "")
	assert.ErrorIs(t, err, ErrDuplicateComponent)
	_, ok := d.FindComponentByID("vpc2")
	assert.False(t, ok)

	err = d.AddComponent(NewComponent(d.Region().ID(), "ec2", nil), "")
	assert.ErrorIs(t, err, ErrDuplicateComponent)
}

func TestAddComponentRejectsRepeatedIDsInSubtree(t *testing.T) {
	d := newTestDocument()
	before := len(d.Components())

	sub := NewContainer("x", "vpc", nil)
	require.NoError(t, sub.AddChild(NewComponent("dup", "ec2", nil)))
	require.NoError(t, sub.AddChild(NewComponent("dup", "s3", nil)))
	err := d.AddComponent(sub, "")
	assert.ErrorIs(t, err, ErrDuplicateComponent)
	assert.Contains(t, err.Error(), "dup")
	assert.Len(t, d.Components(), before)
	_, ok := d.FindComponentByID("x")
	assert.False(t, ok)

	// The root of the subtree repeated further down counts too.
	self := NewContainer("y", "vpc", nil)
	require.NoError(t, self.AddChild(NewComponent("y", "ec2", nil)))
	assert.ErrorIs(t, d.AddComponent(self, ""), ErrDuplicateComponent)
	assert.Len(t, d.Components(), before)
}

func TestAddComponentAppendsInOrder(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewContainer("vpc", "vpc", nil), ""))
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, d.AddComponent(NewComponent(id, "ec2", nil), "vpc"))
	}
	vpc, _ := d.FindComponentByID("vpc")
	var ids []string
	for _, ch := range vpc.Children() {
		ids = append(ids, ch.ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestAddComponentNil(t *testing.T) {
	assert.Error(t, newTestDocument().AddComponent(nil, ""))
}

func TestRemoveComponentNoops(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewComponent("A", "ec2", nil), ""))

	assert.False(t, d.RemoveComponent(d.Region().ID()))
	assert.False(t, d.RemoveComponent("absent"))
	assert.Len(t, d.Components(), 1)
	assert.NotNil(t, d.Region())
}

func TestFindComponentByID(t *testing.T) {
	d := newTestDocument()

	root, ok := d.FindComponentByID(d.Region().ID())
	require.True(t, ok)
	assert.Same(t, d.Region(), root)

	missing, ok := d.FindComponentByID("nope")
	assert.False(t, ok)
	assert.Nil(t, missing)
}

func TestAddRelationship(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewComponent("A", "ec2", nil), ""))
	require.NoError(t, d.AddComponent(NewComponent("B", "s3", nil), ""))

	r, err := d.AddRelationship("A", "B", "", "writes logs")
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, DependsOn, r.Type, "empty type defaults to depends_on")
	assert.Equal(t, "writes logs", r.Label)
	assert.Equal(t, []Relationship{r}, d.Relationships())

	// The region may be an endpoint.
	_, err = d.AddRelationship(d.Region().ID(), "A", Contains, "")
	assert.NoError(t, err)
}

func TestAddRelationshipMissingEndpoint(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewComponent("A", "ec2", nil), ""))
	before := d.Relationships()

	_, err := d.AddRelationship("A", "ghost", DependsOn, "")
	assert.ErrorIs(t, err, ErrEndpointNotFound)
	var eerr *EndpointNotFoundError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, []string{"ghost"}, eerr.Missing)

	_, err = d.AddRelationship("x", "y", DependsOn, "")
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, []string{"x", "y"}, eerr.Missing)

	assert.Equal(t, before, d.Relationships())
}

func TestRemoveRelationship(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewComponent("A", "ec2", nil), ""))
	require.NoError(t, d.AddComponent(NewComponent("B", "s3", nil), ""))
	r1, err := d.AddRelationship("A", "B", DependsOn, "")
	require.NoError(t, err)
	r2, err := d.AddRelationship("B", "A", References, "")
	require.NoError(t, err)

	assert.True(t, d.RemoveRelationship(r1.ID))
	assert.False(t, d.RemoveRelationship(r1.ID))
	assert.False(t, d.RemoveRelationship("absent"))
	assert.Equal(t, []Relationship{r2}, d.Relationships())
}

func TestRelationshipQueries(t *testing.T) {
	d := newTestDocument()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, d.AddComponent(NewComponent(id, "ec2", nil), ""))
	}
	ab, _ := d.AddRelationship("A", "B", DependsOn, "")
	ac, _ := d.AddRelationship("A", "C", DependsOn, "")
	cb, _ := d.AddRelationship("C", "B", ConnectsTo, "")

	assert.Equal(t, []Relationship{ab, ac}, d.RelationshipsWithSource("A"))
	assert.Equal(t, []Relationship{ab, cb}, d.RelationshipsWithTarget("B"))
	assert.Empty(t, d.RelationshipsWithSource("B"))
}

func TestRelationshipsReturnsCopy(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewComponent("A", "ec2", nil), ""))
	_, err := d.AddRelationship("A", "A", DependsOn, "")
	require.NoError(t, err)

	rels := d.Relationships()
	rels[0].Label = "mutated"
	assert.Empty(t, d.Relationships()[0].Label)
}

func TestRelationshipDependency(t *testing.T) {
	tests := []struct {
		typ        RelationshipType
		dependency string
	}{
		{DependsOn, "target"},
		{References, "target"},
		{ConnectsTo, "source"},
		{Contains, "source"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			r := Relationship{SourceID: "source", TargetID: "target", Type: tt.typ}
			dep, dependent := r.Dependency()
			assert.Equal(t, tt.dependency, dep)
			assert.NotEqual(t, dep, dependent)
			assert.True(t, r.Touches("source"))
			assert.False(t, r.Touches("other"))
		})
	}
}

func TestWalkAndComponents(t *testing.T) {
	d := newTestDocument()
	require.NoError(t, d.AddComponent(NewContainer("vpc", "vpc", nil), ""))
	require.NoError(t, d.AddComponent(NewComponent("ec2", "ec2", nil), "vpc"))
	require.NoError(t, d.AddComponent(NewComponent("s3", "s3", nil), ""))

	var order []string
	d.Walk(func(c, parent *Component) bool {
		order = append(order, c.ID())
		return c.ID() != "vpc"
	})
	assert.Equal(t, []string{d.Region().ID(), "vpc", "s3"}, order)

	var ids []string
	for _, c := range d.Components() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"vpc", "ec2", "s3"}, ids)

	parent, ok := d.ParentOf("ec2")
	require.True(t, ok)
	assert.Equal(t, "vpc", parent.ID())
	_, ok = d.ParentOf(d.Region().ID())
	assert.False(t, ok)
}

func TestComponentAddChildOnLeaf(t *testing.T) {
	leaf := NewComponent("leaf", "ec2", nil)
	assert.ErrorIs(t, leaf.AddChild(NewComponent("x", "ec2", nil)), ErrNotContainer)
}

func TestComponentLabelFallsBackToID(t *testing.T) {
	c := NewComponent("id-1", "ec2", nil)
	assert.Equal(t, "id-1", c.Label())
	c.SetAttr(AttrLabel, "web")
	assert.Equal(t, "web", c.Label())
	v, ok := c.Attr(AttrLabel)
	assert.True(t, ok)
	assert.Equal(t, "web", v)
}

func TestSourceFilesAndTerraformSource(t *testing.T) {
	d := newTestDocument()
	files := []string{"main.tf", "vpc.tf"}
	d.SetSourceFiles("/infra", files)
	d.SetTerraformSource(`resource "aws_vpc" "main" {}`)
	files[0] = "changed.tf"

	require.NotNil(t, d.SourceFiles())
	assert.Equal(t, "/infra", d.SourceFiles().RootFolder)
	assert.Equal(t, []string{"main.tf", "vpc.tf"}, d.SourceFiles().Files)
	assert.Equal(t, `resource "aws_vpc" "main" {}`, d.TerraformSource())
}
