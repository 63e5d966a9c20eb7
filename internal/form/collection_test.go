package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextstep-cv/internal/domain"
)

func newProjects() *Collection[domain.Project] {
	return NewCollection(func() domain.Project { return domain.Project{} })
}

func TestNewCollectionStartsWithOneBlank(t *testing.T) {
	c := newProjects()
	require.Equal(t, 1, c.Len())
	assert.Equal(t, domain.Project{}, c.Items()[0])
	assert.False(t, c.CanRemove())
}

func TestAppendThenRemoveLastRestoresSequence(t *testing.T) {
	c := newProjects()
	require.NoError(t, c.UpdateField(0, "title", "P1"))
	c.Append()
	require.NoError(t, c.UpdateField(1, "title", "P2"))

	before := c.Items()
	c.Append()
	require.Equal(t, 3, c.Len())
	require.NoError(t, c.RemoveAt(c.Len()-1))

	assert.Equal(t, before, c.Items())
}

func TestRemoveRefusedAtLengthOne(t *testing.T) {
	c := NewCollection(func() domain.Skill { return "" })
	require.NoError(t, c.UpdateField(0, "value", "Go"))

	err := c.RemoveAt(0)
	assert.ErrorIs(t, err, ErrLastElement)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, domain.Skill("Go"), c.Items()[0])
}

func TestRemoveOutOfRange(t *testing.T) {
	c := newProjects()
	c.Append()
	assert.ErrorIs(t, c.RemoveAt(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, c.RemoveAt(-1), ErrIndexOutOfRange)
	assert.Equal(t, 2, c.Len())
}

func TestRemoveMiddleKeepsOrder(t *testing.T) {
	c := NewCollection(func() domain.Skill { return "" })
	c.Append()
	c.Append()
	for i, v := range []string{"a", "b", "c"} {
		require.NoError(t, c.UpdateField(i, "value", v))
	}

	require.NoError(t, c.RemoveAt(1))
	assert.Equal(t, []domain.Skill{"a", "c"}, c.Items())
}

func TestUpdateFieldTouchesOnlyTarget(t *testing.T) {
	c := NewCollection(func() domain.Experience { return domain.Experience{} })
	c.Append()
	c.Append()
	require.NoError(t, c.UpdateField(0, "companyName", "Acme"))
	require.NoError(t, c.UpdateField(2, "jobTitle", "Engineer"))

	before := c.Items()
	require.NoError(t, c.UpdateField(1, "duration", "2021-2023"))
	after := c.Items()

	require.Len(t, after, 3)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
	assert.Equal(t, domain.Experience{Duration: "2021-2023"}, after[1])
	// the earlier snapshot is not affected by the edit
	assert.Equal(t, domain.Experience{}, before[1])
}

func TestUpdateFieldErrors(t *testing.T) {
	c := newProjects()
	assert.ErrorIs(t, c.UpdateField(0, "nope", "x"), domain.ErrUnknownField)
	assert.ErrorIs(t, c.UpdateField(5, "title", "x"), ErrIndexOutOfRange)
	assert.Equal(t, domain.Project{}, c.Items()[0])
}

func TestMutationsDoNotLeakIntoSnapshots(t *testing.T) {
	c := newProjects()
	snap := c.Items()
	c.Append()
	require.NoError(t, c.UpdateField(0, "title", "changed"))
	require.NoError(t, c.RemoveAt(1))

	assert.Len(t, snap, 1)
	assert.Equal(t, "", snap[0].Title)
}
