package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOverride_TableClearsMatchingFields(t *testing.T) {
	m := NewMatrix()
	require.NoError(t, m.AddRole("Editor", LevelWrite))

	_, err := m.SetOverride("Editor", FieldNode("db1", "db1_users", "db1_users_email"), LevelRead)
	require.NoError(t, err)
	_, err = m.SetOverride("Editor", FieldNode("db1", "db1_users", "db1_users_id"), LevelDelete)
	require.NoError(t, err)

	removed, err := m.SetOverride("Editor", TableNode("db1", "db1_users"), LevelRead)
	require.NoError(t, err)
	assert.Equal(t, []Override{{Kind: KindField, ID: "db1_users_email", Level: LevelRead}}, removed)

	r, ok := m.Role("Editor")
	require.True(t, ok)
	assert.NotContains(t, r.Fields, "db1_users_email")
	assert.Equal(t, LevelDelete, r.Fields["db1_users_id"])
	assert.Equal(t, LevelRead, r.Tables["db1_users"])
}

func TestSetOverride_DatabaseClearsTablesAndFields(t *testing.T) {
	m := NewMatrix()
	require.NoError(t, m.AddRole("Editor", LevelWrite))

	set := func(n Node, l Level) {
		_, err := m.SetOverride("Editor", n, l)
		require.NoError(t, err)
	}
	set(TableNode("db1", "db1_users"), LevelNone)
	set(TableNode("db1", "db1_orders"), LevelRead)
	set(FieldNode("db1", "db1_orders", "db1_orders_amount"), LevelNone)
	set(FieldNode("db1", "db1_users", "db1_users_email"), LevelWrite)
	set(TableNode("db2", "db2_products"), LevelNone)

	removed, err := m.SetOverride("Editor", DatabaseNode("db1"), LevelNone)
	require.NoError(t, err)
	assert.Equal(t, []Override{
		{Kind: KindTable, ID: "db1_users", Level: LevelNone},
		{Kind: KindField, ID: "db1_orders_amount", Level: LevelNone},
	}, removed)

	overrides, err := m.Overrides("Editor")
	require.NoError(t, err)
	assert.Equal(t, []Override{
		{Kind: KindDatabase, ID: "db1", Level: LevelNone},
		{Kind: KindTable, ID: "db1_orders", Level: LevelRead},
		{Kind: KindTable, ID: "db2_products", Level: LevelNone},
		{Kind: KindField, ID: "db1_users_email", Level: LevelWrite},
	}, overrides)
}

func TestSetOverride_PrefixMatchesWholeSegment(t *testing.T) {
	m := NewMatrix()
	require.NoError(t, m.AddRole("Editor", LevelWrite))
	_, err := m.SetOverride("Editor", TableNode("db10", "db10_users"), LevelRead)
	require.NoError(t, err)

	removed, err := m.SetOverride("Editor", DatabaseNode("db1"), LevelRead)
	require.NoError(t, err)
	assert.Empty(t, removed)

	r, _ := m.Role("Editor")
	assert.Equal(t, LevelRead, r.Tables["db10_users"])
}

func TestSetOverride_Errors(t *testing.T) {
	m := NewMatrix()
	require.NoError(t, m.AddRole("Editor", LevelWrite))

	_, err := m.SetOverride("Ghost", DatabaseNode("db1"), LevelRead)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = m.SetOverride("Editor", DatabaseNode("db1"), Level(42))
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = m.SetOverride("Editor", Node{Kind: KindField, ID: "db1_users_email"}, LevelRead)
	assert.ErrorIs(t, err, ErrMissingAncestor)
}

func TestClearOverride(t *testing.T) {
	m := NewMatrix()
	require.NoError(t, m.AddRole("Editor", LevelWrite))
	n := TableNode("db1", "db1_users")
	_, err := m.SetOverride("Editor", n, LevelRead)
	require.NoError(t, err)

	existed, err := m.ClearOverride("Editor", n)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = m.ClearOverride("Editor", n)
	require.NoError(t, err)
	assert.False(t, existed)

	got, err := m.Resolve("Editor", n)
	require.NoError(t, err)
	assert.Equal(t, LevelWrite, got)

	_, err = m.ClearOverride("Ghost", n)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
