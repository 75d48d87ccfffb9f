package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigatorDispatch(t *testing.T) {
	nav := NewNavigator()
	assert.Equal(t, ViewDashboard, nav.Current())

	require.NoError(t, nav.Dispatch(ViewAccessories))
	assert.Equal(t, ViewAccessories, nav.Current())

	err := nav.Dispatch(View("reports"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ViewAccessories, nav.Current(), "failed dispatch keeps the current view")
}

func TestNewAssetDraftDependsOnView(t *testing.T) {
	draft := NewAssetDraft(ViewAccessories)
	assert.True(t, draft.IsNew())
	assert.Equal(t, "Keyboard", draft.Type)
	assert.Equal(t, StatusAvailable, draft.Status)
	assert.Equal(t, "Laptop", NewAssetDraft(ViewDashboard).Type)
}

func TestParseStatusFilter(t *testing.T) {
	s, err := ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, s)

	s, err = ParseStatusFilter("In Use")
	require.NoError(t, err)
	assert.Equal(t, StatusInUse, s)

	_, err = ParseStatusFilter("Broken")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseStatus("All")
	assert.ErrorIs(t, err, ErrValidation)
}
