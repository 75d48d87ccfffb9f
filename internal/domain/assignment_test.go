package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var directory = []Employee{
	{ID: 10, FullName: "Jane Doe", Role: "Engineer", Department: "R&D"},
	{ID: 11, FullName: "John Roe", Role: "Designer", Department: "Product"},
}

func TestCoerceAssignedToOnlyForInUseMainAssets(t *testing.T) {
	for _, status := range []Status{StatusAvailable, StatusInUse, StatusMaintenance} {
		for _, typ := range []string{"Laptop", "Keyboard"} {
			got := CoerceAssignedTo(status, typ, "Jane Doe")
			want := status == StatusInUse && !IsAccessory(typ)
			assert.Equal(t, want, got != "", "status=%s type=%s", status, typ)
		}
	}
}

func TestEvaluateAssignment(t *testing.T) {
	assert.Equal(t, AssignmentField{Editable: true, Value: "Jane Doe"}, EvaluateAssignment(StatusInUse, "Laptop", "Jane Doe"))
	assert.Equal(t, AssignmentField{}, EvaluateAssignment(StatusAvailable, "Laptop", "Jane Doe"))
	assert.Equal(t, AssignmentField{}, EvaluateAssignment(StatusMaintenance, "Phone", "Jane Doe"))
	assert.Equal(t, AssignmentField{}, EvaluateAssignment(StatusInUse, "Keyboard", "Jane Doe"))
}

func TestAllowedStatuses(t *testing.T) {
	assert.NotContains(t, AllowedStatuses("Mouse"), StatusInUse)
	assert.Contains(t, AllowedStatuses("Laptop"), StatusInUse)
}

func TestAssetChangesForResolvesEmployee(t *testing.T) {
	changes, err := AssetChangesFor("MacBook", "Laptop", StatusInUse, "SN1", "Jane Doe", directory)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", changes.AssignedTo)
	require.NotNil(t, changes.AssignedEmployeeID)
	assert.Equal(t, uint(10), *changes.AssignedEmployeeID)
}

func TestAssetChangesForKeyboardDropsAssignee(t *testing.T) {
	for _, status := range []Status{StatusAvailable, StatusInUse, StatusMaintenance} {
		changes, err := AssetChangesFor("K2", "Keyboard", status, "", "Jane Doe", directory)
		require.NoError(t, err)
		assert.Empty(t, changes.AssignedTo)
		assert.Nil(t, changes.AssignedEmployeeID)
	}
}

func TestAssetChangesForRejectsUnknownEmployee(t *testing.T) {
	_, err := AssetChangesFor("MacBook", "Laptop", StatusInUse, "", "Nobody", directory)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAssetChangesForUnknownNameIgnoredWhenNotAssignable(t *testing.T) {
	changes, err := AssetChangesFor("MacBook", "Laptop", StatusAvailable, "", "Nobody", directory)
	require.NoError(t, err)
	assert.Empty(t, changes.AssignedTo)
}

func TestAssetChangesForRequiresNameAndType(t *testing.T) {
	_, err := AssetChangesFor(" ", "Laptop", StatusAvailable, "", "", nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = AssetChangesFor("X", "Laptop", Status("Lost"), "", "", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveAssignmentsFollowsRename(t *testing.T) {
	id := uint(10)
	assets := []Asset{
		{ID: 1, Type: "Laptop", Status: StatusInUse, AssignedTo: "Jane Doe", AssignedEmployeeID: &id},
		{ID: 2, Type: "Laptop", Status: StatusInUse, AssignedTo: "Legacy Name"},
	}
	renamed := []Employee{{ID: 10, FullName: "Jane Smith"}}

	got := ResolveAssignments(assets, renamed)
	assert.Equal(t, "Jane Smith", got[0].AssignedTo)
	assert.Equal(t, "Legacy Name", got[1].AssignedTo)
	assert.Equal(t, "Jane Doe", assets[0].AssignedTo, "input must not be mutated")
}

func TestDirectoryMatchesByIDThenLegacyName(t *testing.T) {
	id := uint(11)
	assets := []Asset{
		{ID: 1, Name: "A", AssignedTo: "John Roe", AssignedEmployeeID: &id},
		{ID: 2, Name: "B", AssignedTo: "Jane Doe"},
		{ID: 3, Name: "C", AssignedTo: "Jane Doe", AssignedEmployeeID: &id},
	}
	entries := Directory(directory, assets)
	require.Len(t, entries, 2)
	assert.Equal(t, []uint{2}, ids(entries[0].Assets))
	assert.Equal(t, []uint{1, 3}, ids(entries[1].Assets))
}
