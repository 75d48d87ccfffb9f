package application

import (
	"context"
	"testing"

	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(t *testing.T, svc *InventoryService, name string) domain.Employee {
	t.Helper()
	e, err := svc.SaveEmployee(context.Background(), EmployeeForm{FullName: name, Role: "Engineer", Department: "R&D"})
	require.NoError(t, err)
	return e
}

func TestDeployThenCheckInRecordsReturned(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewInventoryService(repo)
	jane := seedEmployee(t, svc, "Jane Doe")

	laptop, err := svc.SaveAsset(ctx, AssetForm{Name: "MacBook Pro", Type: "Laptop", Status: "Available", SerialNumber: "C02"})
	require.NoError(t, err)
	assert.Empty(t, laptop.AssignedTo)

	form := FormFromAsset(laptop)
	form.Status = string(domain.StatusInUse)
	form.AssignedTo = "Jane Doe"
	deployed, err := svc.SaveAsset(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", repo.stored(laptop.ID).AssignedTo)
	require.NotNil(t, deployed.AssignedEmployeeID)
	assert.Equal(t, jane.ID, *deployed.AssignedEmployeeID)

	returned, err := svc.CheckIn(ctx, laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, returned.Status)

	stored := repo.stored(laptop.ID)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
	assert.Empty(t, stored.AssignedTo)
	assert.Nil(t, stored.AssignedEmployeeID)

	events, err := svc.ListHistory(ctx, laptop.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.ActionReturned, events[0].Action)
	assert.Contains(t, events[0].Details, "Jane Doe")
}

func TestKeyboardAssignmentIsAlwaysDropped(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewInventoryService(repo)
	seedEmployee(t, svc, "Jane Doe")

	for _, status := range []domain.Status{domain.StatusAvailable, domain.StatusInUse, domain.StatusMaintenance} {
		kb, err := svc.SaveAsset(ctx, AssetForm{Name: "K2", Type: "Keyboard", Status: string(status), AssignedTo: "Jane Doe"})
		require.NoError(t, err, status)
		stored := repo.stored(kb.ID)
		assert.Empty(t, stored.AssignedTo, status)
		assert.Nil(t, stored.AssignedEmployeeID, status)
	}
}

func TestMarkMaintenanceClearsAssignmentAndRecords(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewInventoryService(repo)
	seedEmployee(t, svc, "Jane Doe")

	phone, err := svc.SaveAsset(ctx, AssetForm{Name: "Pixel", Type: "Phone", Status: "In Use", AssignedTo: "Jane Doe"})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", phone.AssignedTo)

	got, err := svc.MarkMaintenance(ctx, phone.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMaintenance, got.Status)
	assert.Empty(t, repo.stored(phone.ID).AssignedTo)

	events := repo.events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ActionMaintenance, events[0].Action)
	assert.Equal(t, "Marked as broken/maintenance", events[0].Details)
}

func TestHistoryFailureDoesNotBlockMutation(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewInventoryService(repo)
	seedEmployee(t, svc, "Jane Doe")

	laptop, err := svc.SaveAsset(ctx, AssetForm{Name: "ThinkPad", Type: "Laptop", Status: "In Use", AssignedTo: "Jane Doe"})
	require.NoError(t, err)

	repo.fail("AppendHistory", true)
	_, err = svc.CheckIn(ctx, laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, repo.stored(laptop.ID).Status)
	assert.Equal(t, 1, repo.callCount("AppendHistory"))
	assert.Empty(t, repo.events())
}

func TestSaveAssetRejectsUnknownEmployee(t *testing.T) {
	repo := newMemRepo()
	svc := NewInventoryService(repo)

	_, err := svc.SaveAsset(context.Background(), AssetForm{Name: "MacBook", Type: "Laptop", Status: "In Use", AssignedTo: "Nobody"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, repo.callCount("CreateAsset"))
}

func TestSaveAssetValidatesInput(t *testing.T) {
	svc := NewInventoryService(newMemRepo())
	ctx := context.Background()

	_, err := svc.SaveAsset(ctx, AssetForm{Name: "", Type: "Laptop", Status: "Available"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.SaveAsset(ctx, AssetForm{Name: "X", Type: "Laptop", Status: "All"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.SaveEmployee(ctx, EmployeeForm{FullName: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDefaultHistoryIgnoresCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewInventoryService(repo)
	seedEmployee(t, svc, "Jane Doe")

	a, err := svc.SaveAsset(ctx, AssetForm{Name: "iPad", Type: "Tablet", Status: "In Use", AssignedTo: "Jane Doe"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAsset(ctx, a.ID))
	assert.Empty(t, repo.events())
}

func TestLifecycleHistory(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewInventoryService(repo, WithLifecycleHistory(true))
	seedEmployee(t, svc, "Jane Doe")

	a, err := svc.SaveAsset(ctx, AssetForm{Name: "PC-1", Type: "PC", Status: "Available"})
	require.NoError(t, err)

	form := FormFromAsset(a)
	form.Status = "In Use"
	form.AssignedTo = "Jane Doe"
	_, err = svc.SaveAsset(ctx, form)
	require.NoError(t, err)

	// saving again while already deployed adds nothing
	_, err = svc.SaveAsset(ctx, form)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAsset(ctx, a.ID))

	events := repo.events()
	require.Len(t, events, 2)
	assert.Equal(t, domain.ActionCreated, events[0].Action)
	assert.Equal(t, domain.ActionDeployed, events[1].Action)
	assert.Equal(t, "Deployed to Jane Doe", events[1].Details)
}

func TestRenamedEmployeeFollowsAssignment(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewInventoryService(repo)
	jane := seedEmployee(t, svc, "Jane Doe")

	a, err := svc.SaveAsset(ctx, AssetForm{Name: "MacBook", Type: "Laptop", Status: "In Use", AssignedTo: "Jane Doe"})
	require.NoError(t, err)

	_, err = svc.SaveEmployee(ctx, EmployeeForm{ID: jane.ID, FullName: "Jane Smith"})
	require.NoError(t, err)

	got, err := svc.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.AssignedTo)

	dir, err := svc.EmployeeDirectory(ctx)
	require.NoError(t, err)
	require.Len(t, dir, 1)
	require.Len(t, dir[0].Assets, 1)
	assert.Equal(t, a.ID, dir[0].Assets[0].ID)

	returned, err := svc.CheckIn(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, returned.AssignedTo)
	assert.Equal(t, "Returned from Jane Smith", repo.events()[0].Details)
}

func TestCheckInMissingAsset(t *testing.T) {
	svc := NewInventoryService(newMemRepo())
	_, err := svc.CheckIn(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
