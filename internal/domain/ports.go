package domain

import "context"

// InventoryRepository is the data-client port over the assets, employees and
// asset_history tables. Lists return whole tables; filtering happens in the
// caller. Errors are *StoreError values.
type InventoryRepository interface {
	ListAssets(ctx context.Context) ([]Asset, error)
	GetAsset(ctx context.Context, id uint) (Asset, error)
	CreateAsset(ctx context.Context, value AssetChanges) (Asset, error)
	UpdateAsset(ctx context.Context, id uint, value AssetChanges) (Asset, error)
	DeleteAsset(ctx context.Context, id uint) error

	ListEmployees(ctx context.Context) ([]Employee, error)
	CreateEmployee(ctx context.Context, value Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, id uint, value Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, id uint) error

	AppendHistory(ctx context.Context, value HistoryEvent) (HistoryEvent, error)
	ListHistory(ctx context.Context, assetID uint) ([]HistoryEvent, error)
}

// Table names shared by every store adapter.
const (
	TableAssets    = "assets"
	TableEmployees = "employees"
	TableHistory   = "asset_history"
)
