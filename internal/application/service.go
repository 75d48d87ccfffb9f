package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/TheOgre365/equip-track/internal/domain"
)

type InventoryService struct {
	repo            domain.InventoryRepository
	history         *HistoryRecorder
	recordLifecycle bool
}

// AssetForm is the editable state of the asset form. ID 0 creates a new asset.
type AssetForm struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	SerialNumber string `json:"serial_number"`
	AssignedTo   string `json:"assigned_to"`
}

func FormFromAsset(a domain.Asset) AssetForm {
	return AssetForm{
		ID:           a.ID,
		Name:         a.Name,
		Type:         a.Type,
		Status:       string(a.Status),
		SerialNumber: a.SerialNumber,
		AssignedTo:   a.AssignedTo,
	}
}

type EmployeeForm struct {
	ID         uint   `json:"id"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type ServiceOption func(*InventoryService)

// WithLifecycleHistory also records Created and Deployed events.
func WithLifecycleHistory(enabled bool) ServiceOption {
	return func(s *InventoryService) { s.recordLifecycle = enabled }
}

func NewInventoryService(repo domain.InventoryRepository, opts ...ServiceOption) *InventoryService {
	s := &InventoryService{repo: repo, history: NewHistoryRecorder(repo)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAssets returns every asset in id order with display names resolved
// through the employee reference.
func (s *InventoryService) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	assets, _, err := s.snapshot(ctx)
	return assets, err
}

func (s *InventoryService) snapshot(ctx context.Context) ([]domain.Asset, []domain.Employee, error) {
	assets, err := s.repo.ListAssets(ctx)
	if err != nil {
		return nil, nil, err
	}
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, nil, err
	}
	return domain.ResolveAssignments(assets, employees), employees, nil
}

func (s *InventoryService) GetAsset(ctx context.Context, id uint) (domain.Asset, error) {
	if id == 0 {
		return domain.Asset{}, domain.Validationf("asset id is required")
	}
	asset, err := s.repo.GetAsset(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}
	return s.resolveOne(ctx, asset), nil
}

// resolveOne refreshes the display name of a single row. A failed employee
// lookup leaves the stored name in place.
func (s *InventoryService) resolveOne(ctx context.Context, asset domain.Asset) domain.Asset {
	if asset.AssignedEmployeeID == nil {
		return asset
	}
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return asset
	}
	return domain.ResolveAssignments([]domain.Asset{asset}, employees)[0]
}

// SaveAsset inserts (ID 0) or updates an asset. The assignment is always
// recomputed from status and type, whatever the form carried.
func (s *InventoryService) SaveAsset(ctx context.Context, form AssetForm) (domain.Asset, error) {
	status, err := domain.ParseStatus(strings.TrimSpace(form.Status))
	if err != nil {
		return domain.Asset{}, err
	}

	var employees []domain.Employee
	if domain.CoerceAssignedTo(status, form.Type, form.AssignedTo) != "" {
		employees, err = s.repo.ListEmployees(ctx)
		if err != nil {
			return domain.Asset{}, err
		}
	}

	changes, err := domain.AssetChangesFor(form.Name, form.Type, status, form.SerialNumber, form.AssignedTo, employees)
	if err != nil {
		return domain.Asset{}, err
	}

	if form.ID == 0 {
		asset, err := s.repo.CreateAsset(ctx, changes)
		if err != nil {
			return domain.Asset{}, err
		}
		if s.recordLifecycle {
			s.history.Record(ctx, asset.ID, domain.ActionCreated, "Registered "+asset.Name)
			if isDeployed(asset) {
				s.history.Record(ctx, asset.ID, domain.ActionDeployed, "Deployed to "+asset.AssignedTo)
			}
		}
		return asset, nil
	}

	var prior domain.Asset
	if s.recordLifecycle {
		prior, err = s.repo.GetAsset(ctx, form.ID)
		if err != nil {
			return domain.Asset{}, err
		}
	}

	asset, err := s.repo.UpdateAsset(ctx, form.ID, changes)
	if err != nil {
		return domain.Asset{}, err
	}
	if s.recordLifecycle && prior.Status != domain.StatusInUse && isDeployed(asset) {
		s.history.Record(ctx, asset.ID, domain.ActionDeployed, "Deployed to "+asset.AssignedTo)
	}
	return asset, nil
}

func isDeployed(a domain.Asset) bool {
	return a.Status == domain.StatusInUse && a.AssignedTo != ""
}

func (s *InventoryService) DeleteAsset(ctx context.Context, id uint) error {
	if id == 0 {
		return domain.Validationf("asset id is required")
	}
	return s.repo.DeleteAsset(ctx, id)
}

// CheckIn returns an asset to stock: status Available, assignment cleared,
// and a Returned event naming the prior assignee.
func (s *InventoryService) CheckIn(ctx context.Context, id uint) (domain.Asset, error) {
	current, err := s.GetAsset(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}

	asset, err := s.repo.UpdateAsset(ctx, id, domain.AssetChanges{
		Name:         current.Name,
		Type:         current.Type,
		Status:       domain.StatusAvailable,
		SerialNumber: current.SerialNumber,
	})
	if err != nil {
		return domain.Asset{}, err
	}

	s.history.Record(ctx, id, domain.ActionReturned, returnedDetails(current.AssignedTo))
	logger.Info("asset checked in", slog.Uint64("asset_id", uint64(id)), slog.String("from", current.AssignedTo))
	return asset, nil
}

// MarkMaintenance moves an asset to Maintenance, clears its assignment and
// records a Maintenance event.
func (s *InventoryService) MarkMaintenance(ctx context.Context, id uint) (domain.Asset, error) {
	current, err := s.GetAsset(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}

	asset, err := s.repo.UpdateAsset(ctx, id, domain.AssetChanges{
		Name:         current.Name,
		Type:         current.Type,
		Status:       domain.StatusMaintenance,
		SerialNumber: current.SerialNumber,
	})
	if err != nil {
		return domain.Asset{}, err
	}

	s.history.Record(ctx, id, domain.ActionMaintenance, maintenanceDetails)
	return asset, nil
}

func (s *InventoryService) ListHistory(ctx context.Context, assetID uint) ([]domain.HistoryEvent, error) {
	if assetID == 0 {
		return nil, domain.Validationf("asset id is required")
	}
	return s.repo.ListHistory(ctx, assetID)
}

func (s *InventoryService) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *InventoryService) SaveEmployee(ctx context.Context, form EmployeeForm) (domain.Employee, error) {
	value := domain.Employee{
		FullName:   strings.TrimSpace(form.FullName),
		Role:       strings.TrimSpace(form.Role),
		Department: strings.TrimSpace(form.Department),
	}
	if value.FullName == "" {
		return domain.Employee{}, domain.Validationf("full_name is required")
	}

	if form.ID == 0 {
		return s.repo.CreateEmployee(ctx, value)
	}
	return s.repo.UpdateEmployee(ctx, form.ID, value)
}

func (s *InventoryService) DeleteEmployee(ctx context.Context, id uint) error {
	if id == 0 {
		return domain.Validationf("employee id is required")
	}
	return s.repo.DeleteEmployee(ctx, id)
}

// EmployeeDirectory lists employees with the assets assigned to each.
func (s *InventoryService) EmployeeDirectory(ctx context.Context) ([]domain.DirectoryEntry, error) {
	assets, employees, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Directory(employees, assets), nil
}
