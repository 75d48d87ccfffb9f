package application

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/TheOgre365/equip-track/internal/domain"
)

// Workspace is one client's view state: the fetched snapshot, the current
// view and the list controls. Mutations go through the service; a confirmed
// row is patched into the snapshot, a failure triggers a full refetch.
type Workspace struct {
	mu        sync.Mutex
	service   *InventoryService
	nav       domain.Navigator
	query     string
	status    domain.Status
	expansion domain.GroupExpansion
	assets    []domain.Asset
	employees []domain.Employee
	loaded    bool
}

// WorkspaceView is a read-only rendering of a workspace.
type WorkspaceView struct {
	View      domain.View             `json:"view"`
	Query     string                  `json:"query"`
	Status    domain.Status           `json:"status"`
	Summary   domain.Summary          `json:"summary"`
	Groups    []domain.AssetGroup     `json:"groups,omitempty"`
	Directory []domain.DirectoryEntry `json:"directory,omitempty"`
	Employees []domain.Employee       `json:"employees"`
}

func NewWorkspace(service *InventoryService) *Workspace {
	return &Workspace{
		service:   service,
		nav:       domain.NewNavigator(),
		status:    domain.StatusAll,
		expansion: domain.NewGroupExpansion(),
	}
}

// Refresh replaces the snapshot with the store's current contents.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshLocked(ctx)
}

func (w *Workspace) refreshLocked(ctx context.Context) error {
	assets, employees, err := w.service.snapshot(ctx)
	if err != nil {
		return err
	}
	w.assets = assets
	w.employees = employees
	w.loaded = true
	return nil
}

func (w *Workspace) ensureLoaded(ctx context.Context) error {
	if w.loaded {
		return nil
	}
	return w.refreshLocked(ctx)
}

// Navigate switches the current view. Leaving a list view resets its search,
// status filter and group expansion.
func (w *Workspace) Navigate(v domain.View) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.nav.Current()
	if err := w.nav.Dispatch(v); err != nil {
		return err
	}
	if prev != v {
		w.query = ""
		w.status = domain.StatusAll
		w.expansion = domain.NewGroupExpansion()
	}
	return nil
}

func (w *Workspace) CurrentView() domain.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nav.Current()
}

func (w *Workspace) SetQuery(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query = query
}

func (w *Workspace) SetStatusFilter(raw string) error {
	status, err := domain.ParseStatusFilter(raw)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	return nil
}

func (w *Workspace) ToggleGroup(assetType string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expansion.Toggle(assetType)
}

// NewAssetDraft returns the create-form draft for the current view.
func (w *Workspace) NewAssetDraft() domain.Asset {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.NewAssetDraft(w.nav.Current())
}

// Asset returns a row from the snapshot.
func (w *Workspace) Asset(ctx context.Context, id uint) (domain.Asset, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureLoaded(ctx); err != nil {
		return domain.Asset{}, err
	}
	for _, a := range w.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Asset{}, domain.NewStoreError("select", domain.TableAssets, domain.ErrNotFound, nil)
}

// Render derives the current view from the snapshot, fetching it first if
// this workspace has never loaded.
func (w *Workspace) Render(ctx context.Context) (WorkspaceView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureLoaded(ctx); err != nil {
		return WorkspaceView{}, err
	}
	return w.renderLocked(), nil
}

// Reload refetches the snapshot and renders it. Page loads and view switches
// go through here so changes made by other clients show up.
func (w *Workspace) Reload(ctx context.Context) (WorkspaceView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.refreshLocked(ctx); err != nil {
		return WorkspaceView{}, err
	}
	return w.renderLocked(), nil
}

func (w *Workspace) renderLocked() WorkspaceView {
	mainAssets, accessories := domain.Classify(w.assets)
	out := WorkspaceView{
		View:      w.nav.Current(),
		Query:     w.query,
		Status:    w.status,
		Summary:   domain.Summarize(w.assets),
		Employees: slices.Clone(w.employees),
	}
	switch out.View {
	case domain.ViewAllAssets:
		out.Groups = domain.GroupByType(domain.Filter(mainAssets, w.query, w.status), w.expansion)
	case domain.ViewAccessories:
		out.Groups = domain.GroupByType(domain.Filter(accessories, w.query, w.status), w.expansion)
	case domain.ViewEmployees:
		out.Directory = domain.Directory(w.employees, w.assets)
	}
	return out
}

func (w *Workspace) SaveAsset(ctx context.Context, form AssetForm) (domain.Asset, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	asset, err := w.service.SaveAsset(ctx, form)
	if err != nil {
		w.refetchAfter(ctx, "save asset", err)
		return domain.Asset{}, err
	}
	w.applyAsset(asset)
	return asset, nil
}

func (w *Workspace) DeleteAsset(ctx context.Context, id uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.service.DeleteAsset(ctx, id); err != nil {
		w.refetchAfter(ctx, "delete asset", err)
		return err
	}
	w.assets = slices.DeleteFunc(w.assets, func(a domain.Asset) bool { return a.ID == id })
	return nil
}

func (w *Workspace) CheckIn(ctx context.Context, id uint) (domain.Asset, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	asset, err := w.service.CheckIn(ctx, id)
	if err != nil {
		w.refetchAfter(ctx, "check in", err)
		return domain.Asset{}, err
	}
	w.applyAsset(asset)
	return asset, nil
}

func (w *Workspace) MarkMaintenance(ctx context.Context, id uint) (domain.Asset, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	asset, err := w.service.MarkMaintenance(ctx, id)
	if err != nil {
		w.refetchAfter(ctx, "mark maintenance", err)
		return domain.Asset{}, err
	}
	w.applyAsset(asset)
	return asset, nil
}

func (w *Workspace) SaveEmployee(ctx context.Context, form EmployeeForm) (domain.Employee, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	employee, err := w.service.SaveEmployee(ctx, form)
	if err != nil {
		w.refetchAfter(ctx, "save employee", err)
		return domain.Employee{}, err
	}
	w.applyEmployee(employee)
	return employee, nil
}

// DeleteEmployee refetches on success too: the store clears the employee
// reference on assets, which the snapshot cannot see.
func (w *Workspace) DeleteEmployee(ctx context.Context, id uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.service.DeleteEmployee(ctx, id); err != nil {
		w.refetchAfter(ctx, "delete employee", err)
		return err
	}
	if err := w.refreshLocked(ctx); err != nil {
		w.loaded = false
		logger.Warn("refetch after employee delete failed", slog.Any("err", err))
	}
	return nil
}

func (w *Workspace) History(ctx context.Context, assetID uint) ([]domain.HistoryEvent, error) {
	return w.service.ListHistory(ctx, assetID)
}

func (w *Workspace) refetchAfter(ctx context.Context, op string, cause error) {
	if !w.loaded {
		return
	}
	if err := w.refreshLocked(ctx); err != nil {
		// next Render retries the fetch
		w.loaded = false
		logger.Warn("refetch failed", slog.String("op", op), slog.Any("cause", cause), slog.Any("err", err))
	}
}

// applyAsset patches a server-confirmed row into the snapshot, keeping id order.
func (w *Workspace) applyAsset(asset domain.Asset) {
	if !w.loaded {
		return
	}
	asset = domain.ResolveAssignments([]domain.Asset{asset}, w.employees)[0]
	i, found := slices.BinarySearchFunc(w.assets, asset.ID, func(a domain.Asset, id uint) int {
		return cmp.Compare(a.ID, id)
	})
	if found {
		w.assets[i] = asset
		return
	}
	w.assets = slices.Insert(w.assets, i, asset)
}

func (w *Workspace) applyEmployee(employee domain.Employee) {
	if !w.loaded {
		return
	}
	i, found := slices.BinarySearchFunc(w.employees, employee.ID, func(e domain.Employee, id uint) int {
		return cmp.Compare(e.ID, id)
	})
	if found {
		w.employees[i] = employee
		w.assets = domain.ResolveAssignments(w.assets, w.employees)
		return
	}
	w.employees = slices.Insert(w.employees, i, employee)
}
