package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/TheOgre365/equip-track/internal/domain"
)

type Repository struct {
	client *Client
}

var _ domain.InventoryRepository = (*Repository)(nil)

func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

type assetRow struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	Status             string    `json:"status"`
	AssignedTo         *string   `json:"assigned_to"`
	AssignedEmployeeID *uint     `json:"assigned_employee_id"`
	SerialNumber       *string   `json:"serial_number"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type employeeRow struct {
	ID         uint      `json:"id"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type historyRow struct {
	ID        uint      `json:"id"`
	AssetID   uint      `json:"asset_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// writes never send id or timestamps; the store assigns them.
type assetWrite struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	AssignedTo   *string `json:"assigned_to"`
	SerialNumber *string `json:"serial_number"`
}

// assetWriteFK adds the employee reference for schemas that carry it. A nil
// id is sent as null so unassigning clears the column.
type assetWriteFK struct {
	assetWrite
	AssignedEmployeeID *uint `json:"assigned_employee_id"`
}

type employeeWrite struct {
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type historyWrite struct {
	AssetID uint   `json:"asset_id"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

func orderBy(clause string) url.Values {
	return url.Values{"select": []string{"*"}, "order": []string{clause}}
}

func (r *Repository) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	rows := make([]assetRow, 0)
	if err := r.client.do(ctx, "select", domain.TableAssets, http.MethodGet, orderBy("id.asc"), nil, &rows); err != nil {
		return nil, err
	}
	result := make([]domain.Asset, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (r *Repository) GetAsset(ctx context.Context, id uint) (domain.Asset, error) {
	q := idFilter(id)
	q.Set("select", "*")
	rows := make([]assetRow, 0, 1)
	if err := r.client.do(ctx, "select", domain.TableAssets, http.MethodGet, q, nil, &rows); err != nil {
		return domain.Asset{}, err
	}
	row, err := single(rows, "select", domain.TableAssets, id)
	if err != nil {
		return domain.Asset{}, err
	}
	return row.toDomain(), nil
}

func (r *Repository) CreateAsset(ctx context.Context, value domain.AssetChanges) (domain.Asset, error) {
	rows := make([]assetRow, 0, 1)
	if err := r.client.do(ctx, "insert", domain.TableAssets, http.MethodPost, nil, r.assetWriteFrom(value), &rows); err != nil {
		return domain.Asset{}, err
	}
	row, err := single(rows, "insert", domain.TableAssets, 0)
	if err != nil {
		return domain.Asset{}, err
	}
	return row.toDomain(), nil
}

func (r *Repository) UpdateAsset(ctx context.Context, id uint, value domain.AssetChanges) (domain.Asset, error) {
	rows := make([]assetRow, 0, 1)
	if err := r.client.do(ctx, "update", domain.TableAssets, http.MethodPatch, idFilter(id), r.assetWriteFrom(value), &rows); err != nil {
		return domain.Asset{}, err
	}
	row, err := single(rows, "update", domain.TableAssets, id)
	if err != nil {
		return domain.Asset{}, err
	}
	return row.toDomain(), nil
}

func (r *Repository) DeleteAsset(ctx context.Context, id uint) error {
	rows := make([]assetRow, 0, 1)
	if err := r.client.do(ctx, "delete", domain.TableAssets, http.MethodDelete, idFilter(id), nil, &rows); err != nil {
		return err
	}
	_, err := single(rows, "delete", domain.TableAssets, id)
	return err
}

func (r *Repository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows := make([]employeeRow, 0)
	if err := r.client.do(ctx, "select", domain.TableEmployees, http.MethodGet, orderBy("id.asc"), nil, &rows); err != nil {
		return nil, err
	}
	result := make([]domain.Employee, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (r *Repository) CreateEmployee(ctx context.Context, value domain.Employee) (domain.Employee, error) {
	rows := make([]employeeRow, 0, 1)
	if err := r.client.do(ctx, "insert", domain.TableEmployees, http.MethodPost, nil, employeeWriteFrom(value), &rows); err != nil {
		return domain.Employee{}, err
	}
	row, err := single(rows, "insert", domain.TableEmployees, 0)
	if err != nil {
		return domain.Employee{}, err
	}
	return row.toDomain(), nil
}

func (r *Repository) UpdateEmployee(ctx context.Context, id uint, value domain.Employee) (domain.Employee, error) {
	rows := make([]employeeRow, 0, 1)
	if err := r.client.do(ctx, "update", domain.TableEmployees, http.MethodPatch, idFilter(id), employeeWriteFrom(value), &rows); err != nil {
		return domain.Employee{}, err
	}
	row, err := single(rows, "update", domain.TableEmployees, id)
	if err != nil {
		return domain.Employee{}, err
	}
	return row.toDomain(), nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, id uint) error {
	rows := make([]employeeRow, 0, 1)
	if err := r.client.do(ctx, "delete", domain.TableEmployees, http.MethodDelete, idFilter(id), nil, &rows); err != nil {
		return err
	}
	_, err := single(rows, "delete", domain.TableEmployees, id)
	return err
}

func (r *Repository) AppendHistory(ctx context.Context, value domain.HistoryEvent) (domain.HistoryEvent, error) {
	rows := make([]historyRow, 0, 1)
	in := historyWrite{AssetID: value.AssetID, Action: value.Action, Details: value.Details}
	if err := r.client.do(ctx, "insert", domain.TableHistory, http.MethodPost, nil, in, &rows); err != nil {
		return domain.HistoryEvent{}, err
	}
	row, err := single(rows, "insert", domain.TableHistory, 0)
	if err != nil {
		return domain.HistoryEvent{}, err
	}
	return row.toDomain(), nil
}

func (r *Repository) ListHistory(ctx context.Context, assetID uint) ([]domain.HistoryEvent, error) {
	q := orderBy("created_at.desc,id.desc")
	q.Set("asset_id", fmt.Sprintf("eq.%d", assetID))
	rows := make([]historyRow, 0)
	if err := r.client.do(ctx, "select", domain.TableHistory, http.MethodGet, q, nil, &rows); err != nil {
		return nil, err
	}
	result := make([]domain.HistoryEvent, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

// single returns the one row a by-id call must produce. An empty
// representation means no row matched the filter.
func single[T any](rows []T, op, table string, id uint) (T, error) {
	var zero T
	if len(rows) == 0 {
		return zero, domain.NewStoreError(op, table, domain.ErrNotFound, fmt.Errorf("id %d", id))
	}
	return rows[0], nil
}

func (r *Repository) assetWriteFrom(c domain.AssetChanges) any {
	w := assetWrite{
		Name:         c.Name,
		Type:         c.Type,
		Status:       string(c.Status),
		AssignedTo:   nullable(c.AssignedTo),
		SerialNumber: nullable(c.SerialNumber),
	}
	if !r.client.employeeFK {
		return w
	}
	return assetWriteFK{assetWrite: w, AssignedEmployeeID: c.AssignedEmployeeID}
}

func employeeWriteFrom(e domain.Employee) employeeWrite {
	return employeeWrite{FullName: e.FullName, Role: e.Role, Department: e.Department}
}

func (r assetRow) toDomain() domain.Asset {
	return domain.Asset{
		ID:                 r.ID,
		Name:               r.Name,
		Type:               r.Type,
		Status:             domain.Status(r.Status),
		AssignedTo:         deref(r.AssignedTo),
		AssignedEmployeeID: r.AssignedEmployeeID,
		SerialNumber:       deref(r.SerialNumber),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (r employeeRow) toDomain() domain.Employee {
	return domain.Employee{
		ID:         r.ID,
		FullName:   r.FullName,
		Role:       r.Role,
		Department: r.Department,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r historyRow) toDomain() domain.HistoryEvent {
	return domain.HistoryEvent{ID: r.ID, AssetID: r.AssetID, Action: r.Action, Details: r.Details, CreatedAt: r.CreatedAt}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
