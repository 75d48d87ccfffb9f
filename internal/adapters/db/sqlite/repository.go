package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/TheOgre365/equip-track/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InventoryRepository implements domain.InventoryRepository on gorm. It is
// dialect agnostic; the mysql adapter reuses it over its own connection.
type InventoryRepository struct {
	db *gorm.DB
}

var _ domain.InventoryRepository = (*InventoryRepository)(nil)

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        withForeignKeys(path),
	}, &gorm.Config{TranslateError: true})
}

func withForeignKeys(path string) string {
	if strings.Contains(path, "_pragma=foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	rows := make([]AssetModel, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storeError("select", domain.TableAssets, err)
	}

	result := make([]domain.Asset, 0, len(rows))
	for _, m := range rows {
		result = append(result, assetFromModel(m))
	}
	return result, nil
}

func (r *InventoryRepository) GetAsset(ctx context.Context, id uint) (domain.Asset, error) {
	var m AssetModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Asset{}, storeError("select", domain.TableAssets, err)
	}
	return assetFromModel(m), nil
}

func (r *InventoryRepository) CreateAsset(ctx context.Context, value domain.AssetChanges) (domain.Asset, error) {
	m := AssetModel{
		Name:               value.Name,
		Type:               value.Type,
		Status:             string(value.Status),
		AssignedTo:         nullable(value.AssignedTo),
		AssignedEmployeeID: value.AssignedEmployeeID,
		SerialNumber:       nullable(value.SerialNumber),
	}
	if err := r.db.WithContext(ctx).Omit("AssignedEmployee").Create(&m).Error; err != nil {
		return domain.Asset{}, storeError("insert", domain.TableAssets, err)
	}
	return assetFromModel(m), nil
}

// UpdateAsset writes every column, so a cleared assignment becomes NULL.
func (r *InventoryRepository) UpdateAsset(ctx context.Context, id uint, value domain.AssetChanges) (domain.Asset, error) {
	var m AssetModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&m).Omit("AssignedEmployee").Updates(map[string]any{
			"name":                 value.Name,
			"type":                 value.Type,
			"status":               string(value.Status),
			"assigned_to":          nullable(value.AssignedTo),
			"assigned_employee_id": value.AssignedEmployeeID,
			"serial_number":        nullable(value.SerialNumber),
		}).Error; err != nil {
			return err
		}
		return tx.First(&m, id).Error
	})
	if err != nil {
		return domain.Asset{}, storeError("update", domain.TableAssets, err)
	}
	return assetFromModel(m), nil
}

func (r *InventoryRepository) DeleteAsset(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&AssetModel{}, id)
	if res.Error != nil {
		return storeError("delete", domain.TableAssets, res.Error)
	}
	if res.RowsAffected == 0 {
		return storeError("delete", domain.TableAssets, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *InventoryRepository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows := make([]EmployeeModel, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storeError("select", domain.TableEmployees, err)
	}

	result := make([]domain.Employee, 0, len(rows))
	for _, m := range rows {
		result = append(result, employeeFromModel(m))
	}
	return result, nil
}

func (r *InventoryRepository) CreateEmployee(ctx context.Context, value domain.Employee) (domain.Employee, error) {
	m := EmployeeModel{FullName: value.FullName, Role: value.Role, Department: value.Department}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Employee{}, storeError("insert", domain.TableEmployees, err)
	}
	return employeeFromModel(m), nil
}

func (r *InventoryRepository) UpdateEmployee(ctx context.Context, id uint, value domain.Employee) (domain.Employee, error) {
	var m EmployeeModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&m).Updates(map[string]any{
			"full_name":  value.FullName,
			"role":       value.Role,
			"department": value.Department,
		}).Error; err != nil {
			return err
		}
		return tx.First(&m, id).Error
	})
	if err != nil {
		return domain.Employee{}, storeError("update", domain.TableEmployees, err)
	}
	return employeeFromModel(m), nil
}

func (r *InventoryRepository) DeleteEmployee(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&EmployeeModel{}, id)
	if res.Error != nil {
		return storeError("delete", domain.TableEmployees, res.Error)
	}
	if res.RowsAffected == 0 {
		return storeError("delete", domain.TableEmployees, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *InventoryRepository) AppendHistory(ctx context.Context, value domain.HistoryEvent) (domain.HistoryEvent, error) {
	m := HistoryModel{AssetID: value.AssetID, Action: value.Action, Details: value.Details}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.HistoryEvent{}, storeError("insert", domain.TableHistory, err)
	}
	return historyFromModel(m), nil
}

func (r *InventoryRepository) ListHistory(ctx context.Context, assetID uint) ([]domain.HistoryEvent, error) {
	rows := make([]HistoryModel, 0)
	if err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, storeError("select", domain.TableHistory, err)
	}

	result := make([]domain.HistoryEvent, 0, len(rows))
	for _, m := range rows {
		result = append(result, historyFromModel(m))
	}
	return result, nil
}

func storeError(op, table string, err error) error {
	return domain.NewStoreError(op, table, classify(err), err)
}

func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return domain.ErrValidation
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "constraint") || strings.Contains(msg, "duplicate entry") {
		return domain.ErrValidation
	}
	return domain.ErrTransport
}

func assetFromModel(m AssetModel) domain.Asset {
	return domain.Asset{
		ID:                 m.ID,
		Name:               m.Name,
		Type:               m.Type,
		Status:             domain.Status(m.Status),
		AssignedTo:         deref(m.AssignedTo),
		AssignedEmployeeID: m.AssignedEmployeeID,
		SerialNumber:       deref(m.SerialNumber),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func employeeFromModel(m EmployeeModel) domain.Employee {
	return domain.Employee{
		ID:         m.ID,
		FullName:   m.FullName,
		Role:       m.Role,
		Department: m.Department,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func historyFromModel(m HistoryModel) domain.HistoryEvent {
	return domain.HistoryEvent{ID: m.ID, AssetID: m.AssetID, Action: m.Action, Details: m.Details, CreatedAt: m.CreatedAt}
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
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

// Close releases the underlying connection pool.
func (r *InventoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
