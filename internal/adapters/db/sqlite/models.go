package sqlite

import "time"

type EmployeeModel struct {
	ID         uint   `gorm:"primaryKey"`
	FullName   string `gorm:"not null;index"`
	Role       string `gorm:"not null;default:''"`
	Department string `gorm:"not null;default:''"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (EmployeeModel) TableName() string { return "employees" }

type AssetModel struct {
	ID                 uint    `gorm:"primaryKey"`
	Name               string  `gorm:"not null"`
	Type               string  `gorm:"not null;index"`
	Status             string  `gorm:"not null;default:'Available'"`
	AssignedTo         *string
	AssignedEmployeeID *uint          `gorm:"index"`
	AssignedEmployee   *EmployeeModel `gorm:"foreignKey:AssignedEmployeeID;constraint:OnDelete:SET NULL"`
	SerialNumber       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (AssetModel) TableName() string { return "assets" }

type HistoryModel struct {
	ID        uint   `gorm:"primaryKey"`
	AssetID   uint   `gorm:"not null;index"`
	Action    string `gorm:"not null"`
	Details   string `gorm:"not null;default:''"`
	CreatedAt time.Time
}

func (HistoryModel) TableName() string { return "asset_history" }

// Models lists every table in dependency order, for dialects migrated with
// gorm AutoMigrate instead of goose.
func Models() []any {
	return []any{&EmployeeModel{}, &AssetModel{}, &HistoryModel{}}
}
