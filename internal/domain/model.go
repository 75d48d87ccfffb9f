package domain

import "time"

type Status string

const (
	StatusAvailable   Status = "Available"
	StatusInUse       Status = "In Use"
	StatusMaintenance Status = "Maintenance"
)

// StatusAll is the filter value that matches every status. It is never stored.
const StatusAll Status = "All"

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return true
	}
	return false
}

// ParseStatusFilter accepts a stored status or the "All" filter value. Empty input
// maps to StatusAll.
func ParseStatusFilter(raw string) (Status, error) {
	switch s := Status(raw); {
	case raw == "" || s == StatusAll:
		return StatusAll, nil
	case s.Valid():
		return s, nil
	}
	return "", Validationf("unknown status %q", raw)
}

type Asset struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	Status             Status    `json:"status"`
	AssignedTo         string    `json:"assigned_to,omitempty"`
	AssignedEmployeeID *uint     `json:"assigned_employee_id,omitempty"`
	SerialNumber       string    `json:"serial_number"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsNew reports whether the asset is an unsaved draft.
func (a Asset) IsNew() bool { return a.ID == 0 }

func (a Asset) IsAccessory() bool { return IsAccessory(a.Type) }

// AssetChanges is the full set of writable asset columns. Updates always write
// every field so that a cleared assignment is persisted as NULL.
type AssetChanges struct {
	Name               string
	Type               string
	Status             Status
	AssignedTo         string
	AssignedEmployeeID *uint
	SerialNumber       string
}

func (c AssetChanges) Apply(a Asset) Asset {
	a.Name = c.Name
	a.Type = c.Type
	a.Status = c.Status
	a.AssignedTo = c.AssignedTo
	a.AssignedEmployeeID = c.AssignedEmployeeID
	a.SerialNumber = c.SerialNumber
	return a
}

type Employee struct {
	ID         uint      `json:"id"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (e Employee) IsNew() bool { return e.ID == 0 }

const (
	ActionReturned    = "Returned"
	ActionMaintenance = "Maintenance"
	ActionDeployed    = "Deployed"
	ActionCreated     = "Created"
)

type HistoryEvent struct {
	ID        uint      `json:"id"`
	AssetID   uint      `json:"asset_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// DirectoryEntry is an employee together with the assets currently assigned to them.
type DirectoryEntry struct {
	Employee Employee `json:"employee"`
	Assets   []Asset  `json:"assets"`
}

// ParseStatus accepts only stored statuses.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", Validationf("unknown status %q", raw)
	}
	return s, nil
}
