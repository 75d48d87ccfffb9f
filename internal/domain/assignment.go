package domain

import "strings"

// AssignmentField is the state of the "assigned to" input for a given status
// and type. When Editable is false Value is always empty.
type AssignmentField struct {
	Editable bool   `json:"editable"`
	Value    string `json:"value"`
}

// CanAssign reports whether an asset with this status and type may carry an
// assignee: only main assets that are In Use.
func CanAssign(status Status, assetType string) bool {
	return status == StatusInUse && !IsAccessory(assetType)
}

// EvaluateAssignment is run on every status or type change in an edit form.
func EvaluateAssignment(status Status, assetType, current string) AssignmentField {
	if !CanAssign(status, assetType) {
		return AssignmentField{}
	}
	return AssignmentField{Editable: true, Value: current}
}

// CoerceAssignedTo returns the value that may be persisted. It is applied at
// save time whatever the form showed.
func CoerceAssignedTo(status Status, assetType, assignedTo string) string {
	if !CanAssign(status, assetType) {
		return ""
	}
	return strings.TrimSpace(assignedTo)
}

// AllowedStatuses lists the statuses offered for a type. Accessories are never
// offered In Use.
func AllowedStatuses(assetType string) []Status {
	if IsAccessory(assetType) {
		return []Status{StatusAvailable, StatusMaintenance}
	}
	return []Status{StatusAvailable, StatusInUse, StatusMaintenance}
}

// ResolveAssignee finds the employee whose full name equals name exactly.
// An empty name resolves to nil.
func ResolveAssignee(name string, employees []Employee) (*Employee, error) {
	if name == "" {
		return nil, nil
	}
	for i := range employees {
		if employees[i].FullName == name {
			e := employees[i]
			return &e, nil
		}
	}
	return nil, Validationf("unknown employee %q", name)
}

// AssetChangesFor builds the persisted column set for a saved form: the
// assignee is coerced and must name a known employee.
func AssetChangesFor(name, assetType string, status Status, serial, assignedTo string, employees []Employee) (AssetChanges, error) {
	changes := AssetChanges{
		Name:         strings.TrimSpace(name),
		Type:         strings.TrimSpace(assetType),
		Status:       status,
		SerialNumber: strings.TrimSpace(serial),
	}
	if changes.Name == "" || changes.Type == "" {
		return AssetChanges{}, Validationf("name and type are required")
	}
	if !status.Valid() {
		return AssetChanges{}, Validationf("unknown status %q", status)
	}

	assignee, err := ResolveAssignee(CoerceAssignedTo(status, changes.Type, assignedTo), employees)
	if err != nil {
		return AssetChanges{}, err
	}
	if assignee != nil {
		id := assignee.ID
		changes.AssignedTo = assignee.FullName
		changes.AssignedEmployeeID = &id
	}
	return changes, nil
}

// ResolveAssignments refreshes AssignedTo from the employee directory for rows
// that reference an employee by id. Rows without an id keep their stored name.
func ResolveAssignments(assets []Asset, employees []Employee) []Asset {
	names := make(map[uint]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName
	}
	out := make([]Asset, len(assets))
	for i, a := range assets {
		if a.AssignedEmployeeID != nil {
			if name, ok := names[*a.AssignedEmployeeID]; ok {
				a.AssignedTo = name
			}
		}
		out[i] = a
	}
	return out
}

// AssetsAssignedTo returns the assets held by e, matched by employee id or, for
// legacy rows without an id, by exact full name.
func AssetsAssignedTo(e Employee, assets []Asset) []Asset {
	out := make([]Asset, 0)
	for _, a := range assets {
		if a.AssignedEmployeeID != nil {
			if *a.AssignedEmployeeID == e.ID {
				out = append(out, a)
			}
			continue
		}
		if a.AssignedTo != "" && a.AssignedTo == e.FullName {
			out = append(out, a)
		}
	}
	return out
}

// Directory pairs every employee with their assets, in employee order.
func Directory(employees []Employee, assets []Asset) []DirectoryEntry {
	out := make([]DirectoryEntry, 0, len(employees))
	for _, e := range employees {
		out = append(out, DirectoryEntry{Employee: e, Assets: AssetsAssignedTo(e, assets)})
	}
	return out
}
