// Package ui renders the HTML pages and fragments served to the browser.
// Fragments carry stable element ids so datastar can morph them in place.
// Components live in the .templ files.
package ui

//go:generate templ generate

import (
	"slices"
	"strconv"

	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
)

var viewLabels = map[domain.View]string{
	domain.ViewDashboard:   "Dashboard",
	domain.ViewAllAssets:   "Main Assets",
	domain.ViewAccessories: "Accessories",
	domain.ViewEmployees:   "Employees",
	domain.ViewSettings:    "Settings",
}

var statusFilters = []domain.Status{domain.StatusAll, domain.StatusAvailable, domain.StatusInUse, domain.StatusMaintenance}

type summaryCard struct {
	title string
	value int
}

func summaryCards(s domain.Summary) []summaryCard {
	return []summaryCard{
		{"Main Assets", s.Total},
		{"Available", s.Available},
		{"Deployed", s.InUse},
		{"Maintenance", s.Maintenance},
	}
}

// AssetFormModel is everything the asset modal needs to render.
type AssetFormModel struct {
	Form       application.AssetForm
	Assignment domain.AssignmentField
	Statuses   []domain.Status
	Employees  []domain.Employee
}

// NewAssetFormModel evaluates the assignment field for the form's current
// status and type. A status the type does not offer falls back to the first
// one it does, and a locked assignment is cleared in the returned form.
func NewAssetFormModel(form application.AssetForm, employees []domain.Employee) AssetFormModel {
	statuses := domain.AllowedStatuses(form.Type)
	if !slices.Contains(statuses, domain.Status(form.Status)) {
		form.Status = string(statuses[0])
	}
	field := domain.EvaluateAssignment(domain.Status(form.Status), form.Type, form.AssignedTo)
	form.AssignedTo = field.Value
	return AssetFormModel{
		Form:       form,
		Assignment: field,
		Statuses:   statuses,
		Employees:  employees,
	}
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func assetPath(id uint, action string) string {
	return "/ui/assets/" + idString(id) + "/" + action
}

func employeePath(id uint, action string) string {
	return "/ui/employees/" + idString(id) + "/" + action
}

// post is the datastar expression that POSTs to path.
func post(path string) string {
	return "@post('" + path + "')"
}

func employeeLine(e domain.Employee) string {
	if e.Department == "" {
		return e.Role
	}
	return e.Role + " · " + e.Department
}

func listSignals(view application.WorkspaceView) string {
	return "{query: " + jsString(view.Query) + ", status: " + jsString(string(view.Status)) + "}"
}

func assetSignals(f application.AssetForm) string {
	return "{assetId: " + idString(f.ID) +
		", assetName: " + jsString(f.Name) +
		", assetType: " + jsString(f.Type) +
		", assetStatus: " + jsString(f.Status) +
		", assetSerial: " + jsString(f.SerialNumber) +
		", assetAssignedTo: " + jsString(f.AssignedTo) + "}"
}

func employeeSignals(f application.EmployeeForm) string {
	return "{employeeId: " + idString(f.ID) +
		", employeeName: " + jsString(f.FullName) +
		", employeeRole: " + jsString(f.Role) +
		", employeeDepartment: " + jsString(f.Department) + "}"
}

// jsString quotes s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	out := make([]rune, 0, len(s)+2)
	out = append(out, '\'')
	for _, r := range s {
		switch r {
		case '\'', '\\':
			out = append(out, '\\', r)
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, r)
		}
	}
	out = append(out, '\'')
	return string(out)
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
