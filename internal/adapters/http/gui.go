package http

import (
	"fmt"
	"net/http"

	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/TheOgre365/equip-track/internal/ui"
	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

type filterSignals struct {
	Query  string `json:"query"`
	Status string `json:"status"`
}

type assetSignals struct {
	AssetID         uint   `json:"assetId"`
	AssetName       string `json:"assetName"`
	AssetType       string `json:"assetType"`
	AssetStatus     string `json:"assetStatus"`
	AssetSerial     string `json:"assetSerial"`
	AssetAssignedTo string `json:"assetAssignedTo"`
}

func (s assetSignals) form() application.AssetForm {
	return application.AssetForm{
		ID:           s.AssetID,
		Name:         s.AssetName,
		Type:         s.AssetType,
		Status:       s.AssetStatus,
		SerialNumber: s.AssetSerial,
		AssignedTo:   s.AssetAssignedTo,
	}
}

type employeeSignals struct {
	EmployeeID         uint   `json:"employeeId"`
	EmployeeName       string `json:"employeeName"`
	EmployeeRole       string `json:"employeeRole"`
	EmployeeDepartment string `json:"employeeDepartment"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	view, err := h.workspace(w, r).Reload(r.Context())
	if err != nil {
		h.logger.Error("initial load failed", "err", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if err := ui.Page(view).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// renderMain re-renders the current view after a change, prefixed by a flash
// message and any extra fragments.
func (h *Handler) renderMain(w http.ResponseWriter, r *http.Request, ws *application.Workspace, message string, extra ...templ.Component) {
	view, err := ws.Render(r.Context())
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.writeMain(w, r, view, message, extra...)
}

func (h *Handler) writeMain(w http.ResponseWriter, r *http.Request, view application.WorkspaceView, message string, extra ...templ.Component) {
	fragments := []templ.Component{ui.Flash(message, "info"), ui.Sidebar(view.View), ui.Main(view)}
	renderHTMLFragments(r.Context(), w, http.StatusOK, append(fragments, extra...)...)
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	v, err := domain.ParseView(pathParam(r, "view"))
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws := h.workspace(w, r)
	if err := ws.Navigate(v); err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	view, err := ws.Reload(r.Context())
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.writeMain(w, r, view, "")
}

func (h *Handler) handleFilter(w http.ResponseWriter, r *http.Request) {
	var sig filterSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid filter")
		return
	}
	ws := h.workspace(w, r)
	if err := ws.SetStatusFilter(sig.Status); err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws.SetQuery(sig.Query)
	view, err := ws.Render(r.Context())
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.Main(view))
}

func (h *Handler) handleToggleGroup(w http.ResponseWriter, r *http.Request) {
	assetType := pathParam(r, "type")
	ws := h.workspace(w, r)
	ws.ToggleGroup(assetType)
	view, err := ws.Render(r.Context())
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	for _, g := range view.Groups {
		if g.Type == assetType {
			renderHTMLFragments(r.Context(), w, http.StatusOK, ui.AssetGroup(g))
			return
		}
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.Main(view))
}

func (h *Handler) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.CloseModal())
}

func (h *Handler) assetModal(w http.ResponseWriter, r *http.Request, ws *application.Workspace, form application.AssetForm) {
	view, err := ws.Render(r.Context())
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.AssetModal(ui.NewAssetFormModel(form, view.Employees)))
}

func (h *Handler) handleNewAsset(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	h.assetModal(w, r, ws, application.FormFromAsset(ws.NewAssetDraft()))
}

// handleAssetForm re-evaluates the form after a status or type change.
func (h *Handler) handleAssetForm(w http.ResponseWriter, r *http.Request) {
	var sig assetSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid asset form")
		return
	}
	h.assetModal(w, r, h.workspace(w, r), sig.form())
}

func (h *Handler) handleEditAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws := h.workspace(w, r)
	asset, err := ws.Asset(r.Context(), id)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.assetModal(w, r, ws, application.FormFromAsset(asset))
}

func (h *Handler) handleSaveAsset(w http.ResponseWriter, r *http.Request) {
	var sig assetSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid asset form")
		return
	}
	ws := h.workspace(w, r)
	asset, err := ws.SaveAsset(r.Context(), sig.form())
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.renderMain(w, r, ws, fmt.Sprintf("Saved %s", asset.Name), ui.CloseModal())
}

func (h *Handler) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws := h.workspace(w, r)
	if err := ws.DeleteAsset(r.Context(), id); err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.renderMain(w, r, ws, fmt.Sprintf("Deleted asset #%d", id), ui.CloseModal())
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws := h.workspace(w, r)
	asset, err := ws.CheckIn(r.Context(), id)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.renderMain(w, r, ws, fmt.Sprintf("%s returned to inventory", asset.Name))
}

func (h *Handler) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws := h.workspace(w, r)
	asset, err := ws.MarkMaintenance(r.Context(), id)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.renderMain(w, r, ws, fmt.Sprintf("%s marked for maintenance", asset.Name))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws := h.workspace(w, r)
	asset, err := ws.Asset(r.Context(), id)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	events, err := ws.History(r.Context(), id)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.HistoryModal(asset, events))
}

func (h *Handler) handleNewEmployee(w http.ResponseWriter, r *http.Request) {
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.EmployeeModal(application.EmployeeForm{}))
}

func (h *Handler) handleEditEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	view, err := h.workspace(w, r).Render(r.Context())
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	for _, e := range view.Employees {
		if e.ID == id {
			renderHTMLFragments(r.Context(), w, http.StatusOK, ui.EmployeeModal(application.EmployeeForm{
				ID:         e.ID,
				FullName:   e.FullName,
				Role:       e.Role,
				Department: e.Department,
			}))
			return
		}
	}
	h.renderError(r.Context(), w, domain.NewStoreError("select", domain.TableEmployees, domain.ErrNotFound, nil))
}

func (h *Handler) handleSaveEmployee(w http.ResponseWriter, r *http.Request) {
	var sig employeeSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid employee form")
		return
	}
	ws := h.workspace(w, r)
	employee, err := ws.SaveEmployee(r.Context(), application.EmployeeForm{
		ID:         sig.EmployeeID,
		FullName:   sig.EmployeeName,
		Role:       sig.EmployeeRole,
		Department: sig.EmployeeDepartment,
	})
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.renderMain(w, r, ws, fmt.Sprintf("Saved %s", employee.FullName), ui.CloseModal())
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	ws := h.workspace(w, r)
	if err := ws.DeleteEmployee(r.Context(), id); err != nil {
		h.renderError(r.Context(), w, err)
		return
	}
	h.renderMain(w, r, ws, fmt.Sprintf("Deleted employee #%d", id), ui.CloseModal())
}
