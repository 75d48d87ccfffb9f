package http

import (
	"encoding/json"
	"net/http"

	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
)

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validationf("invalid json body: %v", err)
	}
	return nil
}

func (h *Handler) handleAPIListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.service.ListAssets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": assets})
}

func (h *Handler) handleAPIGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// handleAPISaveAsset creates on POST and updates on PUT /assets/{id}.
func (h *Handler) handleAPISaveAsset(w http.ResponseWriter, r *http.Request) {
	var form application.AssetForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, err := parseID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		form.ID = id
		status = http.StatusOK
	} else {
		form.ID = 0
	}
	asset, err := h.service.SaveAsset(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, asset)
}

func (h *Handler) handleAPIDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.DeleteAsset(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAPICheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := h.service.CheckIn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *Handler) handleAPIMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := h.service.MarkMaintenance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *Handler) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.service.ListHistory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": events})
}

func (h *Handler) handleAPIListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.ListEmployees(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": employees})
}

func (h *Handler) handleAPISaveEmployee(w http.ResponseWriter, r *http.Request) {
	var form application.EmployeeForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, err := parseID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		form.ID = id
		status = http.StatusOK
	} else {
		form.ID = 0
	}
	employee, err := h.service.SaveEmployee(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, employee)
}

func (h *Handler) handleAPIDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.DeleteEmployee(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAPIDirectory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.EmployeeDirectory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (h *Handler) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	assets, err := h.service.ListAssets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.Summarize(assets))
}

func (h *Handler) handleAPICatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"main_asset_types": domain.MainAssetTypes(),
		"accessory_types":  domain.AccessoryTypes(),
		"statuses":         []domain.Status{domain.StatusAvailable, domain.StatusInUse, domain.StatusMaintenance},
	})
}
