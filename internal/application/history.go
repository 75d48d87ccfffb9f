package application

import (
	"context"
	"log/slog"

	"github.com/TheOgre365/equip-track/internal/domain"
)

// HistoryRecorder appends audit events. Recording is awaited by the caller but
// failures are only logged: the mutation that triggered it stands.
type HistoryRecorder struct {
	repo domain.InventoryRepository
}

func NewHistoryRecorder(repo domain.InventoryRepository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

// Record reports whether the event was stored.
func (h *HistoryRecorder) Record(ctx context.Context, assetID uint, action, details string) bool {
	_, err := h.repo.AppendHistory(ctx, domain.HistoryEvent{AssetID: assetID, Action: action, Details: details})
	if err != nil {
		logger.Warn("history append failed",
			slog.Uint64("asset_id", uint64(assetID)),
			slog.String("action", action),
			slog.Any("err", err),
		)
		return false
	}
	return true
}

func returnedDetails(priorAssignee string) string {
	if priorAssignee == "" {
		return "Returned to inventory"
	}
	return "Returned from " + priorAssignee
}

const maintenanceDetails = "Marked as broken/maintenance"
