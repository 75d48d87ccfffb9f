package domain

import "slices"

var accessoryTypes = []string{"Keyboard", "Mouse", "Mouse Pad", "Monitor", "Headset", "Cable", "Accessory", "Other"}

var mainAssetTypes = []string{"Laptop", "PC", "Phone", "Tablet"}

// AccessoryTypes returns the accessory vocabulary in display order.
func AccessoryTypes() []string { return slices.Clone(accessoryTypes) }

// MainAssetTypes returns the main-asset types offered when registering a device.
// Any type outside the accessory vocabulary is still a main asset.
func MainAssetTypes() []string { return slices.Clone(mainAssetTypes) }

func IsAccessory(assetType string) bool {
	return slices.Contains(accessoryTypes, assetType)
}

// Classify splits assets into main assets and accessories, preserving input
// order inside each partition.
func Classify(assets []Asset) (mainAssets, accessories []Asset) {
	mainAssets = make([]Asset, 0, len(assets))
	accessories = make([]Asset, 0)
	for _, a := range assets {
		if IsAccessory(a.Type) {
			accessories = append(accessories, a)
			continue
		}
		mainAssets = append(mainAssets, a)
	}
	return mainAssets, accessories
}

// Summary holds the dashboard counters. Accessories are never counted.
type Summary struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	InUse       int `json:"in_use"`
	Maintenance int `json:"maintenance"`
}

func Summarize(assets []Asset) Summary {
	var s Summary
	for _, a := range assets {
		if IsAccessory(a.Type) {
			continue
		}
		s.Total++
		switch a.Status {
		case StatusAvailable:
			s.Available++
		case StatusInUse:
			s.InUse++
		case StatusMaintenance:
			s.Maintenance++
		}
	}
	return s
}
