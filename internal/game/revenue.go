package game

import "sort"

// ComputeRevenueRate aggregates per-second revenue across holdings. The
// result is unrounded; callers floor it only when committing an accrual
// or writing durable state.
//
// Holdings and upgrades are visited in id order so repeated calls with the
// same inputs sum floats in the same order and return identical results.
func ComputeRevenueRate(holdings map[string]Holding, assets map[string]AssetType, upgrades map[string]Upgrade, tierBonus, marketBonus float64) float64 {
	upgradeIDs := make([]string, 0, len(upgrades))
	for id, u := range upgrades {
		if u.Purchased {
			upgradeIDs = append(upgradeIDs, id)
		}
	}
	sort.Strings(upgradeIDs)

	typeIDs := make([]string, 0, len(holdings))
	for id := range holdings {
		typeIDs = append(typeIDs, id)
	}
	sort.Strings(typeIDs)

	baseTotal := 0.0
	for _, typeID := range typeIDs {
		h := holdings[typeID]
		spec, ok := assets[h.TypeID]
		if !ok || h.Count <= 0 {
			continue
		}
		level := h.Level
		if level < 1 {
			level = 1
		}
		revenue := spec.BaseRevenue * float64(h.Count)
		revenue *= 1 + float64(level-1)*LevelRevenueStep
		for _, id := range upgradeIDs {
			u := upgrades[id]
			if u.Applies(h.TypeID) {
				revenue *= u.Multiplier
			}
		}
		baseTotal += revenue
	}
	return baseTotal * (1 + tierBonus) * (1 + marketBonus)
}
