package risk

// BandRiskLevel maps a fraud probability onto a risk level. Bands are
// half-open: [0, 0.4) LOW, [0.4, 0.6) MEDIUM, [0.6, 0.8) HIGH, [0.8, 1] CRITICAL.
// Out-of-range inputs clamp to the nearest band.
func BandRiskLevel(probability float64) RiskLevel {
	switch {
	case probability < 0.4:
		return RiskLevelLow
	case probability < 0.6:
		return RiskLevelMedium
	case probability < 0.8:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}
