package domain

// NormalizeWaste converts a raw county waste-statistics row. Missing
// tonnages and population default to zero; a missing year defaults to the
// current year.
func NormalizeWaste(raw RawRecord) *WasteRecord {
	if raw == nil {
		return nil
	}

	rec := &WasteRecord{County: UnknownRegion}
	if county, ok := raw.String("county"); ok {
		rec.County = county
	}
	if year, ok := raw.Int("year"); ok {
		rec.Year = year
	} else {
		rec.Year = clock.Now().Year()
	}
	if pop, ok := raw.Int("population"); ok && pop > 0 {
		rec.Population = pop
	}

	rec.Household = wasteFlow(raw, "household")
	rec.Commercial = wasteFlow(raw, "commercial")
	rec.Total = wasteFlow(raw, "total")

	rec.RecyclingRate = RecyclingRate(rec.Total.Recycled, rec.Total.Generated)
	population := rec.Population
	if population == 0 {
		population = 1
	}
	rec.PerCapita = PerCapita(rec.Total.Generated, float64(population))
	return rec
}

func wasteFlow(raw RawRecord, prefix string) WasteFlow {
	return WasteFlow{
		Generated: floatOrZero(raw, prefix+"_generated"),
		Recycled:  floatOrZero(raw, prefix+"_recycled"),
		Disposed:  floatOrZero(raw, prefix+"_disposed"),
	}
}

// NormalizeMonthlyWaste converts a raw monthly national waste row.
func NormalizeMonthlyWaste(raw RawRecord) *MonthlyWaste {
	if raw == nil {
		return nil
	}
	m := &MonthlyWaste{
		GeneralWaste: floatOrZero(raw, "generalWaste"),
		Recycling:    floatOrZero(raw, "recycling"),
		OrganicWaste: floatOrZero(raw, "organicWaste"),
	}
	m.Month, _ = raw.String("month")
	m.Total = m.GeneralWaste + m.Recycling + m.OrganicWaste
	m.RecyclingRate = RecyclingRate(m.Recycling, m.Total)
	return m
}

// NormalizeRegionalWaste converts a raw regional waste row. A reported
// recycling rate outside 0–100 is treated as missing.
func NormalizeRegionalWaste(raw RawRecord) *RegionalWaste {
	if raw == nil {
		return nil
	}
	r := &RegionalWaste{Region: UnknownRegion, Total: floatOrZero(raw, "total")}
	if region, ok := raw.String("region"); ok {
		r.Region = region
	}
	if rate, ok := raw.Float("recyclingRate"); ok && rate >= 0 && rate <= 100 {
		r.RecyclingRate = rate
	}
	r.Level = RecyclingLevel(r.RecyclingRate)
	return r
}

func floatOrZero(raw RawRecord, key string) float64 {
	v, ok := raw.Float(key)
	if !ok || v < 0 {
		return 0
	}
	return v
}
