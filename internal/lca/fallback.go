package lca

// Fallback returns the fixed assessment served when model output cannot be
// used. Each call returns a fresh copy.
func Fallback() AssessmentResult {
	result, err := NewResult(fallbackStages()...)
	if err != nil {
		panic("lca: fallback stages do not encode: " + err.Error())
	}
	return result
}

func fallbackStages() []LifecycleStage {
	return []LifecycleStage{
		{
			Stage: "Raw Material Extraction/Mining",
			Impact: &Impact{
				CarbonEmission:    Text("Estimated 2-5 tCO2eq per ton of material (hypothetical)"),
				WaterUsage:        Text("500-2000 liters per ton (estimated)"),
				EnergyConsumption: Text("15-50 GJ per ton (estimated)"),
				Waste:             Text("5-20 tons of waste rock per ton of ore (typical range)"),
			},
			MainCause: "Heavy machinery operations and ore processing require significant energy",
			AlternativeMethods: StringList{
				"Hypothetical: Advanced selective mining techniques",
				"Renewable energy powered operations",
				"Hypothetical: Automated extraction systems",
			},
			ReductionSuggestions: StringList{
				"Implement energy-efficient mining equipment",
				"Use renewable energy sources where feasible",
				"Optimize extraction routes and scheduling",
			},
			CircularityOpportunities: StringList{
				"Waste rock utilization for construction materials",
				"Water recycling and treatment systems",
				"Hypothetical: Mine site rehabilitation for alternative land use",
			},
		},
		{
			Stage: "Processing/Beneficiation",
			Impact: &Impact{
				CarbonEmission:    Text("1-3 tCO2eq per ton processed (estimated)"),
				WaterUsage:        Text("1000-5000 liters per ton (typical range)"),
				EnergyConsumption: Text("10-30 GJ per ton (estimated)"),
				Waste:             Text("20-80% of input material as tailings (industry typical)"),
			},
			MainCause: "Energy-intensive crushing, grinding, and separation processes",
			AlternativeMethods: StringList{
				"Sensor-based ore sorting technologies",
				"Hypothetical: Bio-processing methods",
				"Advanced flotation techniques",
			},
			ReductionSuggestions: StringList{
				"Optimize particle size distribution",
				"Implement process automation and control",
				"Use more efficient separation technologies",
			},
			CircularityOpportunities: StringList{
				"Tailings reprocessing for additional metal recovery",
				"Process water recycling systems",
				"Tailings utilization in construction materials",
			},
		},
	}
}
