package intent

// Schema declares how raw parameter names map onto one scenario's canonical
// fields. Exactly one of the two shapes is used per scenario:
//
//   - Renames: an ordered raw-key -> canonical-key table for scenarios with
//     several distinct fields (several raw synonyms may feed one canonical
//     key; later renames win on collision).
//   - Single: the name of the scenario's only monetary slot; a normalized
//     targetAmount is renamed to it as the final step.
type Schema struct {
	Single  string
	Renames []Rename
}

// Rename maps one raw key to a canonical key.
type Rename struct {
	From, To string
}

// schemas is the per-scenario synonym resolution table. Adding a scenario is
// a data change here, not a code change.
var schemas = map[string]Schema{
	"childbirth":  {Single: "oneOffCosts"},
	"buy_vehicle": {Single: "totalCost"},
	"custom_goal": {Renames: []Rename{
		{"name", "scenarioName"},
		{"target_amount", "targetAmount"},
		{"monthly_amount", "monthlyAmount"},
		{"type", "direction"},
		{"frequency", "frequency"},
		{"date", "targetDate"},
	}},
	"buy_home": {Renames: []Rename{
		{"property_price", "propertyPrice"},
		{"deposit_amount", "depositAmount"},
		{"purchase_date", "purchaseDate"},
		{"targetAmount", "propertyPrice"},
		{"amount", "propertyPrice"},
		{"price", "propertyPrice"},
		{"cost", "propertyPrice"},
		{"date", "purchaseDate"},
	}},
	"marriage": {Renames: []Rename{
		{"totalBudget", "totalBudget"},
		{"targetAmount", "totalBudget"},
		{"amount", "totalBudget"},
		{"cost", "totalBudget"},
		{"budget", "totalBudget"},
		{"value", "totalBudget"},
		{"date", "weddingDate"},
		{"weddingDate", "weddingDate"},
	}},
	"medical_emergency": {Renames: []Rename{
		{"totalCost", "totalCost"},
		{"targetAmount", "totalCost"},
		{"amount", "totalCost"},
		{"cost", "totalCost"},
	}},
	"tax_bill": {Renames: []Rename{
		{"billAmount", "billAmount"},
		{"targetAmount", "billAmount"},
		{"amount", "billAmount"},
	}},
	"home_improvement": {Renames: []Rename{
		{"totalCost", "totalCost"},
		{"targetAmount", "totalCost"},
		{"amount", "totalCost"},
		{"cost", "totalCost"},
	}},
	"ivf_treatment": {Renames: []Rename{
		{"totalCost", "totalCost"},
		{"targetAmount", "totalCost"},
		{"amount", "totalCost"},
	}},
	"help_family":        {Single: "monthlyAmount"},
	"elder_care":         {Single: "monthlyAmount"},
	"divorce":            {Single: "settlementCost"},
	"death_partner":      {Single: "monthlyIncomeLost"},
	"work_equipment":     {Single: "totalCost"},
	"debt_consolidation": {Single: "lumpSumPayment"},
	"sell_asset":         {Single: "saleProceeds"},
	"windfall":           {Single: "lumpSumAmount"},
	"start_business":     {Single: "investmentAmount"},
	"property_repair":    {Single: "repairCost"},
}

// genericAmountKeys are checked in order when no canonical targetAmount
// exists after scenario-specific renames.
var genericAmountKeys = []string{
	"amount",
	"cost",
	"value",
	"price",
	"total",
	"settlement_amount",
	"total_settlement_cost",
	"monthly_income_lost",
	"lost_income",
}

// Normalize maps raw parameter names onto scenarioID's canonical schema.
//
// Three phases, in a precedence order that must not be reordered:
//
//  1. Scenario-specific renames run first so richly-parameterized scenarios
//     claim their distinct canonical fields before anything else.
//  2. Generic normalization renames the first generic synonym found to
//     targetAmount, but only if no targetAmount exists yet.
//  3. Single-slot scenarios finally rename targetAmount to their one
//     specific field.
//
// The input map is not mutated.
func Normalize(scenarioID string, raw ParamSet) ParamSet {
	params := make(ParamSet, len(raw))
	for k, v := range raw {
		params[k] = v
	}

	schema, hasSchema := schemas[scenarioID]

	// Phase 1: scenario-specific renames.
	if hasSchema {
		for _, r := range schema.Renames {
			if v, ok := params[r.From]; ok {
				delete(params, r.From)
				params[r.To] = v
			}
		}
	}

	// Phase 2: generic amount normalization.
	if _, ok := params["targetAmount"]; !ok {
		for _, key := range genericAmountKeys {
			if v, found := params[key]; found {
				delete(params, key)
				params["targetAmount"] = v
				break
			}
		}
	}

	// Phase 3: single-slot rename.
	if hasSchema && schema.Single != "" {
		if v, ok := params["targetAmount"]; ok {
			delete(params, "targetAmount")
			params[schema.Single] = v
		}
	}

	return params
}
