package core

import "github.com/shopspring/decimal"

// Breakdown exposes every individual component of a total.
type Breakdown struct {
	BaseSalary            decimal.Decimal `json:"baseSalary"`
	ProfessionalAllowance decimal.Decimal `json:"professionalAllowance"`
	MealAllowance         decimal.Decimal `json:"mealAllowance"`
	NightShiftAllowance   decimal.Decimal `json:"nightShiftAllowance"`
	CleanRoomAllowance    decimal.Decimal `json:"cleanRoomAllowance"`
	CustomItems           decimal.Decimal `json:"customItems"`
	Overtime1             decimal.Decimal `json:"overtime1"`
	Overtime2             decimal.Decimal `json:"overtime2"`
	Overtime3             decimal.Decimal `json:"overtime3"`
}

// Calculation is the itemized result of Calculate. It is never persisted.
type Calculation struct {
	BaseSalaryTotal     decimal.Decimal `json:"baseSalaryTotal"`
	Overtime1Amount     decimal.Decimal `json:"overtime1Amount"`
	Overtime2Amount     decimal.Decimal `json:"overtime2Amount"`
	Overtime3Amount     decimal.Decimal `json:"overtime3Amount"`
	TotalOvertimeAmount decimal.Decimal `json:"totalOvertimeAmount"`
	CustomItemsTotal    decimal.Decimal `json:"customItemsTotal"`
	TotalSalary         decimal.Decimal `json:"totalSalary"`
	Breakdown           Breakdown       `json:"breakdown"`
}

// Calculate itemizes a salary. It is pure and applies no rounding.
// Inputs are expected to be normalized non-negative decimals; custom items
// are kept out of BaseSalaryTotal and summed separately.
func Calculate(base BaseSalary, hours OvertimeHours, rates OvertimeRates) Calculation {
	baseTotal := base.BaseSalary.
		Add(base.ProfessionalAllowance).
		Add(base.MealAllowance).
		Add(base.NightShiftAllowance).
		Add(base.CleanRoomAllowance)

	customTotal := decimal.Zero
	for _, item := range base.CustomItems {
		customTotal = customTotal.Add(item.Amount)
	}

	ot1 := hours.Overtime1.Mul(rates.Overtime1)
	ot2 := hours.Overtime2.Mul(rates.Overtime2)
	ot3 := hours.Overtime3.Mul(rates.Overtime3)
	otTotal := ot1.Add(ot2).Add(ot3)

	return Calculation{
		BaseSalaryTotal:     baseTotal,
		Overtime1Amount:     ot1,
		Overtime2Amount:     ot2,
		Overtime3Amount:     ot3,
		TotalOvertimeAmount: otTotal,
		CustomItemsTotal:    customTotal,
		TotalSalary:         baseTotal.Add(customTotal).Add(otTotal),
		Breakdown: Breakdown{
			BaseSalary:            base.BaseSalary,
			ProfessionalAllowance: base.ProfessionalAllowance,
			MealAllowance:         base.MealAllowance,
			NightShiftAllowance:   base.NightShiftAllowance,
			CleanRoomAllowance:    base.CleanRoomAllowance,
			CustomItems:           customTotal,
			Overtime1:             ot1,
			Overtime2:             ot2,
			Overtime3:             ot3,
		},
	}
}

// CalculateRecord recomputes a saved record from its own snapshot.
func CalculateRecord(r SalaryRecord) Calculation {
	return Calculate(r.BaseSalary, r.OvertimeHours, r.OvertimeRates)
}

// Add returns the component-wise sum of two breakdowns.
func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{
		BaseSalary:            b.BaseSalary.Add(o.BaseSalary),
		ProfessionalAllowance: b.ProfessionalAllowance.Add(o.ProfessionalAllowance),
		MealAllowance:         b.MealAllowance.Add(o.MealAllowance),
		NightShiftAllowance:   b.NightShiftAllowance.Add(o.NightShiftAllowance),
		CleanRoomAllowance:    b.CleanRoomAllowance.Add(o.CleanRoomAllowance),
		CustomItems:           b.CustomItems.Add(o.CustomItems),
		Overtime1:             b.Overtime1.Add(o.Overtime1),
		Overtime2:             b.Overtime2.Add(o.Overtime2),
		Overtime3:             b.Overtime3.Add(o.Overtime3),
	}
}
