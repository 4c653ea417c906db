package model

// Summary holds the five headline figures for a filtered selection.
type Summary struct {
	OPDAssigned        float64 `json:"opd_assigned"`
	OPDExhausted       float64 `json:"opd_exhausted"`
	TotalCustomers     int     `json:"total_customers"` // distinct ages, not members
	InOPDUsed          float64 `json:"in_opd_used"`
	ReimbursementsUsed float64 `json:"reimbursements_used"`
}

// AgeGroup holds the sums for every record sharing one age.
type AgeGroup struct {
	Age          int     `json:"age"`
	Members      int     `json:"members"`
	TotalOPDUsed float64 `json:"total_opd_used"`
	OPDLimit     float64 `json:"opd_limit"`
	OPDMRPAmount float64 `json:"opd_mrp_amount"`
	RefundAmount float64 `json:"refund_amount"`
}

// UsageRatio is used/limit, or 0 when the group has no positive limit.
func (g AgeGroup) UsageRatio() float64 {
	if g.OPDLimit > 0 {
		return g.TotalOPDUsed / g.OPDLimit
	}
	return 0
}

// SlabCount is the number of age groups whose usage ratio falls in (Lower, Upper].
type SlabCount struct {
	Label string  `json:"label"`
	Lower float64 `json:"-"`
	Upper float64 `json:"-"`
	Count int     `json:"count"`
}
