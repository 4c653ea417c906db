// Package model defines the domain types shared by the loader, the pipeline and the presenters.
package model

// Record is one cleaned policy-member row.
// Every Record that leaves the loader has a nonzero OPDLimit.
type Record struct {
	RenewalType     string
	PolicyStartYear int
	PlanType        string
	FamilyStructure string
	AgeBand         string
	Age             int

	OPDMRPAmount float64
	RefundAmount float64
	OPDLimit     float64

	// Derived at load time.
	TotalOPDUsed    float64
	OPDUsagePercent float64
}

// RawRecord is a row as read from the source, before null coercion.
// Nil amounts were blank or an NA token in the input.
type RawRecord struct {
	RenewalType     string
	PolicyStartYear int
	PlanType        string
	FamilyStructure string
	AgeBand         string
	Age             int

	OPDMRPAmount *float64
	RefundAmount *float64
	OPDLimit     *float64
}
