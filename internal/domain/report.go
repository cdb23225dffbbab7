package domain

import "time"

// BinStatus enumerates the reported condition of a waste bin.
type BinStatus string

const (
	BinStatusEmpty       BinStatus = "Empty"
	BinStatusAlmostFull  BinStatus = "Almost Full"
	BinStatusFull        BinStatus = "Full"
	BinStatusOverflowing BinStatus = "Overflowing"
	BinStatusDamaged     BinStatus = "Damaged"
)

// IsValid reports whether the bin status is a known condition.
func (b BinStatus) IsValid() bool {
	switch b {
	case BinStatusEmpty, BinStatusAlmostFull, BinStatusFull, BinStatusOverflowing, BinStatusDamaged:
		return true
	}
	return false
}

// WorkflowStatus enumerates the linear report lifecycle.
type WorkflowStatus string

const (
	WorkflowReported     WorkflowStatus = "reported"
	WorkflowAcknowledged WorkflowStatus = "acknowledged"
	WorkflowCollected    WorkflowStatus = "collected"
)

// Location is the reported bin position.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Report is the aggregate for a citizen waste-bin report. Region is copied
// from the reporter's profile at submission time and is immutable afterwards;
// WorkflowStatus only ever advances forward.
type Report struct {
	ID             string
	Location       Location
	Region         Region
	BinStatus      BinStatus
	PhotoURL       string
	ReportedBy     string
	ReporterName   string
	ReporterEmail  string
	ReporterRegion Region
	WorkflowStatus WorkflowStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ShortID returns the human-friendly short identifier used in notifications:
// the last 6 characters of the report id. Not a security token.
func (r *Report) ShortID() string {
	if len(r.ID) <= 6 {
		return r.ID
	}
	return r.ID[len(r.ID)-6:]
}
