package watchlist

import "time"

// DefaultEntityType is applied when a new entity is created without an
// explicit type.
const DefaultEntityType = "INDIVIDUAL"

// Entity is a flagged individual or organization. NameVector is derived
// data: it is recomputed inside every write path that changes Name and is
// never settable independently.
type Entity struct {
	ID                 int64
	UniqueID           string
	Name               string
	NameVector         []float32
	Aliases            []string
	DatesOfBirth       []time.Time
	Gender             string
	Nationality        string
	CountryOfResidence string
	RiskCategory       string
	AdditionalInfo     string
	EntityType         string
}
