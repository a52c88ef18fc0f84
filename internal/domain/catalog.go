package domain

import "time"

// CatalogService is one bookable service from the fixed catalog.
type CatalogService struct {
	Name       string `json:"name"`
	Duration   int    `json:"duration_minutes"`
	PriceCents int64  `json:"price_cents"`
}

// Catalog is the fixed service table. Durations and prices live here, not
// in the database: the list changes only with a deploy.
var Catalog = []CatalogService{
	{Name: "Seqex Session (27m)", Duration: 27, PriceCents: 12000},
	{Name: "Seqex Session (54m)", Duration: 54, PriceCents: 20000},
	{Name: "Ozone Sauna Session", Duration: 30, PriceCents: 9500},
	{Name: "Red Light Therapy", Duration: 20, PriceCents: 6500},
	{Name: "Therapeutic Massage (60m)", Duration: 60, PriceCents: 13000},
	{Name: "Therapeutic Massage (90m)", Duration: 90, PriceCents: 18500},
	{Name: "Signature Facial", Duration: 50, PriceCents: 14000},
}

// LookupService resolves a catalog entry by exact name. Unknown names are
// rejected by callers rather than defaulted to some duration.
func LookupService(name string) (CatalogService, bool) {
	for _, s := range Catalog {
		if s.Name == name {
			return s, true
		}
	}
	return CatalogService{}, false
}

// DurationFor returns the service duration as a time.Duration.
func (s CatalogService) DurationFor() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}
