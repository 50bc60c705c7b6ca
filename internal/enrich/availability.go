package enrich

import (
	"context"
	"strings"

	"nextflix/internal/tmdb"
)

// AvailabilityStatus distinguishes "the region has no listing" from a
// failed lookup.
type AvailabilityStatus int

const (
	StatusAvailable AvailabilityStatus = iota
	StatusNotInRegion
)

// Availability lists subscription-streaming options for one region.
type Availability struct {
	Status    AvailabilityStatus
	Providers []string
	Link      string
}

// WhereToWatch queries the catalog's watch-provider listing for a movie
// in the given region. A region absent from the listing yields
// StatusNotInRegion; a transport failure is returned as an error for the
// caller to absorb.
func WhereToWatch(ctx context.Context, client *tmdb.Client, movieID int64, region string) (Availability, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	regions, err := client.GetWatchProviders(ctx, movieID)
	if err != nil {
		return Availability{}, err
	}
	listing, ok := regions[region]
	if !ok || len(listing.Flatrate) == 0 {
		return Availability{Status: StatusNotInRegion}, nil
	}
	out := Availability{Status: StatusAvailable, Link: listing.Link}
	for _, p := range listing.Flatrate {
		out.Providers = append(out.Providers, p.ProviderName)
	}
	return out, nil
}
