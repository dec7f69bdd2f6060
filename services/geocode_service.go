package services

import (
	apperrors "github.com/Surajgore007/oceansaksham-location/errors"
	"github.com/Surajgore007/oceansaksham-location/pkg/geo"
	"github.com/Surajgore007/oceansaksham-location/types"
)

// GeocodeService resolves coordinates to a human-readable address by
// nearest-neighbor lookup against a fixed set of reference coastal
// locations. It is an offline stand-in for a real geocoding API and is
// deterministic for identical input.
type GeocodeService struct {
	references []types.NamedLocation
	country    string
}

// NewGeocodeService creates a geocoder over the given reference points.
func NewGeocodeService(references []types.NamedLocation) *GeocodeService {
	return &GeocodeService{
		references: references,
		country:    "India",
	}
}

// ReverseGeocode returns the address of the reference point nearest to
// (lat, lng).
func (s *GeocodeService) ReverseGeocode(lat, lng float64) (*types.ReverseGeocodeResult, error) {
	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return nil, apperrors.ValidationFailed("invalid coordinates", err.Error())
	}
	if len(s.references) == 0 {
		return nil, apperrors.InternalServerError("no reference locations configured")
	}

	nearest := s.references[0]
	nearestDistance := geo.Distance(lat, lng, nearest.Latitude, nearest.Longitude)
	for _, ref := range s.references[1:] {
		if d := geo.Distance(lat, lng, ref.Latitude, ref.Longitude); d < nearestDistance {
			nearest = ref
			nearestDistance = d
		}
	}

	return &types.ReverseGeocodeResult{
		Address:  nearest.Name + ", " + nearest.State,
		District: nearest.District,
		State:    nearest.State,
		Country:  s.country,
	}, nil
}
