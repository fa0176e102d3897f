package service

import (
	"sort"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

// StationService ranks the static station list by distance from a position.
type StationService struct {
	stations []domain.Station
}

func NewStationService(stations []domain.Station) *StationService {
	return &StationService{stations: stations}
}

// Nearest returns the min(k, len(stations)) closest stations, ascending by
// distance. The sort is stable, so equidistant stations keep their original
// list order. An empty station list yields an empty result, not an error.
func (s *StationService) Nearest(pos domain.Position, k int) []domain.RankedStation {
	if k < 0 {
		k = 0
	}

	ranked := make([]domain.RankedStation, len(s.stations))
	for i, st := range s.stations {
		ranked[i] = domain.RankedStation{
			Station:    st,
			DistanceKm: domain.Distance(pos.Coordinate, st.Coordinate()),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
