package parking

import "strconv"

const spotsPerFloor = 26

type Floor struct {
	number int
	spots  []*Spot
}

// NewFloor lays out spots "{number}A" through "{number}Z". Letters with an
// even character code (B, D, F, ...) are compact, the rest are large.
func NewFloor(number int) *Floor {
	spots := make([]*Spot, 0, spotsPerFloor)
	prefix := strconv.Itoa(number)
	for c := 'A'; c <= 'Z'; c++ {
		spotType := Large
		if c%2 == 0 {
			spotType = Compact
		}
		spots = append(spots, NewSpot(prefix+string(c), spotType))
	}

	return &Floor{
		number: number,
		spots:  spots,
	}
}

func (f *Floor) Number() int {
	return f.number
}

func (f *Floor) Spots() []*Spot {
	return f.spots
}

// FindAvailableSpot returns the first free spot, in layout order, that
// accepts the vehicle type.
func (f *Floor) FindAvailableSpot(vehicleType VehicleType) (*Spot, bool) {
	for _, spot := range f.spots {
		if !spot.IsOccupied() && spot.Accepts(vehicleType) {
			return spot, true
		}
	}
	return nil, false
}

func (f *Floor) AvailableSpots() []*Spot {
	var available []*Spot
	for _, spot := range f.spots {
		if !spot.IsOccupied() {
			available = append(available, spot)
		}
	}
	return available
}

func (f *Floor) Capacity() int {
	return len(f.spots)
}

func (f *Floor) OccupiedCount() int {
	count := 0
	for _, spot := range f.spots {
		if spot.IsOccupied() {
			count++
		}
	}
	return count
}
