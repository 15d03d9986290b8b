package parking

import "fmt"

type SpotType int

const (
	Compact SpotType = iota
	Large
	Handicapped
	Electric
)

func (t SpotType) String() string {
	switch t {
	case Compact:
		return "COMPACT"
	case Large:
		return "LARGE"
	case Handicapped:
		return "HANDICAPPED"
	case Electric:
		return "ELECTRIC"
	default:
		return "UNKNOWN"
	}
}

// Spot is owned by exactly one Floor for its whole lifetime. A spot is
// occupied exactly when it holds an occupant.
type Spot struct {
	id       string
	spotType SpotType
	occupant *Vehicle
}

func NewSpot(id string, spotType SpotType) *Spot {
	return &Spot{
		id:       id,
		spotType: spotType,
	}
}

func (s *Spot) ID() string {
	return s.id
}

func (s *Spot) Type() SpotType {
	return s.spotType
}

func (s *Spot) IsOccupied() bool {
	return s.occupant != nil
}

// Occupant returns the parked vehicle, if any.
func (s *Spot) Occupant() (Vehicle, bool) {
	if s.occupant == nil {
		return Vehicle{}, false
	}
	return *s.occupant, true
}

func (s *Spot) Occupy(vehicle Vehicle) error {
	if s.occupant != nil {
		return fmt.Errorf("spot %s: %w", s.id, ErrSpotOccupied)
	}
	s.occupant = &vehicle
	return nil
}

func (s *Spot) Release() (Vehicle, error) {
	if s.occupant == nil {
		return Vehicle{}, fmt.Errorf("spot %s: %w", s.id, ErrSpotFree)
	}
	vehicle := *s.occupant
	s.occupant = nil
	return vehicle, nil
}

// Accepts reports whether the spot type is allowed for the vehicle type.
// Bikes fit anywhere; cars need compact spots and trucks need large ones.
func (s *Spot) Accepts(vehicleType VehicleType) bool {
	switch vehicleType {
	case Car:
		return s.spotType == Compact
	case Truck:
		return s.spotType == Large
	case Bike:
		return true
	default:
		return false
	}
}
