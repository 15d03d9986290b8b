package parking

import (
	"fmt"
	"strings"
)

type VehicleType int

const (
	Car VehicleType = iota
	Bike
	Truck
)

func (t VehicleType) String() string {
	switch t {
	case Car:
		return "CAR"
	case Bike:
		return "BIKE"
	case Truck:
		return "TRUCK"
	default:
		return "UNKNOWN"
	}
}

// ParseVehicleType accepts the upper or lower case name of a vehicle type.
func ParseVehicleType(s string) (VehicleType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CAR":
		return Car, nil
	case "BIKE":
		return Bike, nil
	case "TRUCK":
		return Truck, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidVehicleType, s)
}

type Vehicle struct {
	LicensePlate string
	Type         VehicleType
}

func NewVehicle(licensePlate string, vehicleType VehicleType) Vehicle {
	return Vehicle{
		LicensePlate: licensePlate,
		Type:         vehicleType,
	}
}
