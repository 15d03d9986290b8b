package parking

import "errors"

var (
	ErrNoSpotAvailable    = errors.New("no spot available")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrAlreadyInitialized = errors.New("floors already initialized")
	ErrNotInitialized     = errors.New("floors not initialized")
	ErrInvalidFloorCount  = errors.New("invalid floor count")
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	ErrSpotOccupied = errors.New("spot is already occupied")
	ErrSpotFree     = errors.New("spot is already free")
)
