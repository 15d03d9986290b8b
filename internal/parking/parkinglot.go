package parking

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MaxFloors bounds InitializeFloors; every floor allocates spotsPerFloor spots.
const MaxFloors = 1000

type Option func(*ParkingLot)

// WithClock replaces time.Now for entry and exit stamps.
func WithClock(now func() time.Time) Option {
	return func(pl *ParkingLot) {
		pl.now = now
	}
}

func WithHourlyRate(rate int64) Option {
	return func(pl *ParkingLot) {
		pl.hourlyRate = rate
	}
}

// WithTicketSequence gives the lot its own ID sequence instead of the
// process-wide one.
func WithTicketSequence(seq *TicketSequence) Option {
	return func(pl *ParkingLot) {
		pl.tickets = seq
	}
}

// ParkingLot owns every floor and every live ticket. A single lock covers
// spot selection, ticket issue and ticket redemption, so no two callers can
// be handed the same spot.
type ParkingLot struct {
	mu sync.RWMutex

	floors []*Floor
	spots  map[string]*Spot
	active map[string]Ticket

	tickets    *TicketSequence
	now        func() time.Time
	hourlyRate int64
}

func NewParkingLot(opts ...Option) *ParkingLot {
	pl := &ParkingLot{
		spots:      make(map[string]*Spot),
		active:     make(map[string]Ticket),
		tickets:    processTickets,
		now:        time.Now,
		hourlyRate: DefaultHourlyRate,
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

func (pl *ParkingLot) HourlyRate() int64 {
	return pl.hourlyRate
}

// InitializeFloors creates floors 1..count, with count in [1, MaxFloors].
// It may only succeed once.
func (pl *ParkingLot) InitializeFloors(count int) error {
	if count <= 0 || count > MaxFloors {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidFloorCount, count, MaxFloors)
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()

	if len(pl.floors) > 0 {
		return ErrAlreadyInitialized
	}

	floors := make([]*Floor, 0, count)
	for number := 1; number <= count; number++ {
		floor := NewFloor(number)
		for _, spot := range floor.Spots() {
			pl.spots[spot.ID()] = spot
		}
		floors = append(floors, floor)
	}
	pl.floors = floors
	return nil
}

// Park assigns the first compatible free spot, scanning floors in order,
// and issues a ticket for it.
func (pl *ParkingLot) Park(vehicle Vehicle) (Ticket, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if len(pl.floors) == 0 {
		return Ticket{}, ErrNotInitialized
	}

	for _, floor := range pl.floors {
		spot, ok := floor.FindAvailableSpot(vehicle.Type)
		if !ok {
			continue
		}
		if err := spot.Occupy(vehicle); err != nil {
			return Ticket{}, err
		}
		ticket := newTicket(pl.tickets.Next(), vehicle, spot, floor.Number(), pl.now())
		pl.active[ticket.ID] = ticket
		return ticket, nil
	}

	return Ticket{}, fmt.Errorf("%s: %w", vehicle.Type, ErrNoSpotAvailable)
}

// Unpark redeems a ticket: the spot is freed, the fee is computed from the
// elapsed whole hours and the ticket is discarded.
func (pl *ParkingLot) Unpark(ticketID string) (Receipt, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	ticket, ok := pl.active[ticketID]
	if !ok {
		return Receipt{}, fmt.Errorf("%s: %w", ticketID, ErrTicketNotFound)
	}

	spot, ok := pl.spots[ticket.SpotID]
	if !ok {
		return Receipt{}, fmt.Errorf("ticket %s references unknown spot %s", ticketID, ticket.SpotID)
	}
	if _, err := spot.Release(); err != nil {
		return Receipt{}, err
	}
	delete(pl.active, ticketID)

	exit := pl.now()
	hours, fee := CalculateFee(ticket.EntryTime, exit, pl.hourlyRate)

	return Receipt{
		Ticket:      ticket,
		ExitTime:    exit,
		BilledHours: hours,
		Fee:         fee,
	}, nil
}

func (pl *ParkingLot) Ticket(ticketID string) (Ticket, error) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	ticket, ok := pl.active[ticketID]
	if !ok {
		return Ticket{}, fmt.Errorf("%s: %w", ticketID, ErrTicketNotFound)
	}
	return ticket, nil
}

// TicketsByLicensePlate returns the live tickets for a plate, oldest first.
func (pl *ParkingLot) TicketsByLicensePlate(licensePlate string) []Ticket {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	var found []Ticket
	for _, ticket := range pl.active {
		if ticket.Vehicle.LicensePlate == licensePlate {
			found = append(found, ticket)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return ticketNumber(found[i].ID) < ticketNumber(found[j].ID)
	})

	return found
}

type SpotInfo struct {
	ID   string
	Type SpotType
}

type FloorAvailability struct {
	FloorNumber int
	Spots       []SpotInfo
}

func (pl *ParkingLot) ListAvailableSpots() []FloorAvailability {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	result := make([]FloorAvailability, 0, len(pl.floors))
	for _, floor := range pl.floors {
		availability := FloorAvailability{FloorNumber: floor.Number()}
		for _, spot := range floor.AvailableSpots() {
			availability.Spots = append(availability.Spots, SpotInfo{ID: spot.ID(), Type: spot.Type()})
		}
		result = append(result, availability)
	}
	return result
}

type Status struct {
	Floors        int
	Capacity      int
	Occupied      int
	Available     int
	ActiveTickets int
}

func (pl *ParkingLot) Status() Status {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	status := Status{
		Floors:        len(pl.floors),
		ActiveTickets: len(pl.active),
	}
	for _, floor := range pl.floors {
		status.Capacity += floor.Capacity()
		status.Occupied += floor.OccupiedCount()
	}
	status.Available = status.Capacity - status.Occupied
	return status
}

func (pl *ParkingLot) Initialized() bool {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return len(pl.floors) > 0
}

func ticketNumber(id string) uint64 {
	if len(id) < 2 {
		return 0
	}
	n, err := strconv.ParseUint(id[1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
