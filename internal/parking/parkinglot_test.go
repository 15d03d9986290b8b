package parking

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLot(t *testing.T, floors int, opts ...Option) (*ParkingLot, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now), WithTicketSequence(NewTicketSequence())}, opts...)
	pl := NewParkingLot(opts...)
	if err := pl.InitializeFloors(floors); err != nil {
		t.Fatalf("InitializeFloors(%d): %v", floors, err)
	}
	return pl, clock
}

// assertBijection checks that live tickets and occupied spots pair up one to one.
func assertBijection(t *testing.T, pl *ParkingLot) {
	t.Helper()
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	occupied := 0
	for _, floor := range pl.floors {
		occupied += floor.OccupiedCount()
	}
	if occupied != len(pl.active) {
		t.Fatalf("Expected %d live tickets for %d occupied spots", occupied, len(pl.active))
	}

	bySpot := make(map[string]string)
	for id, ticket := range pl.active {
		if other, dup := bySpot[ticket.SpotID]; dup {
			t.Fatalf("Tickets %s and %s share spot %s", id, other, ticket.SpotID)
		}
		bySpot[ticket.SpotID] = id

		spot := pl.spots[ticket.SpotID]
		occupant, ok := spot.Occupant()
		if !ok {
			t.Fatalf("Ticket %s references free spot %s", id, ticket.SpotID)
		}
		if occupant != ticket.Vehicle {
			t.Fatalf("Spot %s holds %v, ticket %s expects %v", ticket.SpotID, occupant, id, ticket.Vehicle)
		}
	}
}

func TestInitializeFloors(t *testing.T) {
	pl := NewParkingLot()

	if err := pl.InitializeFloors(0); !errors.Is(err, ErrInvalidFloorCount) {
		t.Errorf("Expected ErrInvalidFloorCount, got %v", err)
	}

	if err := pl.InitializeFloors(3); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := pl.InitializeFloors(5); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("Expected ErrAlreadyInitialized, got %v", err)
	}

	status := pl.Status()
	if status.Floors != 3 {
		t.Errorf("Expected 3 floors to remain, got %d", status.Floors)
	}
	if status.Capacity != 78 || status.Available != 78 {
		t.Errorf("Expected 78 free spots, got capacity %d available %d", status.Capacity, status.Available)
	}
}

func TestInitializeFloorsRejectsTooMany(t *testing.T) {
	pl := NewParkingLot()

	for _, count := range []int{MaxFloors + 1, 2000000000} {
		if err := pl.InitializeFloors(count); !errors.Is(err, ErrInvalidFloorCount) {
			t.Errorf("InitializeFloors(%d): expected ErrInvalidFloorCount, got %v", count, err)
		}
	}
	if pl.Initialized() {
		t.Fatal("Expected lot to stay uninitialized after rejected counts")
	}

	if err := pl.InitializeFloors(MaxFloors); err != nil {
		t.Fatalf("InitializeFloors(MaxFloors): %v", err)
	}
	if got := pl.Status().Capacity; got != MaxFloors*spotsPerFloor {
		t.Errorf("Expected capacity %d, got %d", MaxFloors*spotsPerFloor, got)
	}
}

func TestParkBeforeInitialize(t *testing.T) {
	pl := NewParkingLot()

	if _, err := pl.Park(NewVehicle("ABC123", Car)); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if pl.Initialized() {
		t.Error("Expected lot to report uninitialized")
	}
}

func TestSingleFloorScenario(t *testing.T) {
	pl, clock := newTestLot(t, 1)

	carTicket, err := pl.Park(NewVehicle("ABC123", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if carTicket.SpotID != "1B" {
		t.Errorf("Expected car at 1B, got %s", carTicket.SpotID)
	}
	if carTicket.ID != "T1" {
		t.Errorf("Expected ticket T1, got %s", carTicket.ID)
	}

	truckTicket, err := pl.Park(NewVehicle("TRK001", Truck))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if truckTicket.SpotID != "1A" {
		t.Errorf("Expected truck at 1A, got %s", truckTicket.SpotID)
	}

	clock.Advance(90 * time.Minute)

	receipt, err := pl.Unpark(carTicket.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if receipt.Fee != 10 {
		t.Errorf("Expected fee 10, got %d", receipt.Fee)
	}
	if receipt.BilledHours != 1 {
		t.Errorf("Expected 1 billed hour, got %d", receipt.BilledHours)
	}

	if _, err := pl.Unpark(carTicket.ID); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("Expected ErrTicketNotFound for a used ticket, got %v", err)
	}

	assertBijection(t, pl)
}

func TestUnparkZeroFeeIsNotAnError(t *testing.T) {
	pl, clock := newTestLot(t, 1)

	ticket, _ := pl.Park(NewVehicle("ABC123", Car))
	clock.Advance(59 * time.Minute)

	receipt, err := pl.Unpark(ticket.ID)
	if err != nil {
		t.Fatalf("Expected a zero fee, got error %v", err)
	}
	if receipt.Fee != 0 {
		t.Errorf("Expected fee 0, got %d", receipt.Fee)
	}
}

func TestUnparkFeeTruncation(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int64
	}{
		{0, 0},
		{30 * time.Minute, 0},
		{59 * time.Minute, 0},
		{61 * time.Minute, 10},
		{125 * time.Minute, 20},
	}

	for _, tt := range tests {
		pl, clock := newTestLot(t, 1)
		ticket, _ := pl.Park(NewVehicle("ABC123", Bike))
		clock.Advance(tt.elapsed)

		receipt, err := pl.Unpark(ticket.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if receipt.Fee != tt.want {
			t.Errorf("%v: expected fee %d, got %d", tt.elapsed, tt.want, receipt.Fee)
		}
	}
}

func TestUnparkUsesHourlyRate(t *testing.T) {
	pl, clock := newTestLot(t, 1, WithHourlyRate(4))

	ticket, _ := pl.Park(NewVehicle("ABC123", Car))
	clock.Advance(3*time.Hour + 10*time.Minute)

	receipt, _ := pl.Unpark(ticket.ID)
	if receipt.Fee != 12 {
		t.Errorf("Expected fee 12, got %d", receipt.Fee)
	}
}

func TestUnparkUnknownTicket(t *testing.T) {
	pl, _ := newTestLot(t, 1)

	_, err := pl.Unpark("T999")
	if !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("Expected ErrTicketNotFound, got %v", err)
	}

	if pl.Status().Occupied != 0 {
		t.Error("Expected no side effects from a failed unpark")
	}
}

func TestUnparkFreesSpotForReuse(t *testing.T) {
	pl, _ := newTestLot(t, 1)

	first, _ := pl.Park(NewVehicle("ABC123", Car))
	second, _ := pl.Park(NewVehicle("DEF456", Car))
	if second.SpotID != "1D" {
		t.Fatalf("Expected second car at 1D, got %s", second.SpotID)
	}

	if _, err := pl.Unpark(first.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	third, err := pl.Park(NewVehicle("GHI789", Car))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if third.SpotID != "1B" {
		t.Errorf("Expected to reuse spot 1B, got %s", third.SpotID)
	}
	if third.ID == first.ID {
		t.Errorf("Expected a fresh ticket id, got reused %s", third.ID)
	}

	assertBijection(t, pl)
}

func TestTicketIDsStrictlyIncreasing(t *testing.T) {
	pl, _ := newTestLot(t, 2)

	var last uint64
	for i := range 20 {
		ticket, err := pl.Park(NewVehicle(fmt.Sprintf("BIKE%02d", i), Bike))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		n := ticketNumber(ticket.ID)
		if n <= last {
			t.Fatalf("Expected ticket ids to increase, got %s after T%d", ticket.ID, last)
		}
		last = n
	}
}

func TestSharedSequenceAcrossLots(t *testing.T) {
	seq := NewTicketSequence()
	a := NewParkingLot(WithTicketSequence(seq))
	b := NewParkingLot(WithTicketSequence(seq))
	_ = a.InitializeFloors(1)
	_ = b.InitializeFloors(1)

	ta, _ := a.Park(NewVehicle("A", Car))
	tb, _ := b.Park(NewVehicle("B", Car))

	if ta.ID == tb.ID {
		t.Errorf("Expected distinct ticket ids across lots, both got %s", ta.ID)
	}
}

func TestVehicleTypeMatching(t *testing.T) {
	pl, _ := newTestLot(t, 2)

	for i := range 10 {
		car, err := pl.Park(NewVehicle(fmt.Sprintf("CAR%d", i), Car))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if car.SpotType != Compact {
			t.Errorf("Car parked in %s spot %s", car.SpotType, car.SpotID)
		}

		truck, err := pl.Park(NewVehicle(fmt.Sprintf("TRK%d", i), Truck))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if truck.SpotType != Large {
			t.Errorf("Truck parked in %s spot %s", truck.SpotType, truck.SpotID)
		}
	}

	bike, err := pl.Park(NewVehicle("BIKE", Bike))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if bike.SpotID != "1U" {
		t.Errorf("Expected bike to take the first free spot 1U, got %s", bike.SpotID)
	}

	assertBijection(t, pl)
}

func TestParkUntilFullKeepsBijection(t *testing.T) {
	pl, _ := newTestLot(t, 2)
	capacity := pl.Status().Capacity

	for i := range capacity {
		if _, err := pl.Park(NewVehicle(fmt.Sprintf("BIKE%d", i), Bike)); err != nil {
			t.Fatalf("Park %d: unexpected error: %v", i, err)
		}
		assertBijection(t, pl)
	}

	if _, err := pl.Park(NewVehicle("LATE", Bike)); !errors.Is(err, ErrNoSpotAvailable) {
		t.Errorf("Expected ErrNoSpotAvailable, got %v", err)
	}

	status := pl.Status()
	if status.Available != 0 || status.ActiveTickets != capacity {
		t.Errorf("Expected full lot, got %+v", status)
	}
}

func TestCompactExhaustion(t *testing.T) {
	pl, _ := newTestLot(t, 2)

	for i := range 26 {
		if _, err := pl.Park(NewVehicle(fmt.Sprintf("CAR%d", i), Car)); err != nil {
			t.Fatalf("Park car %d: unexpected error: %v", i, err)
		}
	}

	if _, err := pl.Park(NewVehicle("CAR-LATE", Car)); !errors.Is(err, ErrNoSpotAvailable) {
		t.Errorf("Expected ErrNoSpotAvailable for car, got %v", err)
	}

	truck, err := pl.Park(NewVehicle("TRK", Truck))
	if err != nil {
		t.Errorf("Expected truck to park, got %v", err)
	} else if truck.SpotID != "1A" {
		t.Errorf("Expected truck at 1A, got %s", truck.SpotID)
	}

	if _, err := pl.Park(NewVehicle("BIKE", Bike)); err != nil {
		t.Errorf("Expected bike to park, got %v", err)
	}

	assertBijection(t, pl)
}

func TestConcurrentParkNeverSharesSpot(t *testing.T) {
	pl, _ := newTestLot(t, 3)
	capacity := pl.Status().Capacity

	const workers = 16
	tickets := make(chan Ticket, workers*capacity)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				vehicleType := []VehicleType{Car, Truck, Bike}[(w+i)%3]
				ticket, err := pl.Park(NewVehicle(fmt.Sprintf("W%d-%d", w, i), vehicleType))
				if err != nil {
					if vehicleType == Bike {
						return
					}
					continue
				}
				tickets <- ticket
			}
		}()
	}
	wg.Wait()
	close(tickets)

	spots := make(map[string]string)
	ids := make(map[string]bool)
	for ticket := range tickets {
		if other, dup := spots[ticket.SpotID]; dup {
			t.Fatalf("Spot %s assigned to both %s and %s", ticket.SpotID, other, ticket.ID)
		}
		spots[ticket.SpotID] = ticket.ID
		if ids[ticket.ID] {
			t.Fatalf("Ticket id %s issued twice", ticket.ID)
		}
		ids[ticket.ID] = true
	}

	if len(spots) != capacity {
		t.Errorf("Expected every one of %d spots to be taken, got %d", capacity, len(spots))
	}

	assertBijection(t, pl)
}

func TestConcurrentParkAndUnpark(t *testing.T) {
	pl, _ := newTestLot(t, 1)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				ticket, err := pl.Park(NewVehicle(fmt.Sprintf("W%d-%d", w, i), Bike))
				if err != nil {
					continue
				}
				if _, err := pl.Unpark(ticket.ID); err != nil {
					t.Errorf("Unpark %s: %v", ticket.ID, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	status := pl.Status()
	if status.Occupied != 0 || status.ActiveTickets != 0 {
		t.Errorf("Expected an empty lot, got %+v", status)
	}
}

func TestTicketLookup(t *testing.T) {
	pl, clock := newTestLot(t, 1)

	parked, _ := pl.Park(NewVehicle("ABC123", Car))

	got, err := pl.Ticket(parked.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != parked {
		t.Errorf("Expected %+v, got %+v", parked, got)
	}
	if !got.EntryTime.Equal(clock.Now()) {
		t.Errorf("Expected entry time %v, got %v", clock.Now(), got.EntryTime)
	}

	_, _ = pl.Unpark(parked.ID)
	if _, err := pl.Ticket(parked.ID); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("Expected ErrTicketNotFound after unpark, got %v", err)
	}
}

func TestTicketsByLicensePlate(t *testing.T) {
	pl, _ := newTestLot(t, 1)

	first, _ := pl.Park(NewVehicle("DUP1", Car))
	_, _ = pl.Park(NewVehicle("OTHER", Truck))
	second, _ := pl.Park(NewVehicle("DUP1", Bike))

	found := pl.TicketsByLicensePlate("DUP1")
	if len(found) != 2 {
		t.Fatalf("Expected 2 tickets, got %d", len(found))
	}
	if found[0].ID != first.ID || found[1].ID != second.ID {
		t.Errorf("Expected [%s %s], got [%s %s]", first.ID, second.ID, found[0].ID, found[1].ID)
	}

	if len(pl.TicketsByLicensePlate("NOTFOUND")) != 0 {
		t.Error("Expected no tickets for unknown plate")
	}
}

func TestListAvailableSpots(t *testing.T) {
	pl, _ := newTestLot(t, 2)
	_, _ = pl.Park(NewVehicle("ABC123", Car))

	floors := pl.ListAvailableSpots()
	if len(floors) != 2 {
		t.Fatalf("Expected 2 floors, got %d", len(floors))
	}

	if floors[0].FloorNumber != 1 || len(floors[0].Spots) != 25 {
		t.Errorf("Expected floor 1 with 25 free spots, got floor %d with %d", floors[0].FloorNumber, len(floors[0].Spots))
	}
	for _, spot := range floors[0].Spots {
		if spot.ID == "1B" {
			t.Error("Expected 1B to be missing from available spots")
		}
	}

	if floors[1].Spots[0] != (SpotInfo{ID: "2A", Type: Large}) {
		t.Errorf("Expected first free spot on floor 2 to be 2A LARGE, got %+v", floors[1].Spots[0])
	}
}
