package parking

import (
	"strconv"
	"sync/atomic"
	"time"
)

// TicketSequence hands out ticket IDs "T1", "T2", ... and never reuses one.
type TicketSequence struct {
	n atomic.Uint64
}

func NewTicketSequence() *TicketSequence {
	return &TicketSequence{}
}

func (s *TicketSequence) Next() string {
	return "T" + strconv.FormatUint(s.n.Add(1), 10)
}

// processTickets is shared by every lot that is not given its own sequence,
// which keeps ticket IDs unique for the life of the process.
var processTickets = NewTicketSequence()

// Ticket is the proof that SpotID is held by Vehicle since EntryTime.
// Tickets are handed out by value and never change after issue.
type Ticket struct {
	ID          string
	Vehicle     Vehicle
	SpotID      string
	SpotType    SpotType
	FloorNumber int
	EntryTime   time.Time
}

func newTicket(id string, vehicle Vehicle, spot *Spot, floorNumber int, entry time.Time) Ticket {
	return Ticket{
		ID:          id,
		Vehicle:     vehicle,
		SpotID:      spot.ID(),
		SpotType:    spot.Type(),
		FloorNumber: floorNumber,
		EntryTime:   entry,
	}
}

// Receipt is returned when a ticket is redeemed.
type Receipt struct {
	Ticket      Ticket
	ExitTime    time.Time
	BilledHours int64
	Fee         int64
}
