package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell is the line-oriented operator console for a lot.
type Shell struct {
	lot       *InstrumentedParkingLot
	telemetry *TelemetryProvider
	scanner   *bufio.Scanner
	out       io.Writer
}

func NewShell(lot *InstrumentedParkingLot, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		lot:       lot,
		telemetry: telemetry,
		scanner:   bufio.NewScanner(in),
		out:       out,
	}
}

// Run processes commands until the input is exhausted or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil && s.scanner.Scan() {
		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	span := trace.SpanFromContext(ctx)

	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "init":
		s.handleInit(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "unpark":
		s.handleUnpark(ctx, parts)
	case "available":
		s.handleAvailable(ctx)
	case "ticket":
		s.handleTicket(ctx, parts)
	case "find":
		s.handleFind(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "help":
		s.printHelp()
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleInit(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: init <floors>")
		return
	}

	floors, err := strconv.Atoi(parts[1])
	if err != nil || floors <= 0 || floors > MaxFloors {
		s.println("Invalid floor count")
		return
	}

	if err := s.lot.InitializeFloors(ctx, floors); err != nil {
		if errors.Is(err, ErrAlreadyInitialized) {
			s.println("Parking lot already initialized")
			return
		}
		s.printf("Error: %s\n", err)
		return
	}

	s.printf("Created a parking lot with %d floors (%d spots)\n", floors, floors*spotsPerFloor)
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.println("Usage: park <license_plate> <car|bike|truck>")
		return
	}

	vehicleType, err := ParseVehicleType(parts[2])
	if err != nil {
		s.printf("Invalid vehicle type: %s\n", parts[2])
		return
	}

	ticket, err := s.lot.Park(ctx, NewVehicle(parts[1], vehicleType))
	switch {
	case errors.Is(err, ErrNotInitialized):
		s.println("Parking lot not created")
	case errors.Is(err, ErrNoSpotAvailable):
		s.println("Sorry, no spot available")
	case err != nil:
		s.printf("Error: %s\n", err)
	default:
		s.printf("Vehicle parked at spot: %s\nTicket ID: %s\n", ticket.SpotID, ticket.ID)
	}
}

func (s *Shell) handleUnpark(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: unpark <ticket_id>")
		return
	}

	receipt, err := s.lot.Unpark(ctx, parts[1])
	switch {
	case errors.Is(err, ErrTicketNotFound):
		s.println("Ticket not found")
	case err != nil:
		s.printf("Error: %s\n", err)
	default:
		s.printf("Spot %s is free. Fee: %d\n", receipt.Ticket.SpotID, receipt.Fee)
	}
}

func (s *Shell) handleAvailable(ctx context.Context) {
	floors := s.lot.ListAvailableSpots(ctx)
	if len(floors) == 0 {
		s.println("Parking lot not created")
		return
	}

	for _, floor := range floors {
		s.printf("Floor %d available spots:\n", floor.FloorNumber)
		for _, spot := range floor.Spots {
			s.printf("%s (%s)\t", spot.ID, spot.Type)
		}
		s.printf("\n\n")
	}
}

func (s *Shell) handleTicket(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: ticket <ticket_id>")
		return
	}

	ticket, err := s.lot.Ticket(ctx, parts[1])
	if err != nil {
		s.println("Ticket not found")
		return
	}

	s.printf("%s\t%s\t%s\t%s\t%s\n",
		ticket.ID, ticket.SpotID, ticket.Vehicle.LicensePlate, ticket.Vehicle.Type,
		ticket.EntryTime.Format("2006-01-02 15:04:05"))
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: find <license_plate>")
		return
	}

	tickets := s.lot.TicketsByLicensePlate(ctx, parts[1])
	if len(tickets) == 0 {
		s.println("Not found")
		return
	}

	for _, ticket := range tickets {
		s.printf("%s\t%s\n", ticket.ID, ticket.SpotID)
	}
}

func (s *Shell) handleStatus(ctx context.Context) {
	status := s.lot.Status(ctx)
	if status.Floors == 0 {
		s.println("Parking lot not created")
		return
	}

	s.println("Floors\tCapacity\tOccupied\tAvailable")
	s.printf("%d\t%d\t\t%d\t\t%d\n", status.Floors, status.Capacity, status.Occupied, status.Available)
}

func (s *Shell) printHelp() {
	s.println(`Commands:
  init <floors>
  park <license_plate> <car|bike|truck>
  unpark <ticket_id>
  available
  ticket <ticket_id>
  find <license_plate>
  status`)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}
