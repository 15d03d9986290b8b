package parking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/logging"
)

type InstrumentedParkingLot struct {
	*ParkingLot
	telemetry *TelemetryProvider
	logger    zerolog.Logger

	// Metrics
	parkingOperations   metric.Int64Counter
	unparkingOperations metric.Int64Counter
	occupancyGauge      metric.Int64UpDownCounter
	totalSpotsGauge     metric.Int64UpDownCounter
	feesCollected       metric.Int64Counter
	operationDuration   metric.Float64Histogram
}

func NewInstrumentedParkingLot(lot *ParkingLot, telemetry *TelemetryProvider) (*InstrumentedParkingLot, error) {
	meter := telemetry.Meter()

	parkingOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of park requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	unparkingOperations, err := meter.Int64Counter("unparking_operations_total",
		metric.WithDescription("Total number of unpark requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_spots",
		metric.WithDescription("Total number of parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Int64Counter("parking_fees_total",
		metric.WithDescription("Fees charged on unpark, in currency units"),
		metric.WithUnit("{unit}"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedParkingLot{
		ParkingLot:          lot,
		telemetry:           telemetry,
		logger:              logging.WithComponent("parking"),
		parkingOperations:   parkingOperations,
		unparkingOperations: unparkingOperations,
		occupancyGauge:      occupancyGauge,
		totalSpotsGauge:     totalSpotsGauge,
		feesCollected:       feesCollected,
		operationDuration:   operationDuration,
	}, nil
}

func (ipl *InstrumentedParkingLot) InitializeFloors(ctx context.Context, count int) error {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.initialize_floors",
		trace.WithAttributes(attribute.Int("floors.count", count)))
	defer span.End()

	start := time.Now()
	err := ipl.ParkingLot.InitializeFloors(count)

	labels := []attribute.KeyValue{attribute.String("operation", "initialize_floors")}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.FromContext(ctx, ipl.logger).Warn().Err(err).Int("floors", count).Msg("floor initialization rejected")
	} else {
		capacity := count * spotsPerFloor
		span.SetAttributes(attribute.Int("parking_lot.capacity", capacity))
		labels = append(labels, attribute.String("status", "success"))
		ipl.totalSpotsGauge.Add(ctx, int64(capacity))
		logging.FromContext(ctx, ipl.logger).Info().Int("floors", count).Int("capacity", capacity).Msg("floors initialized")
	}

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return err
}

func (ipl *InstrumentedParkingLot) Park(ctx context.Context, vehicle Vehicle) (Ticket, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.park",
		trace.WithAttributes(
			attribute.String("vehicle.license_plate", vehicle.LicensePlate),
			attribute.String("vehicle.type", vehicle.Type.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_spot")

	ticket, err := ipl.ParkingLot.Park(vehicle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_type", vehicle.Type.String()),
	}

	switch {
	case errors.Is(err, ErrNoSpotAvailable):
		span.AddEvent("no_spot_available")
		labels = append(labels, attribute.String("status", "no_spot"))
		logging.FromContext(ctx, ipl.logger).Info().Str("vehicle_type", vehicle.Type.String()).Msg("no spot available")
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.FromContext(ctx, ipl.logger).Warn().Err(err).Msg("park failed")
	default:
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.String("spot.id", ticket.SpotID),
			attribute.Int("spot.floor", ticket.FloorNumber),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.String("spot_id", ticket.SpotID),
			attribute.String("spot_type", ticket.SpotType.String()),
		))
		ipl.occupancyGauge.Add(ctx, 1)
		logging.FromContext(ctx, ipl.logger).Debug().
			Str("ticket_id", ticket.ID).
			Str("spot_id", ticket.SpotID).
			Str("license_plate", vehicle.LicensePlate).
			Msg("vehicle parked")
	}

	ipl.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ipl *InstrumentedParkingLot) Unpark(ctx context.Context, ticketID string) (Receipt, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.unpark",
		trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	start := time.Now()

	span.AddEvent("releasing_spot")

	receipt, err := ipl.ParkingLot.Unpark(ticketID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{attribute.String("operation", "unpark")}

	switch {
	case errors.Is(err, ErrTicketNotFound):
		span.AddEvent("ticket_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
		logging.FromContext(ctx, ipl.logger).Info().Str("ticket_id", ticketID).Msg("unknown ticket presented")
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		logging.FromContext(ctx, ipl.logger).Error().Err(err).Str("ticket_id", ticketID).Msg("unpark failed")
	default:
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("vehicle_type", receipt.Ticket.Vehicle.Type.String()),
		)
		span.SetAttributes(
			attribute.String("spot.id", receipt.Ticket.SpotID),
			attribute.Int64("fee.billed_hours", receipt.BilledHours),
			attribute.Int64("fee.amount", receipt.Fee),
		)
		span.AddEvent("spot_released")
		ipl.occupancyGauge.Add(ctx, -1)
		ipl.feesCollected.Add(ctx, receipt.Fee)
		logging.FromContext(ctx, ipl.logger).Debug().
			Str("ticket_id", ticketID).
			Str("spot_id", receipt.Ticket.SpotID).
			Int64("fee", receipt.Fee).
			Msg("vehicle unparked")
	}

	ipl.unparkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func (ipl *InstrumentedParkingLot) ListAvailableSpots(ctx context.Context) []FloorAvailability {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.list_available")
	defer span.End()

	start := time.Now()
	floors := ipl.ParkingLot.ListAvailableSpots()

	free := 0
	for _, floor := range floors {
		free += len(floor.Spots)
	}
	span.SetAttributes(
		attribute.Int("floors.count", len(floors)),
		attribute.Int("available_spots_count", free),
	)

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "list_available"),
		attribute.String("status", "success"),
	))

	return floors
}

func (ipl *InstrumentedParkingLot) Ticket(ctx context.Context, ticketID string) (Ticket, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.get_ticket",
		trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	start := time.Now()
	ticket, err := ipl.ParkingLot.Ticket(ticketID)

	status := "found"
	if err != nil {
		span.AddEvent("ticket_not_found")
		status = "not_found"
	} else {
		span.SetAttributes(attribute.String("spot.id", ticket.SpotID))
	}

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "get_ticket"),
		attribute.String("status", status),
	))

	return ticket, err
}

func (ipl *InstrumentedParkingLot) TicketsByLicensePlate(ctx context.Context, licensePlate string) []Ticket {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.find_by_plate",
		trace.WithAttributes(attribute.String("vehicle.license_plate", licensePlate)))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_by_license_plate")

	tickets := ipl.ParkingLot.TicketsByLicensePlate(licensePlate)
	span.SetAttributes(attribute.Int("tickets.count", len(tickets)))

	status := "found"
	if len(tickets) == 0 {
		status = "not_found"
	}
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "find_by_plate"),
		attribute.String("status", status),
	))

	return tickets
}

func (ipl *InstrumentedParkingLot) Status(ctx context.Context) Status {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.status")
	defer span.End()

	start := time.Now()
	status := ipl.ParkingLot.Status()

	span.SetAttributes(
		attribute.Int("total_capacity", status.Capacity),
		attribute.Int("occupied_spots_count", status.Occupied),
	)

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return status
}
