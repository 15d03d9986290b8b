package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type InitializeFloorsRequest struct {
	Floors int `json:"floors"`
}

type ParkVehicleRequest struct {
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
}

type UnparkVehicleRequest struct {
	TicketID string `json:"ticket_id"`
}

type TicketResponse struct {
	TicketID     string    `json:"ticket_id"`
	LicensePlate string    `json:"license_plate"`
	VehicleType  string    `json:"vehicle_type"`
	SpotID       string    `json:"spot_id"`
	SpotType     string    `json:"spot_type"`
	Floor        int       `json:"floor"`
	EntryTime    time.Time `json:"entry_time"`
}

type ReceiptResponse struct {
	TicketResponse
	ExitTime    time.Time `json:"exit_time"`
	BilledHours int64     `json:"billed_hours"`
	Fee         int64     `json:"fee"`
}

type SpotResponse struct {
	SpotID   string `json:"spot_id"`
	SpotType string `json:"spot_type"`
}

type FloorAvailabilityResponse struct {
	Floor          int            `json:"floor"`
	AvailableSpots []SpotResponse `json:"available_spots"`
}

type StatusResponse struct {
	Floors        int   `json:"floors"`
	Capacity      int   `json:"capacity"`
	Occupied      int   `json:"occupied"`
	Available     int   `json:"available"`
	ActiveTickets int   `json:"active_tickets"`
	HourlyRate    int64 `json:"hourly_rate"`
}

func newTicketResponse(t parking.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:     t.ID,
		LicensePlate: t.Vehicle.LicensePlate,
		VehicleType:  t.Vehicle.Type.String(),
		SpotID:       t.SpotID,
		SpotType:     t.SpotType.String(),
		Floor:        t.FloorNumber,
		EntryTime:    t.EntryTime,
	}
}

func newReceiptResponse(r parking.Receipt) ReceiptResponse {
	return ReceiptResponse{
		TicketResponse: newTicketResponse(r.Ticket),
		ExitTime:       r.ExitTime,
		BilledHours:    r.BilledHours,
		Fee:            r.Fee,
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{RequestID: logging.RequestIDFromContext(ctx)}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
