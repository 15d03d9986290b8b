package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"parking-garage/internal/parking"
)

// maxRequestBodyBytes caps every JSON request body.
const maxRequestBodyBytes = 1 << 20

type Handler struct {
	lot         *parking.InstrumentedParkingLot
	serviceName string
}

func NewHandler(lot *parking.InstrumentedParkingLot, serviceName string) *Handler {
	return &Handler{
		lot:         lot,
		serviceName: serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) InitializeFloors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req InitializeFloorsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.lot.InitializeFloors(ctx, req.Floors); err != nil {
		writeParkingError(ctx, w, err)
		return
	}

	status := h.lot.Status(ctx)
	WriteSuccess(ctx, w, http.StatusCreated, "Parking lot created successfully", map[string]any{
		"floors":   status.Floors,
		"capacity": status.Capacity,
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkVehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plate := strings.TrimSpace(req.LicensePlate)
	if plate == "" || req.VehicleType == "" {
		WriteError(ctx, w, http.StatusBadRequest, "License plate and vehicle type are required")
		return
	}

	vehicleType, err := parking.ParseVehicleType(req.VehicleType)
	if err != nil {
		writeParkingError(ctx, w, err)
		return
	}

	ticket, err := h.lot.Park(ctx, parking.NewVehicle(plate, vehicleType))
	if err != nil {
		writeParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, http.StatusCreated, "Vehicle parked successfully", newTicketResponse(ticket))
}

func (h *Handler) UnparkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UnparkVehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TicketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket ID is required")
		return
	}

	receipt, err := h.lot.Unpark(ctx, req.TicketID)
	if err != nil {
		writeParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, http.StatusOK, "Vehicle unparked successfully", newReceiptResponse(receipt))
}

func (h *Handler) ListAvailableSpots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.lot.Initialized() {
		writeParkingError(ctx, w, parking.ErrNotInitialized)
		return
	}

	floors := h.lot.ListAvailableSpots(ctx)

	response := make([]FloorAvailabilityResponse, 0, len(floors))
	for _, floor := range floors {
		spots := make([]SpotResponse, 0, len(floor.Spots))
		for _, spot := range floor.Spots {
			spots = append(spots, SpotResponse{SpotID: spot.ID, SpotType: spot.Type.String()})
		}
		response = append(response, FloorAvailabilityResponse{Floor: floor.FloorNumber, AvailableSpots: spots})
	}

	WriteSuccess(ctx, w, http.StatusOK, "Available spots retrieved successfully", response)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.lot.Initialized() {
		writeParkingError(ctx, w, parking.ErrNotInitialized)
		return
	}

	status := h.lot.Status(ctx)
	WriteSuccess(ctx, w, http.StatusOK, "Status retrieved successfully", StatusResponse{
		Floors:        status.Floors,
		Capacity:      status.Capacity,
		Occupied:      status.Occupied,
		Available:     status.Available,
		ActiveTickets: status.ActiveTickets,
		HourlyRate:    h.lot.HourlyRate(),
	})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticket, err := h.lot.Ticket(ctx, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, http.StatusOK, "Ticket found", newTicketResponse(ticket))
}

func (h *Handler) FindByLicensePlate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := chi.URLParam(r, "plate")
	if plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "License plate is required")
		return
	}

	tickets := h.lot.TicketsByLicensePlate(ctx, plate)
	if len(tickets) == 0 {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	response := make([]TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, newTicketResponse(ticket))
	}

	WriteSuccess(ctx, w, http.StatusOK, "Vehicle found", response)
}

func writeParkingError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parking.ErrInvalidFloorCount), errors.Is(err, parking.ErrInvalidVehicleType):
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, parking.ErrAlreadyInitialized), errors.Is(err, parking.ErrNoSpotAvailable):
		WriteError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, parking.ErrNotInitialized):
		WriteError(ctx, w, http.StatusPreconditionFailed, "Parking lot not created. Create parking lot first")
	case errors.Is(err, parking.ErrTicketNotFound):
		WriteError(ctx, w, http.StatusNotFound, err.Error())
	default:
		WriteError(ctx, w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
