package handler

import (
	"encoding/json"
	"net/http"

	"slot-reservation-service/internal/delivery/dto"
	"slot-reservation-service/internal/domain/entity"
	"slot-reservation-service/internal/usecase"
	"slot-reservation-service/pkg/response"
	"slot-reservation-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type SlotHandler struct {
	slotUsecase usecase.SlotUsecase
	validator   *validator.CustomValidator
}

func NewSlotHandler(slotUsecase usecase.SlotUsecase, validator *validator.CustomValidator) *SlotHandler {
	return &SlotHandler{
		slotUsecase: slotUsecase,
		validator:   validator,
	}
}

func (h *SlotHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	var req dto.CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slot, err := h.slotUsecase.CreateSlot(r.Context(), &req, caller)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDateFormat, usecase.ErrInvalidTimeFormat,
			usecase.ErrInvalidTimeRange, usecase.ErrInvalidCategory, usecase.ErrSlotInPast:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case usecase.ErrSlotConflict:
			response.Conflict(w, "A slot already exists at this time")
		case usecase.ErrForbidden:
			response.Forbidden(w, "Only providers can create slots")
		default:
			response.InternalServerError(w, "Failed to create slot")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Slot created successfully", slot)
}

func (h *SlotHandler) GetOpenSlots(w http.ResponseWriter, r *http.Request) {
	filter := &entity.SlotFilter{
		DateFrom: r.URL.Query().Get("from"),
		DateTo:   r.URL.Query().Get("to"),
		Category: entity.SlotCategory(r.URL.Query().Get("category")),
	}
	if providerParam := r.URL.Query().Get("provider_id"); providerParam != "" {
		providerID, err := uuid.Parse(providerParam)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid provider ID", nil)
			return
		}
		filter.ProviderID = providerID
	}

	slots, err := h.slotUsecase.GetOpenSlots(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to list slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

func (h *SlotHandler) GetMySlots(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	slots, err := h.slotUsecase.GetMySlots(r.Context(), caller)
	if err != nil {
		if err == usecase.ErrForbidden {
			response.Forbidden(w, "Only providers have slots")
			return
		}
		response.InternalServerError(w, "Failed to list slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

func (h *SlotHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	slotID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid slot ID", nil)
		return
	}

	err = h.slotUsecase.DeleteSlot(r.Context(), slotID, caller)
	if err != nil {
		switch err {
		case usecase.ErrSlotNotFound:
			response.NotFound(w, "Slot not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "You may not delete this slot")
		case usecase.ErrSlotHasBooking:
			response.Conflict(w, "Slot has an active booking")
		default:
			response.InternalServerError(w, "Failed to delete slot")
		}
		return
	}

	response.Success(w, http.StatusOK, "Slot deleted successfully", nil)
}
