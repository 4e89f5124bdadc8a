package handlers

import (
	"net/http"
	"parcel-service/internal/api/dto"
	"parcel-service/internal/domain"
	"parcel-service/internal/services"

	"github.com/gin-gonic/gin"
)

// PaymentHandler exposes payment intents and the payment history log.
type PaymentHandler struct {
	Service *services.PaymentService
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.CreatePaymentIntentRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	secret, err := h.Service.CreateIntent(c.Request.Context(), req.AmountInCents)
	if err != nil {
		writeServiceError(c, "payments.CreateIntent", err)
		return
	}

	writeJSON(c, http.StatusOK, dto.CreatePaymentIntentResponse{ClientSecret: secret})
}

func (h *PaymentHandler) RecordHistory(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.Service.RecordHistory(c.Request.Context(), services.RecordPaymentRequest{
		ParcelID:        req.ParcelID,
		UserEmail:       req.UserEmail,
		Amount:          req.Amount,
		PaymentIntentID: req.PaymentIntentID,
	})
	if err != nil {
		writeServiceError(c, "payments.RecordHistory", err)
		return
	}

	writeJSON(c, http.StatusCreated, dto.RecordPaymentResponse{
		Message: "Payment history saved successfully",
		Result:  dto.InsertResponse{Acknowledged: true, InsertedID: rec.ID},
	})
}

func (h *PaymentHandler) ListByUser(c *gin.Context) {
	recs, err := h.Service.ListByUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeServiceError(c, "payments.ListByUser", err)
		return
	}

	writeHistory(c, recs)
}

func (h *PaymentHandler) ListAll(c *gin.Context) {
	recs, err := h.Service.ListAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, "payments.ListAll", err)
		return
	}

	writeHistory(c, recs)
}

func writeHistory(c *gin.Context, recs []*domain.PaymentRecord) {
	if recs == nil {
		recs = []*domain.PaymentRecord{}
	}
	writeJSON(c, http.StatusOK, recs)
}
