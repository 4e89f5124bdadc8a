package handlers

import (
	"net/http"
	"parcel-service/internal/api/dto"
	"parcel-service/internal/domain"
	"parcel-service/internal/services"

	"github.com/gin-gonic/gin"
)

// ParcelHandler exposes CRUD and payment confirmation for parcels.
type ParcelHandler struct {
	Service *services.ParcelService
}

func (h *ParcelHandler) List(c *gin.Context) {
	parcels, err := h.Service.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeServiceError(c, "parcels.List", err)
		return
	}

	if parcels == nil {
		parcels = []*domain.Parcel{}
	}
	writeJSON(c, http.StatusOK, parcels)
}

func (h *ParcelHandler) Get(c *gin.Context) {
	p, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "parcels.Get", err)
		return
	}

	writeJSON(c, http.StatusOK, p)
}

func (h *ParcelHandler) Create(c *gin.Context) {
	var p domain.Parcel
	if err := decodeJSON(c, &p); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	// Identifiers are always server-generated.
	p.ID = ""

	id, err := h.Service.Create(c.Request.Context(), &p)
	if err != nil {
		writeServiceError(c, "parcels.Create", err)
		return
	}

	writeJSON(c, http.StatusOK, dto.InsertResponse{Acknowledged: true, InsertedID: id})
}

func (h *ParcelHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := decodeJSON(c, &fields); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Service.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		writeServiceError(c, "parcels.Update", err)
		return
	}

	writeJSON(c, http.StatusOK, dto.UpdateResponse{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	})
}

func (h *ParcelHandler) Delete(c *gin.Context) {
	n, err := h.Service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "parcels.Delete", err)
		return
	}

	writeJSON(c, http.StatusOK, dto.DeleteResponse{Acknowledged: true, DeletedCount: n})
}

func (h *ParcelHandler) MarkPaid(c *gin.Context) {
	res, err := h.Service.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "parcels.MarkPaid", err)
		return
	}

	writeJSON(c, http.StatusOK, dto.MarkPaidResponse{
		Message: "Parcel marked as paid",
		UpdateParcel: dto.UpdateResponse{
			Acknowledged:  true,
			MatchedCount:  res.MatchedCount,
			ModifiedCount: res.ModifiedCount,
		},
	})
}
