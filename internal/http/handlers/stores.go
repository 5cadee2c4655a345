package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raxilor/ratehub/internal/config"
	"github.com/raxilor/ratehub/internal/domain/rating"
	"github.com/raxilor/ratehub/internal/domain/store"
	"github.com/raxilor/ratehub/internal/http/middlewares"
	"github.com/raxilor/ratehub/internal/ratings"
)

type StoreLister interface {
	List(ctx context.Context) ([]store.Store, error)
}

type RatingLedger interface {
	All(ctx context.Context) ([]rating.Rating, error)
	Upsert(ctx context.Context, rt rating.Rating) error
}

// StoresHandler serves the regular-user surface: browse stores with live
// averages and submit 1-5 star ratings.
type StoresHandler struct {
	stores StoreLister
	ledger RatingLedger
}

func NewStoresHandler(stores StoreLister, ledger RatingLedger) *StoresHandler {
	return &StoresHandler{
		stores: stores,
		ledger: ledger,
	}
}

type UserStoreRow struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Address             string  `json:"address,omitempty"`
	OverallRating       float64 `json:"overallRating"`
	UserSubmittedRating *int    `json:"userSubmittedRating"`
}

func (h *StoresHandler) ListStores(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	stores, err := h.stores.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list stores")
		return
	}

	all, err := h.ledger.All(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list stores")
		return
	}

	valuesByStore := make(map[string][]int)
	ownByStore := make(map[string]int)

	for _, rt := range all {
		valuesByStore[rt.StoreID] = append(valuesByStore[rt.StoreID], rt.Value)

		if rt.UserID == userID {
			ownByStore[rt.StoreID] = rt.Value
		}
	}

	rows := make([]UserStoreRow, 0, len(stores))

	for _, s := range stores {
		row := UserStoreRow{
			ID:            s.ID,
			Name:          s.Name,
			Address:       s.Address,
			OverallRating: ratings.Average(valuesByStore[s.ID]),
		}

		if own, rated := ownByStore[s.ID]; rated {
			v := own
			row.UserSubmittedRating = &v
		}

		rows = append(rows, row)
	}

	ctx.JSON(http.StatusOK, rows)
}

// SubmitRating upserts the caller's rating for a store. Submitting again
// overwrites the earlier value; the ledger never holds two rows for one
// (user, store) pair.
func (h *StoresHandler) SubmitRating(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req rating.SubmitRatingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.ledger.Upsert(cctx, rating.New(userID, req.StoreID, req.Value))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondBadRequest(ctx, "store_not_found", "storeId does not reference an existing store.")
			return
		}

		RespondInternal(ctx, "Could not submit rating")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Rating submitted successfully"})
}
