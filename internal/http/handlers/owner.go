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

type OwnerStoreStore interface {
	Create(ctx context.Context, s store.Store) (store.Store, error)
	GetByOwner(ctx context.Context, ownerID string) (store.Store, error)
}

type OwnerRatingStore interface {
	ListForStore(ctx context.Context, storeID string) ([]rating.StoreReview, error)
}

type OwnerHandler struct {
	stores     OwnerStoreStore
	ratingRepo OwnerRatingStore
}

func NewOwnerHandler(stores OwnerStoreStore, ratingRepo OwnerRatingStore) *OwnerHandler {
	return &OwnerHandler{
		stores:     stores,
		ratingRepo: ratingRepo,
	}
}

// Dashboard shows the owner's store with its live average and the reviewer
// list. ?sort=date|rating|name re-orders the reviewers; default newest-first.
func (h *OwnerHandler) Dashboard(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || ownerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s, err := h.stores.GetByOwner(cctx, ownerID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondNotFound(ctx, "Store not found for this owner")
			return
		}

		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	reviews, err := h.ratingRepo.ListForStore(cctx, s.ID)

	if err != nil {
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ratings.SortReviews(reviews, ctx.Query("sort"))

	ctx.JSON(http.StatusOK, gin.H{
		"storeName":     s.Name,
		"averageRating": ratings.Average(ratings.Values(reviews)),
		"reviewers":     reviews,
	})
}

func (h *OwnerHandler) CreateStore(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || ownerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req store.CreateOwnerStoreRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// owner is always the caller on this path
	s, err := h.stores.Create(cctx, store.NewFromCreateRequest(store.CreateStoreRequest{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: &ownerID,
	}))

	if err != nil {
		switch {
		case errors.Is(err, store.ErrOwnerHasStore):
			RespondBadRequest(ctx, "store_exists", "You already have a store registered.")
		case errors.Is(err, store.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "Store email is already in use.")
		default:
			RespondInternal(ctx, "Could not create store")
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"store":   s,
	})
}
