package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raxilor/ratehub/internal/config"
	"github.com/raxilor/ratehub/internal/domain/store"
	"github.com/raxilor/ratehub/internal/domain/user"
	"github.com/raxilor/ratehub/internal/ratings"
	"github.com/raxilor/ratehub/internal/security"
)

type AdminUserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	List(ctx context.Context, role string) ([]user.User, error)
	Count(ctx context.Context) (int, error)
}

type AdminStoreStore interface {
	Create(ctx context.Context, s store.Store) (store.Store, error)
	List(ctx context.Context) ([]store.Store, error)
	Count(ctx context.Context) (int, error)
}

type AdminRatingStore interface {
	ValuesByStore(ctx context.Context) (map[string][]int, error)
	Count(ctx context.Context) (int, error)
}

type AdminHandler struct {
	users      AdminUserStore
	stores     AdminStoreStore
	ratingRepo AdminRatingStore
}

func NewAdminHandler(users AdminUserStore, stores AdminStoreStore, ratingRepo AdminRatingStore) *AdminHandler {
	return &AdminHandler{
		users:      users,
		stores:     stores,
		ratingRepo: ratingRepo,
	}
}

// Row shapes for the admin listings. rating is null unless the row is a
// store owner with a store; an unrated store reads 0.
type AdminUserRow struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Address string   `json:"address,omitempty"`
	Role    string   `json:"role"`
	Rating  *float64 `json:"rating"`
}

type AdminStoreRow struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address string  `json:"address,omitempty"`
	Rating  float64 `json:"rating"`
}

func (h *AdminHandler) Dashboard(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	userCount, err := h.users.Count(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load dashboard stats")
		return
	}

	storeCount, err := h.stores.Count(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load dashboard stats")
		return
	}

	ratingCount, err := h.ratingRepo.Count(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load dashboard stats")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"totalUsers":   userCount,
		"totalStores":  storeCount,
		"totalRatings": ratingCount,
	})
}

func (h *AdminHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, user.New(req.Name, req.Email, hash, req.Address, req.Role))

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AdminHandler) CreateStore(ctx *gin.Context) {
	var req store.CreateStoreRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s, err := h.stores.Create(cctx, store.NewFromCreateRequest(req))

	if err != nil {
		switch {
		case errors.Is(err, store.ErrOwnerHasStore):
			RespondBadRequest(ctx, "store_exists", "This owner already has a store.")
		case errors.Is(err, store.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "Store email is already in use.")
		case errors.Is(err, store.ErrOwnerNotFound):
			RespondBadRequest(ctx, "owner_not_found", "ownerId does not reference an existing user.")
		default:
			RespondInternal(ctx, "Could not create store")
		}
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

// ListUsers lists users optionally filtered by ?role=. Store owners carry
// their store's current average, recomputed from the ledger on each call.
func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	role := ctx.Query("role")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx, role)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	stores, err := h.stores.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	valuesByStore, err := h.ratingRepo.ValuesByStore(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	storeByOwner := make(map[string]string, len(stores))

	for _, s := range stores {
		if s.OwnerID != nil {
			storeByOwner[*s.OwnerID] = s.ID
		}
	}

	rows := make([]AdminUserRow, 0, len(users))

	for _, u := range users {
		row := AdminUserRow{
			ID:      u.ID,
			Name:    u.Name,
			Email:   u.Email,
			Address: u.Address,
			Role:    u.Role,
		}

		if u.Role == user.RoleStoreOwner {
			if storeID, ok := storeByOwner[u.ID]; ok {
				avg := ratings.Average(valuesByStore[storeID])
				row.Rating = &avg
			}
		}

		rows = append(rows, row)
	}

	ctx.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) ListStores(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	stores, err := h.stores.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list stores")
		return
	}

	valuesByStore, err := h.ratingRepo.ValuesByStore(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list stores")
		return
	}

	rows := make([]AdminStoreRow, 0, len(stores))

	for _, s := range stores {
		rows = append(rows, AdminStoreRow{
			ID:      s.ID,
			Name:    s.Name,
			Email:   s.Email,
			Address: s.Address,
			Rating:  ratings.Average(valuesByStore[s.ID]),
		})
	}

	ctx.JSON(http.StatusOK, rows)
}
