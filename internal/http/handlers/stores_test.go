package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/raxilor/ratehub/internal/domain/rating"
	"github.com/raxilor/ratehub/internal/domain/store"
	"github.com/raxilor/ratehub/internal/http/handlers"
	"github.com/raxilor/ratehub/internal/http/middlewares"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake ledger with real upsert semantics keyed on (userId, storeId).

type fakeLedger struct {
	rows        map[string]rating.Rating
	knownStores map[string]bool
	upsertErr   error
}

func newFakeLedger(storeIDs ...string) *fakeLedger {
	known := make(map[string]bool, len(storeIDs))
	for _, id := range storeIDs {
		known[id] = true
	}

	return &fakeLedger{
		rows:        make(map[string]rating.Rating),
		knownStores: known,
	}
}

func pairKey(userID, storeID string) string {
	return userID + "|" + storeID
}

func (f *fakeLedger) Upsert(ctx context.Context, rt rating.Rating) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}

	if !f.knownStores[rt.StoreID] {
		return store.ErrNotFound
	}

	key := pairKey(rt.UserID, rt.StoreID)

	if existing, ok := f.rows[key]; ok {
		existing.Value = rt.Value
		existing.UpdatedAt = rt.UpdatedAt
		f.rows[key] = existing
		return nil
	}

	f.rows[key] = rt
	return nil
}

func (f *fakeLedger) All(ctx context.Context) ([]rating.Rating, error) {
	out := make([]rating.Rating, 0, len(f.rows))
	for _, rt := range f.rows {
		out = append(out, rt)
	}
	return out, nil
}

type fakeStoreLister struct {
	stores []store.Store
}

func (f *fakeStoreLister) List(ctx context.Context) ([]store.Store, error) {
	return f.stores, nil
}

// helper to mount a handler behind a staged identity

func routerAs(userID, role, method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		if userID != "" {
			middlewares.SetIdentity(c, userID, userID+"@example.com", role)
		}
		c.Next()
	}, h)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("could not decode error envelope: %v (body %s)", err, w.Body.String())
	}

	return envelope.Error.Code
}

func TestSubmitRatingUpsertKeepsOneRow(t *testing.T) {
	storeID := uuid.NewString()
	userID := uuid.NewString()

	ledger := newFakeLedger(storeID)
	h := handlers.NewStoresHandler(&fakeStoreLister{}, ledger)

	r := routerAs(userID, "User", http.MethodPost, "/user/rate", h.SubmitRating)

	for _, value := range []int{3, 5} {
		body := fmt.Sprintf(`{"storeId": %q, "rating": %d}`, storeID, value)

		w := doJSON(t, r, http.MethodPost, "/user/rate", body)

		if w.Code != http.StatusOK {
			t.Fatalf("submit %d: status = %d, body %s", value, w.Code, w.Body.String())
		}
	}

	if len(ledger.rows) != 1 {
		t.Fatalf("ledger holds %d rows, want exactly 1", len(ledger.rows))
	}

	got := ledger.rows[pairKey(userID, storeID)]

	if got.Value != 5 {
		t.Fatalf("surviving value = %d, want the second submission's 5", got.Value)
	}
}

func TestSubmitRatingOutOfRange(t *testing.T) {
	storeID := uuid.NewString()
	userID := uuid.NewString()

	ledger := newFakeLedger(storeID)
	h := handlers.NewStoresHandler(&fakeStoreLister{}, ledger)

	r := routerAs(userID, "User", http.MethodPost, "/user/rate", h.SubmitRating)

	for _, value := range []int{0, 6, -1} {
		body := fmt.Sprintf(`{"storeId": %q, "rating": %d}`, storeID, value)

		w := doJSON(t, r, http.MethodPost, "/user/rate", body)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("value %d: status = %d, want 400", value, w.Code)
		}
	}

	if len(ledger.rows) != 0 {
		t.Fatalf("ledger holds %d rows after rejected submissions, want 0", len(ledger.rows))
	}
}

func TestSubmitRatingUnknownStore(t *testing.T) {
	userID := uuid.NewString()

	ledger := newFakeLedger() // knows no stores
	h := handlers.NewStoresHandler(&fakeStoreLister{}, ledger)

	r := routerAs(userID, "User", http.MethodPost, "/user/rate", h.SubmitRating)

	body := fmt.Sprintf(`{"storeId": %q, "rating": 4}`, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/user/rate", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if code := errorCode(t, w); code != "store_not_found" {
		t.Fatalf("error code = %q, want store_not_found", code)
	}
}

func TestSubmitRatingWithoutIdentity(t *testing.T) {
	ledger := newFakeLedger()
	h := handlers.NewStoresHandler(&fakeStoreLister{}, ledger)

	r := routerAs("", "", http.MethodPost, "/user/rate", h.SubmitRating)

	w := doJSON(t, r, http.MethodPost, "/user/rate", `{"storeId": "x", "rating": 3}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestListStoresPerUserView(t *testing.T) {
	storeID := uuid.NewString()
	userA := uuid.NewString()
	userB := uuid.NewString()
	userC := uuid.NewString()

	ledger := newFakeLedger(storeID)
	_ = ledger.Upsert(context.Background(), rating.New(userA, storeID, 3))
	_ = ledger.Upsert(context.Background(), rating.New(userB, storeID, 5))

	lister := &fakeStoreLister{stores: []store.Store{{ID: storeID, Name: "The Tech Gadgets Mega Store"}}}
	h := handlers.NewStoresHandler(lister, ledger)

	type row struct {
		ID                  string  `json:"id"`
		OverallRating       float64 `json:"overallRating"`
		UserSubmittedRating *int    `json:"userSubmittedRating"`
	}

	cases := []struct {
		name   string
		userID string
		want   *int
	}{
		{name: "rater A sees own 3", userID: userA, want: intPtr(3)},
		{name: "rater B sees own 5", userID: userB, want: intPtr(5)},
		{name: "non-rater C sees null", userID: userC, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := routerAs(tc.userID, "User", http.MethodGet, "/user/stores", h.ListStores)

			req := httptest.NewRequest(http.MethodGet, "/user/stores", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}

			var rows []row

			if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
				t.Fatalf("decode: %v", err)
			}

			if len(rows) != 1 {
				t.Fatalf("got %d rows, want 1", len(rows))
			}

			if rows[0].OverallRating != 4.0 {
				t.Errorf("overallRating = %v, want 4.0", rows[0].OverallRating)
			}

			switch {
			case tc.want == nil && rows[0].UserSubmittedRating != nil:
				t.Errorf("userSubmittedRating = %d, want null", *rows[0].UserSubmittedRating)
			case tc.want != nil && (rows[0].UserSubmittedRating == nil || *rows[0].UserSubmittedRating != *tc.want):
				t.Errorf("userSubmittedRating = %v, want %d", rows[0].UserSubmittedRating, *tc.want)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
