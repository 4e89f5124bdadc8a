package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"parcel-service/internal/adapters/payment"
	"parcel-service/internal/adapters/repositories"
	"parcel-service/internal/services"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (http.Handler, *repositories.MemoryStore) {
	t.Helper()

	store := repositories.NewMemoryStore()
	parcels := services.NewParcelService(store, nil)
	payments := services.NewPaymentService(payment.NewMockGateway(), store, nil, nil)

	return NewRouter(parcels, payments, "http://localhost:5173"), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func createParcel(t *testing.T, h http.Handler, body string) string {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/parcels", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Acknowledged bool   `json:"acknowledged"`
		InsertedID   string `json:"insertedId"`
	}
	decode(t, rec, &res)
	if !res.Acknowledged || res.InsertedID == "" {
		t.Fatalf("unexpected insert result: %+v", res)
	}
	return res.InsertedID
}

func TestRoot(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ParcelBD Server is running..." {
		t.Fatalf("GET / = %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res map[string]string
	decode(t, rec, &res)
	if res["status"] != "ok" {
		t.Fatalf("unexpected body: %v", res)
	}
}

func TestCreateParcelRequiresSenderAndReceiver(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, body := range []string{`{"receiver_name":"B"}`, `{"sender_name":"A"}`, `{"sender_name":"","receiver_name":"B"}`, ``} {
		rec := do(t, h, http.MethodPost, "/parcels", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}

		var res map[string]string
		decode(t, rec, &res)
		if res["error"] != "Sender & Receiver required!" {
			t.Fatalf("body %q: error = %q", body, res["error"])
		}
	}

	rec := do(t, h, http.MethodGet, "/parcels", "")
	if rec.Body.String() != "[]" {
		t.Fatalf("expected no parcels, got %s", rec.Body.String())
	}
}

func TestCreateParcelRejectsMalformedJSON(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/parcels", `{"sender_name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var res map[string]string
	decode(t, rec, &res)
	if res["error"] != "invalid json body" {
		t.Fatalf("error = %q", res["error"])
	}
}

func TestCreateThenGetParcel(t *testing.T) {
	h, _ := newTestRouter(t)

	id := createParcel(t, h, `{"sender_name":"A","receiver_name":"B","weight":2.5,"_id":"client-chosen"}`)
	if id == "client-chosen" {
		t.Fatalf("client supplied _id was used")
	}

	rec := do(t, h, http.MethodGet, "/parcels/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got map[string]any
	decode(t, rec, &got)
	if got["_id"] != id || got["sender_name"] != "A" || got["receiver_name"] != "B" || got["weight"] != 2.5 {
		t.Fatalf("unexpected parcel: %v", got)
	}
	if _, ok := got["payment_status"]; ok {
		t.Fatalf("new parcel must not carry payment_status: %v", got)
	}
}

func TestGetParcelNotFound(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, id := range []string{"65a000000000000000000000", "not-an-id"} {
		rec := do(t, h, http.MethodGet, "/parcels/"+id, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("id %q: status = %d, want 404", id, rec.Code)
		}
	}
}

func TestListParcelsFilterAndOrder(t *testing.T) {
	h, _ := newTestRouter(t)

	first := createParcel(t, h, `{"sender_name":"A","receiver_name":"B","user_email":"x@x.io"}`)
	createParcel(t, h, `{"sender_name":"C","receiver_name":"D","user_email":"y@x.io"}`)
	third := createParcel(t, h, `{"sender_name":"E","receiver_name":"F","user_email":"x@x.io"}`)

	rec := do(t, h, http.MethodGet, "/parcels?email=x@x.io", "")
	var got []map[string]any
	decode(t, rec, &got)

	if len(got) != 2 {
		t.Fatalf("expected 2 parcels, got %d", len(got))
	}
	if got[0]["_id"] != third || got[1]["_id"] != first {
		t.Fatalf("expected newest first, got %v then %v", got[0]["_id"], got[1]["_id"])
	}
	for _, p := range got {
		if p["user_email"] != "x@x.io" {
			t.Fatalf("filter leaked %v", p)
		}
	}

	rec = do(t, h, http.MethodGet, "/parcels", "")
	got = nil
	decode(t, rec, &got)
	if len(got) != 3 {
		t.Fatalf("expected 3 parcels, got %d", len(got))
	}
}

func TestUpdateParcel(t *testing.T) {
	h, _ := newTestRouter(t)

	id := createParcel(t, h, `{"sender_name":"A","receiver_name":"B"}`)

	rec := do(t, h, http.MethodPut, "/parcels/"+id, `{"receiver_name":"Z","status":"in transit"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res struct {
		Acknowledged  bool  `json:"acknowledged"`
		MatchedCount  int64 `json:"matchedCount"`
		ModifiedCount int64 `json:"modifiedCount"`
	}
	decode(t, rec, &res)
	if !res.Acknowledged || res.MatchedCount != 1 {
		t.Fatalf("unexpected update result: %+v", res)
	}

	rec = do(t, h, http.MethodGet, "/parcels/"+id, "")
	var got map[string]any
	decode(t, rec, &got)
	if got["receiver_name"] != "Z" || got["status"] != "in transit" || got["sender_name"] != "A" {
		t.Fatalf("unexpected parcel after update: %v", got)
	}

	rec = do(t, h, http.MethodPut, "/parcels/65a000000000000000000000", `{"receiver_name":"Z"}`)
	res.MatchedCount = -1
	decode(t, rec, &res)
	if rec.Code != http.StatusOK || res.MatchedCount != 0 {
		t.Fatalf("unknown id: status = %d, matched = %d", rec.Code, res.MatchedCount)
	}
}

func TestUpdateParcelFreeFormPaidAtStaysReadable(t *testing.T) {
	h, _ := newTestRouter(t)

	id := createParcel(t, h, `{"sender_name":"A","receiver_name":"B"}`)

	rec := do(t, h, http.MethodPut, "/parcels/"+id, `{"paidAt":"tomorrow"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/parcels/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	decode(t, rec, &got)
	if got["paidAt"] != "tomorrow" {
		t.Fatalf("paidAt = %v, want tomorrow", got["paidAt"])
	}

	rec = do(t, h, http.MethodGet, "/parcels", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/parcels/"+id+"/paid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateParcelUnchangedReportsZeroModified(t *testing.T) {
	h, _ := newTestRouter(t)

	id := createParcel(t, h, `{"sender_name":"A","receiver_name":"B"}`)

	rec := do(t, h, http.MethodPut, "/parcels/"+id, `{"sender_name":"A"}`)
	var res struct {
		MatchedCount  int64 `json:"matchedCount"`
		ModifiedCount int64 `json:"modifiedCount"`
	}
	decode(t, rec, &res)
	if res.MatchedCount != 1 || res.ModifiedCount != 0 {
		t.Fatalf("unexpected update result: %+v", res)
	}
}

func TestDeleteParcel(t *testing.T) {
	h, _ := newTestRouter(t)

	id := createParcel(t, h, `{"sender_name":"A","receiver_name":"B"}`)

	var res struct {
		Acknowledged bool  `json:"acknowledged"`
		DeletedCount int64 `json:"deletedCount"`
	}

	rec := do(t, h, http.MethodDelete, "/parcels/"+id, "")
	decode(t, rec, &res)
	if rec.Code != http.StatusOK || res.DeletedCount != 1 {
		t.Fatalf("delete: status = %d, deleted = %d", rec.Code, res.DeletedCount)
	}

	rec = do(t, h, http.MethodDelete, "/parcels/"+id, "")
	decode(t, rec, &res)
	if rec.Code != http.StatusOK || res.DeletedCount != 0 {
		t.Fatalf("second delete: status = %d, deleted = %d", rec.Code, res.DeletedCount)
	}
}

func TestMarkParcelPaid(t *testing.T) {
	h, _ := newTestRouter(t)

	id := createParcel(t, h, `{"sender_name":"A","receiver_name":"B"}`)

	rec := do(t, h, http.MethodPost, "/parcels/"+id+"/paid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Message      string `json:"message"`
		UpdateParcel struct {
			ModifiedCount int64 `json:"modifiedCount"`
		} `json:"updateParcel"`
	}
	decode(t, rec, &res)
	if res.Message != "Parcel marked as paid" || res.UpdateParcel.ModifiedCount != 1 {
		t.Fatalf("unexpected body: %+v", res)
	}

	rec = do(t, h, http.MethodGet, "/parcels/"+id, "")
	var got map[string]any
	decode(t, rec, &got)
	if got["payment_status"] != "paid" || got["paidAt"] == nil {
		t.Fatalf("parcel not paid: %v", got)
	}

	rec = do(t, h, http.MethodPost, "/parcels/"+id+"/paid", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second mark paid: status = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/parcels/65a000000000000000000000/paid", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, body := range []string{``, `{}`, `{"amountInCents":0}`} {
		rec := do(t, h, http.MethodPost, "/create-payment-intent", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}

		var res map[string]string
		decode(t, rec, &res)
		if res["error"] != "Amount is required" {
			t.Fatalf("body %q: error = %q", body, res["error"])
		}
	}

	rec := do(t, h, http.MethodPost, "/create-payment-intent", `{"amountInCents":1500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res map[string]string
	decode(t, rec, &res)
	if res["clientSecret"] == "" {
		t.Fatalf("missing client secret: %v", res)
	}
}

func TestCreatePaymentIntentGatewayFailure(t *testing.T) {
	store := repositories.NewMemoryStore()
	gw := payment.NewMockGateway()
	gw.Err = errTest("Your card was declined.")
	h := NewRouter(services.NewParcelService(store, nil), services.NewPaymentService(gw, store, nil, nil), "")

	rec := do(t, h, http.MethodPost, "/create-payment-intent", `{"amountInCents":1500}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var res map[string]string
	decode(t, rec, &res)
	if res["error"] != "Your card was declined." {
		t.Fatalf("error = %q", res["error"])
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestPaymentHistory(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/payments/history", `{"parcelId":"p1","userEmail":"a@x.io","amount":12.5,"paymentIntentId":"pi_1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var saved struct {
		Message string `json:"message"`
		Result  struct {
			InsertedID string `json:"insertedId"`
		} `json:"result"`
	}
	decode(t, rec, &saved)
	if saved.Message != "Payment history saved successfully" || saved.Result.InsertedID == "" {
		t.Fatalf("unexpected body: %+v", saved)
	}

	do(t, h, http.MethodPost, "/payments/history", `{"parcelId":"p2","userEmail":"b@x.io","amount":5,"paymentIntentId":"pi_2"}`)

	rec = do(t, h, http.MethodGet, "/payments/user/a@x.io", "")
	var mine []map[string]any
	decode(t, rec, &mine)
	if len(mine) != 1 || mine[0]["paymentIntentId"] != "pi_1" || mine[0]["paymentStatus"] != "paid" {
		t.Fatalf("unexpected user history: %v", mine)
	}

	rec = do(t, h, http.MethodGet, "/payments/all", "")
	var all []map[string]any
	decode(t, rec, &all)
	if len(all) != 2 || all[0]["paymentIntentId"] != "pi_2" {
		t.Fatalf("unexpected history: %v", all)
	}

	rec = do(t, h, http.MethodGet, "/payments/user/nobody@x.io", "")
	if rec.Body.String() != "[]" {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/parcels", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow credentials = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/parcels", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}

	rec = do(t, h, http.MethodGet, "/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}
}
