package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/propscore/leadscore/backend/model"
	"github.com/propscore/leadscore/backend/service"
)

var errMalformed = errors.New("malformed feature encoding")

func init() {
	gin.SetMode(gin.TestMode)
}

// stubClassifier satisfies service.Classifier with a fixed outcome.
type stubClassifier struct {
	probability float64
	err         error
}

func (s *stubClassifier) Predict(model.FeatureRecord) (float64, error) {
	return s.probability, s.err
}

func (s *stubClassifier) FeatureNames() []string {
	return []string{"stub"}
}

func newTestRouter(h *LeadHandler) *gin.Engine {
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/score", h.Score)
	router.GET("/leads", h.List)
	router.GET("/leads/stats", h.Stats)
	return router
}

func validLeadBody() map[string]any {
	return map[string]any{
		"phone_number":          "+91-9876543210",
		"email":                 "buyer@example.com",
		"credit_score":          720,
		"age_group":             "26-35",
		"family_background":     "Married",
		"income":                500000,
		"property_type":         "Apartment",
		"budget":                2500000,
		"location":              "Urban",
		"previous_inquiries":    2,
		"time_on_market":        30,
		"response_time_minutes": 15,
		"comments":              "",
		"consent":               true,
	}
}

func postScore(t *testing.T, router *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}

	req := httptest.NewRequest("POST", "/score", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScoreSuccess(t *testing.T) {
	ledger := service.NewLedger()
	h := NewLeadHandler(&stubClassifier{probability: 0.5}, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	body := validLeadBody()
	body["comments"] = "Ready to purchase immediately, cash buyer."

	w := postScore(t, router, body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ScoreResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp.LeadID != 1 {
		t.Errorf("Expected lead_id 1, got %d", resp.LeadID)
	}
	if resp.InitialScore != 50.0 {
		t.Errorf("Expected initial_score 50.0, got %v", resp.InitialScore)
	}
	// +20 ready to purchase, +20 cash buyer, +10 immediately, clamped.
	if resp.RerankedScore != 100.0 {
		t.Errorf("Expected reranked_score 100.0, got %v", resp.RerankedScore)
	}

	if ledger.Count() != 1 {
		t.Errorf("Expected 1 ledger entry, got %d", ledger.Count())
	}
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	h := NewLeadHandler(&stubClassifier{probability: 0.123456}, service.NewReranker(service.DefaultPhraseRules()), service.NewLedger())
	router := newTestRouter(h)

	w := postScore(t, router, validLeadBody())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp ScoreResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.InitialScore != 12.35 {
		t.Errorf("Expected initial_score rounded to 12.35, got %v", resp.InitialScore)
	}
}

func TestScoreValidationFailureNoAppend(t *testing.T) {
	ledger := service.NewLedger()
	h := NewLeadHandler(&stubClassifier{probability: 0.9}, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	body := validLeadBody()
	body["phone_number"] = "9876543210" // missing prefix

	w := postScore(t, router, body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["field"] != "phone_number" {
		t.Errorf("Expected failing field phone_number, got %q", resp["field"])
	}

	if ledger.Count() != 0 {
		t.Errorf("Expected empty ledger after rejection, got %d entries", ledger.Count())
	}
}

func TestScoreConsentWithheld(t *testing.T) {
	ledger := service.NewLedger()
	h := NewLeadHandler(&stubClassifier{probability: 0.9}, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	body := validLeadBody()
	body["consent"] = false

	w := postScore(t, router, body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["field"] != "consent" {
		t.Errorf("Expected failing field consent, got %q", resp["field"])
	}

	if ledger.Count() != 0 {
		t.Errorf("Expected no ledger append without consent, got %d entries", ledger.Count())
	}
}

func TestScoreModelNotLoaded(t *testing.T) {
	ledger := service.NewLedger()
	h := NewLeadHandler(nil, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	w := postScore(t, router, validLeadBody())
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if ledger.Count() != 0 {
		t.Errorf("Expected no ledger append, got %d entries", ledger.Count())
	}
}

func TestScorePredictionFailure(t *testing.T) {
	ledger := service.NewLedger()
	stub := &stubClassifier{err: &service.PredictionError{Cause: errMalformed}}
	h := NewLeadHandler(stub, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	w := postScore(t, router, validLeadBody())
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	// No partial lead may reach the ledger on the failure path.
	if ledger.Count() != 0 {
		t.Errorf("Expected no ledger append on prediction failure, got %d entries", ledger.Count())
	}
}

func TestScoreInvalidBody(t *testing.T) {
	h := NewLeadHandler(&stubClassifier{probability: 0.5}, service.NewReranker(service.DefaultPhraseRules()), service.NewLedger())
	router := newTestRouter(h)

	req := httptest.NewRequest("POST", "/score", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListLeads(t *testing.T) {
	ledger := service.NewLedger()
	h := NewLeadHandler(&stubClassifier{probability: 0.8}, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	body := validLeadBody()
	body["comments"] = "cash buyer"
	postScore(t, router, body)
	postScore(t, router, validLeadBody())

	req := httptest.NewRequest("GET", "/leads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var leads []LeadSummary
	if err := json.Unmarshal(w.Body.Bytes(), &leads); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("Expected 2 leads, got %d", len(leads))
	}
	if leads[0].LeadID != 1 || leads[1].LeadID != 2 {
		t.Errorf("Expected ids 1 and 2, got %d and %d", leads[0].LeadID, leads[1].LeadID)
	}
	if leads[0].Email != "buyer@example.com" {
		t.Errorf("Expected email in summary, got %q", leads[0].Email)
	}
	if leads[0].Comments != "cash buyer" {
		t.Errorf("Expected comments in summary, got %q", leads[0].Comments)
	}
}

func TestListLeadsEmpty(t *testing.T) {
	h := NewLeadHandler(nil, service.NewReranker(service.DefaultPhraseRules()), service.NewLedger())
	router := newTestRouter(h)

	req := httptest.NewRequest("GET", "/leads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("Expected empty JSON array, got %s", body)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ledger := service.NewLedger()
	h := NewLeadHandler(&stubClassifier{probability: 0.6}, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	// 60 stays below the threshold; "cash buyer" pushes one lead to 80.
	postScore(t, router, validLeadBody())
	body := validLeadBody()
	body["comments"] = "cash buyer"
	postScore(t, router, body)

	req := httptest.NewRequest("GET", "/leads/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var stats model.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if stats.TotalLeads != 2 {
		t.Errorf("Expected 2 total leads, got %d", stats.TotalLeads)
	}
	if stats.HighIntentLeads != 1 {
		t.Errorf("Expected 1 high-intent lead, got %d", stats.HighIntentLeads)
	}
	if stats.AvgInitialScore != 60.0 {
		t.Errorf("Expected avg initial 60.0, got %v", stats.AvgInitialScore)
	}
	if stats.AvgRerankedScore != 70.0 {
		t.Errorf("Expected avg reranked 70.0, got %v", stats.AvgRerankedScore)
	}
}

func TestStatsEmptyLedger(t *testing.T) {
	h := NewLeadHandler(nil, service.NewReranker(service.DefaultPhraseRules()), service.NewLedger())
	router := newTestRouter(h)

	req := httptest.NewRequest("GET", "/leads/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var stats model.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if stats.TotalLeads != 0 || stats.HighIntentLeads != 0 || stats.AvgInitialScore != 0 || stats.AvgRerankedScore != 0 {
		t.Errorf("Expected zeroed stats, got %+v", stats)
	}
}

func TestHealth(t *testing.T) {
	ledger := service.NewLedger()
	h := NewLeadHandler(&stubClassifier{probability: 0.5}, service.NewReranker(service.DefaultPhraseRules()), ledger)
	router := newTestRouter(h)

	postScore(t, router, validLeadBody())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["model_loaded"] != true {
		t.Errorf("Expected model_loaded true, got %v", resp["model_loaded"])
	}
	if resp["leads_count"] != float64(1) {
		t.Errorf("Expected leads_count 1, got %v", resp["leads_count"])
	}
}

func TestHealthDegraded(t *testing.T) {
	h := NewLeadHandler(nil, service.NewReranker(service.DefaultPhraseRules()), service.NewLedger())
	router := newTestRouter(h)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected health to serve while degraded, got %d", w.Code)
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["model_loaded"] != false {
		t.Errorf("Expected model_loaded false, got %v", resp["model_loaded"])
	}
}

func TestRoot(t *testing.T) {
	h := NewLeadHandler(nil, service.NewReranker(service.DefaultPhraseRules()), service.NewLedger())
	router := newTestRouter(h)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %q", resp["status"])
	}
}
