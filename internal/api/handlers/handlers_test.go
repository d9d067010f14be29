package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/banking-coach/internal/api/handlers"
	"github.com/dvloznov/banking-coach/internal/api/middleware"
	appinmem "github.com/dvloznov/banking-coach/internal/appdata/inmemory"
	"github.com/dvloznov/banking-coach/internal/auth"
	"github.com/dvloznov/banking-coach/internal/client360"
	"github.com/dvloznov/banking-coach/internal/coach"
	"github.com/dvloznov/banking-coach/internal/corebanking"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/gcsexport"
	"github.com/dvloznov/banking-coach/internal/infra/memory"
	"github.com/dvloznov/banking-coach/internal/insights"
	"github.com/dvloznov/banking-coach/internal/jobs"
	jobsinmem "github.com/dvloznov/banking-coach/internal/jobs/inmemory"
	"github.com/dvloznov/banking-coach/internal/modelregistry"
	"github.com/dvloznov/banking-coach/internal/pipeline"
)

// MockGenerator is a mock implementation of coach.Generator.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, system, prompt string) (string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt)
	}
	return "Keep an eye on your food spending.", nil
}

// MockAdviceRecorder counts coach answers.
type MockAdviceRecorder struct {
	degraded, ok int
}

func (m *MockAdviceRecorder) RecordAdvice(degraded bool) {
	if degraded {
		m.degraded++
		return
	}
	m.ok++
}

// MockObjectStore is an in-memory gcsexport.ObjectStore.
type MockObjectStore struct {
	objects map[string][]byte
}

func (m *MockObjectStore) Put(ctx context.Context, bucket, object, contentType string, data []byte) error {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[gcsexport.URI(bucket, object)] = data
	return nil
}

func (m *MockObjectStore) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	data, ok := m.objects[gcsexport.URI(bucket, object)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

type testEnv struct {
	handler   http.Handler
	app       *appinmem.Store
	jobs      *jobsinmem.Store
	generator *MockGenerator
	advice    *MockAdviceRecorder
	objects   *MockObjectStore
}

func newTestEnv(t *testing.T, exportsEnabled bool) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	bank := memory.NewSeeded(time.Now())
	resolver := insights.NewResolver(insights.DefaultCategories())
	core := corebanking.NewSimulator(bank, resolver, log)
	app := appinmem.NewStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour, app)

	jobStore := jobsinmem.NewStore()
	queue := jobsinmem.NewQueue(10, 1, jobStore)
	t.Cleanup(func() { _ = queue.Close() })

	generator := &MockGenerator{}
	advice := &MockAdviceRecorder{}
	builder := coach.NewBuilder(core, app)

	objects := &MockObjectStore{}
	var registry *modelregistry.Registry
	if exportsEnabled {
		registry = modelregistry.New(app, gcsexport.NewExporter(objects, "test-bucket"), log)
	}

	h := handlers.Handlers{
		Auth:    handlers.NewAuthHandler(auth.NewService(app, core, tokens, log), log),
		Banking: handlers.NewBankingHandler(core, builder, log),
		Coach:   handlers.NewCoachHandler(builder, coach.NewAdvisor(generator, log), core, app, advice, log),
		Goals:   handlers.NewGoalsHandler(app, app, log),
		Jobs:    handlers.NewJobsHandler(jobStore, queue, exportsEnabled, log),
		Clients: handlers.NewClientsHandler(client360.NewService(bank, resolver.Categorizer(), app, log), log),
		Models:  handlers.NewModelsHandler(registry, log),
	}
	return &testEnv{
		handler:   handlers.NewMux(h, middleware.Auth(tokens)),
		app:       app,
		jobs:      jobStore,
		generator: generator,
		advice:    advice,
		objects:   objects,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// login registers the client with the given DNI and returns a token.
func (e *testEnv) login(t *testing.T, dni string) string {
	t.Helper()
	creds := map[string]string{"dni": dni, "password": "s3cret"}
	if rec := e.do(t, http.MethodPost, "/auth/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	rec := e.do(t, http.MethodPost, "/auth/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.LoginResponse
	decode(t, rec, &resp)
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"registers client", map[string]string{"dni": memory.DemoDNI, "password": "s3cret", "nickname": "Lu"}, http.StatusCreated},
		{"duplicate", map[string]string{"dni": memory.DemoDNI, "password": "other"}, http.StatusConflict},
		{"missing password", map[string]string{"dni": memory.SecondDNI}, http.StatusBadRequest},
		{"not a client", map[string]string{"dni": "00000000", "password": "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/register", "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	bad := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"dni": memory.DemoDNI, "password": "wrong"})
	if bad.Code != http.StatusUnauthorized {
		t.Errorf("login with wrong password status = %d, want 401", bad.Code)
	}

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"dni": memory.DemoDNI, "password": "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var login handlers.LoginResponse
	decode(t, rec, &login)
	if login.AccessToken == "" || login.TokenType != "Bearer" {
		t.Errorf("login = %+v", login)
	}
	want := handlers.UserView{Nickname: "Lu", DNI: memory.DemoDNI, ClientCode: memory.DemoClientCode, Level: 1, Archetype: insights.DefaultArchetypeAnimal}
	if login.User != want {
		t.Errorf("user = %+v, want %+v", login.User, want)
	}

	if rec := env.do(t, http.MethodPost, "/auth/logout", login.AccessToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/products", login.AccessToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", rec.Code)
	}
}

func TestProductsAndAccounts(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t, memory.DemoDNI)

	rec := env.do(t, http.MethodGet, "/api/v1/products", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("products status = %d", rec.Code)
	}
	var products struct {
		ClientCode string                       `json:"client_code"`
		Accounts   []insights.ReconciledAccount `json:"accounts"`
	}
	decode(t, rec, &products)
	if len(products.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(products.Accounts))
	}
	for _, acc := range products.Accounts {
		if acc.Number == memory.DemoAccount && (acc.MaskedCard == nil || *acc.MaskedCard != "4557 **** **** 7812") {
			t.Errorf("masked card = %v", acc.MaskedCard)
		}
	}

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"own summary", "/api/v1/accounts/" + memory.DemoAccount + "/summary", token, http.StatusOK},
		{"foreign summary", "/api/v1/accounts/191-70123456-0-01/summary", token, http.StatusNotFound},
		{"no token", "/api/v1/accounts/" + memory.DemoAccount + "/summary", "", http.StatusUnauthorized},
		{"movements without category", "/api/v1/accounts/" + memory.DemoAccount + "/movements", token, http.StatusBadRequest},
		{"bad cursor", "/api/v1/accounts/" + memory.DemoAccount + "/movements?category=FOOD&cursor=abc", token, http.StatusBadRequest},
		{"bad limit", "/api/v1/accounts/" + memory.DemoAccount + "/movements?category=FOOD&limit=-1", token, http.StatusBadRequest},
		{"movements", "/api/v1/accounts/" + memory.DemoAccount + "/movements?category=FOOD&limit=5", token, http.StatusOK},
		{"foreign movements", "/api/v1/accounts/191-70123456-0-01/movements?category=FOOD", token, http.StatusNotFound},
		{"profile", "/api/v1/profile", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, tt.token, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	rec = env.do(t, http.MethodGet, "/api/v1/accounts/"+memory.DemoAccount+"/movements?category=FOOD&limit=5", token, nil)
	var page insights.Page
	decode(t, rec, &page)
	if len(page.Items) > 5 {
		t.Errorf("page size = %d, want <= 5", len(page.Items))
	}
	for _, it := range page.Items {
		if it.Category != "FOOD" || !it.Amount.IsNegative() {
			t.Errorf("item = %+v", it)
		}
	}
}

func TestCoachChat(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t, memory.DemoDNI)

	var gotPrompt string
	env.generator.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		gotPrompt = prompt
		return "Cook at home twice a week.", nil
	}

	rec := env.do(t, http.MethodPost, "/api/v1/coach/chat", token, map[string]string{"message": "How do I save for a trip?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d: %s", rec.Code, rec.Body.String())
	}
	var chat handlers.ChatResponse
	decode(t, rec, &chat)
	if chat.Response != "Cook at home twice a week." || chat.Degraded {
		t.Errorf("chat = %+v", chat)
	}
	if chat.ContextUsed.ClientCode != memory.DemoClientCode {
		t.Errorf("context client = %q", chat.ContextUsed.ClientCode)
	}
	if !strings.Contains(gotPrompt, "How do I save for a trip?") {
		t.Errorf("prompt = %q", gotPrompt)
	}

	// An empty body asks for a proactive tip; model failures degrade.
	env.generator.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "", errors.New("quota exceeded")
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coach/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}
	decode(t, rec, &chat)
	if !chat.Degraded || chat.Response != coach.FallbackFailed {
		t.Errorf("degraded chat = %+v", chat)
	}
	if env.advice.ok != 1 || env.advice.degraded != 1 {
		t.Errorf("recorded advice ok=%d degraded=%d", env.advice.ok, env.advice.degraded)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/coach/context", token, nil); rec.Code != http.StatusOK {
		t.Errorf("context status = %d", rec.Code)
	}
}

func TestCheckPurchase(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t, memory.DemoDNI)

	if rec := env.do(t, http.MethodPost, "/api/v1/coach/check-purchase", token, map[string]any{"amount": 0}); rec.Code != http.StatusBadRequest {
		t.Errorf("zero amount status = %d, want 400", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/coach/check-purchase", token, map[string]any{"amount": "10.50"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var check insights.PurchaseCheck
	decode(t, rec, &check)
	if !check.CanAfford || check.Budget != nil {
		t.Errorf("check = %+v", check)
	}

	if rec := env.do(t, http.MethodPut, "/api/v1/budgets", token, map[string]any{"category": "food", "monthly_limit": "5"}); rec.Code != http.StatusOK {
		t.Fatalf("put budget status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/v1/coach/check-purchase", token, map[string]any{"amount": "10.50", "category": "Food"})
	decode(t, rec, &check)
	if check.Budget == nil || !check.Budget.OverBudget || !check.Budget.Alert {
		t.Errorf("budget check = %+v", check.Budget)
	}
}

func TestGoalsAndBudgets(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t, memory.DemoDNI)

	invalid := []map[string]any{
		{"target": "100", "deadline": "2030-01-01"},
		{"title": "Trip", "target": "0", "deadline": "2030-01-01"},
		{"title": "Trip", "target": "100", "saved": "-1", "deadline": "2030-01-01"},
		{"title": "Trip", "target": "100", "deadline": "01/01/2030"},
	}
	for _, body := range invalid {
		if rec := env.do(t, http.MethodPost, "/api/v1/goals", token, body); rec.Code != http.StatusBadRequest {
			t.Errorf("goal %v status = %d, want 400", body, rec.Code)
		}
	}

	deadline := time.Now().AddDate(0, 6, 0).Format("2006-01-02")
	rec := env.do(t, http.MethodPost, "/api/v1/goals", token, map[string]any{"title": "Trip", "target": "1000", "saved": "250", "deadline": deadline})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d: %s", rec.Code, rec.Body.String())
	}
	var goal coach.GoalView
	decode(t, rec, &goal)
	if goal.ID == 0 || goal.ProgressPercent != 25 || !goal.Target.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("goal = %+v", goal)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/goals", token, nil)
	var list struct {
		Goals []coach.GoalView `json:"goals"`
		Count int              `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 1 || list.Goals[0].Title != "Trip" {
		t.Errorf("goals = %+v", list)
	}

	for _, body := range []map[string]any{
		{"monthly_limit": "100"},
		{"category": "FOOD", "monthly_limit": "0"},
		{"category": "FOOD", "monthly_limit": "100", "alert_percent": 120},
	} {
		if rec := env.do(t, http.MethodPut, "/api/v1/budgets", token, body); rec.Code != http.StatusBadRequest {
			t.Errorf("budget %v status = %d, want 400", body, rec.Code)
		}
	}
	env.do(t, http.MethodPut, "/api/v1/budgets", token, map[string]any{"category": "transport", "monthly_limit": "200"})
	rec = env.do(t, http.MethodGet, "/api/v1/budgets", token, nil)
	var budgets struct {
		Budgets []handlers.BudgetView `json:"budgets"`
	}
	decode(t, rec, &budgets)
	if len(budgets.Budgets) != 1 || budgets.Budgets[0].Category != "TRANSPORT" || budgets.Budgets[0].AlertPercent != 80 {
		t.Errorf("budgets = %+v", budgets.Budgets)
	}
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t, memory.DemoDNI)
	other := env.login(t, memory.SecondDNI)

	if rec := env.do(t, http.MethodPost, "/api/v1/exports/statement", token, map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing account status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/exports/statement", token, map[string]string{"account_number": memory.DemoAccount, "month": "May"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/exports/statement", token, map[string]string{"account_number": memory.DemoAccount, "month": "2024-05"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]string
	decode(t, rec, &accepted)

	rec = env.do(t, http.MethodGet, "/api/v1/jobs/"+accepted["job_id"], token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get job status = %d", rec.Code)
	}
	var job jobs.Job
	decode(t, rec, &job)
	if job.Type != jobs.JobTypeExportStatement || job.Param(pipeline.ParamMonth) != "2024-05" || job.UserID != memory.DemoClientCode {
		t.Errorf("job = %+v", job)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/jobs/"+accepted["job_id"], other, nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign job status = %d, want 404", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/v1/jobs", token, map[string]string{"type": "export_statement"}); rec.Code != http.StatusBadRequest {
		t.Errorf("generic export job status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/jobs", token, map[string]any{"type": "sync_goals", "dry_run": true}); rec.Code != http.StatusAccepted {
		t.Errorf("sync job status = %d, want 202", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/jobs", token, nil)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 2 {
		t.Errorf("own jobs = %d, want 2", list.Count)
	}

	disabled := newTestEnv(t, false)
	token = disabled.login(t, memory.DemoDNI)
	if rec := disabled.do(t, http.MethodPost, "/api/v1/exports/statement", token, map[string]string{"account_number": memory.DemoAccount}); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled export status = %d, want 503", rec.Code)
	}
}

func TestClients(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t, memory.DemoDNI)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"products", "/api/v1/clients/" + memory.DemoDNI + "/products", http.StatusOK},
		{"unknown products", "/api/v1/clients/00000000/products", http.StatusNotFound},
		{"transactions", "/api/v1/clients/" + memory.DemoDNI + "/transactions", http.StatusOK},
		{"spending", "/api/v1/analytics/spending-category/" + memory.SecondDNI, http.StatusOK},
		{"features", "/api/v1/client-features/" + memory.DemoClientCode, http.StatusOK},
		{"unknown features", "/api/v1/client-features/C9999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, token, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	logs := env.app.AppLogs()
	if len(logs) != 2 || logs[0].Level != "INFO" || logs[1].Level != "WARNING" {
		t.Errorf("app logs = %+v", logs)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func modelForm(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("model_file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestModelUpload(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t, memory.DemoDNI)

	upload := func(token string, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
		body, contentType := modelForm(t, fields, filename, data)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/models/upload", body)
		req.Header.Set("Content-Type", contentType)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name       string
		token      string
		fields     map[string]string
		filename   string
		wantStatus int
	}{
		{"no token", "", map[string]string{"version": "v1"}, "kmeans.pkl", http.StatusUnauthorized},
		{"missing file", token, map[string]string{"version": "v1"}, "", http.StatusBadRequest},
		{"missing version", token, nil, "kmeans.pkl", http.StatusBadRequest},
		{"bad parameters", token, map[string]string{"version": "v1", "parameters": "[1,2]"}, "kmeans.pkl", http.StatusBadRequest},
		{"uploaded", token, map[string]string{"version": "v1", "parameters": `{"n_clusters":4}`}, "kmeans.pkl", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(tt.token, tt.fields, tt.filename, []byte("model-bytes"))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	rec := upload(token, map[string]string{"version": "v2"}, "clusters.pkl", []byte("second"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
		Model  struct {
			ID       int64  `json:"id"`
			Version  string `json:"version"`
			Filename string `json:"filename"`
			URI      string `json:"uri"`
			Size     int64  `json:"size"`
		} `json:"model"`
	}
	decode(t, rec, &resp)
	if resp.Status != "success" || resp.Model.Version != "v2" || resp.Model.Filename != "clusters.pkl" || resp.Model.Size != 6 {
		t.Errorf("response = %+v", resp)
	}
	if !strings.HasPrefix(resp.Model.URI, "gs://test-bucket/models/v2/") {
		t.Errorf("uri = %q", resp.Model.URI)
	}
	if got := string(env.objects.objects[resp.Model.URI]); got != "second" {
		t.Errorf("stored object = %q, want %q", got, "second")
	}

	disabled := newTestEnv(t, false)
	token = disabled.login(t, memory.DemoDNI)
	body, contentType := modelForm(t, map[string]string{"version": "v1"}, "kmeans.pkl", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/models/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	disabled.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled upload status = %d, want 503", rec.Code)
	}
}
