package di

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense_backend/internal/api"
	"expense_backend/internal/feature/assistant/domain/entity"
	authusecase "expense_backend/internal/feature/auth/usecase"
	"expense_backend/internal/platform/db"
	"expense_backend/internal/platform/external"
	jwtmw "expense_backend/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeVerifier struct {
	emails map[string]string
}

func (f fakeVerifier) Verify(ctx context.Context, idToken string) external.Result[string] {
	if email, ok := f.emails[idToken]; ok {
		return external.OK(email)
	}
	return external.Fail[string](external.KindRejected, assert.AnError)
}

type fakeModel struct {
	mu          sync.Mutex
	receiptJSON string
	lastHistory []entity.Message
}

func (f *fakeModel) ExtractReceipt(ctx context.Context, img entity.ReceiptImage, prompt string) external.Result[string] {
	return external.OK(f.receiptJSON)
}

func (f *fakeModel) Reply(ctx context.Context, history []entity.Message, message string) external.Result[string] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastHistory = history
	return external.OK("You spent 4.5 at Cafe.")
}

type testServer struct {
	engine *gin.Engine
	model  *fakeModel
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb, err := db.OpenDB(db.Config{
		Driver:       db.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "expense.db"),
		RunMigration: true,
	}, Models()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tokens, err := jwtmw.NewTokenService("integration-secret")
	require.NoError(t, err)

	model := &fakeModel{
		receiptJSON: "```json\n{\"merchant\":\"Shop\",\"date\":\"03 04 2026\",\"amount\":\"12.50\",\"category\":\"Grocery\"}\n```",
	}

	engine := NewEngine(Deps{
		DB:        gdb,
		Tokens:    tokens,
		Policy:    authusecase.DefaultTokenPolicy(),
		Verifier:  fakeVerifier{emails: map[string]string{"google-ok": "g@x.com"}},
		Extractor: model,
		Chat:      model,
	})
	return &testServer{engine: engine, model: model}
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) postJSON(t *testing.T, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req, token)
}

func (s *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (s *testServer) passwordGrant(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(t, req, "")
}

func (s *testServer) register(t *testing.T, email, password string) string {
	t.Helper()
	w := s.postJSON(t, "/register", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeToken(t, w)
}

func decodeToken(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decodeExpenses(t *testing.T, w *httptest.ResponseRecorder) []api.ExpenseResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list []api.ExpenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func TestEngine_LedgerScenario(t *testing.T) {
	s := newTestServer(t)

	tokenA := s.register(t, "a@x.com", "pw1")

	w := s.postJSON(t, "/save-expense", `{"merchant":"Cafe","amount":4.5,"date":"01 02 2026","category":"Food"}`, tokenA)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"saved","id":1}`, w.Body.String())

	list := decodeExpenses(t, s.get(t, "/expenses", tokenA))
	require.Len(t, list, 1)
	assert.Equal(t, api.ExpenseResponse{
		Id: 1, Merchant: "Cafe", Amount: 4.5, Date: "01 02 2026", Category: "Food", Type: "Debit", UserId: 1,
	}, list[0])

	// 別ユーザーからは見えない
	tokenB := s.register(t, "b@x.com", "pw2")
	w = s.get(t, "/expenses", tokenB)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	// 登録済みメールアドレス
	w = s.postJSON(t, "/register", `{"email":"a@x.com","password":"other"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Email already registered"}`, w.Body.String())
}

func TestEngine_PasswordGrant(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw1")

	w := s.passwordGrant(t, "a@x.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"error":"Incorrect username or password"}`, w.Body.String())

	w = s.passwordGrant(t, "nobody@x.com", "pw1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Incorrect username or password"}`, w.Body.String())

	w = s.passwordGrant(t, "a@x.com", "pw1")
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeToken(t, w)

	assert.Equal(t, http.StatusOK, s.get(t, "/expenses", token).Code)
}

func TestEngine_RegisterRejectsOverlongPassword(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON(t, "/register", `{"email":"a@x.com","password":"`+strings.Repeat("p", 73)+`"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password must be at most 72 bytes"}`, w.Body.String())
	// アカウントは作成されない
	s.register(t, "a@x.com", strings.Repeat("p", 72))
}

func TestEngine_BearerSchemeIsCaseInsensitive(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@x.com", "pw1")

	for _, scheme := range []string{"bearer", "BEARER", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
		req.Header.Set("Authorization", scheme+" "+token)

		w := s.do(t, req, "")

		assert.Equal(t, http.StatusOK, w.Code, scheme)
	}
}

func TestEngine_ProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
		token  string
	}{
		{http.MethodGet, "/expenses", ""},
		{http.MethodPost, "/save-expense", ""},
		{http.MethodPost, "/chat", ""},
		{http.MethodPost, "/analyze-receipt", ""},
		{http.MethodGet, "/expenses", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := s.do(t, httptest.NewRequest(tt.method, tt.path, nil), tt.token)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"error":"Could not validate credentials"}`, w.Body.String())
		})
	}
}

func TestEngine_GoogleLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON(t, "/google-login", `{"token":"google-ok"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decodeToken(t, w)

	w = s.get(t, "/expenses", token)
	assert.JSONEq(t, `[]`, w.Body.String())

	// 2回目は既存ユーザーでログイン
	w = s.postJSON(t, "/google-login", `{"token":"google-ok"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// 外部IDのアカウントはパスワードでログインできない
	w = s.passwordGrant(t, "g@x.com", "GOOGLE_OAUTH_USER")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.postJSON(t, "/google-login", `{"token":"forged"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Google Authentication Failed"}`, w.Body.String())
}

func TestEngine_AssistantScenario(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "a@x.com", "pw1")

	w := s.postJSON(t, "/save-expense", `{"merchant":"Cafe","amount":4.5,"date":"01 02 2026","category":"Food"}`, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.postJSON(t, "/chat", `{"message":"How much did I spend?","history":[{"text":"hi","isUser":true},{"text":"hello","isUser":false}]}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"reply":"You spent 4.5 at Cafe."}`, w.Body.String())

	s.model.mu.Lock()
	history := s.model.lastHistory
	s.model.mu.Unlock()
	require.Len(t, history, 4)
	assert.Contains(t, history[0].Text, "- 01 02 2026: Cafe cost 4.5 (Food)")
	assert.Equal(t, entity.RoleUser, history[2].Role)
	assert.Equal(t, entity.RoleModel, history[3].Role)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze-receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = s.do(t, req, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":2,"merchant":"Shop","amount":12.5,"date":"03 04 2026","category":"Grocery"}`, w.Body.String())

	list := decodeExpenses(t, s.get(t, "/expenses", token))
	require.Len(t, list, 2)
	assert.Equal(t, uint(2), list[0].Id, "newest first")
	assert.Equal(t, "Debit", list[0].Type)
}

func TestEngine_HealthAndReadiness(t *testing.T) {
	s := newTestServer(t)

	w := s.get(t, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.get(t, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
