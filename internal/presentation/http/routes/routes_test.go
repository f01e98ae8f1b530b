package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/enquiry-api/internal/application/service"
	"github.com/sangkips/enquiry-api/internal/config"
	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/infrastructure/memstore"
	"github.com/sangkips/enquiry-api/internal/infrastructure/repository"
	"github.com/sangkips/enquiry-api/internal/infrastructure/search"
	"github.com/sangkips/enquiry-api/internal/presentation/http/handler"
	"github.com/sangkips/enquiry-api/internal/presentation/http/middleware"
	"github.com/sangkips/enquiry-api/pkg/eventbus"
	"github.com/sangkips/enquiry-api/pkg/logger"
	"github.com/sangkips/enquiry-api/pkg/metrics"
	"github.com/sangkips/enquiry-api/pkg/utils"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	router *gin.Engine
	jwt    *utils.JWTManager
	users  *service.UserService
	admin  *entity.User
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "enquiry-api"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
		Chatbot:   config.ChatbotConfig{FallbackReply: "We will get back to you.", MinScore: 0.2},
	}
	log := logger.Discard()
	store := memstore.New()
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	userRepo := repository.NewUserRepository(store)
	execRepo := repository.NewExecutiveServiceRepository(store)
	visitorRepo := repository.NewVisitorRepository(store)
	enquiryRepo := repository.NewEnquiryRepository(store)
	m := metrics.New()
	bus := eventbus.NewEventPublisher(log)

	faqIndex, err := search.NewFAQIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = faqIndex.Close() })

	classifier := service.NewStatusClassifier(config.SplitList(config.DefaultLeadStatuses), config.SplitList(config.DefaultPendingStatuses))
	scopes := service.NewScopeService(execRepo)
	visitors := service.NewVisitorService(visitorRepo, log)
	users := service.NewUserService(userRepo, execRepo, log)
	assignments := service.NewAssignmentService(visitorRepo, enquiryRepo, userRepo, bus, m, log)
	statuses := service.NewStatusService(visitorRepo, enquiryRepo, classifier, bus, log)
	bus.Subscribe(service.NewStatusRecorder(m).Handle)
	content := service.NewContentService(repository.NewFAQRepository(store), repository.NewArticleRepository(store), faqIndex, log)
	chat := service.NewChatService(repository.NewChatMessageRepository(store), visitorRepo, visitors, faqIndex,
		cfg.Chatbot.FallbackReply, cfg.Chatbot.MinScore, log)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))
	t.Cleanup(limiter.Stop)

	router := Setup(&Handlers{
		Auth:      handler.NewAuthHandler(service.NewAuthService(userRepo, jwtManager, nil, log)),
		User:      handler.NewUserHandler(users),
		Visitor:   handler.NewVisitorHandler(visitors, assignments, statuses, chat, scopes),
		Enquiry:   handler.NewEnquiryHandler(service.NewEnquiryService(enquiryRepo, visitorRepo, log), statuses, scopes),
		Chat:      handler.NewChatHandler(chat),
		Content:   handler.NewContentHandler(content),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(visitorRepo, enquiryRepo, classifier), scopes),
		Admin:     handler.NewAdminHandler(assignments, content),
	}, &Deps{
		JWTManager:  jwtManager,
		Cfg:         cfg,
		Store:       store,
		Log:         log,
		Metrics:     m,
		RateLimiter: limiter,
	})

	adminUser, err := users.CreateUser(context.Background(), &service.CreateUserInput{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "admin-password",
		Role:     enum.RoleAdmin,
	})
	require.NoError(t, err)

	return &server{router: router, jwt: jwtManager, users: users, admin: adminUser}
}

func (s *server) token(t *testing.T, u *entity.User) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken(u.Principal(), u.Email)
	require.NoError(t, err)
	return tok
}

func (s *server) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env apiEnvelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestHealth_ReportsStoreKind(t *testing.T) {
	s := newServer(t)
	rec, _ := s.do(t, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["store"])
}

func TestLogin_IssuesTokensForPassword(t *testing.T) {
	s := newServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "admin-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.NotEmpty(t, out.AccessToken)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newServer(t)
	rec, _ := s.do(t, http.MethodGet, "/api/v1/visitors", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/visitors", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAssignFlow_ScopesVisitorToSalesExecutive(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	adminToken := s.token(t, s.admin)

	sales, err := s.users.CreateUser(ctx, &service.CreateUserInput{
		Name: "Sanjana Pawar", Email: "sanjana@example.com", Password: "sales-password", Role: enum.RoleSalesExecutive,
	})
	require.NoError(t, err)
	salesToken := s.token(t, sales)

	rec, env := s.do(t, http.MethodPost, "/api/v1/public/visitors", "", map[string]any{
		"name": "Ravi Kumar", "email": "ravi@example.com", "service": "Audit",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	_, _ = s.do(t, http.MethodPost, "/api/v1/public/visitors", "", map[string]any{
		"name": "Meera Shah", "phone": "+91 90000 00000", "service": "Tax",
	})

	rec, _ = s.do(t, http.MethodPost, "/api/v1/enquiries", adminToken, map[string]any{
		"visitorId": created.ID, "enquiryDetails": "annual audit quote",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// nothing assigned yet, so the sales executive sees nothing
	rec, env = s.do(t, http.MethodGet, "/api/v1/visitors", salesToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"items":[]`)

	rec, env = s.do(t, http.MethodPut, "/api/v1/visitors/"+created.ID+"/assign", adminToken, map[string]any{
		"role": "salesExecutive", "id": sales.ID.Hex(), "reason": "territory",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var assigned struct {
		Visitor entity.Visitor     `json:"visitor"`
		Sync    service.SyncResult `json:"sync"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &assigned))
	assert.Equal(t, "Sanjana Pawar", assigned.Visitor.SalesExecutiveName)
	assert.Equal(t, service.SyncResult{Expected: 1, Matched: 1, Modified: 1}, assigned.Sync)

	rec, env = s.do(t, http.MethodGet, "/api/v1/visitors", salesToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "Ravi Kumar")
	assert.NotContains(t, string(env.Data), "Meera Shah")

	rec, env = s.do(t, http.MethodGet, "/api/v1/enquiries", salesToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "annual audit quote")
}

func TestSetStatus_RejectsStaleVersion(t *testing.T) {
	s := newServer(t)
	adminToken := s.token(t, s.admin)

	rec, env := s.do(t, http.MethodPost, "/api/v1/visitors", adminToken, map[string]any{
		"name": "Kiran Desai", "email": "kiran@example.com", "source": "calls",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v entity.Visitor
	require.NoError(t, json.Unmarshal(env.Data, &v))

	rec, _ = s.do(t, http.MethodPut, "/api/v1/visitors/"+v.ID.Hex()+"/status", adminToken, map[string]any{
		"status": "contacted", "version": v.Version,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = s.do(t, http.MethodPut, "/api/v1/visitors/"+v.ID.Hex()+"/status", adminToken, map[string]any{
		"status": "qualified", "version": v.Version,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/visitors/"+v.ID.Hex()+"/history", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history service.VisitorHistory
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history.Pipeline, 1)
	assert.Equal(t, "contacted", history.Pipeline[0].Status)
}

func TestAdminRoutes_ForbiddenForExecutives(t *testing.T) {
	s := newServer(t)
	exec, err := s.users.CreateUser(context.Background(), &service.CreateUserInput{
		Name: "Vishal Nair", Email: "vishal@example.com", Password: "exec-password", Role: enum.RoleCustomerExecutive,
	})
	require.NoError(t, err)
	token := s.token(t, exec)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/admin/reconcile"},
		{http.MethodGet, "/api/v1/dashboard/executives"},
	} {
		rec, _ := s.do(t, tc.method, tc.path, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, tc.path)
	}

	rec, _ := s.do(t, http.MethodPost, "/api/v1/admin/reconcile", s.token(t, s.admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChat_PublicMessageCreatesVisitor(t *testing.T) {
	s := newServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/chat/messages", "", map[string]any{
		"name": "Nisha Patel", "email": "nisha@example.com", "message": "Do you handle GST filing?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reply service.ChatReply
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	require.NotNil(t, reply.Bot)
	assert.Equal(t, "We will get back to you.", reply.Bot.Message)

	require.NotNil(t, reply.VisitorRef)

	rec, env = s.do(t, http.MethodPost, "/api/v1/chat/messages", "", map[string]any{
		"name": "Not Nisha", "email": "nisha@example.com", "message": "what is her id?",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, string(env.Data), reply.VisitorRef.Hex())

	rec, env = s.do(t, http.MethodGet, "/api/v1/visitors/"+reply.VisitorRef.Hex()+"/messages", s.token(t, s.admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []entity.ChatMessage
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	assert.Len(t, msgs, 4)
}

func TestExport_ReturnsWorkbook(t *testing.T) {
	s := newServer(t)
	adminToken := s.token(t, s.admin)
	_, _ = s.do(t, http.MethodPost, "/api/v1/visitors", adminToken, map[string]any{
		"name": "Kiran Desai", "email": "kiran@example.com",
	})

	rec, _ := s.do(t, http.MethodGet, "/api/v1/visitors/export", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Export-Rows"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestMetrics_CountsRequests(t *testing.T) {
	s := newServer(t)
	_, _ = s.do(t, http.MethodGet, "/health", "", nil)

	rec, _ := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status_code="200"} 1`)
}
