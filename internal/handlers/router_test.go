package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/diet-service/internal/events"
	"github.com/SAP-F-2025/diet-service/internal/i18n"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories/memory"
	"github.com/SAP-F-2025/diet-service/internal/security"
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	repo   *memory.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := memory.New()
	if err != nil {
		t.Fatalf("memory.New() error = %v", err)
	}
	hasher, err := security.NewPasswordHasher("bcrypt")
	if err != nil {
		t.Fatalf("NewPasswordHasher() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sm := services.NewServiceManager(services.Dependencies{
		Repo:      repo,
		Publisher: events.NewMockEventPublisher(logger),
		Hasher:    hasher,
		Logger:    logger,
	})
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	engine := gin.New()
	SetupMiddleware(engine, utils.NewSlogLogger(logger))
	NewHandlerManager(sm, i18n.MustLoad(), nil, utils.NewSlogLogger(logger)).SetupRoutes(engine)
	return &testServer{t: t, engine: engine, repo: repo}
}

// seedUser stores a user whose stored hash is "hash"; its token is
// "@<id>:hash".
func (s *testServer) seedUser(id string, role models.UserRole) string {
	s.t.Helper()
	user := &models.User{UserID: id, Email: id + "@example.com", Password: "hash", Role: role}
	if err := s.repo.Users().Create(context.Background(), user); err != nil {
		s.t.Fatalf("seed user %s: %v", id, err)
	}
	return "@" + id + ":hash"
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response %q is not a JSON object: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func TestEndpointConvention(t *testing.T) {
	tests := []struct {
		endpoint   Endpoint
		wantMethod string
		wantPath   string
	}{
		{Endpoint{Group: "account", Name: "post_register"}, http.MethodPost, "/account/register"},
		{Endpoint{Group: "account", Name: "delete_delete", Param: "user_id"}, http.MethodDelete, "/account/delete/:param"},
		{Endpoint{Group: "food", Name: "get_query", Param: "food_id"}, http.MethodGet, "/food/query/:param"},
		{Endpoint{Group: "account", Name: "profile", Param: "user_id"}, http.MethodGet, "/account/profile/:param"},
		{Endpoint{Group: "account", Name: "post_edit_profile"}, http.MethodPost, "/account/edit_profile"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint.Name, func(t *testing.T) {
			if got := tt.endpoint.Method(); got != tt.wantMethod {
				t.Errorf("Method() = %s, want %s", got, tt.wantMethod)
			}
			if got := tt.endpoint.Path(); got != tt.wantPath {
				t.Errorf("Path() = %s, want %s", got, tt.wantPath)
			}
		})
	}

	e := Endpoint{Group: "system", Name: "get_backup", Param: "resource"}
	if got, want := e.Pattern(), "GET /api/<lang>/system/backup/@<resource>"; got != want {
		t.Errorf("Pattern() = %s, want %s", got, want)
	}
}

func TestAccount_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	register := map[string]interface{}{
		"user_id":       "jane",
		"password":      "Tr0ub4dor&3-horse-battery",
		"email":         "jane@example.com",
		"first_name":    "Jane",
		"last_name":     "Doe",
		"date_of_birth": "1990-01-02",
	}

	w := s.do(http.MethodPost, "/api/us/account/register", "", register)
	expectStatus(t, w, http.StatusOK)
	token, _ := decode(t, w)["token"].(string)
	if !strings.HasPrefix(token, "@jane:") || len(token) <= len("@jane:") {
		t.Fatalf("register token = %q, want @jane:<hash>", token)
	}

	w = s.do(http.MethodPost, "/api/us/account/login", "", map[string]interface{}{
		"user_id":  "jane",
		"password": "Tr0ub4dor&3-horse-battery",
	})
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["token"]; got != token {
		t.Errorf("login token = %v, want %s", got, token)
	}

	// The token authenticates later calls.
	w = s.do(http.MethodPost, "/api/us/submission/create", token, map[string]interface{}{"note": "hi"})
	expectStatus(t, w, http.StatusOK)

	w = s.do(http.MethodPost, "/api/us/account/register", "", register)
	expectStatus(t, w, http.StatusConflict)
	if got := decode(t, w)["error"]; got != "User '@jane' already exists." {
		t.Errorf("duplicate error = %v", got)
	}

	w = s.do(http.MethodPost, "/api/us/account/login", "", map[string]interface{}{
		"user_id":  "jane",
		"password": "Wr0ng-passw0rd-entirely!",
	})
	expectStatus(t, w, http.StatusConflict)

	w = s.do(http.MethodPost, "/api/us/account/login", "", map[string]interface{}{
		"user_id":  "nobody",
		"password": "Tr0ub4dor&3-horse-battery",
	})
	expectStatus(t, w, http.StatusNotFound)
}

func TestAccount_RegisterFromForm(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{
		"user_id":       {"sam"},
		"password":      {"Tr0ub4dor&3-horse-battery"},
		"email":         {"sam@example.com"},
		"first_name":    {"Sam"},
		"last_name":     {"Roe"},
		"date_of_birth": {"1985-12-31"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/us/account/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)

	w = s.do(http.MethodGet, "/api/us/account/query/@sam", "", nil)
	expectStatus(t, w, http.StatusOK)
	user := decode(t, w)
	if user["date_of_birth"] != "1985-12-31" {
		t.Errorf("date_of_birth = %v", user["date_of_birth"])
	}
	role, _ := user["role"].(map[string]interface{})
	if role["id"] != float64(0) || role["name"] != "User" {
		t.Errorf("role = %v, want {0 User}", role)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("user view exposes the password hash")
	}
}

func TestValidationErrorTree(t *testing.T) {
	s := newTestServer(t)
	token := s.seedUser("jane", models.RoleUser)

	w := s.do(http.MethodPost, "/api/us/account/register", "", map[string]interface{}{
		"user_id":  "jane",
		"password": "aaaaaaaaaa",
	})
	expectStatus(t, w, http.StatusBadRequest)
	errs, _ := decode(t, w)["error"].(map[string]interface{})
	if errs["email"] != "Argument is required, but not found in POST data." {
		t.Errorf("email error = %v", errs["email"])
	}
	if msg, _ := errs["password"].(string); !strings.HasPrefix(msg, "Argument of type Password") {
		t.Errorf("password error = %v", errs["password"])
	}
	if _, flagged := errs["user_id"]; flagged {
		t.Errorf("valid user_id flagged: %v", errs["user_id"])
	}

	w = s.do(http.MethodPost, "/api/us/account/edit", token, map[string]interface{}{
		"user_id": "jane",
		"vitals":  map[string]interface{}{"weight": "heavy", "heart_rate": 60},
	})
	expectStatus(t, w, http.StatusBadRequest)
	errs, _ = decode(t, w)["error"].(map[string]interface{})
	vitals, _ := errs["vitals"].(map[string]interface{})
	if _, ok := vitals["weight"]; !ok || len(vitals) != 1 {
		t.Errorf("vitals errors = %v, want only weight", errs["vitals"])
	}
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("mia", models.RoleManager)
	diet := map[string]interface{}{"name": "keto", "photo_url": "https://img/keto.png"}
	catalog := i18n.MustLoad()

	tests := []struct {
		name   string
		lang   string
		header string
	}{
		{name: "missing", lang: "us"},
		{name: "no marker", lang: "us", header: "mia:hash"},
		{name: "no separator", lang: "us", header: "@miahash"},
		{name: "wrong credential", lang: "ua", header: "@mia:nope"},
		{name: "unknown user", lang: "us", header: "@ghost:hash"},
		{name: "bearer without sso", lang: "us", header: "Bearer abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/"+tt.lang+"/diet/create", tt.header, diet)
			expectStatus(t, w, http.StatusUnauthorized)
			want := catalog.For(tt.lang).Translate("user.not_authenticated")
			if got := decode(t, w)["error"]; got != want {
				t.Errorf("error = %v, want %s", got, want)
			}
		})
	}

	w := s.do(http.MethodPost, "/api/us/diet/create", "@mia:hash", diet)
	expectStatus(t, w, http.StatusOK)
}

type stubSSO map[string]string

func (s stubSSO) Subject(token string) (string, error) {
	if name, ok := s[token]; ok {
		return name, nil
	}
	return "", io.EOF
}

func TestAuthentication_SSO(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("mia", models.RoleManager)

	// Rebuild the routes with an SSO that vouches for "mia".
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hasher, _ := security.NewPasswordHasher("bcrypt")
	sm := services.NewServiceManager(services.Dependencies{Repo: s.repo, Hasher: hasher, Logger: logger.Slog()})
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.engine = gin.New()
	NewHandlerManager(sm, i18n.MustLoad(), stubSSO{"good": "mia", "stranger": "ghost"}, logger).SetupRoutes(s.engine)

	diet := map[string]interface{}{"name": "keto", "photo_url": "https://img/keto.png"}
	expectStatus(t, s.do(http.MethodPost, "/api/us/diet/create", "Bearer good", diet), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, "/api/us/diet/create", "Bearer bad", diet), http.StatusUnauthorized)
	expectStatus(t, s.do(http.MethodPost, "/api/us/diet/create", "Bearer stranger", diet), http.StatusUnauthorized)
}

func TestRoleGating(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser("sam", models.RoleUser)
	manager := s.seedUser("mia", models.RoleManager)

	food := map[string]interface{}{
		"name":        "apple",
		"description": "crisp",
		"photo_url":   "https://img/apple.png",
		"carbs":       14,
		"protein":     "0.3",
		"fat":         0.2,
		"calories":    52,
		"vitamins":    map[string]interface{}{"vitamin_c": 4.6},
		"minerals":    map[string]interface{}{"potassium": 107},
		"amino_acids": map[string]interface{}{},
	}
	diet := map[string]interface{}{"name": "keto", "photo_url": "https://img/keto.png"}

	tests := []struct {
		name  string
		path  string
		body  map[string]interface{}
		token string
		want  int
	}{
		{"user creates food", "/api/us/food/create", food, user, http.StatusForbidden},
		{"manager creates food", "/api/us/food/create", food, manager, http.StatusOK},
		{"user creates diet", "/api/us/diet/create", diet, user, http.StatusForbidden},
		{"manager creates diet", "/api/us/diet/create", diet, manager, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, tt.path, tt.token, tt.body)
			expectStatus(t, w, tt.want)
			if tt.want == http.StatusForbidden {
				if got := decode(t, w)["error"]; got != "You don't have permissions to access this page." {
					t.Errorf("error = %v", got)
				}
			}
		})
	}
}

func TestFood_UnknownNutrientRejected(t *testing.T) {
	s := newTestServer(t)
	manager := s.seedUser("mia", models.RoleManager)

	w := s.do(http.MethodPost, "/api/us/food/create", manager, map[string]interface{}{
		"name":        "apple",
		"description": "",
		"photo_url":   "https://img/apple.png",
		"carbs":       1,
		"protein":     1,
		"fat":         1,
		"calories":    1,
		"vitamins":    map[string]interface{}{"vitamin_z": 1},
		"minerals":    "{}",
		"amino_acids": "{}",
	})
	expectStatus(t, w, http.StatusBadRequest)
	errs, _ := decode(t, w)["error"].(map[string]interface{})
	if _, ok := errs["vitamins"]; !ok || len(errs) != 1 {
		t.Errorf("errors = %v, want only vitamins", errs)
	}
}

func TestFood_DeleteRemovesNutrition(t *testing.T) {
	s := newTestServer(t)
	manager := s.seedUser("mia", models.RoleManager)

	w := s.do(http.MethodPost, "/api/us/food/create", manager, map[string]interface{}{
		"name": "apple", "description": "", "photo_url": "https://img/apple.png",
		"carbs": 1, "protein": 1, "fat": 1, "calories": 1,
		"vitamins": map[string]interface{}{}, "minerals": map[string]interface{}{}, "amino_acids": map[string]interface{}{},
	})
	expectStatus(t, w, http.StatusOK)
	food := decode(t, w)
	id := jsonID(food["food_id"])

	expectStatus(t, s.do(http.MethodDelete, "/api/us/food/delete/@"+id, manager, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/api/us/food/query/@"+id, "", nil), http.StatusNotFound)

	nutritions, err := s.repo.Nutritions().All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(nutritions) != 0 {
		t.Errorf("orphaned nutritions: %+v", nutritions)
	}
}

func TestPagination(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if err := s.repo.Diets().Create(context.Background(), &models.Diet{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	w := s.do(http.MethodGet, "/api/us/diet/all/@1:2", "", nil)
	expectStatus(t, w, http.StatusOK)
	page := decode(t, w)
	if page["overflow"] != float64(1) {
		t.Errorf("overflow = %v, want 1", page["overflow"])
	}
	results, _ := page["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("results = %v, want 2 items", results)
	}
	for i, want := range []string{"b", "c"} {
		item, _ := results[i].(map[string]interface{})
		if item["name"] != want {
			t.Errorf("results[%d].name = %v, want %s", i, item["name"], want)
		}
		if _, ok := item["average_intake"]; !ok {
			t.Errorf("results[%d] lacks average_intake", i)
		}
	}

	for _, window := range []string{"x", "1:y", "1:2:3"} {
		w := s.do(http.MethodGet, "/api/us/diet/all/@"+window, "", nil)
		expectStatus(t, w, http.StatusConflict)
	}
}

func TestCORSAndRouting(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/us/diet/query/@999", "", nil)
	expectStatus(t, w, http.StatusNotFound)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	// The parameter must carry its "@" marker.
	expectStatus(t, s.do(http.MethodGet, "/api/us/diet/query/1", "", nil), http.StatusNotFound)

	req := httptest.NewRequest(http.MethodOptions, "/api/us/diet/create", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("preflight Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestMealPlan_CreateResolvesFoods(t *testing.T) {
	s := newTestServer(t)
	manager := s.seedUser("mia", models.RoleManager)
	ctx := context.Background()

	diet := &models.Diet{Name: "keto"}
	if err := s.repo.Diets().Create(ctx, diet); err != nil {
		t.Fatal(err)
	}
	food := &models.Food{Name: "egg", Carbs: 10}
	if err := s.repo.Foods().Create(ctx, food); err != nil {
		t.Fatal(err)
	}

	w := s.do(http.MethodPost, "/api/us/mealplan/create", manager, map[string]interface{}{
		"time": 0, "diet_id": 4242, "foods": "1",
	})
	expectStatus(t, w, http.StatusNotFound)

	w = s.do(http.MethodPost, "/api/us/mealplan/create", manager, map[string]interface{}{
		"time":    3,
		"diet_id": diet.DietID,
		"foods":   strconv.FormatUint(uint64(food.FoodID), 10) + ",,9999",
	})
	expectStatus(t, w, http.StatusOK)
	plan := decode(t, w)
	foods, _ := plan["foods"].([]interface{})
	if len(foods) != 1 {
		t.Fatalf("foods = %v, want the one resolvable food", plan["foods"])
	}
	dietView, _ := plan["diet"].(map[string]interface{})
	intake, _ := dietView["average_intake"].(map[string]interface{})
	if intake["carbs"] != float64(10) {
		t.Errorf("average carbs = %v, want 10", intake["carbs"])
	}

	w = s.do(http.MethodPost, "/api/us/mealplan/create", manager, map[string]interface{}{
		"time": 4, "diet_id": diet.DietID, "foods": "",
	})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestSubmission_Review(t *testing.T) {
	s := newTestServer(t)
	author := s.seedUser("sam", models.RoleUser)
	other := s.seedUser("ann", models.RoleUser)
	manager := s.seedUser("mia", models.RoleManager)

	w := s.do(http.MethodPost, "/api/us/submission/create", author, map[string]interface{}{"note": "try tofu"})
	expectStatus(t, w, http.StatusOK)
	id := jsonID(decode(t, w)["submission_id"])

	expectStatus(t, s.do(http.MethodPost, "/api/us/submission/edit", other, map[string]interface{}{
		"submission_id": id, "note": "mine now",
	}), http.StatusForbidden)

	w = s.do(http.MethodPost, "/api/us/submission/edit", manager, map[string]interface{}{
		"submission_id": id, "is_accepted": "TRUE",
	})
	expectStatus(t, w, http.StatusOK)
	submission := decode(t, w)
	reviewer, _ := submission["reviewer"].(map[string]interface{})
	if submission["is_accepted"] != true || reviewer["user_id"] != "mia" {
		t.Errorf("accepted submission = %v", submission)
	}

	w = s.do(http.MethodPost, "/api/us/submission/edit", manager, map[string]interface{}{
		"submission_id": id, "is_accepted": false,
	})
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["reviewer"]; got != nil {
		t.Errorf("reviewer after rejection = %v, want null", got)
	}

	expectStatus(t, s.do(http.MethodDelete, "/api/us/submission/delete/@9999", other, nil), http.StatusNotFound)
	expectStatus(t, s.do(http.MethodDelete, "/api/us/submission/delete/@"+id, other, nil), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodDelete, "/api/us/submission/delete/@"+id, author, nil), http.StatusOK)
}

func TestAccount_ProfileAndEdit(t *testing.T) {
	s := newTestServer(t)
	jane := s.seedUser("jane", models.RoleUser)
	s.seedUser("sam", models.RoleUser)
	diet := &models.Diet{Name: "keto"}
	if err := s.repo.Diets().Create(context.Background(), diet); err != nil {
		t.Fatal(err)
	}

	w := s.do(http.MethodGet, "/api/us/account/profile/@jane", "", nil)
	expectStatus(t, w, http.StatusOK)
	profile := decode(t, w)
	if profile["diet"] != nil || profile["nutrition"] != nil {
		t.Errorf("fresh profile = %v", profile)
	}

	w = s.do(http.MethodPost, "/api/us/account/edit_profile", jane, map[string]interface{}{
		"user_id": "jane", "diet": 999,
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/api/us/account/edit_profile", jane, map[string]interface{}{
		"user_id":     "jane",
		"diet":        diet.DietID,
		"preferences": map[string]interface{}{"spicy": true},
	})
	expectStatus(t, w, http.StatusOK)
	profile = decode(t, w)
	dietView, _ := profile["diet"].(map[string]interface{})
	preferences, _ := profile["preferences"].(map[string]interface{})
	if dietView["name"] != "keto" || preferences["spicy"] != true {
		t.Errorf("edited profile = %v", profile)
	}

	expectStatus(t, s.do(http.MethodPost, "/api/us/account/edit", jane, map[string]interface{}{
		"user_id": "sam", "first_name": "Sammy",
	}), http.StatusForbidden)

	w = s.do(http.MethodPost, "/api/us/account/edit", jane, map[string]interface{}{
		"user_id": "jane",
		"role":    2,
		"vitals":  map[string]interface{}{"weight": 61.5},
	})
	expectStatus(t, w, http.StatusOK)
	user := decode(t, w)
	role, _ := user["role"].(map[string]interface{})
	if role["id"] != float64(0) || user["weight"] != 61.5 {
		t.Errorf("self edit = %v, want role unchanged and weight 61.5", user)
	}

	expectStatus(t, s.do(http.MethodPost, "/api/us/account/edit", jane, map[string]interface{}{
		"user_id": "jane", "role": 7,
	}), http.StatusBadRequest)
}

func TestSystem_BackupAndRollback(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser("root", models.RoleAdmin)
	manager := s.seedUser("mia", models.RoleManager)
	if err := s.repo.Diets().Create(context.Background(), &models.Diet{Name: "keto"}); err != nil {
		t.Fatal(err)
	}

	w := s.do(http.MethodGet, "/api/us/system/backup/@diets", admin, nil)
	expectStatus(t, w, http.StatusCreated)
	if !strings.HasPrefix(w.Body.String(), "diet_id,name,description,photo_url\n1,keto,") {
		t.Errorf("backup = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}

	w = s.do(http.MethodGet, "/api/us/system/backup/@secrets", admin, nil)
	expectStatus(t, w, http.StatusCreated)
	if w.Body.Len() != 0 {
		t.Errorf("unknown resource body = %q, want empty", w.Body.String())
	}

	expectStatus(t, s.do(http.MethodGet, "/api/us/system/backup/@diets", manager, nil), http.StatusForbidden)

	w = s.do(http.MethodGet, "/api/us/system/workbook/@diets", admin, nil)
	expectStatus(t, w, http.StatusCreated)
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("workbook Content-Type = %q", ct)
	}

	w = s.do(http.MethodPost, "/api/us/system/rollback", admin, map[string]interface{}{
		"resource": "diets",
		"data":     "diet_id,name\n9,paleo\n",
	})
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["has_errors"]; got != false {
		t.Errorf("has_errors = %v, want false", got)
	}
	expectStatus(t, s.do(http.MethodGet, "/api/us/diet/query/@9", "", nil), http.StatusOK)

	w = s.do(http.MethodPost, "/api/us/system/rollback", admin, map[string]interface{}{
		"resource": "diets",
		"data":     "diet_id,name\nnine,paleo\n",
	})
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["has_errors"]; got != true {
		t.Errorf("has_errors = %v, want true", got)
	}

	w = s.do(http.MethodPost, "/api/us/system/rollback", admin, map[string]interface{}{
		"resource": "secrets",
		"data":     "",
	})
	expectStatus(t, w, http.StatusCreated)
	if w.Body.Len() != 0 {
		t.Errorf("unknown rollback body = %q, want empty", w.Body.String())
	}
}

func TestIot_UpdateVitals(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("jane", models.RoleUser)

	w := s.do(http.MethodPost, "/api/us/iot/update", "", map[string]interface{}{
		"user_id": "jane", "blood_pressure": 120, "heart_rate": "64", "oxygen_level": 98,
	})
	expectStatus(t, w, http.StatusOK)
	user := decode(t, w)
	if user["heart_rate"] != float64(64) || user["blood_pressure"] != float64(120) {
		t.Errorf("user = %v", user)
	}

	expectStatus(t, s.do(http.MethodPost, "/api/us/iot/update", "", map[string]interface{}{
		"user_id": "ghost", "blood_pressure": 1, "heart_rate": 1, "oxygen_level": 1,
	}), http.StatusNotFound)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["status"]; got != "healthy" {
		t.Errorf("status = %v", got)
	}
}

// jsonID renders a decoded JSON number as a path parameter.
func jsonID(v interface{}) string {
	f, _ := v.(float64)
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func TestReadBody_MalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/us/account/login", strings.NewReader(`{"user_id": "jane",`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	expectStatus(t, w, http.StatusBadRequest)
	if msg, _ := decode(t, w)["error"].(string); !strings.HasPrefix(msg, "invalid JSON body") {
		t.Errorf("error = %q", msg)
	}
}

func TestNegativeKeysAreNotFound(t *testing.T) {
	s := newTestServer(t)
	manager := s.seedUser("mia", models.RoleManager)
	if err := s.repo.Diets().Create(context.Background(), &models.Diet{Name: "keto"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		body map[string]interface{}
	}{
		{"diet edit", "/api/us/diet/edit", map[string]interface{}{"diet_id": -1, "name": "paleo"}},
		{"food edit", "/api/us/food/edit", map[string]interface{}{"food_id": "-7"}},
		{"meal plan edit", "/api/us/mealplan/edit", map[string]interface{}{"meal_plan_id": -2}},
		{"meal plan diet", "/api/us/mealplan/create", map[string]interface{}{"time": 0, "diet_id": -1, "foods": ""}},
		{"submission edit", "/api/us/submission/edit", map[string]interface{}{"submission_id": -3, "note": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.do(http.MethodPost, tt.path, manager, tt.body), http.StatusNotFound)
		})
	}

	expectStatus(t, s.do(http.MethodGet, "/api/us/diet/query/@18446744073709551615", "", nil), http.StatusNotFound)
}
