package ridgeline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ridgelinebuilders/ridgeline/mailer"
	"github.com/ridgelinebuilders/ridgeline/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := SiteConfig{
		DataDir:       t.TempDir(),
		SessionSecret: "test-secret",
	}
	app := New(cfg)

	st, err := store.Open(app.Config.DataDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	app.Store = st
	if err := app.Store.Users.EnsureDefaultAdmin("hunter2"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	app.Mailer = mailer.New("", "", "")
	app.loginLimiter = NewLoginLimiter(5, time.Minute)
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func doRequest(t *testing.T, app *App, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, app *App, username, password string) []*http.Cookie {
	t.Helper()
	rec := doRequest(t, app, http.MethodPost, "/api/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
	if body["environment"] != "development" {
		t.Errorf("environment = %q, want development", body["environment"])
	}
	if body["timestamp"] == "" {
		t.Error("expected a timestamp")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, app, http.MethodPost, "/api/auth/login",
		`{"username":"admin","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login returned %d, want 401", rec.Code)
	}

	rec = doRequest(t, app, http.MethodPost, "/api/auth/login",
		`{"username":"nobody","password":"hunter2"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user login returned %d, want 401", rec.Code)
	}
}

func TestLoginSessionAndMe(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/api/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /me returned %d, want 401", rec.Code)
	}

	cookies := login(t, app, "admin", "hunter2")
	rec = doRequest(t, app, http.MethodGet, "/api/auth/me", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("/me with session returned %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("/me leaked the password")
	}

	rec = doRequest(t, app, http.MethodPost, "/api/auth/logout", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout returned %d", rec.Code)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, app, http.MethodPost, "/api/blog", `{"title":"X","content":"y"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create returned %d, want 401", rec.Code)
	}
}

func TestPermissionDenied(t *testing.T) {
	app := newTestApp(t)
	adminCookies := login(t, app, "admin", "hunter2")

	// An editor without testimonials:write must be turned away with 403.
	rec := doRequest(t, app, http.MethodPost, "/api/users",
		`{"username":"writer","password":"secret","role":"editor","permissions":["blog:write"]}`, adminCookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user returned %d: %s", rec.Code, rec.Body.String())
	}

	writerCookies := login(t, app, "writer", "secret")
	rec = doRequest(t, app, http.MethodPost, "/api/testimonials",
		`{"name":"A","content":"b","rating":5}`, writerCookies)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unpermitted create returned %d, want 403", rec.Code)
	}

	rec = doRequest(t, app, http.MethodPost, "/api/blog",
		`{"title":"Allowed","content":"body"}`, writerCookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("permitted create returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBlogCRUDOverHTTP(t *testing.T) {
	app := newTestApp(t)
	cookies := login(t, app, "admin", "hunter2")

	rec := doRequest(t, app, http.MethodPost, "/api/blog",
		`{"title":"Breaking Ground","content":"We started.","tags":["projects"]}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var created store.BlogPost
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created post: %v", err)
	}
	if created.Slug != "breaking-ground" {
		t.Errorf("slug = %q, want breaking-ground", created.Slug)
	}

	rec = doRequest(t, app, http.MethodGet, "/api/blog", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "breaking-ground") {
		t.Fatalf("public list missing new post: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, app, http.MethodPut, "/api/blog/breaking-ground",
		`{"title":"Breaking Ground, Again"}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, app, http.MethodDelete, "/api/blog/breaking-ground", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}
	rec = doRequest(t, app, http.MethodDelete, "/api/blog/breaking-ground", "", cookies)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete returned %d, want 404", rec.Code)
	}
}

func TestDraftsHiddenFromPublic(t *testing.T) {
	app := newTestApp(t)
	cookies := login(t, app, "admin", "hunter2")

	rec := doRequest(t, app, http.MethodPost, "/api/blog",
		`{"title":"Secret Plans","content":"...","status":"draft"}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, app, http.MethodGet, "/api/blog", "", nil)
	if strings.Contains(rec.Body.String(), "secret-plans") {
		t.Error("draft leaked into public list")
	}
	rec = doRequest(t, app, http.MethodGet, "/api/blog/secret-plans", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("public draft fetch returned %d, want 404", rec.Code)
	}

	// includeDrafts only works for a logged-in writer.
	rec = doRequest(t, app, http.MethodGet, "/api/blog?includeDrafts=true", "", nil)
	if strings.Contains(rec.Body.String(), "secret-plans") {
		t.Error("includeDrafts honored for anonymous caller")
	}
	rec = doRequest(t, app, http.MethodGet, "/api/blog?includeDrafts=true", "", cookies)
	if !strings.Contains(rec.Body.String(), "secret-plans") {
		t.Error("includeDrafts ignored for staff caller")
	}
	rec = doRequest(t, app, http.MethodGet, "/api/blog/secret-plans", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("staff draft fetch returned %d, want 200", rec.Code)
	}
}

func TestErrorKindMapping(t *testing.T) {
	app := newTestApp(t)
	cookies := login(t, app, "admin", "hunter2")

	rec := doRequest(t, app, http.MethodGet, "/api/blog/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing post returned %d, want 404", rec.Code)
	}

	body := `{"title":"Dup","content":"x"}`
	if rec = doRequest(t, app, http.MethodPost, "/api/blog", body, cookies); rec.Code != http.StatusCreated {
		t.Fatalf("first create returned %d", rec.Code)
	}
	if rec = doRequest(t, app, http.MethodPost, "/api/blog", body, cookies); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create returned %d, want 409", rec.Code)
	}

	rec = doRequest(t, app, http.MethodPost, "/api/testimonials",
		`{"name":"A","content":"b","rating":9}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid rating returned %d, want 400", rec.Code)
	}
}

func TestPropertyEndpoints(t *testing.T) {
	app := newTestApp(t)
	cookies := login(t, app, "admin", "hunter2")

	rec := doRequest(t, app, http.MethodPost, "/api/properties",
		`{"title":"Cedar Ridge Villas","status":"ongoing","type":"construction"}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property returned %d: %s", rec.Code, rec.Body.String())
	}
	var created store.Property
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode property: %v", err)
	}
	if created.ID == "" || created.Slug != "cedar-ridge-villas" {
		t.Fatalf("unexpected property: %+v", created)
	}

	rec = doRequest(t, app, http.MethodGet, "/api/properties?status=ongoing", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), created.ID) {
		t.Fatalf("filtered list missing property: %d", rec.Code)
	}
	rec = doRequest(t, app, http.MethodGet, "/api/properties?status=completed", "", nil)
	if strings.Contains(rec.Body.String(), created.ID) {
		t.Error("filter did not exclude ongoing property")
	}

	rec = doRequest(t, app, http.MethodGet, "/api/properties/slug/cedar-ridge-villas", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get by slug returned %d", rec.Code)
	}
	rec = doRequest(t, app, http.MethodGet, "/api/properties/"+created.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get by id returned %d", rec.Code)
	}
}

func TestNewsletterEndpointsNonRevealing(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, app, http.MethodPost, "/api/newsletter", `{"email":"jo@example.com"}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("subscribe returned %d, want 202", rec.Code)
	}
	// Subscribing twice must look identical from outside.
	rec = doRequest(t, app, http.MethodPost, "/api/newsletter", `{"email":"jo@example.com"}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("re-subscribe returned %d, want 202", rec.Code)
	}

	rec = doRequest(t, app, http.MethodPost, "/api/newsletter", `{"email":"not-an-email"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid email returned %d, want 400", rec.Code)
	}

	sub, err := app.Store.Newsletter.GetByEmail("jo@example.com")
	if err != nil || sub.VerificationToken == nil {
		t.Fatalf("expected pending subscriber with token, got %+v, %v", sub, err)
	}
	rec = doRequest(t, app, http.MethodGet, "/api/newsletter/verify?token="+*sub.VerificationToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify returned %d: %s", rec.Code, rec.Body.String())
	}

	// Unsubscribe succeeds whether or not the address exists.
	rec = doRequest(t, app, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"jo@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unsubscribe returned %d", rec.Code)
	}
	rec = doRequest(t, app, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"ghost@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown unsubscribe returned %d, want 200", rec.Code)
	}
}

func TestContactFormValidation(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, app, http.MethodPost, "/api/contact",
		`{"name":"Pat","email":"pat@example.com","message":"Tell me about Cedar Ridge."}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("contact returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, app, http.MethodPost, "/api/contact",
		`{"name":"Pat","email":"bad","message":"hi"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email returned %d, want 400", rec.Code)
	}
	rec = doRequest(t, app, http.MethodPost, "/api/booking",
		`{"name":"Pat","email":"pat@example.com"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("booking without date returned %d, want 400", rec.Code)
	}
}

func TestSitemapAndFeed(t *testing.T) {
	app := newTestApp(t)
	cookies := login(t, app, "admin", "hunter2")

	if rec := doRequest(t, app, http.MethodPost, "/api/blog",
		`{"title":"Post One","content":"x"}`, cookies); rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d", rec.Code)
	}

	rec := doRequest(t, app, http.MethodGet, "/sitemap.xml", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/blog/post-one") {
		t.Fatalf("sitemap missing post: %d %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, app, http.MethodGet, "/feed.xml", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Post One") {
		t.Fatalf("feed missing post: %d", rec.Code)
	}
}
