package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shalteor/kitchenhub/internal/crypto"
	"github.com/shalteor/kitchenhub/internal/db"
	"github.com/shalteor/kitchenhub/internal/models"
	"github.com/shalteor/kitchenhub/internal/service"
	"github.com/shalteor/kitchenhub/internal/session"
)

type recordingSender struct {
	sent []models.ContactMessage
}

func (r *recordingSender) Send(_ context.Context, msg models.ContactMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	database *db.DB
	contact  *recordingSender
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	contact := &recordingSender{}
	svc := service.New(database, service.Options{
		Hasher:  &crypto.Hasher{Algorithm: crypto.AlgorithmArgon2id, Time: 1, Memory: 1024, Threads: 1},
		Contact: contact,
	})
	sessions := session.NewManager(session.Config{Secret: "test-secret", TTL: time.Hour})

	server, err := NewServer(svc, sessions, Options{})
	require.NoError(t, err)

	return &testEnv{server: server, handler: server.NewRouter(), database: database, contact: contact}
}

// client is a browser stand-in that keeps the session cookie
type client struct {
	t      *testing.T
	env    *testEnv
	cookie *http.Cookie
}

func (e *testEnv) newClient(t *testing.T) *client {
	return &client{t: t, env: e}
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rr := httptest.NewRecorder()
	c.env.handler.ServeHTTP(rr, req)

	for _, ck := range rr.Result().Cookies() {
		if ck.Name == c.env.server.sessions.CookieName() {
			c.cookie = ck
		}
	}
	return rr
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil)
}

// post submits form with the session's CSRF token
func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(session.CSRFFormField, c.session().CSRFToken)
	return c.do(http.MethodPost, path, form)
}

func (c *client) session() *session.Session {
	c.t.Helper()
	if c.cookie == nil {
		c.get("/")
	}
	s, err := c.env.server.sessions.Decode(c.cookie.Value)
	require.NoError(c.t, err)
	return s
}

func (c *client) flashes() []session.Flash {
	return c.session().Flashes
}

func (c *client) login(username, password string) {
	c.t.Helper()
	_, err := c.env.server.svc.Register(context.Background(), username, password, password)
	require.NoError(c.t, err)

	rr := c.post("/login/", url.Values{"username": {username}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, rr.Code)

	// follow the redirect so the welcome flash is consumed
	require.Equal(c.t, http.StatusOK, c.get("/").Code)
}

func (c *client) lastFlash() session.Flash {
	c.t.Helper()
	flashes := c.flashes()
	require.NotEmpty(c.t, flashes)
	return flashes[len(flashes)-1]
}

func assertRedirect(t *testing.T, rr *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())
	assert.Equal(t, location, rr.Header().Get("Location"))
}

func TestHealthz(t *testing.T) {
	env := setupTestServer(t)

	rr := env.newClient(t).get("/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestPublicPages(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)

	for _, path := range []string{"/", "/about/", "/register/", "/login/", "/contact/", "/recipes/", "/search"} {
		rr := c.get(path)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := c.get("/")
	assert.Contains(t, rr.Body.String(), "Create an account")
}

func TestAboutFlashesAnonymousVisitors(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)

	rr := c.get("/about/")
	assert.Contains(t, rr.Body.String(), "alert-info")
	assert.Empty(t, c.flashes())
}

func TestRegisterLoginLogout(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)

	rr := c.post("/register/", url.Values{"username": {"alice"}, "password": {"pw"}, "repassword": {"pw"}})
	assertRedirect(t, rr, "/login/")

	rr = c.post("/login/", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid username or password!")
	assert.False(t, c.session().IsAuthenticated())

	before := c.session().CSRFToken
	rr = c.post("/login/", url.Values{"username": {"alice"}, "password": {"pw"}})
	assertRedirect(t, rr, "/")

	sess := c.session()
	assert.Equal(t, "alice", sess.Username)
	assert.NotEqual(t, before, sess.CSRFToken)

	rr = c.get("/")
	assert.Contains(t, rr.Body.String(), "Hello, alice!")

	rr = c.get("/logout/")
	assertRedirect(t, rr, "/")
	assert.False(t, c.session().IsAuthenticated())
}

func TestRegisterValidationErrors(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)

	rr := c.post("/register/", url.Values{"username": {"bob"}, "password": {"a"}, "repassword": {"b"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Passwords do not match!")

	rr = c.post("/register/", url.Values{"username": {"bob"}, "password": {"a"}, "repassword": {"a"}})
	assertRedirect(t, rr, "/login/")

	rr = c.post("/register/", url.Values{"username": {"bob"}, "password": {"a"}, "repassword": {"a"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Username already exists!")

	n, err := env.database.CountUsersByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCSRFRequired(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)
	c.login("alice", "pw")

	rr := c.do(http.MethodPost, "/shopping/add", url.Values{"item_name": {"Milk"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = c.do(http.MethodPost, "/shopping/add", url.Values{"item_name": {"Milk"}, session.CSRFFormField: {"forged"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	n, err := env.database.CountShoppingItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	env := setupTestServer(t)

	for _, path := range []string{"/shopping/", "/create/", "/update/1/"} {
		c := env.newClient(t)
		rr := c.get(path)
		assertRedirect(t, rr, "/login/")

		flashes := c.flashes()
		require.Len(t, flashes, 1, path)
		assert.Equal(t, session.FlashWarning, flashes[0].Category)
	}
}

func TestNonNumericIDIsNotFound(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)

	assert.Equal(t, http.StatusNotFound, c.get("/recipe/abc/").Code)
}

func TestRecipeLifecycle(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	c := env.newClient(t)
	c.login("cook", "pw")

	rr := c.post("/create/", url.Values{
		"name":              {"Test Soup"},
		"cuisine":           {"Thai"},
		"rating":            {"abc"},
		"ingredient_name":   {"Water", "", "Salt"},
		"ingredient_amount": {"1 l", "", "1 tsp"},
	})
	assertRedirect(t, rr, "/recipes/")

	recipes, err := env.server.svc.ListRecipes(ctx, models.OrderByName, 0)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	id := recipes[0].ID
	assert.Nil(t, recipes[0].Rating)

	rr = c.get(fmt.Sprintf("/recipe/%d/", id))
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Test Soup")
	assert.Contains(t, body, "1 tsp Salt")
	assert.Contains(t, body, "Not rated")

	rr = c.get(fmt.Sprintf("/update/%d/", id))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="Water"`)

	rr = c.post(fmt.Sprintf("/update/%d/", id), url.Values{
		"name":              {"Spicy Soup"},
		"rating":            {"5"},
		"ingredient_name":   {"Chili"},
		"ingredient_amount": {"2"},
	})
	assertRedirect(t, rr, fmt.Sprintf("/recipe/%d/", id))

	detail, err := env.server.svc.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Spicy Soup", detail.Recipe.Name)
	require.NotNil(t, detail.Recipe.Rating)
	assert.Equal(t, 5, *detail.Recipe.Rating)
	require.Len(t, detail.Ingredients, 1)

	rr = c.post(fmt.Sprintf("/delete/%d", id), nil)
	assertRedirect(t, rr, "/recipes/")

	links, err := env.database.CountRecipeIngredientLinks(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, links)

	rr = c.get(fmt.Sprintf("/recipe/%d/", id))
	assertRedirect(t, rr, "/recipes/")
	last := c.lastFlash()
	assert.Equal(t, session.FlashWarning, last.Category)
	assert.Equal(t, "Requested recipe not found!", last.Message)
}

func TestCreateRecipeRequiresName(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)
	c.login("cook", "pw")

	rr := c.post("/create/", url.Values{"name": {"  "}, "description": {"no name"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Recipe name is required!")
	assert.Contains(t, rr.Body.String(), "no name")
}

func TestUpdateMissingRecipe(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)
	c.login("cook", "pw")

	rr := c.post("/update/999/", url.Values{"name": {"Ghost"}})
	assertRedirect(t, rr, "/recipes/")
	flashes := c.flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, "Recipe not found!", flashes[0].Message)

	rr = c.post("/delete/999", nil)
	assertRedirect(t, rr, "/recipes/")
	flashes = c.flashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, session.FlashWarning, flashes[1].Category)
}

func TestRecipeListingAndSearch(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	c := env.newClient(t)

	for _, name := range []string{"Banana Bread", "Apple Pie"} {
		_, err := env.server.svc.CreateRecipe(ctx, service.RecipeInput{Name: name}, 0)
		require.NoError(t, err)
	}

	rr := c.get("/recipes/?sort=name%20DESC%3B%20DROP%20TABLE%20recipes")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Less(t, strings.Index(body, "Apple Pie"), strings.Index(body, "Banana Bread"))

	rr = c.get("/search?q=banana")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Banana Bread")
	assert.NotContains(t, rr.Body.String(), "Apple Pie")

	rr = c.get("/search?q=")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Banana Bread")
}

func TestShoppingFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	c := env.newClient(t)
	c.login("shopper", "pw")

	rr := c.post("/shopping/add", url.Values{"item_name": {"Flour"}})
	assertRedirect(t, rr, "/shopping/")

	list, err := env.server.svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, "1 item", item.Quantity)
	assert.Equal(t, "other", item.Category)

	rr = c.post(fmt.Sprintf("/shopping/update/%d", item.ID), nil)
	assertRedirect(t, rr, "/shopping/")
	got, err := env.database.GetShoppingItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	rr = c.post(fmt.Sprintf("/shopping/edit/%d", item.ID), url.Values{
		"item_name": {"  Rye Flour "}, "item_quantity": {"1 kg"}, "item_category": {"grains"},
	})
	assertRedirect(t, rr, "/shopping/")
	assert.Equal(t, `Updated "Flour" to "Rye Flour"!`, c.lastFlash().Message)
	got, err = env.database.GetShoppingItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rye Flour", got.Item)
	assert.Equal(t, "grains", got.Category)

	rr = c.post("/shopping/quick_add/milk", nil)
	assertRedirect(t, rr, "/shopping/")

	rr = c.post("/shopping/quick_add/caviar", nil)
	assertRedirect(t, rr, "/shopping/")
	flashes := c.flashes()
	require.NotEmpty(t, flashes)
	last := flashes[len(flashes)-1]
	assert.Equal(t, session.FlashDanger, last.Category)
	assert.Equal(t, "Invalid quick add item!", last.Message)

	rr = c.get("/shopping/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "1 of 2 done")
	assert.Contains(t, rr.Body.String(), "(50%)")
	assert.Empty(t, c.flashes())

	rr = c.post("/shopping/complete_all", nil)
	assertRedirect(t, rr, "/shopping/")

	rr = c.post("/shopping/clear_completed", nil)
	assertRedirect(t, rr, "/shopping/")

	n, err := env.database.CountShoppingItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	rr = c.post("/shopping/delete/999", nil)
	assertRedirect(t, rr, "/shopping/")
	flashes = c.flashes()
	require.NotEmpty(t, flashes)
	assert.Equal(t, "Item not found!", flashes[len(flashes)-1].Message)
}

func TestContactForm(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)

	rr := c.post("/contact/", url.Values{"name": {"Ann"}, "email": {""}, "subject": {"Hi"}, "message": {"Hello"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "All fields are required!")
	assert.Empty(t, env.contact.sent)

	rr = c.post("/contact/", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "subject": {"Hi"}, "message": {"Hello"}})
	assertRedirect(t, rr, "/contact/")
	require.Len(t, env.contact.sent, 1)
	assert.Equal(t, "ann@example.com", env.contact.sent[0].Email)
}

func TestLongItemNameKeepsCookieSmall(t *testing.T) {
	env := setupTestServer(t)
	c := env.newClient(t)
	c.login("shopper", "pw")

	rr := c.post("/shopping/add", url.Values{"item_name": {strings.Repeat("x", 5000)}})
	assertRedirect(t, rr, "/shopping/")
	assert.Less(t, len(c.cookie.String()), 4096)
	assert.Equal(t, session.FlashDanger, c.lastFlash().Category)

	n, err := env.database.CountShoppingItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
