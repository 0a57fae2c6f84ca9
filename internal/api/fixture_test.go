package api

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"net/url"
	"recipe-service/internal/entity"
	"recipe-service/internal/repository"
	"recipe-service/internal/service"
	"strings"
	"sync"
	"testing"
	"time"
)

const testSecret = "test-secret"

// memoryDB stands in for MySQL behind the user, recipe and ingredient stores.
type memoryDB struct {
	mu          sync.Mutex
	users       map[int]entity.User
	recipes     map[int]entity.Recipe
	ingredients map[int]entity.Ingredient
	nextID      int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		users:       map[int]entity.User{},
		recipes:     map[int]entity.Recipe{},
		ingredients: map[int]entity.Ingredient{},
	}
}

func (m *memoryDB) id() int {
	m.nextID++
	return m.nextID
}

func (m *memoryDB) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memoryDB) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryDB) GetUsers(ctx context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*entity.User
	for id := 1; id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			users = append(users, &u)
		}
	}
	return users, nil
}

func (m *memoryDB) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicate
		}
	}
	user.ID = m.id()
	m.users[user.ID] = *user
	return user, nil
}

func (m *memoryDB) UpdateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return user, nil
}

// DeleteUser cascades to recipes and their ingredients like the foreign keys do.
func (m *memoryDB) DeleteUser(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	for rid, r := range m.recipes {
		if r.UserID == id {
			m.deleteRecipe(rid)
		}
	}
	return nil
}

func (m *memoryDB) GetRecipeByID(ctx context.Context, id int) (*entity.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.Ingredients = nil
	for iid := 1; iid <= m.nextID; iid++ {
		if ing, ok := m.ingredients[iid]; ok && ing.RecipeID == id {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	return &r, nil
}

func (m *memoryDB) GetRecipes(ctx context.Context) ([]*entity.Recipe, error) {
	return m.GetRecipesByUser(ctx, 0)
}

// GetRecipesByUser lists every recipe when userID is zero.
func (m *memoryDB) GetRecipesByUser(ctx context.Context, userID int) ([]*entity.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var recipes []*entity.Recipe
	for id := 1; id <= m.nextID; id++ {
		if r, ok := m.recipes[id]; ok && (userID == 0 || r.UserID == userID) {
			recipes = append(recipes, &r)
		}
	}
	return recipes, nil
}

func (m *memoryDB) CreateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recipe.ID = m.id()
	m.recipes[recipe.ID] = *recipe
	return recipe, nil
}

func (m *memoryDB) UpdateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[recipe.ID] = *recipe
	return recipe, nil
}

func (m *memoryDB) DeleteRecipe(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteRecipe(id)
	return nil
}

func (m *memoryDB) deleteRecipe(id int) {
	delete(m.recipes, id)
	for iid, ing := range m.ingredients {
		if ing.RecipeID == id {
			delete(m.ingredients, iid)
		}
	}
}

func (m *memoryDB) GetIngredientByID(ctx context.Context, id int) (*entity.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ing, ok := m.ingredients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ing, nil
}

func (m *memoryDB) CreateIngredients(ctx context.Context, recipeID int, rows []entity.IngredientRow) ([]entity.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var created []entity.Ingredient
	for _, row := range rows {
		ing := entity.Ingredient{ID: m.id(), RecipeID: recipeID, Name: row.Name, Amount: row.Amount}
		m.ingredients[ing.ID] = ing
		created = append(created, ing)
	}
	return created, nil
}

func (m *memoryDB) UpdateIngredient(ctx context.Context, ingredient *entity.Ingredient) (*entity.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingredients[ingredient.ID] = *ingredient
	return ingredient, nil
}

func (m *memoryDB) DeleteIngredient(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ingredients, id)
	return nil
}

type testServer struct {
	t     *testing.T
	e     *echo.Echo
	db    *memoryDB
	redis *miniredis.Miniredis
	svc   Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db := newMemoryDB()
	recipes := service.NewRecipeService(db, repository.NewRecipeCache(rdb, time.Minute), service.NoopPublisher{})
	users := service.NewUserService(db, repository.NewSessionStore(rdb), recipes, testSecret, time.Hour)
	formCounts := service.NewFormCountService(repository.NewCounterStore(rdb))
	ingredients := service.NewIngredientService(db, recipes, formCounts, repository.NewDraftStore(rdb, time.Hour))

	svc := Services{Users: users, Recipes: recipes, Ingredients: ingredients}
	e := NewRouter(RouterConfig{JWTSecret: testSecret, RateLimit: 1000, RateBurst: 1000}, svc)
	return &testServer{t: t, e: e, db: db, redis: mr, svc: svc}
}

// signUp registers a user and returns their id and a live token.
func (s *testServer) signUp(name string) (int, string) {
	s.t.Helper()
	ctx := context.Background()
	email := name + "@example.com"
	user, err := s.svc.Users.Register(ctx, service.RegisterInput{Username: name, Email: email, Password: "password123"})
	require.NoError(s.t, err)
	token, err := s.svc.Users.Login(ctx, email, "password123")
	require.NoError(s.t, err)
	return user.ID, token
}

func (s *testServer) createRecipe(ownerID int, name string) int {
	s.t.Helper()
	recipe, err := s.svc.Recipes.CreateRecipe(context.Background(), ownerID, service.RecipeInput{Name: name, Description: "Cook it."})
	require.NoError(s.t, err)
	return recipe.ID
}

func (s *testServer) do(method, target, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, target, nil)
	case url.Values:
		req = httptest.NewRequest(method, target, strings.NewReader(b.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		req = httptest.NewRequest(method, target, strings.NewReader(string(data)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func formURL(recipeID int) string {
	return fmt.Sprintf("/recipes/%d/ingredients/new", recipeID)
}
