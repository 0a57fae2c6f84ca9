package service

import (
	"context"
	"errors"
	"fmt"
	"recipe-service/internal/entity"
	"recipe-service/internal/repository"
	"sort"
	"sync"
	"time"
)

var errBoom = errors.New("boom")

type memoryCounterStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
	getErr error
	setErr error
}

func newMemoryCounterStore() *memoryCounterStore {
	return &memoryCounterStore{values: map[string]string{}}
}

func (m *memoryCounterStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", repository.ErrCacheMiss
	}
	return v, nil
}

func (m *memoryCounterStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.values[key] = value
	return nil
}

type memoryRecipeStore struct {
	mu      sync.Mutex
	nextID  int
	recipes map[int]*entity.Recipe
	err     error
}

func newMemoryRecipeStore(recipes ...*entity.Recipe) *memoryRecipeStore {
	s := &memoryRecipeStore{nextID: 1, recipes: map[int]*entity.Recipe{}}
	for _, r := range recipes {
		s.recipes[r.ID] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	return s
}

func (s *memoryRecipeStore) GetRecipeByID(_ context.Context, id int) (*entity.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, repository.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *memoryRecipeStore) list(keep func(*entity.Recipe) bool) []*entity.Recipe {
	var out []*entity.Recipe
	for _, r := range s.recipes {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryRecipeStore) GetRecipes(context.Context) ([]*entity.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(*entity.Recipe) bool { return true }), s.err
}

func (s *memoryRecipeStore) GetRecipesByUser(_ context.Context, userID int) ([]*entity.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(r *entity.Recipe) bool { return r.UserID == userID }), s.err
}

func (s *memoryRecipeStore) CreateRecipe(_ context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	recipe.ID = s.nextID
	s.nextID++
	cp := *recipe
	s.recipes[recipe.ID] = &cp
	return recipe, nil
}

func (s *memoryRecipeStore) UpdateRecipe(_ context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	cp := *recipe
	s.recipes[recipe.ID] = &cp
	return recipe, nil
}

func (s *memoryRecipeStore) DeleteRecipe(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recipes, id)
	return s.err
}

type memoryRecipeCache struct {
	mu      sync.Mutex
	items   map[int]*entity.Recipe
	deleted []int
	getErr  error
}

func newMemoryRecipeCache() *memoryRecipeCache {
	return &memoryRecipeCache{items: map[int]*entity.Recipe{}}
}

func (c *memoryRecipeCache) Get(_ context.Context, id int) (*entity.Recipe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	r, ok := c.items[id]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return r, nil
}

func (c *memoryRecipeCache) Set(_ context.Context, recipe *entity.Recipe) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[recipe.ID] = recipe
	return nil
}

func (c *memoryRecipeCache) Delete(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.deleted = append(c.deleted, id)
	return nil
}

type publishedEvent struct {
	Event    string
	RecipeID int
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishRecipeEvent(_ context.Context, event string, recipe *entity.Recipe) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{event, recipe.ID})
	return p.err
}

type memoryIngredientStore struct {
	mu          sync.Mutex
	nextID      int
	ingredients map[int]*entity.Ingredient
	batches     [][]entity.IngredientRow
}

func newMemoryIngredientStore(ingredients ...*entity.Ingredient) *memoryIngredientStore {
	s := &memoryIngredientStore{nextID: 1, ingredients: map[int]*entity.Ingredient{}}
	for _, in := range ingredients {
		s.ingredients[in.ID] = in
		if in.ID >= s.nextID {
			s.nextID = in.ID + 1
		}
	}
	return s
}

func (s *memoryIngredientStore) GetIngredientByID(_ context.Context, id int) (*entity.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.ingredients[id]
	if !ok {
		return nil, fmt.Errorf("ingredient %d: %w", id, repository.ErrNotFound)
	}
	cp := *in
	return &cp, nil
}

func (s *memoryIngredientStore) CreateIngredients(_ context.Context, recipeID int, rows []entity.IngredientRow) ([]entity.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, rows)
	var out []entity.Ingredient
	for _, row := range rows {
		in := entity.Ingredient{ID: s.nextID, RecipeID: recipeID, Name: row.Name, Amount: row.Amount}
		s.nextID++
		s.ingredients[in.ID] = &in
		out = append(out, in)
	}
	return out, nil
}

func (s *memoryIngredientStore) UpdateIngredient(_ context.Context, ingredient *entity.Ingredient) (*entity.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ingredient
	s.ingredients[ingredient.ID] = &cp
	return ingredient, nil
}

func (s *memoryIngredientStore) DeleteIngredient(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ingredients, id)
	return nil
}

type memoryDraftStore struct {
	mu      sync.Mutex
	drafts  map[int][]entity.IngredientRow
	popErr  error
	saveErr error
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{drafts: map[int][]entity.IngredientRow{}}
}

func (d *memoryDraftStore) Save(_ context.Context, userID int, rows []entity.IngredientRow) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saveErr != nil {
		return d.saveErr
	}
	d.drafts[userID] = rows
	return nil
}

func (d *memoryDraftStore) Pop(_ context.Context, userID int) ([]entity.IngredientRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.popErr != nil {
		return nil, d.popErr
	}
	rows := d.drafts[userID]
	delete(d.drafts, userID)
	return rows, nil
}

type memoryUserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*entity.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{nextID: 1, users: map[int]*entity.User{}}
}

func (s *memoryUserStore) GetUserByID(_ context.Context, id int) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *memoryUserStore) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
}

func (s *memoryUserStore) GetUsers(context.Context) ([]*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.User
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryUserStore) conflict(user *entity.User) bool {
	for _, u := range s.users {
		if u.ID != user.ID && (u.Email == user.Email || u.Username == user.Username) {
			return true
		}
	}
	return false
}

func (s *memoryUserStore) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict(user) {
		return nil, fmt.Errorf("%w: users.email", repository.ErrDuplicate)
	}
	user.ID = s.nextID
	s.nextID++
	cp := *user
	s.users[user.ID] = &cp
	return user, nil
}

func (s *memoryUserStore) UpdateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict(user) {
		return nil, fmt.Errorf("%w: users.email", repository.ErrDuplicate)
	}
	cp := *user
	s.users[user.ID] = &cp
	return user, nil
}

func (s *memoryUserStore) DeleteUser(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[int]string
	ttls     map[int]time.Duration
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[int]string{}, ttls: map[int]time.Duration{}}
}

func (s *memorySessionStore) Save(_ context.Context, userID int, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = token
	s.ttls[userID] = ttl
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, userID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.sessions[userID]
	if !ok {
		return "", repository.ErrCacheMiss
	}
	return t, nil
}

func (s *memorySessionStore) Delete(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
