// Package posapitest provides an in-process fake of the point-of-sale backend for tests
package posapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/skybi/posctl/internal/posapi"
)

// Backend represents a fake backend serving the API below '<URL>/api/'.
// Its exported fields may be changed between requests; they are read under the backend's lock.
type Backend struct {
	server *httptest.Server

	mtx sync.Mutex

	// Username/Password are the only accepted credentials
	Username string
	Password string

	// AccessToken and RefreshToken are issued on login; only AccessToken authenticates requests
	AccessToken  string
	RefreshToken string

	// LoginUser is the user record returned on login
	LoginUser map[string]any

	// SessionFields are returned by the session endpoint along with 'authenticated: true'
	SessionFields map[string]any

	// SessionUnauthenticated makes the session endpoint answer 200 with 'authenticated: false'
	SessionUnauthenticated bool

	// FailLogout makes the logout endpoint answer 500
	FailLogout bool

	// MalformedLogin makes the login endpoint omit the refresh token
	MalformedLogin bool

	products   map[int64]*posapi.Product
	categories map[int64]*posapi.Category
	users      map[int64]*posapi.User
	carts      map[string]*posapi.Cart
	sales      map[int64]*posapi.Sale
	payments   []posapi.PaymentRequest
	nextID     int64

	calls       map[string]int
	authHeaders map[string]string
}

// NewBackend starts a new fake backend accepting 'ana'/'secret'.
// The server is closed when the test finishes.
func NewBackend(t interface{ Cleanup(func()) }) *Backend {
	backend := &Backend{
		Username:     "ana",
		Password:     "secret",
		AccessToken:  "abc123",
		RefreshToken: "def456",
		LoginUser: map[string]any{
			"id":       7,
			"username": "ana",
			"email":    "ana@example.com",
			"role":     map[string]any{"id": 1, "name": "admin"},
		},
		SessionFields: map[string]any{
			"id":       7,
			"username": "ana",
		},
		products:    make(map[int64]*posapi.Product),
		categories:  make(map[int64]*posapi.Category),
		users:       make(map[int64]*posapi.User),
		carts:       make(map[string]*posapi.Cart),
		sales:       make(map[int64]*posapi.Sale),
		nextID:      100,
		calls:       make(map[string]int),
		authHeaders: make(map[string]string),
	}
	backend.server = httptest.NewServer(backend.router())
	t.Cleanup(backend.server.Close)
	return backend
}

// URL returns the API base URL of the backend
func (backend *Backend) URL() string {
	return backend.server.URL + "/api/"
}

// Close shuts the server down; subsequent requests fail on the transport level
func (backend *Backend) Close() {
	backend.server.Close()
}

// Set runs action under the backend's lock so fields can be changed safely while requests are in flight
func (backend *Backend) Set(action func(backend *Backend)) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	action(backend)
}

// Calls returns how often the given route (i.e. "POST /auth/logout/") has been called
func (backend *Backend) Calls(route string) int {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	return backend.calls[route]
}

// TotalCalls returns the amount of requests served
func (backend *Backend) TotalCalls() int {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	total := 0
	for _, n := range backend.calls {
		total += n
	}
	return total
}

// AuthHeader returns the Authorization header of the last call to the given route
func (backend *Backend) AuthHeader(route string) string {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	return backend.authHeaders[route]
}

// AddProduct seeds a product and returns its ID
func (backend *Backend) AddProduct(product posapi.Product) int64 {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	product.ID = backend.id()
	backend.products[product.ID] = &product
	return product.ID
}

// AddCategory seeds a category and returns its ID
func (backend *Backend) AddCategory(category posapi.Category) int64 {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	category.ID = backend.id()
	backend.categories[category.ID] = &category
	return category.ID
}

// AddUser seeds a user and returns its ID
func (backend *Backend) AddUser(user posapi.User) int64 {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	user.ID = backend.id()
	backend.users[user.ID] = &user
	return user.ID
}

// AddSale seeds a sale and returns its ID
func (backend *Backend) AddSale(sale posapi.Sale) int64 {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	sale.ID = backend.id()
	backend.sales[sale.ID] = &sale
	return sale.ID
}

// Stock returns the current stock of a product
func (backend *Backend) Stock(id int64) int {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	if product, ok := backend.products[id]; ok {
		return product.Stock
	}
	return -1
}

// Payments returns all payments received so far
func (backend *Backend) Payments() []posapi.PaymentRequest {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	return append([]posapi.PaymentRequest(nil), backend.payments...)
}

func (backend *Backend) id() int64 {
	backend.nextID++
	return backend.nextID
}

func (backend *Backend) router() http.Handler {
	router := chi.NewRouter()
	router.Route("/api", func(router chi.Router) {
		router.Use(backend.record)

		router.Post("/auth/login/", backend.login)
		router.Get("/auth/session/", backend.session)
		router.Post("/auth/logout/", backend.logout)
		router.Post("/register/", backend.register)

		router.Group(func(router chi.Router) {
			router.Use(backend.requireToken)

			router.Get("/productos/", backend.listProducts)
			router.Post("/productos/", backend.createProduct)
			router.Get("/productos/{id}/", backend.getProduct)
			router.Put("/productos/{id}/", backend.updateProduct)
			router.Delete("/productos/{id}/", backend.deleteProduct)
			router.Post("/productos/{id}/reducir-stock/", backend.reduceStock)

			router.Get("/categorias/", backend.listCategories)
			router.Post("/categorias/", backend.createCategory)
			router.Get("/categorias/{id}/", backend.getCategory)
			router.Put("/categorias/{id}/", backend.updateCategory)
			router.Delete("/categorias/{id}/", backend.deleteCategory)

			router.Get("/usuarios/", backend.listUsers)
			router.Get("/usuarios/{id}/", backend.getUser)
			router.Post("/usuarios/create/", backend.createUser)
			router.Put("/usuarios/update/{id}/", backend.updateUser)
			router.Delete("/usuarios/delete/{username}/", backend.deleteUser)

			router.Get("/carrito/{userID}/", backend.getCart)
			router.Post("/carrito/{userID}/", backend.addToCart)

			router.Get("/ventas/{id}/", backend.getSale)
			router.Post("/pago/", backend.pay)
		})
	})
	return router
}

func (backend *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		next.ServeHTTP(writer, request)

		pattern := strings.TrimPrefix(chi.RouteContext(request.Context()).RoutePattern(), "/api")
		route := request.Method + " " + pattern
		backend.mtx.Lock()
		backend.calls[route]++
		backend.authHeaders[route] = request.Header.Get("Authorization")
		backend.mtx.Unlock()
	})
}

func (backend *Backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !backend.authorized(request) {
			writeJSON(writer, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (backend *Backend) authorized(request *http.Request) bool {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	return request.Header.Get("Authorization") == "Bearer "+backend.AccessToken
}

func (backend *Backend) login(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": "invalid JSON"})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	if payload.Username != backend.Username || payload.Password != backend.Password {
		writeJSON(writer, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
		return
	}
	response := map[string]any{
		"access":  backend.AccessToken,
		"refresh": backend.RefreshToken,
		"user":    backend.LoginUser,
	}
	if backend.MalformedLogin {
		delete(response, "refresh")
	}
	writeJSON(writer, http.StatusOK, response)
}

func (backend *Backend) session(writer http.ResponseWriter, request *http.Request) {
	if !backend.authorized(request) {
		writeJSON(writer, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	if backend.SessionUnauthenticated {
		writeJSON(writer, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	response := map[string]any{"authenticated": true}
	for key, val := range backend.SessionFields {
		response[key] = val
	}
	writeJSON(writer, http.StatusOK, response)
}

func (backend *Backend) logout(writer http.ResponseWriter, _ *http.Request) {
	backend.mtx.Lock()
	fail := backend.FailLogout
	backend.mtx.Unlock()
	if fail {
		writeJSON(writer, http.StatusInternalServerError, map[string]any{"detail": "logout failed"})
		return
	}
	writeJSON(writer, http.StatusOK, map[string]any{"detail": "logged out"})
}

func (backend *Backend) register(writer http.ResponseWriter, request *http.Request) {
	var payload posapi.RegisterRequest
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil || payload.Username == "" {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"username": []string{"This field is required."}})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	backend.Username = payload.Username
	backend.Password = payload.Password
	id := backend.id()
	backend.users[id] = &posapi.User{
		ID:        id,
		Username:  payload.Username,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	}
	backend.LoginUser = map[string]any{"id": id, "username": payload.Username, "email": payload.Email}
	writeJSON(writer, http.StatusCreated, backend.users[id])
}

func (backend *Backend) listProducts(writer http.ResponseWriter, _ *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	products := make([]*posapi.Product, 0, len(backend.products))
	for _, product := range backend.products {
		products = append(products, product)
	}
	writeJSON(writer, http.StatusOK, products)
}

func (backend *Backend) getProduct(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	product, ok := backend.products[urlID(request)]
	if !ok {
		writeNotFound(writer)
		return
	}
	writeJSON(writer, http.StatusOK, product)
}

func (backend *Backend) createProduct(writer http.ResponseWriter, request *http.Request) {
	var input posapi.ProductInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	product := backend.productFromInput(backend.id(), &input)
	backend.products[product.ID] = product
	writeJSON(writer, http.StatusCreated, product)
}

func (backend *Backend) updateProduct(writer http.ResponseWriter, request *http.Request) {
	var input posapi.ProductInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	id := urlID(request)
	if _, ok := backend.products[id]; !ok {
		writeNotFound(writer)
		return
	}
	product := backend.productFromInput(id, &input)
	backend.products[id] = product
	writeJSON(writer, http.StatusOK, product)
}

func (backend *Backend) productFromInput(id int64, input *posapi.ProductInput) *posapi.Product {
	product := &posapi.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
	}
	if input.CategoryID != nil {
		product.Category = backend.categories[*input.CategoryID]
	}
	return product
}

func (backend *Backend) deleteProduct(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	id := urlID(request)
	if _, ok := backend.products[id]; !ok {
		writeNotFound(writer)
		return
	}
	delete(backend.products, id)
	writer.WriteHeader(http.StatusNoContent)
}

func (backend *Backend) reduceStock(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	product, ok := backend.products[urlID(request)]
	if !ok {
		writeNotFound(writer)
		return
	}
	if payload.Amount > product.Stock {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": "Stock insuficiente"})
		return
	}
	product.Stock -= payload.Amount
	writeJSON(writer, http.StatusOK, map[string]any{"stock": product.Stock})
}

func (backend *Backend) listCategories(writer http.ResponseWriter, _ *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	categories := make([]*posapi.Category, 0, len(backend.categories))
	for _, category := range backend.categories {
		categories = append(categories, category)
	}
	writeJSON(writer, http.StatusOK, categories)
}

func (backend *Backend) getCategory(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	category, ok := backend.categories[urlID(request)]
	if !ok {
		writeNotFound(writer)
		return
	}
	writeJSON(writer, http.StatusOK, category)
}

func (backend *Backend) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input posapi.CategoryInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	category := &posapi.Category{ID: backend.id(), Name: input.Name, Description: input.Description}
	backend.categories[category.ID] = category
	writeJSON(writer, http.StatusCreated, category)
}

func (backend *Backend) updateCategory(writer http.ResponseWriter, request *http.Request) {
	var input posapi.CategoryInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	category, ok := backend.categories[urlID(request)]
	if !ok {
		writeNotFound(writer)
		return
	}
	category.Name = input.Name
	category.Description = input.Description
	writeJSON(writer, http.StatusOK, category)
}

func (backend *Backend) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	id := urlID(request)
	if _, ok := backend.categories[id]; !ok {
		writeNotFound(writer)
		return
	}
	delete(backend.categories, id)
	writer.WriteHeader(http.StatusNoContent)
}

func (backend *Backend) listUsers(writer http.ResponseWriter, _ *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	users := make([]*posapi.User, 0, len(backend.users))
	for _, user := range backend.users {
		users = append(users, user)
	}
	writeJSON(writer, http.StatusOK, users)
}

func (backend *Backend) getUser(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	user, ok := backend.users[urlID(request)]
	if !ok {
		writeNotFound(writer)
		return
	}
	writeJSON(writer, http.StatusOK, user)
}

func (backend *Backend) createUser(writer http.ResponseWriter, request *http.Request) {
	var input posapi.CreateUserInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	user := &posapi.User{ID: backend.id(), Username: input.Username, Email: input.Email}
	if input.Role != "" {
		user.Role = &posapi.Role{ID: 1, Name: input.Role}
	}
	backend.users[user.ID] = user
	writeJSON(writer, http.StatusCreated, user)
}

func (backend *Backend) updateUser(writer http.ResponseWriter, request *http.Request) {
	var input posapi.UpdateUserInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	user, ok := backend.users[urlID(request)]
	if !ok {
		writeNotFound(writer)
		return
	}
	user.Username = input.Username
	user.Email = input.Email
	if input.RoleID != nil {
		user.Role = &posapi.Role{ID: *input.RoleID, Name: "role-" + strconv.FormatInt(*input.RoleID, 10)}
	}
	writeJSON(writer, http.StatusOK, user)
}

func (backend *Backend) deleteUser(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	username := chi.URLParam(request, "username")
	for id, user := range backend.users {
		if user.Username == username {
			delete(backend.users, id)
			writer.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeNotFound(writer)
}

func (backend *Backend) getCart(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	cart, ok := backend.carts[chi.URLParam(request, "userID")]
	if !ok {
		cart = &posapi.Cart{Items: []*posapi.CartItem{}, Total: "0.00"}
	}
	writeJSON(writer, http.StatusOK, cart)
}

func (backend *Backend) addToCart(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		ProductID int64 `json:"producto_id"`
		Quantity  int   `json:"cantidad"`
	}
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	product, ok := backend.products[payload.ProductID]
	if !ok {
		writeNotFound(writer)
		return
	}
	userID := chi.URLParam(request, "userID")
	cart, ok := backend.carts[userID]
	if !ok {
		cart = &posapi.Cart{}
		backend.carts[userID] = cart
	}
	cart.Items = append(cart.Items, &posapi.CartItem{
		ID:           backend.id(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     payload.Quantity,
	})

	var total float64
	for _, item := range cart.Items {
		price, _ := strconv.ParseFloat(string(item.ProductPrice), 64)
		total += price * float64(item.Quantity)
	}
	cart.Total = posapi.Decimal(strconv.FormatFloat(total, 'f', 2, 64))
	writeJSON(writer, http.StatusCreated, cart)
}

func (backend *Backend) getSale(writer http.ResponseWriter, request *http.Request) {
	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	sale, ok := backend.sales[urlID(request)]
	if !ok {
		writeNotFound(writer)
		return
	}
	writeJSON(writer, http.StatusOK, sale)
}

func (backend *Backend) pay(writer http.ResponseWriter, request *http.Request) {
	var payload posapi.PaymentRequest
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}

	backend.mtx.Lock()
	defer backend.mtx.Unlock()
	backend.payments = append(backend.payments, payload)
	writeJSON(writer, http.StatusCreated, map[string]any{"status": "approved", "total": payload.Total})
}

func urlID(request *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	return id
}

func writeNotFound(writer http.ResponseWriter) {
	writeJSON(writer, http.StatusNotFound, map[string]any{"detail": "Not found."})
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	raw, _ := json.Marshal(value)
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	writer.Write(raw)
}
