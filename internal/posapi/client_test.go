package posapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/skybi/posctl/internal/posapi"
	"github.com/skybi/posctl/internal/posapi/posapitest"
	"github.com/skybi/posctl/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newClient(t *testing.T, backend *posapitest.Backend, token string, cacheLifetime time.Duration) *posapi.Client {
	t.Helper()
	options := transport.Options{}
	if token != "" {
		options.Tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	}
	client, err := posapi.New(backend.URL(), transport.NewClient(options), cacheLifetime)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := posapi.New("ftp://example.com/api/", nil, 0)
	assert.Error(t, err)

	_, err = posapi.New("://", nil, 0)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "", 0)

	result, err := client.Login(context.Background(), "ana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", result.Access)
	assert.Equal(t, "def456", result.Refresh)
	assert.Equal(t, "ana", result.User["username"])

	_, err = client.Login(context.Background(), "ana", "wrongpass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, posapi.ErrUnauthorized))

	var apiErr *posapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "No active account found with the given credentials", apiErr.Detail)
}

func TestSession(t *testing.T) {
	backend := posapitest.NewBackend(t)

	info, err := newClient(t, backend, "abc123", 0).Session(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Authenticated())
	assert.Equal(t, "ana", info["username"])
	assert.Equal(t, "Bearer abc123", backend.AuthHeader("GET /auth/session/"))

	_, err = newClient(t, backend, "stale", 0).Session(context.Background())
	assert.True(t, errors.Is(err, posapi.ErrUnauthorized))

	backend.Set(func(backend *posapitest.Backend) {
		backend.SessionUnauthenticated = true
	})
	info, err = newClient(t, backend, "abc123", 0).Session(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Authenticated())
}

func TestLogoutIgnoresBody(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)

	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, 1, backend.Calls("POST /auth/logout/"))

	backend.Set(func(backend *posapitest.Backend) {
		backend.FailLogout = true
	})
	err := client.Logout(context.Background())
	assert.True(t, errors.Is(err, posapi.ErrServer))
}

func TestTransportFailure(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)
	backend.Close()

	_, err := client.Session(context.Background())
	require.Error(t, err)
	var apiErr *posapi.Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestRegister(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "", 0)

	err := client.Register(context.Background(), &posapi.RegisterRequest{Username: "luis"})
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))
	assert.Zero(t, backend.TotalCalls())

	err = client.Register(context.Background(), &posapi.RegisterRequest{
		Username:  "luis",
		Email:     "luis@example.com",
		Password:  "pw",
		FirstName: "Luis",
		LastName:  "Rojas",
	})
	require.NoError(t, err)

	result, err := client.Login(context.Background(), "luis", "pw")
	require.NoError(t, err)
	assert.Equal(t, "luis", result.User["username"])
}

func TestEndpointsRequireToken(t *testing.T) {
	backend := posapitest.NewBackend(t)

	_, err := newClient(t, backend, "", 0).Products(context.Background())
	assert.True(t, errors.Is(err, posapi.ErrUnauthorized))
}

func TestProducts(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)
	ctx := context.Background()

	categoryID := backend.AddCategory(posapi.Category{Name: "Bebidas"})
	created, err := client.CreateProduct(ctx, &posapi.ProductInput{
		Name:       "Agua",
		Price:      "5.50",
		Stock:      30,
		CategoryID: &categoryID,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Bebidas", created.Category.Name)

	products, err := client.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, posapi.Decimal("5.50"), products[0].Price)

	updated, err := client.UpdateProduct(ctx, created.ID, &posapi.ProductInput{Name: "Agua 2L", Price: "8.00", Stock: 30})
	require.NoError(t, err)
	assert.Equal(t, "Agua 2L", updated.Name)

	require.NoError(t, client.ReduceStock(ctx, created.ID, 4))
	assert.Equal(t, 26, backend.Stock(created.ID))

	err = client.ReduceStock(ctx, created.ID, 100)
	assert.True(t, errors.Is(err, posapi.ErrBadRequest))

	err = client.ReduceStock(ctx, created.ID, 0)
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))

	require.NoError(t, client.DeleteProduct(ctx, created.ID))
	_, err = client.Product(ctx, created.ID)
	assert.True(t, errors.Is(err, posapi.ErrNotFound))
}

func TestProductInputValidation(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)

	_, err := client.CreateProduct(context.Background(), &posapi.ProductInput{Name: "Agua", Price: "gratis"})
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))

	_, err = client.CreateProduct(context.Background(), &posapi.ProductInput{Price: "1.00"})
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))

	_, err = client.CreateProduct(context.Background(), &posapi.ProductInput{Name: "Agua", Price: "1.00", Stock: -1})
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))

	assert.Zero(t, backend.TotalCalls())
}

func TestProductCache(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", time.Minute)
	ctx := context.Background()

	id := backend.AddProduct(posapi.Product{Name: "Pan", Price: "1.00", Stock: 10})

	first, err := client.Product(ctx, id)
	require.NoError(t, err)
	second, err := client.Product(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.Calls("GET /productos/{id}/"))

	// Mutating a returned product must not affect the cache
	second.Name = "changed"
	third, err := client.Product(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pan", third.Name)

	require.NoError(t, client.ReduceStock(ctx, id, 3))
	reduced, err := client.Product(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, reduced.Stock)
	assert.Equal(t, 2, backend.Calls("GET /productos/{id}/"))
}

func TestProductCacheDisabled(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)

	id := backend.AddProduct(posapi.Product{Name: "Pan", Price: "1.00", Stock: 10})
	for i := 0; i < 3; i++ {
		_, err := client.Product(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, backend.Calls("GET /productos/{id}/"))
}

func TestCategories(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)
	ctx := context.Background()

	created, err := client.CreateCategory(ctx, &posapi.CategoryInput{Name: "Lácteos"})
	require.NoError(t, err)

	fetched, err := client.Category(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lácteos", fetched.Name)

	updated, err := client.UpdateCategory(ctx, created.ID, &posapi.CategoryInput{Name: "Lácteos", Description: "Leche y quesos"})
	require.NoError(t, err)
	assert.Equal(t, "Leche y quesos", updated.Description)

	categories, err := client.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	require.NoError(t, client.DeleteCategory(ctx, created.ID))
	_, err = client.Category(ctx, created.ID)
	assert.True(t, errors.Is(err, posapi.ErrNotFound))

	_, err = client.CreateCategory(ctx, &posapi.CategoryInput{})
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))
}

func TestUsers(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)
	ctx := context.Background()

	require.NoError(t, client.CreateUser(ctx, &posapi.CreateUserInput{
		Username: "carla",
		Email:    "carla@example.com",
		Password: "pw",
		Role:     "cajero",
	}))

	users, err := client.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "cajero", users[0].RoleName())

	roleID := int64(2)
	require.NoError(t, client.UpdateUser(ctx, users[0].ID, &posapi.UpdateUserInput{
		Username: "carla",
		Email:    "carla@example.org",
		RoleID:   &roleID,
	}))
	user, err := client.User(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "carla@example.org", user.Email)
	assert.Equal(t, int64(2), user.Role.ID)

	require.NoError(t, client.DeleteUser(ctx, "carla"))
	err = client.DeleteUser(ctx, "carla")
	assert.True(t, errors.Is(err, posapi.ErrNotFound))

	err = client.CreateUser(ctx, &posapi.CreateUserInput{Username: "x", Email: "not-an-email", Password: "pw"})
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))
}

func TestCartAndPayment(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)
	ctx := context.Background()

	cart, err := client.Cart(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	id := backend.AddProduct(posapi.Product{Name: "Leche", Price: "6.25", Stock: 10})
	require.NoError(t, client.AddToCart(ctx, "7", id, 2))

	cart, err = client.Cart(ctx, "7")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Leche", cart.Items[0].ProductName)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, posapi.Decimal("12.50"), cart.Total)

	err = client.AddToCart(ctx, "7", id, 0)
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))

	result, err := client.Pay(ctx, &posapi.PaymentRequest{
		Total:    cart.Total,
		CardInfo: map[string]string{"numero": "4111111111111111"},
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", result["status"])
	payments := backend.Payments()
	require.Len(t, payments, 1)
	assert.Equal(t, posapi.Decimal("12.50"), payments[0].Total)

	_, err = client.Pay(ctx, &posapi.PaymentRequest{Total: "12.50"})
	assert.True(t, errors.Is(err, posapi.ErrInvalidInput))
}

func TestSale(t *testing.T) {
	backend := posapitest.NewBackend(t)
	client := newClient(t, backend, "abc123", 0)

	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	id := backend.AddSale(posapi.Sale{Total: "20.00", Status: "completada", CreatedAt: created})

	sale, err := client.Sale(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, posapi.Decimal("20.00"), sale.Total)
	assert.True(t, created.Equal(sale.CreatedAt))

	_, err = client.Sale(context.Background(), 9999)
	assert.True(t, errors.Is(err, posapi.ErrNotFound))
}
