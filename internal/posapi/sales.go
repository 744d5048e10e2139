package posapi

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Cart represents the shopping cart of a user
type Cart struct {
	Items []*CartItem `json:"items"`
	Total Decimal     `json:"total"`
}

// CartItem represents a single line of a Cart
type CartItem struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"producto_id,omitempty"`
	ProductName  string  `json:"producto_nombre"`
	ProductPrice Decimal `json:"producto_precio"`
	Quantity     int     `json:"cantidad"`
}

type addToCartRequest struct {
	ProductID int64 `json:"producto_id" validate:"required"`
	Quantity  int   `json:"cantidad" validate:"gt=0"`
}

// Sale represents a completed sale
type Sale struct {
	ID        int64     `json:"id"`
	Total     Decimal   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentRequest represents the payload of the payment endpoint.
// The card information is forwarded to the backend unchanged.
type PaymentRequest struct {
	Total    Decimal           `json:"total" validate:"required,numeric"`
	CardInfo map[string]string `json:"tarjeta_info" validate:"required"`
}

// PaymentResult represents the opaque response of the payment endpoint
type PaymentResult map[string]any

// Cart calls 'GET /carrito/{userID}/'
func (client *Client) Cart(ctx context.Context, userID string) (*Cart, error) {
	cart := new(Cart)
	if err := client.do(ctx, http.MethodGet, "/carrito/"+url.PathEscape(userID)+"/", nil, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddToCart calls 'POST /carrito/{userID}/'
func (client *Client) AddToCart(ctx context.Context, userID string, productID int64, quantity int) error {
	request := &addToCartRequest{
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := validateInput(request); err != nil {
		return err
	}
	return client.do(ctx, http.MethodPost, "/carrito/"+url.PathEscape(userID)+"/", request, nil)
}

// Sale calls 'GET /ventas/{id}/'
func (client *Client) Sale(ctx context.Context, id int64) (*Sale, error) {
	sale := new(Sale)
	if err := client.do(ctx, http.MethodGet, "/ventas/"+pathID(id)+"/", nil, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// Pay calls 'POST /pago/'
func (client *Client) Pay(ctx context.Context, request *PaymentRequest) (PaymentResult, error) {
	if err := validateInput(request); err != nil {
		return nil, err
	}
	result := PaymentResult{}
	if err := client.do(ctx, http.MethodPost, "/pago/", request, &result); err != nil {
		return nil, err
	}
	return result, nil
}
