package posapi

import (
	"context"
	"net/http"
)

// Product represents a product of the catalog
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Decimal   `json:"price"`
	Stock       int       `json:"stock"`
	Category    *Category `json:"category,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// ProductInput is used to create or replace a product
type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       Decimal `json:"price" validate:"required,numeric"`
	Stock       int     `json:"stock" validate:"gte=0"`
	CategoryID  *int64  `json:"category_id"`
	ImageURL    string  `json:"image_url"`
}

type reduceStockRequest struct {
	Amount int `json:"amount" validate:"gt=0"`
}

// Products calls 'GET /productos/' and refreshes the product cache with the result
func (client *Client) Products(ctx context.Context) ([]*Product, error) {
	var products []*Product
	if err := client.do(ctx, http.MethodGet, "/productos/", nil, &products); err != nil {
		return nil, err
	}
	for _, product := range products {
		client.cacheProduct(product)
	}
	return products, nil
}

// Product calls 'GET /productos/{id}/' unless the product is cached
func (client *Client) Product(ctx context.Context, id int64) (*Product, error) {
	if client.products != nil {
		if cached, ok := client.products.Lookup(id); ok {
			cpy := *cached
			return &cpy, nil
		}
	}

	product := new(Product)
	if err := client.do(ctx, http.MethodGet, "/productos/"+pathID(id)+"/", nil, product); err != nil {
		return nil, err
	}
	client.cacheProduct(product)
	return product, nil
}

// CreateProduct calls 'POST /productos/'
func (client *Client) CreateProduct(ctx context.Context, input *ProductInput) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := new(Product)
	if err := client.do(ctx, http.MethodPost, "/productos/", input, product); err != nil {
		return nil, err
	}
	client.cacheProduct(product)
	return product, nil
}

// UpdateProduct calls 'PUT /productos/{id}/'
func (client *Client) UpdateProduct(ctx context.Context, id int64, input *ProductInput) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	client.forgetProduct(id)
	product := new(Product)
	if err := client.do(ctx, http.MethodPut, "/productos/"+pathID(id)+"/", input, product); err != nil {
		return nil, err
	}
	client.cacheProduct(product)
	return product, nil
}

// DeleteProduct calls 'DELETE /productos/{id}/'
func (client *Client) DeleteProduct(ctx context.Context, id int64) error {
	client.forgetProduct(id)
	return client.do(ctx, http.MethodDelete, "/productos/"+pathID(id)+"/", nil, nil)
}

// ReduceStock calls 'POST /productos/{id}/reducir-stock/'
func (client *Client) ReduceStock(ctx context.Context, id int64, amount int) error {
	request := &reduceStockRequest{Amount: amount}
	if err := validateInput(request); err != nil {
		return err
	}
	client.forgetProduct(id)
	return client.do(ctx, http.MethodPost, "/productos/"+pathID(id)+"/reducir-stock/", request, nil)
}

func (client *Client) cacheProduct(product *Product) {
	if client.products == nil || product == nil || product.ID == 0 {
		return
	}
	cpy := *product
	client.products.Set(product.ID, &cpy)
}

func (client *Client) forgetProduct(id int64) {
	if client.products != nil {
		client.products.Unset(id)
	}
}
