package posapi

import (
	"context"
	"net/http"
)

// Category represents a product category
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryInput is used to create or replace a category
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Categories calls 'GET /categorias/'
func (client *Client) Categories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	if err := client.do(ctx, http.MethodGet, "/categorias/", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Category calls 'GET /categorias/{id}/'
func (client *Client) Category(ctx context.Context, id int64) (*Category, error) {
	category := new(Category)
	if err := client.do(ctx, http.MethodGet, "/categorias/"+pathID(id)+"/", nil, category); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateCategory calls 'POST /categorias/'
func (client *Client) CreateCategory(ctx context.Context, input *CategoryInput) (*Category, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	category := new(Category)
	if err := client.do(ctx, http.MethodPost, "/categorias/", input, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory calls 'PUT /categorias/{id}/'
func (client *Client) UpdateCategory(ctx context.Context, id int64, input *CategoryInput) (*Category, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	category := new(Category)
	if err := client.do(ctx, http.MethodPut, "/categorias/"+pathID(id)+"/", input, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory calls 'DELETE /categorias/{id}/'
func (client *Client) DeleteCategory(ctx context.Context, id int64) error {
	return client.do(ctx, http.MethodDelete, "/categorias/"+pathID(id)+"/", nil, nil)
}
