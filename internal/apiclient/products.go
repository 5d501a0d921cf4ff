package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/webmarket/internal/products"
)

type ProductClient struct{ c *Client }

func NewProductClient(c *Client) *ProductClient { return &ProductClient{c: c} }

func (pc *ProductClient) GetProducts(ctx context.Context) ([]products.ProductSummary, error) {
	var out []products.ProductSummary
	if err := pc.c.do(ctx, http.MethodGet, "/products", nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (pc *ProductClient) GetProduct(ctx context.Context, id uint) (*products.ProductDetail, error) {
	var out products.ProductDetail
	if err := pc.c.do(ctx, http.MethodGet, productPath(id), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (pc *ProductClient) CreateProduct(ctx context.Context, input products.ProductInput) (*products.MutationResult, error) {
	var out products.MutationResult
	if err := pc.c.do(ctx, http.MethodPost, "/products", nil, input, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (pc *ProductClient) UpdateProduct(ctx context.Context, id uint, input products.ProductInput) (*products.MutationResult, error) {
	var out products.MutationResult
	if err := pc.c.do(ctx, http.MethodPut, productPath(id), nil, input, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (pc *ProductClient) DeleteProduct(ctx context.Context, id uint) (*products.MutationResult, error) {
	var out products.MutationResult
	if err := pc.c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func productPath(id uint) string {
	return "/products/" + strconv.FormatUint(uint64(id), 10)
}
