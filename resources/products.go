package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-ordercloud/auth"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/jrsteele09/go-ordercloud/transport"
	"github.com/pkg/errors"
)

type Products struct {
	resource
}

func NewProducts(requester Requester) Products {
	return Products{resource{requester: requester}}
}

// As returns a copy whose calls use the impersonation token.
func (p Products) As() Products {
	p.mode = auth.Impersonated
	return p
}

func productPath(productID string) string {
	return "/products/" + url.PathEscape(productID)
}

func (p Products) List(ctx context.Context, listOptions models.ListOptions, options ...RequestOption) (*models.ListPage[models.Product], error) {
	var page models.ListPage[models.Product]
	req := transport.Request{Method: http.MethodGet, Path: "/products", Query: listOptions.Params()}
	if err := p.send(ctx, req, &page, options); err != nil {
		return nil, errors.Wrap(err, "Products.List")
	}
	return &page, nil
}

func (p Products) Get(ctx context.Context, productID string, options ...RequestOption) (*models.Product, error) {
	var product models.Product
	req := transport.Request{Method: http.MethodGet, Path: productPath(productID)}
	if err := p.send(ctx, req, &product, options); err != nil {
		return nil, errors.Wrap(err, "Products.Get")
	}
	return &product, nil
}

func (p Products) Create(ctx context.Context, product models.Product, options ...RequestOption) (*models.Product, error) {
	var created models.Product
	req := transport.Request{Method: http.MethodPost, Path: "/products", Body: product}
	if err := p.send(ctx, req, &created, options); err != nil {
		return nil, errors.Wrap(err, "Products.Create")
	}
	return &created, nil
}

// Save creates or replaces the product.
func (p Products) Save(ctx context.Context, productID string, product models.Product, options ...RequestOption) (*models.Product, error) {
	var saved models.Product
	req := transport.Request{Method: http.MethodPut, Path: productPath(productID), Body: product}
	if err := p.send(ctx, req, &saved, options); err != nil {
		return nil, errors.Wrap(err, "Products.Save")
	}
	return &saved, nil
}

// Patch updates only the fields set on product.
func (p Products) Patch(ctx context.Context, productID string, product models.Product, options ...RequestOption) (*models.Product, error) {
	var patched models.Product
	req := transport.Request{Method: http.MethodPatch, Path: productPath(productID), Body: product}
	if err := p.send(ctx, req, &patched, options); err != nil {
		return nil, errors.Wrap(err, "Products.Patch")
	}
	return &patched, nil
}

func (p Products) Delete(ctx context.Context, productID string, options ...RequestOption) error {
	req := transport.Request{Method: http.MethodDelete, Path: productPath(productID)}
	if err := p.send(ctx, req, nil, options); err != nil {
		return errors.Wrap(err, "Products.Delete")
	}
	return nil
}
