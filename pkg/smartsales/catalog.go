package smartsales

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
)

type resource struct {
	name    string
	path    string
	listKey string
	itemKey string
}

var (
	productsResource   = resource{name: "products", path: "products/productos", listKey: "productos", itemKey: "producto"}
	categoriesResource = resource{name: "categories", path: "products/categorias", listKey: "categorias", itemKey: "categoria"}
	brandsResource     = resource{name: "brands", path: "products/marcas", listKey: "marcas", itemKey: "marca"}
	warrantiesResource = resource{name: "warranties", path: "products/garantias", listKey: "garantias", itemKey: "garantia"}
)

func (r resource) endpoint(op string) string {
	return r.name + "." + op
}

func (r resource) itemPath(id int64, suffix string) string {
	path := fmt.Sprintf("%s/%d", r.path, id)
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}

func listResource[T any](ctx context.Context, c *Client, r resource, public bool) ([]T, error) {
	raw, err := c.do(ctx, request{endpoint: r.endpoint("list"), method: http.MethodGet, path: r.path, public: public})
	if err != nil {
		return nil, err
	}
	return decodeList[T](r.endpoint("list"), raw.body, r.listKey)
}

func getResource[T any](ctx context.Context, c *Client, r resource, id int64, public bool) (T, error) {
	raw, err := c.do(ctx, request{endpoint: r.endpoint("get"), method: http.MethodGet, path: r.itemPath(id, ""), public: public})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](r.endpoint("get"), raw.body, r.itemKey)
}

func writeResource[T any](ctx context.Context, c *Client, r resource, op, method, path string, body any, form *multipartForm) (T, error) {
	raw, err := c.do(ctx, request{endpoint: r.endpoint(op), method: method, path: path, json: body, form: form})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](r.endpoint(op), raw.body, r.itemKey)
}

func deleteResource(ctx context.Context, c *Client, r resource, id int64) error {
	_, err := c.do(ctx, request{endpoint: r.endpoint("delete"), method: http.MethodDelete, path: r.itemPath(id, "delete")})
	return err
}

// ProductInput carries product fields for create and update. Nil fields are not sent.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *int64
	BrandID     *int64
	WarrantyID  *int64
}

func (in ProductInput) fields() []formField {
	var fields []formField
	if in.Name != nil {
		fields = append(fields, formField{name: "nombre", value: *in.Name})
	}
	if in.Description != nil {
		fields = append(fields, formField{name: "descripcion", value: *in.Description})
	}
	if in.Price != nil {
		fields = append(fields, formField{name: "precio", value: in.Price.String()})
	}
	if in.Stock != nil {
		fields = append(fields, formField{name: "stock", value: strconv.Itoa(*in.Stock)})
	}
	if in.CategoryID != nil {
		fields = append(fields, formField{name: "categoria_id", value: strconv.FormatInt(*in.CategoryID, 10)})
	}
	if in.BrandID != nil {
		fields = append(fields, formField{name: "marca_id", value: strconv.FormatInt(*in.BrandID, 10)})
	}
	if in.WarrantyID != nil && *in.WarrantyID > 0 {
		fields = append(fields, formField{name: "garantia_id", value: strconv.FormatInt(*in.WarrantyID, 10)})
	}
	return fields
}

// CatalogEntryInput is the payload for categories and brands.
type CatalogEntryInput struct {
	Name        string `json:"nombre,omitempty"`
	Description string `json:"descripcion,omitempty"`
}

// WarrantyInput is the payload for warranties.
type WarrantyInput struct {
	Coverage    int    `json:"cobertura,omitempty"`
	Description string `json:"descripcion,omitempty"`
	BrandID     int64  `json:"marca_id,omitempty"`
}

// ListProducts returns the catalog. Credentials are attached when present.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	return listResource[Product](ctx, c, productsResource, true)
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	return getResource[Product](ctx, c, productsResource, id, true)
}

// CreateProduct sends a multipart create; image is forwarded as "imagen" when given.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput, image *FileUpload) (Product, error) {
	form, err := buildMultipart(in.fields(), "imagen", image)
	if err != nil {
		return Product{}, err
	}
	return writeResource[Product](ctx, c, productsResource, "create", http.MethodPost, productsResource.path+"/create", nil, form)
}

// UpdateProduct sends only the fields set on in.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput, image *FileUpload) (Product, error) {
	form, err := buildMultipart(in.fields(), "imagen", image)
	if err != nil {
		return Product{}, err
	}
	return writeResource[Product](ctx, c, productsResource, "update", http.MethodPost, productsResource.itemPath(id, "update"), nil, form)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return deleteResource(ctx, c, productsResource, id)
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	return listResource[Category](ctx, c, categoriesResource, true)
}

func (c *Client) GetCategory(ctx context.Context, id int64) (Category, error) {
	return getResource[Category](ctx, c, categoriesResource, id, true)
}

func (c *Client) CreateCategory(ctx context.Context, in CatalogEntryInput) (Category, error) {
	return writeResource[Category](ctx, c, categoriesResource, "create", http.MethodPost, categoriesResource.path+"/create", in, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in CatalogEntryInput) (Category, error) {
	return writeResource[Category](ctx, c, categoriesResource, "update", http.MethodPut, categoriesResource.itemPath(id, "update"), in, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return deleteResource(ctx, c, categoriesResource, id)
}

func (c *Client) ListBrands(ctx context.Context) ([]Brand, error) {
	return listResource[Brand](ctx, c, brandsResource, true)
}

func (c *Client) GetBrand(ctx context.Context, id int64) (Brand, error) {
	return getResource[Brand](ctx, c, brandsResource, id, true)
}

func (c *Client) CreateBrand(ctx context.Context, in CatalogEntryInput) (Brand, error) {
	return writeResource[Brand](ctx, c, brandsResource, "create", http.MethodPost, brandsResource.path+"/create", in, nil)
}

func (c *Client) UpdateBrand(ctx context.Context, id int64, in CatalogEntryInput) (Brand, error) {
	return writeResource[Brand](ctx, c, brandsResource, "update", http.MethodPut, brandsResource.itemPath(id, "update"), in, nil)
}

func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	return deleteResource(ctx, c, brandsResource, id)
}

func (c *Client) ListWarranties(ctx context.Context) ([]Warranty, error) {
	return listResource[Warranty](ctx, c, warrantiesResource, true)
}

func (c *Client) GetWarranty(ctx context.Context, id int64) (Warranty, error) {
	return getResource[Warranty](ctx, c, warrantiesResource, id, true)
}

func (c *Client) CreateWarranty(ctx context.Context, in WarrantyInput) (Warranty, error) {
	return writeResource[Warranty](ctx, c, warrantiesResource, "create", http.MethodPost, warrantiesResource.path+"/create", in, nil)
}

func (c *Client) UpdateWarranty(ctx context.Context, id int64, in WarrantyInput) (Warranty, error) {
	return writeResource[Warranty](ctx, c, warrantiesResource, "update", http.MethodPut, warrantiesResource.itemPath(id, "update"), in, nil)
}

func (c *Client) DeleteWarranty(ctx context.Context, id int64) error {
	return deleteResource(ctx, c, warrantiesResource, id)
}
