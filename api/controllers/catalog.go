package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/smartsales/api/responses"
	"github.com/angelmondragon/smartsales/api/validators"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

const (
	maxUploadBytes   = 10 << 20
	maxFormValueSize = 4 << 10
)

// Catalog handlers are generic over the resource so categories, brands and
// warranties share one implementation per verb.

func ListHandler[T any](list func(context.Context) ([]T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GetHandler[T any](get func(context.Context, int64) (T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func CreateHandler[In, T any](create func(context.Context, In) (T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := create(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func UpdateHandler[In, T any](update func(context.Context, int64, In) (T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var in In
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := update(r.Context(), id, in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func DeleteHandler(del func(context.Context, int64) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := del(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

type productWriter interface {
	CreateProduct(ctx context.Context, in smartsales.ProductInput, image *smartsales.FileUpload) (smartsales.Product, error)
	UpdateProduct(ctx context.Context, id int64, in smartsales.ProductInput, image *smartsales.FileUpload) (smartsales.Product, error)
}

// ProductCreate reads a multipart form (optional file field "imagen").
func ProductCreate(svc productWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, image, cleanup, err := parseProductForm(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		product, err := svc.CreateProduct(r.Context(), in, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductUpdate forwards only the form fields that were sent.
func ProductUpdate(svc productWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in, image, cleanup, err := parseProductForm(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		product, err := svc.UpdateProduct(r.Context(), id, in, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func parseProductForm(w http.ResponseWriter, r *http.Request) (smartsales.ProductInput, *smartsales.FileUpload, func(), error) {
	noop := func() {}
	var in smartsales.ProductInput

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return in, nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form")
		}
		if err := r.ParseForm(); err != nil {
			return in, nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form")
		}
	}

	if v, ok := formValue(r, "nombre"); ok {
		in.Name = &v
	}
	if v, ok := formValue(r, "descripcion"); ok {
		in.Description = &v
	}
	if v, ok := formValue(r, "precio"); ok {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return in, nil, noop, fieldError("precio", "must be a decimal number")
		}
		if price.IsNegative() {
			return in, nil, noop, fieldError("precio", "must not be negative")
		}
		in.Price = &price
	}
	if v, ok := formValue(r, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return in, nil, noop, fieldError("stock", "must be an integer")
		}
		if stock < 0 {
			return in, nil, noop, fieldError("stock", "must not be negative")
		}
		in.Stock = &stock
	}
	for field, dest := range map[string]**int64{
		"categoria_id": &in.CategoryID,
		"marca_id":     &in.BrandID,
		"garantia_id":  &in.WarrantyID,
	} {
		v, ok := formValue(r, field)
		if !ok {
			continue
		}
		id, err := validators.ParseID(v, field)
		if err != nil {
			return in, nil, noop, err
		}
		*dest = &id
	}

	if r.MultipartForm == nil {
		return in, nil, noop, nil
	}
	file, header, err := r.FormFile("imagen")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, func() { _ = r.MultipartForm.RemoveAll() }, nil
	}
	if err != nil {
		return in, nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}
	cleanup := func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}
	return in, &smartsales.FileUpload{Filename: uploadName(header), Content: file}, cleanup, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	v := validators.SanitizeString(values[0], maxFormValueSize)
	if v == "" {
		return "", false
	}
	return v, true
}

func uploadName(header *multipart.FileHeader) string {
	if header == nil || header.Filename == "" {
		return "imagen"
	}
	return header.Filename
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, field+" "+msg).WithDetails(map[string]any{"field": field})
}
