package catalog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/smartsales/pkg/config"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := smartsales.New(config.BackendConfig{
		BaseURL:            server.URL + "/api",
		Timeout:            2 * time.Second,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: time.Minute,
	}, smartsales.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	svc, err := NewService(client, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func adminCtx() context.Context {
	return smartsales.WithToken(context.Background(), "admin-token")
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestListProductsUnwrapsAndParsesPrices(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":1,"nombre":"Mouse","precio":"19.99","stock":4},{"id":2,"nombre":"Teclado","precio":35.5,"stock":0}]}`)
	})

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if !products[0].Price.Equal(decimal.RequireFromString("19.99")) || !products[1].Price.Equal(decimal.RequireFromString("35.5")) {
		t.Fatalf("unexpected prices %s %s", products[0].Price, products[1].Price)
	}
}

func TestCreateProductValidatesLocally(t *testing.T) {
	var calls int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := svc.CreateProduct(adminCtx(), smartsales.ProductInput{Name: strPtr(" ")}, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	negative := decimal.RequireFromString("-1")
	_, err = svc.CreateProduct(adminCtx(), smartsales.ProductInput{Name: strPtr("Mouse"), Price: &negative, Stock: intPtr(1)}, nil)
	if err == nil {
		t.Fatal("expected negative price to be rejected")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no backend call")
	}
}

func TestCreateProductSendsMultipart(t *testing.T) {
	var gotName, gotFile string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotName = r.FormValue("nombre")
		if file, _, err := r.FormFile("imagen"); err == nil {
			data, _ := io.ReadAll(file)
			gotFile = string(data)
		}
		_, _ = io.WriteString(w, `{"ok":true,"producto":{"id":8,"nombre":"Mouse","precio":"10.00","stock":2}}`)
	})

	price := decimal.RequireFromString("10")
	product, err := svc.CreateProduct(adminCtx(), smartsales.ProductInput{
		Name:  strPtr("Mouse"),
		Price: &price,
		Stock: intPtr(2),
	}, &smartsales.FileUpload{Filename: "mouse.png", Content: strings.NewReader("png-bytes")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.ID != 8 || gotName != "Mouse" || gotFile != "png-bytes" {
		t.Fatalf("unexpected create: product=%+v name=%q file=%q", product, gotName, gotFile)
	}
}

func TestCategoryCRUDValidation(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"categoria":{"id":3,"nombre":"Audio"}}`)
	})

	if _, err := svc.CreateCategory(adminCtx(), smartsales.CatalogEntryInput{}); err == nil {
		t.Fatal("expected name required")
	}
	category, err := svc.CreateCategory(adminCtx(), smartsales.CatalogEntryInput{Name: "Audio"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.ID != 3 {
		t.Fatalf("unexpected category %+v", category)
	}
	if err := svc.DeleteCategory(adminCtx(), 0); err == nil {
		t.Fatal("expected invalid id")
	}
}

func TestWarrantyRequiresCoverageAndBrand(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"garantia":{"id":1,"cobertura":12}}`)
	})

	if _, err := svc.CreateWarranty(adminCtx(), smartsales.WarrantyInput{Coverage: 0, BrandID: 1}); err == nil {
		t.Fatal("expected coverage validation")
	}
	if _, err := svc.CreateWarranty(adminCtx(), smartsales.WarrantyInput{Coverage: 12}); err == nil {
		t.Fatal("expected brand validation")
	}
	warranty, err := svc.CreateWarranty(adminCtx(), smartsales.WarrantyInput{Coverage: 12, BrandID: 1})
	if err != nil || warranty.Coverage != 12 {
		t.Fatalf("unexpected warranty %+v err=%v", warranty, err)
	}
}

func TestEmptyListsAreNotNil(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	brands, err := svc.ListBrands(context.Background())
	if err != nil || brands == nil {
		t.Fatalf("expected empty slice, got %v err=%v", brands, err)
	}
}
