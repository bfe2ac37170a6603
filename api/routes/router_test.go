package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	productsvc "github.com/fasalbajar/fasalbajar-backend/internal/products"
	pkgAuth "github.com/fasalbajar/fasalbajar-backend/pkg/auth"
	"github.com/fasalbajar/fasalbajar-backend/pkg/config"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubProductService struct{}

func (stubProductService) List(context.Context, productsvc.ListInput) (*productsvc.ListResult, error) {
	return &productsvc.ListResult{Items: []productsvc.ProductDTO{}}, nil
}

func (stubProductService) Get(context.Context, uuid.UUID) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{}, nil
}

func (stubProductService) ListMine(context.Context, uuid.UUID) ([]productsvc.ProductDTO, error) {
	return nil, nil
}

func (stubProductService) Create(context.Context, uuid.UUID, productsvc.CreateProductRequest) (*productsvc.ProductDTO, error) {
	return nil, nil
}

func (stubProductService) Update(context.Context, uuid.UUID, uuid.UUID, productsvc.UpdateProductRequest) (*productsvc.ProductDTO, error) {
	return nil, nil
}

func (stubProductService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func testDeps() Deps {
	return Deps{
		Config: &config.Config{
			App: config.AppConfig{Env: "dev", Port: "8080"},
			JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		},
		Logger:         logger.New(logger.Options{ServiceName: "test"}),
		DB:             stubPinger{},
		PubSub:         stubPinger{},
		SessionChecker: stubSessionChecker{},
		Products:       stubProductService{},
	}
}

func TestHealthLive(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRoleGuardBlocksWrongRole(t *testing.T) {
	deps := testDeps()
	router := NewRouter(deps)

	token, err := pkgAuth.MintAccessToken(deps.Config.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleBuyer,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/farmer/products/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
