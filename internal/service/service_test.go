package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gana36/billbeam/internal/auth"
	"github.com/gana36/billbeam/internal/extract"
	"github.com/gana36/billbeam/internal/middleware"
	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/session"
	"github.com/gana36/billbeam/internal/storage/sqlite"
	"github.com/gana36/billbeam/pkg/api"
	"github.com/gana36/billbeam/pkg/api/apiconnect"
)

// fakeExtractor returns a fixed receipt or error.
type fakeExtractor struct {
	mu      sync.Mutex
	receipt *models.Receipt
	err     error
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, _ extract.Image) (*models.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt.Clone(), nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeExtractor) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// dinnerReceipt is a 30.00 meal with 3.00 tax.
func dinnerReceipt() *models.Receipt {
	return &models.Receipt{
		Items: []models.ReceiptItem{
			{ID: "burger", Description: "Burger", Price: 20, AssignedTo: []string{}},
			{ID: "fries", Description: "Fries", Price: 10, AssignedTo: []string{}},
		},
		Tax: 3,
	}
}

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	sessions  apiconnect.SessionServiceClient
	receipts  apiconnect.ReceiptServiceClient
	groups    apiconnect.GroupServiceClient
	auth      apiconnect.AuthServiceClient
	store     *sqlite.SQLiteStore
	extractor *fakeExtractor
	registry  *prometheus.Registry
}

// setupTestServer wires every service over a temp SQLite database behind the
// real auth interceptor. A nil extractor leaves capture unconfigured.
func setupTestServer(t *testing.T, extractor *fakeExtractor) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	manager := session.NewManager(0)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry, func() float64 { return float64(manager.Len()) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := []SessionOption{WithMetrics(metrics)}
	if extractor != nil {
		opts = append(opts, WithExtractor(extractor))
	}

	interceptors := connect.WithInterceptors(
		middleware.OptionalAuth(jwtManager),
		middleware.LoggingInterceptor(),
		metrics.Interceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewSessionServiceHandler(NewSessionService(manager, store, opts...), interceptors))
	mux.Handle(apiconnect.NewReceiptServiceHandler(NewReceiptService(store), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store), nil, jwtManager, store, logger),
		interceptors,
	))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		manager.Close()
		store.Close()
	})

	return &testEnv{
		sessions:  apiconnect.NewSessionServiceClient(server.Client(), server.URL),
		receipts:  apiconnect.NewReceiptServiceClient(server.Client(), server.URL),
		groups:    apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		auth:      apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		store:     store,
		extractor: extractor,
		registry:  registry,
	}
}

// signUp registers a user and returns their bearer token.
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Password: "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return resp.Msg.Token
}

// withToken builds a request carrying token; an empty token sends it anonymously.
func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T", err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
