package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/injectkit/di"
	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type clock struct{ _ byte }

type greeter struct{ clock *clock }

var (
	Clock   = di.NewType("Clock", func([]any) any { return &clock{} })
	Greeter = di.NewType("Greeter",
		func(args []any) any { return &greeter{clock: di.Arg[*clock](args, 0)} },
		di.Inject(0, Clock),
	)
)

func newInjector() *di.Injector {
	inj := di.New(di.WithName("app"), di.WithLogger(logger.NewNop()))
	inj.Map(Clock).ToSingleton()
	inj.Map(Greeter)
	inj.MapType("greeter").ToClass(Greeter)
	return inj
}

func serve(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rr.Body.String())
	}
}

func TestRegistries(t *testing.T) {
	root := newInjector()
	child := root.CreateChild()
	child.Map(Greeter, "formal")

	rr := serve(t, NewRouter("svc", child), "/debug/di/registries")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Data []di.Snapshot `json:"data"`
	}
	decode(t, rr, &body)
	if len(body.Data) != 2 {
		t.Fatalf("expected 2 registries, got %d", len(body.Data))
	}
	if body.Data[0].ID != root.ID() || body.Data[1].Parent != root.ID() {
		t.Errorf("expected root first, got %+v", body.Data)
	}

	rootMappings := body.Data[0].ClassMappings
	if len(rootMappings) < 2 {
		t.Fatalf("expected root mappings, got %+v", rootMappings)
	}
	var clockKind string
	for _, m := range rootMappings {
		if m.Type == "Clock" {
			clockKind = m.Kind
		}
	}
	if clockKind != di.ClassSingleton.String() {
		t.Errorf("expected Clock as %s, got %q", di.ClassSingleton, clockKind)
	}
	if len(body.Data[0].TypeMappings) != 1 || body.Data[0].TypeMappings[0].ID != "greeter" {
		t.Errorf("unexpected type mappings %+v", body.Data[0].TypeMappings)
	}
	formal := false
	for _, m := range body.Data[1].ClassMappings {
		if m.Type == "Greeter" && m.ID == "formal" {
			formal = true
		}
	}
	if !formal {
		t.Errorf("expected formal greeter in child, got %+v", body.Data[1].ClassMappings)
	}
}

func TestRegistryByID(t *testing.T) {
	root := newInjector()
	child := root.CreateChild()
	router := NewRouter("svc", child)

	rr := serve(t, router, "/debug/di/registries/"+root.ID())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Data di.Snapshot `json:"data"`
	}
	decode(t, rr, &body)
	if body.Data.Name != "app" {
		t.Errorf("expected root snapshot, got %+v", body.Data)
	}

	rr = serve(t, router, "/debug/di/registries/unknown")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var errBody errors.ErrorResponse
	decode(t, rr, &errBody)
	if errBody.Error.Code != errors.ErrCodeMappingNotFound {
		t.Errorf("unexpected error body %+v", errBody)
	}
}

func TestLevels(t *testing.T) {
	t.Run("ordered", func(t *testing.T) {
		rr := serve(t, NewRouter("svc", newInjector()), "/debug/di/levels")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var body struct {
			Data struct {
				Levels [][]string `json:"levels"`
				Count  int        `json:"count"`
			} `json:"data"`
		}
		decode(t, rr, &body)
		if body.Data.Count != 2 {
			t.Fatalf("expected 2 levels, got %+v", body.Data)
		}
		if body.Data.Levels[0][0] != "Clock" || body.Data.Levels[1][0] != "Greeter" {
			t.Errorf("unexpected levels %v", body.Data.Levels)
		}
	})

	t.Run("missing mapping", func(t *testing.T) {
		inj := di.New(di.WithLogger(logger.NewNop()))
		inj.Map(Greeter)

		rr := serve(t, NewRouter("svc", inj), "/debug/di/levels")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
		var errBody errors.ErrorResponse
		decode(t, rr, &errBody)
		if errBody.Error.Code != errors.ErrCodeMappingNotFound {
			t.Errorf("unexpected error body %+v", errBody)
		}
	})

	t.Run("disposed", func(t *testing.T) {
		inj := newInjector()
		inj.Dispose()
		rr := serve(t, NewRouter("svc", inj), "/debug/di/levels")
		if rr.Code != http.StatusGone {
			t.Fatalf("expected 410, got %d", rr.Code)
		}
	})
}

type staticChecker observability.Health

func (s staticChecker) CheckHealth(context.Context) observability.Health {
	return observability.Health(s)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		dispose    bool
		extra      []observability.HealthChecker
		wantCode   int
		wantStatus observability.HealthStatus
	}{
		{"up", false, nil, http.StatusOK, observability.HealthStatusUp},
		{"degraded", false, []observability.HealthChecker{
			staticChecker{Name: "cache", Status: observability.HealthStatusDegraded},
		}, http.StatusOK, observability.HealthStatusDegraded},
		{"disposed", true, nil, http.StatusServiceUnavailable, observability.HealthStatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inj := newInjector()
			if tt.dispose {
				inj.Dispose()
			}
			rr := serve(t, NewRouter("svc", inj, tt.extra...), "/debug/di/health")
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body observability.ServiceHealth
			decode(t, rr, &body)
			if body.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, body.Status)
			}
			if body.Service != "svc" || len(body.Components) != 1+len(tt.extra) {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	rr := serve(t, NewRouter("svc", newInjector()), "/debug/di/info")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	decode(t, rr, &body)
	if body["service"] != "svc" {
		t.Errorf("expected service name, got %v", body["service"])
	}
	if _, ok := body["uptime"]; !ok {
		t.Error("expected uptime field")
	}
}

func TestRespondWithErrorPlainError(t *testing.T) {
	router := gin.New()
	router.GET("/fail", func(c *gin.Context) {
		RespondWithError(c, context.DeadlineExceeded)
	})
	rr := serve(t, router, "/fail")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var errBody errors.ErrorResponse
	decode(t, rr, &errBody)
	if errBody.Error.Code != errors.ErrCodeInternal {
		t.Errorf("unexpected error body %+v", errBody)
	}
}
