package benchmark

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/catalog"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
	"github.com/doodlesbykumbi/dbperm/pkg/server"
	"github.com/doodlesbykumbi/dbperm/pkg/server/endpoints"
	"github.com/doodlesbykumbi/dbperm/pkg/server/middleware"
)

const secret = "benchmark-secret"

func newService(b *testing.B) *authz.Service {
	b.Helper()
	ctx := context.Background()
	svc := authz.NewService(catalog.Sample())
	if err := svc.CreateRole(ctx, "Editor", permission.LevelRead); err != nil {
		b.Fatal(err)
	}
	if _, err := svc.SetOverride(ctx, "Editor", "db1_users", permission.LevelWrite); err != nil {
		b.Fatal(err)
	}
	return svc
}

func BenchmarkResolve(b *testing.B) {
	svc := newService(b)
	ctx := context.Background()

	b.Run("inherited from table", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_, _ = svc.Resolve(ctx, "Editor", "db1_users_email")
		}
	})

	b.Run("role default", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_, _ = svc.Resolve(ctx, "Editor", "db2_products_price")
		}
	})

	b.Run("full matrix", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_, _ = svc.Matrix(ctx, "Editor")
		}
	})
}

func BenchmarkResolveHandler(b *testing.B) {
	s := server.NewServer(newService(b), nil, "127.0.0.1", "0",
		server.WithAuthSecret(secret),
		server.WithAccessLog(io.Discard),
	)
	endpoints.RegisterAll(s)
	token, err := middleware.IssueToken(secret, "bench", time.Hour)
	if err != nil {
		b.Fatal(err)
	}
	h := s.Handler()

	b.Run("GET /roles/{role}/resolve/{node}", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r := httptest.NewRequest(http.MethodGet, "/roles/Editor/resolve/db1_users_email", nil)
			r.Header.Set("Authorization", "Bearer "+token)
			h.ServeHTTP(httptest.NewRecorder(), r)
		}
	})

	b.Run("parallel GET /roles/{role}/check/{node}", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				r := httptest.NewRequest(http.MethodGet, "/roles/Editor/check/db1_users_id?privilege=write", nil)
				r.Header.Set("Authorization", "Bearer "+token)
				h.ServeHTTP(httptest.NewRecorder(), r)
			}
		})
	})
}
