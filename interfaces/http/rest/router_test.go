package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hazboun-backend/application/services"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/di"
	"hazboun-backend/pkg/auth"
	"hazboun-backend/pkg/errors"
	"hazboun-backend/tests/fixtures"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		DirectoryVersion uint64 `json:"directory_version"`
		Total            *int   `json:"total"`
	} `json:"meta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t         *testing.T
	mux       *chi.Mux
	container *di.Container
	cfg       *config.Config
}

func newServer(t *testing.T, secret string, load bool) *testServer {
	t.Helper()
	dir := t.TempDir()
	seed, err := services.EncodeDirectory(fixtures.Family())
	require.NoError(t, err)
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, seed, 0o600))

	cfg := &config.Config{
		Environment:        "test",
		CORSAllowedOrigins: []string{"*"},
		StoreDriver:        config.DriverMemory,
		SeedFile:           seedPath,
		MembersTable:       "family_members",
		ExportDir:          filepath.Join(dir, "exports"),
		LogLevel:           "error",
		JWTSecret:          secret,
		JWTIssuer:          "hazboun-directory",
		AdminRateLimit:     100,
		MaxImportBytes:     1 << 20,
		EnableMetrics:      true,
	}

	ctx := context.Background()
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	if load {
		require.NoError(t, container.Loader.Load(ctx))
	}

	mux, err := NewRouter(cfg, container.CommandBus, container.QueryBus, container.Directory, container.Metrics, container.Logger).Setup()
	require.NoError(t, err)
	return &testServer{t: t, mux: mux, container: container, cfg: cfg}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(roles ...string) string {
	s.t.Helper()
	gen, err := auth.NewJWTGenerator(auth.JWTConfig{
		SecretKey: s.cfg.JWTSecret,
		Issuer:    s.cfg.JWTIssuer,
		Audience:  []string{auth.Audience},
	}, time.Hour)
	require.NoError(s.t, err)
	token, err := gen.GenerateToken("editor", "editor@example.com", roles)
	require.NoError(s.t, err)
	return token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealthAndReadiness(t *testing.T) {
	t.Run("not ready before the first load", func(t *testing.T) {
		s := newServer(t, "", false)

		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", "").Code)
		assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/ready", "", "").Code)
	})

	t.Run("ready once loaded", func(t *testing.T) {
		s := newServer(t, "", true)

		rec := s.do(http.MethodGet, "/ready", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})
}

func TestListAndGetMembers(t *testing.T) {
	s := newServer(t, "", true)

	t.Run("list with country filter", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/members?country=Jordan", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Meta.Total)
		assert.Equal(t, 1, *env.Meta.Total)
		assert.Contains(t, string(env.Data), "Maryam Hazboun")
	})

	t.Run("member with relatives", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/members/3", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var detail struct {
			Member   entities.FamilyMember   `json:"member"`
			Parents  []entities.FamilyMember `json:"parents"`
			Children []entities.FamilyMember `json:"children"`
		}
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &detail))
		assert.Equal(t, "George Hazboun", detail.Member.Name)
		require.Len(t, detail.Parents, 1)
		assert.Equal(t, "1", detail.Parents[0].ID)
		require.Len(t, detail.Children, 1)
		assert.Equal(t, "4", detail.Children[0].ID)
	})

	t.Run("unknown member", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/members/999", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, string(errors.ErrorTypeNotFound), decode(t, rec).Error.Type)
	})
}

func TestMemberMutations(t *testing.T) {
	s := newServer(t, "", true)

	t.Run("add accepts numbers as text", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/members",
			`{"name":"Dina Hazboun","birthYear":1990,"location":"Toronto","country":"Canada","branch":"Canadian Branch","generation":4,"parents":["4"]}`, "")

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var m entities.FamilyMember
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &m))
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, 4, m.Generation)
		require.NotNil(t, m.BirthYear)
		assert.Equal(t, 1990, *m.BirthYear)
		assert.Equal(t, []string{"4"}, m.Parents)
	})

	t.Run("add rejects missing fields", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/members", `{"name":"Nobody"}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, string(errors.ErrorTypeValidation), env.Error.Type)
		assert.Equal(t, errors.MessageRequired, env.Error.Message)
	})

	t.Run("add rejects malformed json", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/members", `{"name":`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patch changes only sent fields", func(t *testing.T) {
		rec := s.do(http.MethodPatch, "/api/v1/members/2", `{"location":"Zarqa"}`, "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var m entities.FamilyMember
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &m))
		assert.Equal(t, "Zarqa", m.Location)
		assert.Equal(t, "Maryam Hazboun", m.Name)
	})

	t.Run("delete then get", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/members/5", "", "").Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/members/5", "", "").Code)
	})
}

func TestAdminAuthentication(t *testing.T) {
	s := newServer(t, "route-secret", true)
	body := `{"name":"Sami","location":"Lima","country":"Peru","branch":"South America Branch","generation":"3"}`

	t.Run("reads stay public", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/members", "", "").Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/members", body, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, string(errors.ErrorTypeUnauthorized), decode(t, rec).Error.Type)
	})

	t.Run("token without admin role", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/members", body, s.token("viewer"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/v1/members/1", "", "not-a-jwt")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admin token", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/members", body, s.token(auth.RoleAdmin))

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func TestExportAndImport(t *testing.T) {
	s := newServer(t, "", true)

	t.Run("export is a download of the whole directory", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/directory/export", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="hazboun-family-data.json"`, rec.Header().Get("Content-Disposition"))
		members, err := services.DecodeDirectory(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Len(t, members, 5)
	})

	t.Run("archive writes the export file", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/directory/export/archive", "", "")

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, string(decode(t, rec).Data), "hazboun-family-data.json")
	})

	t.Run("import rejects a non array", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/directory/import", `{"members":[]}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, string(errors.ErrorTypeImportFormat), env.Error.Type)
		assert.Equal(t, errors.MessageImportFormat, env.Error.Message)
	})

	t.Run("import rejects unreadable json", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/directory/import", `[{"id":`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, string(errors.ErrorTypeImportFormat), env.Error.Type)
		assert.Equal(t, errors.MessageImportRead, env.Error.Message)
	})

	t.Run("import replaces the directory", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/directory/import",
			`[{"id":"x1","name":"Only One","location":"Haifa","country":"Palestine","branch":"Palestine Branch","generation":1}]`, "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), errors.MessageImportSuccess)

		env := decode(t, s.do(http.MethodGet, "/api/v1/members", "", ""))
		require.NotNil(t, env.Meta.Total)
		assert.Equal(t, 1, *env.Meta.Total)
	})
}

func TestImportMultipart(t *testing.T) {
	s := newServer(t, "", true)
	var buf bytes.Buffer
	boundary := "hazboun-boundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString(`Content-Disposition: form-data; name="file"; filename="family.json"` + "\r\n")
	buf.WriteString("Content-Type: application/json\r\n\r\n")
	buf.WriteString(`[{"id":"m1","name":"From Form","location":"Lima","country":"Peru","branch":"South America Branch","generation":2}]`)
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/directory/import", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"imported":1`)
}

func TestViews(t *testing.T) {
	s := newServer(t, "", true)

	t.Run("tree collapsed", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/tree?expanded=none", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `"expanded":true`)
	})

	t.Run("tree default expands the first generations", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/tree", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"expanded":true`)
	})

	t.Run("tree rejects bad generations", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/tree?expanded=one", "", "").Code)
	})

	t.Run("resolve a map alias", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/locations/resolve?name=USA", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"country":"United States"`)
		assert.Contains(t, rec.Body.String(), `"members":2`)
	})

	t.Run("country members by canonical name", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/locations/United%20States/members", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "George Hazboun")
		assert.Contains(t, rec.Body.String(), "Nadia Hazboun")
	})

	for _, path := range []string{"/api/v1/locations", "/api/v1/branches", "/api/v1/history", "/api/v1/overview", "/api/v1/form-options?generation=2", "/api/v1/directory/status"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(http.MethodGet, path, "", "")

			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.True(t, decode(t, rec).Success)
		})
	}

	t.Run("form options rejects text generation", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/form-options?generation=two", "", "").Code)
	})
}

func TestMetricsAndUnknownRoutes(t *testing.T) {
	s := newServer(t, "", true)
	s.do(http.MethodGet, "/api/v1/members/1", "", "")

	rec := s.do(http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hazboun_http_requests_total{method="GET",route="/api/v1/members/{memberID}",status="200"} 1`)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v2/nothing", "", "").Code)
}
