//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "kingston_guide/internal/adapters/http_server"
	redisad "kingston_guide/internal/adapters/redis"
	"kingston_guide/internal/app"
	"kingston_guide/internal/domain"
	mysqlrepo "kingston_guide/internal/storage/mysql"
)

var testSecret = []byte("e2e-secret")

// ---------- helpers ----------

func migrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "../../migrations"
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=guide",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "guide")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// stubGoogle serves canned details for one place id.
type stubGoogle struct {
	place *domain.GooglePlace
}

func (s *stubGoogle) Configured() bool { return true }

func (s *stubGoogle) Details(ctx context.Context, placeID string) (*domain.GooglePlace, error) {
	if s.place != nil && s.place.PlaceID == placeID {
		return s.place, nil
	}
	return nil, &domain.PlacesError{Status: domain.StatusNotFound}
}

func (s *stubGoogle) TextSearch(ctx context.Context, query string, bias *domain.Coordinates) ([]domain.GooglePlaceSummary, error) {
	return nil, nil
}

func moderatorToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, server.Claims{
		Role: "moderator",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mod-e2e",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SubmissionToPlace(t *testing.T) {
	db := startMySQL(t)
	mr := miniredis.RunT(t)

	repo := mysqlrepo.New(db)
	cache := redisad.New(mr.Addr(), "", 0)

	google := &stubGoogle{place: &domain.GooglePlace{
		PlaceID:          "ChIJd8BlQ2BZwokRAFUEcm_qrcA",
		Name:             "Joe's Pizza & Grill",
		FormattedAddress: "123 Princess St, Kingston, ON K7L 1A0, Canada",
		Geometry:         &domain.GoogleGeometry{Location: domain.Coordinates{Lat: 44.2312, Lng: -76.486}},
		Types:            []string{"restaurant", "food"},
		BusinessStatus:   "OPERATIONAL",
	}}

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Q:       app.NewQueryService(repo, repo, cache, time.Minute),
		Subs:    app.NewSubmissionService(repo, repo, repo, cache, time.Minute),
		Imports: app.NewImportService(google, repo),
	}, testSecret)

	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// 1) Visitor submits a place.
	body := map[string]any{
		"type": "place",
		"data": map[string]any{
			"name":     "The Toucan",
			"category": "bar",
			"address":  map[string]any{"street": "76 Princess St", "city": "Kingston", "province": "ON"},
			"location": map[string]any{"lat": 44.2305, "lng": -76.4815},
		},
		"submittedBy": map[string]any{"name": "Pat", "email": "pat@example.com"},
	}
	buf, _ := json.Marshal(body)
	res, err := http.Post(ts.URL+"/v1/submissions", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST submission: %v", err)
	}
	var sub domain.Submission
	if err := json.NewDecoder(res.Body).Decode(&sub); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusCreated || sub.Status != domain.StatusPending {
		t.Fatalf("submission: %d %+v", res.StatusCode, sub)
	}

	// 2) Moderator approves it.
	decision, _ := json.Marshal(map[string]any{"submissionId": sub.ID, "action": "approve"})
	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/v1/submissions", bytes.NewReader(decision))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+moderatorToken(t))
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH submission: %v", err)
	}
	var reviewed domain.Submission
	_ = json.NewDecoder(res.Body).Decode(&reviewed)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || reviewed.Status != domain.StatusApproved {
		t.Fatalf("approve: %d %+v", res.StatusCode, reviewed)
	}

	// 3) The approved place is live.
	slug := reviewed.Payload.Place.Slug
	res, err = http.Get(ts.URL + "/v1/places/" + slug)
	if err != nil {
		t.Fatalf("GET place: %v", err)
	}
	var place domain.Place
	if err := json.NewDecoder(res.Body).Decode(&place); err != nil {
		t.Fatalf("decode place: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK || place.Name != "The Toucan" || place.Verified {
		t.Fatalf("live place: %d %+v", res.StatusCode, place)
	}

	// 4) Import a place twice; the repeat must answer 200 with the original.
	importBody, _ := json.Marshal(map[string]any{"placeId": "ChIJd8BlQ2BZwokRAFUEcm_qrcA"})
	for i, wantStatus := range []int{http.StatusCreated, http.StatusOK} {
		req, _ = http.NewRequest(http.MethodPost, ts.URL+"/v1/import/google-places", bytes.NewReader(importBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+moderatorToken(t))
		res, err = http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST import %d: %v", i, err)
		}
		var out struct {
			Place    domain.Place `json:"place"`
			Imported bool         `json:"imported"`
		}
		_ = json.NewDecoder(res.Body).Decode(&out)
		res.Body.Close()
		if res.StatusCode != wantStatus {
			t.Fatalf("import %d: status %d, want %d", i, res.StatusCode, wantStatus)
		}
		if out.Imported != (i == 0) {
			t.Fatalf("import %d: imported=%v", i, out.Imported)
		}
	}

	// 5) Stats reflect the single reviewed submission.
	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/v1/submissions/stats", nil)
	req.Header.Set("Authorization", "Bearer "+moderatorToken(t))
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	var stats domain.SubmissionStats
	_ = json.NewDecoder(res.Body).Decode(&stats)
	res.Body.Close()
	if stats.Total != 1 || stats.Approved != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}
