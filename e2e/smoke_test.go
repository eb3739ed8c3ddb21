//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const repoRootRel = ".."   // relative to ./e2e
const mainPkgRel = "./cmd" // main.go lives in cmd/

const sampleOEM = `<?xml version="1.0" encoding="UTF-8"?>
<ndm>
  <oem id="CCSDS_OEM_VERS" version="2.0">
    <body>
      <segment>
        <data>
          <stateVector>
            <EPOCH>2025-058T11:53:00.000Z</EPOCH>
            <X units="km">2674.73145218746</X>
            <Y units="km">3316.2289606109498</Y>
            <Z units="km">-5297.4214788776399</Z>
            <X_DOT units="km/s">-5.3196592851300499</X_DOT>
            <Y_DOT units="km/s">5.4534040548973604</Y_DOT>
            <Z_DOT units="km/s">0.73246350063873</Z_DOT>
          </stateVector>
          <stateVector>
            <EPOCH>2025-058T11:57:00.000Z</EPOCH>
            <X units="km">1316.58492360587</X>
            <Y units="km">4489.0743177531904</Y>
            <Z units="km">-4931.3291171098199</Z>
            <X_DOT units="km/s">-5.9294790985872803</X_DOT>
            <Y_DOT units="km/s">4.2606771881374801</Y_DOT>
            <Z_DOT units="km/s">2.2999334681557699</Z_DOT>
          </stateVector>
        </data>
      </segment>
    </body>
  </oem>
</ndm>`

func TestSmoke_Endpoints(t *testing.T) {
	repoRoot := repoRootPath(t)

	redisAddr := startRedis(t)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sampleOEM))
	}))
	t.Cleanup(feed.Close)

	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name": "South Pacific Ocean"}`))
	}))
	t.Cleanup(geocoder.Close)

	bin := buildBinary(t, repoRoot)
	addr := pickFreeAddr(t)

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		"APP_ENV=dev",
		"LOG_LEVEL=info",
		"HTTP_ADDR="+addr,
		"FEED_URL="+feed.URL,
		"REDIS_ADDR="+redisAddr,
		"GEOCODER_URL="+geocoder.URL,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + addr

	waitForOK(t, client, base+"/healthz", 5*time.Second)

	t.Run("healthz", func(t *testing.T) {
		var body map[string]string
		getJSON(t, client, base+"/healthz", http.StatusOK, &body)
		if body["status"] != "ok" {
			t.Fatalf("body.status=%q want=%q", body["status"], "ok")
		}
	})

	t.Run("epochs pagination", func(t *testing.T) {
		var records []map[string]any
		getJSON(t, client, base+"/epochs?limit=1&offset=1", http.StatusOK, &records)
		if len(records) != 1 {
			t.Fatalf("len=%d want=1", len(records))
		}
		if records[0]["EPOCH"] != "2025-058T11:57:00.000Z" {
			t.Fatalf("EPOCH=%v want the second record", records[0]["EPOCH"])
		}
	})

	t.Run("epoch speed", func(t *testing.T) {
		var body map[string]float64
		getJSON(t, client, base+"/epochs/2025-058T11:53:00.000Z/speed", http.StatusOK, &body)
		speed := body["instantaneous_speed"]
		if speed < 7.654 || speed > 7.656 {
			t.Fatalf("instantaneous_speed=%v want ~7.6551", speed)
		}
	})

	t.Run("epoch location", func(t *testing.T) {
		var body map[string]any
		getJSON(t, client, base+"/epochs/2025-058T11:53:00.000Z/location", http.StatusOK, &body)
		if body["geoposition"] != "South Pacific Ocean" {
			t.Fatalf("geoposition=%v want stub geocoder answer", body["geoposition"])
		}
	})

	t.Run("now", func(t *testing.T) {
		var body map[string]any
		getJSON(t, client, base+"/now", http.StatusOK, &body)
		if _, ok := body["instantaneous_speed"]; !ok {
			t.Fatalf("body=%v missing instantaneous_speed", body)
		}
	})

	t.Run("unknown epoch is 404", func(t *testing.T) {
		resp, err := client.Get(base + "/epochs/1999-001T00:00:00.000Z")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusNotFound)
		}
	})

	stopServer(t, cmd)
}

func getJSON(t *testing.T, client *http.Client, url string, wantStatus int, v any) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status=%d want=%d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s: decode json: %v", url, err)
	}
}

func startRedis(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	port := nat.Port("6379/tcp")

	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{string(port)},
		WaitingFor:   wait.ForListeningPort(port).WithStartupTimeout(30 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("redis container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("redis container port: %v", err)
	}

	return net.JoinHostPort(host, mapped.Port())
}

func repoRootPath(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	repo := filepath.Clean(filepath.Join(wd, repoRootRel))
	if _, err := os.Stat(filepath.Join(repo, "go.mod")); err != nil {
		t.Fatalf("repo root %q does not contain go.mod: %v", repo, err)
	}

	return repo
}

func buildBinary(t *testing.T, repoRoot string) string {
	t.Helper()

	tmp := t.TempDir()
	out := filepath.Join(tmp, "iss-tracker")

	build := exec.Command("go", "build", "-o", out, mainPkgRel)
	build.Dir = repoRoot
	build.Env = os.Environ()

	b, err := build.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(b))
	}

	return out
}

func pickFreeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen :0: %v", err)
	}
	defer ln.Close()

	return ln.Addr().String()
}

func waitForOK(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server not healthy after %s: %s", timeout, url)
}

func stopServer(t *testing.T, cmd *exec.Cmd) {
	t.Helper()

	_ = cmd.Process.Signal(syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		t.Fatalf("server did not exit in time")
	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				t.Fatalf("server exited non-zero: %v", err)
			}
			t.Fatalf("server wait error: %v", err)
		}
	}
}
