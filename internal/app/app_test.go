package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dokzlo13/displayd/internal/command"
	"github.com/dokzlo13/displayd/internal/command/commandtest"
	"github.com/dokzlo13/displayd/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(port int) *config.Config {
	cfg := config.Default()
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = port
	cfg.ShutdownTimeout = config.Duration(time.Second)
	return cfg
}

func TestNew_InvalidCommand(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"ddc command", func(c *config.Config) { c.DDC.Command = "'unterminated" }},
		{"on script", func(c *config.Config) { c.Power.OnScript = "" }},
		{"off script", func(c *config.Config) { c.Power.OffScript = "\"open" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(0)
			tt.mutate(cfg)
			if _, err := New(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestServices_Wiring(t *testing.T) {
	runner := commandtest.New(func(argv []string) command.Result {
		return commandtest.OK("VCP code 0xd6 (Power mode): DPM: On, DPMS: Off")
	})
	cfg := testConfig(0)

	s, err := newServices(cfg, runner)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.HTTP.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /status = %d: %s", rec.Code, rec.Body.String())
	}

	calls := runner.Joined()
	want := "sudo ddcutil getvcp d6 --bus 20"
	if len(calls) != 1 || calls[0] != want {
		t.Errorf("calls = %v, want [%s]", calls, want)
	}
}

func TestApp_Lifecycle(t *testing.T) {
	port := freePort(t)
	a, err := New(testConfig(port))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("GET /health = %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := a.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	a.Wait()
}

func TestApp_ListenFailureIsFatal(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	a, err := New(testConfig(l.Addr().(*net.TCPAddr).Port))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		a.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not shut down after listener failure")
	}

	if err := a.Stop(); err == nil {
		t.Error("expected Stop to report the listener error")
	}
}
