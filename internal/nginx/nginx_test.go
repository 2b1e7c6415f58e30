package nginx

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ovanta/sitectl/internal/executor"
)

func TestCheckerSuccess(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("nginx: configuration file /etc/nginx/nginx.conf test is successful"), nil
		},
	}

	c := NewChecker(mock, 5*time.Second)
	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if len(mock.Calls) != 1 || mock.Calls[0].Name != "nginx" || mock.Calls[0].Args[0] != "-t" {
		t.Errorf("expected nginx -t invocation, got %+v", mock.Calls)
	}
}

func TestCheckerFailurePreservesDiagnostics(t *testing.T) {
	diag := `nginx: [emerg] unexpected "}" in /etc/nginx/sites-enabled/example.com:12
nginx: configuration file /etc/nginx/nginx.conf test failed`
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte(diag + "\n"), fmt.Errorf("exit status 1")
		},
	}

	c := NewChecker(mock, 5*time.Second)
	err := c.Check(context.Background())
	if err == nil {
		t.Fatal("expected checker failure")
	}
	if err.Error() != diag {
		t.Errorf("diagnostic text must be preserved verbatim:\ngot  %q\nwant %q", err.Error(), diag)
	}
}

func TestReloaderFallback(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			if name == "systemctl" {
				return []byte("System has not been booted with systemd"), fmt.Errorf("exit status 1")
			}
			return nil, nil
		},
	}

	r := NewReloader(mock, 5*time.Second)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload should fall back to nginx -s reload: %v", err)
	}

	if len(mock.Calls) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(mock.Calls))
	}
	if mock.Calls[1].Name != "nginx" || strings.Join(mock.Calls[1].Args, " ") != "-s reload" {
		t.Errorf("expected nginx -s reload fallback, got %+v", mock.Calls[1])
	}
}

func TestReloaderBothPathsFail(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			if name == "systemctl" {
				return []byte("Job for nginx.service failed"), fmt.Errorf("exit status 1")
			}
			return []byte("nginx: [error] open() \"/run/nginx.pid\" failed"), fmt.Errorf("exit status 1")
		},
	}

	r := NewReloader(mock, 5*time.Second)
	err := r.Reload(context.Background())
	if err == nil {
		t.Fatal("expected reload failure")
	}
	if !strings.Contains(err.Error(), "Job for nginx.service failed") {
		t.Errorf("reload error should carry the systemctl output, got %v", err)
	}
	if !strings.Contains(err.Error(), "/run/nginx.pid") {
		t.Errorf("reload error should carry the fallback output, got %v", err)
	}
}
