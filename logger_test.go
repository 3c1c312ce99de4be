package lineart

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	SetLogger(custom)

	if Logger() != custom {
		t.Fatal("Logger() did not return the custom logger set via SetLogger")
	}

	ex, err := NewExtractor(NewCube(1), WithBackend(BackendCPU))
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	defer ex.Close()
	if _, err := ex.Extract(context.Background(), NewView(V3(10, 10, 0))); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for _, want := range []string{"adjacency", "extractor ready", "classified", "linked", "compacted"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) should install a silent logger, not nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
	if l != silent {
		t.Error("SetLogger(nil) should restore the initial logger")
	}
}

func TestSetLoggerPropagatesToBackend(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() {
		SetLogger(orig)
		UnregisterBackend()
	})

	mock := &mockBackend{name: "logger-test"}
	if err := RegisterBackend(mock); err != nil {
		t.Fatalf("RegisterBackend() = %v", err)
	}

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)

	if mock.loggerValue() != custom {
		t.Error("SetLogger did not propagate to the registered backend")
	}
}

func TestRegisterBackendPropagatesCurrentLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() {
		SetLogger(orig)
		UnregisterBackend()
	})

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)

	mock := &mockBackend{name: "propagation-test"}
	if err := RegisterBackend(mock); err != nil {
		t.Fatalf("RegisterBackend() = %v", err)
	}
	if mock.loggerValue() != custom {
		t.Error("RegisterBackend did not propagate current logger to backend")
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	const goroutines = 100

	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			if Logger() == nil {
				t.Error("Logger() returned nil during concurrent access")
			}
		}()
	}

	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := silent
	b.ResetTimer()
	for range b.N {
		l.Debug("lineart: classified", "corners", 36, "valid", 6)
	}
}
