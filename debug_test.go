package globe

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// captureDefaultLog routes slog.Default() into a buffer for the test.
func captureDefaultLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewContainer("parent")
	s.Attach(parent)

	child := NewContainer("child")
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed node, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()
	parent.AddChild(child)
}

func TestDebugMode_DisposedParentPanics(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewContainer("parent")
	parent.Dispose()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on AddChild to disposed parent, got none")
		}
	}()
	parent.AddChild(NewContainer("child"))
}

func TestReleaseMode_DisposedNodeNoPanic(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(false)

	child := NewContainer("child")
	child.Dispose()
	s.Attach(child)
	if !s.Contains(child) {
		t.Error("release mode should still attach the node")
	}
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	buf := captureDefaultLog(t)
	s := NewScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	current := s.Root()
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewContainer(fmt.Sprintf("depth_%d", i))
		current.AddChild(child)
		current = child
	}

	if !strings.Contains(buf.String(), "tree depth exceeds threshold") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	buf := captureDefaultLog(t)
	s := NewScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewContainer("many_children")
	s.Attach(parent)
	for i := 0; i < debugMaxChildCount+1; i++ {
		parent.AddChild(NewContainer(fmt.Sprintf("c_%d", i)))
	}

	out := buf.String()
	if !strings.Contains(out, "child count exceeds threshold") || !strings.Contains(out, "many_children") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestDebugLogFrameStats(t *testing.T) {
	var buf bytes.Buffer
	s := NewScene()
	s.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	stats := debugStats{nodeCount: 3, triangleCount: 120, drawCallCount: 2}
	s.debugLog(stats)
	if buf.Len() != 0 {
		t.Errorf("debugLog should be silent outside debug mode, got %q", buf.String())
	}

	s.SetDebugMode(true)
	defer s.SetDebugMode(false)
	s.debugLog(stats)
	out := buf.String()
	for _, want := range []string{"nodes=3", "triangles=120", "draw_calls=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
