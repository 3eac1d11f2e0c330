package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const usbScenario = `volumes:
  - {id: dl, type: downloads, label: Downloads}
steps:
  - mount: {id: p1, type: removable, label: P1, device_path: D1, drive_label: USB}
  - mount: {id: p2, type: removable, label: P2, device_path: D1, drive_label: USB}
  - unmount: nope
`

func writeScenario(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplay_Quiet(t *testing.T) {
	path := writeScenario(t, "usb.yaml", usbScenario)
	conf := filepath.Join(t.TempDir(), "navlist.conf")

	out, err := execute(t, "--config", conf, "replay", "--quiet", path)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	want := `[my_files]
  My files
    Downloads
[removable]
  USB
    P1
    P2
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("replay output mismatch (-want +got):\n%s", diff)
	}
}

func TestReplay_StepsAndEvents(t *testing.T) {
	path := writeScenario(t, "usb.yaml", usbScenario)
	conf := filepath.Join(t.TempDir(), "navlist.conf")

	out, err := execute(t, "--config", conf, "replay", "--events", path)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	for _, want := range []string{
		"== initial\n",
		"== step 1: mount\n",
		"== step 3: unmount\n",
		"error: ",
		"permuted source=volumes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReplay_Fail(t *testing.T) {
	path := writeScenario(t, "usb.yaml", usbScenario)
	conf := filepath.Join(t.TempDir(), "navlist.conf")

	if _, err := execute(t, "--config", conf, "replay", "--quiet", path); err != nil {
		t.Fatalf("replay without --fail returned %v", err)
	}
	if _, err := execute(t, "--config", conf, "replay", "--quiet", "--fail", path); err == nil {
		t.Error("replay --fail returned nil with a failing step")
	}
}

func TestReplay_Compact(t *testing.T) {
	path := writeScenario(t, "dl.yaml", "volumes:\n  - {id: dl, type: downloads, label: Downloads}\n")
	conf := filepath.Join(t.TempDir(), "navlist.conf")

	out, err := execute(t, "--config", conf, "replay", "--quiet", "--compact", path)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if diff := cmp.Diff("[my_files]\n  My files (Downloads)\n", out); diff != "" {
		t.Errorf("compact output mismatch (-want +got):\n%s", diff)
	}
}

func TestReplay_Errors(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "navlist.conf")
	bad := writeScenario(t, "bad.yaml", "steps:\n  - {}\n")

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"replay"}},
		{"missing file", []string{"replay", filepath.Join(t.TempDir(), "missing.yaml")}},
		{"invalid step", []string{"replay", bad}},
		{"watch with two files", []string{"replay", "--watch", bad, bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", conf}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExampleCmd(t *testing.T) {
	out, err := execute(t, "example")
	if err != nil {
		t.Fatalf("example failed: %v", err)
	}
	path := writeScenario(t, "example.yaml", out)
	conf := filepath.Join(t.TempDir(), "navlist.conf")
	if _, err := execute(t, "--config", conf, "replay", "--quiet", "--fail", path); err != nil {
		t.Errorf("example scenario does not replay cleanly: %v", err)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "navlist ") {
		t.Errorf("unexpected version output %q", out)
	}
}
