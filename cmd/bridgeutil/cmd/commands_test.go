package cmd

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/plexsphere/bridgeutil/internal/hal"
	"github.com/plexsphere/bridgeutil/internal/logging"
)

func TestRemoveIfaceCommand(t *testing.T) {
	tests := []struct {
		list, iface, want string
	}{
		{"wl0 wl11 moca0 ath0 eth3", "moca0", "wl0 wl11 ath0 eth3"},
		{"wl0 wl11", "wl1", "wl0 wl11"},
		{"eth0", "eth0", ""},
	}
	for _, tt := range tests {
		output, err := execute(t, "remove-iface", tt.list, tt.iface)
		if err != nil {
			t.Fatalf("remove-iface: %v", err)
		}
		if got := strings.TrimSuffix(output, "\n"); got != tt.want {
			t.Errorf("remove-iface %q %q = %q, want %q", tt.list, tt.iface, got, tt.want)
		}
	}
}

func TestCheckExistsCommand(t *testing.T) {
	fb := newFakeBackend()
	fb.links["eth1"] = true
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	output, err := execute(t, "--config", path, "check", "exists", "eth1")
	if err != nil {
		t.Fatalf("check exists: %v", err)
	}
	if strings.TrimSpace(output) != "0" {
		t.Errorf("check exists eth1 = %q, want 0", output)
	}

	output, err = execute(t, "--config", path, "check", "exists", "eth9")
	if err != nil {
		t.Fatalf("check exists: %v", err)
	}
	if strings.TrimSpace(output) != "-1" {
		t.Errorf("check exists eth9 = %q, want -1", output)
	}
}

func TestCheckExistsCommand_InvalidName(t *testing.T) {
	useFakeBackend(t, newFakeBackend())
	path, _ := writeConfig(t)

	output, err := execute(t, "--config", path, "check", "exists", "bad/name")
	if err == nil {
		t.Fatal("expected error for invalid name")
	}
	if !strings.HasPrefix(output, "-1") {
		t.Errorf("output = %q, want -1 first", output)
	}
}

func TestCheckMemberCommand(t *testing.T) {
	fb := newFakeBackend()
	fb.members["brlan0"] = []string{"eth1"}
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	output, err := execute(t, "--config", path, "check", "member", "eth1", "brlan0")
	if err != nil {
		t.Fatalf("check member: %v", err)
	}
	if strings.TrimSpace(output) != "0" {
		t.Errorf("check member = %q, want 0", output)
	}

	output, _ = execute(t, "--config", path, "check", "member", "eth2", "brlan0")
	if strings.TrimSpace(output) != "-1" {
		t.Errorf("check member eth2 = %q, want -1", output)
	}
}

func TestVendorIfacesCommand(t *testing.T) {
	fb := newFakeBackend()
	fb.vendor = []string{"sw_1", "sw_2"}
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	output, err := execute(t, "--config", path, "vendor-ifaces")
	if err != nil {
		t.Fatalf("vendor-ifaces: %v", err)
	}
	if strings.TrimSpace(output) != "sw_1 sw_2" {
		t.Errorf("vendor-ifaces = %q, want %q", output, "sw_1 sw_2")
	}
	if !fb.closed {
		t.Error("backend not closed after command")
	}
}

func TestApplyCommand_SyncAll(t *testing.T) {
	fb := newFakeBackend()
	fb.links["eth1"] = true
	fb.links["wl0"] = true
	fb.links["ath0"] = true
	fb.members["brlan0"] = []string{"ath0"}
	useFakeBackend(t, fb)
	path, statusPath := writeConfig(t)

	output, err := execute(t, "--config", path, "apply")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.Contains(output, "brlan0\tapplied\tdetached=1") {
		t.Errorf("output = %q", output)
	}
	if !strings.Contains(output, "brlan2\tapplied") {
		t.Errorf("output = %q", output)
	}
	members := fb.members["brlan0"]
	if slices.Contains(members, "ath0") || !slices.Contains(members, "eth1") || !slices.Contains(members, "wl0") {
		t.Errorf("brlan0 members = %v", members)
	}
	if _, err := os.Stat(statusPath); err != nil {
		t.Errorf("status file not written: %v", err)
	}

	output, err = execute(t, "--config", path, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(output, "brlan0 (private_lan): ok") || !strings.Contains(output, "detached: ath0") {
		t.Errorf("status output = %q", output)
	}
}

func TestApplyCommand_NamedBridge(t *testing.T) {
	fb := newFakeBackend()
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	if _, err := execute(t, "--config", path, "apply", "brlan2"); err != nil {
		t.Fatalf("apply brlan2: %v", err)
	}
	want := []string{"pre brlan2 hotspot_2g", "create brlan2 ", "post brlan2 hotspot_2g"}
	if got := fb.getCalls(); !slices.Equal(got, want) {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestApplyCommand_UnknownBridge(t *testing.T) {
	fb := newFakeBackend()
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	if _, err := execute(t, "--config", path, "apply", "brlan0", "brlan9"); err == nil {
		t.Fatal("expected error for unknown bridge")
	}
	if len(fb.getCalls()) != 0 {
		t.Errorf("backend touched despite unknown bridge: %v", fb.getCalls())
	}
}

func TestRemoveCommand(t *testing.T) {
	fb := newFakeBackend()
	fb.links["brlan2"] = true
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	output, err := execute(t, "--config", path, "remove", "brlan2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(output, "brlan2\tremoved") {
		t.Errorf("output = %q", output)
	}
	if fb.links["brlan2"] {
		t.Error("brlan2 still present")
	}
}

func TestMemberCommand(t *testing.T) {
	fb := newFakeBackend()
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	if _, err := execute(t, "--config", path, "member", "add", "--type", "wifi", "brlan0", "wl1"); err != nil {
		t.Fatalf("member add: %v", err)
	}
	if !slices.Contains(fb.members["brlan0"], "wl1") {
		t.Fatalf("wl1 not attached: %v", fb.members["brlan0"])
	}

	if _, err := execute(t, "--config", path, "member", "del", "--type", "other", "brlan0", "wl1"); err != nil {
		t.Fatalf("member del: %v", err)
	}
	if slices.Contains(fb.members["brlan0"], "wl1") {
		t.Errorf("wl1 still attached: %v", fb.members["brlan0"])
	}
}

func TestLinkCommand(t *testing.T) {
	fb := newFakeBackend()
	fb.links["eth1"] = true
	useFakeBackend(t, fb)
	path, _ := writeConfig(t)

	out, err := execute(t, "--config", path, "link", "down", "eth1")
	if err != nil {
		t.Fatalf("link down: %v", err)
	}
	if out != "eth1\tdown\n" {
		t.Errorf("output = %q", out)
	}
	if !fb.down["eth1"] {
		t.Error("eth1 should be down")
	}

	if _, err := execute(t, "--config", path, "link", "up", "eth1"); err != nil {
		t.Fatalf("link up: %v", err)
	}
	if fb.down["eth1"] {
		t.Error("eth1 should be up")
	}

	if _, err := execute(t, "--config", path, "link", "up", "eth9"); !errors.Is(err, hal.ErrInvalidArgument) {
		t.Errorf("missing link err = %v, want ErrInvalidArgument", err)
	}
}

func TestMemberCommand_BadType(t *testing.T) {
	useFakeBackend(t, newFakeBackend())
	path, _ := writeConfig(t)
	t.Cleanup(func() { memberType = "other" })

	if _, err := execute(t, "--config", path, "member", "add", "--type", "token-ring", "brlan0", "wl1"); err == nil {
		t.Fatal("expected error for unknown interface type")
	}
}

func TestStatusCommand_NoStatusFile(t *testing.T) {
	path, _ := writeConfig(t)
	if _, err := execute(t, "--config", path, "status"); err == nil {
		t.Fatal("expected error when no sync has run")
	}
}

func TestNewInstaller_UsesLoggingPackage(t *testing.T) {
	useFakeBackend(t, newFakeBackend())
	var got logging.Config
	newLogger = func(cfg logging.Config) (*slog.Logger, io.Closer, error) {
		got = cfg
		return logging.Discard(), nopCloser{}, nil
	}
	logLevel = "debug"

	ins, closer, err := newInstaller()
	if err != nil {
		t.Fatalf("newInstaller: %v", err)
	}
	defer closer.Close()
	if ins == nil {
		t.Fatal("newInstaller returned nil installer")
	}
	if got.File != "-" || got.Level != "debug" || got.NoStderr {
		t.Errorf("logging config = %+v, want stderr only at debug", got)
	}
}
