package bus

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestCheckPidFile(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, PidName)

	t.Run("no pid file", func(t *testing.T) {
		if err := checkPidFile(pidPath); err != nil {
			t.Errorf("checkPidFile with no file: %v", err)
		}
	})

	t.Run("live process", func(t *testing.T) {
		if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := checkPidFile(pidPath); err == nil {
			t.Error("checkPidFile should fail for a live process")
		}
		os.Remove(pidPath)
	})

	t.Run("stale pid removed", func(t *testing.T) {
		if err := os.WriteFile(pidPath, []byte("999999"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := checkPidFile(pidPath); err != nil {
			t.Errorf("checkPidFile with stale pid: %v", err)
		}
		if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
			t.Error("stale pid file should be removed")
		}
	})

	t.Run("malformed pid removed", func(t *testing.T) {
		if err := os.WriteFile(pidPath, []byte("not-a-pid"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := checkPidFile(pidPath); err != nil {
			t.Errorf("checkPidFile with malformed pid: %v", err)
		}
		if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
			t.Error("malformed pid file should be removed")
		}
	})
}

func TestIsProcessAlive(t *testing.T) {
	if !isProcessAlive(os.Getpid()) {
		t.Error("current process should be alive")
	}
	if isProcessAlive(999999) {
		t.Error("pid 999999 should not be alive")
	}
}

func TestPaths(t *testing.T) {
	sock, err := SockPath()
	if err != nil {
		t.Fatalf("SockPath: %v", err)
	}
	if filepath.Base(sock) != SockName {
		t.Errorf("SockPath base = %s, want %s", filepath.Base(sock), SockName)
	}

	pid, err := PidPath()
	if err != nil {
		t.Fatalf("PidPath: %v", err)
	}
	if filepath.Base(pid) != PidName {
		t.Errorf("PidPath base = %s, want %s", filepath.Base(pid), PidName)
	}

	if filepath.Dir(sock) != filepath.Dir(pid) {
		t.Error("socket and pidfile should share a directory")
	}
}
