// Package startup installs and enables the controller's systemd service
// unit, adapted down from the teacher's two-service (GPIO boot script +
// main controller) pattern to one: periph.io's host.Init() configures
// pins at process start, so there is no separate boot-time pin script to
// write and install, only the long-running controller service itself.
package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
)

type ServiceStatus struct {
	Exists  bool
	Enabled bool
	Active  bool
}

// InstallService writes a systemd unit at unitPath that runs execPath as
// user, restarting on failure.
func InstallService(unitPath, execPath, user, workdir string) error {
	unit := fmt.Sprintf(`[Unit]
Description=wwpump recirculation controller
After=network.target

[Service]
Type=simple
User=%s
WorkingDirectory=%s
ExecStart=%s
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, user, workdir, execPath)

	return os.WriteFile(unitPath, []byte(unit), 0644)
}

func CheckServiceStatus(unitPath string) (ServiceStatus, error) {
	status := ServiceStatus{}

	if _, err := os.Stat(unitPath); err == nil {
		status.Exists = true
	} else if !os.IsNotExist(err) {
		return status, err
	}
	if !status.Exists {
		return status, nil
	}

	name := filepath.Base(unitPath)
	if exec.Command("systemctl", "is-enabled", name).Run() == nil {
		status.Enabled = true
	}
	if exec.Command("systemctl", "is-active", name).Run() == nil {
		status.Active = true
	}
	return status, nil
}

// EnsureServiceReady installs and enables the service if it is missing,
// printing sudo guidance on a permission error instead of failing
// silently.
func EnsureServiceReady(unitPath, execPath, user, workdir string) error {
	status, err := CheckServiceStatus(unitPath)
	if err != nil {
		return fmt.Errorf("failed to check service status: %w", err)
	}

	if !status.Exists {
		log.Info().Msg("wwpump service not found, installing...")
		if err := InstallService(unitPath, execPath, user, workdir); err != nil {
			if isPermissionError(err) {
				printSudoGuidance(execPath)
				return fmt.Errorf("service creation requires elevated privileges")
			}
			return fmt.Errorf("failed to install service: %w", err)
		}
		if err := exec.Command("systemctl", "daemon-reload").Run(); err != nil {
			return fmt.Errorf("failed to reload systemd daemon: %w", err)
		}
		status, err = CheckServiceStatus(unitPath)
		if err != nil {
			return err
		}
	}

	if !status.Enabled {
		name := filepath.Base(unitPath)
		log.Info().Str("service", name).Msg("Enabling wwpump service...")
		if err := exec.Command("systemctl", "enable", name).Run(); err != nil {
			if isPermissionError(err) {
				printSudoGuidance(execPath)
				return fmt.Errorf("service management requires elevated privileges")
			}
			return fmt.Errorf("failed to enable service: %w", err)
		}
	}

	log.Info().Msg("wwpump service ready")
	return nil
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, kw := range []string{"permission denied", "operation not permitted", "access denied", "insufficient privileges"} {
		if strings.Contains(errStr, kw) {
			return true
		}
	}
	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			return errno == syscall.EACCES || errno == syscall.EPERM
		}
	}
	return false
}

func printSudoGuidance(execPath string) {
	fmt.Println()
	fmt.Println("Service creation requires elevated privileges.")
	fmt.Printf("Run once with sudo: sudo %s\n", execPath)
	fmt.Println("After that, normal (non-sudo) runs are sufficient.")
	fmt.Println()
}
