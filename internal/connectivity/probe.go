// Package connectivity classifies the host's active network and
// reports when it changes.
package connectivity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/datapass/internal/domain"
)

var cellularPrefixes = []string{"wwan", "rmnet", "ccmni", "ppp"}

// SysfsProbe reads interface state from a /sys/class/net style tree
type SysfsProbe struct {
	Root string
}

// Current returns WiFi when any wireless interface is up, else Cellular
// when a modem interface is up, else Other for any other up interface.
func (p SysfsProbe) Current() domain.ConnectivityType {
	root := p.Root
	if root == "" {
		root = "/sys/class/net"
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return domain.ConnectivityNone
	}

	var cellular, other bool
	for _, e := range entries {
		name := e.Name()
		if name == "lo" || !isUp(filepath.Join(root, name)) {
			continue
		}
		switch {
		case isWireless(root, name):
			return domain.ConnectivityWiFi
		case isCellular(name):
			cellular = true
		default:
			other = true
		}
	}
	switch {
	case cellular:
		return domain.ConnectivityCellular
	case other:
		return domain.ConnectivityOther
	default:
		return domain.ConnectivityNone
	}
}

func isUp(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "operstate"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "up"
}

func isWireless(root, name string) bool {
	if strings.HasPrefix(name, "wl") {
		return true
	}
	_, err := os.Stat(filepath.Join(root, name, "wireless"))
	return err == nil
}

func isCellular(name string) bool {
	for _, p := range cellularPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Static always reports the same type
type Static domain.ConnectivityType

func (s Static) Current() domain.ConnectivityType { return domain.ConnectivityType(s) }
