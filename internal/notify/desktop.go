package notify

import (
	"context"
	"sync"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Desktop delivers native notifications through the OS notification daemon.
// The initial permission state comes from configuration ("ask", "on", "off");
// a grant obtained through RequestPermission holds for the session only, so
// the next run re-reads the configured state.
type Desktop struct {
	mu         sync.Mutex
	permission Permission
	logger     *zap.Logger
}

func NewDesktop(mode string, logger *zap.Logger) *Desktop {
	var permission Permission
	switch mode {
	case "on":
		permission = PermissionGranted
	case "off":
		permission = PermissionDenied
	case "ask":
		permission = PermissionDefault
	default:
		permission = PermissionUnsupported
	}
	return &Desktop{permission: permission, logger: logger}
}

func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// RequestPermission resolves the "not yet decided" state. The explicit user
// action that led here is the consent, so "ask" resolves to granted; any
// other state is already terminal and is returned unchanged.
func (d *Desktop) RequestPermission(ctx context.Context) (Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission == PermissionDefault {
		d.permission = PermissionGranted
		d.logger.Info("Desktop notifications enabled for this session")
	}
	return d.permission, nil
}

func (d *Desktop) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}
