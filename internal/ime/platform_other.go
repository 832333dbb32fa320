//go:build ios || (!darwin && !windows && !linux)

package ime

import "log/slog"

func newPlatformManager(cfg Config, logger *slog.Logger) (Manager, error) {
	return nil, ErrUnsupportedPlatform
}
