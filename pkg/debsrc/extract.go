package debsrc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Extract unpacks the source package described by dscPath into a directory
// under destDir and returns the unpacked tree's path. The other components
// must sit next to the .dsc file, which is how Fetch leaves them.
func Extract(ctx context.Context, dscPath, destDir string) (string, error) {
	bin, err := exec.LookPath("dpkg-source")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractorMissing, err)
	}
	if err := os.MkdirAll(destDir, dirPerm); err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(dscPath), filepath.Ext(dscPath))
	target := filepath.Join(destDir, base)
	// dpkg-source refuses to unpack over an existing tree.
	if err := os.RemoveAll(target); err != nil {
		return "", fmt.Errorf("clear extraction target: %w", err)
	}
	cmd := exec.CommandContext(ctx, bin, "--no-check", "-x", dscPath, target)
	if _, err := cmd.Output(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("dpkg-source: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("run dpkg-source: %w", err)
	}
	return target, nil
}
