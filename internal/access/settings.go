package access

import (
	"context"
	"fmt"
	"io"
	"os"
)

// HintSettings prints how to reach the settings surface.
type HintSettings struct {
	Out io.Writer
}

// OpenUsageAccess writes the hint.
func (s HintSettings) OpenUsageAccess(ctx context.Context) error {
	out := s.Out
	if out == nil {
		out = os.Stderr
	}
	_, err := fmt.Fprintf(out, "Usage access is not granted.\nRun '%s access grant' to allow reading usage statistics.\n", DefaultPackage)
	return err
}
