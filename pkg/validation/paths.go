package validation

import (
	"fmt"
	"strings"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/pathmatch"
)

func validatePaths(o *options.Options) []string {
	msgs := []string{}

	if o.MountPrefix != "" && !strings.HasPrefix(o.MountPrefix, "/") {
		msgs = append(msgs, fmt.Sprintf("mount-prefix %q must start with /", o.MountPrefix))
	}

	seen := map[string]struct{}{}
	for _, p := range o.ControlPaths() {
		if !strings.HasPrefix(p, "/") {
			msgs = append(msgs, fmt.Sprintf("control path %q must start with /", p))
		}
		if _, ok := seen[p]; ok {
			msgs = append(msgs, fmt.Sprintf("control path %q is used for more than one endpoint", p))
		}
		seen[p] = struct{}{}
	}

	if _, err := pathmatch.ParsePatterns(o.Paths.ProtectedPaths); err != nil {
		msgs = append(msgs, fmt.Sprintf("invalid protected path: %v", err))
	}
	if _, err := pathmatch.ParsePatterns(o.Paths.PublicPaths); err != nil {
		msgs = append(msgs, fmt.Sprintf("invalid public path: %v", err))
	}
	return msgs
}
