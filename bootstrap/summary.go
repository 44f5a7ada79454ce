package bootstrap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/injectkit/di"
	"github.com/kbukum/injectkit/observability"
)

// Summary prints the startup state of an application.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary printer. A nil out writes to stdout.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	if out == nil {
		out = os.Stdout
	}
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         out,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the registry chain and the health results.
func (s *Summary) Display(tree []di.Snapshot, health *observability.ServiceHealth) {
	w := s.out
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	fmt.Fprintf(w, "📦 Registries\n")
	if len(tree) == 0 {
		fmt.Fprintf(w, "   └── No registries\n")
	}
	for i, r := range tree {
		prefix := "├──"
		if i == len(tree)-1 {
			prefix = "└──"
		}
		icon := "✅"
		if r.Disposed {
			icon = "⏸️"
		}
		fmt.Fprintf(w, "   %s %s %s: %d mappings, %d type mappings, %d systems, %d singletons\n",
			prefix, icon, r.Name, len(r.ClassMappings), len(r.TypeMappings), len(r.Systems), r.Singletons)
		for _, sys := range r.Systems {
			if len(sys.Matches) == 0 {
				fmt.Fprintf(w, "       ⚠️  system %s matches no entity type\n", sys.Type)
			}
		}
	}

	if health != nil && len(health.Components) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		for i, h := range health.Components {
			prefix := "├──"
			if i == len(health.Components)-1 {
				prefix = "└──"
			}
			msg := ""
			if h.Message != "" {
				msg = fmt.Sprintf(" (%s)", h.Message)
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", prefix, healthStatusIcon(h.Status), h.Name, h.Status, msg)
		}
	}

	fmt.Fprintf(w, "\n")
}

func healthStatusIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}
