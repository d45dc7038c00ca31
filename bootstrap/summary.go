package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/logger"
)

// Summary prints what the service started with: infrastructure, routes and
// live health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []string
	out             io.Writer
}

// NewSummary creates a summary that prints to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the printed summary. A nil writer silences it.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoutes records "METHOD path" entries for display.
func (s *Summary) TrackRoutes(routes ...string) {
	s.routes = append(s.routes, routes...)
}

// Log writes one structured line and, when an output is set, the tree.
func (s *Summary) Log(log *logger.Logger, descs []component.Description, health []component.Health) {
	healthy := 0
	for _, h := range health {
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}
	log.Info("startup summary", logger.Fields(
		"components", len(health),
		"healthy", healthy,
		"routes", len(s.routes),
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
	if s.out != nil {
		s.render(s.out, descs, health)
	}
}

func (s *Summary) render(w io.Writer, descs []component.Description, health []component.Health) {
	fmt.Fprintf(w, "\n🚀 %s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(descs) > 0 {
		fmt.Fprintf(w, "\n📊 Infrastructure\n")
		for i, d := range descs {
			fmt.Fprintf(w, "   %s %s [%s] %s\n", treePrefix(i, len(descs)), d.Name, d.Type, d.Details)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(s.routes)), r)
		}
	}

	if len(health) > 0 {
		fmt.Fprintf(w, "\n🏥 Health\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = ": " + h.Message
			}
			fmt.Fprintf(w, "   %s %s %s %s%s\n", treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
