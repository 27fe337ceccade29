// Package metrics holds Prometheus instruments for configuration
// resolution.  All collectors are registered with the global registry, so
// any binary that serves promhttp.Handler() exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolutionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barrio_config_resolutions_total",
			Help: "Cumulative number of completed configuration resolutions.",
		})

	EnvFileErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barrio_config_env_file_errors_total",
			Help: "Env files skipped during loading, by file name and reason.",
		}, []string{"file", "reason"})

	DefaultsAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barrio_config_defaults_applied_total",
			Help: "Settings that fell back to their built-in default, by key.",
		}, []string{"key"})

	AuditFindings = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "barrio_config_audit_findings",
			Help: "Findings reported by the most recent configuration audit.",
		}, []string{"severity"})
)

func init() {
	prometheus.MustRegister(
		ResolutionsTotal,
		EnvFileErrorsTotal,
		DefaultsAppliedTotal,
		AuditFindings,
	)
}
