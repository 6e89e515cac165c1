package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	CommandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habitloop_commands_executed_total",
		Help: "Total number of commands executed, by kind and result.",
	}, []string{"kind", "result"})

	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "habitloop_command_seconds",
		Help:    "Time spent executing a command, including cache updates.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	ListenerNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habitloop_listener_notifications_total",
		Help: "Total number of command listener callbacks delivered.",
	})

	RemindersScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habitloop_reminders_scheduled_total",
		Help: "Total number of reminder alarms handed to the system scheduler.",
	})

	ReminderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habitloop_reminder_failures_total",
		Help: "Total number of habits whose reminder could not be scheduled.",
	})

	AlarmsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habitloop_alarms_dispatched_total",
		Help: "Total number of due alarms processed, by result.",
	}, []string{"result"})

	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "habitloop_recompute_seconds",
		Help:    "Time spent rebuilding scores and streaks for every habit.",
		Buckets: prometheus.DefBuckets,
	})

	HabitsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "habitloop_habits_total",
		Help: "Number of habits currently loaded.",
	})
)
