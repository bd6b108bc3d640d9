package monitoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"srtmon/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Poll outcomes
	pollsTotal   prometheus.Counter
	pollFailures *prometheus.CounterVec
	pollDuration prometheus.Histogram

	// Publisher gauges, labelled by stream_id
	publisherBitrate  *prometheus.GaugeVec
	publisherRecvRate *prometheus.GaugeVec
	publisherRTT      *prometheus.GaugeVec
	publisherRcvBuf   *prometheus.GaugeVec
	publisherUptime   *prometheus.GaugeVec
	averageDrop       *prometheus.GaugeVec
	averageLoss       *prometheus.GaugeVec
	lastPoll          *prometheus.GaugeVec

	factory promauto.Factory

	mu         sync.Mutex
	lastStream string
}

// NewPrometheusCollector registers the collector's metrics on reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)
	streamLabels := []string{"stream_id"}

	return &PrometheusCollector{
		factory: factory,

		pollsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "srtmon_polls_total",
			Help: "Total number of stats polls",
		}),

		pollFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "srtmon_poll_failures_total",
			Help: "Failed stats polls by reason",
		}, []string{"reason"}),

		pollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "srtmon_poll_duration_seconds",
			Help:    "Duration of stats polls",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		publisherBitrate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_publisher_bitrate_kbps",
			Help: "Publisher bitrate as reported by the relay",
		}, streamLabels),

		publisherRecvRate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_publisher_recv_rate_mbps",
			Help: "Publisher receive rate in Mbps",
		}, streamLabels),

		publisherRTT: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_publisher_rtt_ms",
			Help: "Publisher round trip time",
		}, streamLabels),

		publisherRcvBuf: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_publisher_rcv_buffer_ms",
			Help: "Publisher receive buffer time in ms",
		}, streamLabels),

		publisherUptime: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_publisher_uptime_seconds",
			Help: "Publisher connection uptime",
		}, streamLabels),

		averageDrop: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_pkt_rcv_drop_avg",
			Help: "Rolling average of received packets dropped per poll",
		}, streamLabels),

		averageLoss: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_pkt_rcv_loss_avg",
			Help: "Rolling average of received packets lost per poll",
		}, streamLabels),

		lastPoll: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtmon_last_poll_timestamp_seconds",
			Help: "Unix time of the latest successful poll",
		}, streamLabels),
	}
}

// ObserveLiveClients exports the number of connected live feed clients,
// read from count on every scrape.
func (p *PrometheusCollector) ObserveLiveClients(count func() int) {
	p.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "srtmon_live_clients",
		Help: "Connected live feed clients",
	}, func() float64 { return float64(count()) })
}

func (p *PrometheusCollector) ObservePoll(duration time.Duration, err error) {
	p.pollsTotal.Inc()
	p.pollDuration.Observe(duration.Seconds())

	if err != nil {
		p.pollFailures.WithLabelValues(failureReason(err)).Inc()
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedStats):
		return "malformed"
	case errors.Is(err, domain.ErrStatsUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

// UpdateMonitorState mirrors a monitor state into the gauges. It has the
// shape of a monitor listener.
func (p *PrometheusCollector) UpdateMonitorState(_ context.Context, state domain.MonitorState) error {
	stream := string(state.Target.StreamID)

	p.mu.Lock()
	if p.lastStream != "" && p.lastStream != stream {
		p.forget(p.lastStream)
	}
	p.lastStream = stream
	p.mu.Unlock()

	publisher, ok := state.Publisher()
	if !ok {
		p.forget(stream)
		return nil
	}

	p.publisherBitrate.WithLabelValues(stream).Set(publisher.Bitrate)
	p.publisherRecvRate.WithLabelValues(stream).Set(publisher.MbpsRecvRate)
	p.publisherRTT.WithLabelValues(stream).Set(publisher.RTT)
	p.publisherRcvBuf.WithLabelValues(stream).Set(publisher.MsRcvBuf)
	p.publisherUptime.WithLabelValues(stream).Set(publisher.Uptime)
	p.lastPoll.WithLabelValues(stream).Set(float64(state.PolledAt.Unix()))

	setOrDelete(p.averageDrop, stream, state.Drops)
	setOrDelete(p.averageLoss, stream, state.Losses)
	return nil
}

func setOrDelete(g *prometheus.GaugeVec, stream string, w domain.DeltaWindow) {
	if avg, ok := w.Average(); ok {
		g.WithLabelValues(stream).Set(float64(avg))
		return
	}
	g.DeleteLabelValues(stream)
}

func (p *PrometheusCollector) forget(stream string) {
	for _, g := range []*prometheus.GaugeVec{
		p.publisherBitrate,
		p.publisherRecvRate,
		p.publisherRTT,
		p.publisherRcvBuf,
		p.publisherUptime,
		p.averageDrop,
		p.averageLoss,
		p.lastPoll,
	} {
		g.DeleteLabelValues(stream)
	}
}
