package domain

type StreamID string

// PublisherStats is the per-publisher block of an SRT stats document.
// The four Rcv counters are cumulative for the lifetime of the publisher
// connection and go backwards only when the publisher reconnects.
type PublisherStats struct {
	Bitrate       float64 `json:"bitrate"`
	BytesRcvDrop  int64   `json:"bytesRcvDrop"`
	BytesRcvLoss  int64   `json:"bytesRcvLoss"`
	MbpsBandwidth float64 `json:"mbpsBandwidth"`
	MbpsRecvRate  float64 `json:"mbpsRecvRate"`
	MsRcvBuf      float64 `json:"msRcvBuf"`
	PktRcvDrop    int64   `json:"pktRcvDrop"`
	PktRcvLoss    int64   `json:"pktRcvLoss"`
	RTT           float64 `json:"rtt"`
	Uptime        float64 `json:"uptime"`
}

type StatsSnapshot struct {
	Status     string                      `json:"status"`
	Publishers map[StreamID]PublisherStats `json:"publishers"`
}

// Publisher looks up a stream in the snapshot. A nil snapshot has no publishers.
func (s *StatsSnapshot) Publisher(id StreamID) (PublisherStats, bool) {
	if s == nil {
		return PublisherStats{}, false
	}
	p, ok := s.Publishers[id]
	return p, ok
}
