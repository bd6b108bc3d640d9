package domain

import "time"

// ViewerSettings is the record the front-end keeps in its storage slot.
type ViewerSettings struct {
	StatsURL       string   `json:"statsUrl"`
	StreamID       StreamID `json:"streamId"`
	PollIntervalMs int      `json:"pollIntervalMs"`
}

func (v ViewerSettings) MonitorSettings() MonitorSettings {
	return MonitorSettings{StatsURL: v.StatsURL, StreamID: v.StreamID}
}

// PollInterval returns zero when the record does not carry an interval.
func (v ViewerSettings) PollInterval() time.Duration {
	if v.PollIntervalMs <= 0 {
		return 0
	}
	return time.Duration(v.PollIntervalMs) * time.Millisecond
}
