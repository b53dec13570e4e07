package twitch

import (
	"sync/atomic"

	"github.com/Arleycht/stream-bot/message"
)

// Stats — снимок счётчиков клиента.
type Stats struct {
	Received    uint64 `json:"received"`
	Filtered    uint64 `json:"filtered"`
	Malformed   uint64 `json:"malformed"`
	Sent        uint64 `json:"sent"`
	UnknownTags uint64 `json:"unknown_tags"`
	DroppedTags uint64 `json:"dropped_tags"`
}

type counters struct {
	received    atomic.Uint64
	filtered    atomic.Uint64
	malformed   atomic.Uint64
	sent        atomic.Uint64
	unknownTags atomic.Uint64
	droppedTags atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Received:    c.received.Load(),
		Filtered:    c.filtered.Load(),
		Malformed:   c.malformed.Load(),
		Sent:        c.sent.Load(),
		UnknownTags: c.unknownTags.Load(),
		DroppedTags: c.droppedTags.Load(),
	}
}

// statsObserver считает диагностику парсера и передаёт её дальше.
type statsObserver struct {
	stats *counters
	next  message.Observer
}

func (o *statsObserver) UnknownTag(key, value string) {
	o.stats.unknownTags.Add(1)
	if o.next != nil {
		o.next.UnknownTag(key, value)
	}
}

func (o *statsObserver) TagsDropped(raw string, err error) {
	o.stats.droppedTags.Add(1)
	if o.next != nil {
		o.next.TagsDropped(raw, err)
	}
}
