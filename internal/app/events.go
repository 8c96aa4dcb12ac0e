package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// Event is a control-channel packet as published on the events topic.
type Event struct {
	Time     string `json:"time"`
	Channel  string `json:"channel"`
	Kind     string `json:"kind"`
	ReportID uint8  `json:"report_id"`
}

// eventFromPacket converts control-channel packets; sensor reports yield false.
func eventFromPacket(t time.Time, pkt shtp.Packet) (Event, bool) {
	ev := Event{
		Time:    t.UTC().Format(time.RFC3339Nano),
		Channel: pkt.Channel().String(),
	}
	switch p := pkt.(type) {
	case shtp.CommandPacket:
		ev.Kind, ev.ReportID = p.Kind.String(), p.ReportID
	case shtp.ExecutablePacket:
		ev.Kind, ev.ReportID = p.Kind.String(), p.ReportID
	case shtp.HubControlPacket:
		ev.Kind, ev.ReportID = p.Kind.String(), p.ReportID
	default:
		return Event{}, false
	}
	return ev, true
}

func logUnmarshal(topic string, err error) {
	log.Printf("%s: unmarshal error: %v", topic, err)
}
