package shtp

import "fmt"

// Packet is one decoded SHTP frame. It is one of CommandPacket,
// ExecutablePacket, HubControlPacket or SensorReportsPacket.
type Packet interface {
	Channel() Channel
	isPacket()
}

// CommandKind is the outcome of a frame on the command channel.
type CommandKind uint8

const (
	CommandUnknown CommandKind = iota
	CommandAdvertisement
	CommandErrorList
)

func (k CommandKind) String() string {
	switch k {
	case CommandAdvertisement:
		return "advertisement"
	case CommandErrorList:
		return "error-list"
	default:
		return "unknown"
	}
}

// ExecutableKind is the outcome of a frame on the executable channel.
type ExecutableKind uint8

const (
	ExecUnknown ExecutableKind = iota
	ExecResetComplete
)

func (k ExecutableKind) String() string {
	if k == ExecResetComplete {
		return "reset-complete"
	}
	return "unknown"
}

// HubControlKind is the outcome of a frame on the sensor hub control channel.
type HubControlKind uint8

const (
	HubUnknown HubControlKind = iota
	HubCommandResponse
	HubProductIDResponse
	HubGetFeatureResponse
)

func (k HubControlKind) String() string {
	switch k {
	case HubCommandResponse:
		return "command-response"
	case HubProductIDResponse:
		return "product-id-response"
	case HubGetFeatureResponse:
		return "get-feature-response"
	default:
		return "unknown"
	}
}

// CommandPacket is a frame received on the command channel.
// ReportID always holds the raw report byte, also for unknown kinds.
type CommandPacket struct {
	Kind     CommandKind
	ReportID uint8
}

// ExecutablePacket is a frame received on the executable channel.
type ExecutablePacket struct {
	Kind     ExecutableKind
	ReportID uint8
}

// HubControlPacket is a frame received on the sensor hub control channel.
type HubControlPacket struct {
	Kind     HubControlKind
	ReportID uint8
}

// SensorReportsPacket holds the batch of records of one sensor-reports frame.
type SensorReportsPacket struct {
	Reports []Report
}

func (CommandPacket) Channel() Channel       { return ChannelCommand }
func (ExecutablePacket) Channel() Channel    { return ChannelExecutable }
func (HubControlPacket) Channel() Channel    { return ChannelHubControl }
func (SensorReportsPacket) Channel() Channel { return ChannelSensorReports }

func (CommandPacket) isPacket()       {}
func (ExecutablePacket) isPacket()    {}
func (HubControlPacket) isPacket()    {}
func (SensorReportsPacket) isPacket() {}

func (p CommandPacket) String() string {
	return fmt.Sprintf("command %s (0x%02X)", p.Kind, p.ReportID)
}

func (p ExecutablePacket) String() string {
	return fmt.Sprintf("executable %s (0x%02X)", p.Kind, p.ReportID)
}

func (p HubControlPacket) String() string {
	return fmt.Sprintf("hub-control %s (0x%02X)", p.Kind, p.ReportID)
}

func (p SensorReportsPacket) String() string {
	return fmt.Sprintf("sensor-reports (%d records)", len(p.Reports))
}
