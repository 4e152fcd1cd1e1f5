package superbus

// The opcode and attribute tables below follow the SuperBus 2000 automation
// protocol documentation. Panels with newer firmware emit records that are
// not in the table; those decode to Unknown rather than failing, so the
// engine keeps running against firmware variants.

const (
	opPanelType     = 0x01
	opEventLost     = 0x02
	opZoneData      = 0x03
	opPartitionData = 0x04
	opEqptListDone  = 0x08
	opClearImage    = 0x20
	opZoneStatus    = 0x21
	opStatusGroup   = 0x22
	opLightsGroup   = 0x23

	subArmingLevel  = 0x01
	subAlarmTrouble = 0x02
	subSirenSync    = 0x05
	subTouchpad     = 0x09
	subFeatureState = 0x0c
	subTimeDate     = 0x0e

	opListRequest = 0x02
	opRefresh     = 0x20
	opKeypress    = 0x40
)

// ListRequest selects which equipment list the panel should send.
type ListRequest byte

const (
	ListAllData    ListRequest = 0x00
	ListZoneData   ListRequest = 0x03
	ListPartData   ListRequest = 0x04
	ListBusDevData ListRequest = 0x05
	ListBusCapData ListRequest = 0x06
	ListOutputData ListRequest = 0x07
	ListUserData   ListRequest = 0x09
	ListSchedData  ListRequest = 0x0a
	ListEventData  ListRequest = 0x0b
)

func (r ListRequest) String() string {
	switch r {
	case ListAllData:
		return "all data"
	case ListZoneData:
		return "zones"
	case ListPartData:
		return "partitions"
	default:
		return "other equipment"
	}
}

// Message is one decoded inbound record.
type Message interface{ isMessage() }

type PanelType struct {
	Type byte
}

// EventLost means the panel dropped automation traffic; the current image
// must be refreshed.
type EventLost struct{}

// ZoneData is a full zone description, sent as part of an equipment list.
type ZoneData struct {
	Partition byte
	Area      byte
	Group     byte
	Zone      byte
	Type      byte
	Status    byte
	Text      string
}

// PartitionData is a full partition description, sent as part of an
// equipment list.
type PartitionData struct {
	Partition byte
	Area      byte
	Level     byte
}

// EquipmentListDone closes out a list request. The request type it answers
// is echoed in the record body.
type EquipmentListDone struct {
	Request ListRequest
}

// ZoneStatus is an unsolicited status flag change for a single zone.
type ZoneStatus struct {
	Partition byte
	Area      byte
	Zone      byte
	Status    byte
}

// ArmingLevel is an unsolicited arming state change for a partition.
type ArmingLevel struct {
	Partition byte
	Area      byte
	Level     byte
}

// AlarmTrouble reports an alarm or trouble event.
type AlarmTrouble struct {
	Partition byte
	Area      byte
	General   byte
	Specific  byte
}

// TimeDate carries the panel clock.
type TimeDate struct {
	Hour   byte
	Minute byte
	Month  byte
	Day    byte
	Year   byte
}

// Touchpad mirrors what a touchpad on the given partition displays.
type Touchpad struct {
	Partition byte
	Area      byte
	Broadcast bool
	Text      string
}

// Unknown wraps any record whose opcode is not in the table. Decoding never
// fails: unrecognized traffic is carried through for logging.
type Unknown struct {
	Raw []byte
}

func (PanelType) isMessage()         {}
func (EventLost) isMessage()         {}
func (ZoneData) isMessage()          {}
func (PartitionData) isMessage()     {}
func (EquipmentListDone) isMessage() {}
func (ZoneStatus) isMessage()        {}
func (ArmingLevel) isMessage()       {}
func (AlarmTrouble) isMessage()      {}
func (TimeDate) isMessage()          {}
func (Touchpad) isMessage()          {}
func (Unknown) isMessage()           {}

// Decode maps a validated frame payload onto a typed message. Payloads that
// are too short for their opcode, or whose opcode is not in the table, come
// back as Unknown.
func Decode(f Frame) Message {
	p := f.Payload
	if len(p) == 0 {
		return Unknown{}
	}

	if len(p) >= 2 {
		if msg, ok := decodeSubtype(p[0], p[1], p[2:]); ok {
			return msg
		}
	}

	data := p[1:]
	switch p[0] {
	case opPanelType:
		if len(data) < 1 {
			break
		}
		return PanelType{Type: data[0]}
	case opEventLost:
		return EventLost{}
	case opZoneData:
		if len(data) < 7 {
			break
		}
		return ZoneData{
			Partition: data[0],
			Area:      data[1],
			Group:     data[2],
			Zone:      data[4],
			Type:      data[5],
			Status:    data[6],
			Text:      DecodeTokens(data[7:]),
		}
	case opPartitionData:
		if len(data) < 3 {
			break
		}
		return PartitionData{
			Partition: data[0],
			Area:      data[1],
			Level:     data[2],
		}
	case opEqptListDone:
		if len(data) < 1 {
			// older firmware omits the echo; treat as closing an all-data
			// request so bootstrap still converges.
			return EquipmentListDone{Request: ListAllData}
		}
		return EquipmentListDone{Request: ListRequest(data[0])}
	case opZoneStatus:
		if len(data) < 5 {
			break
		}
		return ZoneStatus{
			Partition: data[0],
			Area:      data[1],
			Zone:      data[3],
			Status:    data[4],
		}
	}
	return Unknown{Raw: p}
}

func decodeSubtype(cmd, sub byte, data []byte) (Message, bool) {
	if cmd != opStatusGroup {
		return nil, false
	}
	switch sub {
	case subArmingLevel:
		if len(data) < 5 {
			return nil, false
		}
		return ArmingLevel{
			Partition: data[0],
			Area:      data[1],
			Level:     data[4],
		}, true
	case subAlarmTrouble:
		if len(data) < 4 {
			return nil, false
		}
		return AlarmTrouble{
			Partition: data[0],
			Area:      data[1],
			General:   data[2],
			Specific:  data[3],
		}, true
	case subTouchpad:
		if len(data) < 3 {
			return nil, false
		}
		return Touchpad{
			Partition: data[0],
			Area:      data[1],
			Broadcast: data[2] == 0x01,
			Text:      DecodeTokens(data[3:]),
		}, true
	case subTimeDate:
		if len(data) < 5 {
			return nil, false
		}
		return TimeDate{
			Hour:   data[0],
			Minute: data[1],
			Month:  data[2],
			Day:    data[3],
			Year:   data[4],
		}, true
	}
	return nil, false
}

// Sendable is an outbound command that knows its own wire payload.
type Sendable interface {
	Payload() []byte
}

// List asks the panel for an equipment list.
type List struct {
	Request ListRequest
}

func (l List) Payload() []byte {
	if l.Request == ListAllData {
		return []byte{opListRequest}
	}
	return []byte{opListRequest, byte(l.Request)}
}

// Refresh asks the panel to re-announce its full dynamic status.
type Refresh struct{}

func (Refresh) Payload() []byte { return []byte{opRefresh} }

// Keypress injects touchpad keys into a partition.
type Keypress struct {
	Partition byte
	Area      byte
	Keys      []byte
}

func (k Keypress) Payload() []byte {
	return append([]byte{opKeypress, k.Partition, k.Area}, k.Keys...)
}
