// Package concord4 mirrors the state of an Interlogix Concord 4 alarm panel
// reached over its SuperBus 2000 automation serial link. The Engine decodes
// the panel's stream into a live snapshot of zones and partitions, fans out
// change events to subscribers, and serializes outbound commands against the
// link's one-request-at-a-time discipline.
package concord4

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type PanelModel byte

const (
	ModelConcord         PanelModel = 0x14
	ModelConcordExpress  PanelModel = 0x0b
	ModelConcordExpress4 PanelModel = 0x1e
	ModelConcordEuro     PanelModel = 0x0e
)

func (m PanelModel) String() string {
	switch m {
	case ModelConcord:
		return "Concord"
	case ModelConcordExpress:
		return "Concord Express"
	case ModelConcordExpress4:
		return "Concord Express 4"
	case ModelConcordEuro:
		return "Concord Euro"
	default:
		return "Unknown"
	}
}

func (m PanelModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

type ZoneStatus byte

const (
	ZoneNormal   ZoneStatus = 0x00
	ZoneTripped  ZoneStatus = 0x01
	ZoneFaulted  ZoneStatus = 0x02
	ZoneAlarm    ZoneStatus = 0x04
	ZoneTrouble  ZoneStatus = 0x08
	ZoneBypassed ZoneStatus = 0x0a
)

func (s ZoneStatus) String() string {
	switch s {
	case ZoneNormal:
		return "Normal"
	case ZoneTripped:
		return "Tripped"
	case ZoneFaulted:
		return "Faulted"
	case ZoneAlarm:
		return "Alarm"
	case ZoneTrouble:
		return "Trouble"
	case ZoneBypassed:
		return "Bypassed"
	default:
		return "Unknown"
	}
}

// Open reports whether the sensor should read as open or triggered.
func (s ZoneStatus) Open() bool {
	return s == ZoneTripped || s == ZoneFaulted || s == ZoneAlarm
}

func (s ZoneStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(s.String()))
}

type ZoneType byte

const (
	ZoneHardwired ZoneType = 0x00
	ZoneRF        ZoneType = 0x01
	ZoneTouchpad  ZoneType = 0x02
)

func (t ZoneType) String() string {
	switch t {
	case ZoneRF:
		return "RF"
	case ZoneTouchpad:
		return "Touchpad"
	default:
		return "Hardwired"
	}
}

func (t ZoneType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(t.String()))
}

type ArmingLevel byte

const (
	LevelZoneTest ArmingLevel = iota
	LevelOff
	LevelStay
	LevelAway
	LevelNight
	LevelSilent
)

func (l ArmingLevel) String() string {
	switch l {
	case LevelZoneTest:
		return "Zone Test"
	case LevelOff:
		return "Off"
	case LevelStay:
		return "Stay"
	case LevelAway:
		return "Away"
	case LevelNight:
		return "Night"
	case LevelSilent:
		return "Silent"
	default:
		return "Unknown"
	}
}

func (l ArmingLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(l.String()))
}

// partition equipment records and arming-level records use different value
// tables for the same logical state.
func levelFromPartition(b byte) ArmingLevel {
	switch b {
	case 0x02:
		return LevelStay
	case 0x03:
		return LevelAway
	case 0x08, 0x09:
		return LevelZoneTest
	default:
		return LevelOff
	}
}

func levelFromStatus(b byte) ArmingLevel {
	if b <= byte(LevelSilent) {
		return ArmingLevel(b)
	}
	return LevelOff
}

// PanelClock is the panel's own notion of time, refreshed once a minute.
type PanelClock struct {
	Hour   uint8 `json:"hour"`
	Minute uint8 `json:"minute"`
	Month  uint8 `json:"month"`
	Day    uint8 `json:"day"`
	Year   uint8 `json:"year"`
}

// Trouble is the last alarm or trouble event the panel reported, as a
// general/specific code pair from the vendor event table.
type Trouble struct {
	General  uint8 `json:"general"`
	Specific uint8 `json:"specific"`
}

// PanelData holds panel-wide attributes. There is exactly one per engine.
type PanelData struct {
	Model   PanelModel `json:"model"`
	Clock   PanelClock `json:"clock"`
	Trouble Trouble    `json:"trouble"`
	// EventsLost counts how often the panel reported dropping automation
	// traffic; each occurrence triggers a refresh of the full image.
	EventsLost uint32 `json:"eventsLost"`
}

type ZoneData struct {
	ID        string     `json:"id"`
	Partition uint8      `json:"partitionNumber"`
	Area      uint8      `json:"areaNumber"`
	Group     uint8      `json:"groupNumber"`
	Zone      uint8      `json:"zoneNumber"`
	Type      ZoneType   `json:"zoneType"`
	Status    ZoneStatus `json:"zoneStatus"`
	Name      string     `json:"zoneText"`
}

type PartitionData struct {
	ID        string      `json:"id"`
	Partition uint8       `json:"partitionNumber"`
	Area      uint8       `json:"areaNumber"`
	Level     ArmingLevel `json:"armingLevel"`
}

// ZoneID builds the store key for a zone; zone numbers repeat across
// partitions, so the key carries both.
func ZoneID(partition, zone uint8) string {
	return fmt.Sprintf("p%d-z%d", partition, zone)
}

// PartitionID builds the store key for a partition.
func PartitionID(partition uint8) string {
	return fmt.Sprintf("p%d", partition)
}

// Change is one accepted state mutation, delivered to subscribers. Exactly
// one concrete type wraps each event; payloads are copies, never shared
// with the store.
type Change interface{ isChange() }

type PanelChange struct {
	Panel PanelData `json:"panel"`
}

type ZoneChange struct {
	Zone ZoneData `json:"zone"`
}

type PartitionChange struct {
	Partition PartitionData `json:"partition"`
}

func (PanelChange) isChange()     {}
func (ZoneChange) isChange()      {}
func (PartitionChange) isChange() {}

// PublicState is a consistent, caller-owned copy of the mirror.
type PublicState struct {
	Panel       PanelData                `json:"panel"`
	Zones       map[string]ZoneData      `json:"zones"`
	Partitions  map[string]PartitionData `json:"partitions"`
	Initialized bool                     `json:"initialized"`
}

// ZoneIDs returns the zone keys in identifier order.
func (s PublicState) ZoneIDs() []string {
	ids := maps.Keys(s.Zones)
	slices.Sort(ids)
	return ids
}

// PartitionIDs returns the partition keys in identifier order.
func (s PublicState) PartitionIDs() []string {
	ids := maps.Keys(s.Partitions)
	slices.Sort(ids)
	return ids
}
