package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/brutella/hap/characteristic"
	client "github.com/caarlos0/concord4"
	"golang.org/x/exp/slices"
)

type Config struct {
	Device       string        `env:"DEVICE,notEmpty"`
	Code         string        `env:"CODE,notEmpty"`
	Partition    int           `env:"PARTITION"    envDefault:"1"`
	MotionZones  []int         `env:"MOTION"`
	ContactZones []int         `env:"CONTACT"`
	ZoneNames    []string      `env:"ZONE_NAMES"`
	AckTimeout   time.Duration `env:"ACK_TIMEOUT"  envDefault:"5s"`
	Retries      int           `env:"RETRIES"      envDefault:"3"`
	Address      string        `env:"LISTEN"       envDefault:":8000"`
}

type zoneKind uint8

const (
	kindMotion = iota + 1
	kindContact
)

func (z zoneKind) String() string {
	switch z {
	case kindMotion:
		return "motion"
	default:
		return "contact"
	}
}

type zoneConfig struct {
	number int
	name   string
	kind   zoneKind
}

func (c Config) zoneName(n int) string {
	names := c.ZoneNames
	if len(names) > n-1 {
		if n := names[n-1]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("Zone %d", n)
}

type allZoneConfigs []zoneConfig

func (a allZoneConfigs) String() string {
	var zones []string
	for _, zone := range a {
		zones = append(
			zones,
			fmt.Sprintf("zone %d: %q (%s)", zone.number, zone.name, zone.kind.String()),
		)
	}
	return strings.Join(zones, "\n")
}

func (c Config) allZones() []zoneConfig {
	var zones []zoneConfig
	for _, z := range c.MotionZones {
		zones = append(zones, zoneConfig{
			number: z,
			name:   c.zoneName(z),
			kind:   kindMotion,
		})
	}
	for _, z := range c.ContactZones {
		zones = append(zones, zoneConfig{
			number: z,
			name:   c.zoneName(z),
			kind:   kindContact,
		})
	}
	slices.SortFunc(zones, func(a, b zoneConfig) int {
		if a.number > b.number {
			return 1
		}
		return -1
	})
	return zones
}

func alarmState(level client.ArmingLevel) int {
	switch level {
	case client.LevelStay:
		return characteristic.SecuritySystemCurrentStateStayArm
	case client.LevelAway:
		return characteristic.SecuritySystemCurrentStateAwayArm
	case client.LevelNight, client.LevelSilent:
		return characteristic.SecuritySystemCurrentStateNightArm
	default:
		return characteristic.SecuritySystemCurrentStateDisarmed
	}
}
