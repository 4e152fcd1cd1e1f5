package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
	client "github.com/caarlos0/concord4"
)

type AlarmSensors []*AlarmSensor

func setupZones(cfg Config, snap client.PublicState) AlarmSensors {
	var sensors AlarmSensors
	for i, zc := range cfg.allZones() {
		id := client.ZoneID(uint8(cfg.Partition), uint8(zc.number))
		sensor := newAlarmSensor(accessory.Info{
			Name:         zc.name,
			SerialNumber: id,
			Manufacturer: manufacturer,
		}, zc.kind, zc.number)
		sensor.Id = uint64(i + 10)
		if zone, ok := snap.Zones[id]; ok {
			sensor.Update(zone)
		}
		sensors = append(sensors, sensor)
	}
	return sensors
}

func (sensors AlarmSensors) Update(zone client.ZoneData) {
	for _, sensor := range sensors {
		if uint8(sensor.Number) == zone.Zone {
			sensor.Update(zone)
			return
		}
	}
}

type AlarmSensor struct {
	*accessory.A
	Number  int
	Kind    zoneKind
	Motion  *service.MotionSensor
	Contact *service.ContactSensor
	Tamper  *characteristic.StatusTampered
}

func newAlarmSensor(info accessory.Info, kind zoneKind, number int) *AlarmSensor {
	a := AlarmSensor{
		Number: number,
		Kind:   kind,
	}
	a.A = accessory.New(info, accessory.TypeSensor)

	a.Tamper = characteristic.NewStatusTampered()

	switch kind {
	case kindContact:
		a.Contact = service.NewContactSensor()
		a.Contact.AddC(a.Tamper.C)
		a.AddS(a.Contact.S)
	case kindMotion:
		a.Motion = service.NewMotionSensor()
		a.Motion.AddC(a.Tamper.C)
		a.AddS(a.Motion.S)
	}

	return &a
}

func (sensor *AlarmSensor) Update(zone client.ZoneData) {
	open := zone.Status.Open()
	openGauge.WithLabelValues(sensor.Name()).Set(boolAs[float64](open))
	troubleGauge.WithLabelValues(sensor.Name()).
		Set(boolAs[float64](zone.Status == client.ZoneTrouble))

	if tamper := boolAs[int](zone.Status == client.ZoneTrouble); sensor.Tamper.Value() != tamper {
		log.Info("trouble", "zone", zone.Zone, "status", zone.Status)
		_ = sensor.Tamper.SetValue(tamper)
	}

	switch sensor.Kind {
	case kindContact:
		current := boolAs[int](open)
		if v := sensor.Contact.ContactSensorState.Value(); v == current {
			return
		}
		_ = sensor.Contact.ContactSensorState.SetValue(current)
		log.Info("contact", "zone", zone.Zone, "status", zone.Status)
	case kindMotion:
		if v := sensor.Motion.MotionDetected.Value(); v == open {
			return
		}
		sensor.Motion.MotionDetected.SetValue(open)
		log.Info("motion", "zone", zone.Zone, "status", zone.Status)
	}
}

type SecuritySystem struct {
	*accessory.A
	SecuritySystem *service.SecuritySystem

	cfg   Config
	alarm *client.Engine
}

func NewSecuritySystem(info accessory.Info, cfg Config, alarm *client.Engine) *SecuritySystem {
	a := &SecuritySystem{
		cfg:   cfg,
		alarm: alarm,
	}
	a.A = accessory.New(info, accessory.TypeSecuritySystem)

	a.SecuritySystem = service.NewSecuritySystem()
	a.AddS(a.SecuritySystem.S)

	a.SecuritySystem.SecuritySystemTargetState.SetValueRequestFunc = a.updateHandler

	return a
}

func (a *SecuritySystem) Update(part client.PartitionData) {
	state := alarmState(part.Level)
	armStateGauge.Set(float64(state))
	if a.SecuritySystem.SecuritySystemCurrentState.Value() != state {
		err := a.SecuritySystem.SecuritySystemCurrentState.SetValue(state)
		log.Info("set current state", "state", state, "err", err)
	}
}

func (a *SecuritySystem) updateHandler(
	v interface{},
	_ *http.Request,
) (response interface{}, code int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	part := uint8(a.cfg.Partition)
	var err error
	switch v.(int) {
	case characteristic.SecuritySystemTargetStateStayArm:
		log.Info("arm stay", "partition", part)
		err = a.alarm.Arm(ctx, part, client.LevelStay, a.cfg.Code)
	case characteristic.SecuritySystemTargetStateAwayArm:
		log.Info("arm away", "partition", part)
		err = a.alarm.Arm(ctx, part, client.LevelAway, a.cfg.Code)
	case characteristic.SecuritySystemTargetStateDisarm:
		log.Info("disarm", "partition", part)
		err = a.alarm.Disarm(ctx, part, a.cfg.Code)
	default:
		return nil, hap.JsonStatusResourceDoesNotExist
	}

	commandCounter.Inc()
	if err != nil {
		commandErrorCounter.Inc()
		if errors.Is(err, client.ErrArmed) {
			log.Error("refusing to re-arm, disarm first", "err", err)
			return nil, hap.JsonStatusInvalidValueInRequest
		}
		log.Error("could not change arming level", "err", err)
		return nil, hap.JsonStatusResourceBusy
	}
	return nil, hap.JsonStatusSuccess
}
