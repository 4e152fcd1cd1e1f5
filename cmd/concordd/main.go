package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/caarlos0/env/v11"
	"github.com/cenkalti/backoff/v4"
	logp "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.bug.st/serial"

	client "github.com/caarlos0/concord4"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "concordd",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const manufacturer = "Interlogix"

func main() {
	log.Info(
		"concordd",
		"version", version,
		"commit", commit,
		"date", date,
		"info", "HomeKit bridge for Interlogix Concord 4 alarm systems",
	)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(
			"could not parse env",
			"err",
			strings.TrimPrefix(strings.ReplaceAll(err.Error(), "; ", "\n"), "env: ")+"\n",
		)
	}

	log.Info(
		"loading accessories",
		"partition", cfg.Partition,
		"zones", allZoneConfigs(cfg.allZones()).String(),
	)

	port, err := openPort(cfg.Device)
	if err != nil {
		log.Fatal("could not open serial port", "device", cfg.Device, "err", err)
	}

	alarm := client.New(
		port,
		client.WithAckTimeout(cfg.AckTimeout),
		client.WithRetries(cfg.Retries),
	)
	defer func() { _ = alarm.Close() }()

	readyCtx, cancelReady := context.WithTimeout(context.Background(), time.Minute)
	defer cancelReady()
	if err := alarm.WaitReady(readyCtx); err != nil {
		log.Fatal("panel never sent its initial state", "err", err)
	}

	snap := alarm.Snapshot()
	log.Info(
		"got panel information",
		"manufacturer", manufacturer,
		"model", snap.Panel.Model,
		"zones", len(snap.Zones),
		"partitions", len(snap.Partitions),
	)

	bridge := accessory.NewBridge(accessory.Info{
		Name:         "Alarm Bridge",
		Manufacturer: manufacturer,
		Firmware:     version,
	})

	system := NewSecuritySystem(accessory.Info{
		Name:         "Alarm",
		Manufacturer: manufacturer,
		Model:        snap.Panel.Model.String(),
		Firmware:     version,
	}, cfg, alarm)
	system.Id = 2

	sensors := setupZones(cfg, snap)

	if part, ok := snap.Partitions[client.PartitionID(uint8(cfg.Partition))]; ok {
		system.Update(part)
	}

	sub := alarm.Subscribe()
	go func() {
		for change := range sub.C() {
			switch c := change.(type) {
			case client.PanelChange:
				changeCounter.WithLabelValues("panel").Inc()
				eventsLostGauge.Set(float64(c.Panel.EventsLost))
			case client.ZoneChange:
				changeCounter.WithLabelValues("zone").Inc()
				sensors.Update(c.Zone)
			case client.PartitionChange:
				changeCounter.WithLabelValues("partition").Inc()
				if c.Partition.Partition == uint8(cfg.Partition) {
					system.Update(c.Partition)
				}
			}
		}
	}()

	go func() {
		<-alarm.Done()
		if err := alarm.Err(); !errors.Is(err, client.ErrClosed) {
			log.Fatal("lost the panel", "err", err)
		}
	}()

	fs := hap.NewFsStore("./db")

	server, err := hap.NewServer(fs, bridge.A, securityAccessories(sensors, system)...)
	if err != nil {
		log.Fatal("fail to create server", "error", err)
	}
	server.Addr = cfg.Address
	server.ServeMux().Handle("/metrics", promhttp.Handler())
	server.ServeMux().Handle("/state", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(alarm.Snapshot())
	}))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-c
		log.Info("stopping server")
		signal.Stop(c)
		cancel()
	}()

	log.Info("starting server", "addr", server.Addr)
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to close server", "err", err)
	}
}

// openPort opens the automation serial port. The panel side is fixed at
// 9600 8-O-1.
func openPort(device string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.OddParity,
		StopBits: serial.OneStopBit,
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = time.Second * 5
	bo.MaxElapsedTime = time.Minute

	var port serial.Port
	err := backoff.RetryNotify(func() error {
		var err error
		port, err = serial.Open(device, mode)
		return err
	}, bo, func(err error, _ time.Duration) {
		log.Error("could not open serial port", "err", err)
	})
	return port, err
}

func securityAccessories(sensors AlarmSensors, system *SecuritySystem) []*accessory.A {
	result := []*accessory.A{system.A}
	for _, s := range sensors {
		result = append(result, s.A)
	}
	return result
}

func boolAs[T int | float64](b bool) T {
	if b {
		return 1
	}
	return 0
}
