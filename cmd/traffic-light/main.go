// Command traffic-light cycles three GPIO LEDs through red, yellow and green
// on a repeating timer while the main loop prints a heartbeat.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/traffic-light/internal/controller"
	"github.com/sweeney/traffic-light/internal/gpio"
	"github.com/sweeney/traffic-light/internal/logic"
	"github.com/sweeney/traffic-light/internal/mqtt"
	"github.com/sweeney/traffic-light/internal/status"
	"github.com/sweeney/traffic-light/internal/timer"
	"github.com/sweeney/traffic-light/internal/web"
)

const heartbeatMessage = "Semáforo funcionando..."

type options struct {
	chip      string
	pins      gpio.Pins
	period    time.Duration
	heartbeat time.Duration
	broker    string
	httpAddr  string
}

func main() {
	var opts options
	flag.StringVar(&opts.chip, "chip", gpio.DefaultChip, "GPIO chip name")
	flag.IntVar(&opts.pins.Red, "pin-red", gpio.DefaultPinRed, "Line offset for the red LED")
	flag.IntVar(&opts.pins.Yellow, "pin-yellow", gpio.DefaultPinYellow, "Line offset for the yellow LED")
	flag.IntVar(&opts.pins.Green, "pin-green", gpio.DefaultPinGreen, "Line offset for the green LED")
	flag.DurationVar(&opts.period, "period", 3*time.Second, "Signal phase duration")
	flag.DurationVar(&opts.heartbeat, "heartbeat", time.Second, "Heartbeat print interval")
	flag.StringVar(&opts.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.StringVar(&opts.httpAddr, "http", "", "HTTP status address (empty to disable)")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func (o options) validate() error {
	if o.period <= 0 {
		return fmt.Errorf("period must be positive, got %v", o.period)
	}
	if o.heartbeat <= 0 {
		return fmt.Errorf("heartbeat must be positive, got %v", o.heartbeat)
	}
	if err := o.pins.Validate(); err != nil {
		return fmt.Errorf("pins: %w", err)
	}
	return nil
}

func (o options) statusConfig() status.Config {
	return status.Config{
		PeriodMs:    o.period.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Chip:        o.chip,
		PinRed:      o.pins.Red,
		PinYellow:   o.pins.Yellow,
		PinGreen:    o.pins.Green,
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
	}
}

func run(opts options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	// Configure the three lamps as outputs
	outputs, err := gpio.NewRealWriter(opts.chip, opts.pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer func() {
		if err := outputs.Close(); err != nil {
			log.Printf("gpio close: %v", err)
		}
	}()

	tracker := status.NewTracker(time.Now(), opts.statusConfig())

	// Initialize MQTT (optional)
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if opts.broker != "" {
		p := mqtt.NewRealPublisher(opts.broker)
		defer p.Close()
		publisher, mqttStatus = p, p
		tracker.SetMQTTConnected(p.IsConnected())

		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server (optional)
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	ctrl := controller.New(logic.NewSequencer(), outputs, os.Stdout, publisher, tracker, time.Now)
	rt, err := timer.Start(opts.period, ctrl.Fire)
	if err != nil {
		return fmt.Errorf("start timer: %w", err)
	}
	defer rt.Stop()

	log.Printf("started: chip=%s pins=%d/%d/%d period=%v heartbeat=%v",
		opts.chip, opts.pins.Red, opts.pins.Yellow, opts.pins.Green, opts.period, opts.heartbeat)

	ticker := time.NewTicker(opts.heartbeat)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runLoop(os.Stdout, publisher, mqttStatus, tracker, time.Now, ticker.C, sigCh)
}

// runLoop is the heartbeat reporter. It prints once immediately and then on
// every tick, until a signal arrives. It never touches the signal phase.
func runLoop(console io.Writer, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	beat := func() {
		fmt.Fprintln(console, heartbeatMessage)
		if tracker != nil {
			tracker.RecordHeartbeat()
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}

	beat()
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if publisher == nil {
				return nil
			}
			name := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    name,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", name)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			beat()
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
