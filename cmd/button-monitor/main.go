// Command button-monitor reads the board push-buttons and reports them over MQTT and HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/sweeney/board-buttons/internal/board"
	"github.com/sweeney/board-buttons/internal/buttons"
	"github.com/sweeney/board-buttons/internal/gpio"
	"github.com/sweeney/board-buttons/internal/logic"
	"github.com/sweeney/board-buttons/internal/mqtt"
	"github.com/sweeney/board-buttons/internal/status"
	"github.com/sweeney/board-buttons/internal/web"
)

type options struct {
	board      string
	backend    string
	devmem     string
	gpioBase   uint64
	chip       string
	poll       time.Duration
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func main() {
	var opts options
	var level string

	pflag.StringVar(&opts.board, "board", board.EVK1100.Name, "Board wiring ("+strings.Join(board.Names(), "|")+")")
	pflag.StringVar(&opts.backend, "backend", "mmio", "GPIO backend (mmio|cdev|sim)")
	pflag.StringVar(&opts.devmem, "devmem", "/dev/mem", "Memory device mapped by the mmio backend")
	pflag.Uint64Var(&opts.gpioBase, "gpio-base", gpio.DefaultBase, "Physical address of the GPIO register block")
	pflag.StringVar(&opts.chip, "chip", "gpiochip0", "GPIO chip used by the cdev backend")
	pflag.DurationVar(&opts.poll, "poll", 20*time.Millisecond, "Button polling interval")
	pflag.StringVar(&opts.broker, "broker", "", "MQTT broker address (empty to disable)")
	pflag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	pflag.StringVar(&opts.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	pflag.BoolVar(&opts.printState, "print-state", false, "Print current button status and exit")
	pflag.StringVarP(&level, "level", "l", "info", "Set log level")
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(level); err != nil {
		logger.Warn().Str("level", level).Msg("unknown log level, using info")
		logger = logger.Level(zerolog.InfoLevel)
	} else {
		logger = logger.Level(lvl)
	}

	if err := run(opts, logger); err != nil {
		logger.Fatal().Err(err).Msg("fatal")
	}
}

// openBackend returns the register access for the named backend and a func
// releasing it.
func openBackend(opts options, cfg board.Config) (gpio.Controller, func() error, error) {
	switch opts.backend {
	case "sim":
		f := gpio.NewFakeController()
		// Pull-ups hold every pin high until something presses it.
		f.SetPinValues(cfg.Port, ^uint32(0))
		return f, func() error { return nil }, nil
	case "mmio":
		m, err := gpio.OpenMMIO(opts.devmem, uintptr(opts.gpioBase), gpio.NumPorts)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	case "cdev":
		c, err := gpio.NewCdev(opts.chip)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q (mmio|cdev|sim)", opts.backend)
}

// logicButtons describes the controller's buttons for the monitor.
func logicButtons(c *buttons.Controller) []logic.Button {
	out := make([]logic.Button, 0, len(buttons.All))
	for _, b := range buttons.All {
		out = append(out, logic.Button{Name: b.String(), Mask: c.Mask(b)})
	}
	return out
}

func run(opts options, logger zerolog.Logger) error {
	cfg, err := board.Lookup(opts.board)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	io, closeIO, err := openBackend(opts, cfg)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer closeIO()

	ctrl := buttons.New(io, cfg)
	ctrl.Initialize()
	gpioErr, _ := io.(errSource)
	if gpioErr != nil && gpioErr.Err() != nil {
		return fmt.Errorf("init buttons: %w", gpioErr.Err())
	}

	if opts.printState {
		s := ctrl.GetStatus()
		pressed := ctrl.PressedNames(s)
		if len(pressed) == 0 {
			pressed = []string{"none"}
		}
		fmt.Printf("status: 0x%08x pressed: %s\n", s, strings.Join(pressed, ","))
		return nil
	}

	log := logger.With().Str("board", cfg.Name).Logger()
	btns := logicButtons(ctrl)
	start := time.Now()

	tracker := status.NewTracker(start, status.Config{
		Board:       cfg.Name,
		Backend:     opts.backend,
		Port:        cfg.Port,
		Buttons:     btns,
		PollMs:      opts.poll.Milliseconds(),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Broker:      opts.broker,
		HTTPAddr:    opts.httpAddr,
	})
	metrics := web.NewMetrics(btns)

	l := &loop{
		log:       log,
		buttons:   ctrl,
		gpioErr:   gpioErr,
		monitor:   logic.NewMonitor(btns, start),
		tracker:   tracker,
		metrics:   metrics,
		heartbeat: opts.heartbeat,
		now:       time.Now,
	}

	if opts.broker != "" {
		publisher := mqtt.NewRealPublisher(opts.broker, "button-monitor-"+cfg.Name, log)
		defer publisher.Close()
		l.publisher = publisher
		l.mqttStatus = publisher
	}

	l.publishSystem("STARTUP", "", true)

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker, metrics)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", opts.httpAddr).Msg("http status server listening")
	}

	log.Info().
		Str("backend", opts.backend).
		Int("port", cfg.Port).
		Dur("poll", opts.poll).
		Str("broker", opts.broker).
		Dur("heartbeat", opts.heartbeat).
		Msg("started")

	ticker := time.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return l.run(ticker.C, sigCh)
}
