package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"joylink/utils"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "Path to joylink YAML config (built-in defaults if empty)")
		port     = flag.String("port", "", "Serial device, socket://host:port or can://iface (overrides config)")
		baud     = flag.Int("baud", 0, "Serial baud rate (overrides config)")
		node     = flag.String("node", "", "XBee destination node identifier (overrides config)")
		jsID     = flag.Int("joystick", 0, "Joystick id")
		profile  = flag.String("profile", "", "Controller profile name (default: device name)")
		logLevel = flag.String("log", "info", "trace|debug|info|warn|error|critical")
		logFile  = flag.String("logfile", "joylink.log", "Rotating log file")
		list     = flag.Bool("list", false, "List joysticks and exit")
		discover = flag.Bool("discover", false, "Print high axes and pressed buttons to build a new controller profile")
	)
	flag.Parse()

	if *list {
		if ListJoysticks(os.Stdout) == 0 {
			os.Exit(1)
		}
		return
	}

	if *discover {
		if err := runDiscover(*jsID); err != nil && !errors.Is(err, context.Canceled) {
			_, _ = os.Stderr.WriteString("ERROR: " + err.Error() + "\n")
			os.Exit(1)
		}
		return
	}

	log, err := utils.NewFileLogger(*logFile, utils.ParseLevel(*logLevel), true)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open " + *logFile + ": " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	cfg, err := utils.Load(*cfgPath)
	if err != nil {
		log.Critical("Config failed: %v", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Link.Port = *port
	}
	if *baud > 0 {
		cfg.Link.BaudRate = *baud
	}
	if *node != "" {
		cfg.Link.DestinationNode = *node
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := NewRunner(ctx, cfg, RunnerOptions{JoystickID: *jsID, ProfileName: *profile}, log)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNoController):
			log.Critical("Please connect a joystick and run again: %v", err)
		case errors.Is(err, utils.ErrUnknownController):
			log.Critical("Add a profile for this controller or pass -profile: %v", err)
		default:
			log.Critical("Startup failed: %v", err)
		}
		os.Exit(1)
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		os.Exit(1)
	}
}

func runDiscover(id int) error {
	src, err := OpenJoystick(id)
	if err != nil {
		return err
	}
	defer src.Close()
	fmt.Printf("Joystick: %s\n", src.Name())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Discover(ctx, src, os.Stdout, sleepContext)
}
