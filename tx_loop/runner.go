package main

import (
	"context"
	"fmt"
	"time"

	mapping "joylink/tx_loop/input_mapping"
	"joylink/utils"
)

// EventSource yields pending controller events without blocking.
type EventSource interface {
	Poll() ([]mapping.Event, error)
	Close() error
}

type RunnerOptions struct {
	JoystickID int
	// ProfileName overrides the profile chosen from the device name.
	ProfileName string
}

// RunStats counts what the loop did. It is only touched by the loop goroutine.
type RunStats struct {
	Ticks       uint64
	Sent        uint64
	Skipped     uint64
	WriteErrors uint64
	PollErrors  uint64
}

type Runner struct {
	cfg    utils.LinkConfig
	log    *utils.Logger
	source EventSource
	mapper *mapping.Mapper
	writer utils.FrameWriter

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	watchdog time.Duration
	stats    RunStats
}

// NewRunner opens the joystick, selects its profile and opens the link.
// Failures are returned as wrapped utils.ErrNoController,
// utils.ErrUnknownController or utils.ErrLinkUnavailable.
func NewRunner(ctx context.Context, cfg *utils.Config, opts RunnerOptions, log *utils.Logger) (*Runner, error) {
	source, err := OpenJoystick(opts.JoystickID)
	if err != nil {
		return nil, err
	}
	log.Info("Joystick: %s (axes=%d buttons=%d)", source.Name(), source.AxisCount(), source.ButtonCount())

	profileName := source.Name()
	if opts.ProfileName != "" {
		profileName = opts.ProfileName
	}
	profile, err := cfg.ProfileSet().Lookup(profileName)
	if err != nil {
		source.Close()
		return nil, err
	}
	log.Info("Profile: %s usable_axes=%v", profile.Name, profile.UsableAxes())

	writer, err := utils.OpenLink(ctx, cfg.Link)
	if err != nil {
		source.Close()
		return nil, err
	}

	if cfg.Link.DestinationNode != "" {
		if err := addressLink(ctx, writer, cfg.Link.DestinationNode, log); err != nil {
			writer.Close()
			source.Close()
			return nil, err
		}
	}

	state := utils.NewChannelState(cfg.Limits)
	return newRunner(cfg.Link, source, mapping.NewMapper(profile, state, log), writer, log), nil
}

func newRunner(cfg utils.LinkConfig, source EventSource, mapper *mapping.Mapper, writer utils.FrameWriter, log *utils.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		log:    log,
		source: source,
		mapper: mapper,
		writer: writer,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func addressLink(ctx context.Context, writer utils.FrameWriter, node string, log *utils.Logger) error {
	sw, ok := writer.(*utils.StreamWriter)
	if !ok {
		return fmt.Errorf("destination node %q needs a serial or socket link", node)
	}
	log.Info("Addressing XBee destination node %s", node)
	if err := SetDestinationNode(ctx, sw.Raw(), node, sleepContext); err != nil {
		return fmt.Errorf("address xbee: %w", err)
	}
	return nil
}

func (r *Runner) Close() {
	if r.source != nil {
		_ = r.source.Close()
	}
	if r.writer != nil {
		_ = r.writer.Close()
	}
}

func (r *Runner) Stats() RunStats { return r.stats }

// Run drains input and emits one frame per tick until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting TX: port=%s tick=%s heartbeat=%s send_late=%v",
		r.cfg.Port, r.cfg.TickPeriod(), r.cfg.Heartbeat(), r.cfg.SendLateFrames)

	for {
		if err := ctx.Err(); err != nil {
			r.log.Warn("Context canceled; stopping TX")
			r.log.Info("Completed TX. frames_sent=%d skipped=%d write_errors=%d",
				r.stats.Sent, r.stats.Skipped, r.stats.WriteErrors)
			return err
		}
		r.tick(ctx)
	}
}

// tick runs one drain-then-emit cycle. A tick whose drain used up the whole
// period sends no frame unless SendLateFrames is set.
func (r *Runner) tick(ctx context.Context) {
	started := r.now()
	r.stats.Ticks++

	r.drain()

	remaining := r.cfg.TickPeriod() - r.now().Sub(started)
	switch {
	case remaining > 0:
		if err := r.sleep(ctx, remaining); err != nil {
			return
		}
		r.emit(ctx)
	case r.cfg.SendLateFrames:
		r.emit(ctx)
	default:
		r.stats.Skipped++
		r.log.Debug("Tick overran by %s; frame skipped", -remaining)
	}

	r.watchdog += r.now().Sub(started)
	if r.watchdog > r.cfg.Heartbeat() {
		r.log.Info("%s [%s]", r.mapper.State(), r.mapper.State().Snapshot())
		r.watchdog = 0
	}
}

func (r *Runner) drain() {
	events, err := r.source.Poll()
	if err != nil {
		r.stats.PollErrors++
		r.log.Error("Poll failed: %v", err)
		return
	}
	for _, e := range events {
		r.mapper.Apply(e)
	}
}

func (r *Runner) emit(ctx context.Context) {
	frame := utils.EncodeFrame(r.mapper.State().Snapshot())
	if err := r.writer.WriteFrame(ctx, frame); err != nil {
		r.stats.WriteErrors++
		r.log.Error("Transmit failed: %v", err)
		return
	}
	r.stats.Sent++
	r.log.Trace("TX data=% X", frame.Bytes())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
