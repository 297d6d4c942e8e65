package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Orchestrator issues playback commands against the user's output
// devices. The remote player owns all playback state: the device list is
// fetched fresh immediately before every action and never cached.
type Orchestrator struct {
	catalog Catalog
	cfg     AppConfig
	logger  *zap.Logger
}

func NewOrchestrator(catalog Catalog, cfg AppConfig, logger *zap.Logger) *Orchestrator {
	if cfg.DevicePollInterval <= 0 {
		cfg.DevicePollInterval = 2 * time.Second
	}

	return &Orchestrator{
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
	}
}

// Play starts playback of the target track on the first listed device.
// Device-list and playback-start failures are hard failures reported to
// the caller; playback cannot proceed without a target.
func (o *Orchestrator) Play(ctx context.Context, target PlaybackTarget) (PlaybackOutcome, error) {
	device, err := o.selectDevice(ctx)
	if err != nil {
		return PlaybackOutcome{}, err
	}

	if err := o.catalog.StartPlayback(ctx, device.ID, target.TrackURI); err != nil {
		return PlaybackOutcome{}, remoteErr("start playback", err)
	}

	o.logger.Info("playback started",
		zap.String("trackURI", target.TrackURI),
		zap.String("deviceID", device.ID))

	return PlaybackOutcome{DeviceID: device.ID}, nil
}

// PlayContext starts playback of a context URI (e.g. a playlist) on the
// first listed device.
func (o *Orchestrator) PlayContext(ctx context.Context, contextURI string) (PlaybackOutcome, error) {
	device, err := o.selectDevice(ctx)
	if err != nil {
		return PlaybackOutcome{}, err
	}

	if err := o.catalog.StartContextPlayback(ctx, device.ID, contextURI); err != nil {
		return PlaybackOutcome{}, remoteErr("start context playback", err)
	}

	o.logger.Info("context playback started",
		zap.String("contextURI", contextURI),
		zap.String("deviceID", device.ID))

	return PlaybackOutcome{DeviceID: device.ID}, nil
}

func (o *Orchestrator) Pause(ctx context.Context) error {
	if err := o.catalog.PausePlayback(ctx); err != nil {
		return remoteErr("pause", err)
	}
	return nil
}

func (o *Orchestrator) SkipNext(ctx context.Context) error {
	if err := o.catalog.SkipNext(ctx); err != nil {
		return remoteErr("skip next", err)
	}
	return nil
}

// selectDevice returns the first device the catalog lists. No preference
// ordering is applied beyond catalog-returned order.
func (o *Orchestrator) selectDevice(ctx context.Context) (Device, error) {
	devices, err := o.catalog.ListDevices(ctx)
	if err != nil {
		return Device{}, remoteErr("list devices", err)
	}
	if len(devices) == 0 {
		return Device{}, ErrNoActiveDevice
	}
	return devices[0], nil
}

// WaitForDevice polls the device list until one appears or the boot-wait
// budget runs out. It backs a single bounded retry while the playback
// client starts up, not unbounded polling.
func (o *Orchestrator) WaitForDevice(ctx context.Context) (Device, error) {
	deadline := time.Now().Add(o.cfg.DeviceBootWait)

	for {
		device, err := o.selectDevice(ctx)
		if err == nil {
			return device, nil
		}
		if !errors.Is(err, ErrNoActiveDevice) {
			return Device{}, err
		}
		if !time.Now().Before(deadline) {
			return Device{}, ErrNoActiveDevice
		}

		select {
		case <-ctx.Done():
			return Device{}, ctx.Err()
		case <-time.After(o.cfg.DevicePollInterval):
		}
	}
}
