// Package reconcile drives bridges toward their configured state. A sync pass
// runs the vendor hooks around each bridge update and detaches interfaces that
// no longer belong to a bridge.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/plexsphere/bridgeutil/internal/fsutil"
	"github.com/plexsphere/bridgeutil/internal/hal"
)

// BridgeSpec is the desired configuration of one bridge.
type BridgeSpec struct {
	Instance hal.ConfigInstance
	Details  *hal.BridgeDetails
}

// Validate checks the instance and the bridge details.
func (s BridgeSpec) Validate() error {
	if !s.Instance.Valid() {
		return fmt.Errorf("reconcile: %w: config instance %d", hal.ErrOutOfRange, int(s.Instance))
	}
	if err := s.Details.Validate(); err != nil {
		return fmt.Errorf("reconcile: %s: %w", s.Instance, err)
	}
	return nil
}

// MemberLister reports the interfaces currently enslaved to a bridge.
type MemberLister interface {
	BridgeMembers(ctx context.Context, bridge string) ([]string, error)
}

// Reconciler applies a fixed set of BridgeSpecs through a hal.HAL. All bridge
// operations of a Reconciler are serialised, which also guards the shared Env.
type Reconciler struct {
	hal       hal.HAL
	lister    MemberLister
	env       *hal.Env
	specs     []BridgeSpec
	cfg       Config
	logger    *slog.Logger
	snapshot  *statusSnapshot
	triggerCh chan struct{}

	mu sync.Mutex
}

// NewReconciler creates a Reconciler. A nil lister disables stale member
// detection and a nil env is replaced by hal.NewEnv().
// Config defaults are applied automatically.
func NewReconciler(h hal.HAL, lister MemberLister, env *hal.Env, specs []BridgeSpec, cfg Config, logger *slog.Logger) *Reconciler {
	cfg.ApplyDefaults()
	if env == nil {
		env = hal.NewEnv()
	}
	return &Reconciler{
		hal:       h,
		lister:    lister,
		env:       env,
		specs:     specs,
		cfg:       cfg,
		logger:    logger,
		snapshot:  newStatusSnapshot(),
		triggerCh: make(chan struct{}, 1),
	}
}

// Apply creates or updates the bridge in spec: pre-config hook, bridge
// create, post-config hook. A pre-config failure aborts before the bridge is
// touched. When the update fails the post-config hook is skipped and the
// pre-config changes stay in place. A post-config failure is returned but the
// bridge is left as configured.
func (r *Reconciler) Apply(ctx context.Context, spec BridgeSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configure(ctx, spec, hal.CreateBridge)
}

// Remove deletes the bridge in spec, wrapped in the same hooks as Apply.
func (r *Reconciler) Remove(ctx context.Context, spec BridgeSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configure(ctx, spec, hal.DeleteBridge)
}

// Status returns the outcome of the last sync pass and whether one has run.
func (r *Reconciler) Status() (Status, bool) {
	return r.snapshot.Get()
}

// Sync runs one pass over every configured bridge. Each bridge is applied,
// then interfaces enslaved to it but absent from its spec are detached one
// by one. A failing bridge does not stop the pass; all failures are joined.
func (r *Reconciler) Sync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	status := Status{Timestamp: start.UTC()}

	var errs []error
	for _, spec := range r.specs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		detached, diff, err := r.syncBridge(ctx, spec)
		if err != nil {
			errs = append(errs, err)
		}
		status.Bridges = append(status.Bridges, buildBridgeStatus(spec, detached, diff, err))
	}

	status.SyncMembers = r.env.SyncMembers
	status.Duration = time.Since(start).String()
	r.snapshot.Update(status)

	if r.cfg.StatusPath != "" {
		if err := fsutil.WriteJSONAtomic(r.cfg.StatusPath, status, 0o644); err != nil {
			r.logger.Warn("write status failed",
				"component", "reconcile",
				"path", r.cfg.StatusPath,
				"error", err,
			)
		}
	}

	return errors.Join(errs...)
}

// TriggerSync requests an immediate sync pass.
// Multiple rapid calls are coalesced — only one extra pass runs.
func (r *Reconciler) TriggerSync() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the sync loop. It blocks until ctx is cancelled.
// The first pass runs immediately; later passes run at cfg.Interval
// or when TriggerSync is called.
func (r *Reconciler) Run(ctx context.Context) error {
	if r.hal == nil {
		return errors.New("reconcile: hal is nil")
	}

	r.logger.Info("reconciler started",
		"component", "reconcile",
		"bridges", len(r.specs),
		"interval", r.cfg.Interval,
	)

	r.runCycle(ctx)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped", "component", "reconcile")
			return ctx.Err()

		case <-ticker.C:
			r.runCycle(ctx)

		case <-r.triggerCh:
			r.runCycle(ctx)
			ticker.Reset(r.cfg.Interval)
		}
	}
}

func (r *Reconciler) runCycle(ctx context.Context) {
	start := time.Now()
	err := r.safeSync(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("sync pass failed",
				"component", "reconcile",
				"duration", time.Since(start),
				"error", err,
			)
		}
		return
	}
	r.logger.Debug("sync pass completed",
		"component", "reconcile",
		"duration", time.Since(start),
	)
}

// safeSync calls Sync with panic recovery.
func (r *Reconciler) safeSync(ctx context.Context) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("sync panicked: %v\n%s", v, debug.Stack())
		}
	}()
	return r.Sync(ctx)
}

// syncBridge applies spec and detaches stale members. r.mu must be held.
func (r *Reconciler) syncBridge(ctx context.Context, spec BridgeSpec) ([]string, MemberDiff, error) {
	if err := spec.Validate(); err != nil {
		return nil, MemberDiff{}, err
	}
	if err := r.configure(ctx, spec, hal.CreateBridge); err != nil {
		return nil, MemberDiff{}, err
	}
	if r.lister == nil {
		return nil, MemberDiff{}, nil
	}

	name := spec.Details.BridgeName
	current, err := r.lister.BridgeMembers(ctx, name)
	if err != nil {
		return nil, MemberDiff{}, fmt.Errorf("reconcile: %s: list members: %w", name, err)
	}
	diff := ComputeMemberDiff(spec.Details, current)

	r.env.BridgeOpInProgress = true
	defer func() { r.env.BridgeOpInProgress = false }()

	var detached []string
	var errs []error
	for _, iface := range diff.Stale {
		if err := r.hal.UpdateBridgeInfo(ctx, r.env, spec.Details, iface, hal.DeleteBridge, hal.IfaceOther); err != nil {
			errs = append(errs, fmt.Errorf("reconcile: %s: detach %s: %w", name, iface, err))
			continue
		}
		r.env.SyncMembers++
		detached = append(detached, iface)
		r.logger.Info("stale member detached",
			"component", "reconcile",
			"bridge", name,
			"interface", iface,
		)
	}
	return detached, diff, errors.Join(errs...)
}

// configure runs pre-config, the bridge operation and post-config for spec.
// r.mu must be held.
func (r *Reconciler) configure(ctx context.Context, spec BridgeSpec, op hal.BridgeOperation) error {
	name := spec.Details.BridgeName

	r.env.BridgeOpInProgress = true
	defer func() { r.env.BridgeOpInProgress = false }()

	if err := r.hal.HandlePreConfigVendor(ctx, r.env, spec.Details, spec.Instance); err != nil {
		return fmt.Errorf("reconcile: %s: pre-config %s: %w", name, spec.Instance, err)
	}

	if err := r.hal.UpdateBridgeInfo(ctx, r.env, spec.Details, "", op, hal.IfaceBridge); err != nil {
		r.logger.Warn("bridge update failed, pre-config changes left in place",
			"component", "reconcile",
			"bridge", name,
			"instance", spec.Instance.String(),
			"operation", op.String(),
			"error", err,
		)
		return fmt.Errorf("reconcile: %s: %s: %w", name, op, err)
	}

	if err := r.hal.HandlePostConfigVendor(ctx, r.env, spec.Details, spec.Instance); err != nil {
		return fmt.Errorf("reconcile: %s: post-config %s: %w", name, spec.Instance, err)
	}

	r.logger.Debug("bridge configured",
		"component", "reconcile",
		"bridge", name,
		"instance", spec.Instance.String(),
		"operation", op.String(),
	)
	return nil
}
