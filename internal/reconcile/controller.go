// Package reconcile owns the view model and keeps it consistent with the contract: it runs the
// mount and refresh passes, the refresh cascade after every confirmed action, and the four
// mutating actions.
package reconcile

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"voting-monitor/internal/catalog"
	"voting-monitor/internal/collector"
	"voting-monitor/internal/contract"
	"voting-monitor/internal/logger"
	"voting-monitor/internal/models"
	"voting-monitor/internal/roles"
	"voting-monitor/internal/timeline"
)

// Reader is every contract read the controller's resolvers need.
type Reader interface {
	roles.Reader
	catalog.Reader
}

// LogSource fetches the contract's historical logs.
type LogSource interface {
	Collect(ctx context.Context) collector.Batch
	ProposalIDs(ctx context.Context) ([]uint64, error)
}

// Wallet is the external signing capability.
type Wallet interface {
	Account() common.Address
	Submit(ctx context.Context, call contract.Call) (*types.Transaction, error)
	Confirm(ctx context.Context, tx *types.Transaction) error
}

// Archive receives every published timeline.
type Archive interface {
	SaveTimeline(ctx context.Context, networkID uint64, records []models.TimelineRecord) error
}

type State int32

const (
	StateUnmounted State = iota
	StateMounting
	StateIdle
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounting:
		return "mounting"
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Options configure a Controller.
type Options struct {
	NetworkID uint64
	// Supported is false when NetworkID has no binding; reads and actions are then disabled.
	Supported bool
	// Account is observed when Wallet is nil.
	Account             common.Address
	Wallet              Wallet
	Archive             Archive
	KeepPartialTimeline bool
}

// viewSlice names a part of the view model that one pass recomputes as a whole.
type viewSlice int

const (
	sliceRoles viewSlice = iota
	sliceTimeline
	sliceCatalog
	sliceWinner
)

var sliceNames = [...]string{"roles", "timeline", "catalog", "winner"}

type Controller struct {
	reader      Reader
	logs        LogSource
	wallet      Wallet
	archive     Archive
	networkID   uint64
	supported   bool
	account     common.Address
	keepPartial bool
	log         *logger.Logger

	mu        sync.Mutex
	state     State
	inflight  int
	view      models.ViewModel
	seq       uint64
	published [len(sliceNames)]uint64
	subs      []chan models.ViewModel
	closed    bool
}

// New builds an unmounted controller. reader and logs may be nil when opts.Supported is false.
func New(reader Reader, logs LogSource, opts Options, log *logger.Logger) *Controller {
	account := opts.Account
	if opts.Wallet != nil {
		account = opts.Wallet.Account()
	}
	supported := opts.Supported && reader != nil && logs != nil
	c := &Controller{
		reader:      reader,
		logs:        logs,
		wallet:      opts.Wallet,
		archive:     opts.Archive,
		networkID:   opts.NetworkID,
		supported:   supported,
		account:     account,
		keepPartial: opts.KeepPartialTimeline,
		log:         log.Named("reconcile"),
	}
	c.view = models.ViewModel{
		NetworkID: opts.NetworkID,
		Supported: supported,
		Account:   account,
		Connected: account != (common.Address{}),
		State:     StateUnmounted.String(),
		Roles:     models.UnknownRoles(),
		Proposals: []models.Proposal{},
		Timeline:  []models.TimelineRecord{},
		Actions: map[models.Action]models.ActionStatus{
			models.ActionRegisterVoter:  {},
			models.ActionChangePhase:    {},
			models.ActionSubmitProposal: {},
			models.ActionCastVote:       {},
		},
	}
	return c
}

// Account returns the observed account, zero when none is connected.
func (c *Controller) Account() common.Address {
	return c.account
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns a copy of the current view model.
func (c *Controller) View() models.ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Clone()
}

// Subscribe returns a channel receiving a copy of the view model after every change. Sends never
// block: a subscriber that falls behind misses intermediate views, and the oldest buffered view
// is evicted so the latest one always arrives. buffer is at least 1.
func (c *Controller) Subscribe(buffer int) <-chan models.ViewModel {
	ch := make(chan models.ViewModel, max(buffer, 1))
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Close closes every subscription channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

// Mount runs the first pass: roles and timeline concurrently, then Idle whatever failed.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnmounted {
		c.mu.Unlock()
		return nil
	}
	c.state = StateMounting
	c.view.State = c.state.String()
	c.notifyLocked()
	c.mu.Unlock()

	if c.supported {
		seq, log := c.beginPass("mount")
		started := time.Now()
		becameVoter, phase := c.resolveRolesAndTimeline(ctx, seq, log)
		if becameVoter {
			c.refreshCatalog(ctx, seq, log)
		}
		c.refreshWinner(ctx, seq, phase, log)
		log.Info().Dur("took", time.Since(started)).Msg("mounted")
	} else {
		c.log.Warn().Uint64("network", c.networkID).Msg("network not supported, reads disabled")
	}

	c.mu.Lock()
	c.state = StateIdle
	c.view.State = c.state.String()
	c.notifyLocked()
	c.mu.Unlock()
	return nil
}

// Refresh runs an explicit full pass. It does not move the refresh counter, so two passes over an
// unchanged chain leave identical views.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.enter() {
		return ErrNotMounted
	}
	defer c.leave()
	if !c.supported {
		return nil
	}

	seq, log := c.beginPass("refresh")
	_, phase := c.resolveRolesAndTimeline(ctx, seq, log)
	c.mu.Lock()
	voter := c.view.Roles.IsVoter
	c.mu.Unlock()
	if voter {
		c.refreshCatalog(ctx, seq, log)
	}
	c.refreshWinner(ctx, seq, phase, log)
	log.Debug().Msg("refresh done")
	return nil
}

// Cascade is the refresh run once after every confirmed action: the phase is re-read, the
// catalog rebuilt for a voter, the winner read once tallied, the timeline re-fetched, and the
// refresh counter moved so that independent phase displays read again.
func (c *Controller) Cascade(ctx context.Context) {
	if !c.enter() {
		return
	}
	defer c.leave()

	if c.supported {
		seq, log := c.beginPass("cascade")

		c.mu.Lock()
		prior := c.view.Roles.Phase
		voter := c.view.Roles.IsVoter
		c.mu.Unlock()

		phase := roles.ResolvePhase(ctx, c.reader, prior, log)
		c.publish(seq, sliceRoles, log, func(v *models.ViewModel) {
			v.Roles.Phase = phase
		})
		if voter {
			c.refreshCatalog(ctx, seq, log)
		}
		c.refreshWinner(ctx, seq, phase, log)
		c.refreshTimeline(ctx, seq, log)
	}

	c.mu.Lock()
	c.view.RefreshCounter++
	c.notifyLocked()
	c.mu.Unlock()
}

// enter marks a pass in flight. It reports false before Mount.
func (c *Controller) enter() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnmounted {
		return false
	}
	c.inflight++
	if c.state == StateIdle {
		c.state = StateRefreshing
		c.view.State = c.state.String()
		c.notifyLocked()
	}
	return true
}

func (c *Controller) leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight == 0 {
		return
	}
	c.inflight--
	if c.inflight == 0 && c.state == StateRefreshing {
		c.state = StateIdle
		c.view.State = c.state.String()
		c.notifyLocked()
	}
}

// beginPass takes the next pass sequence number and a logger tagged with a trace id.
func (c *Controller) beginPass(kind string) (uint64, *logger.Logger) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	return seq, c.log.WithStr("pass", uuid.NewString()).WithStr("kind", kind).WithStr("seq", strconv.FormatUint(seq, 10))
}

// resolveRolesAndTimeline runs the role resolver and the timeline fetch concurrently and
// publishes both. It reports whether the account just became a voter, and the phase now shown.
func (c *Controller) resolveRolesAndTimeline(ctx context.Context, seq uint64, log *logger.Logger) (bool, models.Phase) {
	c.mu.Lock()
	prior := c.view.Roles
	c.mu.Unlock()

	var (
		g      errgroup.Group
		state  models.AccountRoleState
		events []models.TimelineRecord
	)
	g.Go(func() error {
		state = roles.Resolve(ctx, c.reader, c.account, prior, log)
		return nil
	})
	g.Go(func() error {
		events = timeline.Build(c.logs.Collect(ctx), c.keepPartial)
		return nil
	})
	_ = g.Wait()

	var becameVoter bool
	c.publish(seq, sliceRoles, log, func(v *models.ViewModel) {
		becameVoter = !v.Roles.IsVoter && state.IsVoter
		v.Roles = state
		if !state.IsVoter {
			v.Proposals = []models.Proposal{}
		}
	})
	c.publishTimeline(ctx, seq, events, log)

	c.mu.Lock()
	phase := c.view.Roles.Phase
	c.mu.Unlock()
	return becameVoter, phase
}

func (c *Controller) refreshTimeline(ctx context.Context, seq uint64, log *logger.Logger) {
	c.publishTimeline(ctx, seq, timeline.Build(c.logs.Collect(ctx), c.keepPartial), log)
}

func (c *Controller) publishTimeline(ctx context.Context, seq uint64, events []models.TimelineRecord, log *logger.Logger) {
	ok := c.publish(seq, sliceTimeline, log, func(v *models.ViewModel) {
		v.Timeline = events
	})
	if !ok || c.archive == nil || len(events) == 0 {
		return
	}
	if err := c.archive.SaveTimeline(ctx, c.networkID, events); err != nil {
		log.Warn().Err(err).Msg("archive timeline failed")
	}
}

// refreshCatalog rebuilds the catalog from the proposal logs. A failed log fetch publishes an
// empty catalog.
func (c *Controller) refreshCatalog(ctx context.Context, seq uint64, log *logger.Logger) {
	proposals := []models.Proposal{}
	ids, err := c.logs.ProposalIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("proposal ids fetch failed")
	} else {
		proposals = catalog.Build(ctx, ids, c.reader, c.account, log)
	}
	c.publish(seq, sliceCatalog, log, func(v *models.ViewModel) {
		if v.Roles.IsVoter {
			v.Proposals = proposals
		}
	})
}

// refreshWinner reads the winner when phase is VotesTallied and clears it otherwise.
func (c *Controller) refreshWinner(ctx context.Context, seq uint64, phase models.Phase, log *logger.Logger) {
	var winner *models.Winner
	if phase == models.PhaseVotesTallied {
		w, err := catalog.Winner(ctx, c.reader, c.account)
		if err != nil {
			log.Warn().Err(err).Msg("winner read failed")
		}
		winner = w
	}
	c.publish(seq, sliceWinner, log, func(v *models.ViewModel) {
		v.Winner = winner
	})
}

// publish applies a recomputed slice unless a newer pass already published that slice. Passes
// are never cancelled, so a slow older pass may settle after a newer one.
func (c *Controller) publish(seq uint64, s viewSlice, log *logger.Logger, apply func(v *models.ViewModel)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.published[s] {
		log.Debug().Str("slice", sliceNames[s]).Uint64("newer", c.published[s]).Msg("stale pass result dropped")
		return false
	}
	c.published[s] = seq
	apply(&c.view)
	c.notifyLocked()
	return true
}

func (c *Controller) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}
	snapshot := c.view.Clone()
	for _, ch := range c.subs {
		sendLatest(ch, snapshot.Clone())
	}
}

// sendLatest delivers v without blocking, dropping the oldest buffered view when ch is full.
// Callers hold c.mu, so no other sender competes for the freed slot.
func sendLatest(ch chan models.ViewModel, v models.ViewModel) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
