package engage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/herald/internal/analytics"
	"github.com/five82/herald/internal/api"
	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/prefs"
)

// ErrUnsupportedKind is returned for actions a content kind does not offer.
var ErrUnsupportedKind = errors.New("action not supported for content kind")

const defaultMutationTimeout = 10 * time.Second

// Options configure a Reconciler.
type Options struct {
	Cache  *prefs.Cache
	Remote api.Mutations
	Sink   analytics.Sink
	Logger *slog.Logger
	// Timeout bounds each remote mutation.
	Timeout time.Duration
	Now     func() time.Time
}

// Reconciler applies follow, bookmark and shout-out actions to the
// preference cache immediately and confirms them with the backend in the
// background. Remote mutations for one entity are sent in the order the
// actions happened; different entities proceed independently.
type Reconciler struct {
	cache   *prefs.Cache
	remote  api.Mutations
	sink    analytics.Sink
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	mu     sync.Mutex
	queues map[string]*queue
	wg     sync.WaitGroup
}

type queue struct {
	pending []job
}

type job struct {
	run   func(ctx context.Context) error
	drift bool
}

// New builds a Reconciler.
func New(opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Sink
	if sink == nil {
		sink = analytics.Multi(nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultMutationTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		cache:   opts.Cache,
		remote:  opts.Remote,
		sink:    sink,
		logger:  logger.With("component", "engage"),
		timeout: timeout,
		now:     now,
		queues:  make(map[string]*queue),
	}
}

// ToggleFollow flips the follow state of an owner and returns the new state.
// A second toggle while the first is unconfirmed is not suppressed; both
// mutations are sent in order.
func (r *Reconciler) ToggleFollow(owner content.OwnerKind, slug string, source analytics.NavigationSource) bool {
	followed := r.cache.ToggleFollowed(owner, slug)
	action := analytics.ActionUnfollow
	if followed {
		action = analytics.ActionFollow
	}
	deviceID := r.cache.DeviceID()
	r.emit(action, analytics.SubjectOfOwner(owner), slug, source)

	r.submit(prefs.FollowDriftKey(owner, slug), job{drift: true, run: func(ctx context.Context) error {
		return r.remote.SetFollow(ctx, owner, slug, deviceID, followed)
	}})
	return followed
}

// ToggleBookmark flips the saved state of item and returns the new state.
func (r *Reconciler) ToggleBookmark(item content.Item, source analytics.NavigationSource) bool {
	ref := item.Ref()
	saved := r.cache.ToggleSaved(ref)
	action := analytics.ActionUnbookmark
	if saved {
		action = analytics.ActionBookmark
	}
	deviceID := r.cache.DeviceID()
	r.emit(action, analytics.SubjectOfKind(ref.Kind), ref.ID, source)

	r.submit(prefs.BookmarkDriftKey(ref), job{drift: true, run: func(ctx context.Context) error {
		return r.remote.SetBookmark(ctx, ref, deviceID, saved)
	}})
	return saved
}

// IncrementShoutout applies one shout-out from this device to item. It
// reports false without side effects once the device has already shouted out
// the item. Flyers do not take shout-outs.
func (r *Reconciler) IncrementShoutout(item content.Item, source analytics.NavigationSource) (bool, error) {
	ref := item.Ref()
	if ref.Kind == content.KindFlyer {
		return false, ErrUnsupportedKind
	}
	if !r.cache.IncrementShoutout(item) {
		return false, nil
	}
	deviceID := r.cache.DeviceID()
	r.emit(analytics.ActionShoutout, analytics.SubjectOfKind(ref.Kind), ref.ID, source)

	r.submit(prefs.ShoutoutDriftKey(ref.ID), job{drift: true, run: func(ctx context.Context) error {
		return r.remote.IncrementShoutout(ctx, ref, deviceID)
	}})
	return true, nil
}

// Open records that item was opened. Opening a flyer also counts a click.
func (r *Reconciler) Open(item content.Item, source analytics.NavigationSource) {
	ref := item.Ref()
	r.emit(analytics.ActionOpen, analytics.SubjectOfKind(ref.Kind), ref.ID, source)
	if ref.Kind != content.KindFlyer {
		return
	}
	r.submit("click:"+ref.ID, job{run: func(ctx context.Context) error {
		return r.remote.RecordFlyerClick(ctx, ref.ID)
	}})
}

// Share records that item was shared.
func (r *Reconciler) Share(item content.Item, source analytics.NavigationSource) {
	ref := item.Ref()
	r.emit(analytics.ActionShare, analytics.SubjectOfKind(ref.Kind), ref.ID, source)
}

// FollowBusy reports whether a follow mutation for slug is unconfirmed.
func (r *Reconciler) FollowBusy(owner content.OwnerKind, slug string) bool {
	return r.busy(prefs.FollowDriftKey(owner, slug))
}

// BookmarkBusy reports whether a bookmark mutation for ref is unconfirmed.
func (r *Reconciler) BookmarkBusy(ref content.Ref) bool {
	return r.busy(prefs.BookmarkDriftKey(ref))
}

// ShoutoutBusy reports whether the shout-out for id is unconfirmed.
func (r *Reconciler) ShoutoutBusy(id string) bool {
	return r.busy(prefs.ShoutoutDriftKey(id))
}

// Wait blocks until every submitted mutation has settled.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

func (r *Reconciler) emit(action analytics.Action, subject analytics.Subject, entity string, source analytics.NavigationSource) {
	r.sink.Record(analytics.NewEvent(action, subject, entity, source, r.cache.DeviceID(), r.now()))
}

func (r *Reconciler) busy(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.queues[key]
	return ok
}

// submit queues j behind any outstanding mutation for the same key.
func (r *Reconciler) submit(key string, j job) {
	r.wg.Add(1)
	r.mu.Lock()
	q, running := r.queues[key]
	if !running {
		q = &queue{}
		r.queues[key] = q
	}
	q.pending = append(q.pending, j)
	r.mu.Unlock()

	if !running {
		go r.drain(key, q)
	}
}

// drain runs the queue for key until it is empty. The running job stays at
// the head of the queue so the entity reads as busy until it settles.
func (r *Reconciler) drain(key string, q *queue) {
	for {
		r.mu.Lock()
		j := q.pending[0]
		r.mu.Unlock()

		r.settle(key, j)

		r.mu.Lock()
		q.pending = q.pending[1:]
		done := len(q.pending) == 0
		if done {
			delete(r.queues, key)
		}
		r.mu.Unlock()
		r.wg.Done()
		if done {
			return
		}
	}
}

func (r *Reconciler) settle(key string, j job) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := j.run(ctx)
	if err != nil {
		r.logger.Warn("mutation failed", "entity", key, "error", err)
		if j.drift {
			r.cache.MarkDrift(key)
		}
		return
	}
	if j.drift {
		r.cache.ClearDrift(key)
	}
}
