package notify

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultInterval is how often counts are refetched when no interval is configured.
const DefaultInterval = 120 * time.Second

// Config controls the polling cadence.
type Config struct {
	// Interval between fetches. Zero means DefaultInterval.
	Interval time.Duration
	// Jitter is the upper bound of a random delay added to each wait.
	Jitter time.Duration
}

// Poller refetches the notification counts on a fixed cadence.
type Poller struct {
	source  CountsSource
	config  Config
	metrics *Metrics

	// after returns a channel that fires once d has elapsed.
	after func(d time.Duration) <-chan time.Time
	// jitter returns a random duration in [0, n).
	jitter func(n time.Duration) time.Duration
	now    func() time.Time

	mu       sync.Mutex
	counts   Counts
	fetched  bool
	running  bool
	stopCh   chan struct{}
	onUpdate func(Counts)
}

// NewPoller creates a poller. metrics may be nil.
func NewPoller(source CountsSource, config Config, metrics *Metrics) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Jitter < 0 {
		config.Jitter = 0
	}
	return &Poller{
		source:  source,
		config:  config,
		metrics: metrics,
		after:   time.After,
		jitter:  func(n time.Duration) time.Duration { return rand.N(n) },
		now:     time.Now,
	}
}

// OnUpdate registers fn to be called whenever the counts change.
// It must be set before Start.
func (p *Poller) OnUpdate(fn func(Counts)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Counts returns the latest counts and whether any fetch has succeeded yet.
func (p *Poller) Counts() (Counts, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts, p.fetched
}

// Start fetches immediately, then after every interval until ctx is done or
// Stop is called. It blocks; run it in its own goroutine. A stopped poller may
// be started again.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	p.stopCh = stop
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.stopCh == stop {
			p.running = false
		}
		p.mu.Unlock()
	}()

	slog.Info("notification poller started",
		"interval", p.config.Interval,
		"jitter", p.config.Jitter,
	)

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("notification poller stopped by context")
			return
		case <-stop:
			slog.Info("notification poller stopped")
			return
		case <-p.after(p.wait()):
			p.Poll(ctx)
		}
	}
}

// Stop ends a running Start loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.running = false
		close(p.stopCh)
	}
}

// Poll fetches the counts once. A failed fetch keeps the previous counts.
func (p *Poller) Poll(ctx context.Context) {
	c, err := p.source.NotificationCounts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("fetching notification counts", "error", err)
		if p.metrics != nil {
			p.metrics.PollErrors.Inc()
		}
		return
	}

	if p.metrics != nil {
		p.metrics.observe(c, float64(p.now().Unix()))
	}

	p.mu.Lock()
	changed := !p.fetched || c != p.counts
	p.counts = c
	p.fetched = true
	fn := p.onUpdate
	p.mu.Unlock()

	if changed && fn != nil {
		fn(c)
	}
}

func (p *Poller) wait() time.Duration {
	d := p.config.Interval
	if p.config.Jitter > 0 {
		d += p.jitter(p.config.Jitter)
	}
	return d
}
