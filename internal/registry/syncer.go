package registry

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/keyward/keyward/internal/accesslist"
	"github.com/keyward/keyward/internal/logging"
	"github.com/keyward/keyward/internal/onewire"
)

const (
	// TokenHeader carries the registry access token on every fetch.
	TokenHeader = "X-TOKEN"

	// DefaultInterval is the pause between refresh cycles.
	DefaultInterval = 60 * time.Second

	// DefaultTimeout bounds a single registry request.
	DefaultTimeout = 10 * time.Second

	// maxLineLength caps a single registry line. A body with a longer
	// line is malformed and aborts the cycle rather than being diffed
	// half-parsed.
	maxLineLength = 1 << 20
)

// Saver persists a snapshot of the authorized list. *persist.Store
// satisfies it; tests substitute recorders.
type Saver interface {
	Save(ids []onewire.TokenID) error
}

// Options configures a Syncer.
type Options struct {
	// URL is the registry endpoint to GET.
	URL string
	// Token is sent in the X-TOKEN header.
	Token string
	// Interval between refresh cycles. DefaultInterval when zero.
	Interval time.Duration
	// Timeout for a single request. DefaultTimeout when zero.
	Timeout time.Duration
}

// Result summarizes the diff applied by one refresh cycle.
type Result struct {
	Added   int
	Removed int
}

// Changed reports whether the cycle altered the authorized list.
func (r Result) Changed() bool {
	return r.Added > 0 || r.Removed > 0
}

// Stats is a point-in-time snapshot of the sync loop, exposed on the
// status endpoint.
type Stats struct {
	Cycles      int       `json:"cycles"`
	Failures    int       `json:"failures"`
	LastAttempt time.Time `json:"last_attempt"`
	LastSuccess time.Time `json:"last_success"`
	LastChange  time.Time `json:"last_change"`
	LastAdded   int       `json:"last_added"`
	LastRemoved int       `json:"last_removed"`
	LastError   string    `json:"last_error,omitempty"`
}

// Syncer reconciles the in-memory authorized list against the remote
// registry and persists it when it changes.
type Syncer struct {
	url      string
	token    string
	interval time.Duration
	client   *http.Client
	list     *accesslist.List
	store    Saver

	mu        sync.Mutex
	stats     Stats
	saveDirty bool
}

// NewSyncer returns a syncer that reconciles list against the registry
// described by opts and writes snapshots through store.
func NewSyncer(opts Options, list *accesslist.List, store Saver) *Syncer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Syncer{
		url:      opts.URL,
		token:    opts.Token,
		interval: opts.Interval,
		client:   &http.Client{Timeout: opts.Timeout},
		list:     list,
		store:    store,
	}
}

// Run refreshes the list at a fixed interval until ctx is cancelled.
// A failed cycle is logged and abandoned; the next one starts a full
// interval later regardless of outcome, with no backoff.
func (s *Syncer) Run(ctx context.Context) error {
	for {
		if _, err := s.RefreshOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("Registry refresh failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
	}
}

// RefreshOnce performs a single fetch-parse-diff-persist cycle.
func (s *Syncer) RefreshOnce(ctx context.Context) (Result, error) {
	s.beginAttempt()

	body, err := s.fetch(ctx)
	if err != nil {
		s.recordFailure(err)
		return Result{}, err
	}

	desired, err := parseKeyList(body)
	if err != nil {
		s.recordFailure(err)
		return Result{}, err
	}

	res := s.reconcile(desired)
	if res.Changed() || s.isSaveDirty() {
		if err := s.store.Save(s.list.Snapshot()); err != nil {
			// The list in memory is already current; the write is
			// retried on the next cycle whether or not it changes
			// anything further.
			s.setSaveDirty(true)
			logging.Error("Failed to persist key list", zap.Error(err))
		} else {
			s.setSaveDirty(false)
		}
	}

	s.recordSuccess(res)
	logging.LogRefresh(s.list.Len(), res.Added, res.Removed)
	return res, nil
}

// Stats returns a snapshot of the sync loop's counters.
func (s *Syncer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// fetch retrieves the raw registry body. The body is read in full
// before any parsing so a connection dropped mid-transfer can never
// masquerade as a shorter key list.
func (s *Syncer) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, NewNetworkError("failed to build registry request", err)
	}
	req.Header.Set(TokenHeader, s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewNetworkError("failed to reach registry", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read registry response", err)
	}
	return body, nil
}

// parseKeyList extracts the desired identifier set from a registry
// body. Blank lines and '#' comments are skipped; a line without a
// comma or with an undecodable identifier drops only itself.
func parseKeyList(body []byte) (map[onewire.TokenID]struct{}, error) {
	desired := make(map[onewire.TokenID]struct{})

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 4096), maxLineLength)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idText, _, found := strings.Cut(line, ",")
		if !found {
			logging.Debug("Registry line without separator skipped", zap.String("line", line))
			continue
		}
		id, err := onewire.ParseID(idText)
		if err != nil {
			logging.Error("Failed to parse registry key", zap.String("key", idText), zap.Error(err))
			continue
		}
		desired[id] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan registry body: %w", err)
	}
	return desired, nil
}

// reconcile applies the diff in place: members missing from desired
// are dropped, members already present are kept (and consumed from
// desired), and whatever remains in desired is new. The list is never
// cleared, so a key that stays authorized keeps matching throughout.
func (s *Syncer) reconcile(desired map[onewire.TokenID]struct{}) Result {
	var res Result
	res.Removed = s.list.Retain(func(id onewire.TokenID) bool {
		if _, ok := desired[id]; ok {
			delete(desired, id)
			return true
		}
		return false
	})
	for id := range desired {
		if s.list.Insert(id) {
			res.Added++
		}
	}
	return res
}

func (s *Syncer) beginAttempt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Cycles++
	s.stats.LastAttempt = time.Now()
}

func (s *Syncer) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Failures++
	s.stats.LastError = err.Error()
}

func (s *Syncer) recordSuccess(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.stats.LastSuccess = now
	s.stats.LastError = ""
	s.stats.LastAdded = res.Added
	s.stats.LastRemoved = res.Removed
	if res.Changed() {
		s.stats.LastChange = now
	}
}

func (s *Syncer) isSaveDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDirty
}

func (s *Syncer) setSaveDirty(dirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveDirty = dirty
}
