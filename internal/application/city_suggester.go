package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/calendar-events/internal/logging"
	"github.com/example/calendar-events/internal/weather"
)

// CitySearcher looks up city suggestions upstream.
type CitySearcher interface {
	SearchCities(ctx context.Context, query string) ([]weather.Location, error)
}

// CitySuggester serves city autocompletion. Starting a lookup cancels the
// one in flight, so only the latest query's results are ever returned.
type CitySuggester struct {
	searcher CitySearcher
	notifier Notifier
	fetch    FetchTracker
	logger   *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewCitySuggester wires a suggester around searcher.
func NewCitySuggester(searcher CitySearcher, notifier Notifier, fetch FetchTracker) *CitySuggester {
	return NewCitySuggesterWithLogger(searcher, notifier, fetch, nil)
}

// NewCitySuggesterWithLogger wires a suggester with an explicit logger.
func NewCitySuggesterWithLogger(searcher CitySearcher, notifier Notifier, fetch FetchTracker, logger *slog.Logger) *CitySuggester {
	return &CitySuggester{
		searcher: searcher,
		notifier: notifier,
		fetch:    fetch,
		logger:   logging.Or(logger),
	}
}

// Suggest returns suggestions for query. Every call supersedes the lookup in
// flight, short queries included. Queries shorter than weather.MinQueryLength
// return weather.ErrQueryTooShort without an upstream call. A lookup replaced
// by a newer one returns ErrSuggestionSuperseded.
func (s *CitySuggester) Suggest(ctx context.Context, query string) (locations []weather.Location, err error) {
	if s == nil {
		return nil, fmt.Errorf("CitySuggester is nil")
	}
	if s.searcher == nil {
		return nil, fmt.Errorf("city searcher not configured")
	}

	query = strings.TrimSpace(query)
	logger := serviceLogger(ctx, s.logger, "CitySuggester", "Suggest", "query", query)

	if len([]rune(query)) < weather.MinQueryLength {
		s.supersede()
		return nil, weather.ErrQueryTooShort
	}

	callCtx, seq := s.begin(ctx)
	defer s.finish(seq)

	if s.fetch != nil {
		done := s.fetch.BeginFetch()
		defer done()
	}

	defer func() {
		switch {
		case err == nil:
			logger.DebugContext(ctx, "city suggestions returned", "count", len(locations))
		case errors.Is(err, ErrSuggestionSuperseded):
			logger.DebugContext(ctx, "city lookup superseded")
		default:
			logger.ErrorContext(ctx, "failed to fetch city suggestions", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	results, searchErr := s.searcher.SearchCities(callCtx, query)
	if s.superseded(seq) {
		return nil, ErrSuggestionSuperseded
	}
	if searchErr != nil {
		if ctx.Err() == nil && s.notifier != nil {
			s.notifier.Notify(titleError, msgCitySuggestionsFailed, SeverityError)
		}
		return nil, searchErr
	}
	return results, nil
}

func (s *CitySuggester) begin(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()
	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return callCtx, s.seq
}

// supersede cancels the lookup in flight without starting a new one.
func (s *CitySuggester) supersede() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
}

func (s *CitySuggester) supersedeLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

func (s *CitySuggester) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *CitySuggester) superseded(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != seq
}
