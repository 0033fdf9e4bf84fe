package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("evt")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// EventServiceDeps captures dependencies for constructing an event service.
type EventServiceDeps struct {
	Events      application.EventRepository
	Notifier    application.Notifier
	Observer    application.EventObserver
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewEventService builds an event service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewEventService(deps EventServiceDeps) *application.EventService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewEventServiceWithLogger(
		deps.Events,
		application.EventServiceDeps{Notifier: deps.Notifier, Observer: deps.Observer},
		idGen,
		now,
		deps.Logger,
	)
}

// NewNotificationCenter builds a notification center on the factory clock
// with "ntf" identifiers.
func (f *ServiceFactory) NewNotificationCenter() *application.NotificationCenter {
	return application.NewNotificationCenter(application.NotificationLifetime, NewIDGenerator("ntf").NextFunc(), f.Clock.NowFunc())
}

// NewViewService builds a Spanish, Monday-first grid projection in UTC.
func (f *ServiceFactory) NewViewService(events application.EventLister) *application.ViewService {
	engine := calendar.NewEngine(time.Monday, calendar.SpanishLabels(), f.Clock.NowFunc())
	return application.NewViewService(events, engine, time.UTC)
}
