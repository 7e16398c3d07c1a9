package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/arbiter/internal/pkg/logger"
)

// Checker reports whether a dependency is usable
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// CheckerFunc adapts a ping function into a Checker
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

// Service runs dependency checks and collects runtime details for /ready
type Service struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	details  map[string]func() interface{}
	timeout  time.Duration
}

// NewService creates a health service whose checks share timeout
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		checkers: make(map[string]Checker),
		details:  make(map[string]func() interface{}),
		timeout:  timeout,
	}
}

// AddChecker registers a dependency check
func (s *Service) AddChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
}

// AddDetail registers a snapshot included in every readiness report
func (s *Service) AddDetail(name string, snapshot func() interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[name] = snapshot
}

// Report is the /ready response body
type Report struct {
	Status       string                    `json:"status"`
	Service      string                    `json:"service"`
	Timestamp    time.Time                 `json:"timestamp"`
	Dependencies map[string]DependencyInfo `json:"dependencies"`
	Details      map[string]interface{}    `json:"details,omitempty"`
}

// DependencyInfo represents health info for a dependency
type DependencyInfo struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Check runs every checker concurrently
func (s *Service) Check(ctx context.Context) Report {
	s.mu.RLock()
	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	checkers := make([]Checker, len(names))
	for i, name := range names {
		checkers[i] = s.checkers[name]
	}
	details := make(map[string]interface{}, len(s.details))
	for name, snapshot := range s.details {
		details[name] = snapshot()
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]error, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = c.CheckHealth(ctx)
		}(i, c)
	}
	wg.Wait()

	report := Report{
		Status:       "ready",
		Timestamp:    time.Now().UTC(),
		Dependencies: make(map[string]DependencyInfo, len(names)),
		Details:      details,
	}
	for i, name := range names {
		if err := results[i]; err != nil {
			logger.Warn("Health check failed", logger.String("dependency", name), logger.Err(err))
			report.Dependencies[name] = DependencyInfo{Status: "unhealthy", Error: err.Error()}
			report.Status = "unavailable"
			continue
		}
		report.Dependencies[name] = DependencyInfo{Status: "healthy"}
	}
	return report
}

// ReadyHandler answers 200 when every dependency is healthy, 503 otherwise
func (s *Service) ReadyHandler(serviceName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		report := s.Check(c.Request().Context())
		report.Service = serviceName
		status := http.StatusOK
		if report.Status != "ready" {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, report)
	}
}
