package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sophialabs/stubwire/internal/domain/match"
	"github.com/sophialabs/stubwire/internal/domain/trace"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
	"github.com/sophialabs/stubwire/internal/infrastructure/services"
)

// DispatchInput is the call shape for one dispatched mock request: method,
// full request path (may carry a query string), explicit parameter maps and
// the parsed body.
type DispatchInput struct {
	Method     string
	RequestURI string

	// PathParams are explicitly supplied path parameters. Values extracted
	// from the URL override them on conflict.
	PathParams map[string]string
	// QueryParams are explicitly supplied query parameters. They override
	// values parsed from the URL's query string on conflict.
	QueryParams map[string]string
	// Body is the parsed request body object.
	Body map[string]any
}

// DispatchResult is the terminal outcome of one dispatch. Exactly one pass,
// no retries: the outcome kind tells the caller what the other fields mean.
type DispatchResult struct {
	Outcome trace.Outcome

	Status      int
	Body        any
	Raw         []byte
	ContentType string
	Headers     map[string]string

	EndpointID string
	Scenario   string
	Delay      time.Duration

	// KnownEndpoints lists registered identities when Outcome is not_found.
	KnownEndpoints []string
	// Err carries the parse failure when Outcome is render_error.
	Err error
}

// DispatchUseCase matches a request to an endpoint definition, selects the
// active scenario, simulates latency and renders the response.
type DispatchUseCase struct {
	registry    *services.EndpointRegistry
	selector    *match.Selector
	clock       ports.Clock
	rateLimiter ports.RateLimiter
	logger      ports.Logger
	traceBuf    *trace.RingBuffer
	pathPrefix  string
}

// NewDispatchUseCase creates a new use case.
func NewDispatchUseCase(
	registry *services.EndpointRegistry,
	selector *match.Selector,
	clk ports.Clock,
	rateLimiter ports.RateLimiter,
	logger ports.Logger,
	traceBuf *trace.RingBuffer,
) *DispatchUseCase {
	return &DispatchUseCase{
		registry:    registry,
		selector:    selector,
		clock:       clk,
		rateLimiter: rateLimiter,
		logger:      logger,
		traceBuf:    traceBuf,
	}
}

// SetPathPrefix sets an API path prefix that is stripped from incoming
// request paths before matching, when present.
func (uc *DispatchUseCase) SetPathPrefix(prefix string) {
	uc.pathPrefix = prefix
}

// Execute runs the dispatch pipeline for one call.
func (uc *DispatchUseCase) Execute(ctx context.Context, in *DispatchInput) DispatchResult {
	path, rawQuery := splitRequestURI(in.RequestURI)
	path = uc.stripPrefix(path)

	ep, extracted := uc.findEndpoint(in.Method, path)
	if ep == nil {
		known := uc.registry.Identities()
		uc.logger.Debug("no endpoint matched", "method", in.Method, "path", path, "known", len(known))
		result := DispatchResult{Outcome: trace.OutcomeNotFound, KnownEndpoints: known}
		uc.record(in, path, result)
		return result
	}

	reqCtx := &match.RequestContext{
		Method:      strings.ToUpper(in.Method),
		Path:        path,
		PathParams:  mergePathParams(in.PathParams, extracted),
		QueryParams: mergeQueryParams(rawQuery, in.QueryParams),
		BodyParams:  in.Body,
		Now:         uc.clock.Now().UTC().Format(time.RFC3339),
	}

	if ep.Policy != nil && ep.Policy.RateLimit != nil {
		rl := ep.Policy.RateLimit
		key := rl.Key
		if key == "" {
			key = ep.Identity
		}
		if !uc.rateLimiter.Allow(ctx, key, rl.Rate, rl.Burst) {
			uc.logger.Debug("dispatch rate-limited", "endpoint", ep.Identity, "key", key)
			result := DispatchResult{Outcome: trace.OutcomeRateLimited, EndpointID: ep.Identity}
			uc.record(in, path, result)
			return result
		}
	}

	response, scenarioName := uc.selector.Select(ep, reqCtx)

	// Simulated latency runs on this call's own timer; concurrent dispatches
	// are never serialized behind it.
	if response.Delay > 0 {
		if err := uc.clock.SleepContext(ctx, response.Delay); err != nil {
			uc.logger.Debug("delay cancelled", "endpoint", ep.Identity, "error", err)
		}
	}

	rendered, err := response.Renderer.Render(reqCtx)
	if err != nil {
		result := DispatchResult{
			Outcome:    trace.OutcomeRenderError,
			Status:     response.Status,
			Raw:        []byte(response.RawTemplate),
			EndpointID: ep.Identity,
			Scenario:   scenarioName,
			Delay:      response.Delay,
			Err:        fmt.Errorf("template render failed: %w", err),
		}
		uc.record(in, path, result)
		return result
	}

	var body any
	if err := json.Unmarshal(rendered, &body); err != nil {
		result := DispatchResult{
			Outcome:    trace.OutcomeRenderError,
			Status:     response.Status,
			Raw:        rendered,
			EndpointID: ep.Identity,
			Scenario:   scenarioName,
			Delay:      response.Delay,
			Err:        fmt.Errorf("rendered template is not valid JSON: %w", err),
		}
		uc.record(in, path, result)
		return result
	}

	result := DispatchResult{
		Outcome:     trace.OutcomeOK,
		Status:      response.Status,
		Body:        body,
		Raw:         rendered,
		ContentType: ep.ContentType,
		Headers:     ep.Headers,
		EndpointID:  ep.Identity,
		Scenario:    scenarioName,
		Delay:       response.Delay,
	}
	uc.record(in, path, result)
	return result
}

// findEndpoint scans the registry snapshot in insertion order and returns
// the first definition whose method and path match. There is no
// most-specific-wins resolution: ambiguous registrations resolve purely by
// upsert order.
func (uc *DispatchUseCase) findEndpoint(method, path string) (*match.CompiledEndpoint, map[string]string) {
	m := strings.ToUpper(method)
	segments := match.SplitPath(path)

	for _, ep := range uc.registry.Snapshot() {
		if ep.Method != "*" && ep.Method != m {
			continue
		}
		if params, ok := match.MatchSegments(ep.Segments, segments); ok {
			return ep, params
		}
	}
	return nil, nil
}

func (uc *DispatchUseCase) stripPrefix(path string) string {
	if uc.pathPrefix == "" || uc.pathPrefix == "/" {
		return path
	}
	if strings.HasPrefix(path, uc.pathPrefix) {
		stripped := path[len(uc.pathPrefix):]
		if stripped == "" || strings.HasPrefix(stripped, "/") {
			if stripped == "" {
				return "/"
			}
			return stripped
		}
	}
	return path
}

func (uc *DispatchUseCase) record(in *DispatchInput, path string, result DispatchResult) {
	uc.traceBuf.Add(trace.Entry{
		Timestamp:  uc.clock.Now(),
		Method:     strings.ToUpper(in.Method),
		Path:       path,
		EndpointID: result.EndpointID,
		Scenario:   result.Scenario,
		Outcome:    result.Outcome,
		Status:     result.Status,
		DelayMs:    result.Delay.Milliseconds(),
	})
}

func splitRequestURI(uri string) (path, rawQuery string) {
	path, rawQuery, _ = strings.Cut(uri, "?")
	return path, rawQuery
}

// mergePathParams merges explicit path parameters with those extracted from
// the URL; extraction wins on conflict.
func mergePathParams(explicit, extracted map[string]string) map[string]string {
	merged := make(map[string]string, len(explicit)+len(extracted))
	for k, v := range explicit {
		merged[k] = v
	}
	for k, v := range extracted {
		merged[k] = v
	}
	return merged
}

// mergeQueryParams merges URL-derived query parameters with explicit ones;
// explicit wins on conflict. The asymmetry with path parameter merging is
// deliberate, long-observed behavior.
func mergeQueryParams(rawQuery string, explicit map[string]string) map[string]string {
	merged := make(map[string]string, len(explicit))
	if rawQuery != "" {
		if values, err := url.ParseQuery(rawQuery); err == nil {
			for k, vs := range values {
				if len(vs) > 0 {
					merged[k] = vs[0]
				}
			}
		}
	}
	for k, v := range explicit {
		merged[k] = v
	}
	return merged
}
