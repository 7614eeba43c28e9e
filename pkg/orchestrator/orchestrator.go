// Package orchestrator runs one chat request end to end: enrich, route,
// dispatch to specialists and combine their answers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/ai/router"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/specialist"
	"marketing-assistant-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	GenericSystemPrompt = "You are a helpful assistant with expertise in photography and marketing."
	ResultSeparator     = "\n\n---\n\n"

	MsgOrchestrationApology = "I apologize, but I encountered an error processing your request. Please try again."
	MsgNoSpecialists        = "I apologize, but none of our specialists could process your request."
	MsgGenericApology       = "I apologize, but I could not process your request."

	ErrTextOrchestration = "Orchestration error"
	ErrTextNoResponses   = "No specialist responses"
	ErrTextGeneric       = "General processing error"
)

type ContextEnricher interface {
	Enrich(ctx context.Context, query string, priorTurns []store.Turn) *store.Context
}

type QueryRouter interface {
	Route(ctx context.Context, query string) []string
}

type SpecialistLookup interface {
	Get(id string) (specialist.Specialist, bool)
}

type Orchestrator struct {
	enricher    ContextEnricher
	router      QueryRouter
	specialists SpecialistLookup
	provider    llm.LLMProvider
	temperature float64
	logger      logger.ILogger
}

// NewOrchestrator builds an orchestrator. temperature applies to the generic
// path; a negative value selects llm.DefaultTemperature.
func NewOrchestrator(
	enricher ContextEnricher,
	r QueryRouter,
	specialists SpecialistLookup,
	provider llm.LLMProvider,
	temperature float64,
	log logger.ILogger,
) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	if temperature < 0 {
		temperature = llm.DefaultTemperature
	}
	return &Orchestrator{
		enricher:    enricher,
		router:      r,
		specialists: specialists,
		provider:    provider,
		temperature: temperature,
		logger:      log,
	}
}

// Process always returns a well-formed result. Failures are reported in
// Result.Error, never as a Go error or a panic.
func (o *Orchestrator) Process(ctx context.Context, query string, priorTurns []store.Turn) (result store.Result) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "orchestrator.Process")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := &apperror.OrchestrationError{Err: fmt.Errorf("panic: %v", r)}
			o.logger.Error("ORCHESTRATOR", "Error in orchestration", map[string]interface{}{"error": err.Error()})
			span.RecordError(err)
			span.SetStatus(codes.Error, ErrTextOrchestration)
			result = store.Result{Content: MsgOrchestrationApology, Error: ErrTextOrchestration}
		}
	}()

	if strings.TrimSpace(query) == "" {
		return store.Result{Content: MsgOrchestrationApology, Error: ErrTextOrchestration}
	}

	reqCtx := o.enricher.Enrich(ctx, query, priorTurns)
	if reqCtx == nil {
		reqCtx = &store.Context{PriorTurns: priorTurns}
	}

	ids := o.router.Route(ctx, query)
	span.SetAttributes(
		attribute.StringSlice("orchestrator.specialists", ids),
		attribute.Int("orchestrator.scraped_pages", len(reqCtx.ScrapedPages)),
		attribute.Int("orchestrator.documents", len(reqCtx.RelevantDocuments)),
	)

	if router.IsGeneric(ids) {
		result = o.handleGeneric(ctx, query, reqCtx)
	} else {
		result = o.combine(o.dispatch(ctx, ids, query, reqCtx))
	}

	if result.Failed() {
		span.SetStatus(codes.Error, result.Error)
	}
	return result
}

func (o *Orchestrator) handleGeneric(ctx context.Context, query string, c *store.Context) store.Result {
	messages := specialist.BuildMessages(GenericSystemPrompt, query, c)

	content, err := o.provider.Chat(ctx, messages, llm.WithTemperature(o.temperature))
	if err != nil {
		o.logger.Error("ORCHESTRATOR", "Error in general processing", map[string]interface{}{
			"error": apperror.NewProviderError("completion", err).Error(),
		})
		return store.Result{Content: MsgGenericApology, Error: ErrTextGeneric}
	}
	if strings.TrimSpace(content) == "" {
		content = MsgGenericApology
	}

	return store.Result{Content: content, Sources: c.Sources()}
}

// dispatch runs the selected specialists concurrently. Unknown ids are
// skipped; failed or panicking specialists are dropped.
func (o *Orchestrator) dispatch(ctx context.Context, ids []string, query string, c *store.Context) []store.Result {
	var (
		mu      sync.Mutex
		results []store.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		s, ok := o.specialists.Get(id)
		if !ok {
			o.logger.Warn("ORCHESTRATOR", "Router selected unknown specialist", map[string]interface{}{"specialist": id})
			continue
		}

		g.Go(func() error {
			res, err := o.answer(gctx, s, query, c)
			if err != nil {
				o.logger.Error("ORCHESTRATOR", "Specialist failed", map[string]interface{}{
					"specialist": s.ID(),
					"error":      err.Error(),
				})
				return nil
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (o *Orchestrator) answer(ctx context.Context, s specialist.Specialist, query string, c *store.Context) (res store.Result, err error) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "specialist.Answer")
	span.SetAttributes(attribute.String("specialist.id", s.ID()))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("specialist panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	res = s.Answer(ctx, query, c)
	if res.Failed() {
		return res, errors.New(res.Error)
	}
	return res, nil
}

// combine joins specialist answers with a visible separator and unions their sources.
func (o *Orchestrator) combine(results []store.Result) store.Result {
	if len(results) == 0 {
		return store.Result{Content: MsgNoSpecialists, Error: ErrTextNoResponses}
	}

	contents := make([]string, 0, len(results))
	var sources []string
	seen := make(map[string]bool)
	for _, r := range results {
		contents = append(contents, r.Content)
		for _, src := range r.Sources {
			if !seen[src] {
				seen[src] = true
				sources = append(sources, src)
			}
		}
	}

	return store.Result{Content: strings.Join(contents, ResultSeparator), Sources: sources}
}
