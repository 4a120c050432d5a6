// Package venture turns a free-text startup idea into a composite startup
// pack: one mandatory structured call, then three independent enrichment
// calls run concurrently and joined with per-task degradation.
package venture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/venturemind/venturemind-backend/internal/models"
	"github.com/venturemind/venturemind-backend/internal/render"
	"github.com/venturemind/venturemind-backend/internal/structgen"
)

const systemPrompt = "You are VentureMind.AI. Generate a consumer-centric startup pack. " +
	"Focus on specific user needs. Use clear headings."

// LogoSynthesizer produces a logo reference or nil. Implementations absorb
// their own failures.
type LogoSynthesizer interface {
	SynthesizeLogo(ctx context.Context, brandName, logoPrompt string, colors []string, tone string) *string
}

type Orchestrator struct {
	gen  structgen.Invoker
	logo LogoSynthesizer
}

// New builds an orchestrator. logo may be nil, in which case no logo is
// ever attached.
func New(gen structgen.Invoker, logo LogoSynthesizer) *Orchestrator {
	return &Orchestrator{gen: gen, logo: logo}
}

// ProduceStartupPack fails only with *InputError or *PrimaryGenerationError.
func (o *Orchestrator) ProduceStartupPack(ctx context.Context, idea string) (models.CompositeResult, error) {
	return o.Run(ctx, idea, nil)
}

// Run is ProduceStartupPack with progress events delivered to observe.
func (o *Orchestrator) Run(ctx context.Context, idea string, observe Observer) (models.CompositeResult, error) {
	emit := func(e Event) {
		if observe != nil {
			observe(e)
		}
	}
	stage := func(s Stage) {
		slog.Info("stage", "task", "core", "stage", string(s))
		emit(Event{Kind: EventStage, Stage: s})
	}

	stage(StageValidating)
	if strings.TrimSpace(idea) == "" {
		stage(StageRejected)
		return models.CompositeResult{}, &InputError{Reason: "Startup idea is empty."}
	}

	stage(StagePrimaryGeneration)
	pack, err := structgen.Generate(ctx, o.gen, "core", primaryMessages(idea), structgen.StartupPackSchema)
	if err != nil {
		slog.Error("startup pack generation failed", "task", "core", "error", err)
		return models.CompositeResult{}, &PrimaryGenerationError{Err: err}
	}
	// Only enrichment may fill these.
	pack.Brand.LogoURL = nil
	pack.RealWorldScenario = nil

	stage(StageEnriching)
	var (
		logoURL  *string
		scenario *models.RealWorldScenario
		matrix   = []models.CompetitorRow{}
		g        errgroup.Group
	)
	brand := pack.Brand
	summary := pack.StartupSummary

	g.Go(func() error {
		if o.logo != nil {
			logoURL = o.logo.SynthesizeLogo(ctx, brand.Name, brand.LogoPrompt, brand.Colors, brand.BrandTone)
		}
		emit(Event{Kind: EventTask, Task: TaskLogo, OK: logoURL != nil})
		return nil
	})
	g.Go(func() error {
		s, err := structgen.Generate(ctx, o.gen, TaskScenario, scenarioMessages(idea), structgen.RealWorldScenarioSchema)
		if err != nil {
			slog.Warn("scenario degraded to missing", "task", TaskScenario, "error", err)
			emit(Event{Kind: EventTask, Task: TaskScenario, OK: false})
			return nil
		}
		scenario = &s
		emit(Event{Kind: EventTask, Task: TaskScenario, OK: true})
		return nil
	})
	g.Go(func() error {
		m, err := structgen.Generate(ctx, o.gen, TaskCompetitors, competitorMessages(idea, summary), structgen.CompetitorMatrixSchema)
		if err != nil {
			slog.Warn("competitor matrix degraded to empty", "task", TaskCompetitors, "error", err)
			emit(Event{Kind: EventTask, Task: TaskCompetitors, OK: false})
			return nil
		}
		if m.Rows != nil {
			matrix = m.Rows
		}
		emit(Event{Kind: EventTask, Task: TaskCompetitors, OK: true})
		return nil
	})

	stage(StageJoining)
	// Tasks never return errors; Wait is only the all-complete barrier.
	_ = g.Wait()

	stage(StageRendering)
	pack.Brand.LogoURL = logoURL
	pack.RealWorldScenario = scenario
	reply := render.Markdown(pack)

	stage(StageDone)
	return models.CompositeResult{
		ReplyMarkdown:    reply,
		StartupPack:      pack,
		CompetitorMatrix: matrix,
	}, nil
}

func primaryMessages(idea string) []structgen.Message {
	return []structgen.Message{
		structgen.SystemMessage(systemPrompt),
		structgen.HumanMessage("User idea: " + idea),
	}
}

func scenarioMessages(idea string) []structgen.Message {
	return []structgen.Message{structgen.HumanMessage(fmt.Sprintf(`Idea: %s
Generate a vivid, consumer-centric real-world scenario.
- User Story: Who is the user?
- Pain Point: What sucks for them right now?
- Day in Life: How does this product change their day?`, idea))}
}

func competitorMessages(idea, summary string) []structgen.Message {
	return []structgen.Message{structgen.HumanMessage(fmt.Sprintf(`Idea: %s
Summary: %s
Generate competitor matrix (3-5 rows).`, idea, summary))}
}
