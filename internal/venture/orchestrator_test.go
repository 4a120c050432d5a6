package venture

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturemind/venturemind-backend/internal/imagegen"
	"github.com/venturemind/venturemind-backend/internal/structgen"
	"github.com/venturemind/venturemind-backend/internal/structgen/structgentest"
	"github.com/venturemind/venturemind-backend/internal/workerpool"
)

type fakeLogo struct {
	calls int32
	url   *string
	args  []string
}

func (f *fakeLogo) SynthesizeLogo(_ context.Context, brandName, logoPrompt string, colors []string, tone string) *string {
	atomic.AddInt32(&f.calls, 1)
	f.args = []string{brandName, logoPrompt, tone}
	return f.url
}

func strPtr(s string) *string { return &s }

func TestBlankIdeaIsRejectedWithoutNetworkCalls(t *testing.T) {
	for _, idea := range []string{"", " ", "\t\n", "   \r\n  "} {
		inv := structgentest.NewInvoker()
		logo := &fakeLogo{}

		_, err := New(inv, logo).ProduceStartupPack(context.Background(), idea)

		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr, "idea %q", idea)
		assert.Zero(t, inv.TotalCalls())
		assert.Zero(t, atomic.LoadInt32(&logo.calls))
	}
}

func TestPrimaryFailureStartsNoEnrichment(t *testing.T) {
	upstream := errors.New("quota exceeded")
	inv := structgentest.NewInvoker().Fail(structgen.StartupPackSchema.Name, upstream)
	logo := &fakeLogo{url: strPtr("data:image/png;base64,aGk=")}

	res, err := New(inv, logo).ProduceStartupPack(context.Background(), "A subscription box for rare houseplants")

	var primaryErr *PrimaryGenerationError
	require.ErrorAs(t, err, &primaryErr)
	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, res.ReplyMarkdown)
	assert.Equal(t, 1, inv.TotalCalls())
	assert.Zero(t, atomic.LoadInt32(&logo.calls))
}

func TestMissingCredentialsFailPrimary(t *testing.T) {
	_, err := New(nil, nil).ProduceStartupPack(context.Background(), "idea")

	var primaryErr *PrimaryGenerationError
	require.ErrorAs(t, err, &primaryErr)
	assert.ErrorIs(t, err, structgen.ErrMissingCredentials)
}

func TestHouseplantScenario(t *testing.T) {
	inv := structgentest.NewInvoker()
	// No Stability key: the adapter degrades to no logo.
	logo := imagegen.NewLogoAdapter(imagegen.NewStabilityClient(imagegen.StabilityConfig{}), workerpool.New(1))

	res, err := New(inv, logo).ProduceStartupPack(context.Background(), "A subscription box for rare houseplants")
	require.NoError(t, err)

	pack := res.StartupPack
	assert.NotEmpty(t, pack.StartupSummary)
	assert.NotEmpty(t, pack.Competitors)
	assert.NotEmpty(t, pack.Brand.Name)
	assert.NotEmpty(t, pack.Financials.Runway)
	assert.NotEmpty(t, pack.Pitch.ElevatorPitch)

	assert.Nil(t, pack.Brand.LogoURL)
	require.NotNil(t, pack.RealWorldScenario)
	assert.NotEmpty(t, pack.RealWorldScenario.DayInLife)

	assert.GreaterOrEqual(t, len(res.CompetitorMatrix), 3)
	assert.LessOrEqual(t, len(res.CompetitorMatrix), 5)

	assert.Contains(t, res.ReplyMarkdown, "Real World Scenario")
	assert.NotContains(t, res.ReplyMarkdown, "data:image")
	assert.NotContains(t, res.ReplyMarkdown, "![")

	assert.Equal(t, 1, inv.Calls(structgen.StartupPackSchema.Name))
	assert.Equal(t, 1, inv.Calls(structgen.RealWorldScenarioSchema.Name))
	assert.Equal(t, 1, inv.Calls(structgen.CompetitorMatrixSchema.Name))
}

func TestLogoIsAttachedAndBuiltFromBrand(t *testing.T) {
	logo := &fakeLogo{url: strPtr("data:image/png;base64,aGk=")}

	res, err := New(structgentest.NewInvoker(), logo).ProduceStartupPack(context.Background(), "plants")
	require.NoError(t, err)

	require.NotNil(t, res.StartupPack.Brand.LogoURL)
	assert.Equal(t, "data:image/png;base64,aGk=", *res.StartupPack.Brand.LogoURL)
	assert.Equal(t, []string{"LeafLoop", "A single monstera leaf forming a loop", "warm and curious"}, logo.args)
}

func TestScenarioFailureOmitsSection(t *testing.T) {
	inv := structgentest.NewInvoker().Fail(structgen.RealWorldScenarioSchema.Name, errors.New("timeout"))

	res, err := New(inv, &fakeLogo{}).ProduceStartupPack(context.Background(), "plants")
	require.NoError(t, err)

	assert.Nil(t, res.StartupPack.RealWorldScenario)
	assert.NotContains(t, res.ReplyMarkdown, "Real World Scenario")
	assert.NotContains(t, res.ReplyMarkdown, "User Story")
	assert.NotEmpty(t, res.CompetitorMatrix)
}

func TestCompetitorFailureYieldsEmptyMatrix(t *testing.T) {
	inv := structgentest.NewInvoker().Fail(structgen.CompetitorMatrixSchema.Name, errors.New("boom"))

	res, err := New(inv, &fakeLogo{}).ProduceStartupPack(context.Background(), "plants")
	require.NoError(t, err)

	assert.NotNil(t, res.CompetitorMatrix)
	assert.Empty(t, res.CompetitorMatrix)
	if diff := cmp.Diff([]string{"Horti", "The Sill", "Bloomscape"}, res.StartupPack.Competitors); diff != "" {
		t.Errorf("competitors changed (-want +got):\n%s", diff)
	}
	require.NotNil(t, res.StartupPack.RealWorldScenario)
}

func TestAllEnrichmentFailingStillSucceeds(t *testing.T) {
	inv := structgentest.NewInvoker().
		Fail(structgen.RealWorldScenarioSchema.Name, errors.New("a")).
		Fail(structgen.CompetitorMatrixSchema.Name, errors.New("b"))

	res, err := New(inv, nil).ProduceStartupPack(context.Background(), "plants")
	require.NoError(t, err)

	assert.Nil(t, res.StartupPack.Brand.LogoURL)
	assert.Nil(t, res.StartupPack.RealWorldScenario)
	assert.Empty(t, res.CompetitorMatrix)
	assert.Contains(t, res.ReplyMarkdown, "Startup Summary")
}

func TestModelSuppliedEnrichmentFieldsAreDiscarded(t *testing.T) {
	inv := structgentest.NewInvoker().Fail(structgen.RealWorldScenarioSchema.Name, errors.New("down"))
	inv.Responses[structgen.StartupPackSchema.Name] = `{
	  "startup_summary": "s", "competitors": ["c"],
	  "brand": {"name": "n", "alt_name": "a", "tagline": "t", "colors": ["red"], "brand_tone": "b", "logo_prompt": "l", "logo_url": "http://evil"},
	  "financials": {"total_cost": "1", "projected_revenue": "2", "roi": "3", "burn_rate": "4", "break_even_month": "5", "runway": "6"},
	  "real_world_scenario": {"user_story": "x", "pain_point_solved": "y", "day_in_life": "z"},
	  "pitch": {"elevator_pitch": "e", "slides": {"problem": "p", "solution": "s", "market": "m", "model": "o", "brand_ask": "a"}}
	}`

	res, err := New(inv, nil).ProduceStartupPack(context.Background(), "plants")
	require.NoError(t, err)
	assert.Nil(t, res.StartupPack.Brand.LogoURL)
	assert.Nil(t, res.StartupPack.RealWorldScenario)
}

// barrierInvoker blocks enrichment calls until all of them have started, so
// the test only finishes if they run concurrently.
type barrierInvoker struct {
	*structgentest.Invoker
	started chan struct{}
	release chan struct{}
}

func (b *barrierInvoker) Invoke(ctx context.Context, msgs []structgen.Message, name string, s *structgen.Schema) (json.RawMessage, error) {
	if name != structgen.StartupPackSchema.Name {
		b.started <- struct{}{}
		<-b.release
	}
	return b.Invoker.Invoke(ctx, msgs, name, s)
}

type barrierLogo struct {
	started chan struct{}
	release chan struct{}
}

func (b *barrierLogo) SynthesizeLogo(context.Context, string, string, []string, string) *string {
	b.started <- struct{}{}
	<-b.release
	return nil
}

func TestEnrichmentRunsConcurrently(t *testing.T) {
	started := make(chan struct{}, 3)
	release := make(chan struct{})
	inv := &barrierInvoker{Invoker: structgentest.NewInvoker(), started: started, release: release}
	logo := &barrierLogo{started: started, release: release}

	done := make(chan error, 1)
	go func() {
		_, err := New(inv, logo).ProduceStartupPack(context.Background(), "plants")
		done <- err
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 3 enrichment tasks started concurrently", i)
		}
	}
	close(release)
	require.NoError(t, <-done)
}

func TestObserverSeesStateMachine(t *testing.T) {
	var mu sync.Mutex
	var stages []Stage
	tasks := map[string]bool{}

	observe := func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		switch e.Kind {
		case EventStage:
			stages = append(stages, e.Stage)
		case EventTask:
			tasks[e.Task] = e.OK
		}
	}

	inv := structgentest.NewInvoker().Fail(structgen.CompetitorMatrixSchema.Name, errors.New("x"))
	_, err := New(inv, &fakeLogo{url: strPtr("data:,")}).Run(context.Background(), "plants", observe)
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageValidating, StagePrimaryGeneration, StageEnriching, StageJoining, StageRendering, StageDone}, stages)
	assert.Equal(t, map[string]bool{TaskLogo: true, TaskScenario: true, TaskCompetitors: false}, tasks)
}

func TestObserverSeesRejection(t *testing.T) {
	var stages []Stage
	_, err := New(structgentest.NewInvoker(), nil).Run(context.Background(), " ", func(e Event) { stages = append(stages, e.Stage) })
	require.Error(t, err)
	assert.Equal(t, []Stage{StageValidating, StageRejected}, stages)
}
