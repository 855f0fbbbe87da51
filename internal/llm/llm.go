// Package llm provides the natural-language collaborators around the
// scenario engine: parsing free-text queries into scenario parameters
// and explaining simulation results in plain economic language. The
// core never depends on this package succeeding; every operation has a
// deterministic fallback.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oilmacro/scenario-forecast/internal/forecast"
	"github.com/oilmacro/scenario-forecast/pkg/constants"
)

// ParsedQuery is the structured interpretation of a free-text scenario
// question. ScenarioKey may name a scenario outside the catalog; the
// engine surfaces that as an unknown-scenario error and recovery policy
// stays here, in the collaborator.
type ParsedQuery struct {
	ScenarioKey       string  `json:"scenario_key"`
	MagnitudeModifier float64 `json:"magnitude_modifier"`
	Confidence        string  `json:"confidence"`
	Reasoning         string  `json:"reasoning"`
	ScenarioContext   string  `json:"scenario_context"`
	SpecificEntity    string  `json:"specific_entity"`
	ForecastWeeks     int     `json:"forecast_weeks"`
}

// Service is what the API layer consumes. Implementations must never
// fail a request: parse failures fall back to a conservative default
// and explanation failures degrade to static text.
type Service interface {
	ParseQuery(ctx context.Context, query string) ParsedQuery
	Explain(ctx context.Context, result *forecast.RunResult, parsed ParsedQuery) string
	UncertaintyNote(ctx context.Context, result *forecast.RunResult) string
}

// fallbackKey is the scenario assumed when a query cannot be parsed.
// Supply-panic dynamics are the most common framing of oil questions,
// which makes it the least-wrong default.
const fallbackKey = "geopolitical_tension"

// FallbackQuery is the conservative default used when parsing fails.
func FallbackQuery(query string) ParsedQuery {
	return ParsedQuery{
		ScenarioKey:       fallbackKey,
		MagnitudeModifier: constants.DefaultMagnitudeModifier,
		Confidence:        "low",
		Reasoning:         "parse failed, using default scenario",
		ScenarioContext:   query,
		ForecastWeeks:     constants.DefaultForecastWeeks,
	}
}

// FallbackUncertaintyNote is the static caveat used when the generator
// is unavailable.
const FallbackUncertaintyNote = "Model assumes historical relationships remain stable. " +
	"Structural breaks may cause actual outcomes to differ significantly."

// decodeParsedQuery parses the model's JSON reply, tolerating markdown
// code fences, and normalizes it against the valid scenario keys.
func decodeParsedQuery(raw, query string, validKeys []string) ParsedQuery {
	cleaned := stripFences(raw)

	var parsed ParsedQuery
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return FallbackQuery(query)
	}

	valid := false
	for _, key := range validKeys {
		if parsed.ScenarioKey == key {
			valid = true
			break
		}
	}
	if !valid {
		parsed.ScenarioKey = fallbackKey
		parsed.Confidence = "low"
		parsed.ScenarioContext = query
	}

	if parsed.MagnitudeModifier <= 0 {
		parsed.MagnitudeModifier = constants.DefaultMagnitudeModifier
	}
	if parsed.ForecastWeeks < 1 || parsed.ForecastWeeks > constants.MaxForecastWeeks {
		parsed.ForecastWeeks = constants.DefaultForecastWeeks
	}
	if parsed.ScenarioContext == "" {
		parsed.ScenarioContext = query
	}

	return parsed
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}
	parts := strings.Split(trimmed, "```")
	if len(parts) < 2 {
		return trimmed
	}
	body := parts[1]
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

func parseSystemPrompt() string {
	return `You are a financial analyst mapping oil market questions to scenario parameters.

Available scenarios and when to use them:
- opec_cut:             Any supply reduction - OPEC cuts, country stops exporting, sanctions on producers, pipeline disruptions
- global_recession:     Any demand collapse - recession, depression, economic crisis, financial crash, pandemic demand shock
- rate_hike:            Any monetary tightening - rate hikes, Fed action, central bank policy, inflation fighting
- geopolitical_tension: Any conflict or war - Middle East war, Russia conflict, trade war, sanctions causing supply panic
- demand_boom:          Any demand surge - China reopening, emerging market growth, industrial expansion, economic boom

Return ONLY valid JSON, no explanation, no markdown:
{
  "scenario_key": "one of the five keys above",
  "magnitude_modifier": 1.0,
  "confidence": "high/medium/low",
  "reasoning": "why this scenario fits",
  "scenario_context": "restate what the user asked in 1 sentence, keeping their specific framing",
  "specific_entity": "the country/org/event the user mentioned, or empty string",
  "forecast_weeks": 12
}

magnitude_modifier:
  2.0 = extreme/total/catastrophic/complete halt
  1.5 = major/severe/significant
  1.0 = standard/moderate (default)
  0.5 = mild/slight/modest

Important: scenario_context must reflect the USER'S SPECIFIC situation, not the generic scenario name.`
}

func explainPrompt(result *forecast.RunResult, parsed ParsedQuery) (system, user string) {
	entityNote := ""
	if parsed.SpecificEntity != "" {
		entityNote = fmt.Sprintf(`Special context: The user asked specifically about %s.
Your explanation must reference %s by name and discuss its specific role in global oil markets where relevant.
`, parsed.SpecificEntity, parsed.SpecificEntity)
	}

	userContext := parsed.ScenarioContext
	if userContext == "" {
		userContext = result.ScenarioName
	}

	shocks, _ := json.Marshal(result.ShocksApplied)
	user = fmt.Sprintf(`User's specific scenario: %q

Current Brent price: $%.2f/barrel
Immediate impact (Week 1):  %s
Full impact (Week %d):      %s
Baseline Week %d:  $%.2f/barrel
Scenario Week %d:  $%.2f/barrel

Shocks applied to macro model:
%s`,
		userContext,
		result.CurrentPrice,
		result.ImpactWeek1.Formatted,
		result.Weeks, result.ImpactHorizon.Formatted,
		result.Weeks, result.ImpactHorizon.Baseline,
		result.Weeks, result.ImpactHorizon.Shocked,
		shocks,
	)

	system = fmt.Sprintf(`You are a senior energy economist explaining oil market forecasts.

CRITICAL RULE: Your explanation must directly address the user's SPECIFIC scenario as they framed it. Do NOT give a generic explanation about the scenario category.

%s
Structure your response in 3 short paragraphs:

Paragraph 1 - Bottom line: State the price impact immediately. Reference the user's specific scenario by name.
Paragraph 2 - The mechanism: Explain WHY this happens through the specific economic channels at play. Reference which macro variables drove the model result (USD, VIX, inventories etc.)
Paragraph 3 - Historical analog: Name 1 real historical event that is similar to THIS specific scenario. Briefly say what happened to oil prices then and how it compares to our forecast.

Rules:
- Under 220 words total
- Never invent numbers beyond what is given
- Use plain English, no jargon without explanation
- Address the user's scenario specifically, not generically`, entityNote)

	return system, user
}

func uncertaintyPrompt(result *forecast.RunResult) string {
	return fmt.Sprintf(`Write a 2-sentence uncertainty note for this specific forecast.

Scenario: %s
Estimated impact: %s over %d weeks

Sentence 1: What specific factors could make this forecast wrong for THIS scenario in particular.
Sentence 2: What the model cannot capture about this type of event.

Be specific, not boilerplate. Under 60 words.`,
		result.ScenarioName, result.ImpactHorizon.Formatted, result.Weeks)
}

// Disabled is a Service that performs no model calls. It keeps the API
// functional when no LLM credentials are configured.
type Disabled struct{}

// ParseQuery returns the conservative fallback interpretation.
func (Disabled) ParseQuery(_ context.Context, query string) ParsedQuery {
	return FallbackQuery(query)
}

// Explain returns a minimal numeric explanation.
func (Disabled) Explain(_ context.Context, result *forecast.RunResult, _ ParsedQuery) string {
	return fmt.Sprintf("%s: immediate impact %s, full impact over %d weeks %s.",
		result.ScenarioName, result.ImpactWeek1.Formatted, result.Weeks, result.ImpactHorizon.Formatted)
}

// UncertaintyNote returns the static caveat.
func (Disabled) UncertaintyNote(_ context.Context, _ *forecast.RunResult) string {
	return FallbackUncertaintyNote
}
