// Package orchestrator sequences the moderation agents, applies the
// risk-tiered routing rules, and maps agent outputs onto a final
// decision with human-review escalation.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
	"github.com/cynthialmy/llm-decision-flow/internal/rag"
)

// ClaimExtractor is the claim extraction collaborator
type ClaimExtractor interface {
	Extract(ctx context.Context, transcript string) ([]model.Claim, float64, model.AgentExecutionDetail)
}

// RiskScorer is the risk assessment collaborator
type RiskScorer interface {
	Score(ctx context.Context, transcript string, claims []model.Claim, thresholds model.Thresholds) (model.RiskAssessment, model.AgentExecutionDetail)
}

// EvidenceRetriever is the internal evidence collaborator
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, claims []model.Claim, resultsPerClaim int, thresholds model.Thresholds) (*model.Evidence, model.AgentExecutionDetail)
	MaxClaimSimilarity(ctx context.Context, claims []model.Claim) float64
	HasAnyDocuments() bool
}

// Enricher folds external search results into retrieved evidence.
// persist controls whether new items are written to the long-term
// index; it is resolved per call like the thresholds.
type Enricher interface {
	Enrich(ctx context.Context, claims []model.Claim, evidence *model.Evidence, gapCause string, persist bool) rag.EnrichmentStats
}

// FactualityAssessor is the factuality collaborator
type FactualityAssessor interface {
	Assess(ctx context.Context, claims []model.Claim, evidence *model.Evidence) ([]model.FactualityAssessment, model.AgentExecutionDetail)
}

// PolicyInterpreter is the policy collaborator
type PolicyInterpreter interface {
	Interpret(ctx context.Context, claims []model.Claim, factuality []model.FactualityAssessment, risk model.RiskAssessment, thresholds model.Thresholds) (*model.PolicyInterpretation, model.AgentExecutionDetail)
}

// ConfigResolver supplies runtime overrides for thresholds and
// prompts, resolved once per analyze call. Implemented by the
// governance store; nil means configuration defaults apply.
type ConfigResolver interface {
	ActiveThresholds(base model.Thresholds) model.Thresholds
	ActivePrompts() map[string]string
}

// PromptOverrider accepts resolved prompt overrides (the agents'
// prompt registry)
type PromptOverrider interface {
	SetOverrides(overrides map[string]string)
}

// Options tunes orchestrator routing. The external-search gates live
// inside Thresholds so the governance store can override them per
// call along with the confidence gates.
type Options struct {
	Thresholds      model.Thresholds
	ResultsPerClaim int
}

// Orchestrator runs the agent pipeline. Agents execute strictly
// sequentially; the only suspension points are the collaborators'
// own external calls.
type Orchestrator struct {
	claims     ClaimExtractor
	risk       RiskScorer
	evidence   EvidenceRetriever
	enricher   Enricher
	factuality FactualityAssessor
	policy     PolicyInterpreter
	resolver   ConfigResolver
	prompts    PromptOverrider
	opts       Options
}

// New creates an orchestrator. enricher, resolver, and prompts may be
// nil; evidence must not be.
func New(claims ClaimExtractor, risk RiskScorer, evidence EvidenceRetriever, enricher Enricher, factuality FactualityAssessor, policy PolicyInterpreter, resolver ConfigResolver, prompts PromptOverrider, opts Options) *Orchestrator {
	if opts.ResultsPerClaim <= 0 {
		opts.ResultsPerClaim = 10
	}
	return &Orchestrator{
		claims:     claims,
		risk:       risk,
		evidence:   evidence,
		enricher:   enricher,
		factuality: factuality,
		policy:     policy,
		resolver:   resolver,
		prompts:    prompts,
		opts:       opts,
	}
}

// Analyze runs the full pipeline for one transcript. It always
// returns a complete result bundle: degraded agent paths are recorded
// in the audit trail instead of surfacing as errors.
func (o *Orchestrator) Analyze(ctx context.Context, transcript string, progress ProgressFunc) *model.AnalysisResult {
	var executions []model.AgentExecutionDetail

	// Resolve runtime configuration once per call
	thresholds := o.opts.Thresholds
	if o.resolver != nil {
		thresholds = o.resolver.ActiveThresholds(thresholds)
		if o.prompts != nil {
			o.prompts.SetOverrides(o.resolver.ActivePrompts())
		}
	}

	// 1. Extract claims
	progress.report(StageClaims, ProgressStarted)
	claims, claimConfidence, claimDetail := o.claims.Extract(ctx, transcript)
	executions = append(executions, claimDetail)
	progress.report(StageClaims, ProgressCompleted)

	// 2. Assess risk
	progress.report(StageRisk, ProgressStarted)
	risk, riskDetail := o.risk.Score(ctx, transcript, claims, thresholds)
	executions = append(executions, riskDetail)
	progress.report(StageRisk, ProgressCompleted)

	riskConfident := risk.Confidence >= thresholds.RiskConfidence

	var evidence *model.Evidence
	var factuality []model.FactualityAssessment
	var policy *model.PolicyInterpretation

	if risk.Tier.Elevated() && riskConfident {
		// 3. Retrieve internal evidence
		progress.report(StageEvidence, ProgressStarted)
		var evidenceDetail model.AgentExecutionDetail
		evidence, evidenceDetail = o.evidence.Retrieve(ctx, claims, o.opts.ResultsPerClaim, thresholds)

		// 3b. Novelty check against the active index version
		similarity := o.evidence.MaxClaimSimilarity(ctx, claims)
		hasInternal := o.evidence.HasAnyDocuments()

		// 3c. External enrichment on novelty or an empty index
		if thresholds.AllowExternalSearch && o.enricher != nil && (similarity < thresholds.NoveltySimilarity || !hasInternal) {
			progress.report(StageEnrichment, ProgressStarted)
			o.enricher.Enrich(ctx, claims, evidence, gapCause(similarity, thresholds.NoveltySimilarity, hasInternal), thresholds.AllowEnrichmentPersist)
			progress.report(StageEnrichment, ProgressCompleted)
		}
		executions = append(executions, evidenceDetail)
		progress.report(StageEvidence, ProgressCompleted)

		// 4. Assess factuality against the (possibly enriched) evidence
		progress.report(StageFactuality, ProgressStarted)
		var factualityDetail model.AgentExecutionDetail
		factuality, factualityDetail = o.factuality.Assess(ctx, claims, evidence)
		executions = append(executions, factualityDetail)
		progress.report(StageFactuality, ProgressCompleted)
	} else {
		// Fast path: low risk, or a risk signal the system does not
		// trust. Both skip straight to policy, but the audit trail
		// distinguishes the two.
		reason := "Skipped due to low risk routing decision."
		if risk.Tier.Elevated() {
			reason = fmt.Sprintf("Skipped due to low-confidence risk assessment (%.2f below threshold %.2f).", risk.Confidence, thresholds.RiskConfidence)
		}
		executions = append(executions,
			model.SkippedExecution("Evidence Agent", "evidence", reason),
			model.SkippedExecution("Factuality Agent", "factuality", reason),
		)
		progress.report(StageEvidence, ProgressSkipped)
		progress.report(StageFactuality, ProgressSkipped)
	}

	// 5. Interpret policy
	progress.report(StagePolicy, ProgressStarted)
	var policyDetail model.AgentExecutionDetail
	policy, policyDetail = o.policy.Interpret(ctx, claims, factuality, risk, thresholds)
	executions = append(executions, policyDetail)
	progress.report(StagePolicy, ProgressCompleted)

	// 6. Decision matrix
	progress.report(StageDecision, ProgressStarted)
	decision := Decide(risk, policy)

	// 7. Escalation safety net (escalate-only)
	required, reasons := EvaluateEscalation(EscalationInput{
		Decision:        decision,
		Risk:            risk,
		Policy:          policy,
		Evidence:        evidence,
		ClaimConfidence: claimConfidence,
		Thresholds:      thresholds,
	})
	decision = applyEscalation(decision, required, reasons)
	progress.report(StageDecision, ProgressCompleted)

	return &model.AnalysisResult{
		Decision:             decision,
		Claims:               claims,
		RiskAssessment:       risk,
		Evidence:             evidence,
		Factuality:           factuality,
		PolicyInterpretation: policy,
		AgentExecutions:      executions,
	}
}

// gapCause names why external enrichment ran
func gapCause(similarity, noveltyThreshold float64, hasInternal bool) string {
	novel := similarity < noveltyThreshold
	switch {
	case novel && !hasInternal:
		return "claims are novel and no internal evidence is indexed"
	case !hasInternal:
		return "no internal evidence is indexed"
	default:
		return fmt.Sprintf("claims are novel (similarity %.2f below threshold %.2f)", similarity, noveltyThreshold)
	}
}
