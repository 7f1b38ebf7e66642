package main

import (
	"log/slog"

	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/priority"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/rules"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
)

// buildReasoner wires a fresh Memory and Cycle from cfg's reasoner
// parameters: a bounded concept store with an optional overflow cache, a
// serial issuer seeded from the configured reasoner ID, and the rule
// engine's default local-matcher/unifier pair. Every cmd subcommand that
// needs a live reasoner (serve, cycle) starts from this.
func buildReasoner(cfg *config.Config, logger *slog.Logger) (*reason.Memory, *reason.Cycle) {
	params := cfg.Reasoner.ToParams()
	bus := events.NewBus(logger)

	store := concept.NewStore(concept.Config{
		Bag:        priority.NewMap[string, *concept.Concept](params.ConceptBagSize),
		Overflow:   concept.NewOverflow(params.OverflowCacheSize),
		BeliefsMax: params.ConceptBeliefsMax,
		Bus:        bus,
	})

	mem := reason.NewMemory(
		params,
		reason.NewClock(0),
		bus,
		task.NewSerialIssuer(uint32(cfg.Reasoner.ReasonerID)),
		store,
		priority.NewMap[string, *task.Task](params.TaskLinkBagSize),
		priority.NewMap[string, *reason.FireBelief](params.PremisesMaxFired),
		logger,
	)

	cycle := reason.NewCycle(mem, rules.NewEngine(logger, rules.Unifier{}), rules.LocalMatcher{})
	return mem, cycle
}
