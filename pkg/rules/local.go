package rules

import (
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
)

// LocalMatcher is the default LocalRules implementation: a question is
// solved by any judgment belief whose term unifies with the question's under
// the query variable '?', as Unifier does (spec §6's
// "trySolution(belief, task, context, isInput)"), reported back through the
// abstract event bus as a TaskAdd carrying the solving belief — the core's
// event vocabulary has no dedicated "answer" kind, so an answer is modeled
// as the question concept absorbing new belief-shaped knowledge.
type LocalMatcher struct{}

func (LocalMatcher) TrySolution(belief *task.Task, question *task.Task, ctx *reason.Context, isInput bool) bool {
	if belief == nil || question == nil {
		return false
	}
	if !belief.IsJudgment() || question.Sentence.Punctuation != task.Question {
		return false
	}
	if !unify(belief.Sentence.Term, question.Sentence.Term) {
		return false
	}

	if ctx != nil && ctx.Memory != nil && ctx.Memory.Bus() != nil {
		ctx.Memory.Bus().Publish(events.Event{
			Kind:    events.TaskAdd,
			Subject: question.Name(),
			Time:    ctx.Now,
			Data:    belief,
		})
	}
	return true
}
