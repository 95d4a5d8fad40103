// Package session drives one review sitting as an explicit state machine.
// The composer owns all in-session state (current item, relearn and
// delayed queues, forced-retest marks); nothing here is persisted and
// nothing blocks on the network. Ratings are emitted fire-and-forget
// through a RatingSink.
package session

import (
	"errors"

	"github.com/example/revocab/pkg/models"
)

// Flow selects the item walk order within a session.
type Flow string

const (
	// FlowReview lets the user choose self-assessment or a test per item.
	FlowReview Flow = "review"
	// FlowLearn shows full content first, then always tests.
	FlowLearn Flow = "learn"
)

// Phase is the composer's position in the per-item state machine.
type Phase string

const (
	// PhaseIdle awaits the user's choice of path for the current item.
	PhaseIdle Phase = "idle"
	// PhaseSelfAssess shows full content for an explicit 4-point rating.
	PhaseSelfAssess Phase = "self_assess"
	// PhaseTest runs the multiple-choice recall test.
	PhaseTest Phase = "test"
	// PhaseReviewStage re-shows full content before moving on.
	PhaseReviewStage Phase = "review_stage"
	// PhaseComplete means every queue item has been resolved.
	PhaseComplete Phase = "complete"
)

// ErrWrongPhase is returned when an event does not apply to the current
// phase (e.g. submitting an answer while no test is running).
var ErrWrongPhase = errors.New("event not valid in current phase")

// RatingSink receives rating decisions as they happen. Implementations
// are expected to dispatch asynchronously; the composer advances without
// waiting and never learns whether persistence succeeded.
type RatingSink interface {
	Submit(itemID int64, rating models.Rating)
}

type noopSink struct{}

func (noopSink) Submit(int64, models.Rating) {}

// Options tune composer behavior.
type Options struct {
	// AlwaysAdvanceOnTest makes a failed second attempt advance to the
	// next item instead of re-showing content. Only honored in the learn
	// flow.
	AlwaysAdvanceOnTest bool
}

// AnswerResult reports what a SubmitAnswer call did.
type AnswerResult struct {
	Correct      bool
	Attempt      int           // 1 or 2
	HintRevealed bool          // true when a wrong first attempt exposed the hint
	Rating       models.Rating // 0 while the item is still unresolved
}

// Composer walks a session queue one item at a time.
type Composer struct {
	flow Flow
	opts Options
	sink RatingSink

	queue []models.Quiz
	index int
	phase Phase

	attempt       int
	hintRevealed  bool
	testedCurrent bool

	relearn      []models.Quiz
	delayed      []models.Quiz
	forcedRetest map[int64]bool
	everHadItems bool
}

// NewComposer starts a session over the given queue. A nil sink discards
// ratings; an empty queue starts complete.
func NewComposer(flow Flow, queue []models.Quiz, sink RatingSink, opts Options) *Composer {
	if sink == nil {
		sink = noopSink{}
	}
	c := &Composer{
		flow:         flow,
		opts:         opts,
		sink:         sink,
		queue:        queue,
		forcedRetest: make(map[int64]bool),
		everHadItems: len(queue) > 0,
	}
	if len(queue) == 0 {
		c.phase = PhaseComplete
	} else if flow == FlowLearn {
		// Learn flow encodes before testing: content comes first.
		c.phase = PhaseReviewStage
	} else {
		c.phase = PhaseIdle
	}
	return c
}

// Phase returns the current phase.
func (c *Composer) Phase() Phase { return c.phase }

// Current returns the quiz the session is positioned on. ok is false once
// the session is complete.
func (c *Composer) Current() (models.Quiz, bool) {
	if c.phase == PhaseComplete || c.index >= len(c.queue) {
		return models.Quiz{}, false
	}
	return c.queue[c.index], true
}

// Complete reports whether every item has been resolved.
func (c *Composer) Complete() bool { return c.phase == PhaseComplete }

// EmptyAtStart distinguishes "nothing was ever due" from "finished the
// round": it is true only when the session began with an empty queue.
func (c *Composer) EmptyAtStart() bool { return !c.everHadItems }

// HintRevealed reports whether the current test exposed the hint.
func (c *Composer) HintRevealed() bool { return c.hintRevealed }

// RelearnCount returns the number of items waiting for re-exposure.
func (c *Composer) RelearnCount() int { return len(c.relearn) }

// DelayedCount returns the number of explicitly deferred items.
func (c *Composer) DelayedCount() int { return len(c.delayed) }

// ChooseSelfAssess moves the current item onto the self-assessment path.
// Only the review flow offers the choice.
func (c *Composer) ChooseSelfAssess() error {
	if c.phase != PhaseIdle || c.flow != FlowReview {
		return ErrWrongPhase
	}
	c.phase = PhaseSelfAssess
	return nil
}

// ChooseTest moves the current item onto the multiple-choice test path.
func (c *Composer) ChooseTest() error {
	if c.phase != PhaseIdle {
		return ErrWrongPhase
	}
	c.startTest()
	return nil
}

// SubmitSelfRating resolves a self-assessment with an explicit rating.
// Easy and good advance immediately; hard and again re-show content and
// queue the item for same-session re-exposure.
func (c *Composer) SubmitSelfRating(rating models.Rating) error {
	if c.phase != PhaseSelfAssess {
		return ErrWrongPhase
	}
	if !rating.IsValid() {
		return models.ErrInvalidRating
	}

	cur := c.queue[c.index]
	c.sink.Submit(cur.ItemID, rating)

	switch rating {
	case models.RatingEasy, models.RatingGood:
		c.next()
	default: // hard, again
		c.pushRelearn(cur)
		c.forcedRetest[cur.ItemID] = true
		c.phase = PhaseReviewStage
	}
	return nil
}

// SubmitAnswer resolves one test attempt with the selected option. A wrong
// first attempt reveals the hint and leaves the test open for a retry.
func (c *Composer) SubmitAnswer(optionID int64) (AnswerResult, error) {
	if c.phase != PhaseTest {
		return AnswerResult{}, ErrWrongPhase
	}

	cur := c.queue[c.index]
	correct := optionID == cur.CorrectID
	c.attempt++
	res := AnswerResult{Correct: correct, Attempt: c.attempt}

	if c.attempt == 1 {
		if correct {
			rating, _ := RateTestOutcome(OutcomeFirstTryCorrect)
			c.sink.Submit(cur.ItemID, rating)
			delete(c.forcedRetest, cur.ItemID)
			res.Rating = rating
			c.next()
			return res, nil
		}
		// Wrong once: reveal the mnemonic and allow a second attempt.
		c.hintRevealed = true
		res.HintRevealed = true
		return res, nil
	}

	if correct {
		rating, _ := RateTestOutcome(OutcomeSecondTryCorrect)
		c.sink.Submit(cur.ItemID, rating)
		res.Rating = rating
		if c.flow == FlowReview {
			c.next()
		} else {
			c.pushRelearn(cur)
			c.phase = PhaseReviewStage
		}
		return res, nil
	}

	rating, _ := RateTestOutcome(OutcomeSecondTryWrong)
	c.sink.Submit(cur.ItemID, rating)
	res.Rating = rating
	c.pushRelearn(cur)
	c.forcedRetest[cur.ItemID] = true
	if c.flow == FlowLearn && c.opts.AlwaysAdvanceOnTest {
		c.next()
	} else {
		c.phase = PhaseReviewStage
	}
	return res, nil
}

// Advance leaves the review stage. A learn-flow item that has not been
// tested yet, or any item still carrying a forced-retest mark, is tested
// before the session moves past it.
func (c *Composer) Advance() error {
	if c.phase != PhaseReviewStage {
		return ErrWrongPhase
	}
	cur := c.queue[c.index]
	if c.flow == FlowLearn && !c.testedCurrent {
		c.startTest()
		return nil
	}
	if c.forcedRetest[cur.ItemID] {
		c.startTest()
		return nil
	}
	c.next()
	return nil
}

// Defer postpones the current item to the end of the session without
// rating it.
func (c *Composer) Defer() error {
	switch c.phase {
	case PhaseIdle, PhaseReviewStage:
		c.delayed = append(c.delayed, c.queue[c.index])
		c.next()
		return nil
	default:
		return ErrWrongPhase
	}
}

func (c *Composer) startTest() {
	c.phase = PhaseTest
	c.attempt = 0
	c.hintRevealed = false
	c.testedCurrent = true
}

// pushRelearn queues an item for re-exposure, at most once per pass.
func (c *Composer) pushRelearn(q models.Quiz) {
	for _, r := range c.relearn {
		if r.ItemID == q.ItemID {
			return
		}
	}
	c.relearn = append(c.relearn, q)
}

// next moves to the following item. When the main queue is exhausted the
// relearn and delayed queues are drained back into it, so failed or
// deferred items reappear before the session ends.
func (c *Composer) next() {
	c.index++
	if c.index >= len(c.queue) {
		if len(c.relearn) == 0 && len(c.delayed) == 0 {
			c.phase = PhaseComplete
			return
		}
		c.queue = append(c.queue, c.relearn...)
		c.queue = append(c.queue, c.delayed...)
		c.relearn = nil
		c.delayed = nil
	}
	c.attempt = 0
	c.hintRevealed = false
	c.testedCurrent = false
	if c.flow == FlowLearn {
		c.phase = PhaseReviewStage
	} else {
		c.phase = PhaseIdle
	}
}
