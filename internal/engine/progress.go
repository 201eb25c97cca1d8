package engine

import (
	"context"
	"errors"

	"surveygraph/internal/model"
)

// ErrEstimateTruncated signals that the forward simulation hit the page
// cap. The progress value returned alongside is still usable; callers
// should log the condition, it indicates a degenerate graph.
var ErrEstimateTruncated = errors.New("progress estimate truncated at page cap")

// EstimateProgress computes a respondent's position. Current is the
// previous response's current plus one (or 1 on the first page). Total
// is current minus one plus the number of pages a structural forward
// simulation reaches from the given questions, bounded by maxPageHops.
func (t *Traverser) EstimateProgress(ctx context.Context, questions []string, previous *model.Progress, skipAuth bool) (model.Progress, error) {
	current := 1
	if previous != nil {
		current = previous.Current + 1
	}
	total := current - 1

	starting := questions
	for len(starting) > 0 {
		total++
		if total >= maxPageHops {
			return model.Progress{Current: current, Total: total}, ErrEstimateTruncated
		}
		res, err := t.Advance(ctx, starting, nil, skipAuth)
		if err != nil {
			return model.Progress{}, err
		}
		starting = res.NextPageQuestions
	}
	return model.Progress{Current: current, Total: total}, nil
}
