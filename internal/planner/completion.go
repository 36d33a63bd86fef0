package planner

// CompletionContext summarizes how the previous period went. It is derived at
// generation time and never persisted.
type CompletionContext struct {
	Completed      []string
	Incomplete     []string
	CompletionRate float64 // completed / total, in [0,1]
}

// BuildCompletionContext partitions the previous period's tasks into
// completed and incomplete titles. A period with no tasks at all carries
// nothing forward and yields nil.
func BuildCompletionContext(prev []Task) *CompletionContext {
	if len(prev) == 0 {
		return nil
	}

	ctx := &CompletionContext{}
	for _, t := range prev {
		if t.Completed {
			ctx.Completed = append(ctx.Completed, t.Title)
		} else {
			ctx.Incomplete = append(ctx.Incomplete, t.Title)
		}
	}
	ctx.CompletionRate = float64(len(ctx.Completed)) / float64(len(prev))
	return ctx
}
