package template

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"

	"github.com/sophialabs/stubwire/internal/domain/match"
)

func randomIntBetween(min, max int) int {
	if min >= max {
		return min
	}
	return min + rand.Intn(max-min+1)
}

func seqInts(start, end int) []int {
	if end < start {
		return nil
	}
	s := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		s = append(s, i)
	}
	return s
}

func toJSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func bodyJSON(ctx *match.RequestContext) string {
	if ctx.BodyParams == nil {
		return "{}"
	}
	return toJSONString(ctx.BodyParams)
}

// extractJSONPath evaluates a JSONPath expression against the body params.
func extractJSONPath(ctx *match.RequestContext, expression string) string {
	if ctx.BodyParams == nil {
		return ""
	}
	result, err := jsonpath.Get(expression, anyBody(ctx.BodyParams))
	if err != nil {
		return ""
	}
	switch v := result.(type) {
	case string:
		return v
	default:
		return toJSONString(v)
	}
}

func newUUID() string {
	return uuid.NewString()
}

func formatNow(now, layout string) string {
	t, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return now
	}
	return t.Format(layout)
}
