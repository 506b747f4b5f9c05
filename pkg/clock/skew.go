package clock

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// SkewThreshold is the minimum drift between server and corrected local time that updates
// the offset.
const SkewThreshold = 5 * time.Minute

const skewTrackerID = "ClockOffsetTracker"

// TrackSkew installs a deserialize middleware that compares each response's Date header with
// the corrected local clock. Its signature matches aws.Config.APIOptions entries.
func (s *Setting) TrackSkew(stack *middleware.Stack) error {
	return stack.Deserialize.Add( //nolint:wrapcheck // smithy stack errors are descriptive.
		middleware.DeserializeMiddlewareFunc(skewTrackerID, s.handleDeserialize),
		middleware.After,
	)
}

func (s *Setting) handleDeserialize(
	ctx context.Context,
	in middleware.DeserializeInput,
	next middleware.DeserializeHandler,
) (middleware.DeserializeOutput, middleware.Metadata, error) {
	out, metadata, err := next.HandleDeserialize(ctx, in)

	if response, ok := out.RawResponse.(*smithyhttp.Response); ok && response != nil &&
		response.Response != nil {
		s.observeDateHeader(response.Header.Get("Date"))
	}

	return out, metadata, err //nolint:wrapcheck // pass SDK errors through untouched.
}

func (s *Setting) observeDateHeader(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}

	serverTime, err := http.ParseTime(trimmed)
	if err != nil {
		return false
	}

	return s.Observe(serverTime)
}

// Observe records serverTime minus local time as the new offset when the corrected clock is
// at least SkewThreshold away from serverTime. It reports whether the offset changed.
func (s *Setting) Observe(serverTime time.Time) bool {
	if s == nil {
		return false
	}

	drift := serverTime.Sub(s.Now())
	if drift < SkewThreshold && drift > -SkewThreshold {
		return false
	}

	s.SetOffset(serverTime.Sub(s.localNow()))

	return true
}
