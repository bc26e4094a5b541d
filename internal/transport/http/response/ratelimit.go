package response

import (
	"math"
	"net/http"
	"strconv"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/ratelimit"
)

// WriteRateLimited writes a 429 with Retry-After in whole seconds (at least 1).
func WriteRateLimited(w http.ResponseWriter, r *http.Request, d ratelimit.Decision, scope string) {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	WriteError(w, r, domain.ErrRateLimited(scope))
}
