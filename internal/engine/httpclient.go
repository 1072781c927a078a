package engine

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent is sent with every Data API request.
const UserAgent = "go_ytcomments/1.0"

// NewHTTPClient builds the process-wide client used for Data API calls.
// rps > 0 paces outgoing requests; rps <= 0 leaves them unpaced.
func NewHTTPClient(rps float64) *http.Client {
	var rt http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 15 * time.Second,
	}
	if rps > 0 {
		rt = &pacedTransport{next: rt, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
	}
	return &http.Client{Transport: rt}
}

// pacedTransport waits on a token bucket before each round trip.
type pacedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (p *pacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := p.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return p.next.RoundTrip(req)
}
