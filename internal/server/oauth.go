package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// OAuthResult is the outcome of one authorization-code flow: either a token
// or the error that ended it.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives the provider's redirect during login. The flow is
// single-shot: the first callback is exchanged for a token and every later
// one is rejected, so a stray re-visit of the redirect URL cannot replay the
// login. Registered on a Router via the Handler interface.
type OAuthHandler struct {
	config  *oauth2.Config
	state   string
	results chan OAuthResult
	once    sync.Once
	handled bool
	mu      sync.Mutex
}

// NewOAuthHandler builds a handler bound to the state token minted for this
// login attempt. The state must come from a cryptographic source.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

// Routes lists the paths this handler answers.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP checks the state token, exchanges the authorization code, and
// publishes the outcome through Result.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.fail(w, http.StatusBadRequest, "Invalid state parameter",
			fmt.Errorf("state token mismatch"))
		return
	}

	code := query.Get("code")
	if code == "" {
		h.fail(w, http.StatusBadRequest, "Authorization failed",
			fmt.Errorf("authorization failed: %s - %s", query.Get("error"), query.Get("error_description")))
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Token exchange failed",
			fmt.Errorf("token exchange failed: %w", err))
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, loginDonePage)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, status int, message string, err error) {
	h.Send(OAuthResult{err: err})
	http.Error(w, message, status)
}

// Send publishes the flow's outcome. Only the first call wins; Result's
// channel carries exactly one value and is then closed.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result returns the channel the login outcome arrives on.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

// loginDonePage tells the user the browser's part is over.
const loginDonePage = `
<!DOCTYPE html>
<html>
<head>
    <title>RadioWash - Signed In</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Signed In</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
