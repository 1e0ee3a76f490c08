package cli

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// loopback receives the redirect of a desktop OAuth flow on 127.0.0.1
// and hands the authorization code to the waiting command.
type loopback struct {
	state    string
	listener net.Listener
	server   *http.Server
	result   chan callbackResult
}

type callbackResult struct {
	code string
	err  error
}

// listenLoopback binds the first free port in [first, last] and starts
// serving /callback.
func listenLoopback(state string, first, last int) (*loopback, error) {
	var (
		ln  net.Listener
		err error
	)
	for port := first; port <= last; port++ {
		ln, err = net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			break
		}
	}
	if ln == nil {
		return nil, fmt.Errorf("no free callback port in %d-%d: %w", first, last, err)
	}

	l := &loopback{
		state:    state,
		listener: ln,
		result:   make(chan callbackResult, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", l.handle)
	l.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.deliver(callbackResult{err: err})
		}
	}()
	return l, nil
}

func (l *loopback) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var res callbackResult
	switch {
	case q.Get("error") != "":
		res.err = fmt.Errorf("authorization denied: %s %s", q.Get("error"), q.Get("error_description"))
	case q.Get("state") != l.state:
		res.err = errors.New("state mismatch in authorization callback")
	case q.Get("code") == "":
		res.err = errors.New("no authorization code in callback")
	default:
		res.code = q.Get("code")
	}
	l.deliver(res)

	page := callbackPage{Title: "Signed in", Message: "You can close this tab and return to docgap."}
	if res.err != nil {
		page = callbackPage{Title: "Authorization failed", Message: res.err.Error()}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = callbackTemplate.Execute(w, page)
}

// deliver keeps the first result; later callbacks are ignored.
func (l *loopback) deliver(res callbackResult) {
	select {
	case l.result <- res:
	default:
	}
}

// port returns the bound port.
func (l *loopback) port() int {
	return l.listener.Addr().(*net.TCPAddr).Port
}

func (l *loopback) redirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", l.port())
}

// wait blocks for the callback, ctx or timeout, whichever comes first.
func (l *loopback) wait(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case res := <-l.result:
		return res.code, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

func (l *loopback) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.server.Shutdown(ctx)
}

type callbackPage struct {
	Title   string
	Message string
}

var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>docgap: {{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; display: grid; place-items: center; height: 100vh; margin: 0; background: #0f766e; }
main { background: #fff; padding: 2rem 3rem; border-radius: 12px; text-align: center; }
</style></head>
<body><main><h1>{{.Title}}</h1><p>{{.Message}}</p></main></body>
</html>`))

// openBrowser asks the desktop to open url.
func openBrowser(url string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		name = "xdg-open"
	}
	return exec.Command(name, append(args, url)...).Start()
}
