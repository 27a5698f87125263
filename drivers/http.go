package drivers

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/source"
)

// HTTPSource fetches path (an http:// or https:// URL) into a temp
// file and delegates to CSVSource or JSONSource by sniffing the
// response's Content-Type, per SPEC_FULL.md's domain-stack wiring for
// net/http.
type HTTPSource struct {
	URL   string
	Hints source.Hints
}

func (h *HTTPSource) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	resp, err := http.Get(h.URL)
	if err != nil {
		return nil, qerrors.NewIOError(h.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, qerrors.NewIOError(h.URL, fmtStatus(resp.StatusCode))
	}

	tmp, err := os.CreateTemp("", "qwery-http-*")
	if err != nil {
		return nil, qerrors.NewIOError(h.URL, err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, qerrors.NewIOError(h.URL, err)
	}
	tmp.Close()

	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		return (&JSONSource{Path: tmpPath, Hints: h.Hints}).Execute(s)
	}
	return (&CSVSource{Path: tmpPath, Hints: h.Hints}).Execute(s)
}

type statusError int

func (e statusError) Error() string { return http.StatusText(int(e)) }

func fmtStatus(code int) error { return statusError(code) }
