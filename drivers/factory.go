package drivers

import (
	"strings"

	"github.com/oarkflow/qwery/source"
)

// DefaultFactory dispatches a path to CSVSource/JSONSource/HTTPSource
// by URL scheme or file extension — the "default DataSourceFactory"
// SPEC_FULL.md's domain stack names as the concrete implementation a
// runnable engine ships alongside the abstract source contracts.
// Delimited files are always read and written with a header row naming
// the columns, whatever hints.Headers says.
type DefaultFactory struct{}

func (DefaultFactory) GetInputSource(path string, hints source.Hints) (source.InputSource, error) {
	hints.Headers = true
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return &HTTPSource{URL: path, Hints: hints}, nil
	case strings.HasSuffix(path, ".json"):
		return &JSONSource{Path: path, Hints: hints}, nil
	case strings.HasSuffix(path, ".csv"), strings.HasSuffix(path, ".csv.gz"), strings.HasSuffix(path, ".tsv"):
		return &CSVSource{Path: path, Hints: withGzipHint(path, hints)}, nil
	default:
		return nil, nil
	}
}

func (DefaultFactory) GetOutputSource(path string, appendMode bool, hints source.Hints) (source.OutputSource, error) {
	if strings.HasSuffix(path, ".json") {
		return &JSONSink{Path: path, Append: appendMode}, nil
	}
	hints.Headers = true
	return &CSVSink{Path: path, Hints: hints, Append: appendMode}, nil
}

func withGzipHint(path string, hints source.Hints) source.Hints {
	if strings.HasSuffix(path, ".gz") {
		hints.Gzip = true
	}
	return hints
}
