package logutil

import (
	"io"
	"log/slog"
	"path/filepath"
)

// NewLogger builds a slog.Logger writing to w at level, with the source
// file trimmed to its base name (full paths are noise for a library's
// warning output).
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}
