// Package compose splices runtime configuration and a bundled program into
// an entry HTML document.
package compose

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
	"github.com/ziadkadry99/ziprun/internal/logging"
)

const headClose = "</head>"

// Config is the runtime configuration exposed to the bundled application.
// Field order is the serialization order.
type Config struct {
	BaseURL string `json:"baseurl"`
	Key     string `json:"key"`
}

// ConfigScript returns the script block that publishes cfg as
// window.GEMINI_CONFIG and merges API_KEY and API_BASE_URL into
// window.process.env.
func ConfigScript(cfg Config) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshalling runtime config: %w", err)
	}
	keyJSON, _ := json.Marshal(cfg.Key)
	baseJSON, _ := json.Marshal(cfg.BaseURL)

	var b strings.Builder
	b.WriteString("\n<script>\n")
	fmt.Fprintf(&b, "  window.GEMINI_CONFIG = %s;\n", cfgJSON)
	b.WriteString("  window.process = window.process || {};\n")
	b.WriteString("  window.process.env = Object.assign({}, window.process.env, {\n")
	fmt.Fprintf(&b, "    API_KEY: %s,\n", keyJSON)
	fmt.Fprintf(&b, "    API_BASE_URL: %s\n", baseJSON)
	b.WriteString("  });\n")
	b.WriteString("</script>\n")
	return b.String(), nil
}

// InlineModule wraps code in an inline module script element.
func InlineModule(code string) string {
	return "\n<script type=\"module\">\n" + code + "\n</script>\n"
}

// entryScriptPattern matches the module script whose src ends with the base
// name of entryPath.
func entryScriptPattern(entryPath string) *regexp.Regexp {
	name := regexp.QuoteMeta(path.Base(entryPath))
	return regexp.MustCompile(`(?i)<script[^>]+type="module"[^>]+src="[^"]*` + name + `"[^>]*></script>`)
}

// Compose returns document with the configuration block inserted before the
// first </head> and the entry module script replaced by code inlined.
//
// A document without </head> is left without a configuration block. The
// entry script must still be present; otherwise a composition error is
// returned.
func Compose(document, entryPath, code string, cfg Config) (string, error) {
	loc := entryScriptPattern(entryPath).FindStringIndex(document)
	if loc == nil {
		return "", rerrors.NewCompositionError("entry script element not found in document", entryPath)
	}

	script, err := ConfigScript(cfg)
	if err != nil {
		return "", rerrors.NewCompositionError(err.Error(), "")
	}

	var b strings.Builder
	b.Grow(len(document) + len(script) + len(code) + 64)

	// Splice by index so that neither code nor cfg go through any
	// replacement-template expansion.
	head := strings.Index(document, headClose)
	switch {
	case head < 0:
		logging.Warn("entry document has no </head>; runtime config not injected", "entry", entryPath)
		b.WriteString(document[:loc[0]])
		b.WriteString(InlineModule(code))
		b.WriteString(document[loc[1]:])
	case head <= loc[0]:
		b.WriteString(document[:head])
		b.WriteString(script)
		b.WriteString(document[head:loc[0]])
		b.WriteString(InlineModule(code))
		b.WriteString(document[loc[1]:])
	default:
		// Entry script sits inside <head>, before </head>.
		b.WriteString(document[:loc[0]])
		b.WriteString(InlineModule(code))
		b.WriteString(document[loc[1]:head])
		b.WriteString(script)
		b.WriteString(document[head:])
	}
	return b.String(), nil
}
