package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/lockstale/internal/service"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format writes the full result as a single JSON document.
func (f *JSONFormatter) Format(res *service.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(res)
}
