package browse

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
)

//go:embed template.html
var htmlTemplate string

// htmlTemplateData is the data passed to the HTML template.
type htmlTemplateData struct {
	Total     int
	Available int
	Records   template.JS
}

// renderHTML renders the self-contained browse report. The records ride
// along as embedded JSON so the page filters and sorts without a server.
func renderHTML(records []Record) ([]byte, error) {
	tmpl, err := template.New("browse").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	payload := []byte("[]")
	if len(records) > 0 {
		payload, err = json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to encode records: %w", err)
		}
	}

	data := htmlTemplateData{
		Total:     len(records),
		Available: availableCount(records),
		Records:   template.JS(payload),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.Bytes(), nil
}
