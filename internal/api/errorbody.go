package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type errorBody struct {
	Detail  any `json:"detail"`
	Message any `json:"message"`
}

func newHTTPStatusError(method, url string, resp *http.Response, body []byte) *HTTPStatusError {
	return &HTTPStatusError{
		Method:     method,
		URL:        url,
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Header.Get("Content-Type"), body),
	}
}

// errorMessage pulls a human readable message out of an error response: the
// "detail" or "message" string of a JSON body, or the title of an HTML error
// page served by a proxy in front of the backend.
func errorMessage(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if trimmed[0] == '{' {
		var eb errorBody
		if err := json.Unmarshal(trimmed, &eb); err != nil {
			return ""
		}
		if s, ok := eb.Detail.(string); ok && s != "" {
			return s
		}
		if s, ok := eb.Message.(string); ok && s != "" {
			return s
		}
		return ""
	}

	if strings.Contains(contentType, "text/html") || trimmed[0] == '<' {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(doc.Find("title").First().Text())
	}

	return ""
}
