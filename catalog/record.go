package catalog

import "fmt"

// StatusRecord is one entry of the status code catalog.
type StatusRecord struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var records = []StatusRecord{
	{Code: 100, Message: "Continue"},
	{Code: 200, Message: "OK"},
	{Code: 201, Message: "Created"},
	{Code: 204, Message: "No Content"},
	{Code: 301, Message: "Moved Permanently"},
	{Code: 302, Message: "Found"},
	{Code: 400, Message: "Bad Request"},
	{Code: 401, Message: "Unauthorized"},
	{Code: 403, Message: "Forbidden"},
	{Code: 404, Message: "Not Found"},
	{Code: 418, Message: "I'm a teapot"},
	{Code: 500, Message: "Internal Server Error"},
	{Code: 502, Message: "Bad Gateway"},
	{Code: 503, Message: "Service Unavailable"},
}

// Records returns a copy of the catalog in its fixed order.
func Records() []StatusRecord {
	out := make([]StatusRecord, len(records))
	copy(out, records)
	return out
}

// ImageURL is the primary image shown for a status code.
func ImageURL(code int) string {
	return fmt.Sprintf("https://http.dog/%d.jpg", code)
}

// FallbackImageURL replaces ImageURL when the primary image fails to load.
func FallbackImageURL(code int) string {
	return fmt.Sprintf("https://via.placeholder.com/400x300?text=Status+%d", code)
}
