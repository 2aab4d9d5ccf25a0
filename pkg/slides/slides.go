// Package slides defines the extracted-presentation types consumed by the
// augmentation pipeline. Parsing presentation files into these records is an
// upstream concern; deckmind receives them already extracted.
package slides

// Element is a single positioned item on a page (text box, shape, table cell).
type Element struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Image is a reference to an extracted picture on a page.
type Image struct {
	Name   string `json:"name,omitempty"`
	Format string `json:"format,omitempty"`
	Data   string `json:"data,omitempty"`
}

// Page is one slide's extracted content.
type Page struct {
	PageNumber int       `json:"page_number"`
	Title      string    `json:"title,omitempty"`
	Text       string    `json:"text,omitempty"`
	Elements   []Element `json:"elements,omitempty"`
	Images     []Image   `json:"images,omitempty"`
}

// Document is one uploaded presentation: an ordered sequence of pages plus
// identifying metadata. DocumentID is assigned at upload time.
type Document struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename,omitempty"`
	Pages      []Page `json:"pages"`
}
