package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"bookshelf/src/internal/bookmeta"
)

// Entry is one row of the reading log, stored as YAML and served as JSON.
type Entry struct {
	ID            string  `yaml:"id" json:"id"`
	Title         string  `yaml:"title" json:"title" validate:"required,max=512"`
	Authors       Authors `yaml:"authors,omitempty" json:"authors,omitempty" validate:"omitempty,dive,max=256"`
	Publisher     string  `yaml:"publisher,omitempty" json:"publisher,omitempty" validate:"max=512"`
	PublishedDate string  `yaml:"published_date,omitempty" json:"published_date,omitempty" validate:"max=32"`
	Categories    Authors `yaml:"categories,omitempty" json:"categories,omitempty" validate:"omitempty,dive,max=128"`
	ISBN10        string  `yaml:"isbn_10,omitempty" json:"isbn_10,omitempty" validate:"omitempty,isbnlen=10"`
	ISBN13        string  `yaml:"isbn_13,omitempty" json:"isbn_13,omitempty" validate:"omitempty,isbnlen=13"`
	PageCount     *int    `yaml:"page_count,omitempty" json:"page_count,omitempty" validate:"omitempty,gte=0"`
	Thumbnail     string  `yaml:"thumbnail,omitempty" json:"thumbnail,omitempty" validate:"omitempty,url"`
	Source        string  `yaml:"source,omitempty" json:"source,omitempty"`
	DateRead      string  `yaml:"date_read,omitempty" json:"date_read,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Rating        int     `yaml:"rating,omitempty" json:"rating,omitempty" validate:"gte=0,lte=5"`
	Notes         string  `yaml:"notes,omitempty" json:"notes,omitempty" validate:"max=12000"`
}

// Authors is a list of names that also unmarshals from a single
// comma-delimited YAML string ("Jane Doe, John Smith").
type Authors []string

func (a *Authors) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch value.Kind {
	case yaml.ScalarNode:
		s := strings.TrimSpace(value.Value)
		if s == "" || s == "null" || s == "~" {
			*a = nil
			return nil
		}
		*a = SplitList(s)
		return nil
	case yaml.SequenceNode:
		var out Authors
		for _, n := range value.Content {
			if n.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: list item must be a string", n.Line)
			}
			if s := strings.TrimSpace(n.Value); s != "" {
				out = append(out, s)
			}
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", value.Line)
	}
}

// String joins the names with ", ".
func (a Authors) String() string { return strings.Join(a, ", ") }

// SplitList splits on commas and drops blank parts.
func SplitList(s string) Authors {
	var out Authors
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewID returns a fresh entry id.
func NewID() string { return uuid.NewString() }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("isbnlen", validateISBNLen)
	return v
}

// validateISBNLen checks the cleaned identifier length against the tag
// parameter. Check digits are not verified.
func validateISBNLen(fl validator.FieldLevel) bool {
	want := fl.Param()
	return fmt.Sprint(len(bookmeta.CleanISBN(fl.Field().String()))) == want
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failed rule for an entry.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "invalid entry: " + strings.Join(parts, "; ")
}

// Validate applies the struct rules. Failures are returned as *ValidationError.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Fields: []FieldError{{Field: "title", Message: "title is required"}}}
	}
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		name := fieldName(fe.StructField())
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", name)
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		case "isbnlen":
			msg = fmt.Sprintf("%s must have %s characters after removing hyphens", name, fe.Param())
		case "datetime":
			msg = fmt.Sprintf("%s must be a date like 2024-01-31", name)
		case "gte", "lte":
			msg = fmt.Sprintf("%s is out of range", name)
		case "url":
			msg = fmt.Sprintf("%s must be a URL", name)
		default:
			msg = fmt.Sprintf("%s is invalid", name)
		}
		out.Fields = append(out.Fields, FieldError{Field: name, Message: msg})
	}
	return out
}

var fieldNames = map[string]string{
	"ID": "id", "Title": "title", "Authors": "authors", "Publisher": "publisher",
	"PublishedDate": "published_date", "Categories": "categories", "ISBN10": "isbn_10",
	"ISBN13": "isbn_13", "PageCount": "page_count", "Thumbnail": "thumbnail",
	"Source": "source", "DateRead": "date_read", "Rating": "rating", "Notes": "notes",
}

func fieldName(structField string) string {
	if n, ok := fieldNames[structField]; ok {
		return n
	}
	return strings.ToLower(structField)
}

// FromRecord copies a lookup candidate into a new, unsaved entry. Absent
// catalog fields stay empty.
func FromRecord(r bookmeta.BookRecord) Entry {
	e := Entry{
		Title:         bookmeta.Deref(r.Title),
		Authors:       Authors(append([]string(nil), r.Authors...)),
		Publisher:     bookmeta.Deref(r.Publisher),
		PublishedDate: bookmeta.Deref(r.PublishedDate),
		Categories:    Authors(append([]string(nil), r.Categories...)),
		ISBN10:        bookmeta.Deref(r.ISBN10),
		ISBN13:        bookmeta.Deref(r.ISBN13),
		Thumbnail:     bookmeta.Deref(r.ThumbnailURL),
		Source:        string(r.Source),
	}
	if sub := bookmeta.Deref(r.Subtitle); sub != "" && e.Title != "" {
		e.Title = e.Title + ": " + sub
	}
	if r.PageCount != nil {
		n := *r.PageCount
		e.PageCount = &n
	}
	return e
}
