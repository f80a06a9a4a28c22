package normalize

import (
	"fmt"
	"strings"

	"bookshelf/src/internal/bookmeta"
)

const (
	openLibraryBase   = "https://openlibrary.org"
	openLibraryCovers = "https://covers.openlibrary.org/b/id/"
)

// openLibraryDoc maps one element of the search API "docs" array.
func openLibraryDoc(doc map[string]any) (bookmeta.BookRecord, error) {
	var r bookmeta.BookRecord
	key := stringField(doc, "key")
	if key != nil {
		r.ExternalID = *key
		if *key != "" {
			link := openLibraryBase + ensureSlash(*key)
			r.InfoLink = &link
		}
	}
	r.Title = stringField(doc, "title")
	r.Subtitle = stringField(doc, "subtitle")
	r.Authors = listField(doc, "author_name")
	r.Publisher = firstOf(listField(doc, "publisher"))
	r.PublishedDate = stringField(doc, "first_publish_year")
	if r.PublishedDate == nil {
		r.PublishedDate = firstOf(listField(doc, "publish_date"))
	}
	r.PageCount = countField(doc, "number_of_pages_median")
	r.Categories = listField(doc, "subject")
	r.Language = firstOf(listField(doc, "language"))
	r.ISBN10, r.ISBN13 = selectISBNs(listField(doc, "isbn"))

	if id := countField(doc, "cover_i"); id != nil && *id > 0 {
		r.ThumbnailURL = pickCover(coverURL(*id, "M"), coverURL(*id, "S"))
	}
	return r, nil
}

func coverURL(id int, size string) *string {
	s := fmt.Sprintf("%s%d-%s.jpg", openLibraryCovers, id, size)
	return &s
}

func ensureSlash(key string) string {
	if strings.HasPrefix(key, "/") {
		return key
	}
	return "/" + key
}
