package normalize

import (
	"fmt"

	"bookshelf/src/internal/bookmeta"
)

// googleBooksItem maps one element of the volumes API "items" array.
func googleBooksItem(item map[string]any) (bookmeta.BookRecord, error) {
	var r bookmeta.BookRecord
	if id := stringField(item, "id"); id != nil {
		r.ExternalID = *id
	}
	vi, err := objectField(item, "volumeInfo")
	if err != nil {
		return r, err
	}
	r.Title = stringField(vi, "title")
	r.Subtitle = stringField(vi, "subtitle")
	r.Authors = listField(vi, "authors")
	r.Publisher = stringField(vi, "publisher")
	r.PublishedDate = stringField(vi, "publishedDate")
	r.PageCount = countField(vi, "pageCount")
	r.Categories = listField(vi, "categories")
	r.Language = stringField(vi, "language")
	r.InfoLink = stringField(vi, "infoLink")

	ids, err := industryIdentifiers(vi)
	if err != nil {
		return r, err
	}
	r.ISBN10, r.ISBN13 = selectISBNs(ids)

	links, err := objectField(vi, "imageLinks")
	if err != nil {
		return r, err
	}
	r.ThumbnailURL = pickCover(stringField(links, "thumbnail"), stringField(links, "smallThumbnail"))
	return r, nil
}

// industryIdentifiers flattens [{type, identifier}, ...] into identifier
// values, keeping order. Bare strings in the list are accepted as-is.
func industryIdentifiers(vi map[string]any) ([]string, error) {
	v, ok := vi["industryIdentifiers"]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("industryIdentifiers is %T, want array", v)
	}
	var out []string
	for _, it := range list {
		switch t := it.(type) {
		case string:
			out = append(out, t)
		case map[string]any:
			if id := stringField(t, "identifier"); id != nil {
				out = append(out, *id)
			}
		}
	}
	return out, nil
}
