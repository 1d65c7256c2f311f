// Package models defines the catalog item types, queries and search results
// shared by the search engine and its adapters.
package models

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// ErrUnknownDomain is returned when a domain name is not one of Domains().
var ErrUnknownDomain = errors.New("unknown domain")

// Domain names a catalog (anime, manga, quiz).
type Domain string

const (
	DomainAnime Domain = "anime"
	DomainManga Domain = "manga"
	DomainQuiz  Domain = "quiz"
)

// Domains returns every supported domain in a stable order.
func Domains() []Domain {
	return []Domain{DomainAnime, DomainManga, DomainQuiz}
}

// ParseDomain parses a domain name case-insensitively.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Domains(), d) {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// NewItem returns an empty item of the domain's concrete type, ready to decode into.
func NewItem(d Domain) (CatalogItem, error) {
	switch d {
	case DomainAnime:
		return &Anime{}, nil
	case DomainManga:
		return &Manga{}, nil
	case DomainQuiz:
		return &Quiz{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, d)
}

// FieldKind classifies a searchable field. The scorer picks its matching
// rules and weight from the kind, not the field name.
type FieldKind int

const (
	FieldTitle FieldKind = iota
	FieldAltTitle
	FieldDescription
	FieldTaxonomy // genres, tags, category, status
	FieldPeople   // author, studio, cast
)

// String returns a human-readable name for the field kind.
func (k FieldKind) String() string {
	switch k {
	case FieldTitle:
		return "title"
	case FieldAltTitle:
		return "alt_title"
	case FieldDescription:
		return "description"
	case FieldTaxonomy:
		return "taxonomy"
	case FieldPeople:
		return "people"
	default:
		return "unknown"
	}
}

// Field is one named searchable field of an item. List fields (genres, cast)
// carry one value per entry.
type Field struct {
	Name   string
	Kind   FieldKind
	Values []string
}

// CatalogItem is the contract the search engine needs from any catalog entry.
type CatalogItem interface {
	ItemID() string
	ItemTitle() string
	// Quality is the secondary ranking signal (usually the rating).
	Quality() float64
	// SearchFields returns the fields to match against, in priority order.
	SearchFields() []Field
}

// IsNil reports whether item is nil, including a nil pointer stored in the
// interface. Such entries are skipped rather than dereferenced.
func IsNil(item CatalogItem) bool {
	switch v := item.(type) {
	case nil:
		return true
	case *Anime:
		return v == nil
	case *Manga:
		return v == nil
	case *Quiz:
		return v == nil
	}
	rv := reflect.ValueOf(item)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Optional capabilities. Recommendations and filters type-assert for these.
type (
	HasGenres interface {
		ItemGenres() []string
	}
	HasTags interface {
		ItemTags() []string
	}
	HasCreators interface {
		ItemCreators() []string
	}
	HasCast interface {
		ItemCast() []string
	}
	HasYear interface {
		ItemYear() int
	}
	HasDifficulty interface {
		ItemDifficulty() string
	}
)

// Anime is an anime series or film.
type Anime struct {
	ID            string            `json:"id" yaml:"id"`
	Title         string            `json:"title" yaml:"title"`
	TitleJapanese string            `json:"title_japanese,omitempty" yaml:"title_japanese,omitempty"`
	AltTitles     []string          `json:"alt_titles,omitempty" yaml:"alt_titles,omitempty"`
	Synopsis      string            `json:"synopsis,omitempty" yaml:"synopsis,omitempty"`
	Genres        []string          `json:"genres,omitempty" yaml:"genres,omitempty"`
	Tags          []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Studio        string            `json:"studio,omitempty" yaml:"studio,omitempty"`
	Cast          []string          `json:"cast,omitempty" yaml:"cast,omitempty"`
	Rating        float64           `json:"rating,omitempty" yaml:"rating,omitempty"`
	Year          int               `json:"year,omitempty" yaml:"year,omitempty"`
	Extra         map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (a *Anime) ItemID() string    { return a.ID }
func (a *Anime) ItemTitle() string { return a.Title }
func (a *Anime) Quality() float64  { return a.Rating }

func (a *Anime) SearchFields() []Field {
	fields := []Field{
		{Name: "title", Kind: FieldTitle, Values: nonEmpty(a.Title)},
		{Name: "title_japanese", Kind: FieldAltTitle, Values: nonEmpty(a.TitleJapanese)},
		{Name: "alt_titles", Kind: FieldAltTitle, Values: a.AltTitles},
		{Name: "synopsis", Kind: FieldDescription, Values: nonEmpty(a.Synopsis)},
		{Name: "genres", Kind: FieldTaxonomy, Values: a.Genres},
		{Name: "tags", Kind: FieldTaxonomy, Values: a.Tags},
		{Name: "studio", Kind: FieldPeople, Values: nonEmpty(a.Studio)},
		{Name: "cast", Kind: FieldPeople, Values: a.Cast},
	}
	return append(fields, extraFields(a.Extra)...)
}

func (a *Anime) ItemGenres() []string   { return a.Genres }
func (a *Anime) ItemTags() []string     { return a.Tags }
func (a *Anime) ItemCreators() []string { return nonEmpty(a.Studio) }
func (a *Anime) ItemCast() []string     { return a.Cast }
func (a *Anime) ItemYear() int          { return a.Year }

// Manga is a manga or light novel series.
type Manga struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	AltTitles   []string          `json:"alt_titles,omitempty" yaml:"alt_titles,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Genres      []string          `json:"genres,omitempty" yaml:"genres,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Author      string            `json:"author,omitempty" yaml:"author,omitempty"`
	Status      string            `json:"status,omitempty" yaml:"status,omitempty"`
	Rating      float64           `json:"rating,omitempty" yaml:"rating,omitempty"`
	Year        int               `json:"year,omitempty" yaml:"year,omitempty"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (m *Manga) ItemID() string    { return m.ID }
func (m *Manga) ItemTitle() string { return m.Title }
func (m *Manga) Quality() float64  { return m.Rating }

func (m *Manga) SearchFields() []Field {
	fields := []Field{
		{Name: "title", Kind: FieldTitle, Values: nonEmpty(m.Title)},
		{Name: "alt_titles", Kind: FieldAltTitle, Values: m.AltTitles},
		{Name: "description", Kind: FieldDescription, Values: nonEmpty(m.Description)},
		{Name: "genres", Kind: FieldTaxonomy, Values: m.Genres},
		{Name: "tags", Kind: FieldTaxonomy, Values: m.Tags},
		{Name: "status", Kind: FieldTaxonomy, Values: nonEmpty(m.Status)},
		{Name: "author", Kind: FieldPeople, Values: nonEmpty(m.Author)},
	}
	return append(fields, extraFields(m.Extra)...)
}

func (m *Manga) ItemGenres() []string   { return m.Genres }
func (m *Manga) ItemTags() []string     { return m.Tags }
func (m *Manga) ItemCreators() []string { return nonEmpty(m.Author) }
func (m *Manga) ItemYear() int          { return m.Year }

// Quiz is a user-made trivia quiz.
type Quiz struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string            `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Difficulty  string            `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Author      string            `json:"author,omitempty" yaml:"author,omitempty"`
	Rating      float64           `json:"rating,omitempty" yaml:"rating,omitempty"`
	Year        int               `json:"year,omitempty" yaml:"year,omitempty"` // year created
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (q *Quiz) ItemID() string    { return q.ID }
func (q *Quiz) ItemTitle() string { return q.Title }
func (q *Quiz) Quality() float64  { return q.Rating }

func (q *Quiz) SearchFields() []Field {
	fields := []Field{
		{Name: "title", Kind: FieldTitle, Values: nonEmpty(q.Title)},
		{Name: "description", Kind: FieldDescription, Values: nonEmpty(q.Description)},
		{Name: "category", Kind: FieldTaxonomy, Values: nonEmpty(q.Category)},
		{Name: "tags", Kind: FieldTaxonomy, Values: q.Tags},
		{Name: "difficulty", Kind: FieldTaxonomy, Values: nonEmpty(q.Difficulty)},
		{Name: "author", Kind: FieldPeople, Values: nonEmpty(q.Author)},
	}
	return append(fields, extraFields(q.Extra)...)
}

// ItemGenres exposes the category as the quiz's single genre.
func (q *Quiz) ItemGenres() []string   { return nonEmpty(q.Category) }
func (q *Quiz) ItemTags() []string     { return q.Tags }
func (q *Quiz) ItemCreators() []string { return nonEmpty(q.Author) }
func (q *Quiz) ItemYear() int          { return q.Year }
func (q *Quiz) ItemDifficulty() string { return q.Difficulty }

func nonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []string{s}
}

// extraFields exposes the open extension map as taxonomy fields, sorted by key.
func extraFields(extra map[string]string) []Field {
	if len(extra) == 0 {
		return nil
	}
	fields := make([]Field, 0, len(extra))
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		if v := extra[k]; strings.TrimSpace(v) != "" {
			fields = append(fields, Field{Name: "extra." + k, Kind: FieldTaxonomy, Values: []string{v}})
		}
	}
	return fields
}
