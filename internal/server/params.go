package server

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/hyperjump/fandex/internal/models"
)

// parseSearchParams builds a query from GET parameters. genre and tag may
// repeat; every filter is optional.
func parseSearchParams(v url.Values) (*models.SearchQuery, error) {
	q := &models.SearchQuery{
		Query:  v.Get("q"),
		Domain: models.Domain(v.Get("domain")),
	}
	var err error
	if q.Limit, err = intParam(v, "limit"); err != nil {
		return nil, err
	}
	if q.MinScore, err = floatParam(v, "min_score"); err != nil {
		return nil, err
	}
	if s := v.Get("remote"); s != "" {
		if q.Remote, err = strconv.ParseBool(s); err != nil {
			return nil, fmt.Errorf("invalid remote %q", s)
		}
	}

	f := &q.Filters
	f.Genres = v["genre"]
	f.Tags = v["tag"]
	f.Creator = v.Get("creator")
	f.Difficulty = v.Get("difficulty")
	if f.MinRating, err = floatParam(v, "min_rating"); err != nil {
		return nil, err
	}
	if f.YearFrom, err = intParam(v, "year_from"); err != nil {
		return nil, err
	}
	if f.YearTo, err = intParam(v, "year_to"); err != nil {
		return nil, err
	}
	return q, nil
}

func intParam(v url.Values, name string) (int, error) {
	s := v.Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

func floatParam(v url.Values, name string) (float64, error) {
	s := v.Get(name)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return f, nil
}
