// Package models holds the API's request and response shapes.
package models

// Meta describes one page of a list response.
type Meta struct {
	Page        int    `json:"Page"`
	PageSize    int    `json:"PageSize"`
	TotalCount  int    `json:"TotalCount"`
	TotalPages  int    `json:"TotalPages"`
	ItemRange   []int  `json:"ItemRange,omitempty"`
	NextPageKey string `json:"NextPageKey,omitempty"`
}

// ListPage is the envelope returned by every List endpoint.
type ListPage[T any] struct {
	Items []T  `json:"Items"`
	Meta  Meta `json:"Meta"`
}

// SearchType controls how Search matches.
type SearchType string

const (
	AnyTerm           SearchType = "AnyTerm"
	AllTermsAnyField  SearchType = "AllTermsAnyField"
	AllTermsSameField SearchType = "AllTermsSameField"
	ExactPhrase       SearchType = "ExactPhrase"
	ExactPhrasePrefix SearchType = "ExactPhrasePrefix"
)

// ListOptions are the query parameters shared by List endpoints. Filters are
// sent as top level parameters; a slice value repeats the parameter, which
// the API treats as AND.
type ListOptions struct {
	Search     string
	SearchOn   []string
	SearchType SearchType
	SortBy     []string
	Page       *int
	PageSize   *int
	Filters    map[string]any
}

// Params returns the options as query parameters.
func (o ListOptions) Params() map[string]any {
	params := make(map[string]any, len(o.Filters)+6)
	for k, v := range o.Filters {
		params[k] = v
	}
	if o.Search != "" {
		params["search"] = o.Search
	}
	if len(o.SearchOn) > 0 {
		params["searchOn"] = o.SearchOn
	}
	if o.SearchType != "" {
		params["searchType"] = string(o.SearchType)
	}
	if len(o.SortBy) > 0 {
		params["sortBy"] = o.SortBy
	}
	if o.Page != nil {
		params["page"] = *o.Page
	}
	if o.PageSize != nil {
		params["pageSize"] = *o.PageSize
	}
	return params
}
