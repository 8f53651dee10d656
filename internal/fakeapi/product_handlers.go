package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ordercloud/models"
)

const (
	defaultPageSize = 20
	productType     = "Product"
)

// listParams are never treated as filters.
var listParams = []string{"search", "searchOn", "searchType", "sortBy", "page", "pageSize"}

func (s *Server) ListProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page := positiveInt(query.Get("page"), 1)
		pageSize := positiveInt(query.Get("pageSize"), defaultPageSize)

		s.lock.RLock()
		items := make([]models.Product, 0, len(s.products))
		for _, p := range s.products {
			if matchesProduct(p, query) {
				items = append(items, p)
			}
		}
		s.lock.RUnlock()
		sortProducts(items, query.Get("sortBy"))

		total := len(items)
		start := min((page-1)*pageSize, total)
		end := min(start+pageSize, total)
		meta := models.Meta{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: total,
			TotalPages: (total + pageSize - 1) / pageSize,
			ItemRange:  []int{start + 1, end},
		}
		writeJSON(w, http.StatusOK, models.ListPage[models.Product]{Items: items[start:end], Meta: meta})
	}
}

func (s *Server) GetProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("productID")
		p, ok := s.Product(id)
		if !ok {
			writeNotFound(w, productType, id)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) CreateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Product
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeAPIError(w, http.StatusBadRequest, "InvalidRequest", "Request body is not valid JSON.", nil)
			return
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		if _, exists := s.products[p.ID]; exists {
			writeAPIError(w, http.StatusConflict, "IdExists", fmt.Sprintf("Object already exists with ID %s.", p.ID), nil)
			return
		}
		s.products[p.ID] = p
		writeJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) SaveProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("productID")
		var p models.Product
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeAPIError(w, http.StatusBadRequest, "InvalidRequest", "Request body is not valid JSON.", nil)
			return
		}
		if p.ID == "" {
			p.ID = id
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.products, id)
		s.products[p.ID] = p
		writeJSON(w, http.StatusOK, p)
	}
}

// PatchProductHandler overlays the fields present in the body.
func (s *Server) PatchProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("productID")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "InvalidRequest", err.Error(), nil)
			return
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		p, ok := s.products[id]
		if !ok {
			writeNotFound(w, productType, id)
			return
		}
		if err := json.Unmarshal(body, &p); err != nil {
			writeAPIError(w, http.StatusBadRequest, "InvalidRequest", "Request body is not valid JSON.", nil)
			return
		}
		delete(s.products, id)
		s.products[p.ID] = p
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) DeleteProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("productID")
		s.lock.Lock()
		defer s.lock.Unlock()
		if _, ok := s.products[id]; !ok {
			writeNotFound(w, productType, id)
			return
		}
		delete(s.products, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// matchesProduct applies search and the ID, Name, Active and xp.* filters.
// Repeated filter values must all match.
func matchesProduct(p models.Product, query map[string][]string) bool {
	if search := strings.ToLower(firstValue(query, "search")); search != "" {
		if !strings.Contains(strings.ToLower(p.ID), search) && !strings.Contains(strings.ToLower(p.Name), search) {
			return false
		}
	}
	for key, values := range query {
		if slices.Contains(listParams, key) {
			continue
		}
		actual, known := productField(p, key)
		if !known {
			continue
		}
		for _, v := range values {
			if !matchesValue(actual, v) {
				return false
			}
		}
	}
	return true
}

func productField(p models.Product, key string) (string, bool) {
	switch {
	case key == "ID":
		return p.ID, true
	case key == "Name":
		return p.Name, true
	case key == "Active":
		return strconv.FormatBool(p.IsActive()), true
	case strings.HasPrefix(key, "xp."):
		value, ok := p.XP[strings.TrimPrefix(key, "xp.")]
		if !ok {
			return "", true
		}
		return fmt.Sprint(value), true
	}
	return "", false
}

// matchesValue supports the API's "!" negation and "*" wildcard forms.
func matchesValue(actual, filter string) bool {
	if negated, ok := strings.CutPrefix(filter, "!"); ok {
		return !matchesValue(actual, negated)
	}
	if prefix, ok := strings.CutSuffix(filter, "*"); ok {
		return strings.HasPrefix(actual, prefix)
	}
	return actual == filter
}

func sortProducts(items []models.Product, sortBy string) {
	field, desc := strings.CutPrefix(sortBy, "!")
	slices.SortFunc(items, func(a, b models.Product) int {
		c := strings.Compare(a.ID, b.ID)
		if field == "Name" {
			c = strings.Compare(a.Name, b.Name)
		}
		if desc {
			return -c
		}
		return c
	})
}

func firstValue(query map[string][]string, key string) string {
	if values := query[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
