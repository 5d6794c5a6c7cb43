package model

import (
	"fmt"
	"slices"
	"sort"

	"github.com/Payphone-Digital/openpayments/pkg/validation"
)

// Dataset is the per-route configuration for one queryable table.
type Dataset struct {
	Name         string   `mapstructure:"name" json:"name" validate:"required,sqlident"`
	Table        string   `mapstructure:"table" json:"table" validate:"required,sqlident"`
	DefaultSort  string   `mapstructure:"default_sort" json:"default_sort" validate:"required,sqlident"`
	DefaultLimit int      `mapstructure:"default_limit" json:"default_limit" validate:"gt=0"`
	SortFields   []string `mapstructure:"sort_fields" json:"sort_fields" validate:"min=1,unique,dive,sqlident"`
	FilterFields []string `mapstructure:"filter_fields" json:"filter_fields" validate:"unique,dive,sqlident"`
	Columns      []string `mapstructure:"columns" json:"columns" validate:"unique,dive,sqlident"`
}

// Path returns the HTTP route for the dataset.
func (d Dataset) Path() string {
	return "/" + d.Name
}

// AllowsSort reports whether column may be used in ORDER BY. Matching is exact:
// identifiers are quoted in SQL, so case matters.
func (d Dataset) AllowsSort(column string) bool {
	return slices.Contains(d.SortFields, column)
}

// AllowsFilter reports whether column may be used as an equality filter.
func (d Dataset) AllowsFilter(column string) bool {
	return slices.Contains(d.FilterFields, column)
}

// Validate checks tags plus the cross-field rule that DefaultSort is sortable.
func (d Dataset) Validate() error {
	if err := validation.Struct(d); err != nil {
		return fmt.Errorf("dataset %q: %w", d.Name, err)
	}
	if !d.AllowsSort(d.DefaultSort) {
		return fmt.Errorf("dataset %q: default_sort %q is not in sort_fields", d.Name, d.DefaultSort)
	}
	return nil
}

// WithFilterFields returns a copy whose filter allow-list is columns plus every sort field.
func (d Dataset) WithFilterFields(columns []string) Dataset {
	merged := make([]string, 0, len(columns)+len(d.SortFields))
	seen := make(map[string]struct{}, cap(merged))
	for _, c := range append(slices.Clone(columns), d.SortFields...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		merged = append(merged, c)
	}
	sort.Strings(merged)
	d.FilterFields = merged
	return d
}

// merge overlays the non-zero fields of o onto d.
func (d Dataset) merge(o Dataset) Dataset {
	if o.Table != "" {
		d.Table = o.Table
	}
	if o.DefaultSort != "" {
		d.DefaultSort = o.DefaultSort
	}
	if o.DefaultLimit != 0 {
		d.DefaultLimit = o.DefaultLimit
	}
	if len(o.SortFields) > 0 {
		d.SortFields = o.SortFields
	}
	if len(o.FilterFields) > 0 {
		d.FilterFields = o.FilterFields
	}
	if o.Columns != nil {
		d.Columns = o.Columns
	}
	return d
}
