package model

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// Built-in dataset names
const (
	DatasetResearchPayments = "research_payments"
	DatasetGeneralPayments  = "general_payments"
	DatasetOwnership        = "ownership"
)

// DefaultDatasets returns the three open-payments routes. The research table keeps
// the mixed-case column names it was loaded with; the other two are lower-case.
func DefaultDatasets() []Dataset {
	research := Dataset{
		Name:         DatasetResearchPayments,
		Table:        "research_payments",
		DefaultSort:  "Record_ID",
		DefaultLimit: 10,
		SortFields:   []string{"Record_ID", "Recipient_City", "Recipient_State", "Recipient_Country", "Payment_Publication_Date"},
	}.WithFilterFields([]string{
		"Change_Type",
		"Covered_Recipient_Type",
		"Covered_Recipient_NPI",
		"Covered_Recipient_First_Name",
		"Covered_Recipient_Last_Name",
		"Recipient_Zip_Code",
		"Principal_Investigator_1_NPI",
		"Applicable_Manufacturer_or_Applicable_GPO_Making_Payment_Name",
		"Form_of_Payment_or_Transfer_of_Value",
		"Date_of_Payment",
		"Program_Year",
		"Name_of_Study",
		"Dispute_Status_for_Publication",
	})

	general := Dataset{
		Name:         DatasetGeneralPayments,
		Table:        "general_payments",
		DefaultSort:  "date_of_payment",
		DefaultLimit: 10,
		SortFields:   []string{"recipient_city", "recipient_state", "recipient_country", "payment_publication_date", "date_of_payment"},
	}.WithFilterFields([]string{
		"record_id",
		"change_type",
		"covered_recipient_type",
		"covered_recipient_npi",
		"covered_recipient_first_name",
		"covered_recipient_last_name",
		"recipient_zip_code",
		"applicable_manufacturer_or_applicable_gpo_making_payment_name",
		"form_of_payment_or_transfer_of_value",
		"nature_of_payment_or_transfer_of_value",
		"program_year",
		"dispute_status_for_publication",
	})

	ownership := Dataset{
		Name:         DatasetOwnership,
		Table:        "ownership",
		DefaultSort:  "record_id",
		DefaultLimit: 1,
		SortFields:   []string{"record_id", "physician_npi"},
	}.WithFilterFields([]string{
		"change_type",
		"physician_first_name",
		"physician_last_name",
		"recipient_city",
		"recipient_state",
		"recipient_zip_code",
		"recipient_country",
		"applicable_manufacturer_or_applicable_gpo_making_payment_name",
		"interest_held_by_physician_or_an_immediate_family_member",
		"program_year",
		"payment_publication_date",
	})

	return []Dataset{research, general, ownership}
}

// Registry holds the validated dataset definitions served by the API.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	datasets map[string]Dataset
}

// NewRegistry validates every dataset and rejects duplicate names or routes.
func NewRegistry(datasets ...Dataset) (*Registry, error) {
	r := &Registry{datasets: make(map[string]Dataset, len(datasets))}
	for _, d := range datasets {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.datasets[d.Name]; exists {
			return nil, fmt.Errorf("dataset %q defined twice", d.Name)
		}
		r.order = append(r.order, d.Name)
		r.datasets[d.Name] = d
	}
	return r, nil
}

// Get returns a copy of the named dataset.
func (r *Registry) Get(name string) (Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.datasets[name]
	return d, ok
}

// All returns the datasets in registration order.
func (r *Registry) All() []Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Dataset, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.datasets[name])
	}
	return out
}

// Count returns the number of registered datasets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// SetFilterFields replaces a dataset's filter allow-list (sort fields are always kept).
func (r *Registry) SetFilterFields(name string, columns []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.datasets[name]
	if !ok {
		return fmt.Errorf("dataset %q not found", name)
	}
	updated := d.WithFilterFields(columns)
	if err := updated.Validate(); err != nil {
		return err
	}
	r.datasets[name] = updated
	return nil
}

type datasetFile struct {
	Datasets []Dataset `mapstructure:"datasets"`
}

// LoadDatasetFile reads dataset overrides from a YAML/JSON/TOML file and merges them
// onto base by name. Unknown names are appended as new routes.
func LoadDatasetFile(path string, base []Dataset) ([]Dataset, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read datasets file: %w", err)
	}

	var file datasetFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode datasets file: %w", err)
	}

	out := make([]Dataset, len(base))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, d := range out {
		index[d.Name] = i
	}

	for _, override := range file.Datasets {
		if override.Name == "" {
			return nil, fmt.Errorf("datasets file %s: entry without a name", path)
		}
		if i, ok := index[override.Name]; ok {
			out[i] = out[i].merge(override)
			continue
		}
		index[override.Name] = len(out)
		out = append(out, override)
	}

	return out, nil
}
