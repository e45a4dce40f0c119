// Package seed loads demo stores, accounts and catalogue items from YAML.
package seed

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/grocerease/grocerease-backend/pkg/enums"
)

// File is the top-level seed document.
type File struct {
	Stores []Store `yaml:"stores"`
	Users  []User  `yaml:"users"`
	Items  []Item  `yaml:"items"`
}

type Store struct {
	Name     string   `yaml:"name"`
	Location string   `yaml:"location"`
	Street   string   `yaml:"street"`
	City     string   `yaml:"city"`
	State    string   `yaml:"state"`
	ZipCode  string   `yaml:"zipCode"`
	Phone    string   `yaml:"phone"`
	Email    string   `yaml:"email"`
	Open     string   `yaml:"open"`
	Close    string   `yaml:"close"`
	Closed   []string `yaml:"closedOn"`
	Inactive bool     `yaml:"inactive"`
}

type User struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Store      string `yaml:"store"`
	EmployeeID string `yaml:"employeeId"`
	Department string `yaml:"department"`
}

type Item struct {
	Name          string `yaml:"name"`
	Price         string `yaml:"price"`
	OriginalPrice string `yaml:"originalPrice"`
	Promotion     string `yaml:"promotion"`
	DealDays      int    `yaml:"dealDays"`
	Store         string `yaml:"store"`
	Category      string `yaml:"category"`
	Unit          string `yaml:"unit"`
	Quantity      string `yaml:"quantity"`
	ImageURL      string `yaml:"imageUrl"`
	StockStatus   string `yaml:"stockStatus"`
	StockCount    int    `yaml:"stockCount"`
}

// Load reads and validates a seed file from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a seed document, rejecting unknown keys.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out File
	if err := dec.Decode(&out); err != nil {
		if err == io.EOF {
			return &out, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate reports every structural problem in the document at once.
func (f *File) Validate() error {
	var errs error
	stores := map[string]bool{}
	for i, s := range f.Stores {
		if s.Name == "" || s.Location == "" {
			errs = multierr.Append(errs, fmt.Errorf("stores[%d]: name and location are required", i))
		}
		if stores[s.Name] {
			errs = multierr.Append(errs, fmt.Errorf("stores[%d]: duplicate store %q", i, s.Name))
		}
		stores[s.Name] = true
	}
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" || u.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("users[%d]: name, email and password are required", i))
		}
		role := enums.RoleUser
		if u.Role != "" {
			parsed, err := enums.ParseRole(u.Role)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("users[%d]: %w", i, err))
			}
			role = parsed
		}
		if u.Store != "" && role != enums.RoleEmployee {
			errs = multierr.Append(errs, fmt.Errorf("users[%d]: only employees can be assigned to a store", i))
		}
		if u.Store != "" && !stores[u.Store] {
			errs = multierr.Append(errs, fmt.Errorf("users[%d]: unknown store %q", i, u.Store))
		}
	}
	for i, it := range f.Items {
		if it.Name == "" || it.Price == "" {
			errs = multierr.Append(errs, fmt.Errorf("items[%d]: name and price are required", i))
		}
		if !stores[it.Store] {
			errs = multierr.Append(errs, fmt.Errorf("items[%d]: unknown store %q", i, it.Store))
		}
		if _, err := enums.ParseCategory(it.Category); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("items[%d]: %w", i, err))
		}
		if it.Unit != "" {
			if _, err := enums.ParseUnit(it.Unit); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("items[%d]: %w", i, err))
			}
		}
		if it.StockStatus != "" {
			if _, err := enums.ParseStockStatus(it.StockStatus); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("items[%d]: %w", i, err))
			}
		}
	}
	return errs
}
