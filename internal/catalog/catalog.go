// Package catalog holds the fixed list of services a customer can queue for.
package catalog

import (
	"errors"
	"fmt"

	"barber-queue/internal/models"

	"github.com/shopspring/decimal"
)

var ErrEmptyCatalog = errors.New("catalog has no services")

type Catalog struct {
	services []models.Service
	byID     map[string]int
}

func New(services []models.Service) (*Catalog, error) {
	if len(services) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		services: make([]models.Service, len(services)),
		byID:     make(map[string]int, len(services)),
	}
	copy(c.services, services)

	for i, s := range c.services {
		if s.ID == "" {
			return nil, fmt.Errorf("service %q has no id", s.Name)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate service id %q", s.ID)
		}
		if s.Duration <= 0 {
			return nil, fmt.Errorf("service %q: duration must be positive", s.ID)
		}
		if s.Price.IsNegative() {
			return nil, fmt.Errorf("service %q: price must not be negative", s.ID)
		}
		c.byID[s.ID] = i
	}

	return c, nil
}

// Default is the shop's menu.
func Default() *Catalog {
	c, err := New([]models.Service{
		{ID: "1", Name: "Standard Cut", Duration: 30, Price: decimal.NewFromInt(25)},
		{ID: "2", Name: "Premium Cut & Style", Duration: 45, Price: decimal.NewFromInt(40)},
		{ID: "3", Name: "Beard Trim", Duration: 20, Price: decimal.NewFromInt(15)},
		{ID: "4", Name: "Full Service", Duration: 60, Price: decimal.NewFromInt(55)},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// List returns the services in display order.
func (c *Catalog) List() []models.Service {
	out := make([]models.Service, len(c.services))
	copy(out, c.services)
	return out
}

func (c *Catalog) Lookup(id string) (models.Service, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Service{}, false
	}
	return c.services[i], true
}
