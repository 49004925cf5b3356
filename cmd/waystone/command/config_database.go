package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/waystone-mud/waystone/internal/database"
)

type DatabaseConfig struct {
	Path string `json:"path"`
}

func (c *DatabaseConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("path is required"))
	}

	return el.Err()
}

func (c *DatabaseConfig) BuildDatabase() (*database.DB, error) {
	db, err := database.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %q: %w", c.Path, err)
	}
	return db, nil
}
