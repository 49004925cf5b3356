package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidatingSpec is anything storable: content definitions validate
// themselves at load time so broken assets fail startup, not gameplay.
type ValidatingSpec interface {
	Validate() error
}

// Asset is the on-disk envelope around a content definition.
type Asset[T ValidatingSpec] struct {
	Version uint   `json:"version"`
	ID      string `json:"id"`
	Spec    T      `json:"spec"`
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}
	if a.ID == "" {
		el.Add(fmt.Errorf("id must be set"))
	} else if !idPattern.MatchString(a.ID) {
		el.Add(fmt.Errorf("id %q must be lowercase alphanumeric with - or _", a.ID))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
