package testutil

import (
	"github.com/google/uuid"

	"sitekit/internal/consent/models"
)

// StateBuilder assembles consent states for tests.
type StateBuilder struct {
	state models.State
}

// NewStateBuilder starts from the necessary-only default.
func NewStateBuilder() *StateBuilder {
	return &StateBuilder{state: models.DefaultState()}
}

func (b *StateBuilder) With(c models.Category) *StateBuilder {
	b.state = b.state.With(c, true)
	return b
}

func (b *StateBuilder) Without(c models.Category) *StateBuilder {
	b.state = b.state.With(c, false)
	return b
}

func (b *StateBuilder) Build() models.State {
	return b.state
}

// RecordJSON encodes s as the persisted record and panics on failure.
func RecordJSON(s models.State) string {
	raw, err := models.EncodeRecord(s)
	if err != nil {
		panic(err)
	}
	return raw
}

// NewVisitorID returns a random visitor id in the format sessions issue.
func NewVisitorID() string {
	return uuid.NewString()
}
