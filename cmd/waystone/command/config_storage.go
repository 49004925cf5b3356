package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/waystone-mud/waystone/internal/game"
	"github.com/waystone-mud/waystone/internal/storage"
)

// StorageConfig points at the directories holding world content.
type StorageConfig struct {
	Rooms AssetConfig[*game.Room] `json:"rooms"`
	NPCs  AssetConfig[*game.NPC]  `json:"npcs"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.NPCs.Validate("npcs"))
	return el.Err()
}

// BuildWorld loads all content stores and assembles the world from them.
func (c *StorageConfig) BuildWorld() (*game.World, error) {
	rooms, err := c.Rooms.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}
	npcs, err := c.NPCs.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating npc store: %w", err)
	}

	world, err := game.NewWorld(rooms, npcs)
	if err != nil {
		return nil, fmt.Errorf("assembling world: %w", err)
	}
	return world, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
