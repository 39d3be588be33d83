package cli

import (
	"fmt"

	"github.com/ksakurai/memoplan/internal/keyring"
)

type KeySetCmd struct {
	Key string `arg:"" help:"Enrichment service API key."`
}

func (c *KeySetCmd) Run(ctx *Context) error {
	if err := keyring.SetAPIKey(c.Key); err != nil {
		return err
	}
	fmt.Println("API key stored in the OS keyring.")
	return nil
}

type KeyClearCmd struct{}

func (c *KeyClearCmd) Run(ctx *Context) error {
	if err := keyring.DeleteAPIKey(); err != nil {
		return err
	}
	fmt.Println("API key removed from the OS keyring.")
	return nil
}
