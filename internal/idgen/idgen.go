// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
// Imported graph records that arrive without an identifier get one from here.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes distinguish the record kind an ID belongs to.
const (
	NodePrefix = "nd-"
	EdgePrefix = "ed-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// NewNodeID returns a new unique node ID.
func NewNodeID() (string, error) {
	return generate(NodePrefix)
}

// NewEdgeID returns a new unique edge ID.
func NewEdgeID() (string, error) {
	return generate(EdgePrefix)
}

func generate(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
