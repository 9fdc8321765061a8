// Package id generates record identifiers. Both strategies are ordered by
// creation time and stay unique when two records are created in the same
// clock tick.
package id

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator interface {
	NewID() string
}

// UUID generates UUIDv7 identifiers: a millisecond timestamp followed by
// random bits.
type UUID struct{}

// NewID returns a new UUIDv7 string.
func (UUID) NewID() string {
	u, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; a v4 is still unique.
		return uuid.NewString()
	}
	return u.String()
}

// Snowflake generates Twitter-style snowflake identifiers for one node.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for the given node number (0-1023).
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

// NewID returns the next snowflake as a decimal string.
func (s *Snowflake) NewID() string {
	return s.node.Generate().String()
}

// New returns the generator for a configured strategy name.
func New(strategy string, nodeID int64) (Generator, error) {
	switch strategy {
	case "", "uuid":
		return UUID{}, nil
	case "snowflake":
		sf, err := NewSnowflake(nodeID)
		if err != nil {
			return nil, err
		}
		return sf, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
