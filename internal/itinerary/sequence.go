package itinerary

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Sequencer hands out the Seq numbers stamped on history entries.
// Successive calls must return strictly increasing values.
type Sequencer interface {
	Next() int64
}

// snowflakeSequencer draws sequence numbers from a snowflake node. Snowflake
// IDs are time-ordered and strictly increasing per node, and stay unique
// across processes as long as each process uses its own node ID.
type snowflakeSequencer struct {
	node *snowflake.Node
}

// NewSnowflakeSequencer returns a Sequencer backed by snowflake node nodeID.
// nodeID must be in [0, 1023].
func NewSnowflakeSequencer(nodeID int64) (Sequencer, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("itinerary.NewSnowflakeSequencer: %w", err)
	}
	return &snowflakeSequencer{node: node}, nil
}

func (s *snowflakeSequencer) Next() int64 {
	return s.node.Generate().Int64()
}
