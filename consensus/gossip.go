package consensus

import "github.com/fewzfewz/scratchBlockchain/core/types"

// ProposalMessage carries a proposed block for a (slot, round) to the
// network; the proposer's signature lives on the block header itself.
type ProposalMessage struct {
	Slot  uint64
	Round uint64
	Block *types.Block
}

// VoteMessage carries a single signed prevote or precommit.
type VoteMessage struct {
	Vote *types.Vote
}

// TransactionMessage carries one gossiped transaction plus the sender's
// public key, needed for signature verification at admission since the
// wire transaction itself carries only the derived Address.
type TransactionMessage struct {
	Transaction *types.Transaction
	SenderKey   []byte
}

// Broadcaster is the outbound half of the gossip network: the engine
// calls it to publish its own proposals and votes without knowing how
// they actually reach peers (in-process test harness, libp2p pubsub,
// anything satisfying the interface).
type Broadcaster interface {
	BroadcastProposal(ProposalMessage) error
	BroadcastVote(VoteMessage) error
}

// Receiver is the inbound half: the transport layer calls these as
// messages arrive, and the engine never calls them itself.
type Receiver interface {
	OnProposal(ProposalMessage)
	OnVote(VoteMessage)
	OnTransaction(TransactionMessage)
}
