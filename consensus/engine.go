// Package consensus implements the round-based BFT engine: proposer
// selection, the propose/prevote/precommit phase cycle, timeout-driven
// round advance, atomic commit into the store, and reward settlement.
package consensus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/store"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/fewzfewz/scratchBlockchain/log"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Phase is one step of a round's propose/prevote/precommit cycle.
type Phase int

const (
	PhasePropose Phase = iota
	PhasePrevote
	PhasePrecommit
	PhaseCommit
)

func (p Phase) String() string {
	switch p {
	case PhasePropose:
		return "propose"
	case PhasePrevote:
		return "prevote"
	case PhasePrecommit:
		return "precommit"
	case PhaseCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Pool is the narrow capability the engine needs from core/txpool.
type Pool interface {
	SelectForBlock(maxGas uint64, baseFee uint64) []*types.Transaction
	Remove(hashes []zondcommon.Hash)
	Reshape()
	Admit(tx *types.Transaction, senderPubKey zondcommon.PublicKey) error
}

// Store is the narrow capability the engine needs from core/store.
type Store interface {
	LatestHeight() (uint64, bool)
	GetBlockByHeight(height uint64) (*types.Block, error)
	ApplyBlock(app *store.BlockApplication) error
	GetAccount(addr zondcommon.Address) (types.Account, error)
	SetFinalizedHeight(height uint64) error
}

// EvidenceSink receives equivocation evidence as the engine observes it.
// A nil sink is valid; evidence is simply dropped.
type EvidenceSink interface {
	ReportEquivocation(*types.EquivocationEvidence)
}

// Engine drives one validator's participation in the round-based
// consensus protocol: it is the single owner of the current (slot, round,
// phase) and the only writer to Store for ordinary block production.
type Engine struct {
	cfg        Config
	validators *types.ValidatorSet
	self       zondcommon.Address
	secretKey  ed25519.PrivateKey

	store    Store
	pool     Pool
	executor Executor
	bcast    Broadcaster
	evidence EvidenceSink

	limiter *rate.Limiter

	mu      sync.Mutex
	slot    uint64
	round   uint64
	phase   Phase
	votes   *VoteSet
	locked  *types.Block // the block this validator precommitted to, if any

	proposals map[roundKey]*types.Block
}

// NewEngine constructs an Engine at the height following the store's
// current latest block, for the given validator set and this validator's
// signing identity. It always installs one engine-wide rate limiter (32
// events per second, burst 64) that OnProposal and OnVote consult before
// doing any other work. The limiter is shared by all peers: there is no
// per-sender accounting and no extra penalty for a sender of invalid votes.
func NewEngine(cfg Config, validators *types.ValidatorSet, self zondcommon.Address, secretKey ed25519.PrivateKey, st Store, pool Pool, executor Executor, bcast Broadcaster, evidence EvidenceSink) *Engine {
	startSlot := uint64(0)
	if h, ok := st.LatestHeight(); ok {
		startSlot = h + 1
	}
	return &Engine{
		cfg:        cfg,
		validators: validators,
		self:       self,
		secretKey:  secretKey,
		store:      st,
		pool:       pool,
		executor:   executor,
		bcast:      bcast,
		evidence:   evidence,
		limiter:    rate.NewLimiter(rate.Limit(32), 64),
		slot:       startSlot,
		phase:      PhasePropose,
		votes:      NewVoteSet(validators),
		proposals:  make(map[roundKey]*types.Block),
	}
}

// Slot, Round and CurrentPhase report the engine's current position, for
// observability collaborators.
func (e *Engine) Slot() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slot
}

func (e *Engine) Round() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

func (e *Engine) CurrentPhase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Run drives the engine through slots until ctx is canceled. Each slot
// runs RunSlot, which keeps advancing rounds until a block commits; Run
// returns when ctx is canceled or a slot fails with an error. Callers
// needing finer control should call RunSlot directly instead.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.RunSlot(ctx); err != nil {
			return fmt.Errorf("consensus: slot %d: %w", e.Slot(), err)
		}
	}
}

// RunSlot advances the engine through rounds of the current slot until a
// block commits or ctx is canceled. Each round runs propose, prevote and
// precommit in sequence with a phase timeout; a phase that fails to reach
// quorum advances the round instead of the slot.
func (e *Engine) RunSlot(ctx context.Context) error {
	e.mu.Lock()
	slot := e.slot
	e.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		committed, err := e.runRound(ctx)
		if err != nil {
			return err
		}
		if committed {
			e.mu.Lock()
			e.slot = slot + 1
			e.round = 0
			e.phase = PhasePropose
			e.locked = nil
			e.votes = NewVoteSet(e.validators)
			e.mu.Unlock()
			return nil
		}
		e.mu.Lock()
		e.round++
		e.phase = PhasePropose
		e.mu.Unlock()
	}
}

// runRound executes one propose/prevote/precommit cycle for the engine's
// current (slot, round). It returns committed=true once a block for this
// slot lands in the store via ApplyBlock.
func (e *Engine) runRound(ctx context.Context) (committed bool, err error) {
	e.mu.Lock()
	slot, round := e.slot, e.round
	e.mu.Unlock()

	proposer := e.validators.Proposer(slot, round)
	if proposer == nil {
		return false, fmt.Errorf("consensus: empty validator set")
	}

	if proposer.Address == e.self {
		if err := e.propose(slot, round); err != nil {
			return false, err
		}
	}
	if !e.waitForPhase(ctx, RoundTimeout(e.cfg.TPropose, round), func() bool {
		_, ok := e.proposals[roundKey{Slot: slot, Round: round}]
		return ok
	}) {
		return false, nil // no proposal arrived in time; advance round
	}

	block := e.proposals[roundKey{Slot: slot, Round: round}]
	hash, err := block.Hash()
	if err != nil {
		return false, fmt.Errorf("consensus: hash proposal: %w", err)
	}

	prevoteHashCandidate := hash
	if err := e.validateProposal(slot, round, proposer, block, hash); err != nil {
		log.Debug("rejecting proposal", "slot", slot, "round", round, "proposer", proposer.Address, "err", err)
		prevoteHashCandidate = zondcommon.Hash{}
	}

	if err := e.castVote(types.VoteKindPrevote, slot, round, prevoteHashCandidate); err != nil {
		return false, err
	}
	if !e.waitForPhase(ctx, RoundTimeout(e.cfg.TPrevote, round), func() bool {
		_, ok := e.votes.PrevoteQuorum(slot, round)
		return ok
	}) {
		return false, nil
	}

	prevoteHash, _ := e.votes.PrevoteQuorum(slot, round)
	if prevoteHash != hash {
		return false, nil // quorum formed on nil or a different proposal; advance round
	}

	e.mu.Lock()
	e.locked = block
	e.mu.Unlock()

	if err := e.castVote(types.VoteKindPrecommit, slot, round, hash); err != nil {
		return false, err
	}
	if !e.waitForPhase(ctx, RoundTimeout(e.cfg.TPrecommit, round), func() bool {
		_, ok := e.votes.PrecommitQuorum(slot, round)
		return ok
	}) {
		return false, nil
	}

	precommitHash, _ := e.votes.PrecommitQuorum(slot, round)
	if precommitHash != hash {
		return false, nil
	}

	if err := e.commit(slot, round, block, hash); err != nil {
		return false, err
	}
	return true, nil
}

// waitForPhase polls condition until it is true, the timeout elapses, or
// ctx is canceled. The engine is otherwise event-driven (OnProposal/OnVote
// push state in from the gossip layer); polling here just bounds how long
// a round waits for that external input.
func (e *Engine) waitForPhase(ctx context.Context, timeout time.Duration, condition func() bool) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		e.mu.Lock()
		ready := condition()
		e.mu.Unlock()
		if ready {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}

// propose builds a block from the pool's best-ranked transactions and
// broadcasts it. Only called when this validator is the proposer for
// (slot, round).
func (e *Engine) propose(slot, round uint64) error {
	e.pool.Reshape()
	baseFee := e.baseFee()
	txs := e.pool.SelectForBlock(e.cfg.MaxGas, baseFee)
	if len(txs) == 0 && !e.cfg.AllowEmptyBlocks {
		return nil
	}

	parentHash := zondcommon.Hash{}
	if parent, err := e.store.GetBlockByHeight(slot - 1); err == nil && parent != nil {
		if h, err := parent.Hash(); err == nil {
			parentHash = h
		}
	}

	// Execute speculatively against current chain state to derive the
	// post-application state root: every honest validator re-executes the
	// same deterministic transaction set and arrives at the same root, so
	// this does not require a separate verification round trip.
	delta, _, gasUsed, _, included := e.executeAll(txs, slot, baseFee)

	header := &types.BlockHeader{
		ParentHash:     parentHash,
		StateRoot:      computeStateRoot(delta),
		Slot:           slot,
		ValidatorSetID: e.validators.ID,
		GasUsed:        gasUsed,
		BaseFee:        baseFee,
	}
	header.ExtrinsicsRoot = types.ComputeExtrinsicsRoot(included)
	if err := header.Sign(e.secretKey); err != nil {
		return fmt.Errorf("consensus: sign proposal header: %w", err)
	}

	block := types.NewBlock(header, included)
	e.mu.Lock()
	e.proposals[roundKey{Slot: slot, Round: round}] = block
	e.mu.Unlock()

	if e.bcast != nil {
		return e.bcast.BroadcastProposal(ProposalMessage{Slot: slot, Round: round, Block: block})
	}
	return nil
}

// validateProposal reruns every check the Prevote phase requires before a
// validator may vote for a proposed block: parent-hash continuity, slot
// and validator-set agreement, a correct extrinsics root, a valid proposer
// signature, and a state root that reproduces under local re-execution of
// the included transactions. Any failure here is reported back as a nil
// prevote rather than an error — an invalid proposal degrades liveness for
// one round, it is never a store or engine fault.
func (e *Engine) validateProposal(slot, round uint64, proposer *types.Validator, block *types.Block, hash zondcommon.Hash) error {
	header := block.Header
	if header.Slot != slot {
		return fmt.Errorf("consensus: proposal slot %d != expected %d", header.Slot, slot)
	}
	if header.ValidatorSetID != e.validators.ID {
		return fmt.Errorf("consensus: proposal validator set %d != active %d", header.ValidatorSetID, e.validators.ID)
	}
	if !header.VerifyProposerSignature(proposer.PublicKey) {
		return fmt.Errorf("consensus: bad proposer signature from %s", proposer.Address.Hex())
	}

	if parent, err := e.store.GetBlockByHeight(slot - 1); err == nil && parent != nil {
		parentHash, err := parent.Hash()
		if err != nil {
			return fmt.Errorf("consensus: hash parent: %w", err)
		}
		if header.ParentHash != parentHash {
			return fmt.Errorf("consensus: proposal parent hash mismatch")
		}
	}

	wantExtrinsics := types.ComputeExtrinsicsRoot(block.Transactions)
	if header.ExtrinsicsRoot != wantExtrinsics {
		return fmt.Errorf("consensus: extrinsics root mismatch")
	}

	if err := checkWellFormedConcurrently(block.Transactions); err != nil {
		return fmt.Errorf("consensus: %w", err)
	}

	delta, _, gasUsed, _, _ := e.executeAll(block.Transactions, slot, header.BaseFee)
	if computeStateRoot(delta) != header.StateRoot {
		return fmt.Errorf("consensus: state root mismatch")
	}
	if gasUsed != header.GasUsed || gasUsed > e.cfg.MaxGas {
		return fmt.Errorf("consensus: gas accounting mismatch")
	}
	return nil
}

// castVote signs and records a vote from this validator, broadcasting it
// to peers.
func (e *Engine) castVote(kind types.VoteKind, slot, round uint64, hash zondcommon.Hash) error {
	vote := &types.Vote{Kind: kind, Slot: slot, Round: round, BlockHash: hash, VoterAddress: e.self}
	if err := vote.Sign(e.secretKey); err != nil {
		return fmt.Errorf("consensus: sign vote: %w", err)
	}
	e.mu.Lock()
	e.votes.AddVote(vote)
	e.mu.Unlock()
	if e.bcast != nil {
		return e.bcast.BroadcastVote(VoteMessage{Vote: vote})
	}
	return nil
}

// commit executes every transaction in block, settles the block reward,
// assembles the finality certificate from collected precommits, and
// writes everything to the store in one atomic batch.
func (e *Engine) commit(slot, round uint64, block *types.Block, hash zondcommon.Hash) error {
	delta, receipts, _, totalFees, included := e.executeAll(block.Transactions, slot, block.Header.BaseFee)

	proposer := e.validators.Proposer(slot, round)
	settlement := RewardSettlement(e.cfg, slot, totalFees)
	view := &deltaOverlayView{base: e.store, overlay: delta}
	if err := ApplySettlement(delta, proposer.Address, e.cfg, settlement, view); err != nil {
		return fmt.Errorf("consensus: apply settlement: %w", err)
	}

	cert := &types.FinalityCertificate{
		BlockHash:  hash,
		Slot:       slot,
		Round:      round,
		Precommits: e.votes.Precommits(slot, round, hash),
	}

	app := &store.BlockApplication{
		Block:       block,
		Certificate: cert,
		StateDelta:  delta,
		Receipts:    receipts,
	}
	if err := e.store.ApplyBlock(app); err != nil {
		// A store failure during commit is the one fatal condition this
		// engine recognizes: finalized_height must never advance past an
		// application that didn't durably land. Abort the commit without
		// touching finalized_height and return the error; runRound, RunSlot
		// and Run all stop and pass it up rather than surface partial state.
		log.Error("store failure applying block, aborting commit", "slot", slot, "round", round, "err", err)
		return fmt.Errorf("consensus: apply block: %w", err)
	}
	if err := e.store.SetFinalizedHeight(slot); err != nil {
		return fmt.Errorf("consensus: set finalized height: %w", err)
	}
	log.Info("committed block", "slot", slot, "round", round, "hash", hash.Hex(), "txs", len(included))

	var hashes []zondcommon.Hash
	for _, tx := range included {
		hashes = append(hashes, tx.Hash())
	}
	e.pool.Remove(hashes)

	for _, ev := range e.votes.Evidence() {
		e.reportEquivocation(ev)
	}
	return nil
}

// reportEquivocation logs and forwards evidence of a double vote. The
// engine never slashes directly; slashing is an external collaborator's
// decision driven by this evidence stream.
func (e *Engine) reportEquivocation(ev *types.EquivocationEvidence) {
	log.Warn("equivocation detected", "validator", ev.Validator.Hex(), "slot", ev.Slot, "round", ev.Round)
	if e.evidence != nil {
		e.evidence.ReportEquivocation(ev)
	}
}

// OnProposal ingests a gossiped proposal, subject to the inbound rate
// limiter.
func (e *Engine) OnProposal(msg ProposalMessage) {
	if e.limiter != nil && !e.limiter.Allow() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.proposals[roundKey{Slot: msg.Slot, Round: msg.Round}] = msg.Block
}

// OnVote verifies and ingests a gossiped vote, subject to the inbound
// rate limiter. Invalid signatures and votes from non-members are
// silently dropped.
func (e *Engine) OnVote(msg VoteMessage) {
	if e.limiter != nil && !e.limiter.Allow() {
		return
	}
	vote := msg.Vote
	validator, ok := e.validators.Get(vote.VoterAddress)
	if !ok || !vote.VerifySignature(validator.PublicKey) {
		return
	}
	e.mu.Lock()
	_, ev := e.votes.AddVote(vote)
	e.mu.Unlock()
	if ev != nil {
		e.reportEquivocation(ev)
	}
}

// OnTransaction verifies sender's public key against the transaction's
// declared Address and forwards it to the pool. Gossip-layer transport
// concerns (deduplication, peer scoring) live outside this engine.
func (e *Engine) OnTransaction(msg TransactionMessage) {
	pub, err := crypto.PublicKeyFromBytes(msg.SenderKey)
	if err != nil {
		return
	}
	_ = e.pool.Admit(msg.Transaction, pub)
}

// deltaOverlayView answers GetAccount from an in-flight delta before
// falling back to the store, so later transactions in the same block see
// earlier ones' effects.
type deltaOverlayView struct {
	base    Store
	overlay map[zondcommon.Address]types.Account
}

func (v *deltaOverlayView) GetAccount(addr zondcommon.Address) (types.Account, error) {
	if acc, ok := v.overlay[addr]; ok {
		return acc, nil
	}
	return v.base.GetAccount(addr)
}

// checkWellFormedConcurrently reruns every transaction's static,
// state-independent well-formedness check off the critical path: each
// check is embarrassingly parallel, so a round with a full block of
// transactions pays for one pass over cores instead of one pass over txs.
// The sequential re-execution in executeAll still owns state ordering.
func checkWellFormedConcurrently(txs []*types.Transaction) error {
	var g errgroup.Group
	for _, tx := range txs {
		tx := tx
		g.Go(func() error {
			if err := tx.CheckWellFormed(); err != nil {
				return fmt.Errorf("transaction %s: %w", tx.Hash().Hex(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// baseFee returns the base fee in effect for the engine's current block.
// Dynamic fee-market adjustment (§3: "base_fee... adjusted from parent
// block utilization") is not implemented; the engine pins base_fee at
// zero for every slot, leaving txpool.Config.MinFeePerGas as the sole admission
// floor. Pinned here as a single source of truth rather than a literal
// 0 repeated at each call site, so propose, Prevote validation and commit
// never drift against each other.
func (e *Engine) baseFee() uint64 { return 0 }

// executeAll runs txs against view in order, folding each transaction's
// delta into the running overlay so later transactions observe earlier
// ones' effects, and accumulates totalFees from the exact amount each
// Executor call reports charging — never recomputed independently — so
// the sender's debit and the settlement input can never diverge.
func (e *Engine) executeAll(txs []*types.Transaction, slot uint64, baseFee uint64) (delta map[zondcommon.Address]types.Account, receipts map[zondcommon.Hash]*types.Receipt, gasUsed uint64, totalFees *uint256.Int, included []*types.Transaction) {
	delta = make(map[zondcommon.Address]types.Account)
	receipts = make(map[zondcommon.Hash]*types.Receipt)
	totalFees = uint256.NewInt(0)

	view := &deltaOverlayView{base: e.store, overlay: delta}
	for _, tx := range txs {
		txDelta, receipt, feeCharged, err := e.executor.Execute(tx, view, slot, baseFee)
		if err != nil {
			continue
		}
		for addr, account := range txDelta {
			delta[addr] = account
		}
		receipts[tx.Hash()] = receipt
		gasUsed += receipt.GasUsed
		totalFees.Add(totalFees, uint256.NewInt(feeCharged))
		included = append(included, tx)
	}
	return delta, receipts, gasUsed, totalFees, included
}

// computeStateRoot derives a deterministic commitment to a state delta by
// hashing its entries in address-sorted order. It is a summary digest over
// the accounts touched by the block, not a full Merkle root over the
// entire account set — sufficient to detect divergence between proposer
// and verifier without a trie implementation.
func computeStateRoot(delta map[zondcommon.Address]types.Account) zondcommon.Hash {
	addrs := make([]zondcommon.Address, 0, len(delta))
	for addr := range delta {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i][:]) < string(addrs[j][:])
	})

	var buf []byte
	for _, addr := range addrs {
		account := delta[addr]
		buf = append(buf, addr[:]...)
		var nonceBytes [8]byte
		for i := 0; i < 8; i++ {
			nonceBytes[i] = byte(account.Nonce >> (8 * (7 - i)))
		}
		buf = append(buf, nonceBytes[:]...)
		if account.Balance != nil {
			buf = append(buf, account.Balance.Bytes()...)
		}
	}
	return crypto.Keccak256Hash(buf)
}
