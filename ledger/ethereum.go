// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	// gasMarginPercent is the safety margin applied to every gas estimate
	// before submission
	gasMarginPercent = 20
	// gasRetryMarginPercent is the larger margin used for the single retry
	// after a submission fails on insufficient gas
	gasRetryMarginPercent = 50

	defaultCallTimeout     = 30 * time.Second
	defaultReceiptInterval = 500 * time.Millisecond
	defaultGasPrice        = 20_000_000_000 // 20 gwei
)

// ClientConfig holds the configuration for the Ethereum-backed ledger client
type ClientConfig struct {
	Logger          *slog.Logger
	RPCURL          string
	ContractAddress string
	// SenderAddress is the node-managed account used for administrative
	// transactions (election/candidate/voter registration). Votes are sent
	// from the voter's own wallet address.
	SenderAddress   string
	GasPrice        *big.Int
	CallTimeout     time.Duration
	ReceiptInterval time.Duration
}

// EthereumClient implements Client against the Voting contract via JSON-RPC.
// The underlying connection is stateless and safe for concurrent callers;
// per-account nonce assignment is handled by the node.
type EthereumClient struct {
	logger          *slog.Logger
	rpc             *rpc.Client
	eth             *ethclient.Client
	contractAbi     abi.ABI
	contract        common.Address
	sender          common.Address
	gasPrice        *big.Int
	callTimeout     time.Duration
	receiptInterval time.Duration
}

// NewEthereumClient connects to the ledger node and binds the Voting
// contract. The connection is verified with a chain ID query so transport
// problems surface at startup rather than on the first vote.
func NewEthereumClient(
	ctx context.Context,
	cfg ClientConfig,
) (*EthereumClient, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With("component", "ledger")
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf(
			"invalid contract address: %s",
			cfg.ContractAddress,
		)
	}
	if !common.IsHexAddress(cfg.SenderAddress) {
		return nil, fmt.Errorf(
			"invalid sender address: %s",
			cfg.SenderAddress,
		)
	}
	contractAbi, err := abi.JSON(strings.NewReader(votingContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	rpcClient, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %s", ErrUnavailable, cfg.RPCURL, err.Error())
	}
	ethClient := ethclient.NewClient(rpcClient)
	if _, err := ethClient.ChainID(ctx); err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("%w: chain id: %s", ErrUnavailable, err.Error())
	}
	c := &EthereumClient{
		logger:          logger,
		rpc:             rpcClient,
		eth:             ethClient,
		contractAbi:     contractAbi,
		contract:        common.HexToAddress(cfg.ContractAddress),
		sender:          common.HexToAddress(cfg.SenderAddress),
		gasPrice:        cfg.GasPrice,
		callTimeout:     cfg.CallTimeout,
		receiptInterval: cfg.ReceiptInterval,
	}
	if c.gasPrice == nil {
		c.gasPrice = big.NewInt(defaultGasPrice)
	}
	if c.callTimeout <= 0 {
		c.callTimeout = defaultCallTimeout
	}
	if c.receiptInterval <= 0 {
		c.receiptInterval = defaultReceiptInterval
	}
	logger.Info(
		"connected to ledger node",
		"url", cfg.RPCURL,
		"contract", cfg.ContractAddress,
	)
	return c, nil
}

// Close releases the underlying RPC connection
func (c *EthereumClient) Close() {
	c.rpc.Close()
}

// withGasMargin applies a percentage safety margin to a gas estimate
func withGasMargin(estimate uint64, marginPercent uint64) uint64 {
	return estimate + estimate*marginPercent/100
}

// isGasError reports whether a submission failure was caused by an
// insufficient gas limit, which warrants one retry with a larger margin
func isGasError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "intrinsic gas too low") ||
		strings.Contains(msg, "out of gas") ||
		strings.Contains(msg, "gas required exceeds")
}

// view performs a read-only contract call and unpacks the results
func (c *EthereumClient) view(
	ctx context.Context,
	method string,
	args ...any,
) ([]any, error) {
	data, err := c.contractAbi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, classifyCallError(err)
	}
	results, err := c.contractAbi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return results, nil
}

// transact submits a contract call from the given account and blocks until
// the ledger acknowledges inclusion. Every submission first obtains a gas
// estimate and applies the safety margin; a gas-related submission failure
// is retried once with a larger margin before being surfaced as
// ErrUnavailable.
func (c *EthereumClient) transact(
	ctx context.Context,
	from common.Address,
	method string,
	args ...any,
) (*types.Receipt, error) {
	data, err := c.contractAbi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	estimate, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &c.contract,
		Data: data,
	})
	if err != nil {
		// Reverts surface during estimation; they are authoritative
		// rejections, not transport failures
		return nil, classifyCallError(err)
	}
	receipt, err := c.sendAndWait(
		ctx,
		from,
		data,
		withGasMargin(estimate, gasMarginPercent),
	)
	if err != nil && isGasError(err) {
		c.logger.Warn(
			"gas margin exhausted, retrying with larger margin",
			"method", method,
			"estimate", estimate,
		)
		receipt, err = c.sendAndWait(
			ctx,
			from,
			data,
			withGasMargin(estimate, gasRetryMarginPercent),
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%w: gas margin exhausted: %s",
				ErrUnavailable,
				err.Error(),
			)
		}
	}
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, RejectedError{Reason: "transaction reverted"}
	}
	return receipt, nil
}

// sendAndWait submits a transaction via the node-managed account and polls
// for its receipt until inclusion or context expiry
func (c *EthereumClient) sendAndWait(
	ctx context.Context,
	from common.Address,
	data []byte,
	gasLimit uint64,
) (*types.Receipt, error) {
	var txHash common.Hash
	err := c.rpc.CallContext(ctx, &txHash, "eth_sendTransaction",
		map[string]any{
			"from":     from,
			"to":       c.contract,
			"gas":      hexutil.Uint64(gasLimit),
			"gasPrice": hexutil.Big(*c.gasPrice),
			"data":     hexutil.Bytes(data),
		},
	)
	if err != nil {
		if _, revert := isRevert(err); revert || isGasError(err) {
			return nil, err
		}
		return nil, classifyCallError(err)
	}
	ticker := time.NewTicker(c.receiptInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, classifyCallError(err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf(
				"%w: timed out waiting for receipt %s",
				ErrUnavailable,
				txHash.Hex(),
			)
		case <-ticker.C:
		}
	}
}

// SubmitElection registers an election on the ledger and returns the
// contract-assigned election identifier parsed from the ElectionCreated
// event.
func (c *EthereumClient) SubmitElection(
	ctx context.Context,
	title string,
	description string,
	startUnix int64,
	endUnix int64,
) (*ElectionSubmission, error) {
	receipt, err := c.transact(
		ctx,
		c.sender,
		"createElection",
		title,
		description,
		big.NewInt(startUnix),
		big.NewInt(endUnix),
	)
	if err != nil {
		return nil, err
	}
	ledgerElectionId, err := c.electionIdFromReceipt(receipt)
	if err != nil {
		return nil, err
	}
	c.logger.Info(
		"election registered on ledger",
		"ledgerElectionId", ledgerElectionId,
		"txHash", receipt.TxHash.Hex(),
	)
	return &ElectionSubmission{
		LedgerElectionID: ledgerElectionId,
		TransactionHash:  receipt.TxHash.Hex(),
	}, nil
}

// electionIdFromReceipt extracts the assigned election ID from the
// ElectionCreated event log
func (c *EthereumClient) electionIdFromReceipt(
	receipt *types.Receipt,
) (uint64, error) {
	createdEvent, ok := c.contractAbi.Events["ElectionCreated"]
	if !ok {
		return 0, errors.New("contract ABI missing ElectionCreated event")
	}
	for _, logEntry := range receipt.Logs {
		if len(logEntry.Topics) < 2 {
			continue
		}
		if logEntry.Topics[0] != createdEvent.ID {
			continue
		}
		return logEntry.Topics[1].Big().Uint64(), nil
	}
	return 0, RejectedError{
		Reason: "no ElectionCreated event in receipt",
	}
}

// SubmitCandidate registers a candidate for a ledger election
func (c *EthereumClient) SubmitCandidate(
	ctx context.Context,
	ledgerElectionId uint64,
	candidateId uint64,
	name string,
	party string,
) (string, error) {
	receipt, err := c.transact(
		ctx,
		c.sender,
		"addCandidate",
		new(big.Int).SetUint64(ledgerElectionId),
		new(big.Int).SetUint64(candidateId),
		name,
		party,
	)
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

// RegisterVoter registers a voter's wallet for a ledger election
func (c *EthereumClient) RegisterVoter(
	ctx context.Context,
	ledgerElectionId uint64,
	voterAddress string,
) (string, error) {
	if !common.IsHexAddress(voterAddress) {
		return "", fmt.Errorf("invalid voter address: %s", voterAddress)
	}
	receipt, err := c.transact(
		ctx,
		c.sender,
		"registerVoter",
		new(big.Int).SetUint64(ledgerElectionId),
		common.HexToAddress(voterAddress),
	)
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

// SubmitVote casts a vote from the voter's own wallet and blocks until the
// ledger acknowledges inclusion
func (c *EthereumClient) SubmitVote(
	ctx context.Context,
	ledgerElectionId uint64,
	candidateId uint64,
	voterAddress string,
) (*VoteSubmission, error) {
	if !common.IsHexAddress(voterAddress) {
		return nil, fmt.Errorf("invalid voter address: %s", voterAddress)
	}
	receipt, err := c.transact(
		ctx,
		common.HexToAddress(voterAddress),
		"vote",
		new(big.Int).SetUint64(ledgerElectionId),
		new(big.Int).SetUint64(candidateId),
	)
	if err != nil {
		return nil, err
	}
	return &VoteSubmission{
		TransactionHash: receipt.TxHash.Hex(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
		GasUsed:         receipt.GasUsed,
	}, nil
}

// getVoterRaw fetches the contract-side voter tuple
func (c *EthereumClient) getVoterRaw(
	ctx context.Context,
	ledgerElectionId uint64,
	voterAddress string,
) (*VoterInfo, error) {
	if !common.IsHexAddress(voterAddress) {
		return nil, fmt.Errorf("invalid voter address: %s", voterAddress)
	}
	results, err := c.view(
		ctx,
		"getVoter",
		new(big.Int).SetUint64(ledgerElectionId),
		common.HexToAddress(voterAddress),
	)
	if err != nil {
		return nil, err
	}
	if len(results) < 4 {
		return nil, fmt.Errorf(
			"getVoter: unexpected result arity: %d",
			len(results),
		)
	}
	registered, ok := results[0].(bool)
	if !ok {
		return nil, errors.New("getVoter: unexpected type for isRegistered")
	}
	hasVoted, ok := results[1].(bool)
	if !ok {
		return nil, errors.New("getVoter: unexpected type for hasVoted")
	}
	votedFor, ok := results[2].(*big.Int)
	if !ok {
		return nil, errors.New("getVoter: unexpected type for votedFor")
	}
	regTime, ok := results[3].(*big.Int)
	if !ok {
		return nil, errors.New("getVoter: unexpected type for registrationTime")
	}
	info := &VoterInfo{
		Registered:       registered,
		HasVoted:         hasVoted,
		RegistrationTime: regTime.Int64(),
	}
	if hasVoted {
		choice := votedFor.Uint64()
		info.VotedFor = &choice
	}
	return info, nil
}

// GetVoter returns the contract-side registration info for a wallet
func (c *EthereumClient) GetVoter(
	ctx context.Context,
	ledgerElectionId uint64,
	voterAddress string,
) (*VoterInfo, error) {
	return c.getVoterRaw(ctx, ledgerElectionId, voterAddress)
}

// IsEligible reports whether the wallet is registered for the election
func (c *EthereumClient) IsEligible(
	ctx context.Context,
	ledgerElectionId uint64,
	voterAddress string,
) (bool, error) {
	info, err := c.getVoterRaw(ctx, ledgerElectionId, voterAddress)
	if err != nil {
		return false, err
	}
	return info.Registered, nil
}

// HasVoted reports whether the wallet has voted in the election
func (c *EthereumClient) HasVoted(
	ctx context.Context,
	ledgerElectionId uint64,
	voterAddress string,
) (bool, error) {
	info, err := c.getVoterRaw(ctx, ledgerElectionId, voterAddress)
	if err != nil {
		return false, err
	}
	return info.HasVoted, nil
}

// GetChoice returns the candidate the wallet voted for, or nil if it has
// not voted
func (c *EthereumClient) GetChoice(
	ctx context.Context,
	ledgerElectionId uint64,
	voterAddress string,
) (*uint64, error) {
	info, err := c.getVoterRaw(ctx, ledgerElectionId, voterAddress)
	if err != nil {
		return nil, err
	}
	return info.VotedFor, nil
}

// GetResults returns the per-candidate tallies for the election
func (c *EthereumClient) GetResults(
	ctx context.Context,
	ledgerElectionId uint64,
) ([]CandidateResult, error) {
	results, err := c.view(
		ctx,
		"getResults",
		new(big.Int).SetUint64(ledgerElectionId),
	)
	if err != nil {
		return nil, err
	}
	if len(results) < 2 {
		return nil, fmt.Errorf(
			"getResults: unexpected result arity: %d",
			len(results),
		)
	}
	candidateIds, ok := results[0].([]*big.Int)
	if !ok {
		return nil, errors.New("getResults: unexpected type for candidate ids")
	}
	voteCounts, ok := results[1].([]*big.Int)
	if !ok {
		return nil, errors.New("getResults: unexpected type for vote counts")
	}
	if len(candidateIds) != len(voteCounts) {
		return nil, fmt.Errorf(
			"getResults: mismatched result lengths: %d != %d",
			len(candidateIds),
			len(voteCounts),
		)
	}
	ret := make([]CandidateResult, 0, len(candidateIds))
	for i, candidateId := range candidateIds {
		ret = append(ret, CandidateResult{
			CandidateID: candidateId.Uint64(),
			VoteCount:   voteCounts[i].Int64(),
		})
	}
	return ret, nil
}

// GetTotalVotes returns the total vote count for the election
func (c *EthereumClient) GetTotalVotes(
	ctx context.Context,
	ledgerElectionId uint64,
) (int64, error) {
	results, err := c.view(
		ctx,
		"getTotalVotes",
		new(big.Int).SetUint64(ledgerElectionId),
	)
	if err != nil {
		return 0, err
	}
	if len(results) < 1 {
		return 0, errors.New("getTotalVotes: empty result")
	}
	total, ok := results[0].(*big.Int)
	if !ok {
		return 0, errors.New("getTotalVotes: unexpected result type")
	}
	return total.Int64(), nil
}

// GetWinner returns the winning candidate for the election
func (c *EthereumClient) GetWinner(
	ctx context.Context,
	ledgerElectionId uint64,
) (*WinnerInfo, error) {
	results, err := c.view(
		ctx,
		"getWinner",
		new(big.Int).SetUint64(ledgerElectionId),
	)
	if err != nil {
		return nil, err
	}
	if len(results) < 4 {
		return nil, fmt.Errorf(
			"getWinner: unexpected result arity: %d",
			len(results),
		)
	}
	candidateId, ok := results[0].(*big.Int)
	if !ok {
		return nil, errors.New("getWinner: unexpected type for candidate id")
	}
	name, ok := results[1].(string)
	if !ok {
		return nil, errors.New("getWinner: unexpected type for name")
	}
	party, ok := results[2].(string)
	if !ok {
		return nil, errors.New("getWinner: unexpected type for party")
	}
	voteCount, ok := results[3].(*big.Int)
	if !ok {
		return nil, errors.New("getWinner: unexpected type for vote count")
	}
	return &WinnerInfo{
		CandidateID: candidateId.Uint64(),
		Name:        name,
		Party:       party,
		VoteCount:   voteCount.Int64(),
	}, nil
}
