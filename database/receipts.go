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

package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// LedgerReceipt is the raw ledger acknowledgement for a submitted vote,
// archived verbatim at cast time and read back by the verify endpoint. The
// datastore Vote row holds only the correlation fields; the receipt keeps
// everything the ledger returned.
type LedgerReceipt struct {
	TransactionHash string    `json:"transactionHash"`
	BlockNumber     uint64    `json:"blockNumber"`
	GasUsed         uint64    `json:"gasUsed"`
	LedgerElection  uint64    `json:"ledgerElectionId"`
	CandidateID     uint64    `json:"candidateId"`
	VoterAddress    string    `json:"voterAddress"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

func (d *Database) openReceiptStore() (*badger.DB, error) {
	var opts badger.Options
	if d.dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(
			filepath.Join(d.dataDir, "receipts"),
		)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt store: %w", err)
	}
	return db, nil
}

// PutReceipt archives a ledger receipt keyed by its transaction hash
func (d *Database) PutReceipt(receipt *LedgerReceipt) error {
	val, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("PutReceipt: marshal: %w", err)
	}
	err = d.receipts.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(receipt.TransactionHash), val)
	})
	if err != nil {
		return fmt.Errorf("PutReceipt: store: %w", err)
	}
	return nil
}

// GetReceipt returns the archived ledger receipt for a transaction hash, or
// nil if none was recorded
func (d *Database) GetReceipt(txHash string) (*LedgerReceipt, error) {
	var ret *LedgerReceipt
	err := d.receipts.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(txHash))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var receipt LedgerReceipt
			if err := json.Unmarshal(val, &receipt); err != nil {
				return err
			}
			ret = &receipt
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("GetReceipt: %w", err)
	}
	return ret, nil
}
