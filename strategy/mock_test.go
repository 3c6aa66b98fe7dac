// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"
)

// Test identities
var (
	testGovernance = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testManagement = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testStranger   = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testVault      = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testAccount    = common.HexToAddress("0x5555555555555555555555555555555555555555")

	testRewardToken       = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testIntermediateToken = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	testUnderlyingToken   = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

func testLogger() log.Logger {
	return log.NewTestLogger(log.InfoLevel)
}

// Helper to create large big.Int values
func bigInt(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

// MockStateDB implements StateDB over in-memory maps.
type MockStateDB struct {
	storage   map[common.Address]map[common.Hash]common.Hash
	balances  map[common.Address]*uint256.Int
	blockNum  uint64
	blockTime uint64
}

func NewMockStateDB() *MockStateDB {
	return &MockStateDB{
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		balances: make(map[common.Address]*uint256.Int),
	}
}

func (m *MockStateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if m.storage[addr] == nil {
		return common.Hash{}
	}
	return m.storage[addr][key]
}

func (m *MockStateDB) SetState(addr common.Address, key common.Hash, value common.Hash) {
	if m.storage[addr] == nil {
		m.storage[addr] = make(map[common.Hash]common.Hash)
	}
	m.storage[addr][key] = value
}

func (m *MockStateDB) GetBalance(addr common.Address) *uint256.Int {
	if bal, ok := m.balances[addr]; ok {
		return bal.Clone()
	}
	return uint256.NewInt(0)
}

func (m *MockStateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	if m.balances[addr] == nil {
		m.balances[addr] = uint256.NewInt(0)
	}
	m.balances[addr].Add(m.balances[addr], amount)
}

func (m *MockStateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	if m.balances[addr] == nil {
		m.balances[addr] = uint256.NewInt(0)
	}
	m.balances[addr].Sub(m.balances[addr], amount)
}

func (m *MockStateDB) Exist(addr common.Address) bool {
	_, ok := m.storage[addr]
	return ok
}

func (m *MockStateDB) CreateAccount(addr common.Address) {
	if m.storage[addr] == nil {
		m.storage[addr] = make(map[common.Hash]common.Hash)
	}
}

func (m *MockStateDB) GetBlockNumber() uint64 { return m.blockNum }
func (m *MockStateDB) GetBlockTime() uint64   { return m.blockTime }

// Snapshot deep-copies the state so a test can roll back to it with
// Revert, the way the host discards a failed transaction.
func (m *MockStateDB) Snapshot() *MockStateDB {
	snap := NewMockStateDB()
	snap.blockNum = m.blockNum
	snap.blockTime = m.blockTime
	for addr, slots := range m.storage {
		snap.storage[addr] = make(map[common.Hash]common.Hash, len(slots))
		for k, v := range slots {
			snap.storage[addr][k] = v
		}
	}
	for addr, bal := range m.balances {
		snap.balances[addr] = bal.Clone()
	}
	return snap
}

// Revert restores the state captured by Snapshot.
func (m *MockStateDB) Revert(snap *MockStateDB) {
	m.storage = snap.storage
	m.balances = snap.balances
	m.blockNum = snap.blockNum
	m.blockTime = snap.blockTime
}
